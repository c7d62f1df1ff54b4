package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/shared"
)

// SnapshotRepository caches fetched top lists in the snapshots table.
//
// Rows are keyed by (token fingerprint, time range, limit, category) so that
// cached data never leaks across users or windows. Invalidation is explicit:
// per time range on re-selection, or wholesale on logout.
type SnapshotRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

// Save upserts one cached list. payload is serialized as JSON.
func (r *SnapshotRepository) Save(fingerprint string, tr models.TimeRange, limit int, category models.Category, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot payload: %w", err)
	}

	query := `
		INSERT INTO snapshots (id, token_fingerprint, time_range, item_limit, category, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token_fingerprint, time_range, item_limit, category)
		DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`

	_, err = r.db.Exec(query, shared.GenerateID(), fingerprint, tr.String(), limit, string(category), string(data), r.now())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load reads one cached list into out. Returns false when the row is absent
// or older than ttl; a stale row is deleted as a side effect.
func (r *SnapshotRepository) Load(fingerprint string, tr models.TimeRange, limit int, category models.Category, ttl time.Duration, out any) (bool, error) {
	query := `
		SELECT payload, fetched_at FROM snapshots
		WHERE token_fingerprint = ? AND time_range = ? AND item_limit = ? AND category = ?
	`

	var payload string
	var fetchedAt time.Time
	err := r.db.QueryRow(query, fingerprint, tr.String(), limit, string(category)).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load snapshot: %w", err)
	}

	if r.now().Sub(fetchedAt) > ttl {
		if _, err := r.db.Exec(
			"DELETE FROM snapshots WHERE token_fingerprint = ? AND time_range = ? AND item_limit = ? AND category = ?",
			fingerprint, tr.String(), limit, string(category),
		); err != nil {
			return false, fmt.Errorf("failed to evict stale snapshot: %w", err)
		}
		return false, nil
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, fmt.Errorf("failed to unmarshal snapshot payload: %w", err)
	}
	return true, nil
}

// InvalidateRange deletes all cached lists for one (fingerprint, time range) pair.
func (r *SnapshotRepository) InvalidateRange(fingerprint string, tr models.TimeRange) error {
	_, err := r.db.Exec(
		"DELETE FROM snapshots WHERE token_fingerprint = ? AND time_range = ?",
		fingerprint, tr.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to invalidate snapshots: %w", err)
	}
	return nil
}

// Clear deletes every cached list (logout).
func (r *SnapshotRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM snapshots"); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	return nil
}

// Stats reports the number of cached lists and the oldest fetch instant.
func (r *SnapshotRepository) Stats() (int, time.Time, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to count snapshots: %w", err)
	}

	if count == 0 {
		return 0, time.Time{}, nil
	}

	var oldest time.Time
	if err := r.db.QueryRow("SELECT fetched_at FROM snapshots ORDER BY fetched_at ASC LIMIT 1").Scan(&oldest); err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to read oldest snapshot: %w", err)
	}
	return count, oldest, nil
}

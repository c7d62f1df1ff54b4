package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/soundwrap/internal/auth"
	"github.com/desertthunder/soundwrap/internal/models"
)

// Storage keys, namespaced under the application prefix.
const (
	keyAccessToken  = "sw_access_token"
	keyExpiresAt    = "sw_expires_at"
	keyPKCEVerifier = "sw_pkce_verifier"
	keyPKCEConsumed = "sw_pkce_consumed"
)

var _ auth.CredentialStore = (*CredentialRepository)(nil)

// CredentialRepository implements [auth.CredentialStore] over the
// credentials key/value table.
type CredentialRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewCredentialRepository creates a new CredentialRepository with the given database connection.
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db, now: time.Now}
}

func (r *CredentialRepository) get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM credentials WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (r *CredentialRepository) set(key, value string) error {
	query := `
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// del deletes the given keys. Deleting absent keys is a no-op.
func (r *CredentialRepository) del(keys ...string) error {
	for _, key := range keys {
		if _, err := r.db.Exec("DELETE FROM credentials WHERE key = ?", key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	return nil
}

// Save persists the token and its expiry instant (wall clock at save time
// plus expiresIn).
func (r *CredentialRepository) Save(token string, expiresIn time.Duration) error {
	expiresAt := r.now().Add(expiresIn).UnixMilli()
	if err := r.set(keyAccessToken, token); err != nil {
		return err
	}
	return r.set(keyExpiresAt, strconv.FormatInt(expiresAt, 10))
}

// Read returns the stored credential, or nil if either field is missing.
// A credential past its expiry is deleted and reported absent; the expiry
// check uses wall-clock time at call time.
func (r *CredentialRepository) Read() (*models.Credential, error) {
	token, haveToken, err := r.get(keyAccessToken)
	if err != nil {
		return nil, err
	}
	raw, haveExpiry, err := r.get(keyExpiresAt)
	if err != nil {
		return nil, err
	}
	if !haveToken || !haveExpiry {
		return nil, nil
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Unreadable expiry is treated as expired.
		if derr := r.Clear(); derr != nil {
			return nil, derr
		}
		return nil, nil
	}

	cred := models.Credential{AccessToken: token, ExpiresAt: time.UnixMilli(ms)}
	if cred.Expired(r.now()) {
		if err := r.Clear(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &cred, nil
}

// Clear deletes the token and expiry unconditionally.
func (r *CredentialRepository) Clear() error {
	return r.del(keyAccessToken, keyExpiresAt)
}

// SaveVerifier stores the verifier for an in-flight login attempt and resets
// the consumption marker from any previous attempt.
func (r *CredentialRepository) SaveVerifier(v string) error {
	if err := r.del(keyPKCEConsumed); err != nil {
		return err
	}
	return r.set(keyPKCEVerifier, v)
}

// ReadVerifier returns the stored verifier, or "" if absent.
func (r *CredentialRepository) ReadVerifier() (string, error) {
	v, _, err := r.get(keyPKCEVerifier)
	return v, err
}

// ConsumeVerifier deletes the verifier and records that it was used.
func (r *CredentialRepository) ConsumeVerifier() error {
	if err := r.del(keyPKCEVerifier); err != nil {
		return err
	}
	return r.set(keyPKCEConsumed, "1")
}

// ClearVerifier deletes the verifier and the consumption marker.
func (r *CredentialRepository) ClearVerifier() error {
	return r.del(keyPKCEVerifier, keyPKCEConsumed)
}

// VerifierConsumed reports whether the last verifier was consumed by a
// completed exchange.
func (r *CredentialRepository) VerifierConsumed() (bool, error) {
	_, ok, err := r.get(keyPKCEConsumed)
	return ok, err
}

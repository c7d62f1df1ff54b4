package main

import (
	"context"
	"time"

	"github.com/desertthunder/soundwrap/internal/repositories"
	"github.com/urfave/cli/v3"
)

// CacheStats reports how many snapshot rows are cached and the oldest entry's age.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	count, oldest, err := repositories.NewSnapshotRepository(db).Stats()
	if err != nil {
		return err
	}

	r.writePlainHeader("Snapshot cache")
	r.writePlain("Entries: %d\n", count)
	if count > 0 {
		r.writePlain("Oldest: %s (%s ago)\n",
			oldest.Local().Format(time.RFC1123),
			time.Since(oldest).Round(time.Second),
		)
	}
	return nil
}

// CacheClear deletes every cached snapshot row.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	if err := repositories.NewSnapshotRepository(db).Clear(); err != nil {
		return err
	}

	r.writePlain("✓ Snapshot cache cleared\n")
	return nil
}

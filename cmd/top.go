package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/soundwrap/internal/formatter"
	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/shared"
	"github.com/desertthunder/soundwrap/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Top loads a listening snapshot and renders or exports it.
//
// An optional category argument (artists, tracks, albums, genres) narrows the
// output to one ranked list; "all" or no argument renders the full snapshot.
func (r *Runner) Top(ctx context.Context, cmd *cli.Command) error {
	timeRange, err := models.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return err
	}

	category := cmd.StringArg("category")
	if category != "" && category != "all" && !validCategory(category) {
		return fmt.Errorf("%w: unknown category %q", shared.ErrInvalidArgument, category)
	}

	limit := cmd.Int("limit")
	format := cmd.String("format")
	outputPath := cmd.String("output")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	refresh := cmd.Bool("refresh")

	db, err := r.database()
	if err != nil {
		return err
	}

	engine, svc, err := r.engine(db)
	if err != nil {
		return requireLogin(err)
	}

	r.logger.Infof("loading %s snapshot from %s (limit %d)", timeRange, svc.Name(), limit)

	progress := make(chan tasks.ProgressUpdate, 50)
	drained := make(chan struct{})
	go func() {
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
		close(drained)
	}()

	var snap *models.Snapshot
	if refresh {
		snap, err = engine.Refresh(ctx, progress, timeRange, limit)
	} else {
		snap, err = engine.Load(ctx, progress, timeRange, limit)
	}
	close(progress)
	<-drained

	if err != nil {
		return requireLogin(err)
	}

	if category != "" && category != "all" {
		return r.renderCategory(snap, models.Category(category), useJSON, pretty)
	}

	if outputPath != "" {
		written, err := formatter.WriteSnapshotExport(snap, format, outputPath)
		if err != nil {
			return err
		}
		r.writePlain("✓ Snapshot exported to %s\n", written)
		return nil
	}

	if useJSON {
		return r.writeJSON(snap, pretty)
	}

	data, err := formatter.Render(snap, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func validCategory(s string) bool {
	for _, c := range models.Categories() {
		if s == string(c) {
			return true
		}
	}
	return false
}

// renderCategory prints one ranked list, as JSON or a numbered list.
func (r *Runner) renderCategory(snap *models.Snapshot, category models.Category, useJSON, pretty bool) error {
	switch category {
	case models.CategoryArtists:
		if useJSON {
			return r.writeJSON(snap.Artists, pretty)
		}
		r.writePlain("Top Artists:\n")
		for i, artist := range snap.Artists {
			r.writePlain("  %d. %s\n", i+1, artist.Name)
		}
	case models.CategoryTracks:
		if useJSON {
			return r.writeJSON(snap.Tracks, pretty)
		}
		r.writePlain("Top Tracks:\n")
		for i, track := range snap.Tracks {
			r.writePlain("  %d. %s - %s [%s]\n", i+1, track.ArtistNames(), track.Name, shared.FormatDuration(track.DurationMS))
		}
	case models.CategoryAlbums:
		if useJSON {
			return r.writeJSON(snap.Albums, pretty)
		}
		r.writePlain("Top Albums:\n")
		for i, album := range snap.Albums {
			r.writePlain("  %d. %s\n", i+1, album.Name)
		}
	case models.CategoryGenres:
		if useJSON {
			return r.writeJSON(snap.Genres, pretty)
		}
		r.writePlain("Top Genres:\n")
		for i, genre := range snap.Genres {
			r.writePlain("  %d. %s (%s)\n", i+1, genre.Name, genre.Label)
		}
	}
	return nil
}

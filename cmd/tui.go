package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/shared"
	"github.com/desertthunder/soundwrap/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal snapshot browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	timeRange, err := models.ParseTimeRange(cmd.String("range"))
	if err != nil {
		return err
	}
	limit := cmd.Int("limit")

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/soundwrap-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	db, err := r.database()
	if err != nil {
		return err
	}

	engine, _, err := r.engine(db)
	if err != nil {
		return requireLogin(err)
	}

	model := ui.NewModel(ctx, engine, timeRange, limit)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

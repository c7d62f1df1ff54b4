package ui

import (
	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/tasks"
)

// snapshotLoadedMsg delivers the outcome of a snapshot load to Update.
type snapshotLoadedMsg struct {
	snapshot *models.Snapshot
	err      error
}

// progressUpdateMsg carries one engine progress event.
type progressUpdateMsg tasks.ProgressUpdate

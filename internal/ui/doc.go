// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI presents one snapshot at a time as four tabbed lists (artists,
// tracks, albums, genres). Number keys switch the time range, tab/arrow keys
// switch categories, and r refetches past the cache.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the SnapshotEngine, providing non-blocking status reporting during loads.
//
// Keyboard navigation uses vim-style bindings (j/k, h/l, 1/2/3, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui

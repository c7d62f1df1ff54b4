// Package tasks orchestrates snapshot loading.
//
// The core abstraction is [SnapshotEngine], which fetches the four top lists
// concurrently, consults the snapshot cache first, and emits progress updates
// via channels for non-blocking status reporting to CLI/UI layers. A snapshot
// is all-or-nothing: if any category fails, no partial result is returned.
package tasks

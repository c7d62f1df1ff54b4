// Package models defines the data model for the soundwrap top-lists service.
//
// The package contains two categories of types:
//
// 1. Catalog entities: immutable snapshots of data fetched from a music service
//   - [Artist] : Artist with genre list and images
//   - [Track] : Track with album reference and contributing artists
//   - [Album] : Album metadata with release date and track count
//
// 2. Derived and lifecycle types:
//   - [RankedGenre] : Client-side genre ranking derived from artist samples
//   - [Snapshot] : The four top lists fetched for one (limit, time range) pair
//   - [Credential] : Access token with its expiry instant
//   - [TimeRange] : Provider-defined aggregation window for "top" statistics
//
// No entity is mutated in place; every fetch produces a fresh snapshot.
package models

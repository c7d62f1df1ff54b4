// Package repositories provides the persistence layer for credentials and
// cached snapshots.
//
// [CredentialRepository] implements auth.CredentialStore over a namespaced
// key/value table: three durable rows (access token, expiry epoch-ms, PKCE
// verifier) plus a consumption marker. Expiry is lazy: an expired credential
// is deleted on read, never by a background timer.
//
// [SnapshotRepository] caches ranked top lists keyed by
// (token fingerprint, time range, limit, category) with a freshness window,
// and supports explicit invalidation on logout or time-range change.
package repositories

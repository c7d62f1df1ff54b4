// Package aggregate derives ranked genre and album lists from already-fetched
// artist and track data.
//
// Both derivations are pure: no network access, deterministic for identical
// input ordering. Ties are broken by first-encountered order, so rankings are
// stable with respect to the provider's own ordering of the sample.
package aggregate

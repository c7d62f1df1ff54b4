// Package services defines interface [Service] for retrieving a listener's
// top artists, tracks, albums, and genres.
//
// Two implementations exist: [SpotifyService] talks to the Spotify Web API
// with a bearer token, and [SampleService] serves embedded demo data with no
// network access. Callers pick one at startup and the rest of the program is
// indifferent to which it got.
package services

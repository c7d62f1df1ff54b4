// Package auth implements the OAuth 2.0 Authorization Code flow with PKCE
// against the Spotify accounts service.
//
// # PKCE
//
// [GenerateVerifier] produces a hex-encoded random verifier from a
// cryptographically secure source; [DeriveChallenge] computes the S256
// challenge (base64url-encoded SHA-256 digest, no padding). The verifier is
// scoped to a single login attempt and stored through a [CredentialStore].
//
// # Flow
//
// [Flow] is a small state machine:
//
//	Unauthenticated → AwaitingRedirect → AwaitingCallback → Authenticated
//
// with Failed as the terminal error state. StartLogin builds the /authorize
// URL and persists the verifier; CompleteCallback exchanges the authorization
// code (plus verifier) for an access token via [oauth2.Config.Exchange] and
// persists the credential.
//
// CompleteCallback is safe against double invocation: once a verifier has
// been consumed by a successful exchange, a repeated callback for the same
// code fails with [shared.ErrVerifierConsumed] instead of corrupting state.
package auth

package auth

import (
	"time"

	"github.com/desertthunder/soundwrap/internal/models"
)

// CredentialStore persists the access token, its expiry instant, and the
// transient PKCE verifier for one login attempt.
//
// Implementations must enforce lazy expiry: Read never returns a credential
// past its expiry instant; an expired credential is deleted as a side effect
// of the read. Repeated reads of an expired credential are idempotent.
type CredentialStore interface {
	// Save persists the token together with its expiry (now + expiresIn).
	Save(token string, expiresIn time.Duration) error

	// Read returns the stored credential, or nil if absent or expired.
	// Reading an expired credential deletes it.
	Read() (*models.Credential, error)

	// Clear deletes the token and expiry unconditionally (logout).
	Clear() error

	// SaveVerifier stores the PKCE verifier for an in-flight login attempt
	// and resets any previous consumption marker.
	SaveVerifier(v string) error

	// ReadVerifier returns the stored verifier, or "" if absent.
	ReadVerifier() (string, error)

	// ConsumeVerifier deletes the verifier and records that it was used by
	// a completed token exchange.
	ConsumeVerifier() error

	// ClearVerifier deletes the verifier and the consumption marker.
	ClearVerifier() error

	// VerifierConsumed reports whether the last verifier was consumed by a
	// completed exchange. Distinguishes a benign repeated callback from a
	// callback that no login initiated.
	VerifierConsumed() (bool, error)
}

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/desertthunder/soundwrap/internal/shared"
)

// DefaultVerifierBytes is the number of random bytes drawn for a verifier.
// 64 bytes hex-encode to 128 characters, well above the 256-bit minimum.
const DefaultVerifierBytes = 64

// GenerateVerifier produces a hex-encoded random verifier of length random
// bytes from a cryptographically secure source.
//
// A non-positive length falls back to [DefaultVerifierBytes]. Returns
// [shared.ErrEnvironmentUnsupported] if the random source is unavailable.
func GenerateVerifier(length int) (string, error) {
	if length <= 0 {
		length = DefaultVerifierBytes
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrEnvironmentUnsupported, err)
	}

	return hex.EncodeToString(buf), nil
}

// DeriveChallenge computes the S256 code challenge for a verifier:
// SHA-256 over the verifier's bytes, base64url-encoded without padding.
func DeriveChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

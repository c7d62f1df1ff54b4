package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed             = fmt.Errorf("authentication failed")
	ErrNotAuthenticated       = fmt.Errorf("not authenticated")
	ErrTokenExpired           = fmt.Errorf("access token expired")
	ErrTokenExchange          = fmt.Errorf("token exchange failed")
	ErrMissingVerifier        = fmt.Errorf("missing PKCE verifier")
	ErrVerifierConsumed       = fmt.Errorf("PKCE verifier already consumed")
	ErrStateMismatch          = fmt.Errorf("state parameter mismatch")
	ErrEnvironmentUnsupported = fmt.Errorf("secure random source unavailable")
	ErrTimeout                = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrAggregationInput   = fmt.Errorf("aggregation input unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)

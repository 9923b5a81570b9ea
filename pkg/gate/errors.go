package gate

import "errors"

// Standard error types for gate operations
var (
	ErrNetworkFailure       = errors.New("gate: metadata could not be retrieved")
	ErrEmptyResponse        = errors.New("gate: metadata response was empty")
	ErrCacheUnavailable     = errors.New("gate: no metadata cache configured")
	ErrCacheMiss            = errors.New("gate: no cached metadata")
	ErrUnknownPlatform      = errors.New("gate: unknown platform")
	ErrMissingMetadata      = errors.New("gate: metadata does not exist")
	ErrInvalidVersionFormat = errors.New("gate: invalid version format")
	ErrStorageNotConfigured = errors.New("gate: storage not configured")
	ErrPolicyEvaluation     = errors.New("gate: policy evaluation failed")
	ErrConfigLoad           = errors.New("gate: configuration could not be loaded")
)

// IsWrappingError checks if err is wrapping the target error using errors.Is.
// This is a helper for testing error wrapping.
func IsWrappingError(err, target error) bool {
	return errors.Is(err, target)
}

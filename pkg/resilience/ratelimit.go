package resilience

import "errors"

// RateLimitError represents an upstream 429 response. Service names the
// credential pool whose key got throttled, so callers can rotate the
// right one.
type RateLimitError struct {
	Service string
	Message string
}

func (e RateLimitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "rate limit"
}

// IsRateLimit returns true when the error is a RateLimitError.
func IsRateLimit(err error) bool {
	var rl RateLimitError
	return errors.As(err, &rl)
}

// AsRateLimit extracts the RateLimitError from an error chain.
func AsRateLimit(err error) (RateLimitError, bool) {
	var rl RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return RateLimitError{}, false
}

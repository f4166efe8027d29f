package ai

import (
	"context"
	"errors"
)

var (
	// ErrTimeout means no answer arrived within the latency budget.
	ErrTimeout = errors.New("ai call timed out")
	// ErrProvider wraps transport and API failures.
	ErrProvider = errors.New("ai provider error")
	// ErrInvalidResponse means the answer could not be decoded at all.
	ErrInvalidResponse = errors.New("ai response is invalid")
	// ErrNoMatches means the answer decoded but no item survived validation.
	ErrNoMatches = errors.New("ai returned no valid matches")
)

// Kind returns a short label for err suitable for a log field.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrNoMatches):
		return "no_matches"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid_response"
	case errors.Is(err, ErrProvider):
		return "provider_error"
	default:
		return "unknown"
	}
}

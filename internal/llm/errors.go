package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// APIError is a provider error carrying the HTTP status so retry policy can
// classify it.
type APIError struct {
	Provider   string
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d, %s): %s", e.Provider, e.StatusCode, e.Type, e.Message)
}

// IsRetryable classifies whether an error is worth retrying. Rate limits,
// server errors, timeouts, and network failures are transient; other client
// errors (auth, bad request, not found) will not fix themselves.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 {
			return true
		}
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return false
		}
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Unknown errors default to retryable.
	return true
}

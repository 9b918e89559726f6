package model

import (
	"fmt"
	"time"
)

// HTTPError is a non-2xx provider response. Retry logic inspects it for
// Retry-After hints.
type HTTPError struct {
	URL        string
	StatusCode int
	RetryAfter time.Duration // from Retry-After header, zero if absent
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

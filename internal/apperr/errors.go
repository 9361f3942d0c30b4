// Package apperr defines the closed set of error kinds shared across layers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound signals that no eligible record matched the requested
	// id or slug. A normal negative result, mapped to 404 at the boundary.
	ErrNotFound = errors.New("not found")

	// ErrMalformedPayload signals that an upstream response violated the
	// expected shape (e.g. a non-array results field). Fatal for the
	// whole request, never partially salvaged.
	ErrMalformedPayload = errors.New("malformed upstream payload")
)

// UpstreamError carries a non-2xx response from the content-store API.
// The raw body is kept for server-side logging only; boundary responses
// must not expose it.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("content store responded with status %d", e.StatusCode)
}

// HTTPStatus returns the status code to surface at the boundary: the
// upstream code when it is a valid 4xx/5xx, otherwise 500.
func (e *UpstreamError) HTTPStatus() int {
	if e.StatusCode >= http.StatusBadRequest && e.StatusCode <= 599 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

package portal

import (
	"errors"
	"fmt"
)

// HTTPError represents a non-2xx HTTP response from the portal.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// APIError represents a 2xx response whose envelope reported failure
// (success=false). The portal uses these for domain-level rejections such as
// disallowed email domains or unknown users.
type APIError struct {
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("portal %s rejected: %s", e.Endpoint, e.Message)
}

// IsStatus reports whether err wraps an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

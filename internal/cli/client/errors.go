package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies API failures once, at the HTTP boundary, so callers
// never match on error message substrings.
type ErrorKind int

const (
	// KindNetwork covers transport failures and backend-unavailable
	// responses (cold starts included).
	KindNetwork ErrorKind = iota
	// KindUnauthorized covers rejected credentials: HTTP 401 and token
	// errors reported in the response body.
	KindUnauthorized
	// KindUnknown is everything else.
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// APIError is the error type raised by every Client method.
type APIError struct {
	Kind    ErrorKind
	Status  int // zero when the request never reached the backend
	Message string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api error (%s, status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api error (%s): %s", e.Kind, e.Message)
}

// KindOf extracts the ErrorKind from err, defaulting to KindUnknown for
// errors that did not originate at the client boundary.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// netError wraps a transport-level failure.
func netError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: err.Error()}
}

// tokenErrorMarkers are the phrases the backend uses when it rejects a
// credential with a non-401 status.
var tokenErrorMarkers = []string{
	"invalid token",
	"invalid algorithm",
	"token expired",
	"jwt expired",
}

// statusError classifies a non-2xx response.
func statusError(status int, body string) *APIError {
	kind := KindUnknown
	switch {
	case status == http.StatusUnauthorized:
		kind = KindUnauthorized
	case status == http.StatusBadGateway,
		status == http.StatusServiceUnavailable,
		status == http.StatusGatewayTimeout:
		kind = KindNetwork
	default:
		lower := strings.ToLower(body)
		for _, marker := range tokenErrorMarkers {
			if strings.Contains(lower, marker) {
				kind = KindUnauthorized
				break
			}
		}
	}
	return &APIError{Kind: kind, Status: status, Message: body}
}

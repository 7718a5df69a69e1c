package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches an APIError for a 404 from the report endpoint.
var ErrNotFound = errors.New("report not found")

// NotFoundMessage is the fixed message shown for a missing report.
const NotFoundMessage = "Report not found"

// APIError is a non-2xx response from the backend. Message is the backend
// detail when it sent a string, else the HTTP status text.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match report 404s.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Message maps err to the string shown to a user. APIErrors surface their
// message; anything else, including transport failures, gets fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

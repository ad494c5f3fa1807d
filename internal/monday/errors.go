package monday

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrTransport marks failures before an HTTP response was received.
var ErrTransport = errors.New("monday: transport failure")

// StatusError is a non-2xx answer from the API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Monday.com returned %d", e.StatusCode)
}

// APIError is a 2xx answer whose payload reports errors.
type APIError struct {
	Details json.RawMessage
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "monday api error: " + e.Message
	}
	return "monday api error: " + string(e.Details)
}

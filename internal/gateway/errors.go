package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"beacon-dashboard/internal/domain"
	"beacon-dashboard/internal/monday"
)

var ErrMissingCredential = errors.New("MONDAY_API_TOKEN not configured")

const credentialHint = "Add MONDAY_API_TOKEN to the environment, run `beacon token set`, or set monday.api_token in config"

// ErrorBody is the JSON shape of every failed gateway response.
type ErrorBody struct {
	Error   string `json:"error"`
	Hint    string `json:"hint,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Classify maps a fetch error to its fetch log outcome.
func Classify(err error) string {
	var se *monday.StatusError
	var ae *monday.APIError
	switch {
	case err == nil:
		return domain.OutcomeOK
	case errors.As(err, &se):
		return domain.OutcomeUpstreamStatus
	case errors.As(err, &ae):
		return domain.OutcomeUpstreamErrors
	default:
		return domain.OutcomeTransport
	}
}

func failure(err error) Result {
	var se *monday.StatusError
	var ae *monday.APIError
	switch {
	case errors.Is(err, ErrMissingCredential):
		return Result{Status: http.StatusInternalServerError, Body: ErrorBody{Error: err.Error(), Hint: credentialHint}}
	case errors.As(err, &se):
		return Result{Status: se.StatusCode, Body: ErrorBody{Error: se.Error()}}
	case errors.As(err, &ae):
		var details any = ae.Message
		if len(ae.Details) > 0 {
			details = json.RawMessage(ae.Details)
		}
		return Result{Status: http.StatusInternalServerError, Body: ErrorBody{Error: "Failed to fetch from Monday.com", Details: details}}
	default:
		return Result{Status: http.StatusInternalServerError, Body: ErrorBody{Error: "Internal server error", Details: err.Error()}}
	}
}

func statusOf(err error) int {
	var se *monday.StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	if err == nil {
		return http.StatusOK
	}
	return 0
}

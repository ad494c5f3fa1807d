package domain

import "time"

// Outcomes of one upstream fetch.
const (
	OutcomeOK             = "ok"
	OutcomeUpstreamStatus = "upstream_status"
	OutcomeUpstreamErrors = "upstream_errors"
	OutcomeTransport      = "transport"
)

type FetchAttempt struct {
	ID        int64     `json:"id"`
	At        time.Time `json:"at"`
	Outcome   string    `json:"outcome"`
	Status    int       `json:"status"`
	ItemCount int       `json:"itemCount"`
	Error     string    `json:"error,omitempty"`
	Duration  int64     `json:"durationMs"`
}

package dashboard

import "time"

// State is everything the page renders. A zero LastUpdated means no poll
// has succeeded yet.
type State struct {
	Categories    []AggregatedCategory `json:"categories"`
	Total         int                  `json:"totalResponses"`
	LastUpdated   time.Time            `json:"lastUpdated"`
	SourceUpdated string               `json:"sourceUpdated,omitempty"`
	Cached        bool                 `json:"cached"`
	Loading       bool                 `json:"loading"`
	Refreshing    bool                 `json:"refreshing"`
	Error         string               `json:"error,omitempty"`
}

func (s State) Loaded() bool { return !s.LastUpdated.IsZero() }

// Blocking reports a failure before any data arrived. Once a poll has
// succeeded, errors only ever show as a warning over the last good data.
func (s State) Blocking() bool { return !s.Loaded() && s.Error != "" }

// Status mirrors the poll loop for /api/dashboard/status.
type Status struct {
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	Polls     int    `json:"polls"`
	Running   bool   `json:"running"`
}

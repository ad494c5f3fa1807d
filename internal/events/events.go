package events

import (
	"encoding/json"
	"time"
)

// Event types pushed to /events subscribers.
const (
	SurveyRefreshed   = "survey_refreshed"
	SurveyFetchFailed = "survey_fetch_failed"
	DashboardUpdated  = "dashboard_updated"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

func MakeEvent(reqID, typ string, v int, data any) string {
	var raw json.RawMessage
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = b
		}
	}
	e := Event{
		Type:      typ,
		Version:   v,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// Publisher is the side of a Hub that producers see.
type Publisher interface {
	Publish(evt string)
}

// Emit builds a version 1 event and publishes it. A nil Publisher is a no-op.
func Emit(p Publisher, reqID, typ string, data any) {
	if p == nil {
		return
	}
	p.Publish(MakeEvent(reqID, typ, 1, data))
}

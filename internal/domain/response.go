package domain

import (
	"encoding/json"
	"time"
)

// RawItem is one board item as returned by the upstream API.
type RawItem struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Columns []ColumnValue `json:"column_values"`
}

type ColumnValue struct {
	ID    string          `json:"id"`
	Text  string          `json:"text"`
	Value json.RawMessage `json:"value,omitempty"`
}

// UnmarshalJSON accepts a null text, which the board API sends for empty cells.
func (c *ColumnValue) UnmarshalJSON(b []byte) error {
	var aux struct {
		ID    string          `json:"id"`
		Text  *string         `json:"text"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.ID = aux.ID
	c.Text = ""
	if aux.Text != nil {
		c.Text = *aux.Text
	}
	c.Value = aux.Value
	return nil
}

// Response is a normalized survey answer.
type Response struct {
	ID            string   `json:"id"`
	Company       string   `json:"company"`
	Opportunities []string `json:"opportunities"`
	Consent       bool     `json:"consent"`
}

// Snapshot is the result of one successful upstream fetch.
type Snapshot struct {
	Items       []Response
	Count       int
	LastUpdated time.Time
}

func NewSnapshot(items []Response, at time.Time) Snapshot {
	if items == nil {
		items = []Response{}
	}
	return Snapshot{Items: items, Count: len(items), LastUpdated: at.UTC()}
}

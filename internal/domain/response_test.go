package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnValueNullText(t *testing.T) {
	var cols []ColumnValue
	err := json.Unmarshal([]byte(`[
		{"id":"text_mknzjpxx","text":null,"value":null},
		{"id":"boolean07mvgyyk","text":"v","value":"{\"checked\":true}"}
	]`), &cols)
	require.NoError(t, err)
	require.Len(t, cols, 2)

	assert.Equal(t, "", cols[0].Text)
	assert.Equal(t, "v", cols[1].Text)
}

func TestNewSnapshotNeverNil(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	s := NewSnapshot(nil, at)

	assert.NotNil(t, s.Items)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, time.UTC, s.LastUpdated.Location())

	b, err := json.Marshal(s.Items)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

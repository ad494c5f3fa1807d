package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishSubscribe(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()
	assert.Equal(t, 2, h.Clients())

	h.Publish("hello")
	assert.Equal(t, "hello", <-a)
	assert.Equal(t, "hello", <-b)

	h.Unsubscribe(a)
	h.Unsubscribe(a)
	assert.Equal(t, 1, h.Clients())

	_, open := <-a
	assert.False(t, open)
}

func TestHubDropsWhenSlow(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	for i := 0; i < bufferSize+5; i++ {
		h.Publish("x")
	}
	assert.Len(t, ch, bufferSize)
}

func TestEmit(t *testing.T) {
	h := NewHub()
	ch := h.Subscribe()

	Emit(h, "req-1", SurveyRefreshed, map[string]int{"count": 3})
	Emit(nil, "", SurveyRefreshed, nil)

	var e Event
	require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
	assert.Equal(t, SurveyRefreshed, e.Type)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "req-1", e.RequestID)
	assert.JSONEq(t, `{"count":3}`, string(e.Data))
	assert.False(t, e.At.IsZero())
}

package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"beacon-dashboard/internal/domain"
	"beacon-dashboard/internal/events"
	"beacon-dashboard/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchResult struct {
	payload Payload
	err     error
}

type scriptedSource struct {
	mu      sync.Mutex
	results []fetchResult
	calls   int
	block   chan struct{}
}

func (s *scriptedSource) Fetch(ctx context.Context) (Payload, error) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.results) == 0 {
		return Payload{Items: []domain.Response{}}, nil
	}
	r := s.results[0]
	if len(s.results) > 1 {
		s.results = s.results[1:]
	}
	return r.payload, r.err
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func payloadOf(opps ...string) Payload {
	items := make([]domain.Response, 0, len(opps))
	for i, o := range opps {
		items = append(items, domain.Response{ID: string(rune('a' + i)), Company: "Acme", Opportunities: []string{o}, Consent: true})
	}
	return Payload{Items: items, Count: len(items), LastUpdated: "2025-03-01T12:00:00.000Z"}
}

func newTestPoller(t *testing.T, src Source, hub events.Publisher) *Poller {
	t.Helper()
	return NewPoller(PollerOptions{
		Source:   src,
		Catalog:  testCatalog(t),
		Interval: time.Hour,
		Hub:      hub,
		Logger:   logging.Discard(),
		Now:      func() time.Time { return time.Date(2025, 3, 1, 12, 0, 5, 0, time.UTC) },
	})
}

func TestPollerInitialState(t *testing.T) {
	p := newTestPoller(t, &scriptedSource{}, nil)
	st := p.State()
	assert.True(t, st.Loading)
	assert.False(t, st.Loaded())
	assert.False(t, st.Blocking())
	assert.Len(t, st.Categories, 8)
}

func TestPollerSuccessThenWarning(t *testing.T) {
	src := &scriptedSource{results: []fetchResult{
		{payload: payloadOf("Viva Tech Paris (June)", "Viva Tech Paris (June)")},
		{err: &FetchError{Status: 503, Message: "Monday.com returned 503"}},
	}}
	p := newTestPoller(t, src, nil)

	require.True(t, p.Refresh(context.Background()))
	st := p.State()
	assert.False(t, st.Loading)
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, "Viva Tech Paris (June)", st.Categories[0].Label)
	assert.Equal(t, 2, st.Categories[0].Count)
	assert.Empty(t, st.Error)
	assert.Equal(t, "2025-03-01T12:00:00.000Z", st.SourceUpdated)

	require.True(t, p.Refresh(context.Background()))
	st = p.State()
	assert.Equal(t, "Monday.com returned 503", st.Error)
	assert.False(t, st.Blocking())
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 2, st.Categories[0].Count)

	status := p.Status()
	assert.Equal(t, 2, status.Polls)
	assert.Equal(t, "Monday.com returned 503", status.LastError)
	assert.NotEmpty(t, status.LastOkAt)
	assert.False(t, status.Running)
}

func TestPollerFirstFailureBlocks(t *testing.T) {
	src := &scriptedSource{results: []fetchResult{
		{err: &FetchError{Message: "connection refused"}},
		{payload: payloadOf("Slush Helsinki (November)")},
	}}
	p := newTestPoller(t, src, nil)

	p.Refresh(context.Background())
	st := p.State()
	assert.False(t, st.Loading)
	assert.True(t, st.Blocking())
	assert.Equal(t, "connection refused", st.Error)

	p.Refresh(context.Background())
	st = p.State()
	assert.False(t, st.Blocking())
	assert.Empty(t, st.Error)
	assert.Equal(t, 1, st.Total)
}

func TestPollerRefreshSkipsWhileInFlight(t *testing.T) {
	src := &scriptedSource{block: make(chan struct{})}
	p := newTestPoller(t, src, nil)

	done := make(chan bool)
	go func() { done <- p.Refresh(context.Background()) }()

	require.Eventually(t, func() bool { return p.Status().Running }, time.Second, 5*time.Millisecond)
	assert.True(t, p.State().Refreshing)
	assert.False(t, p.Refresh(context.Background()))

	close(src.block)
	assert.True(t, <-done)
	assert.Equal(t, 1, src.Calls())
	assert.False(t, p.State().Refreshing)
}

func TestPollerRunPollsImmediatelyAndStops(t *testing.T) {
	src := &scriptedSource{}
	p := newTestPoller(t, src, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(stopped)
	}()

	require.Eventually(t, func() bool { return src.Calls() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
	assert.Equal(t, 1, src.Calls())
}

func TestPollerPublishesUpdates(t *testing.T) {
	hub := events.NewHub()
	ch := hub.Subscribe()
	p := newTestPoller(t, &scriptedSource{results: []fetchResult{{payload: payloadOf("Hannover Messe (April)")}}}, hub)

	p.Refresh(context.Background())

	var e events.Event
	require.NoError(t, json.Unmarshal([]byte(<-ch), &e))
	assert.Equal(t, events.DashboardUpdated, e.Type)
	assert.JSONEq(t, `{"totalResponses":1,"error":"","cached":false}`, string(e.Data))
}

package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"beacon-dashboard/internal/config"
	"beacon-dashboard/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boardPayload = `{"data":{"boards":[{"items_page":{"items":[
  {"id":"1","name":"a","column_values":[
    {"id":"dropdown_mknydrxj","text":"Viva Tech Paris (June), Slush Helsinki (November)","value":null},
    {"id":"text_mknzjpxx","text":"Acme","value":null},
    {"id":"boolean07mvgyyk","text":"v","value":null}]},
  {"id":"2","name":"b","column_values":[
    {"id":"dropdown_mknydrxj","text":"Viva Tech Paris (June)","value":null},
    {"id":"text_mknzjpxx","text":null,"value":null},
    {"id":"boolean07mvgyyk","text":"","value":null}]}
]}}]}}`

func fakeMonday(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "tok-xyz", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(boardPayload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, endpoint, addr string) config.Config {
	t.Helper()
	t.Setenv("BEACON_ADDR", "")
	cfg := config.Default()
	cfg.App.Addr = addr
	cfg.Monday.Endpoint = endpoint
	cfg.Monday.RequestsPerSecond = 100
	return cfg
}

func TestAppServesGatewayAndDashboard(t *testing.T) {
	var calls atomic.Int32
	upstream := fakeMonday(t, &calls)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := testConfig(t, upstream.URL, ln.Addr().String())
	app, err := Build(cfg, Options{
		Token:  func() (string, error) { return "tok-xyz", nil },
		Logger: logging.Discard(),
	})
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	// the first poll runs at startup against the in-process gateway
	require.Eventually(t, func() bool { return app.Poller.State().Loaded() }, 5*time.Second, 20*time.Millisecond)
	st := app.Poller.State()
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, "Viva Tech Paris (June)", st.Categories[0].Label)
	assert.Equal(t, 2, st.Categories[0].Count)
	assert.Equal(t, []string{"Acme"}, st.Categories[0].Companies)

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/survey-data")
	require.NoError(t, err)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, int32(1), calls.Load())

	attempts, err := app.FetchLog.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "ok", attempts[0].Outcome)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestBuildRejectsDuplicateCategories(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1", "127.0.0.1:0")
	cfg.Categories = append(cfg.Categories, cfg.Categories[0])

	_, err := Build(cfg, Options{Logger: logging.Discard()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "categories")
}

func TestNewGatewayMissingToken(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1", "127.0.0.1:0")
	gw, err := NewGateway(cfg, func() (string, error) { return "", nil }, nil, nil, logging.Discard())
	require.NoError(t, err)

	res := gw.SurveyData(context.Background())
	assert.Equal(t, http.StatusInternalServerError, res.Status)
}

func TestGatewayKeepsCacheWhenUpstreamReportsEmptyErrors(t *testing.T) {
	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(boardPayload))
			return
		}
		_, _ = w.Write([]byte(`{"errors":[],"data":null}`))
	}))
	t.Cleanup(upstream.Close)

	cfg := testConfig(t, upstream.URL, "127.0.0.1:0")
	cfg.Cache.TTLSeconds = 1
	gw, err := NewGateway(cfg, func() (string, error) { return "tok-xyz", nil }, nil, nil, logging.Discard())
	require.NoError(t, err)

	first := gw.SurveyData(context.Background())
	require.Equal(t, http.StatusOK, first.Status)

	time.Sleep(1100 * time.Millisecond)
	second := gw.SurveyData(context.Background())
	require.Equal(t, http.StatusOK, second.Status)

	raw, err := json.Marshal(second.Body)
	require.NoError(t, err)
	var body struct {
		Count  int  `json:"count"`
		Cached bool `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, 2, body.Count)
	assert.True(t, body.Cached)
	assert.Equal(t, int32(2), calls.Load())
}

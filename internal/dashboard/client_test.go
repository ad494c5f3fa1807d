package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayClientFetch(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		body       string
		wantErr    string
		wantStatus int
		wantCount  int
		wantCached bool
	}{
		{
			name:      "ok",
			status:    http.StatusOK,
			body:      `{"items":[{"id":"1","company":"Acme","opportunities":["Viva Tech Paris (June)"],"consent":true}],"count":1,"lastUpdated":"2025-03-01T12:00:00.000Z"}`,
			wantCount: 1,
		},
		{
			name:       "stale fallback",
			status:     http.StatusOK,
			body:       `{"items":[],"count":0,"lastUpdated":"2025-03-01T12:00:00.000Z","cached":true}`,
			wantCached: true,
		},
		{
			name:       "error body",
			status:     http.StatusServiceUnavailable,
			body:       `{"error":"Monday.com returned 503"}`,
			wantErr:    "Monday.com returned 503",
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "error body with 200",
			status:     http.StatusOK,
			body:       `{"error":"boom"}`,
			wantErr:    "boom",
			wantStatus: http.StatusOK,
		},
		{
			name:       "non json failure",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantErr:    "gateway returned 502",
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "non json success",
			status:     http.StatusOK,
			body:       `nope`,
			wantErr:    "invalid gateway response",
			wantStatus: http.StatusOK,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewGatewayClient(srv.URL, time.Second)
			p, err := c.Fetch(context.Background())
			if tc.wantErr != "" {
				require.Error(t, err)
				var fe *FetchError
				require.ErrorAs(t, err, &fe)
				assert.Contains(t, fe.Message, tc.wantErr)
				assert.Equal(t, tc.wantStatus, fe.Status)
				return
			}
			require.NoError(t, err)
			assert.Len(t, p.Items, tc.wantCount)
			assert.NotNil(t, p.Items)
			assert.Equal(t, tc.wantCached, p.Cached)
		})
	}
}

func TestGatewayClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewGatewayClient(url, time.Second).Fetch(context.Background())
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Zero(t, fe.Status)
}

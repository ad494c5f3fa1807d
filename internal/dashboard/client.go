package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"beacon-dashboard/internal/domain"
)

// Payload is the gateway body as the dashboard reads it.
type Payload struct {
	Items       []domain.Response `json:"items"`
	Count       int               `json:"count"`
	LastUpdated string            `json:"lastUpdated"`
	Cached      bool              `json:"cached"`
	Error       string            `json:"error"`
}

// FetchError is any failed poll of the gateway. Its message is what the
// dashboard shows in the warning line.
type FetchError struct {
	Status  int
	Message string
}

func (e *FetchError) Error() string { return e.Message }

// Source is what the poller reads survey data from.
type Source interface {
	Fetch(ctx context.Context) (Payload, error)
}

type GatewayClient struct {
	URL  string
	HTTP *http.Client
}

func NewGatewayClient(url string, timeout time.Duration) *GatewayClient {
	return &GatewayClient{URL: url, HTTP: &http.Client{Timeout: timeout}}
}

func (c *GatewayClient) Fetch(ctx context.Context) (Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Payload{}, &FetchError{Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Payload{}, &FetchError{Message: err.Error()}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Payload{}, &FetchError{Status: resp.StatusCode, Message: err.Error()}
	}

	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Payload{}, &FetchError{Status: resp.StatusCode, Message: fmt.Sprintf("gateway returned %d", resp.StatusCode)}
		}
		return Payload{}, &FetchError{Status: resp.StatusCode, Message: "invalid gateway response: " + err.Error()}
	}
	if p.Error != "" {
		return Payload{}, &FetchError{Status: resp.StatusCode, Message: p.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return Payload{}, &FetchError{Status: resp.StatusCode, Message: fmt.Sprintf("gateway returned %d", resp.StatusCode)}
	}
	if p.Items == nil {
		p.Items = []domain.Response{}
	}
	return p, nil
}

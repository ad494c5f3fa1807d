package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"beacon-dashboard/internal/domain"
	"beacon-dashboard/internal/logging"
)

type Config struct {
	Endpoint   string
	APIVersion string
	BoardID    string
	PageLimit  int
	ItemsPath  string
	Timeout    time.Duration
}

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *Limiter
	logger  *log.Logger
}

func New(cfg Config, limiter *Limiter, logger *log.Logger) *Client {
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		logger:  logging.OrDefault(logger),
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.hc = hc
	return c
}

func (c *Client) Query() string {
	return fmt.Sprintf(`query { boards(ids: [%s]) { items_page(limit: %d) { items { id name column_values { id text value } } } } }`,
		c.cfg.BoardID, c.cfg.PageLimit)
}

// FetchItems issues exactly one request for the board's items.
func (c *Client) FetchItems(ctx context.Context, token string) ([]domain.RawItem, error) {
	body, _ := json.Marshal(map[string]string{"query": c.Query()})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	req.Header.Set("API-Version", c.cfg.APIVersion)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %v", ErrTransport, err)
		}
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 256))
		c.logger.Printf("[monday] upstream status=%s body=%q", res.Status, logging.Truncate(b, 256))
		return nil, &StatusError{StatusCode: res.StatusCode, Body: string(b)}
	}

	var payload any
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if apiErr := apiErrorFrom(payload); apiErr != nil {
		c.logger.Printf("[monday] api errors: %s", logging.Truncate(apiErr.Details, 512))
		return nil, apiErr
	}

	return c.extractItems(payload)
}

func apiErrorFrom(payload any) *APIError {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	// Any non-null errors value fails the batch, an empty list included.
	if errs, ok := obj["errors"]; ok && errs != nil {
		raw, _ := json.Marshal(errs)
		return &APIError{Details: raw}
	}
	if msg, ok := obj["error_message"].(string); ok && strings.TrimSpace(msg) != "" {
		raw, _ := json.Marshal(map[string]any{
			"error_message": msg,
			"error_code":    obj["error_code"],
		})
		return &APIError{Details: raw, Message: msg}
	}
	return nil
}

func (c *Client) extractItems(payload any) ([]domain.RawItem, error) {
	found, err := jsonpath.Get(c.cfg.ItemsPath, payload)
	if err != nil || found == nil {
		if err != nil {
			c.logger.Printf("[monday] no items at path=%s err=%v", c.cfg.ItemsPath, err)
		}
		return []domain.RawItem{}, nil
	}

	raw, err := json.Marshal(found)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("items at %s are not a list: %w", c.cfg.ItemsPath, err)
	}

	items := make([]domain.RawItem, 0, len(list))
	for i, r := range list {
		it, err := decodeItem(r)
		if err != nil {
			c.logger.Printf("[monday] skipping item index=%d err=%v", i, err)
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// decodeItem keeps whatever it can from a malformed item so one bad row does
// not sink the batch.
func decodeItem(raw json.RawMessage) (domain.RawItem, error) {
	var it domain.RawItem
	if err := json.Unmarshal(raw, &it); err == nil {
		return it, nil
	}

	var loose map[string]any
	if err := json.Unmarshal(raw, &loose); err != nil || loose == nil {
		return domain.RawItem{}, fmt.Errorf("item is not an object")
	}
	return domain.RawItem{ID: stringOf(loose["id"]), Name: stringOf(loose["name"])}, nil
}

func stringOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

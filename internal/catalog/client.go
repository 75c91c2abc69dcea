// Package catalog proxies search and detail lookups to the external manga
// catalog (Jikan). Responses are relayed as received; nothing is cached.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mangashelf/internal/apperr"
	"mangashelf/pkg/models"
)

// SearchLimit bounds the number of summaries returned by Search.
const SearchLimit = 15

type Client struct {
	HTTP    *http.Client
	BaseURL string
	Metrics *Metrics
}

// NewClient builds a client for baseURL. A zero timeout sets no deadline of
// its own, so only the transport defaults and the caller's context apply.
func NewClient(baseURL string, timeout time.Duration, metrics *Metrics) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		Metrics: metrics,
	}
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// Search returns at most SearchLimit catalog summaries matching query.
func (c *Client) Search(ctx context.Context, query string) ([]json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query required: %w", apperr.ErrInvalidInput)
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(SearchLimit))

	data, status, err := c.get(ctx, "search", c.BaseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("search %q: upstream status %d: %w", query, status, apperr.ErrCatalogUnavailable)
	}

	var items []json.RawMessage
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("search %q: decode data: %v: %w", query, err, apperr.ErrCatalogUnavailable)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("search %q: %w", query, apperr.ErrNoResults)
	}
	if len(items) > SearchLimit {
		items = items[:SearchLimit]
	}
	return items, nil
}

// GetDetails returns the full detail document for one catalog entry.
func (c *Client) GetDetails(ctx context.Context, externalID int64) (json.RawMessage, error) {
	if externalID <= 0 {
		return nil, fmt.Errorf("catalog id %d: %w", externalID, apperr.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("%s/%d/full", c.BaseURL, externalID)
	data, status, err := c.get(ctx, "details", endpoint)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("catalog id %d: %w", externalID, apperr.ErrNotFound)
	case status != http.StatusOK:
		return nil, fmt.Errorf("catalog id %d: upstream status %d: %w", externalID, status, apperr.ErrCatalogUnavailable)
	case len(data) == 0 || string(data) == "null":
		return nil, fmt.Errorf("catalog id %d: empty data: %w", externalID, apperr.ErrNotFound)
	}
	return data, nil
}

// RecordFor fetches the detail document and maps it onto a new record.
func (c *Client) RecordFor(ctx context.Context, externalID int64) (*models.MangaRecord, error) {
	raw, err := c.GetDetails(ctx, externalID)
	if err != nil {
		return nil, err
	}

	var d Detail
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("catalog id %d: decode detail: %v: %w", externalID, err, apperr.ErrCatalogUnavailable)
	}
	rec := d.ToRecord()
	return &rec, nil
}

// get issues one GET and returns the envelope's data field and the status.
// Transport failures and unreadable bodies are reported as unavailability.
func (c *Client) get(ctx context.Context, op, endpoint string) (json.RawMessage, int, error) {
	start := time.Now()
	outcome := "error"
	defer func() { c.Metrics.observe(op, outcome, time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, 0, fmt.Errorf("catalog %s: %w", op, err)
		}
		return nil, 0, fmt.Errorf("catalog %s: request: %v: %w", op, err, apperr.ErrCatalogUnavailable)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("catalog %s: read body: %v: %w", op, err, apperr.ErrCatalogUnavailable)
	}

	outcome = strconv.Itoa(resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("catalog %s: decode: %v: %w", op, err, apperr.ErrCatalogUnavailable)
	}
	return env.Data, resp.StatusCode, nil
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mangashelf/pkg/models"
)

type apiClient struct {
	HTTP    *http.Client
	BaseURL string
	Token   string
}

// apiError carries the server's {"error","kind"} body.
type apiError struct {
	Status  int
	Message string `json:"error"`
	Kind    string `json:"kind"`
}

func (e *apiError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%s (%s, HTTP %d)", e.Message, e.Kind, e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

type recordList struct {
	Total int                  `json:"total"`
	Items []models.MangaRecord `json:"items"`
}

// catalogSummary picks the fields the CLI shows out of a catalog item.
type catalogSummary struct {
	MalID    int64    `json:"mal_id"`
	Title    string   `json:"title"`
	Type     string   `json:"type"`
	Chapters *int     `json:"chapters"`
	Status   string   `json:"status"`
	Score    *float64 `json:"score"`
}

func (c *apiClient) Search(ctx context.Context, query string) ([]catalogSummary, error) {
	var out []catalogSummary
	err := c.doJSON(ctx, http.MethodGet, "/api/catalog/search?q="+url.QueryEscape(query), nil, &out)
	return out, err
}

func (c *apiClient) CatalogDetail(ctx context.Context, externalID int64) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.doJSON(ctx, http.MethodGet, "/api/catalog/"+strconv.FormatInt(externalID, 10), nil, &out)
	return out, err
}

func (c *apiClient) List(ctx context.Context) (recordList, error) {
	var out recordList
	err := c.doJSON(ctx, http.MethodGet, "/api/records", nil, &out)
	return out, err
}

func (c *apiClient) Get(ctx context.Context, id int64) (*models.MangaRecord, error) {
	var out models.MangaRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/records/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) Create(ctx context.Context, payload map[string]any) (*models.MangaRecord, error) {
	var out models.MangaRecord
	if err := c.doJSON(ctx, http.MethodPost, "/api/records", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) Import(ctx context.Context, externalID int64) (*models.MangaRecord, error) {
	var out models.MangaRecord
	if err := c.doJSON(ctx, http.MethodPost, "/api/records/import/"+strconv.FormatInt(externalID, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProgress leaves the stored total alone when total is nil.
func (c *apiClient) UpdateProgress(ctx context.Context, id int64, read int, total *int) (*models.MangaRecord, error) {
	payload := map[string]any{"chapters_read": read}
	if total != nil {
		payload["chapters"] = *total
	}
	var out models.MangaRecord
	if err := c.doJSON(ctx, http.MethodPut, "/api/records/"+strconv.FormatInt(id, 10)+"/progress", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *apiClient) Delete(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/records/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *apiClient) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	synchub "mangashelf/internal/sync"
)

func TestAPIClientSendsTokenAndDecodes(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)

		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/records/4/progress", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":4,"external_id":2,"name":"Berserk","chapters":364,"chapters_read":120}`))
	}))
	defer srv.Close()

	c := &apiClient{HTTP: srv.Client(), BaseURL: srv.URL + "/", Token: "tok"}
	m, err := c.UpdateProgress(context.Background(), 4, 120, nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth)
	assert.JSONEq(t, `{"chapters_read":120}`, gotBody)
	assert.Equal(t, "120/364", progressText(*m))
}

func TestAPIClientSurfacesErrorKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "chapters_read 400 exceeds total 364: invalid progress",
			"kind":  "invalid_progress",
		})
	}))
	defer srv.Close()

	c := &apiClient{HTTP: srv.Client(), BaseURL: srv.URL}
	_, err := c.Create(context.Background(), map[string]any{"external_id": 2, "name": "Berserk"})
	require.Error(t, err)

	var apiErr *apiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "invalid_progress", apiErr.Kind)
}

func TestSearchDecodesCatalogItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "vinland saga", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{"mal_id":642,"title":"Vinland Saga","type":"Manga","chapters":null,"status":"Publishing","score":8.97}]`))
	}))
	defer srv.Close()

	c := &apiClient{HTTP: srv.Client(), BaseURL: srv.URL}
	items, err := c.Search(context.Background(), "vinland saga")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 642, items[0].MalID)
	assert.Nil(t, items[0].Chapters)

	out := searchTable(items).String()
	assert.Contains(t, out, "Vinland Saga")
	assert.Contains(t, out, "8.97")
}

func TestDescribeEvent(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	s := describeEvent(synchub.RecordEvent{Type: synchub.RecordUpdated, RecordID: 3, Name: "Monster", ChaptersRead: 10, At: at})
	assert.Contains(t, s, "updated #3 Monster (10/?)")

	s = describeEvent(synchub.RecordEvent{Type: synchub.RecordDeleted, RecordID: 3, At: at})
	assert.Contains(t, s, "removed #3")
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "Jujutsu...", truncateString("Jujutsu Kaisen", 10))
	assert.Equal(t, "", truncateString("", 3))
}

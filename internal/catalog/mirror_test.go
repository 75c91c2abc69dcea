package catalog

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangashelf/internal/apperr"
)

var mirrorDocs = []json.RawMessage{
	json.RawMessage(`{"mal_id":2,"title":"Berserk","chapters":null,"status":"Publishing","published":{"from":"1989-08-25T00:00:00+00:00","to":null}}`),
	json.RawMessage(`{"mal_id":1,"title":"Monster","title_english":"Monster","chapters":162,"status":"Finished"}`),
	json.RawMessage(`{"mal_id":656,"title":"Vagabond","title_japanese":"バガボンド","chapters":327}`),
}

func newMirrorClient(t *testing.T) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := NewMirror(mirrorDocs)
	require.NoError(t, err)

	r := gin.New()
	m.RegisterRoutes(r.Group("/v4/manga"))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL+"/v4/manga", 5*time.Second, nil)
}

func TestMirrorServesClientSearch(t *testing.T) {
	c := newMirrorClient(t)
	ctx := context.Background()

	items, err := c.Search(ctx, "MONST")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.JSONEq(t, string(mirrorDocs[1]), string(items[0]))

	items, err = c.Search(ctx, "バガ")
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = c.Search(ctx, "one piece")
	assert.ErrorIs(t, err, apperr.ErrNoResults)
}

func TestMirrorServesClientDetails(t *testing.T) {
	c := newMirrorClient(t)
	ctx := context.Background()

	rec, err := c.RecordFor(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Berserk", rec.Name)
	assert.Nil(t, rec.ChaptersTotal)
	require.NotNil(t, rec.StartDate)
	assert.Equal(t, "1989-08-25", rec.StartDate.String())

	_, err = c.GetDetails(ctx, 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMirrorSearchLimit(t *testing.T) {
	m, err := NewMirror(mirrorDocs)
	require.NoError(t, err)

	assert.Len(t, m.Search("", 0), 3)
	assert.Len(t, m.Search("", 2), 2)
	assert.Equal(t, 3, m.Len())
}

func TestNewMirrorRejectsBadEntries(t *testing.T) {
	_, err := NewMirror([]json.RawMessage{json.RawMessage(`{"title":"no id"}`)})
	assert.Error(t, err)

	_, err = NewMirror([]json.RawMessage{mirrorDocs[0], mirrorDocs[0]})
	assert.Error(t, err)

	_, err = NewMirror([]json.RawMessage{json.RawMessage(`[]`)})
	assert.Error(t, err)
}

func TestLoadMirror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mirror.json")
	b, err := json.Marshal(mirrorDocs)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))

	m, err := LoadMirror(path)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Len())

	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadMirror(path)
	assert.Error(t, err)
}

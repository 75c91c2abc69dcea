package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangashelf/internal/auth"
	"mangashelf/internal/catalog"
	"mangashelf/internal/logging"
	synchub "mangashelf/internal/sync"
	"mangashelf/pkg/config"
	"mangashelf/pkg/database"
)

func newTestServer(t *testing.T, secret string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "mangas.db")
	cfg.Auth.Secret = secret

	db, err := database.Open(database.Config{Path: cfg.Database.Path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	logger := logging.Discard()
	client := catalog.NewClient("http://catalog.test/manga", time.Second, catalog.NewMetrics())

	router, err := newRouter(cfg, logger, db, synchub.NewHub(logger), client)
	require.NoError(t, err)
	return router
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthReadyAndMetrics(t *testing.T) {
	r := newTestServer(t, "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ready"`)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestMutationsOpenWithoutSecret(t *testing.T) {
	r := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(`{"external_id": 1, "name": "Monster"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusCreated, serve(r, req).Code)
}

func TestMutationsGuardedWithSecret(t *testing.T) {
	r := newTestServer(t, "s3cret")

	body := `{"external_id": 1, "name": "Monster"}`
	req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	// reads stay public
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/api/records", nil)).Code)

	token, _, err := auth.NewTokenService("s3cret", "mangashelf", time.Hour).Sign("reader")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusCreated, serve(r, req).Code)
}

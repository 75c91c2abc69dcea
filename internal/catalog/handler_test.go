package catalog

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"mangashelf/internal/logging"
)

func newTestRouter(t *testing.T) (*gin.Engine, *httpmock.MockTransport) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, transport := newTestClient(t)
	r := gin.New()
	NewHandler(c, logging.Discard()).RegisterRoutes(r.Group("/api"))
	return r, transport
}

func TestSearchRoute(t *testing.T) {
	r, transport := newTestRouter(t)
	transport.RegisterResponder(http.MethodGet, testBase,
		httpmock.NewStringResponder(http.StatusOK, `{"data":[{"mal_id":2}]}`))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/catalog/search?q=berserk", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"mal_id":2}]`, w.Body.String())
}

func TestSearchRouteAcceptsLegacyFormField(t *testing.T) {
	r, transport := newTestRouter(t)
	transport.RegisterResponder(http.MethodGet, testBase, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "Vagabond", req.URL.Query().Get("q"))
		return httpmock.NewStringResponse(http.StatusOK, `{"data":[{"mal_id":656}]}`), nil
	})

	form := url.Values{"manga_name": {"Vagabond"}}
	req := httptest.NewRequest(http.MethodPost, "/api/catalog/search", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchRouteNoResults(t *testing.T) {
	r, transport := newTestRouter(t)
	transport.RegisterResponder(http.MethodGet, testBase,
		httpmock.NewStringResponder(http.StatusOK, `{"data":[]}`))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/catalog/search?q=NonexistentTitleXYZ", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"no_results"`)
}

func TestDetailsRoute(t *testing.T) {
	r, transport := newTestRouter(t)
	transport.RegisterResponder(http.MethodGet, testBase+"/2/full",
		httpmock.NewStringResponder(http.StatusOK, `{"data":{"mal_id":2,"title":"Berserk"}}`))
	transport.RegisterResponder(http.MethodGet, testBase+"/3/full",
		httpmock.NewStringResponder(http.StatusBadGateway, ``))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/catalog/2", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mal_id":2,"title":"Berserk"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/catalog/3", nil))
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/catalog/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

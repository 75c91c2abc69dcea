package catalog

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"mangashelf/internal/apperr"
)

type Handler struct {
	Client *Client
	Logger *slog.Logger
}

func NewHandler(client *Client, logger *slog.Logger) *Handler {
	return &Handler{Client: client, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/catalog/search", h.search)
	rg.POST("/catalog/search", h.search)
	rg.GET("/catalog/:external_id", h.details)
}

func (h *Handler) search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		q = c.PostForm("q")
	}
	if q == "" {
		q = c.PostForm("manga_name")
	}

	items, err := h.Client.Search(c.Request.Context(), q)
	if err != nil {
		h.logUpstream(err, "search", "query", q)
		apperr.Respond(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) details(c *gin.Context) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("external_id")), 10, 64)
	if err != nil || id <= 0 {
		apperr.Respond(c, h.Logger, apperr.ErrInvalidInput)
		return
	}

	raw, err := h.Client.GetDetails(c.Request.Context(), id)
	if err != nil {
		h.logUpstream(err, "details", "external_id", id)
		apperr.Respond(c, h.Logger, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

func (h *Handler) logUpstream(err error, op string, args ...any) {
	if apperr.Kind(err) != "catalog_unavailable" {
		return
	}
	h.Logger.Warn("catalog upstream failed", append([]any{"op", op, "error", err}, args...)...)
}

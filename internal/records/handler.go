package records

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mangashelf/internal/apperr"
	"mangashelf/internal/sync"
	"mangashelf/pkg/models"
)

// RecordSource builds a record from the external catalog's detail document.
type RecordSource interface {
	RecordFor(ctx context.Context, externalID int64) (*models.MangaRecord, error)
}

type Handler struct {
	Repo    *Repo
	Catalog RecordSource
	Hub     *sync.Hub
	Logger  *slog.Logger
}

func NewHandler(repo *Repo, catalog RecordSource, hub *sync.Hub, logger *slog.Logger) *Handler {
	return &Handler{Repo: repo, Catalog: catalog, Hub: hub, Logger: logger}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/records", h.list)
	rg.GET("/records/:id", h.getOne)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/records", h.create)
	rg.POST("/records/import/:external_id", h.importFromCatalog)
	rg.PUT("/records/:id/progress", h.updateProgress)
	rg.POST("/records/:id/progress", h.updateProgress) // HTML forms can only POST
	rg.DELETE("/records/:id", h.remove)
}

// createReq is the accepted shape of a new record, from JSON or form bodies.
type createReq struct {
	ExternalID   int64             `json:"external_id" form:"external_id" binding:"required"`
	Name         string            `json:"name" form:"name" binding:"required"`
	CoverURL     string            `json:"cover_url" form:"cover_url"`
	Chapters     optional[int]     `json:"chapters" form:"chapters"`
	ChaptersRead optional[int]     `json:"chapters_read" form:"chapters_read"`
	Type         string            `json:"type" form:"type"`
	Status       string            `json:"status" form:"status"`
	Score        optional[float64] `json:"score" form:"score"`
	Rank         optional[int]     `json:"rank" form:"rank"`
	Popularity   optional[int]     `json:"popularity" form:"popularity"`
	StartDate    string            `json:"start_date" form:"start_date"`
	FinishDate   string            `json:"finish_date" form:"finish_date"`
}

func (req createReq) toRecord() (models.MangaRecord, error) {
	start, err := models.ParseDate(req.StartDate)
	if err != nil {
		return models.MangaRecord{}, fmt.Errorf("start_date: %v: %w", err, apperr.ErrInvalidInput)
	}
	finish, err := models.ParseDate(req.FinishDate)
	if err != nil {
		return models.MangaRecord{}, fmt.Errorf("finish_date: %v: %w", err, apperr.ErrInvalidInput)
	}
	read := 0
	if v := req.ChaptersRead.ptr(); v != nil {
		read = *v
	}
	return models.MangaRecord{
		ExternalID:    req.ExternalID,
		Name:          strings.TrimSpace(req.Name),
		CoverURL:      strings.TrimSpace(req.CoverURL),
		ChaptersTotal: req.Chapters.ptr(),
		ChaptersRead:  read,
		Type:          strings.TrimSpace(req.Type),
		Status:        strings.TrimSpace(req.Status),
		Score:         req.Score.ptr(),
		Rank:          req.Rank.ptr(),
		Popularity:    req.Popularity.ptr(),
		StartDate:     start,
		FinishDate:    finish,
	}, nil
}

type progressReq struct {
	// Chapters is optional; when omitted or blank the stored total is kept.
	Chapters     optional[int] `json:"chapters" form:"chapters"`
	ChaptersRead optional[int] `json:"chapters_read" form:"chapters_read"`
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Repo.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) getOne(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		apperr.Respond(c, h.Logger, err)
		return
	}

	m, err := h.Repo.Get(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBind(&req); err != nil {
		apperr.Respond(c, h.Logger, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err))
		return
	}

	rec, err := req.toRecord()
	if err != nil {
		apperr.Respond(c, h.Logger, err)
		return
	}

	h.save(c, rec)
}

func (h *Handler) importFromCatalog(c *gin.Context) {
	if h.Catalog == nil {
		apperr.Respond(c, h.Logger, fmt.Errorf("import: %w", apperr.ErrCatalogUnavailable))
		return
	}

	externalID, err := parseID(c.Param("external_id"))
	if err != nil {
		apperr.Respond(c, h.Logger, err)
		return
	}

	rec, err := h.Catalog.RecordFor(c.Request.Context(), externalID)
	if err != nil {
		apperr.Respond(c, h.Logger, err)
		return
	}

	h.save(c, *rec)
}

func (h *Handler) save(c *gin.Context, rec models.MangaRecord) {
	saved, err := h.Repo.Create(c.Request.Context(), rec)
	if err != nil {
		apperr.Respond(c, h.Logger, err)
		return
	}

	h.Logger.Info("record created", "id", saved.ID, "external_id", saved.ExternalID, "name", saved.Name)
	h.broadcast(sync.RecordCreated, saved.ID, saved)
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) updateProgress(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		apperr.Respond(c, h.Logger, err)
		return
	}

	var req progressReq
	if err := c.ShouldBind(&req); err != nil {
		apperr.Respond(c, h.Logger, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err))
		return
	}

	read := req.ChaptersRead.ptr()
	if read == nil {
		apperr.Respond(c, h.Logger, fmt.Errorf("chapters_read required: %w", apperr.ErrInvalidInput))
		return
	}

	total := req.Chapters.ptr()
	saved, err := h.Repo.UpdateProgress(c.Request.Context(), id, models.ProgressUpdate{
		ChaptersTotal: total,
		ChaptersRead:  *read,
		TotalSet:      total != nil,
	})
	if err != nil {
		apperr.Respond(c, h.Logger, err)
		return
	}

	h.broadcast(sync.RecordUpdated, saved.ID, saved)
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) remove(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		apperr.Respond(c, h.Logger, err)
		return
	}

	if err := h.Repo.Delete(c.Request.Context(), id); err != nil {
		apperr.Respond(c, h.Logger, err)
		return
	}

	h.Logger.Info("record deleted", "id", id)
	h.broadcast(sync.RecordDeleted, id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) broadcast(typ string, id int64, m *models.MangaRecord) {
	if h.Hub == nil {
		return
	}
	ev := sync.RecordEvent{
		Type:     typ,
		RecordID: id,
		At:       time.Now().UTC(),
	}
	if m != nil {
		ev.ExternalID = m.ExternalID
		ev.Name = m.Name
		ev.ChaptersTotal = m.ChaptersTotal
		ev.ChaptersRead = m.ChaptersRead
	}
	go h.Hub.BroadcastJSON(ev)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: %w", raw, apperr.ErrInvalidInput)
	}
	return id, nil
}

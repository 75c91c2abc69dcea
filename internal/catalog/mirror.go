package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// mirrorMaxLimit matches the page size cap of the public catalog.
const mirrorMaxLimit = 25

// Mirror answers search and detail requests from a local snapshot of detail
// documents, in the same wire format as the public catalog. Point
// catalog.base_url at it to work offline or to avoid upstream rate limits.
type Mirror struct {
	entries []mirrorEntry
	byID    map[int64]int
}

type mirrorEntry struct {
	id     int64
	titles []string
	raw    json.RawMessage
}

// LoadMirror reads a JSON array of detail documents.
func LoadMirror(path string) (*Mirror, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mirror: %w", err)
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(b, &docs); err != nil {
		return nil, fmt.Errorf("mirror %s: invalid JSON: %w", path, err)
	}
	return NewMirror(docs)
}

func NewMirror(docs []json.RawMessage) (*Mirror, error) {
	m := &Mirror{byID: make(map[int64]int, len(docs))}
	for i, raw := range docs {
		var head struct {
			MalID         int64  `json:"mal_id"`
			Title         string `json:"title"`
			TitleEnglish  string `json:"title_english"`
			TitleJapanese string `json:"title_japanese"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, fmt.Errorf("mirror entry %d: %w", i, err)
		}
		if head.MalID <= 0 {
			return nil, fmt.Errorf("mirror entry %d: missing mal_id", i)
		}
		if _, dup := m.byID[head.MalID]; dup {
			return nil, fmt.Errorf("mirror entry %d: duplicate mal_id %d", i, head.MalID)
		}

		var titles []string
		for _, t := range []string{head.Title, head.TitleEnglish, head.TitleJapanese} {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				titles = append(titles, t)
			}
		}
		m.byID[head.MalID] = len(m.entries)
		m.entries = append(m.entries, mirrorEntry{id: head.MalID, titles: titles, raw: raw})
	}
	return m, nil
}

func (m *Mirror) Len() int { return len(m.entries) }

// RegisterRoutes mounts GET "" (search) and GET "/:id/full" on rg, which
// should be the group the catalog base URL points at.
func (m *Mirror) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", m.search)
	rg.GET("/:id/full", m.details)
}

// Search matches q case-insensitively against any title. An empty q lists
// everything, up to limit.
func (m *Mirror) Search(q string, limit int) []json.RawMessage {
	if limit <= 0 || limit > mirrorMaxLimit {
		limit = mirrorMaxLimit
	}
	q = strings.ToLower(strings.TrimSpace(q))

	out := make([]json.RawMessage, 0, limit)
	for _, e := range m.entries {
		if len(out) == limit {
			break
		}
		if q == "" || e.matches(q) {
			out = append(out, e.raw)
		}
	}
	return out
}

func (e mirrorEntry) matches(q string) bool {
	for _, t := range e.titles {
		if strings.Contains(t, q) {
			return true
		}
	}
	return false
}

func (m *Mirror) search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	c.JSON(http.StatusOK, gin.H{"data": m.Search(c.Query("q"), limit)})
}

func (m *Mirror) details(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": "Invalid id"})
		return
	}
	idx, ok := m.byID[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status": http.StatusNotFound, "message": "Resource does not exist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": m.entries[idx].raw})
}

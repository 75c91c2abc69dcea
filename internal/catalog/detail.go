package catalog

import (
	"strings"

	"mangashelf/pkg/models"
)

// Detail is the subset of the catalog's detail document used to seed a record.
type Detail struct {
	MalID  int64  `json:"mal_id"`
	Title  string `json:"title"`
	Images struct {
		JPG struct {
			ImageURL      string `json:"image_url"`
			LargeImageURL string `json:"large_image_url"`
		} `json:"jpg"`
	} `json:"images"`
	Type       string   `json:"type"`
	Chapters   *int     `json:"chapters"`
	Status     string   `json:"status"`
	Score      *float64 `json:"score"`
	Rank       *int     `json:"rank"`
	Popularity *int     `json:"popularity"`
	Published  struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"published"`
}

// ToRecord maps the detail onto an unsaved record with nothing read yet.
// Unparseable publication dates are dropped.
func (d Detail) ToRecord() models.MangaRecord {
	cover := d.Images.JPG.ImageURL
	if cover == "" {
		cover = d.Images.JPG.LargeImageURL
	}

	start, _ := models.ParseDate(d.Published.From)
	finish, _ := models.ParseDate(d.Published.To)

	return models.MangaRecord{
		ExternalID:    d.MalID,
		Name:          strings.TrimSpace(d.Title),
		CoverURL:      cover,
		ChaptersTotal: d.Chapters,
		ChaptersRead:  0,
		Type:          d.Type,
		Status:        d.Status,
		Score:         d.Score,
		Rank:          d.Rank,
		Popularity:    d.Popularity,
		StartDate:     start,
		FinishDate:    finish,
	}
}

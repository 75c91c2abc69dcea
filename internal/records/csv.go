package records

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mangashelf/internal/apperr"
	"mangashelf/pkg/models"
)

var csvHeader = []string{
	"external_id", "name", "cover_url", "chapters", "chapters_read",
	"type", "status", "score", "rank", "popularity", "start_date", "finish_date",
}

// ExportCSV writes every record, ordered like List, as CSV with a header row.
func (r *Repo) ExportCSV(ctx context.Context, out io.Writer) (int, error) {
	items, err := r.List(ctx)
	if err != nil {
		return 0, err
	}

	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return 0, err
	}
	for _, m := range items {
		if err := w.Write([]string{
			strconv.FormatInt(m.ExternalID, 10),
			m.Name,
			m.CoverURL,
			formatIntPtr(m.ChaptersTotal),
			strconv.Itoa(m.ChaptersRead),
			m.Type,
			m.Status,
			formatFloatPtr(m.Score),
			formatIntPtr(m.Rank),
			formatIntPtr(m.Popularity),
			formatDate(m.StartDate),
			formatDate(m.FinishDate),
		}); err != nil {
			return 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}
	return len(items), nil
}

type ImportResult struct {
	Created int
	// Skipped counts rows whose external id is already stored.
	Skipped int
}

// ImportCSV creates a record per row through Create, so every row passes the
// same validation as the API. Existing external ids are skipped; any other
// row error aborts the import and reports the line.
func (r *Repo) ImportCSV(ctx context.Context, in io.Reader) (ImportResult, error) {
	var res ImportResult

	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return res, fmt.Errorf("read csv header: %w", err)
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, err
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		// quoted cells may span lines, so ask the reader where the row began
		line, _ := cr.FieldPos(0)

		m, err := recordFromRow(header, row)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}

		if _, err := r.Create(ctx, m); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		res.Created++
	}
	return res, nil
}

func recordFromRow(header map[string]int, row []string) (models.MangaRecord, error) {
	get := func(key string) string { return valueAt(header, row, key) }

	var (
		m   models.MangaRecord
		err error
	)
	if m.ExternalID, err = strconv.ParseInt(get("external_id"), 10, 64); err != nil {
		return m, fmt.Errorf("external_id: %v: %w", err, apperr.ErrInvalidInput)
	}
	m.Name = get("name")
	m.CoverURL = get("cover_url")
	m.Type = get("type")
	m.Status = get("status")

	if m.ChaptersTotal, err = parseIntPtr(get("chapters")); err != nil {
		return m, fmt.Errorf("chapters: %v: %w", err, apperr.ErrInvalidInput)
	}
	if read := get("chapters_read"); read != "" {
		if m.ChaptersRead, err = strconv.Atoi(read); err != nil {
			return m, fmt.Errorf("chapters_read: %v: %w", err, apperr.ErrInvalidInput)
		}
	}
	if s := get("score"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return m, fmt.Errorf("score: %v: %w", err, apperr.ErrInvalidInput)
		}
		m.Score = &f
	}
	if m.Rank, err = parseIntPtr(get("rank")); err != nil {
		return m, fmt.Errorf("rank: %v: %w", err, apperr.ErrInvalidInput)
	}
	if m.Popularity, err = parseIntPtr(get("popularity")); err != nil {
		return m, fmt.Errorf("popularity: %v: %w", err, apperr.ErrInvalidInput)
	}
	if m.StartDate, err = models.ParseDate(get("start_date")); err != nil {
		return m, fmt.Errorf("start_date: %v: %w", err, apperr.ErrInvalidInput)
	}
	if m.FinishDate, err = models.ParseDate(get("finish_date")); err != nil {
		return m, fmt.Errorf("finish_date: %v: %w", err, apperr.ErrInvalidInput)
	}
	return m, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	if _, ok := header["external_id"]; !ok {
		return nil, fmt.Errorf("missing external_id column: %w", apperr.ErrInvalidInput)
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseIntPtr(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatDate(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

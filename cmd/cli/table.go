package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"mangashelf/pkg/models"
)

var (
	purple = lipgloss.Color("99")

	headerStyle = lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func searchTable(items []catalogSummary) *table.Table {
	t := newTable("#", "Title", "ID", "Type", "Chapters", "Status", "Score")
	for i, s := range items {
		t.Row(
			strconv.Itoa(i+1),
			truncateString(s.Title, 50),
			strconv.FormatInt(s.MalID, 10),
			s.Type,
			optInt(s.Chapters),
			s.Status,
			optScore(s.Score),
		)
	}
	return t
}

func recordTable(items []models.MangaRecord) *table.Table {
	t := newTable("ID", "Name", "Progress", "Status", "Score", "Catalog ID")
	for _, m := range items {
		t.Row(
			strconv.FormatInt(m.ID, 10),
			truncateString(m.Name, 44),
			progressText(m),
			m.Status,
			optScore(m.Score),
			strconv.FormatInt(m.ExternalID, 10),
		)
	}
	return t
}

func progressText(m models.MangaRecord) string {
	if m.ChaptersTotal == nil {
		return fmt.Sprintf("%d/?", m.ChaptersRead)
	}
	return fmt.Sprintf("%d/%d", m.ChaptersRead, *m.ChaptersTotal)
}

func optInt(v *int) string {
	if v == nil {
		return "?"
	}
	return strconv.Itoa(*v)
}

func optScore(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func truncateString(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"HeadlineTrends/internal/domain"
)

const maxCellWidth = 60

func headlineTable(rows []domain.CleanedArticle) [][]string {
	table := [][]string{{"#", "SHORT TITLE", "SENTIMENT", "TOPIC", "PUBLISHED"}}
	for i, r := range rows {
		sentiment := string(r.Sentiment)
		if sentiment == "" {
			sentiment = "-"
		}
		published := strings.TrimSpace(r.DayOfWeek + " " + r.TimeOfDay)
		if published == "" {
			published = "-"
		}
		table = append(table, []string{
			strconv.Itoa(i + 1),
			runewidth.Truncate(r.ShortTitle, maxCellWidth, "..."),
			sentiment,
			r.Topic,
			published,
		})
	}
	return table
}

// renderTable writes rows as left-aligned columns sized by display width.
func renderTable(w io.Writer, table [][]string) {
	if len(table) == 0 {
		return
	}

	widths := make([]int, len(table[0]))
	for _, row := range table {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if width := runewidth.StringWidth(row[i]); width > widths[i] {
				widths[i] = width
			}
		}
	}

	var sb strings.Builder
	for _, row := range table {
		for i := 0; i < len(widths); i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i == len(widths)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		sb.WriteString("\n")
	}
	_, _ = io.WriteString(w, sb.String())
}

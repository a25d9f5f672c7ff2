package storage

import (
	"HeadlineTrends/internal/domain"
	"HeadlineTrends/internal/features"
	"HeadlineTrends/internal/listcodec"
)

// Column names of the raw headline table, in write order.
var RawColumns = []string{
	"source_id",
	"source_name",
	"author",
	"title",
	"description",
	"url",
	"urlToImage",
	"publishedAt",
	"content",
}

// CleanedColumns extends RawColumns with the enrichment and time features.
var CleanedColumns = append(append([]string{}, RawColumns...),
	"short_title",
	"sentiment",
	"entities",
	"topic",
	"day_of_week_published",
	"month_published",
	"time_of_day_published",
)

// Row is one table row keyed by column name.
type Row map[string]string

// Values returns the cells in column order; absent columns are empty.
func (r Row) Values(columns []string) []string {
	values := make([]string, len(columns))
	for i, col := range columns {
		values[i] = r[col]
	}
	return values
}

// RowFromRecord pairs a header with one record. Extra cells are ignored.
func RowFromRecord(header, record []string) Row {
	row := make(Row, len(header))
	for i, col := range header {
		if i < len(record) {
			row[col] = record[i]
		}
	}
	return row
}

// RawRow flattens an article into the raw table layout.
func RawRow(a domain.Article) Row {
	return Row{
		"source_id":   a.SourceID,
		"source_name": a.SourceName,
		"author":      a.Author,
		"title":       a.Title,
		"description": a.Description,
		"url":         a.URL,
		"urlToImage":  a.URLToImage,
		"publishedAt": a.PublishedAt,
		"content":     a.Content,
	}
}

// ArticleFromRow is the inverse of RawRow.
func ArticleFromRow(r Row) domain.Article {
	return domain.Article{
		SourceID:    r["source_id"],
		SourceName:  r["source_name"],
		Author:      r["author"],
		Title:       r["title"],
		Description: r["description"],
		URL:         r["url"],
		URLToImage:  r["urlToImage"],
		PublishedAt: r["publishedAt"],
		Content:     r["content"],
	}
}

// CleanedRow flattens an enriched article. publishedAt holds the parsed instant as RFC3339 UTC,
// or nothing when the timestamp could not be parsed.
func CleanedRow(c domain.CleanedArticle) Row {
	row := RawRow(c.Article)
	row["publishedAt"] = features.FormatPublished(c.Published)
	row["short_title"] = c.ShortTitle
	row["sentiment"] = string(c.Sentiment)
	row["entities"] = listcodec.Encode(c.Entities)
	row["topic"] = c.Topic
	row["day_of_week_published"] = c.DayOfWeek
	row["month_published"] = c.Month
	row["time_of_day_published"] = c.TimeOfDay
	return row
}

// CleanedFromRow is the inverse of CleanedRow.
func CleanedFromRow(r Row) domain.CleanedArticle {
	sentiment, _ := domain.ParseSentiment(r["sentiment"])

	topic := r["topic"]
	if topic == "" {
		topic = domain.UnknownTopic
	}

	c := domain.CleanedArticle{
		Article:    ArticleFromRow(r),
		ShortTitle: r["short_title"],
		Sentiment:  sentiment,
		Entities:   listcodec.Decode(r["entities"]),
		Topic:      topic,
		DayOfWeek:  r["day_of_week_published"],
		Month:      r["month_published"],
		TimeOfDay:  r["time_of_day_published"],
	}
	c.Published = features.ParsePublished(c.PublishedAt)
	return c
}

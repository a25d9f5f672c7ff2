package domain

import "time"

const (
	// MaxRawArticles caps how many fetched headlines are cached (and later enriched) per country.
	MaxRawArticles = 15

	// UnknownTopic is the topic label used whenever no topic could be generated.
	UnknownTopic = "Unknown"
)

// Article is one headline as returned by the headline source, with the nested source flattened.
// Empty strings stand for values the upstream API returned as null.
type Article struct {
	SourceID    string
	SourceName  string
	Author      string
	Title       string
	Description string
	URL         string
	URLToImage  string
	PublishedAt string
	Content     string
}

// Sentiment is the label produced by the sentiment service. The zero value means "no sentiment".
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment accepts only the three labels the sentiment service documents.
func ParseSentiment(value string) (Sentiment, bool) {
	switch s := Sentiment(value); s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return s, true
	default:
		return "", false
	}
}

// CleanedArticle is an enriched article as stored in the cleaned cache.
type CleanedArticle struct {
	Article

	ShortTitle string
	Sentiment  Sentiment
	Entities   []string
	Topic      string

	// Published is nil when PublishedAt could not be parsed; the time fields below are empty then.
	Published *time.Time
	DayOfWeek string
	Month     string
	TimeOfDay string
}

// Table selects one of the two logical tables held by the cache store.
type Table string

const (
	TableRaw     Table = "raw"
	TableCleaned Table = "cleaned"
)

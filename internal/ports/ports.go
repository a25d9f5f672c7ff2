package ports

import (
	"context"
	"errors"

	"HeadlineTrends/internal/domain"
)

// ErrEmptyInput is returned by enrichment adapters that were handed nothing to analyze.
// No request is sent in that case.
var ErrEmptyInput = errors.New("empty enrichment input")

// HeadlineSource pulls top headlines for one country from the upstream news API.
type HeadlineSource interface {
	TopHeadlines(ctx context.Context, country string, pageSize int, language string) ([]domain.Article, error)
}

// SentimentAnalyzer classifies article content as positive, neutral or negative.
type SentimentAnalyzer interface {
	Sentiment(ctx context.Context, text string) (domain.Sentiment, error)
}

// EntityRecognizer extracts named entities from article content, in document order.
type EntityRecognizer interface {
	Entities(ctx context.Context, text string) ([]string, error)
}

// TopicGenerator labels a set of entities with a short topic.
type TopicGenerator interface {
	Topic(ctx context.Context, entities []string) (string, error)
}

// CacheStore persists raw and cleaned headline tables keyed by country code.
// Missing entries are reported as domain.ErrNotFound.
type CacheStore interface {
	PutRaw(ctx context.Context, country string, articles []domain.Article) error
	GetRaw(ctx context.Context, country string) ([]domain.Article, error)
	PutCleaned(ctx context.Context, country string, rows []domain.CleanedArticle) error
	GetCleaned(ctx context.Context, country string) ([]domain.CleanedArticle, error)
	Exists(ctx context.Context, table domain.Table, country string) (bool, error)
	Countries(ctx context.Context, table domain.Table) ([]string, error)
	Clear(ctx context.Context) error
}

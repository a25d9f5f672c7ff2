package usecase

import (
	"context"
	"errors"
	"log/slog"

	"HeadlineTrends/internal/domain"
	"HeadlineTrends/internal/features"
	"HeadlineTrends/internal/metrics"
	"HeadlineTrends/internal/ports"
)

// Enricher calls the three enrichment services for one article and substitutes
// the field default whenever a call fails: no sentiment, no entities, UnknownTopic.
// Errors never leave the Enricher.
type Enricher struct {
	sentiment ports.SentimentAnalyzer
	entities  ports.EntityRecognizer
	topics    ports.TopicGenerator
	logger    *slog.Logger
}

// Enrichment is the outcome of enriching one article.
type Enrichment struct {
	Sentiment domain.Sentiment
	Entities  []string
	Topic     string
}

// NewEnricher builds an Enricher. Nil services are treated as always failing.
func NewEnricher(sentiment ports.SentimentAnalyzer, entities ports.EntityRecognizer, topics ports.TopicGenerator, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Enricher{
		sentiment: sentiment,
		entities:  entities,
		topics:    topics,
		logger:    logger,
	}
}

// Enrich runs sentiment and entity recognition on content, drops numeric
// entities and asks for a topic of what is left.
func (e *Enricher) Enrich(ctx context.Context, position int, content string) Enrichment {
	entities := features.RemoveNumeric(e.Entities(ctx, position, content))
	return Enrichment{
		Sentiment: e.Sentiment(ctx, position, content),
		Entities:  entities,
		Topic:     e.Topic(ctx, position, entities),
	}
}

// Sentiment returns the content's sentiment, or "" when unavailable.
func (e *Enricher) Sentiment(ctx context.Context, position int, content string) domain.Sentiment {
	if e.sentiment == nil {
		return ""
	}
	s, err := e.sentiment.Sentiment(ctx, content)
	if err != nil {
		e.warn("sentiment", position, err)
		return ""
	}
	return s
}

// Entities returns the recognized entities in document order, never nil.
func (e *Enricher) Entities(ctx context.Context, position int, content string) []string {
	if e.entities == nil {
		return []string{}
	}
	entities, err := e.entities.Entities(ctx, content)
	if err != nil {
		e.warn("entities", position, err)
		return []string{}
	}
	if entities == nil {
		return []string{}
	}
	return entities
}

// Topic labels the entities, falling back to domain.UnknownTopic.
func (e *Enricher) Topic(ctx context.Context, position int, entities []string) string {
	if e.topics == nil {
		return domain.UnknownTopic
	}
	if len(entities) == 0 {
		metrics.EnrichmentCalls.WithLabelValues("topic", metrics.OutcomeSkipped).Inc()
		return domain.UnknownTopic
	}
	topic, err := e.topics.Topic(ctx, entities)
	if err != nil {
		e.warn("topic", position, err)
		return domain.UnknownTopic
	}
	if topic == "" {
		return domain.UnknownTopic
	}
	return topic
}

func (e *Enricher) warn(service string, position int, err error) {
	if errors.Is(err, ports.ErrEmptyInput) {
		e.logger.Debug("enrichment skipped", "service", service, "position", position)
		return
	}
	e.logger.Warn("enrichment failed", "service", service, "position", position, "error", err)
}

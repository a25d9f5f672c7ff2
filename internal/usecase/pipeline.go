package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"HeadlineTrends/internal/domain"
	"HeadlineTrends/internal/features"
	"HeadlineTrends/internal/metrics"
	"HeadlineTrends/internal/ports"
	"HeadlineTrends/internal/textclean"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source    ports.HeadlineSource
	Store     ports.CacheStore
	Sentiment ports.SentimentAnalyzer
	Entities  ports.EntityRecognizer
	Topics    ports.TopicGenerator
	Logger    *slog.Logger

	PageSize int
	Language string
	// Workers bounds how many articles are enriched at once; values below 1 mean sequential.
	Workers int
}

// Pipeline implements the extract-transform-cache workflow for one country at a time.
type Pipeline struct {
	source   ports.HeadlineSource
	store    ports.CacheStore
	enricher *Enricher
	logger   *slog.Logger
	locks    *keyedMutex

	pageSize int
	language string
	workers  int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		source:   deps.Source,
		store:    deps.Store,
		enricher: NewEnricher(deps.Sentiment, deps.Entities, deps.Topics, logger),
		logger:   logger,
		locks:    newKeyedMutex(),
		pageSize: deps.PageSize,
		language: deps.Language,
		workers:  workers,
	}
}

// Fetch pulls the current top headlines for a country without touching the cache.
func (p *Pipeline) Fetch(ctx context.Context, country string) ([]domain.Article, error) {
	cc, err := domain.NormalizeCountry(country)
	if err != nil {
		return nil, err
	}
	return p.fetch(ctx, cc)
}

// SaveRaw caches at most domain.MaxRawArticles articles as the country's raw entry
// and returns how many were written. An empty input writes nothing and returns domain.ErrNoArticles.
func (p *Pipeline) SaveRaw(ctx context.Context, country string, articles []domain.Article) (int, error) {
	cc, err := domain.NormalizeCountry(country)
	if err != nil {
		return 0, err
	}
	unlock := p.locks.Lock(cc)
	defer unlock()

	return p.saveRaw(ctx, cc, articles)
}

// Extract fetches and caches the raw headlines for a country.
func (p *Pipeline) Extract(ctx context.Context, country string) (int, error) {
	cc, err := domain.NormalizeCountry(country)
	if err != nil {
		return 0, err
	}
	unlock := p.locks.Lock(cc)
	defer unlock()

	articles, err := p.fetch(ctx, cc)
	if err != nil {
		return 0, err
	}
	return p.saveRaw(ctx, cc, articles)
}

// Transform cleans and enriches the cached raw entry of a country and overwrites its cleaned entry.
// A missing raw entry is reported as domain.ErrRawNotFound.
func (p *Pipeline) Transform(ctx context.Context, country string) ([]domain.CleanedArticle, error) {
	cc, err := domain.NormalizeCountry(country)
	if err != nil {
		return nil, err
	}
	unlock := p.locks.Lock(cc)
	defer unlock()

	return p.transform(ctx, cc)
}

// Headlines returns the cleaned headlines of a country, running the whole pipeline
// only when no cleaned entry is cached. A rate-limited fetch latches the session,
// after which only cached countries can be served.
func (p *Pipeline) Headlines(ctx context.Context, session *Session, country string) ([]domain.CleanedArticle, error) {
	cc, err := domain.NormalizeCountry(country)
	if err != nil {
		return nil, err
	}
	unlock := p.locks.Lock(cc)
	defer unlock()

	cached, err := p.store.Exists(ctx, domain.TableCleaned, cc)
	if err != nil {
		return nil, fmt.Errorf("check cleaned cache: %w", err)
	}
	if cached {
		metrics.CacheHits.Inc()
		p.logger.Info("loaded cached cleaned headlines", "country", cc)
		return p.store.GetCleaned(ctx, cc)
	}

	if session.LimitExceeded() {
		return nil, fmt.Errorf("%s not cached and fetching is disabled for this session: %w", cc, domain.ErrRateLimited)
	}

	articles, err := p.fetch(ctx, cc)
	if err != nil {
		if session.Observe(err) {
			p.logger.Warn("daily usage limit exceeded, switching to cached data only", "country", cc)
		}
		return nil, err
	}

	if _, err := p.saveRaw(ctx, cc, articles); err != nil {
		return nil, err
	}

	return p.transform(ctx, cc)
}

// Cleaned returns the cached cleaned entry of a country or domain.ErrNotFound.
func (p *Pipeline) Cleaned(ctx context.Context, country string) ([]domain.CleanedArticle, error) {
	cc, err := domain.NormalizeCountry(country)
	if err != nil {
		return nil, err
	}
	return p.store.GetCleaned(ctx, cc)
}

// HasCleaned reports whether a cleaned entry is cached for the country.
func (p *Pipeline) HasCleaned(ctx context.Context, country string) (bool, error) {
	cc, err := domain.NormalizeCountry(country)
	if err != nil {
		return false, err
	}
	return p.store.Exists(ctx, domain.TableCleaned, cc)
}

// CachedCountries lists the countries with a cleaned entry.
func (p *Pipeline) CachedCountries(ctx context.Context) ([]string, error) {
	return p.store.Countries(ctx, domain.TableCleaned)
}

// ClearAll wipes raw and cleaned entries for every country.
func (p *Pipeline) ClearAll(ctx context.Context) error {
	if err := p.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	p.logger.Info("cache cleared")
	return nil
}

func (p *Pipeline) fetch(ctx context.Context, cc string) ([]domain.Article, error) {
	if p.source == nil {
		return nil, fmt.Errorf("fetch headlines: no headline source configured: %w", domain.ErrUpstreamUnavailable)
	}
	articles, err := p.source.TopHeadlines(ctx, cc, p.pageSize, p.language)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("fetch", outcomeOf(err)).Inc()
		return nil, fmt.Errorf("fetch headlines for %s: %w", cc, err)
	}
	metrics.PipelineRuns.WithLabelValues("fetch", metrics.OutcomeOK).Inc()
	return articles, nil
}

func (p *Pipeline) saveRaw(ctx context.Context, cc string, articles []domain.Article) (int, error) {
	if len(articles) == 0 {
		metrics.PipelineRuns.WithLabelValues("save_raw", metrics.OutcomeEmpty).Inc()
		p.logger.Info("no articles to save", "country", cc)
		return 0, fmt.Errorf("%s: %w", cc, domain.ErrNoArticles)
	}
	if len(articles) > domain.MaxRawArticles {
		articles = articles[:domain.MaxRawArticles]
	}

	if err := p.store.PutRaw(ctx, cc, articles); err != nil {
		metrics.PipelineRuns.WithLabelValues("save_raw", metrics.OutcomeError).Inc()
		return 0, fmt.Errorf("save raw headlines for %s: %w", cc, err)
	}

	metrics.PipelineRuns.WithLabelValues("save_raw", metrics.OutcomeOK).Inc()
	p.logger.Info("saved raw articles", "country", cc, "count", len(articles))
	return len(articles), nil
}

func (p *Pipeline) transform(ctx context.Context, cc string) ([]domain.CleanedArticle, error) {
	raw, err := p.store.GetRaw(ctx, cc)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.PipelineRuns.WithLabelValues("transform", metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("transform %s: %w", cc, domain.ErrRawNotFound)
	}
	if err != nil {
		metrics.PipelineRuns.WithLabelValues("transform", metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("load raw headlines for %s: %w", cc, err)
	}

	candidates := make([]domain.Article, 0, len(raw))
	for _, a := range raw {
		a = cleanArticle(a)
		if a.Title == "" || a.Content == "" {
			continue
		}
		candidates = append(candidates, a)
	}
	if dropped := len(raw) - len(candidates); dropped > 0 {
		p.logger.Info("dropped articles without title or content", "country", cc, "dropped", dropped)
	}

	rows := make([]domain.CleanedArticle, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, a := range candidates {
		g.Go(func() error {
			rows[i] = p.buildRow(gctx, i, a)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		metrics.PipelineRuns.WithLabelValues("transform", metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("transform %s: %w", cc, err)
	}

	if err := p.store.PutCleaned(ctx, cc, rows); err != nil {
		metrics.PipelineRuns.WithLabelValues("transform", metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("save cleaned headlines for %s: %w", cc, err)
	}

	metrics.PipelineRuns.WithLabelValues("transform", metrics.OutcomeOK).Inc()
	p.logger.Info("cleaned and cached headlines", "country", cc, "count", len(rows))
	return rows, nil
}

func (p *Pipeline) buildRow(ctx context.Context, position int, a domain.Article) domain.CleanedArticle {
	enrichment := p.enricher.Enrich(ctx, position, a.Content)

	published := features.ParsePublished(a.PublishedAt)
	a.PublishedAt = features.FormatPublished(published)
	tf := features.Derive(published)

	return domain.CleanedArticle{
		Article:    a,
		ShortTitle: features.ShortTitle(a.Title, features.DefaultShortTitleWords),
		Sentiment:  enrichment.Sentiment,
		Entities:   enrichment.Entities,
		Topic:      enrichment.Topic,
		Published:  published,
		DayOfWeek:  tf.DayOfWeek,
		Month:      tf.Month,
		TimeOfDay:  tf.TimeOfDay,
	}
}

// cleanArticle strips markup and collapses whitespace in the free-text fields.
func cleanArticle(a domain.Article) domain.Article {
	a.Title = textclean.Clean(a.Title)
	a.Description = textclean.Clean(textclean.StripMarkup(a.Description))
	a.Content = textclean.Clean(textclean.StripMarkup(a.Content))
	return a
}

func outcomeOf(err error) string {
	if errors.Is(err, domain.ErrRateLimited) {
		return metrics.OutcomeRateLimited
	}
	return metrics.OutcomeError
}

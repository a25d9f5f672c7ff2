package usecase

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"HeadlineTrends/internal/domain"
)

type fakeSource struct {
	articles []domain.Article
	err      error
	calls    atomic.Int32
}

func (f *fakeSource) TopHeadlines(ctx context.Context, country string, pageSize int, language string) ([]domain.Article, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

type fakeSentiment struct {
	value domain.Sentiment
	err   error
	delay func(text string)
}

func (f *fakeSentiment) Sentiment(ctx context.Context, text string) (domain.Sentiment, error) {
	if f.delay != nil {
		f.delay(text)
	}
	return f.value, f.err
}

type fakeEntities struct {
	byText map[string][]string
	err    error
}

func (f *fakeEntities) Entities(ctx context.Context, text string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byText[text], nil
}

type fakeTopics struct {
	err error

	mu   sync.Mutex
	seen [][]string
}

func (f *fakeTopics) Topic(ctx context.Context, entities []string) (string, error) {
	f.mu.Lock()
	f.seen = append(f.seen, append([]string{}, entities...))
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "topic:" + strings.Join(entities, "+"), nil
}

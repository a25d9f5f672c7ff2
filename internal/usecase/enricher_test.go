package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"HeadlineTrends/internal/domain"
	"HeadlineTrends/internal/metrics"
	"HeadlineTrends/internal/ports"
)

func TestEnricherTopicOfNoEntities(t *testing.T) {
	t.Parallel()

	topics := &fakeTopics{}
	e := NewEnricher(nil, nil, topics, nil)
	skipped := metrics.EnrichmentCalls.WithLabelValues("topic", metrics.OutcomeSkipped)
	before := testutil.ToFloat64(skipped)

	if got := e.Topic(context.Background(), 0, []string{}); got != domain.UnknownTopic {
		t.Fatalf("Topic([]) = %q", got)
	}
	if len(topics.seen) != 0 {
		t.Fatal("topic service called for empty entities")
	}
	if after := testutil.ToFloat64(skipped); after < before+1 {
		t.Fatalf("skipped topic calls = %v, want at least %v", after, before+1)
	}
}

func TestEnricherNilServices(t *testing.T) {
	t.Parallel()

	got := NewEnricher(nil, nil, nil, nil).Enrich(context.Background(), 0, "text")
	want := Enrichment{Entities: []string{}, Topic: domain.UnknownTopic}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Enrich = %+v, want %+v", got, want)
	}
}

func TestEnricherEmptyInputDefaults(t *testing.T) {
	t.Parallel()

	e := NewEnricher(
		&fakeSentiment{err: ports.ErrEmptyInput},
		&fakeEntities{err: ports.ErrEmptyInput},
		&fakeTopics{err: errors.New("unreachable")},
		nil,
	)

	got := e.Enrich(context.Background(), 3, "")
	if got.Sentiment != "" || got.Entities == nil || len(got.Entities) != 0 || got.Topic != domain.UnknownTopic {
		t.Fatalf("unexpected enrichment %+v", got)
	}
}

func TestEnricherFiltersNumericBeforeTopic(t *testing.T) {
	t.Parallel()

	topics := &fakeTopics{}
	e := NewEnricher(nil, &fakeEntities{byText: map[string][]string{"x": {"NASA", "15.5", "50%", "99.9%"}}}, topics, nil)

	got := e.Enrich(context.Background(), 0, "x")
	if !reflect.DeepEqual(got.Entities, []string{"NASA"}) {
		t.Fatalf("entities = %v", got.Entities)
	}
	if !reflect.DeepEqual(topics.seen, [][]string{{"NASA"}}) {
		t.Fatalf("topic input = %v", topics.seen)
	}
}

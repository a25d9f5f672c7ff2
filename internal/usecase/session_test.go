package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"HeadlineTrends/internal/domain"
)

func TestSessionObserve(t *testing.T) {
	t.Parallel()

	s := NewSession()
	if s.Observe(errors.New("other")) || s.Observe(nil) {
		t.Fatal("latched on unrelated error")
	}
	if s.LimitExceeded() {
		t.Fatal("latched too early")
	}

	wrapped := fmt.Errorf("fetch: %w", &domain.UpstreamError{Service: "newsapi", Err: domain.ErrRateLimited})
	if !s.Observe(wrapped) || !s.LimitExceeded() {
		t.Fatal("expected latch on rate limit")
	}
	if s.Observe(errors.New("later failure")); !s.LimitExceeded() {
		t.Fatal("latch cleared by a later error")
	}
}

func TestSessionAvailableCountries(t *testing.T) {
	t.Parallel()

	supported := []string{"us", "gb", "ca", "au"}
	cached := []string{"gb"}

	s := NewSession()
	if got := s.AvailableCountries(supported, cached); !reflect.DeepEqual(got, supported) {
		t.Fatalf("before latch = %v", got)
	}

	s.MarkLimitExceeded()
	if got := s.AvailableCountries(supported, cached); !reflect.DeepEqual(got, cached) {
		t.Fatalf("after latch = %v", got)
	}
}

func TestNilSession(t *testing.T) {
	t.Parallel()

	var s *Session
	s.MarkLimitExceeded()
	if s.LimitExceeded() {
		t.Fatal("nil session reports a latch")
	}
}

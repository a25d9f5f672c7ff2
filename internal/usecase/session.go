package usecase

import (
	"errors"
	"sync"

	"HeadlineTrends/internal/domain"
)

// Session carries state that outlives a single pipeline call, such as the
// daily-limit latch. The API server keeps one per process; the CLI creates one per run.
type Session struct {
	mu            sync.RWMutex
	limitExceeded bool
}

// NewSession returns a session with no limit recorded.
func NewSession() *Session {
	return &Session{}
}

// LimitExceeded reports whether the headline source refused a fetch earlier in this session.
func (s *Session) LimitExceeded() bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limitExceeded
}

// MarkLimitExceeded switches the session to cache-only mode.
func (s *Session) MarkLimitExceeded() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.limitExceeded = true
	s.mu.Unlock()
}

// Observe latches the session when err carries domain.ErrRateLimited and reports whether it did.
func (s *Session) Observe(err error) bool {
	if !errors.Is(err, domain.ErrRateLimited) {
		return false
	}
	s.MarkLimitExceeded()
	return true
}

// AvailableCountries lists what a caller may request: every supported country,
// or only the cached ones once the limit was hit.
func (s *Session) AvailableCountries(supported, cached []string) []string {
	if s.LimitExceeded() {
		return append([]string{}, cached...)
	}
	return append([]string{}, supported...)
}

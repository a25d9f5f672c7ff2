package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited means the headline source reported its daily usage quota as exhausted.
	ErrRateLimited = errors.New("upstream daily usage limit exceeded")

	// ErrUpstreamUnavailable covers every other failed call to a remote service.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNoArticles is returned when a fetch yields nothing to cache for a country.
	ErrNoArticles = errors.New("no articles to save")

	// ErrNotFound is returned by cache stores for a missing country entry.
	ErrNotFound = errors.New("cache entry not found")

	// ErrRawNotFound is a transform invoked before any raw entry was cached.
	ErrRawNotFound = fmt.Errorf("raw headlines missing: %w", ErrNotFound)
)

// UpstreamError describes a failed call to a remote service.
type UpstreamError struct {
	Service    string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Service, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

package ml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"HeadlineTrends/internal/config"
	"HeadlineTrends/internal/domain"
	"HeadlineTrends/internal/metrics"
	"HeadlineTrends/internal/ports"
)

const (
	sentimentService = "sentiment"
	entitiesService  = "entities"
)

// ErrNoDocuments means the analysis service answered without any analyzed document.
var ErrNoDocuments = errors.New("analysis response has no documents")

// Client talks to the text-analysis service for sentiment and named entities.
type Client struct {
	sentimentURL string
	entitiesURL  string
	apiKey       string
	http         *http.Client
}

var _ ports.SentimentAnalyzer = (*Client)(nil)
var _ ports.EntityRecognizer = (*Client)(nil)

// NewClient creates a reusable client; a nil http.Client gets the configured timeout.
func NewClient(cfg config.EnrichmentConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		sentimentURL: cfg.SentimentURL,
		entitiesURL:  cfg.EntitiesURL,
		apiKey:       cfg.APIKey,
		http:         httpClient,
	}
}

type analysisResponse struct {
	Results struct {
		Documents []struct {
			Sentiment string `json:"sentiment"`
			Entities  []struct {
				Text string `json:"text"`
			} `json:"entities"`
		} `json:"documents"`
	} `json:"results"`
}

// Sentiment classifies the text as positive, neutral or negative.
func (c *Client) Sentiment(ctx context.Context, text string) (domain.Sentiment, error) {
	if strings.TrimSpace(text) == "" {
		return "", ports.ErrEmptyInput
	}

	var resp analysisResponse
	if err := c.post(ctx, sentimentService, c.sentimentURL, url.Values{"text": {text}}, &resp); err != nil {
		return "", err
	}

	docs := resp.Results.Documents
	if len(docs) == 0 {
		return "", fmt.Errorf("%s: %w", sentimentService, ErrNoDocuments)
	}

	sentiment, ok := domain.ParseSentiment(docs[0].Sentiment)
	if !ok {
		return "", fmt.Errorf("%s: unexpected label %q", sentimentService, docs[0].Sentiment)
	}
	return sentiment, nil
}

// Entities returns entity texts of the first analyzed document in order.
// A response without documents yields an empty list.
func (c *Client) Entities(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ports.ErrEmptyInput
	}

	var resp analysisResponse
	if err := c.post(ctx, entitiesService, c.entitiesURL, url.Values{"text": {text}}, &resp); err != nil {
		return nil, err
	}

	docs := resp.Results.Documents
	if len(docs) == 0 {
		return []string{}, nil
	}

	entities := make([]string, 0, len(docs[0].Entities))
	for _, e := range docs[0].Entities {
		entities = append(entities, e.Text)
	}
	return entities, nil
}

func (c *Client) post(ctx context.Context, service, endpoint string, form url.Values, v any) error {
	started := time.Now()
	err := c.do(ctx, service, endpoint, form, v)
	metrics.EnrichmentDuration.WithLabelValues(service).Observe(time.Since(started).Seconds())

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.EnrichmentCalls.WithLabelValues(service, outcome).Inc()
	return err
}

func (c *Client) do(ctx context.Context, service, endpoint string, form url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.UpstreamError{
			Service: service,
			Err:     fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if closeErr := resp.Body.Close(); closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return &domain.UpstreamError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(payload)),
			Err:        domain.ErrUpstreamUnavailable,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("%s: decode response: %w", service, err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}

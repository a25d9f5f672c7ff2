package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"HeadlineTrends/internal/config"
	"HeadlineTrends/internal/domain"
	"HeadlineTrends/internal/metrics"
	"HeadlineTrends/internal/ports"
)

const (
	headlinesPath = "/v2/top-headlines"
	serviceName   = "newsapi"
)

// Client fetches top headlines from a NewsAPI-compatible endpoint.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

var _ ports.HeadlineSource = (*Client)(nil)

// NewClient builds a client from configuration; a nil http.Client gets the configured timeout.
func NewClient(cfg config.NewsAPIConfig, client *http.Client, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
		logger:  logger,
	}
}

type articleDTO struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

type headlinesResponse struct {
	Status   string       `json:"status"`
	Articles []articleDTO `json:"articles"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// TopHeadlines returns the current top headlines for a country.
// Failed requests are logged and yield an empty result, except a daily-limit
// response, which is returned as domain.ErrRateLimited.
func (c *Client) TopHeadlines(ctx context.Context, country string, pageSize int, language string) ([]domain.Article, error) {
	endpoint, err := buildHeadlinesURL(c.baseURL, country, pageSize, language)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.HeadlineFetches.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, &domain.UpstreamError{
			Service: serviceName,
			Err:     fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		body := strings.TrimSpace(string(payload))

		if isDailyLimit(resp.StatusCode, payload) {
			metrics.HeadlineFetches.WithLabelValues(metrics.OutcomeRateLimited).Inc()
			return nil, &domain.UpstreamError{
				Service:    serviceName,
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       body,
				Err:        domain.ErrRateLimited,
			}
		}

		metrics.HeadlineFetches.WithLabelValues(metrics.OutcomeError).Inc()
		c.logger.Warn("error fetching headlines", "country", country, "status", resp.StatusCode, "body", body)
		return []domain.Article{}, nil
	}

	var decoded headlinesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.HeadlineFetches.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, &domain.UpstreamError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        fmt.Errorf("%w: decode response: %w", domain.ErrUpstreamUnavailable, err),
		}
	}

	articles := make([]domain.Article, 0, len(decoded.Articles))
	for _, a := range decoded.Articles {
		articles = append(articles, domain.Article{
			SourceID:    a.Source.ID,
			SourceName:  a.Source.Name,
			Author:      a.Author,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			URLToImage:  a.URLToImage,
			PublishedAt: a.PublishedAt,
			Content:     a.Content,
		})
	}

	outcome := metrics.OutcomeOK
	if len(articles) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.HeadlineFetches.WithLabelValues(outcome).Inc()
	c.logger.Debug("fetched headlines", "country", country, "count", len(articles), "duration", time.Since(started))

	return articles, nil
}

func buildHeadlinesURL(base, country string, pageSize int, language string) (string, error) {
	parsed, err := url.Parse(base + headlinesPath)
	if err != nil {
		return "", fmt.Errorf("invalid headline api url %s: %w", base, err)
	}

	if pageSize <= 0 || pageSize > config.MaxPageSize {
		pageSize = config.MaxPageSize
	}
	if language == "" {
		language = "en"
	}

	query := parsed.Query()
	query.Set("country", strings.ToLower(strings.TrimSpace(country)))
	query.Set("pageSize", strconv.Itoa(pageSize))
	query.Set("language", language)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// isDailyLimit recognises the quota-exhausted responses of the headline API.
func isDailyLimit(status int, payload []byte) bool {
	if status == http.StatusTooManyRequests {
		return true
	}

	var e errorResponse
	if err := json.Unmarshal(payload, &e); err == nil {
		if strings.EqualFold(e.Code, "rateLimited") {
			return true
		}
	}

	text := strings.ToLower(string(payload))
	if e.Message != "" {
		text = strings.ToLower(e.Message)
	}
	return strings.Contains(text, "daily api usage") ||
		(strings.Contains(text, "daily") && (strings.Contains(text, "limit") || strings.Contains(text, "usage")))
}

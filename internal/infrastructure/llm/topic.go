package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
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

const serviceName = "topic"

var (
	// ErrBlankTopic is returned when the generation service answers with nothing usable.
	ErrBlankTopic = errors.New("topic service returned a blank answer")
	// ErrMalformedTopic is returned when the body is JSON but not a string.
	ErrMalformedTopic = errors.New("topic service returned a non-string payload")
)

const promptTemplate = "Given these entities: %s. Respond with only a one or two-word topic that best summarizes them. " +
	"Do not explain. Do not give reasoning. Only respond with the one or two-word topic name. " +
	"Make them broad, for example if the entities are things like Nasdaq, stock, 0.1%% the topic should be finance, " +
	"If the entities are United States, immigrants, federal raid the topic should be politics"

// TopicClient labels entity lists through a text-generation endpoint.
type TopicClient struct {
	endpoint    string
	apiKey      string
	temperature float64
	httpClient  *http.Client
}

var _ ports.TopicGenerator = (*TopicClient)(nil)

// NewTopicClient builds a client from configuration.
func NewTopicClient(cfg config.EnrichmentConfig, httpClient *http.Client) *TopicClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &TopicClient{
		endpoint:    cfg.TopicURL,
		apiKey:      cfg.APIKey,
		temperature: cfg.Temperature,
		httpClient:  httpClient,
	}
}

// Topic asks the service for a one or two word label covering the entities.
func (c *TopicClient) Topic(ctx context.Context, entities []string) (string, error) {
	if len(entities) == 0 {
		return "", ports.ErrEmptyInput
	}

	started := time.Now()
	topic, err := c.generate(ctx, buildPrompt(entities))
	metrics.EnrichmentDuration.WithLabelValues(serviceName).Observe(time.Since(started).Seconds())

	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.EnrichmentCalls.WithLabelValues(serviceName, outcome).Inc()

	return topic, err
}

func (c *TopicClient) generate(ctx context.Context, prompt string) (string, error) {
	form := url.Values{
		"query":       {prompt},
		"temperature": {strconv.FormatFloat(c.temperature, 'f', -1, 64)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.UpstreamError{
			Service: serviceName,
			Err:     fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err),
		}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return "", fmt.Errorf("read topic response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.UpstreamError{
			Service:    serviceName,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(payload)),
			Err:        domain.ErrUpstreamUnavailable,
		}
	}

	return parseTopic(payload)
}

func buildPrompt(entities []string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(entities, ", "))
}

// parseTopic accepts a JSON string body or plain text. Any other JSON value is rejected.
func parseTopic(payload []byte) (string, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return "", ErrBlankTopic
	}

	var topic string
	switch trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &topic); err != nil {
			return "", fmt.Errorf("%w: %w", ErrMalformedTopic, err)
		}
	case '{', '[':
		return "", fmt.Errorf("%w: %s", ErrMalformedTopic, truncate(trimmed, 120))
	default:
		topic = string(trimmed)
	}

	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ErrBlankTopic
	}
	return topic, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Package scoring talks to the sentiment-scoring and rewrite cloud functions.
package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"starc/internal/domain"
	"starc/internal/domain/models"
)

// maxResponseBytes caps how much of an upstream body is read
const maxResponseBytes = 1 << 20

// Client calls the two cloud functions. Both take {"text": ...} and an
// apikey query parameter. There are no retries; the http.Client timeout
// bounds each call.
type Client struct {
	scoreURL   string
	rewriteURL string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a scoring/rewrite client
func NewClient(scoreURL, rewriteURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		scoreURL:   scoreURL,
		rewriteURL: rewriteURL,
		apiKey:     apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Score returns the sentiment metrics for text.
// The endpoint answers with [score, optimism, confidence, forecast].
func (c *Client) Score(ctx context.Context, text string) (*models.Scores, error) {
	body, err := c.post(ctx, c.scoreURL, text)
	if err != nil {
		return nil, err
	}

	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		c.logger.Error("scoring response is not a JSON array", "error", err)
		return nil, &domain.UpstreamError{Message: "scoring service returned an invalid response"}
	}
	if len(raw) != 4 {
		c.logger.Error("scoring response has wrong length", "length", len(raw))
		return nil, &domain.UpstreamError{Message: "scoring service returned an invalid response"}
	}

	values := make([]float64, len(raw))
	for i, v := range raw {
		f, err := toFloat(v)
		if err != nil {
			c.logger.Error("scoring response has non-numeric value", "index", i, "error", err)
			return nil, &domain.UpstreamError{Message: "scoring service returned an invalid response"}
		}
		values[i] = f
	}

	return &models.Scores{
		Score:      values[0],
		Optimism:   values[1],
		Confidence: values[2],
		Forecast:   values[3],
	}, nil
}

// Rewrite returns the rewritten text; the endpoint answers with the raw text
func (c *Client) Rewrite(ctx context.Context, text string) (string, error) {
	body, err := c.post(ctx, c.rewriteURL, text)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) post(ctx context.Context, endpoint, text string) ([]byte, error) {
	target, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	query := target.Query()
	query.Set("apikey", c.apiKey)
	target.RawQuery = query.Encode()

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("scoring request abandoned: %w", ctxErr)
		}
		c.logger.Error("upstream request failed", "endpoint", target.Host+target.Path, "error", err)
		return nil, &domain.UpstreamError{Message: "scoring service unavailable"}
	}
	defer func() { _ = resp.Body.Close() }() // Error ignored: response consumed

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &domain.UpstreamError{Message: "failed to read scoring service response"}
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("upstream returned error status",
			"endpoint", target.Host+target.Path,
			"status", resp.StatusCode,
			"body", truncate(string(body), 200),
		)
		return nil, &domain.UpstreamError{Message: fmt.Sprintf("scoring service returned status %d", resp.StatusCode)}
	}

	c.logger.Debug("upstream call completed",
		"endpoint", target.Host+target.Path,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return body, nil
}

// toFloat accepts JSON numbers and numeric strings
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

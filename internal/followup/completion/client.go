// Package completion calls the hosted chat-completion API with caching,
// one bounded retry and typed failures.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/common/metrics"
	"survey-intelligence/internal/followup/cache"
)

const maxResponseBytes = 4 << 20

// Doer is satisfied by *http.Client and the pooled common client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	config *Config
	http   Doer
	cache  cache.Cache
	logger logger.Logger
}

func NewClient(config *Config, httpClient Doer, responseCache cache.Cache, log logger.Logger) *Client {
	return &Client{
		config: config,
		http:   httpClient,
		cache:  responseCache,
		logger: log.With(map[string]interface{}{
			"component": "completion-client",
			"model":     config.Model,
		}),
	}
}

// Complete returns the provider payload for prompt, serving identical
// requests from the cache while fresh.
func (c *Client) Complete(ctx context.Context, prompt string, params Params) (*ChatCompletion, error) {
	key := c.cacheKey(prompt, params)

	if raw, ok := c.cache.Get(ctx, key); ok {
		var cached ChatCompletion
		if err := json.Unmarshal(raw, &cached); err == nil {
			metrics.CompletionRequests.WithLabelValues("cache_hit").Inc()
			return &cached, nil
		}
		c.logger.Warn("Discarding undecodable cache entry", map[string]interface{}{"key": key})
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(c.buildRequest(prompt, params))
	if err != nil {
		return nil, &CompletionError{Kind: KindNetwork, Message: "encode request", Err: err}
	}

	start := time.Now()
	raw, err := c.doWithRetry(ctx, body)
	if err != nil {
		outcome := outcomeFor(err)
		metrics.CompletionRequests.WithLabelValues(outcome).Inc()
		metrics.CompletionDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		c.logger.Error("Completion request failed", map[string]interface{}{
			"error":      err.Error(),
			"durationMs": time.Since(start).Milliseconds(),
		})
		return nil, err
	}

	var out ChatCompletion
	if err := json.Unmarshal(raw, &out); err != nil {
		metrics.CompletionRequests.WithLabelValues("decode_error").Inc()
		return nil, &CompletionError{Kind: KindNetwork, Message: "decode provider response", Err: err}
	}

	metrics.CompletionRequests.WithLabelValues("success").Inc()
	metrics.CompletionDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	c.logger.Debug("Completion request succeeded", map[string]interface{}{
		"durationMs": time.Since(start).Milliseconds(),
		"choices":    len(out.Choices),
	})

	c.cache.Put(ctx, key, raw)
	return &out, nil
}

func (c *Client) doWithRetry(ctx context.Context, body []byte) ([]byte, error) {
	var lastErr *CompletionError

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.CompletionRetries.Inc()
			c.logger.Warn("Retrying completion request", map[string]interface{}{
				"attempt": attempt,
				"reason":  lastErr.Error(),
			})
			select {
			case <-time.After(c.config.RetryBackoff):
			case <-ctx.Done():
				return nil, contextError(ctx, lastErr)
			}
		}

		raw, status, err := c.send(ctx, body)
		if err != nil {
			if ctx.Err() != nil || isTimeout(err) {
				return nil, contextError(ctx, &CompletionError{Kind: KindNetwork, Message: err.Error(), Err: err})
			}
			lastErr = &CompletionError{Kind: KindNetwork, Message: err.Error(), Err: err}
			continue
		}

		if status >= 200 && status < 300 {
			return raw, nil
		}

		lastErr = &CompletionError{Kind: KindHTTPStatus, StatusCode: status, Message: snippet(raw)}
		if !retryableStatus(status) {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

func (c *Client) send(ctx context.Context, body []byte) ([]byte, int, error) {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, 0, err
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) buildRequest(prompt string, params Params) chatRequest {
	messages := make([]Message, 0, 2)
	if params.SystemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: params.SystemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	return chatRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		TopP:        params.TopP,
	}
}

func (c *Client) cacheKey(prompt string, params Params) string {
	return cache.Fingerprint(
		"chat",
		c.config.Model,
		params.SystemPrompt,
		prompt,
		strconv.FormatFloat(params.Temperature, 'f', -1, 64),
		strconv.Itoa(params.MaxTokens),
		strconv.FormatFloat(params.TopP, 'f', -1, 64),
	)
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// contextError reports a deadline as KindTimeout and anything else as fallback.
func contextError(ctx context.Context, fallback *CompletionError) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || (fallback != nil && isTimeout(fallback.Err)) {
		return &CompletionError{Kind: KindTimeout, Message: "provider did not respond in time", Err: context.DeadlineExceeded}
	}
	if fallback != nil {
		return fallback
	}
	return &CompletionError{Kind: KindNetwork, Message: "request canceled", Err: ctx.Err()}
}

func outcomeFor(err error) string {
	var ce *CompletionError
	if !errors.As(err, &ce) {
		return "network_error"
	}
	switch ce.Kind {
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_error"
	default:
		return "network_error"
	}
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 300 {
		s = s[:300] + "..."
	}
	if s == "" {
		return "empty response body"
	}
	return s
}

// Package generator implements ports.ContentGenerator against an
// OpenAI-compatible chat completions endpoint.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/patchwork/internal/core/domain"
	"go.trai.ch/patchwork/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	completionsPath = "/v1/chat/completions"
	maxAttempts     = 4
	baseRetryDelay  = time.Second
	maxRetryDelay   = 30 * time.Second
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client talks to the generator endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	maxTokens  int
	logger     ports.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// New creates a Client from settings. The API key is read from the
// environment variable named by settings.APIKeyEnv.
func New(settings domain.GeneratorSettings, logger ports.Logger) (*Client, error) {
	envName := settings.APIKeyEnv
	if envName == "" {
		envName = domain.DefaultAPIKeyEnv
	}
	apiKey := os.Getenv(envName)
	if apiKey == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrGeneratorNotConfigured, envName+" is not set"), "env", envName)
	}

	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
		},
		baseURL:   strings.TrimRight(settings.BaseURL, "/"),
		model:     settings.Model,
		apiKey:    apiKey,
		maxTokens: settings.MaxContextTokens,
		logger:    logger,
		sleep:     sleepContext,
	}, nil
}

// complete sends one conversation and returns the assistant content.
// Transient HTTP failures are retried with capped exponential backoff.
func (c *Client) complete(ctx context.Context, messages []domain.Message, jsonMode bool) (string, error) {
	req := chatRequest{
		Model:    c.model,
		Messages: make([]chatMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	if jsonMode {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", zerr.Wrap(err, "marshal chat request")
	}

	resp, err := c.doWithRetry(ctx, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionsPath, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Authorization", "Bearer "+c.apiKey)
		r.Header.Set("Content-Type", "application/json")
		return r, nil
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", zerr.Wrap(zerr.Wrap(domain.ErrGeneratorRequestFailed, err.Error()), "decode chat response")
	}
	if len(decoded.Choices) == 0 {
		return "", &domain.ValidationError{Field: "choices", Reason: "response contained no choices"}
	}
	return decoded.Choices[0].Message.Content, nil
}

func (c *Client) doWithRetry(
	ctx context.Context, build func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, zerr.Wrap(err, "generator request canceled")
		}
		req, err := build(ctx)
		if err != nil {
			return nil, zerr.Wrap(err, "build generator request")
		}

		resp, err := c.httpClient.Do(req)
		delay := retryDelayForAttempt(attempt)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, zerr.Wrap(ctx.Err(), "generator request canceled")
			}
			lastErr = zerr.Wrap(domain.ErrGeneratorRequestFailed, err.Error())
		case resp.StatusCode == http.StatusOK:
			return resp, nil
		default:
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			_ = resp.Body.Close()
			lastErr = zerr.With(
				zerr.Wrap(domain.ErrGeneratorRequestFailed, fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))),
				"status", resp.StatusCode,
			)
			if !isRetryableStatus(resp.StatusCode) {
				return nil, lastErr
			}
			if d, ok := retryAfterDelay(resp.Header.Get("Retry-After")); ok {
				delay = d
			}
		}

		if attempt == maxAttempts {
			break
		}
		c.logger.Warn(fmt.Sprintf("generator request failed (attempt %d/%d), retrying in %s", attempt, maxAttempts, delay))
		if err := c.sleep(ctx, delay); err != nil {
			return nil, zerr.Wrap(err, "generator request canceled")
		}
	}
	return nil, zerr.With(lastErr, "attempts", maxAttempts)
}

func retryDelayForAttempt(attempt int) time.Duration {
	d := baseRetryDelay << attempt
	if d <= 0 || d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

func retryAfterDelay(header string) (time.Duration, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		return min(time.Duration(secs)*time.Second, maxRetryDelay), true
	}
	if at, err := http.ParseTime(header); err == nil {
		d := time.Until(at)
		if d <= 0 {
			return 0, true
		}
		return min(d, maxRetryDelay), true
	}
	return 0, false
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

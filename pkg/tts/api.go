package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/teslashibe/go-g1/internal/httpc"
)

// errorDecoder extracts the provider error code and message from a
// failed response body.
type errorDecoder func(body []byte) (code, message string)

// apiClient is the HTTP plumbing shared by the providers.
type apiClient struct {
	provider  string
	baseURL   string
	headers   http.Header
	retry     retryPolicy
	http      *http.Client
	logger    *slog.Logger
	decodeErr errorDecoder
}

func newAPIClient(provider string, cfg providerConfig, headers http.Header, decode errorDecoder) *apiClient {
	return &apiClient{
		provider:  provider,
		baseURL:   strings.TrimRight(cfg.baseURL, "/"),
		headers:   headers,
		retry:     cfg.retry,
		http:      httpc.NewClient(cfg.timeout),
		logger:    cfg.logger.With("component", "tts."+provider),
		decodeErr: decode,
	}
}

// synthesize POSTs payload to path and returns the audio body. 429 and
// 5xx answers are retried per the retry policy.
func (c *apiClient) synthesize(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(c.provider, fmt.Errorf("marshal payload: %w", err))
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= c.retry.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retry.backoff * time.Duration(attempt)):
			}
		}

		audio, err := c.once(ctx, path, body)
		if err == nil {
			observeRequest(c.provider, "ok", start)
			return audio, nil
		}
		lastErr = err

		var apiErr *APIError
		switch {
		case ctx.Err() != nil:
			observeRequest(c.provider, "canceled", start)
			return nil, err
		case errors.As(err, &apiErr) && apiErr.Retryable():
			c.logger.Warn("provider busy, retrying", "attempt", attempt+1, "status", apiErr.Status)
		case apiErr != nil:
			observeRequest(c.provider, "rejected", start)
			return nil, err
		default:
			c.logger.Warn("request failed, retrying", "attempt", attempt+1, "error", err)
		}
	}
	observeRequest(c.provider, "failed", start)
	return nil, lastErr
}

func (c *apiClient) once(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(c.provider, err)
	}
	req.Header = c.headers.Clone()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, WrapError(c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(c.provider, err)
	}
	if len(audio) == 0 {
		return nil, WrapError(c.provider, ErrEmptyAudio)
	}
	return audio, nil
}

// ping GETs path and expects 200.
func (c *apiClient) ping(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return WrapError(c.provider, err)
	}
	req.Header = c.headers.Clone()

	resp, err := c.http.Do(req)
	if err != nil {
		return WrapError(c.provider, fmt.Errorf("health check: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return c.apiError(resp)
	}
	return nil
}

func (c *apiClient) apiError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	e := &APIError{Provider: c.provider, Status: resp.StatusCode, Message: string(bytes.TrimSpace(body))}
	if code, msg := c.decodeErr(body); msg != "" {
		e.Code, e.Message = code, msg
	}
	return e
}

func (c *apiClient) close() { c.http.CloseIdleConnections() }

package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"purl2src/internal/ports"
)

const (
	defaultHTTPTimeout    = 30 * time.Second
	defaultHTTPRetries    = 3
	defaultHTTPRetryDelay = 200 * time.Millisecond
	maxHTTPRetryDelay     = 2 * time.Second
	userAgent             = "purl2src/1.0"
)

// HTTPClientAdapter implements ports.HTTPPort against real registries.
// Transient failures (transport errors, 5xx, 429) are retried with
// exponential backoff; a 404 maps to ports.ErrNotFound so callers can
// tell a missing package from an unreachable registry.
type HTTPClientAdapter struct {
	Client     *http.Client
	Retries    int
	RetryDelay time.Duration
}

func NewHTTPClientAdapter(timeoutSec int, retries int, retryDelayMs int) *HTTPClientAdapter {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if retries <= 0 {
		retries = defaultHTTPRetries
	}
	retryDelay := time.Duration(retryDelayMs) * time.Millisecond
	if retryDelay <= 0 {
		retryDelay = defaultHTTPRetryDelay
	}
	return &HTTPClientAdapter{
		Client:     &http.Client{Timeout: timeout},
		Retries:    retries,
		RetryDelay: retryDelay,
	}
}

func (a *HTTPClientAdapter) GetJSON(ctx context.Context, url string, out any) error {
	var lastErr error
	for attempt := 0; attempt < a.Retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		retry, err := a.getJSONOnce(ctx, url, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == a.Retries-1 {
			return err
		}
		time.Sleep(a.retryDelay(attempt))
	}
	return lastErr
}

func (a *HTTPClientAdapter) getJSONOnce(ctx context.Context, url string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create registry request").
			WithCause(err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return true, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("registry request failed").
			WithCause(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, fmt.Errorf("GET %s: %w", url, ports.ErrNotFound)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return true, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read registry response").
				WithCause(err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to decode registry response").
				WithCause(err)
		}
		return false, nil
	default:
		retry := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
		return retry, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("registry request failed").
			WithCause(fmt.Errorf("status=%d url=%s", resp.StatusCode, url))
	}
}

func (a *HTTPClientAdapter) retryDelay(attempt int) time.Duration {
	delay := a.RetryDelay * time.Duration(1<<attempt)
	if delay > maxHTTPRetryDelay {
		delay = maxHTTPRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

var _ ports.HTTPPort = (*HTTPClientAdapter)(nil)

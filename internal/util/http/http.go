// Package http provides HTTP utilities for fetching remote resources.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jmylchreest/skytint/internal/version"
)

const (
	// DefaultTimeout is the default per-attempt HTTP request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxElapsed bounds the total time spent retrying.
	DefaultMaxElapsed = 30 * time.Second

	// DefaultMaxBytes caps the response body size.
	DefaultMaxBytes = 32 << 20
)

// FetchOptions configures HTTP fetch behavior.
type FetchOptions struct {
	// Timeout specifies the per-attempt request timeout.
	// If zero, DefaultTimeout is used.
	Timeout time.Duration

	// MaxElapsed bounds retries of 429 and 5xx responses.
	// If zero, DefaultMaxElapsed is used. Negative disables retries.
	MaxElapsed time.Duration

	// MaxBytes caps the body size. If zero, DefaultMaxBytes is used.
	MaxBytes int64

	// Headers specifies additional HTTP headers to send with the request.
	Headers map[string]string
}

// StatusError reports a non-200 response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// newBackOff is replaced in tests to avoid real sleeps.
var newBackOff = func(maxElapsed time.Duration) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxElapsed
	return bo
}

// Fetch retrieves content from a URL with context and timeout support.
// It sets the User-Agent header, retries rate-limited and server-error
// responses with exponential backoff, and fails fast on everything else.
func Fetch(ctx context.Context, url string, opts FetchOptions) ([]byte, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	maxBytes := opts.MaxBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxBytes
	}

	client := &http.Client{
		Timeout: timeout,
	}

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}

		req.Header.Set("User-Agent", version.UserAgent())
		for key, value := range opts.Headers {
			req.Header.Set(key, value)
		}

		resp, err := client.Do(req)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("request failed: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := &StatusError{Code: resp.StatusCode, Status: resp.Status}
			if retryable(resp.StatusCode) {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to read response body: %w", err))
		}
		if int64(len(data)) > maxBytes {
			return backoff.Permanent(fmt.Errorf("response body exceeds %d bytes", maxBytes))
		}
		body = data
		return nil
	}

	if opts.MaxElapsed < 0 {
		if err := operation(); err != nil {
			return nil, unwrapPermanent(err)
		}
		return body, nil
	}

	maxElapsed := opts.MaxElapsed
	if maxElapsed == 0 {
		maxElapsed = DefaultMaxElapsed
	}

	if err := backoff.Retry(operation, backoff.WithContext(newBackOff(maxElapsed), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func unwrapPermanent(err error) error {
	if p, ok := err.(*backoff.PermanentError); ok {
		return p.Err
	}
	return err
}

package provider

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMaxRetries = 5
	backoffBase       = time.Second
	backoffCap        = 32 * time.Second
	backoffJitter     = 0.2
)

// withRetry re-issues the request while the API reports rate limiting
// (429 or 529), honoring Retry-After when one is sent. Transport errors
// and every other status pass through to the caller on first sight.
func withRetry(ctx context.Context, maxRetries int, fn func() (*http.Response, error)) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := fn()
		if err != nil {
			return nil, err
		}
		rateLimited := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == 529
		if !rateLimited || attempt >= maxRetries {
			return resp, nil
		}
		wait := retryAfter(resp.Header.Get("Retry-After"))
		if wait < 0 {
			wait = backoff(attempt)
		}
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// retryAfter parses a Retry-After header, either delta-seconds or an HTTP
// date. Returns a negative duration when the header is absent or unusable.
func retryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return -1
	}
	if secs, err := strconv.Atoi(header); err == nil {
		if secs < 0 {
			secs = 0
		}
		return time.Duration(secs) * time.Second
	}
	at, err := http.ParseTime(header)
	if err != nil {
		return -1
	}
	if wait := time.Until(at); wait > 0 {
		return wait
	}
	return 0
}

func backoff(attempt int) time.Duration {
	wait := backoffBase << attempt
	if wait > backoffCap {
		wait = backoffCap
	}
	return wait + time.Duration(float64(wait)*backoffJitter*rand.Float64())
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package source

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/gocolly/colly"

	"filmawards/internal/config"
	"filmawards/internal/logging"
	"filmawards/internal/util"
)

// WebFetcher downloads pages over HTTP with a polite interval between
// requests and exponential backoff on transient failures. Cancellation is
// only checked between attempts; an in-flight request runs until it
// completes or hits the request timeout.
type WebFetcher struct {
	userAgent string
	timeout   time.Duration
	retries   int
	backoff   time.Duration
	limiter   *util.RateLimiter
	log       *slog.Logger
}

func NewWebFetcher(cfg config.Config, log *slog.Logger) *WebFetcher {
	retries := cfg.FetchRetries
	if retries <= 0 {
		retries = 1
	}
	f := &WebFetcher{
		userAgent: cfg.FetchUserAgent,
		timeout:   time.Duration(cfg.FetchTimeoutMs) * time.Millisecond,
		retries:   retries,
		backoff:   time.Second,
		limiter:   util.NewRateLimiter(time.Duration(cfg.FetchDelayMs) * time.Millisecond),
		log:       logging.OrDefault(log),
	}
	if f.timeout <= 0 {
		f.timeout = 30 * time.Second
	}
	return f
}

func (f *WebFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= f.retries; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, status, err := f.visit(pageURL)
		if err == nil {
			f.log.Debug("page fetched", "url", pageURL, "bytes", len(body))
			return body, nil
		}
		if status == http.StatusNotFound {
			return nil, fmt.Errorf("fetch %s: %w", pageURL, ErrNotFound)
		}
		lastErr = err
		if status != 0 && !isRetryableStatus(status) {
			break
		}
		if attempt < f.retries {
			wait := f.backoff*time.Duration(1<<(attempt-1)) + time.Duration(rand.Intn(100))*time.Millisecond
			f.log.Warn("page fetch retry", "url", pageURL, "attempt", attempt, "status", status, "error", err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return nil, fmt.Errorf("fetch %s: %w", pageURL, lastErr)
}

// visit runs one request on a fresh collector so retries of the same URL are
// never suppressed as revisits.
func (f *WebFetcher) visit(pageURL string) ([]byte, int, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(f.timeout)

	var (
		body   []byte
		status int
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, status, err
	}
	if status < 200 || status >= 300 {
		return nil, status, fmt.Errorf("unexpected status %d", status)
	}
	return body, status, nil
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

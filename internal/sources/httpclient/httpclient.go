// Package httpclient is the shared transport for the external data APIs.
// It adds auth, throttling, response caching and retries on top of net/http
// so that each source package only maps endpoints to models.
package httpclient

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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("not found")

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oraculo_source_requests_total",
		Help: "Requests sent to external data sources",
	}, []string{"source", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "oraculo_source_request_duration_seconds",
		Help:    "Latency of external data source requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oraculo_source_cache_hits_total",
		Help: "Responses served from cache",
	}, []string{"source"})
)

// APIError represents a non-2xx HTTP response.
type APIError struct {
	Source     string
	StatusCode int
	Body       string // first 512 bytes
	retryAfter string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api status %d: %s", e.Source, e.StatusCode, e.Body)
}

// Cache stores raw response bodies keyed by request URL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Client is an HTTP client bound to one API.
type Client struct {
	source     string
	baseURL    string
	bearer     string
	keyParam   string
	keyValue   string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
	cacheTTL   time.Duration
	logger     *zap.SugaredLogger
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option configures Client behavior.
type Option func(*Client)

// WithBearer sends "Authorization: Bearer <token>" when token is not empty.
func WithBearer(token string) Option {
	return func(c *Client) { c.bearer = token }
}

// WithQueryKey appends an API key query parameter when value is not empty.
func WithQueryKey(name, value string) Option {
	return func(c *Client) {
		c.keyParam = name
		c.keyValue = value
	}
}

// WithRateLimit throttles outgoing requests. rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCache caches successful GET responses for ttl.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l.Sugar() }
}

// WithMaxRetries overrides the retry budget for 429 and 5xx responses.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// New creates a Client for the named source rooted at baseURL.
func New(source, baseURL string, opts ...Option) *Client {
	c := &Client{
		source:     source,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop().Sugar(),
		maxRetries: 3,
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns the name used in logs and metrics.
func (c *Client) Source() string { return c.source }

// GetJSON sends a GET request and unmarshals the JSON response into dest.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, dest any) error {
	fullURL, cacheKey := c.buildURL(path, query)

	if c.cache != nil {
		if body, ok, err := c.cache.Get(ctx, cacheKey); err != nil {
			c.logger.Warnw("Cache read failed", "source", c.source, "error", err)
		} else if ok {
			cacheHits.WithLabelValues(c.source).Inc()
			return json.Unmarshal(body, dest)
		}
	}

	body, err := c.do(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body, c.cacheTTL); err != nil {
			c.logger.Warnw("Cache write failed", "source", c.source, "error", err)
		}
	}
	return json.Unmarshal(body, dest)
}

// PostJSON sends payload as a JSON body and unmarshals the response into dest.
// POST responses are never cached.
func (c *Client) PostJSON(ctx context.Context, path string, payload, dest any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", c.source, err)
	}
	fullURL, _ := c.buildURL(path, nil)
	body, err := c.do(ctx, http.MethodPost, fullURL, data)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dest)
}

// buildURL returns the request URL and a cache key that leaves out the API key.
func (c *Client) buildURL(path string, query url.Values) (string, string) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	u := c.baseURL + path
	key := u
	if len(q) > 0 {
		key += "?" + q.Encode()
	}
	if c.keyParam != "" && c.keyValue != "" {
		q.Set(c.keyParam, c.keyValue)
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u, c.source + ":" + key
}

// do executes the request, retrying on 429 (with Retry-After) and 5xx
// (with exponential backoff: 1s, 2s, 4s).
func (c *Client) do(ctx context.Context, method, fullURL string, payload []byte) ([]byte, error) {
	var lastErr *APIError
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoffDelay(attempt, lastErr)
			c.logger.Warnw("Retrying request", "source", c.source, "attempt", attempt, "wait", wait, "status", lastErr.StatusCode)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.bearer != "" {
			req.Header.Set("Authorization", "Bearer "+c.bearer)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		requestDuration.WithLabelValues(c.source).Observe(time.Since(start).Seconds())
		if err != nil {
			requestsTotal.WithLabelValues(c.source, "error").Inc()
			return nil, fmt.Errorf("%s http: %w", c.source, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		requestsTotal.WithLabelValues(c.source, strconv.Itoa(resp.StatusCode)).Inc()
		if err != nil {
			return nil, fmt.Errorf("%s read body: %w", c.source, err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s %s: %w", c.source, req.URL.Path, ErrNotFound)
		}

		bodyStr := string(body)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}
		apiErr := &APIError{Source: c.source, StatusCode: resp.StatusCode, Body: bodyStr}

		if resp.StatusCode == http.StatusTooManyRequests {
			apiErr.retryAfter = resp.Header.Get("Retry-After")
			lastErr = apiErr
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = apiErr
			continue
		}
		return nil, apiErr
	}
	return nil, lastErr
}

// backoffDelay returns the wait duration before a retry attempt.
func backoffDelay(attempt int, lastErr *APIError) time.Duration {
	if lastErr != nil && lastErr.StatusCode == http.StatusTooManyRequests && lastErr.retryAfter != "" {
		if secs, err := strconv.Atoi(lastErr.retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(1<<(attempt-1)) * time.Second
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

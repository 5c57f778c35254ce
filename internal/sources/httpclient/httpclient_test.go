package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func noSleep(c *Client) {
	c.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string][]byte{}
	}
	m.data[key] = value
	return nil
}

func TestGetJSON_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"match_id":42,"radiant_win":true}`))
	}))
	defer srv.Close()

	c := New("test", srv.URL)
	var dest struct {
		MatchID    int64 `json:"match_id"`
		RadiantWin bool  `json:"radiant_win"`
	}
	if err := c.GetJSON(context.Background(), "/matches/42", nil, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.MatchID != 42 || !dest.RadiantWin {
		t.Fatalf("unexpected result: %+v", dest)
	}
}

func TestGetJSON_AuthModes(t *testing.T) {
	var gotAuth, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.URL.Query().Get("api_key")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New("test", srv.URL, WithBearer("tok"), WithQueryKey("api_key", "k123"))
	if err := c.GetJSON(context.Background(), "/", url.Values{"limit": {"5"}}, &struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotKey != "k123" {
		t.Errorf("api_key = %q", gotKey)
	}
}

func TestGetJSON_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New("test", srv.URL)
	err := c.GetJSON(context.Background(), "/missing", nil, &struct{}{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetJSON_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	c := New("test", srv.URL)
	noSleep(c)
	err := c.GetJSON(context.Background(), "/", nil, &struct{}{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestGetJSON_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New("test", srv.URL)
	noSleep(c)
	var dest struct {
		OK bool `json:"ok"`
	}
	if err := c.GetJSON(context.Background(), "/", nil, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dest.OK || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("ok=%v calls=%d", dest.OK, calls)
	}
}

func TestGetJSON_RetryBudgetExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New("test", srv.URL, WithMaxRetries(2))
	noSleep(c)
	err := c.GetJSON(context.Background(), "/", nil, &struct{}{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 APIError, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestGetJSON_CacheSkipsSecondRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"n":7}`))
	}))
	defer srv.Close()

	cache := &memCache{}
	c := New("test", srv.URL, WithCache(cache, time.Minute), WithQueryKey("key", "secret"))
	for i := 0; i < 2; i++ {
		var dest struct {
			N int `json:"n"`
		}
		if err := c.GetJSON(context.Background(), "/heroes", nil, &dest); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dest.N != 7 {
			t.Fatalf("N = %d", dest.N)
		}
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	for k := range cache.data {
		if k != "test:"+srv.URL+"/heroes" {
			t.Errorf("cache key %q should not contain the API key", k)
		}
	}
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"data":{"id":1}}`))
	}))
	defer srv.Close()

	c := New("test", srv.URL)
	var dest struct {
		Data struct {
			ID int `json:"id"`
		} `json:"data"`
	}
	if err := c.PostJSON(context.Background(), "/graphql", map[string]string{"query": "{}"}, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Data.ID != 1 {
		t.Errorf("ID = %d", dest.Data.ID)
	}
}

func TestBackoffDelay(t *testing.T) {
	if d := backoffDelay(1, nil); d != time.Second {
		t.Errorf("attempt 1 = %v", d)
	}
	if d := backoffDelay(3, &APIError{StatusCode: 500}); d != 4*time.Second {
		t.Errorf("attempt 3 = %v", d)
	}
	if d := backoffDelay(1, &APIError{StatusCode: 429, retryAfter: "7"}); d != 7*time.Second {
		t.Errorf("retry-after = %v", d)
	}
}

package middlewares

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jadygoy/cafe_backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func TestCorrelationMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CorrelationMiddleware())
	r.GET("/", func(c *gin.Context) {
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		c.String(http.StatusOK, cid)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationHeader, "given-id")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "given-id" || w.Header().Get(CorrelationHeader) != "given-id" {
		t.Fatalf("expected caller id to be reused, got body %q header %q", w.Body.String(), w.Header().Get(CorrelationHeader))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Body.String() == "" || w.Body.String() != w.Header().Get(CorrelationHeader) {
		t.Fatalf("expected a minted id, got body %q header %q", w.Body.String(), w.Header().Get(CorrelationHeader))
	}
}

func TestErrorLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	r := gin.New()
	r.Use(CorrelationMiddleware(), ErrorLogger(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("store unavailable"))
		c.Status(http.StatusInternalServerError)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	if buf.Len() != 0 {
		t.Fatalf("expected nothing logged for a clean request, got %s", buf.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(CorrelationHeader, "cid-1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	out := buf.String()
	if !strings.Contains(out, "store unavailable") || !strings.Contains(out, `"correlation_id":"cid-1"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestRateLimiterFromEnvDisabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	if RateLimiterFromEnv(nil) != nil {
		t.Fatalf("expected no limiter without redis")
	}
}

// fakeCounterStore implements the two commands the limiter uses; any other
// call panics on the nil embedded interface.
type fakeCounterStore struct {
	redis.Cmdable

	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Duration
	incrErr error
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{
		counts:  map[string]int64{},
		expires: map[string]time.Duration{},
	}
}

func (f *fakeCounterStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrErr != nil {
		return redis.NewIntResult(0, f.incrErr)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounterStore) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func newLimitedRouter(limiter *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limiter.RateLimitMiddleware)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimitMiddleware(t *testing.T) {
	store := newFakeCounterStore()
	r := newLimitedRouter(NewRateLimiter(store, 2, time.Minute))

	expected := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i, status := range expected {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		if w.Code != status {
			t.Fatalf("request %d: expected %d, got %d", i+1, status, w.Code)
		}
	}

	key := rateLimitKeyPrefix + "10.0.0.1"
	if store.counts[key] != 3 {
		t.Fatalf("expected 3 hits on %s, got %d", key, store.counts[key])
	}
	if store.expires[key] != time.Minute {
		t.Fatalf("expected window to be set on first hit, got %v", store.expires[key])
	}

	// another client has its own window
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", w.Code)
	}
}

func TestRateLimitMiddlewareFailsOpen(t *testing.T) {
	store := newFakeCounterStore()
	store.incrErr = errors.New("connection refused")

	var recorded []string
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		recorded = c.Errors.Errors()
	})
	r.Use(NewRateLimiter(store, 1, time.Minute).RateLimitMiddleware)
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected redis failure to let requests through, got %d", i+1, w.Code)
		}
	}
	if len(recorded) != 1 || !strings.Contains(recorded[0], "connection refused") {
		t.Fatalf("expected the redis error on the context, got %v", recorded)
	}
}

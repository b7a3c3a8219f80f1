package admin

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/ratelimit"
)

func newTestRateLimiter(base ...ratelimit.Config) *RateLimitMiddleware {
	return NewRateLimitMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)), base...)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

func TestRateLimitMiddleware_AllowsNormalRequests(t *testing.T) {
	handler := newTestRateLimiter().Wrap(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/v1/transfers", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware_BlocksRepeatedCursorReset(t *testing.T) {
	handler := newTestRateLimiter().Wrap(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/v1/cursor/reset", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, httptest.NewRequest(http.MethodPost, "/admin/v1/cursor/reset", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.Equal(t, "60", rec2.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec2.Body.String())
}

func TestRateLimitMiddleware_DifferentEndpointsIndependent(t *testing.T) {
	handler := newTestRateLimiter().Wrap(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin/v1/cursor/reset", nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/v1/claims/bulk", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware_MethodMustMatch(t *testing.T) {
	rl := newTestRateLimiter()
	assert.Equal(t, "/admin/v1/credit-config", rl.route(http.MethodPut, "/admin/v1/credit-config").prefix)
	assert.Empty(t, rl.route(http.MethodGet, "/admin/v1/credit-config").prefix, "reads fall through to the catch-all")
}

func TestRateLimitMiddleware_PerClientIP(t *testing.T) {
	handler := newTestRateLimiter().Wrap(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/admin/v1/cursor/reset", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 192.168.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	other := httptest.NewRequest(http.MethodPost, "/admin/v1/cursor/reset", nil)
	other.Header.Set("X-Real-IP", "10.0.0.2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware_SweepsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newTestRateLimiter(ratelimit.Config{IdleTTL: 10 * time.Minute, Now: func() time.Time { return now }})
	handler := rl.Wrap(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/v1/stats", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/admin/v1/cursor/reset", nil))
	assert.Equal(t, 2, rl.LimiterCount())

	now = now.Add(10*time.Minute + time.Second)
	assert.Equal(t, 2, rl.Sweep())
	assert.Equal(t, 0, rl.LimiterCount())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	assert.Equal(t, "198.51.100.1", clientIP(req))
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 60, retryAfterSeconds(rate.Every(time.Minute)))
	assert.Equal(t, 6, retryAfterSeconds(rate.Every(6*time.Second)))
	assert.Equal(t, 1, retryAfterSeconds(rate.Every(200*time.Millisecond)))
	assert.Equal(t, 60, retryAfterSeconds(0))
}

package admin

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/ratelimit"
)

// routeLimit is one row of the admin rate table. An empty method or prefix
// matches anything; the first matching row wins.
type routeLimit struct {
	method string
	prefix string
	every  time.Duration
	burst  int
}

// Mutations with wide effect get tight buckets. Review screens poll list and
// stats endpoints, so the catch-all allows 5 req/s per client.
var adminRouteLimits = []routeLimit{
	{method: http.MethodPost, prefix: "/admin/v1/cursor/reset", every: time.Minute, burst: 1},
	{method: http.MethodPost, prefix: "/admin/v1/claims/bulk", every: 6 * time.Second, burst: 2},
	{method: http.MethodPut, prefix: "/admin/v1/credit-config", every: 6 * time.Second, burst: 3},
	{method: http.MethodPost, prefix: "/admin/v1/reconciliation", every: 30 * time.Second, burst: 1},
	{method: http.MethodPost, prefix: "/admin/v1/scanner", every: 6 * time.Second, burst: 3},
	{every: 200 * time.Millisecond, burst: 20},
}

type routeBuckets struct {
	routeLimit
	perClient *ratelimit.Keyed
}

func (b routeBuckets) matches(method, path string) bool {
	return (b.method == "" || strings.EqualFold(b.method, method)) &&
		(b.prefix == "" || strings.HasPrefix(path, b.prefix))
}

// RateLimitMiddleware limits admin calls per route and client IP.
type RateLimitMiddleware struct {
	routes []routeBuckets
	logger *slog.Logger
}

// NewRateLimitMiddleware builds the per-route buckets. base supplies the
// idle TTL, sweep cadence and clock shared by every route.
func NewRateLimitMiddleware(logger *slog.Logger, base ...ratelimit.Config) *RateLimitMiddleware {
	var shared ratelimit.Config
	if len(base) > 0 {
		shared = base[0]
	}
	rl := &RateLimitMiddleware{logger: logger.With("component", "admin_ratelimit")}
	for _, l := range adminRouteLimits {
		cfg := shared
		cfg.Limit, cfg.Burst = rate.Every(l.every), l.burst
		rl.routes = append(rl.routes, routeBuckets{routeLimit: l, perClient: ratelimit.NewKeyed(cfg)})
	}
	return rl
}

func (rl *RateLimitMiddleware) route(method, path string) *routeBuckets {
	for i := range rl.routes {
		if rl.routes[i].matches(method, path) {
			return &rl.routes[i]
		}
	}
	return &rl.routes[len(rl.routes)-1]
}

// LimiterCount reports how many client buckets are live across all routes.
func (rl *RateLimitMiddleware) LimiterCount() int {
	n := 0
	for _, r := range rl.routes {
		n += r.perClient.Len()
	}
	return n
}

// Sweep drops idle client buckets on every route.
func (rl *RateLimitMiddleware) Sweep() int {
	n := 0
	for _, r := range rl.routes {
		n += r.perClient.Sweep()
	}
	return n
}

func (rl *RateLimitMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := rl.route(r.Method, r.URL.Path)
		client := clientIP(r)
		if route.perClient.Allow(client) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(route.perClient.Limit())))
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		rl.logger.Warn("admin rate limit exceeded",
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", client,
		)
	})
}

// retryAfterSeconds is the refill time of one token, rounded to whole seconds.
func retryAfterSeconds(l rate.Limit) int {
	if l <= 0 {
		return 60
	}
	return max(1, int(math.Round(1/float64(l))))
}

// clientIP prefers the left-most X-Forwarded-For hop, then X-Real-IP, then
// the socket peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/metrics"
	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by every ledger RPC method. One Limiter
// guards one upstream endpoint.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter allows rps requests per second with the given burst. A
// non-positive rps disables limiting.
func NewLimiter(rps float64, burst int) *Limiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until one token is available for method, or ctx is done.
// A reserved token is returned to the bucket when ctx ends first.
func (l *Limiter) Wait(ctx context.Context, method string) error {
	r := l.limiter.Reserve()
	if !r.OK() {
		return fmt.Errorf("rate: cannot reserve token")
	}
	delay := r.Delay()
	if delay <= 0 {
		return nil
	}

	metrics.RPCRateLimitWaits.WithLabelValues(method).Inc()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// RecordRPCCall records a call outcome against the calls_total counter.
func RecordRPCCall(method string, err error) {
	metrics.RPCCallsTotal.WithLabelValues(method, ClassifyRPCError(err)).Inc()
}

// ClassifyRPCError buckets an RPC error into a low-cardinality status label.
func ClassifyRPCError(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "circuit breaker is open"):
		return "circuit_open"
	case strings.Contains(lower, "timeout"):
		return "timeout"
	case strings.Contains(lower, "http status 429") || strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many requests"):
		return "rate_limited"
	case strings.Contains(lower, "http status 5"):
		return "server_error"
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "connection reset") ||
		strings.Contains(lower, "no such host") || strings.Contains(lower, "broken pipe") || strings.Contains(lower, "eof"):
		return "network_error"
	case strings.Contains(lower, "sui rpc error"):
		return "rpc_error"
	default:
		return "client_error"
	}
}

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNewLimiter(t *testing.T) {
	l := NewLimiter(10.0, 5)

	require.NotNil(t, l)
	assert.InDelta(t, 10.0, float64(l.limiter.Limit()), 0.001)
	assert.Equal(t, 5, l.limiter.Burst())
}

func TestNewLimiter_NonPositiveRPSIsUnlimited(t *testing.T) {
	l := NewLimiter(0, 0)
	assert.Equal(t, rate.Inf, l.limiter.Limit())
	assert.Equal(t, 1, l.limiter.Burst())

	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background(), "m"))
	}
}

func TestLimiter_AllowWithinBurst(t *testing.T) {
	const burst = 5
	l := NewLimiter(100, burst)

	for i := 0; i < burst; i++ {
		start := time.Now()
		require.NoError(t, l.Wait(context.Background(), "suix_queryTransactionBlocks"))
		assert.Less(t, time.Since(start), 50*time.Millisecond, "request %d should not wait", i)
	}
}

func TestLimiter_WaitWhenExhausted(t *testing.T) {
	l := NewLimiter(10, 1)

	require.NoError(t, l.Wait(context.Background(), "m"))

	start := time.Now()
	require.NoError(t, l.Wait(context.Background(), "m"))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiter_ContextCancellation(t *testing.T) {
	l := NewLimiter(1, 1)
	require.NoError(t, l.Wait(context.Background(), "m"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx, "m")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClassifyRPCError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "ok"},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"circuit", errors.New("circuit breaker is open"), "circuit_open"},
		{"429", errors.New("http status 429: slow down"), "rate_limited"},
		{"503", errors.New("http status 503: unavailable"), "server_error"},
		{"refused", errors.New("dial tcp: connection refused"), "network_error"},
		{"rpc", errors.New("sui rpc error -32602: Invalid params"), "rpc_error"},
		{"other", errors.New("unmarshal response: bad"), "client_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRPCError(tt.err))
		})
	}
}

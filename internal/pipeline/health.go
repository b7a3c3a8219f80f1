package pipeline

import (
	"slices"
	"sync"
	"time"

	"github.com/Mohsinsiddi/fun-suidex-sub000/internal/domain/model"
)

// HealthStatus represents the health state of the scanner.
type HealthStatus string

const (
	HealthStatusUnknown   HealthStatus = "UNKNOWN"
	HealthStatusHealthy   HealthStatus = "HEALTHY"
	HealthStatusDegraded  HealthStatus = "DEGRADED"
	HealthStatusUnhealthy HealthStatus = "UNHEALTHY"
	HealthStatusPaused    HealthStatus = "PAUSED"

	// DefaultUnhealthyThreshold is the number of consecutive failed cycles
	// before the scanner is considered unhealthy.
	DefaultUnhealthyThreshold = 5

	// DefaultDegradedLatencyThreshold is the p95 cycle latency above which
	// the scanner is considered degraded.
	DefaultDegradedLatencyThreshold = 30 * time.Second

	latencyWindowSize = 10
)

// gaugeValue maps a status onto the health_status gauge.
func (s HealthStatus) gaugeValue() float64 {
	switch s {
	case HealthStatusHealthy:
		return 1
	case HealthStatusDegraded:
		return 0.5
	default:
		return 0
	}
}

// ScanHealth tracks cycle outcomes for one custodial address.
type ScanHealth struct {
	mu                       sync.RWMutex
	network                  model.Network
	address                  string
	status                   HealthStatus
	consecutiveFailures      int
	lastSuccessAt            *time.Time
	lastFailureAt            *time.Time
	lastError                string
	lastCycle                *CycleResult
	unhealthyThreshold       int
	recentLatencies          []time.Duration
	degradedLatencyThreshold time.Duration
	now                      func() time.Time
}

func NewScanHealth(network model.Network, address string, unhealthyThreshold int) *ScanHealth {
	if unhealthyThreshold <= 0 {
		unhealthyThreshold = DefaultUnhealthyThreshold
	}
	return &ScanHealth{
		network:                  network,
		address:                  address,
		status:                   HealthStatusUnknown,
		unhealthyThreshold:       unhealthyThreshold,
		recentLatencies:          make([]time.Duration, 0, latencyWindowSize),
		degradedLatencyThreshold: DefaultDegradedLatencyThreshold,
		now:                      time.Now,
	}
}

func (h *ScanHealth) SetStatus(status HealthStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = status
}

func (h *ScanHealth) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// RecordSuccess records a completed cycle and reports whether it recovered
// the scanner from UNHEALTHY.
func (h *ScanHealth) RecordSuccess(res CycleResult) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	wasUnhealthy := h.status == HealthStatusUnhealthy

	if len(h.recentLatencies) >= latencyWindowSize {
		h.recentLatencies = h.recentLatencies[1:]
	}
	h.recentLatencies = append(h.recentLatencies, res.Duration)

	h.consecutiveFailures = 0
	h.lastSuccessAt = &now
	h.lastError = ""
	h.lastCycle = &res
	if h.isLatencyDegraded() {
		h.status = HealthStatusDegraded
	} else {
		h.status = HealthStatusHealthy
	}
	return wasUnhealthy
}

// RecordFailure records a failed cycle and reports whether this call moved
// the scanner to UNHEALTHY.
func (h *ScanHealth) RecordFailure(err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	h.consecutiveFailures++
	h.lastFailureAt = &now
	if err != nil {
		h.lastError = err.Error()
	}
	if h.consecutiveFailures >= h.unhealthyThreshold && h.status != HealthStatusUnhealthy {
		h.status = HealthStatusUnhealthy
		return true
	}
	return false
}

func (h *ScanHealth) ConsecutiveFailures() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.consecutiveFailures
}

// Must be called with mu held.
func (h *ScanHealth) isLatencyDegraded() bool {
	n := len(h.recentLatencies)
	if n < 2 {
		return false
	}
	sorted := slices.Clone(h.recentLatencies)
	slices.Sort(sorted)
	idx := (95*n - 1) / 100
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx] > h.degradedLatencyThreshold
}

func (h *ScanHealth) Snapshot() HealthSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	snap := HealthSnapshot{
		Network:             string(h.network),
		Address:             h.address,
		Status:              string(h.status),
		ConsecutiveFailures: h.consecutiveFailures,
		LastSuccessAt:       h.lastSuccessAt,
		LastFailureAt:       h.lastFailureAt,
		LastError:           h.lastError,
	}
	if h.lastCycle != nil {
		c := *h.lastCycle
		snap.LastCycle = &c
	}
	return snap
}

// HealthSnapshot is a point-in-time view of scanner health (JSON-safe).
type HealthSnapshot struct {
	Network             string       `json:"network"`
	Address             string       `json:"address"`
	Status              string       `json:"status"`
	ConsecutiveFailures int          `json:"consecutive_failures"`
	LastSuccessAt       *time.Time   `json:"last_success_at,omitempty"`
	LastFailureAt       *time.Time   `json:"last_failure_at,omitempty"`
	LastError           string       `json:"last_error,omitempty"`
	LastCycle           *CycleResult `json:"last_cycle,omitempty"`
}

package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config configures a Breaker. Zero values pick the defaults noted below.
type Config struct {
	FailureThreshold int           // consecutive failures before opening (5)
	SuccessThreshold int           // half-open successes before closing (2)
	OpenTimeout      time.Duration // time spent open before probing (30s)
	OnStateChange    func(from, to State)
	// ShouldTrip decides whether a failed call counts toward opening.
	// nil counts every error.
	ShouldTrip func(err error) bool
}

// Breaker stops calling a failing upstream for OpenTimeout after
// FailureThreshold consecutive failures. While half-open only one probe is
// in flight at a time.
type Breaker struct {
	mu            sync.Mutex
	cfg           Config
	state         State
	failures      int
	successes     int
	openedAt      time.Time
	probeInFlight bool
	now           func() time.Time
}

func New(cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	return &Breaker{cfg: cfg, state: StateClosed, now: time.Now}
}

// Execute runs fn if the breaker admits it and records the outcome.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

// State returns the current state, moving open to half-open when the open
// timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpen()
	return b.state
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeHalfOpen()
	switch b.state {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.probeInFlight {
			return ErrCircuitOpen
		}
		b.probeInFlight = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probeInFlight = false

	if err == nil || (b.cfg.ShouldTrip != nil && !b.cfg.ShouldTrip(err)) {
		b.failures = 0
		if b.state == StateHalfOpen {
			b.successes++
			if b.successes >= b.cfg.SuccessThreshold {
				b.setState(StateClosed)
			}
		}
		return
	}

	b.failures++
	switch b.state {
	case StateHalfOpen:
		b.open()
	case StateClosed:
		if b.failures >= b.cfg.FailureThreshold {
			b.open()
		}
	}
}

func (b *Breaker) open() {
	b.openedAt = b.now()
	b.setState(StateOpen)
}

func (b *Breaker) maybeHalfOpen() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.setState(StateHalfOpen)
	}
}

func (b *Breaker) setState(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.successes = 0
	if to == StateClosed {
		b.failures = 0
	}
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}

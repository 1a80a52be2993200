package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 15 * time.Second
	defaultHalfOpenMaxReq   = 2
)

// CircuitBreakerConfig configures NewCircuitBreakerFromConfig. Zero values
// fall back to 5 failures, a 15s open window and 2 half-open probes.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
	// OnStateChange is called outside the breaker lock after every transition.
	OnStateChange func(from, to CircuitState)
}

// CircuitBreaker trips after a run of consecutive failures and lets a bounded
// number of probes through once the open timeout has elapsed.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	openTimeout      time.Duration
	halfOpenMaxReq   int
	onStateChange    func(from, to CircuitState)

	state               CircuitState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
	halfOpenSuccesses   int
	now                 func() time.Time
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = defaultFailureThreshold
	}
	if openTimeout <= 0 {
		openTimeout = defaultOpenTimeout
	}
	if halfOpenMaxReq < 1 {
		halfOpenMaxReq = defaultHalfOpenMaxReq
	}

	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		openTimeout:      openTimeout,
		halfOpenMaxReq:   halfOpenMaxReq,
		state:            CircuitStateClosed,
		now:              time.Now,
	}
}

// NewCircuitBreakerFromConfig returns nil when the breaker is disabled. A nil
// breaker allows every call.
func NewCircuitBreakerFromConfig(cfg CircuitBreakerConfig) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	b := NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq)
	b.onStateChange = cfg.OnStateChange
	return b
}

// Run executes fn under the breaker. Failures for which countable returns
// false are passed through without tripping the breaker.
func (b *CircuitBreaker) Run(fn func() error, countable func(error) bool) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	switch {
	case err == nil:
		b.RecordSuccess()
	case countable == nil || countable(err):
		b.RecordFailure()
	default:
		b.RecordSuccess()
	}
	return err
}

func (b *CircuitBreaker) Allow() error {
	if b == nil {
		return nil
	}

	var err error
	b.update(func() {
		if b.state == CircuitStateOpen {
			if b.now().Sub(b.openedAt) < b.openTimeout {
				err = ErrCircuitOpen
				return
			}
			b.toHalfOpen()
		}
		if b.state == CircuitStateHalfOpen {
			if b.halfOpenInFlight >= b.halfOpenMaxReq {
				err = ErrCircuitOpen
				return
			}
			b.halfOpenInFlight++
		}
	})
	return err
}

func (b *CircuitBreaker) RecordSuccess() {
	if b == nil {
		return
	}
	b.update(func() {
		switch b.state {
		case CircuitStateClosed:
			b.consecutiveFailures = 0
		case CircuitStateHalfOpen:
			if b.halfOpenInFlight > 0 {
				b.halfOpenInFlight--
			}
			b.halfOpenSuccesses++
			if b.halfOpenSuccesses >= b.halfOpenMaxReq && b.halfOpenInFlight == 0 {
				b.toClosed()
			}
		}
	})
}

func (b *CircuitBreaker) RecordFailure() {
	if b == nil {
		return
	}
	b.update(func() {
		switch b.state {
		case CircuitStateClosed:
			b.consecutiveFailures++
			if b.consecutiveFailures >= b.failureThreshold {
				b.toOpen()
			}
		case CircuitStateHalfOpen:
			b.toOpen()
		case CircuitStateOpen:
			b.openedAt = b.now()
		}
	})
}

// State reports an open breaker whose window has elapsed as half open, even
// before the next Allow moves it there.
func (b *CircuitBreaker) State() CircuitState {
	if b == nil {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.openTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) update(mutate func()) {
	b.mu.Lock()
	from := b.state
	mutate()
	to := b.state
	hook := b.onStateChange
	b.mu.Unlock()

	if hook != nil && from != to {
		hook(from, to)
	}
}

func (b *CircuitBreaker) toClosed() {
	b.state = CircuitStateClosed
	b.consecutiveFailures = 0
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
	b.openedAt = time.Time{}
}

func (b *CircuitBreaker) toOpen() {
	b.state = CircuitStateOpen
	b.openedAt = b.now()
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
}

func (b *CircuitBreaker) toHalfOpen() {
	b.state = CircuitStateHalfOpen
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
}

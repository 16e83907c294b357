package sox

import (
	"errors"
	"sync"
	"time"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	StateClosed   CircuitState = iota // Normal operation
	StateOpen                         // Failing, reject requests
	StateHalfOpen                     // Letting one probe through
)

func (s CircuitState) String() string {
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

var (
	ErrCircuitOpen   = errors.New("circuit breaker is open")
	ErrInvalidFormat = errors.New("invalid audio format")
)

// CircuitBreaker stops calling SoX after maxFailures consecutive failures.
// With a zero resetTimeout an open breaker stays open until Reset.
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration

	mu           sync.Mutex
	state        CircuitState
	failures     int
	lastFailTime time.Time
}

// NewCircuitBreaker creates a circuit breaker that opens after 5 consecutive
// failures and probes again after 10 seconds
func NewCircuitBreaker() *CircuitBreaker {
	return NewCircuitBreakerWithConfig(5, 10*time.Second)
}

// NewCircuitBreakerWithConfig creates a circuit breaker with custom settings.
// maxFailures <= 0 disables the breaker.
func NewCircuitBreakerWithConfig(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        StateClosed,
	}
}

// Call executes a function with circuit breaker protection
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn()

	cb.afterRequest(err)
	return err
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.resetTimeout > 0 && timeNow().Sub(cb.lastFailTime) > cb.resetTimeout {
		cb.state = StateHalfOpen
	}

	if cb.state == StateOpen {
		return ErrCircuitOpen
	}
	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		cb.state = StateClosed
		return
	}

	cb.failures++
	cb.lastFailTime = timeNow()

	if cb.state == StateHalfOpen || (cb.maxFailures > 0 && cb.failures >= cb.maxFailures) {
		cb.state = StateOpen
	}
}

// State returns the current circuit breaker state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current run of consecutive failures
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// Reset resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failures = 0
}

// timeNow is a variable for testing
var timeNow = time.Now

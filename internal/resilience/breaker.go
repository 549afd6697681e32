// Package resilience provides a circuit breaker for store and cache call
// sites. After failureThreshold consecutive failures the breaker opens and
// short-circuits calls for recoveryTimeout, then admits one trial call
// (half-open) before closing again.
package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/api-sage/wallet-ledger-engine/internal/logger"
	"github.com/api-sage/wallet-ledger-engine/internal/metrics"
)

var ErrOpen = errors.New("Circuit breaker is open")

type State string

const (
	StateClosed   State = "CLOSED"
	StateOpen     State = "OPEN"
	StateHalfOpen State = "HALF_OPEN"
)

type Breaker struct {
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	nextAttempt time.Time
	ignored     []error
	now         func() time.Time
}

func NewBreaker(name string, failureThreshold int, recoveryTimeout time.Duration) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if recoveryTimeout <= 0 {
		recoveryTimeout = time.Minute
	}
	return &Breaker{
		name:             name,
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		state:            StateClosed,
		now:              time.Now,
	}
}

// Ignore registers error classes that bypass failure accounting. A declined
// business precondition means the dependency answered, so it counts as a
// success while still returning the error to the caller.
func (b *Breaker) Ignore(targets ...error) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ignored = append(b.ignored, targets...)
	return b
}

func (b *Breaker) Execute(operation func() error) error {
	if err := b.allow(); err != nil {
		return err
	}

	if err := operation(); err != nil {
		if b.isIgnored(err) {
			b.onSuccess()
			return err
		}
		b.onFailure()
		return err
	}

	b.onSuccess()
	return nil
}

func (b *Breaker) isIgnored(err error) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, target := range b.ignored {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return nil
	}
	if b.now().Before(b.nextAttempt) {
		return ErrOpen
	}

	b.transition(StateHalfOpen)
	return nil
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.successes++
	if b.state == StateHalfOpen {
		b.transition(StateClosed)
	}
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.failureThreshold {
		b.nextAttempt = b.now().Add(b.recoveryTimeout)
		b.transition(StateOpen)
	}
}

func (b *Breaker) transition(next State) {
	if b.state == next {
		return
	}
	b.state = next
	metrics.RecordBreakerTransition(b.name, string(next))
	logger.Warn("circuit breaker state change", logger.Fields{
		"breaker": b.name,
		"state":   string(next),
	})
}

package circuitbreaker

import (
	"sync"
	"time"
)

type State int

const (
	StateClosed   State = iota // forwarding normally
	StateOpen                  // rejecting requests
	StateHalfOpen              // one probe request in flight
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets states render as names in JSON stats.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Breaker guards a single upstream origin.
//
// Every state change bumps a generation counter. Allow hands the caller the
// generation it was admitted under, and outcomes reported for an older
// generation are dropped.
type Breaker struct {
	mutex        sync.Mutex
	state        State
	generation   uint64
	failures     int
	openedAt     time.Time
	probing      bool
	threshold    int
	resetTimeout time.Duration
	now          func() time.Time
}

// New returns a closed breaker that opens after threshold consecutive
// failures and admits a probe once resetTimeout has passed.
func New(threshold int, resetTimeout time.Duration) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	return &Breaker{
		state:        StateClosed,
		threshold:    threshold,
		resetTimeout: resetTimeout,
		now:          time.Now,
	}
}

// Allow reports whether a request may be forwarded and the generation to
// pass back when recording its outcome. While half-open only the first caller
// gets through until its outcome is recorded.
func (b *Breaker) Allow() (uint64, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.resetTimeout {
			return b.generation, false
		}
		b.setState(StateHalfOpen)
		b.probing = true
		return b.generation, true
	case StateHalfOpen:
		if b.probing {
			return b.generation, false
		}
		b.probing = true
		return b.generation, true
	default:
		return b.generation, true
	}
}

func (b *Breaker) RecordFailure(generation uint64) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if generation != b.generation {
		return
	}

	switch b.state {
	case StateHalfOpen:
		b.setState(StateOpen)
	case StateClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.setState(StateOpen)
		}
	}
}

func (b *Breaker) RecordSuccess(generation uint64) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if generation != b.generation {
		return
	}

	switch b.state {
	case StateHalfOpen:
		b.setState(StateClosed)
	case StateClosed:
		b.failures = 0
	}
}

// Abandon releases an admitted request without a verdict, so a half-open
// breaker can admit another probe.
func (b *Breaker) Abandon(generation uint64) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if generation == b.generation && b.state == StateHalfOpen {
		b.probing = false
	}
}

func (b *Breaker) State() State {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.state
}

// setState must be called with the mutex held.
func (b *Breaker) setState(state State) {
	b.state = state
	b.generation++
	b.failures = 0
	b.probing = false
	if state == StateOpen {
		b.openedAt = b.now()
	}
}

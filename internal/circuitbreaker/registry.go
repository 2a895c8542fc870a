package circuitbreaker

import (
	"sync"
	"time"
)

// Registry hands out one Breaker per upstream origin.
type Registry struct {
	mutex        sync.RWMutex
	breakers     map[string]*Breaker
	threshold    int
	resetTimeout time.Duration
}

func NewRegistry(threshold int, resetTimeout time.Duration) *Registry {
	return &Registry{
		breakers:     make(map[string]*Breaker),
		threshold:    threshold,
		resetTimeout: resetTimeout,
	}
}

// Get returns the breaker for origin, creating it on first use.
func (r *Registry) Get(origin string) *Breaker {
	r.mutex.RLock()
	b, ok := r.breakers[origin]
	r.mutex.RUnlock()
	if ok {
		return b
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if b, ok = r.breakers[origin]; ok {
		return b
	}

	b = New(r.threshold, r.resetTimeout)
	r.breakers[origin] = b
	return b
}

// States snapshots the state of every known breaker.
func (r *Registry) States() map[string]State {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	states := make(map[string]State, len(r.breakers))
	for origin, b := range r.breakers {
		states[origin] = b.State()
	}
	return states
}

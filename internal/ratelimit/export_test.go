package ratelimit

import "time"

func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

func (l *Limiter) SetMaxClients(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxClients = n
}

func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.perIP)
}

package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/angeloszaimis/modelhub-web/internal/httpx"
)

const (
	maxClients = 10_000
	idleTTL    = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter applies a global token bucket and one bucket per client IP.
type Limiter struct {
	global *rate.Limiter
	perIP  map[string]*clientLimiter
	mu     sync.Mutex

	rps          rate.Limit
	burst        int
	trustForward bool

	maxClients int
	idleTTL    time.Duration
	now        func() time.Time
}

type Config struct {
	RPS         float64
	Burst       int
	GlobalRPS   float64
	GlobalBurst int
	// TrustForwardedFor keys clients on X-Forwarded-For. Only enable it
	// behind a proxy that overwrites the header.
	TrustForwardedFor bool
}

func New(cfg Config) *Limiter {
	return &Limiter{
		global:       rate.NewLimiter(rate.Limit(cfg.GlobalRPS), cfg.GlobalBurst),
		perIP:        make(map[string]*clientLimiter),
		rps:          rate.Limit(cfg.RPS),
		burst:        cfg.Burst,
		trustForward: cfg.TrustForwardedFor,
		maxClients:   maxClients,
		idleTTL:      idleTTL,
		now:          time.Now,
	}
}

// Allow reports whether r may proceed. The client bucket is checked first so
// a throttled client does not drain the global budget.
func (l *Limiter) Allow(r *http.Request) bool {
	ip := httpx.PeerIP(r)
	if l.trustForward {
		ip = httpx.ClientIP(r)
	}

	l.mu.Lock()
	now := l.now()

	item, ok := l.perIP[ip]
	if !ok {
		item = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.perIP[ip] = item
	}
	item.lastSeen = now

	if len(l.perIP) > l.maxClients {
		l.cleanupLocked(now.Add(-l.idleTTL))
	}

	allowed := item.limiter.AllowN(now, 1)
	l.mu.Unlock()

	if !allowed {
		return false
	}
	return l.global.AllowN(now, 1)
}

func (l *Limiter) cleanupLocked(threshold time.Time) {
	for ip, entry := range l.perIP {
		if entry.lastSeen.Before(threshold) {
			delete(l.perIP, ip)
		}
	}
}

package upstream

import (
	"log/slog"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"
)

// Upstream is a destination origin with health status, in-flight request
// tracking and response time monitoring.
type Upstream struct {
	origin   *url.URL
	proxy    *httputil.ReverseProxy
	mutex    sync.Mutex
	healthy  bool
	inFlight int
	ewma     time.Duration
	hasEWMA  bool
}

const ewmaAlpha = 0.2

// Options tunes the transport used to reach the origin.
type Options struct {
	DialTimeout           time.Duration
	ResponseHeaderTimeout time.Duration
	// ErrorHandler replaces the default 502 response on transport failure.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)
}

// New creates an Upstream for origin. Only scheme and host are kept; the
// request path is expected to be rewritten before forwarding. The upstream
// starts healthy.
func New(origin *url.URL, opts Options, logger *slog.Logger) *Upstream {
	target := &url.URL{Scheme: origin.Scheme, Host: origin.Host}

	u := &Upstream{
		origin:  target,
		healthy: true,
	}

	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	u.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   32,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ResponseHeaderTimeout: opts.ResponseHeaderTimeout,
		},
		ErrorHandler: opts.ErrorHandler,
	}

	if u.proxy.ErrorHandler == nil {
		u.proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("proxy request failed",
				slog.String("upstream", target.String()),
				slog.String("path", r.URL.Path),
				slog.Any("err", err))
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}
	}

	return u
}

// ReverseProxy returns the proxy routed to this origin.
func (u *Upstream) ReverseProxy() *httputil.ReverseProxy {
	return u.proxy
}

// Origin returns the scheme and host requests are forwarded to.
func (u *Upstream) Origin() *url.URL {
	return u.origin
}

// Acquire marks a request as in flight.
func (u *Upstream) Acquire() {
	u.mutex.Lock()
	u.inFlight++
	u.mutex.Unlock()
}

// Release marks an in-flight request as finished.
func (u *Upstream) Release() {
	u.mutex.Lock()
	if u.inFlight > 0 {
		u.inFlight--
	}
	u.mutex.Unlock()
}

// InFlight returns the number of requests currently being forwarded.
func (u *Upstream) InFlight() int {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.inFlight
}

func (u *Upstream) IsHealthy() bool {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.healthy
}

// SetHealthy reports whether the status changed.
func (u *Upstream) SetHealthy(healthy bool) (changed bool) {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	if u.healthy == healthy {
		return false
	}

	u.healthy = healthy
	return true
}

// RecordResponse folds d into the moving average response time.
func (u *Upstream) RecordResponse(d time.Duration) {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	if !u.hasEWMA {
		u.ewma = d
		u.hasEWMA = true
		return
	}
	// ewma = (1 - α) * ewma + α * latest
	u.ewma = time.Duration((1-ewmaAlpha)*float64(u.ewma) + ewmaAlpha*float64(d))
}

// AverageResponse returns 0 until a response has been recorded.
func (u *Upstream) AverageResponse() time.Duration {
	u.mutex.Lock()
	defer u.mutex.Unlock()
	return u.ewma
}

// Set indexes upstreams by origin.
type Set map[string]*Upstream

// NewSet builds one Upstream per origin.
func NewSet(origins []*url.URL, opts Options, logger *slog.Logger) Set {
	s := make(Set, len(origins))
	for _, o := range origins {
		u := New(o, opts, logger)
		s[u.Origin().String()] = u
	}
	return s
}

// Lookup returns the upstream serving origin.
func (s Set) Lookup(origin *url.URL) (*Upstream, bool) {
	u, ok := s[(&url.URL{Scheme: origin.Scheme, Host: origin.Host}).String()]
	return u, ok
}

// Healthy reports whether every upstream is healthy.
func (s Set) Healthy() bool {
	for _, u := range s {
		if !u.IsHealthy() {
			return false
		}
	}
	return true
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/angeloszaimis/modelhub-web/internal/upstream"
)

const (
	checkOK   = "ok"
	checkDown = "down"
)

type readinessReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ReadinessHandler reports 200 when every upstream is healthy and the
// Supabase client can be built, 503 otherwise.
type ReadinessHandler struct {
	upstreams upstream.Set
	supabase  func() error
}

// NewReadinessHandler takes the client factory check as a func so callers
// decide how the client is built. supabase may be nil.
func NewReadinessHandler(upstreams upstream.Set, supabase func() error) *ReadinessHandler {
	return &ReadinessHandler{
		upstreams: upstreams,
		supabase:  supabase,
	}
}

func (h *ReadinessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report := readinessReport{
		Status: checkOK,
		Checks: make(map[string]string),
	}

	for origin, up := range h.upstreams {
		if up.IsHealthy() {
			report.Checks["upstream "+origin] = checkOK
		} else {
			report.Checks["upstream "+origin] = checkDown
			report.Status = "unavailable"
		}
	}

	if h.supabase != nil {
		if err := h.supabase(); err != nil {
			report.Checks["supabase"] = err.Error()
			report.Status = "unavailable"
		} else {
			report.Checks["supabase"] = checkOK
		}
	}

	status := http.StatusOK
	if report.Status != checkOK {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}

// Liveness always answers 200 while the process is serving.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

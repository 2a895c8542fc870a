package metrics

import (
	"encoding/json"
	"net/http"
)

// Handler serves the current snapshot as JSON. extend, if set, may add data
// owned by other packages before encoding.
func (c *Collector) Handler(extend func(*Snapshot)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := c.metrics.Snapshot()
		if extend != nil {
			extend(&snap)
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

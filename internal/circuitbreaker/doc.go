// Package circuitbreaker stops forwarding to an upstream origin that keeps
// failing.
//
// A breaker is CLOSED while the origin answers. After a configured number of
// consecutive failures it turns OPEN and rejects requests until the reset
// timeout elapses; it then goes HALF-OPEN and lets exactly one probe request
// through. A successful probe closes it again, a failed one reopens it.
//
//	registry := circuitbreaker.NewRegistry(5, 30*time.Second)
//	b := registry.Get("http://127.0.0.1:8000")
//	generation, ok := b.Allow()
//	if !ok {
//	    // reject with 503
//	}
//	// forward, then report the outcome under the same generation
//	b.RecordSuccess(generation)
//
// Outcomes reported under a generation the breaker has since left are
// ignored, so a slow response from before a trip cannot close the breaker.
package circuitbreaker

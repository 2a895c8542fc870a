// Package healthcheck periodically probes upstream origins and flips their
// health flag. Unhealthy upstreams are refused by the rewrite handler with
// 503 until a later probe succeeds.
package healthcheck

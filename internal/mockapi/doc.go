// Package mockapi is an in-memory stand-in for the model management API the
// front server proxies to. It serves the same routes (endpoint lookup and
// query) plus /openapi.json, which the health checker probes, so the front
// server can run locally without cloud credentials.
package mockapi

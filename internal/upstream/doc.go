// Package upstream wraps one destination origin of the rewrite table. It owns
// the reverse proxy routed to that origin and tracks health, in-flight
// requests and response time.
package upstream

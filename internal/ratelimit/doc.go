// Package ratelimit throttles proxied API traffic with golang.org/x/time/rate
// token buckets, one global and one per client IP. Client buckets idle for
// ten minutes are dropped once more than 10k clients are tracked.
package ratelimit

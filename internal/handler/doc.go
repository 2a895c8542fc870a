// Package handler implements the HTTP handlers of the front server.
//
// RewriteHandler resolves each request path through the rewrite table and
// forwards it to the destination origin, refusing with 404 (no rule),
// 429 (rate limited) or 503 (origin down or circuit open). PageHandler
// renders the front page, and ReadinessHandler reports dependency health.
package handler

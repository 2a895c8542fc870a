// Package config loads the front server configuration from an optional YAML
// file, a .env file and environment variables. It declares the rewrite table
// as a single configuration object alongside server, health check, circuit
// breaker, rate limit, metrics and logging settings.
package config

// Package httpserver wraps net/http.Server with address validation and a
// bounded graceful shutdown.
package httpserver

// Package httpx contains HTTP middleware shared by every route: request ids,
// access logging and panic recovery.
package httpx

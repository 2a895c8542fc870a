// Package supabaseclient constructs Supabase clients from SUPABASE_URL and
// SUPABASE_KEY.
//
// Nothing is cached. A missing variable is reported as ErrMissingURL or
// ErrMissingKey before any client is built, so callers can tell a
// misconfigured deployment from a bad URL.
package supabaseclient

// Package session provides store-backed opaque bearer sessions.
//
// # Token format
//
// A session token is 64 lowercase hex characters (32 random bytes). The token
// is the store key suffix (session:<token>); the stored value is JSON
// {"email", "expiresAt"}. Tokens that do not match the format are rejected
// before any store access.
//
// # Architecture boundaries
//
// This package owns the [Store] (issue and validate) and the [Session] model.
// It does NOT look up accounts or map errors to HTTP statuses. Those
// responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import q63 (no upward imports).
//   - Renew, extend, or revoke sessions.
//   - Log bearer tokens.
package session

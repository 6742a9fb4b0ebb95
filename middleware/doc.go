// Package middleware exposes gin middleware that guards routes with q63
// session tokens.
//
// [Guard] reads the Authorization header, resolves the bearer token through
// Engine.ValidateSession, and stores the resulting [q63.SessionInfo] on the
// gin context for [SessionFromContext]. It makes no decisions of its own
// beyond pass or reject.
package middleware

// Package q63 is the account, session, and progress engine behind the Q63
// habit-challenge tracker.
//
// Users register with an email, name, and password, receive an opaque bearer
// session, and record daily practice check-ins for a 63-day challenge. A
// forgotten password is recovered through a single-use emailed reset link,
// and an operator holding the admin key can export the registered emails.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// q63 is the public surface. It exposes [Engine], [Builder], [Config], the
// sentinel errors, and value types (AuthResult, ProgressView, MetricsSnapshot).
// Flow orchestration, record layout in the key-value store, and the mail
// outbox live under internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients or stored key names in its public API.
//   - Cache accounts or sessions in process memory; every call reads the store.
//   - Return store or SMTP failure details to callers. Infrastructure errors
//     classify as [KindInternal].
package q63

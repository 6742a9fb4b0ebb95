// Package internal contains helper utilities that are private to q63,
// chiefly the opaque token generator shared by sessions and password resets.
//
// # Sub-packages
//
//   - config: process configuration loader (defaults, YAML, env, flags)
//   - flows: pure-function flow orchestrators for every Engine operation
//   - logging: slog setup and oops-aware error logging
//   - outbox: async dispatcher for outbound transactional email
//   - stores: key-value store, account, and reset record persistence
//
// Nothing here may be imported from outside the q63 module.
package internal

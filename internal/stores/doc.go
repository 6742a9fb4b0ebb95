// Package stores provides the key-value store contract and the record stores
// built on it: accounts, progress, the registered email list, and pending
// password resets.
//
// # Design
//
// Every record is a JSON value under a namespaced key (user:, progress:,
// reset:, emails:list). Operations are single-key get/put/delete; there are
// no transactions, and concurrent writers to one key resolve last-writer-wins.
// Reset records carry both a store TTL and an embedded expiry.
//
// # Architecture boundaries
//
// This package owns persistence only. It does NOT generate tokens, hash
// passwords, or make authentication decisions. Those responsibilities belong
// to the flow functions in internal/flows.
//
// # What this package must NOT do
//
//   - Import q63 or any sibling internal package.
//   - Attach bearer tokens to error context.
package stores

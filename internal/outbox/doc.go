// Package outbox implements async delivery of transactional email.
//
// # Components
//
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//
// # Architecture boundaries
//
// This package owns buffering and sender invocation. It does NOT decide which
// messages to send or render them. That belongs to the Engine and the mail
// package.
//
// # What this package must NOT do
//
//   - Retry failed deliveries or persist the queue.
//   - Import q63 or any sibling internal package.
package outbox

// Package password implements the credential hasher: salted PBKDF2-HMAC-SHA256
// with a fixed 256-bit output rendered as lowercase hex.
//
// # Output format
//
// A stored credential is the pair (salt, digest), both lowercase hex:
//
//	salt   = hex(16 random bytes)
//	digest = hex(PBKDF2-SHA256(password, salt, iterations, 32))
//
// The cost is fixed per [Hasher] instance; records produced under another
// cost are verified by passing their iteration count to [Hasher.VerifyCost].
//
// # Architecture boundaries
//
// This package owns derivation and comparison only. Password policy (length
// limits) is enforced by the engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive digests.
//   - Import any other q63 package.
//   - Log plaintext passwords or digests at runtime.
package password

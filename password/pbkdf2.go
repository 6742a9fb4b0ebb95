package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// MinIterations is the lowest PBKDF2 cost New accepts.
	MinIterations = 100_000
	// DefaultIterations is the cost used for new digests unless configured otherwise.
	DefaultIterations = 600_000

	saltLength = 16
	keyLength  = 32
)

// Config defines a public type used by the credential hasher.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Iterations int
}

// DefaultConfig returns the cost used for newly registered accounts.
func DefaultConfig() Config {
	return Config{Iterations: DefaultIterations}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Iterations < MinIterations {
		return errors.New("password iterations must be >= 100000")
	}

	return nil
}

// Hasher derives hex-encoded PBKDF2-HMAC-SHA256 digests from a password and
// a per-account salt.
//
// Hasher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hasher struct {
	config Config
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(cfg Config) (*Hasher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Hasher{config: cfg}, nil
}

// Iterations returns the cost used by Hash.
func (h *Hasher) Iterations() int {
	return h.config.Iterations
}

// GenerateSalt returns 128 bits of crypto/rand output, hex encoded.
func (h *Hasher) GenerateSalt() (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	return hex.EncodeToString(salt), nil
}

// Hash derives the digest of password under salt with the configured cost.
//
// The salt's hex text is used as the KDF salt input as-is, so digests stay
// comparable with records written by earlier deployments.
func (h *Hasher) Hash(password, salt string) string {
	return derive(password, salt, h.config.Iterations)
}

// Verify reports whether password derives to digest under salt with the
// configured cost.
func (h *Hasher) Verify(password, salt, digest string) bool {
	return h.VerifyCost(password, salt, digest, h.config.Iterations)
}

// VerifyCost is Verify for a digest stored with an explicit cost. Zero or
// less means the configured cost. The comparison runs in constant time for
// equal lengths.
func (h *Hasher) VerifyCost(password, salt, digest string, iterations int) bool {
	if iterations <= 0 {
		iterations = h.config.Iterations
	}
	return ConstantTimeEqual(derive(password, salt, iterations), digest)
}

// ConstantTimeEqual compares a and b without an early exit on the first
// differing byte. Inputs of different length are rejected immediately.
func ConstantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func derive(password, salt string, iterations int) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLength, sha256.New)
	return hex.EncodeToString(key)
}

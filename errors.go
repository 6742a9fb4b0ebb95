package q63

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind uint8

const (
	// KindInternal covers store, hashing, and other infrastructure failures.
	KindInternal Kind = iota
	// KindValidation is malformed or missing input.
	KindValidation
	// KindAuth is a bad credential, session, or admin key.
	KindAuth
	// KindConflict is a duplicate registration.
	KindConflict
	// KindNotFound is a reset whose account no longer exists.
	KindNotFound
)

// HTTPStatus returns the status code a transport should use for k.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a caller-safe engine error. Message is suitable for end users.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf classifies err. Anything that is not an *Error is KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	// ErrEngineNotReady is an exported constant or variable used by the engine.
	ErrEngineNotReady = newError(KindInternal, "engine not ready")

	// ErrLoginFieldsRequired is an exported constant or variable used by the engine.
	ErrLoginFieldsRequired = newError(KindValidation, "Email and password are required.")
	// ErrRegisterFieldsRequired is an exported constant or variable used by the engine.
	ErrRegisterFieldsRequired = newError(KindValidation, "Email, name, and password are required.")
	// ErrEmailRequired is an exported constant or variable used by the engine.
	ErrEmailRequired = newError(KindValidation, "Email is required.")
	// ErrResetFieldsRequired is an exported constant or variable used by the engine.
	ErrResetFieldsRequired = newError(KindValidation, "Token and new password are required.")
	// ErrInvalidEmail is an exported constant or variable used by the engine.
	ErrInvalidEmail = newError(KindValidation, "Invalid email address.")
	// ErrPasswordLength is an exported constant or variable used by the engine.
	ErrPasswordLength = newError(KindValidation, "Password must be between 8 and 256 characters.")
	// ErrNameLength is an exported constant or variable used by the engine.
	ErrNameLength = newError(KindValidation, "Name must be between 1 and 100 characters.")
	// ErrInvalidResetToken is an exported constant or variable used by the engine.
	ErrInvalidResetToken = newError(KindValidation, "Invalid reset token.")
	// ErrResetInvalid covers unknown, consumed, and expired reset tokens alike.
	ErrResetInvalid = newError(KindValidation, "Invalid or expired reset link.")
	// ErrInvalidDay is an exported constant or variable used by the engine.
	ErrInvalidDay = newError(KindValidation, "Day must be an integer between 1 and 63.")
	// ErrPracticesRequired is an exported constant or variable used by the engine.
	ErrPracticesRequired = newError(KindValidation, "Practices object is required.")

	// ErrInvalidCredentials is returned for unknown accounts and wrong passwords alike.
	ErrInvalidCredentials = newError(KindAuth, "Invalid email or password.")
	// ErrUnauthorized is returned for every rejected session token.
	ErrUnauthorized = newError(KindAuth, "Unauthorized. Please log in.")
	// ErrAdminUnauthorized is an exported constant or variable used by the engine.
	ErrAdminUnauthorized = newError(KindAuth, "Unauthorized.")

	// ErrAccountExists is an exported constant or variable used by the engine.
	ErrAccountExists = newError(KindConflict, "An account with this email already exists.")

	// ErrAccountNotFound is an exported constant or variable used by the engine.
	ErrAccountNotFound = newError(KindNotFound, "Account not found.")
)

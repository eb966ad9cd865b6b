package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the reconciler and the lifecycle controller.
// Handlers map each kind to a distinct HTTP status and user-facing message;
// raw transport errors never reach a client.
var (
	// ErrValidation covers missing or malformed input, recoverable by
	// re-prompting the caller.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState is a transition attempted from a disallowed state,
	// including losing a conditional-update race.
	ErrInvalidState = errors.New("request is not in a state that allows this action")

	// ErrNotFound is an absent id or email.
	ErrNotFound = errors.New("not found")

	// ErrBlocked is an administratively blocked account. Callers must force
	// logout and show a message distinct from invalid credentials.
	ErrBlocked = errors.New("account is blocked")

	// ErrTransient is a network or timeout failure; safe to retry.
	ErrTransient = errors.New("transient failure")

	// ErrUnauthorized is an unknown or insufficient role for the action.
	ErrUnauthorized = errors.New("not authorized for this action")

	// ErrInvalidCredentials is the identity provider rejecting a login.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Validationf wraps ErrValidation with a field-level cause.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// Transientf wraps ErrTransient with the underlying cause.
func Transientf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrTransient}, args...)...)
}

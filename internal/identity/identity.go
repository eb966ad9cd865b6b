package identity

import (
	"context"

	"bloodbridge-backend/internal/domain"
)

// Provider is the identity session source. It verifies credentials, issues
// and revokes session tokens, and owns display-profile data. It is not
// authoritative for roles or account standing; the directory is.
//
// Implementations report failures through the domain taxonomy:
// ErrInvalidCredentials for rejected logins, ErrUnauthorized for bad or
// revoked session tokens, ErrValidation for an already-registered email,
// and ErrTransient for connectivity problems.
type Provider interface {
	// VerifySession validates a session token, including a revocation check,
	// and returns the identity it is bound to.
	VerifySession(ctx context.Context, token string) (*domain.Session, error)

	// LoginWithCredentials verifies the credentials and mints a session
	// token.
	LoginWithCredentials(ctx context.Context, email, password string) (string, *domain.Session, error)

	// CreateIdentity registers a new credential-backed identity.
	CreateIdentity(ctx context.Context, email, password, displayName string) (*domain.Session, error)

	// UpdateDisplayProfile sets the display name and avatar on the identity
	// record.
	UpdateDisplayProfile(ctx context.Context, email, displayName, avatarURL string) error

	// RevokeSessions invalidates every outstanding session for the email.
	// Tokens minted before the revocation fail VerifySession afterwards.
	RevokeSessions(ctx context.Context, email string) error
}

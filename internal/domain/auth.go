package domain

// Session is the externally-verified proof of who is using the client right
// now. It is issued by the identity provider and is not itself authoritative
// for authorization; the directory record is.
type Session struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// AuthPhase tags the reconciler's per-identity state machine:
// Unauthenticated → Authenticating → {Authorized, Unauthorized, Blocked}.
type AuthPhase string

const (
	AuthPhaseUnauthenticated AuthPhase = "unauthenticated"
	AuthPhaseAuthenticating  AuthPhase = "authenticating"
	AuthPhaseAuthorized      AuthPhase = "authorized"
	// AuthPhaseUnauthorized means the session is valid but the directory has
	// no record; callers must fall back to the least-privileged experience.
	AuthPhaseUnauthorized AuthPhase = "unauthorized"
	// AuthPhaseBlocked is terminal until an admin unblocks the record and the
	// user logs in again.
	AuthPhaseBlocked AuthPhase = "blocked"
)

// AuthState is the single source of truth for "who can see what", derived by
// the reconciler from the session and the directory record. Only the
// reconciler writes it; everything else holds a read-only view.
type AuthState struct {
	Phase   AuthPhase `json:"phase"`
	Session *Session  `json:"session,omitempty"`
	Role    Role      `json:"role"`
	Status  AccountStatus `json:"status,omitempty"`
}

// Unauthenticated is the zero identity: no session, no role.
func Unauthenticated() AuthState {
	return AuthState{Phase: AuthPhaseUnauthenticated, Role: RoleUnknown}
}

// Usable reports whether the identity may be offered role-gated actions.
func (a AuthState) Usable() bool {
	return a.Phase == AuthPhaseAuthorized && a.Status == AccountStatusActive
}

// HasRole reports whether the identity holds any of the given roles. An
// Unauthorized identity matches nothing.
func (a AuthState) HasRole(roles ...Role) bool {
	if !a.Usable() {
		return false
	}
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// Email returns the current identity's email, or "" when there is none.
func (a AuthState) Email() string {
	if a.Session == nil {
		return ""
	}
	return a.Session.Email
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bloodbridge-backend/internal/domain"
	"bloodbridge-backend/internal/identity"
	"bloodbridge-backend/internal/logger"
	"bloodbridge-backend/internal/repository"
)

type authService struct {
	userRepo repository.UserRepository
	provider identity.Provider
}

func NewAuthService(userRepo repository.UserRepository, provider identity.Provider) AuthService {
	return &authService{
		userRepo: userRepo,
		provider: provider,
	}
}

// Reconcile is the single derivation point for "who can see what". The
// directory verdict wins over the identity provider's: a blocked record
// kills the session here even though the provider still considered it valid.
func (s *authService) Reconcile(ctx context.Context, session *domain.Session) domain.AuthState {
	if session == nil || session.Email == "" {
		return domain.Unauthenticated()
	}

	rs, err := s.userRepo.GetRoleStatus(ctx, session.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Authenticated but unknown to the directory: least privilege,
			// not an error.
			return domain.AuthState{
				Phase:   domain.AuthPhaseUnauthorized,
				Session: session,
				Role:    domain.RoleUnknown,
			}
		}
		// A directory outage must not crash reconciliation or block the
		// session outright; degrade to role-unknown.
		logger.Error("Directory lookup failed during reconciliation", "email", session.Email, "error", err)
		return domain.AuthState{
			Phase:   domain.AuthPhaseUnauthorized,
			Session: session,
			Role:    domain.RoleUnknown,
		}
	}

	if rs.Status == domain.AccountStatusBlocked {
		// Force-terminate: the session must not remain usable past this
		// point. Revocation failure is logged, not swallowed silently, but
		// the caller still sees Blocked.
		if err := s.provider.RevokeSessions(ctx, session.Email); err != nil {
			logger.Error("Failed to revoke sessions for blocked account", "email", session.Email, "error", err)
		}
		logger.Info("Blocked account reconciled, session revoked", "email", session.Email)
		return domain.AuthState{
			Phase:   domain.AuthPhaseBlocked,
			Session: session,
			Role:    rs.Role,
			Status:  domain.AccountStatusBlocked,
		}
	}

	return domain.AuthState{
		Phase:   domain.AuthPhaseAuthorized,
		Session: session,
		Role:    rs.Role,
		Status:  rs.Status,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (string, domain.AuthState, error) {
	if email == "" || password == "" {
		return "", domain.Unauthenticated(), domain.Validationf("email and password are required")
	}

	// Best-effort pre-check: reject a known-blocked account without ever
	// establishing a session. Any lookup failure falls through to the
	// provider, since the directory is not guaranteed to precede it.
	if rs, err := s.userRepo.GetRoleStatus(ctx, email); err == nil && rs.Status == domain.AccountStatusBlocked {
		return "", domain.Unauthenticated(), domain.ErrBlocked
	}

	token, session, err := s.provider.LoginWithCredentials(ctx, email, password)
	if err != nil {
		return "", domain.Unauthenticated(), err
	}

	state := s.Reconcile(ctx, session)
	if state.Phase == domain.AuthPhaseBlocked {
		// Blocked between the pre-check and now, or the pre-check lookup
		// failed. Reconcile already revoked the session.
		return "", state, domain.ErrBlocked
	}
	return token, state, nil
}

// RegisterWithCredentials is a sequential workflow; each step's failure is a
// distinct reported cause. A directory-insert failure after the identity was
// created leaves an orphaned identity record behind — logged so an operator
// can clean it up, since the provider offers no transactional rollback.
func (s *authService) RegisterWithCredentials(ctx context.Context, input RegisterInput) (string, domain.AuthState, error) {
	if err := validateRegistration(input); err != nil {
		return "", domain.Unauthenticated(), err
	}

	session, err := s.provider.CreateIdentity(ctx, input.Email, input.Password, input.Name)
	if err != nil {
		return "", domain.Unauthenticated(), fmt.Errorf("identity creation: %w", err)
	}

	if input.AvatarURL != "" {
		if err := s.provider.UpdateDisplayProfile(ctx, input.Email, input.Name, input.AvatarURL); err != nil {
			// Cosmetic step; registration proceeds without the avatar.
			logger.Warn("Display profile update failed during registration", "email", input.Email, "error", err)
		}
	}

	user := &domain.User{
		Email:      input.Email,
		Name:       input.Name,
		BloodGroup: input.BloodGroup,
		District:   input.District,
		Upazila:    input.Upazila,
		Role:       domain.RoleDonor,
		Status:     domain.AccountStatusActive,
		AvatarURL:  input.AvatarURL,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		logger.Error("Directory insert failed after identity creation; identity is orphaned",
			"email", input.Email, "uid", session.UID, "error", err)
		return "", domain.Unauthenticated(), fmt.Errorf("directory insert: %w", err)
	}

	token, _, err := s.provider.LoginWithCredentials(ctx, input.Email, input.Password)
	if err != nil {
		return "", domain.Unauthenticated(), fmt.Errorf("post-registration login: %w", err)
	}

	return token, s.Reconcile(ctx, session), nil
}

// RegisterFederated synthesizes the default directory record on a first
// federated login. Two near-simultaneous first logins race on the
// conditional insert; both end up reading the single surviving record.
func (s *authService) RegisterFederated(ctx context.Context, session *domain.Session) (domain.AuthState, error) {
	if session == nil || session.Email == "" {
		return domain.Unauthenticated(), domain.Validationf("a verified session is required")
	}

	state := s.Reconcile(ctx, session)
	if state.Phase != domain.AuthPhaseUnauthorized {
		return state, nil
	}

	name := session.DisplayName
	if name == "" {
		name = session.Email
	}
	user := &domain.User{
		Email:      session.Email,
		Name:       name,
		District:   domain.PlaceholderLocation,
		Upazila:    domain.PlaceholderLocation,
		Role:       domain.RoleDonor,
		Status:     domain.AccountStatusActive,
		AvatarURL:  session.AvatarURL,
	}

	created, err := s.userRepo.CreateIfAbsent(ctx, user)
	if err != nil {
		return state, err
	}
	if created {
		logger.Info("Synthesized directory record for federated identity", "email", session.Email)
	}

	return s.Reconcile(ctx, session), nil
}

func (s *authService) Logout(ctx context.Context, session *domain.Session) error {
	if session == nil || session.Email == "" {
		return nil
	}
	return s.provider.RevokeSessions(ctx, session.Email)
}

func validateRegistration(input RegisterInput) error {
	var missing []string
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		missing = append(missing, "email")
	}
	if len(input.Password) < 6 {
		return domain.Validationf("password must be at least 6 characters")
	}
	if input.Name == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return domain.Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if input.BloodGroup != "" && !domain.ValidBloodGroup(input.BloodGroup) {
		return domain.Validationf("unknown blood group %q", input.BloodGroup)
	}
	return nil
}

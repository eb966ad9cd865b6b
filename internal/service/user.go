package service

import (
	"context"
	"strings"

	"bloodbridge-backend/internal/domain"
	"bloodbridge-backend/internal/identity"
	"bloodbridge-backend/internal/logger"
	"bloodbridge-backend/internal/repository"
)

type userService struct {
	userRepo    repository.UserRepository
	requestRepo repository.RequestRepository
	provider    identity.Provider
	emailSvc    EmailService
}

func NewUserService(
	userRepo repository.UserRepository,
	requestRepo repository.RequestRepository,
	provider identity.Provider,
	emailSvc EmailService,
) UserService {
	return &userService{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		provider:    provider,
		emailSvc:    emailSvc,
	}
}

func (s *userService) GetProfile(ctx context.Context, actor domain.AuthState, email string) (*domain.User, error) {
	if !s.selfOrAdmin(actor, email) {
		return nil, domain.ErrUnauthorized
	}
	return s.userRepo.GetByEmail(ctx, email)
}

func (s *userService) GetRoleStatus(ctx context.Context, email string) (*domain.RoleStatus, error) {
	return s.userRepo.GetRoleStatus(ctx, email)
}

// CreateRecord validates and persists a directory record. Role and status
// default rather than trusting the caller.
func (s *userService) CreateRecord(ctx context.Context, user *domain.User) error {
	if user.Email == "" || !strings.Contains(user.Email, "@") {
		return domain.Validationf("a valid email is required")
	}
	if user.Name == "" {
		return domain.Validationf("name is required")
	}
	if user.BloodGroup != "" && !domain.ValidBloodGroup(user.BloodGroup) {
		return domain.Validationf("unknown blood group %q", user.BloodGroup)
	}
	if !user.Role.Valid() {
		user.Role = domain.RoleDonor
	}
	if !user.Status.Valid() {
		user.Status = domain.AccountStatusActive
	}
	if user.District == "" {
		user.District = domain.PlaceholderLocation
	}
	if user.Upazila == "" {
		user.Upazila = domain.PlaceholderLocation
	}
	return s.userRepo.Create(ctx, user)
}

func (s *userService) UpdateProfile(ctx context.Context, actor domain.AuthState, email string, input ProfileInput) (*domain.User, error) {
	if !s.selfOrAdmin(actor, email) {
		return nil, domain.ErrUnauthorized
	}
	if input.Name == "" {
		return nil, domain.Validationf("name is required")
	}
	if input.BloodGroup != "" && !domain.ValidBloodGroup(input.BloodGroup) {
		return nil, domain.Validationf("unknown blood group %q", input.BloodGroup)
	}

	current, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	current.Name = input.Name
	current.BloodGroup = input.BloodGroup
	current.District = input.District
	current.Upazila = input.Upazila
	if input.AvatarURL != "" {
		current.AvatarURL = input.AvatarURL
	}

	if err := s.userRepo.UpdateProfile(ctx, current); err != nil {
		return nil, err
	}

	// Keep the identity provider's display profile in step; cosmetic, so a
	// failure does not roll back the directory write.
	if err := s.provider.UpdateDisplayProfile(ctx, email, current.Name, current.AvatarURL); err != nil {
		logger.Warn("Display profile sync failed", "email", email, "error", err)
	}

	return current, nil
}

func (s *userService) List(ctx context.Context, actor domain.AuthState) ([]domain.User, error) {
	if !actor.HasRole(domain.RoleAdmin) {
		return nil, domain.ErrUnauthorized
	}
	return s.userRepo.List(ctx)
}

func (s *userService) SearchDonors(ctx context.Context, bloodGroup, district, upazila string) ([]domain.User, error) {
	if bloodGroup != "" && !domain.ValidBloodGroup(bloodGroup) {
		return nil, domain.Validationf("unknown blood group %q", bloodGroup)
	}
	return s.userRepo.SearchDonors(ctx, bloodGroup, district, upazila)
}

func (s *userService) SetStatus(ctx context.Context, actor domain.AuthState, email string, status domain.AccountStatus) error {
	if !actor.HasRole(domain.RoleAdmin) {
		return domain.ErrUnauthorized
	}
	if !status.Valid() {
		return domain.Validationf("unknown status %q", status)
	}
	if strings.EqualFold(actor.Email(), email) {
		return domain.Validationf("admins cannot change their own status")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdateStatus(ctx, email, status); err != nil {
		return err
	}

	if status == domain.AccountStatusBlocked {
		// Kill any live session now rather than waiting for the next page
		// load; the sweep job backstops this if the provider call fails.
		if err := s.provider.RevokeSessions(ctx, email); err != nil {
			logger.Error("Session revocation failed after block", "email", email, "error", err)
		}
	}

	if err := s.emailSvc.SendAccountStatusNotification(ctx, email, user.Name, string(status), ""); err != nil {
		logger.Warn("Account status notification failed", "email", email, "error", err)
	}

	logger.Info("Account status changed", "email", email, "status", status, "admin", actor.Email())
	return nil
}

func (s *userService) SetRole(ctx context.Context, actor domain.AuthState, email string, role domain.Role) error {
	if !actor.HasRole(domain.RoleAdmin) {
		return domain.ErrUnauthorized
	}
	if !role.Valid() {
		return domain.Validationf("unknown role %q", role)
	}

	if err := s.userRepo.UpdateRole(ctx, email, role); err != nil {
		return err
	}
	logger.Info("Role changed", "email", email, "role", role, "admin", actor.Email())
	return nil
}

func (s *userService) Stats(ctx context.Context, actor domain.AuthState) (*AdminStats, error) {
	if !actor.HasRole(domain.RoleAdmin) {
		return nil, domain.ErrUnauthorized
	}

	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.requestRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range byStatus {
		total += n
	}
	return &AdminStats{
		TotalUsers:    users,
		TotalRequests: total,
		ByStatus:      byStatus,
	}, nil
}

func (s *userService) selfOrAdmin(actor domain.AuthState, email string) bool {
	if !actor.Usable() {
		return false
	}
	return actor.HasRole(domain.RoleAdmin) || strings.EqualFold(actor.Email(), email)
}

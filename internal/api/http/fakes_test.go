package http_test

import (
	"context"

	"bloodbridge-backend/internal/domain"
	"bloodbridge-backend/internal/service"
)

// Function-backed fakes: tests set only the methods a route exercises.

type fakeProvider struct {
	verify func(ctx context.Context, token string) (*domain.Session, error)
	revoke func(ctx context.Context, email string) error
}

func (f *fakeProvider) VerifySession(ctx context.Context, token string) (*domain.Session, error) {
	return f.verify(ctx, token)
}
func (f *fakeProvider) LoginWithCredentials(ctx context.Context, email, password string) (string, *domain.Session, error) {
	return "", nil, domain.ErrInvalidCredentials
}
func (f *fakeProvider) CreateIdentity(ctx context.Context, email, password, displayName string) (*domain.Session, error) {
	return nil, domain.ErrUnauthorized
}
func (f *fakeProvider) UpdateDisplayProfile(ctx context.Context, email, displayName, avatarURL string) error {
	return nil
}
func (f *fakeProvider) RevokeSessions(ctx context.Context, email string) error {
	if f.revoke != nil {
		return f.revoke(ctx, email)
	}
	return nil
}

type fakeAuthService struct {
	reconcile func(ctx context.Context, session *domain.Session) domain.AuthState
	login     func(ctx context.Context, email, password string) (string, domain.AuthState, error)
}

func (f *fakeAuthService) Reconcile(ctx context.Context, session *domain.Session) domain.AuthState {
	if f.reconcile != nil {
		return f.reconcile(ctx, session)
	}
	return domain.Unauthenticated()
}
func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, domain.AuthState, error) {
	if f.login != nil {
		return f.login(ctx, email, password)
	}
	return "", domain.Unauthenticated(), domain.ErrInvalidCredentials
}
func (f *fakeAuthService) RegisterWithCredentials(ctx context.Context, input service.RegisterInput) (string, domain.AuthState, error) {
	return "", domain.Unauthenticated(), domain.ErrValidation
}
func (f *fakeAuthService) RegisterFederated(ctx context.Context, session *domain.Session) (domain.AuthState, error) {
	return domain.Unauthenticated(), nil
}
func (f *fakeAuthService) Logout(ctx context.Context, session *domain.Session) error {
	return nil
}

type fakeRequestService struct {
	create      func(ctx context.Context, actor domain.AuthState, input service.RequestInput) (*domain.DonationRequest, error)
	assign      func(ctx context.Context, actor domain.AuthState, id int64) (*domain.DonationRequest, error)
	resolve     func(ctx context.Context, actor domain.AuthState, id int64, outcome domain.RequestStatus) (*domain.DonationRequest, error)
	get         func(ctx context.Context, actor domain.AuthState, id int64) (*domain.DonationRequest, error)
	listPending func(ctx context.Context, n int) ([]domain.DonationRequest, error)
}

func (f *fakeRequestService) Create(ctx context.Context, actor domain.AuthState, input service.RequestInput) (*domain.DonationRequest, error) {
	return f.create(ctx, actor, input)
}
func (f *fakeRequestService) Edit(ctx context.Context, actor domain.AuthState, id int64, input service.RequestInput) (*domain.DonationRequest, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeRequestService) Assign(ctx context.Context, actor domain.AuthState, id int64) (*domain.DonationRequest, error) {
	return f.assign(ctx, actor, id)
}
func (f *fakeRequestService) Resolve(ctx context.Context, actor domain.AuthState, id int64, outcome domain.RequestStatus) (*domain.DonationRequest, error) {
	return f.resolve(ctx, actor, id, outcome)
}
func (f *fakeRequestService) Delete(ctx context.Context, actor domain.AuthState, id int64) error {
	return domain.ErrNotFound
}
func (f *fakeRequestService) Get(ctx context.Context, actor domain.AuthState, id int64) (*domain.DonationRequest, error) {
	return f.get(ctx, actor, id)
}
func (f *fakeRequestService) ListByOwner(ctx context.Context, actor domain.AuthState, email string) ([]domain.DonationRequest, error) {
	return nil, domain.ErrUnauthorized
}
func (f *fakeRequestService) ListAll(ctx context.Context, actor domain.AuthState, status domain.RequestStatus, search string) ([]domain.DonationRequest, error) {
	return nil, domain.ErrUnauthorized
}
func (f *fakeRequestService) ListPendingSample(ctx context.Context, n int) ([]domain.DonationRequest, error) {
	return f.listPending(ctx, n)
}

type fakeUserService struct {
	search    func(ctx context.Context, bloodGroup, district, upazila string) ([]domain.User, error)
	setStatus func(ctx context.Context, actor domain.AuthState, email string, status domain.AccountStatus) error
}

func (f *fakeUserService) GetProfile(ctx context.Context, actor domain.AuthState, email string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeUserService) GetRoleStatus(ctx context.Context, email string) (*domain.RoleStatus, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeUserService) CreateRecord(ctx context.Context, user *domain.User) error {
	return nil
}
func (f *fakeUserService) UpdateProfile(ctx context.Context, actor domain.AuthState, email string, input service.ProfileInput) (*domain.User, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeUserService) List(ctx context.Context, actor domain.AuthState) ([]domain.User, error) {
	return nil, domain.ErrUnauthorized
}
func (f *fakeUserService) SearchDonors(ctx context.Context, bloodGroup, district, upazila string) ([]domain.User, error) {
	return f.search(ctx, bloodGroup, district, upazila)
}
func (f *fakeUserService) SetStatus(ctx context.Context, actor domain.AuthState, email string, status domain.AccountStatus) error {
	return f.setStatus(ctx, actor, email, status)
}
func (f *fakeUserService) SetRole(ctx context.Context, actor domain.AuthState, email string, role domain.Role) error {
	return domain.ErrUnauthorized
}
func (f *fakeUserService) Stats(ctx context.Context, actor domain.AuthState) (*service.AdminStats, error) {
	return nil, domain.ErrUnauthorized
}

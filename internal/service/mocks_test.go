package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bloodbridge-backend/internal/domain"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) CreateIfAbsent(ctx context.Context, user *domain.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetRoleStatus(ctx context.Context, email string) (*domain.RoleStatus, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoleStatus), args.Error(1)
}
func (m *MockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserRepo) SearchDonors(ctx context.Context, bloodGroup, district, upazila string) ([]domain.User, error) {
	args := m.Called(ctx, bloodGroup, district, upazila)
	return args.Get(0).([]domain.User), args.Error(1)
}
func (m *MockUserRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}
func (m *MockUserRepo) UpdateStatus(ctx context.Context, email string, status domain.AccountStatus) error {
	args := m.Called(ctx, email, status)
	return args.Error(0)
}
func (m *MockUserRepo) UpdateRole(ctx context.Context, email string, role domain.Role) error {
	args := m.Called(ctx, email, role)
	return args.Error(0)
}
func (m *MockUserRepo) ListBlockedEmails(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}
func (m *MockUserRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockRequestRepo
type MockRequestRepo struct {
	mock.Mock
}

func (m *MockRequestRepo) Create(ctx context.Context, req *domain.DonationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockRequestRepo) GetByID(ctx context.Context, id int64) (*domain.DonationRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DonationRequest), args.Error(1)
}
func (m *MockRequestRepo) UpdateFields(ctx context.Context, req *domain.DonationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockRequestRepo) Transition(ctx context.Context, id int64, from, to domain.RequestStatus, donorName, donorEmail string) error {
	args := m.Called(ctx, id, from, to, donorName, donorEmail)
	return args.Error(0)
}
func (m *MockRequestRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockRequestRepo) ListAll(ctx context.Context, status domain.RequestStatus, search string) ([]domain.DonationRequest, error) {
	args := m.Called(ctx, status, search)
	return args.Get(0).([]domain.DonationRequest), args.Error(1)
}
func (m *MockRequestRepo) ListByRequester(ctx context.Context, email string) ([]domain.DonationRequest, error) {
	args := m.Called(ctx, email)
	return args.Get(0).([]domain.DonationRequest), args.Error(1)
}
func (m *MockRequestRepo) ListPending(ctx context.Context, limit int) ([]domain.DonationRequest, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.DonationRequest), args.Error(1)
}
func (m *MockRequestRepo) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[domain.RequestStatus]int64), args.Error(1)
}
func (m *MockRequestRepo) ListStalePending(ctx context.Context, beforeDate string) ([]domain.DonationRequest, error) {
	args := m.Called(ctx, beforeDate)
	return args.Get(0).([]domain.DonationRequest), args.Error(1)
}

// MockProvider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) VerifySession(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockProvider) LoginWithCredentials(ctx context.Context, email, password string) (string, *domain.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*domain.Session), args.Error(2)
}
func (m *MockProvider) CreateIdentity(ctx context.Context, email, password, displayName string) (*domain.Session, error) {
	args := m.Called(ctx, email, password, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockProvider) UpdateDisplayProfile(ctx context.Context, email, displayName, avatarURL string) error {
	args := m.Called(ctx, email, displayName, avatarURL)
	return args.Error(0)
}
func (m *MockProvider) RevokeSessions(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendAccountStatusNotification(ctx context.Context, email, name, status, reason string) error {
	args := m.Called(ctx, email, name, status, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendDonorAssignedNotification(ctx context.Context, requesterEmail, requesterName, donorName, donorEmail string) error {
	args := m.Called(ctx, requesterEmail, requesterName, donorName, donorEmail)
	return args.Error(0)
}
func (m *MockEmailService) SendStaleRequestReport(ctx context.Context, adminEmail string, requestCount int) error {
	args := m.Called(ctx, adminEmail, requestCount)
	return args.Error(0)
}

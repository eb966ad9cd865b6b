package repository

import (
	"context"

	"bloodbridge-backend/internal/domain"
)

// Repositories translate store errors into the domain taxonomy: absent rows
// surface as domain.ErrNotFound, lost transition races as
// domain.ErrInvalidState, and connectivity failures as domain.ErrTransient.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	// CreateIfAbsent inserts the record unless one already exists for the
	// email. It reports whether a row was inserted; racing callers both
	// succeed and exactly one row exists afterwards.
	CreateIfAbsent(ctx context.Context, user *domain.User) (bool, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetRoleStatus(ctx context.Context, email string) (*domain.RoleStatus, error)
	List(ctx context.Context) ([]domain.User, error)
	SearchDonors(ctx context.Context, bloodGroup, district, upazila string) ([]domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdateStatus(ctx context.Context, email string, status domain.AccountStatus) error
	UpdateRole(ctx context.Context, email string, role domain.Role) error
	ListBlockedEmails(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type RequestRepository interface {
	Create(ctx context.Context, req *domain.DonationRequest) error
	GetByID(ctx context.Context, id int64) (*domain.DonationRequest, error)
	// UpdateFields rewrites the editable fields, conditional on the stored
	// status still being pending.
	UpdateFields(ctx context.Context, req *domain.DonationRequest) error
	// Transition moves the request from one status to another in a single
	// conditional write. Donor identity, when supplied, is written in the
	// same statement so no reader observes inprogress with empty donor
	// fields.
	Transition(ctx context.Context, id int64, from, to domain.RequestStatus, donorName, donorEmail string) error
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context, status domain.RequestStatus, search string) ([]domain.DonationRequest, error)
	ListByRequester(ctx context.Context, email string) ([]domain.DonationRequest, error)
	ListPending(ctx context.Context, limit int) ([]domain.DonationRequest, error)
	CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error)
	ListStalePending(ctx context.Context, beforeDate string) ([]domain.DonationRequest, error)
}

package service

import (
	"context"

	"bloodbridge-backend/internal/domain"
)

// AuthService is the authorization reconciler. It owns the derived
// {role, status} for an identity: every session change funnels through
// Reconcile, and nothing else derives authorization from the directory.
type AuthService interface {
	// Reconcile derives the effective AuthState for a session (nil means
	// logged out). A blocked directory record force-revokes the session
	// before the state is returned; a directory miss degrades to
	// Unauthorized(unknown) rather than failing.
	Reconcile(ctx context.Context, session *domain.Session) domain.AuthState

	// Login performs a credential login, with a best-effort directory
	// pre-check that rejects known-blocked accounts before any session is
	// established. Returns the session token and the reconciled state.
	Login(ctx context.Context, email, password string) (string, domain.AuthState, error)

	// RegisterWithCredentials runs the multi-step registration workflow:
	// identity creation, display-profile update, directory insert. Each
	// step's failure carries a distinct cause.
	RegisterWithCredentials(ctx context.Context, input RegisterInput) (string, domain.AuthState, error)

	// RegisterFederated reconciles a federated session, synthesizing the
	// default directory record on a first login. Idempotent under races.
	RegisterFederated(ctx context.Context, session *domain.Session) (domain.AuthState, error)

	// Logout revokes the identity's sessions.
	Logout(ctx context.Context, session *domain.Session) error
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	BloodGroup string `json:"bloodGroup"`
	District   string `json:"district"`
	Upazila    string `json:"upazila"`
	AvatarURL  string `json:"avatarUrl"`
}

// RequestService is the donation-request lifecycle controller: the only
// writer of request status and donor-assignment fields.
type RequestService interface {
	Create(ctx context.Context, actor domain.AuthState, input RequestInput) (*domain.DonationRequest, error)
	Edit(ctx context.Context, actor domain.AuthState, id int64, input RequestInput) (*domain.DonationRequest, error)
	// Assign moves pending → inprogress and writes the donor identity from
	// the actor's session in the same store write.
	Assign(ctx context.Context, actor domain.AuthState, id int64) (*domain.DonationRequest, error)
	// Resolve moves inprogress → done or canceled. Donor fields survive.
	Resolve(ctx context.Context, actor domain.AuthState, id int64, outcome domain.RequestStatus) (*domain.DonationRequest, error)
	Delete(ctx context.Context, actor domain.AuthState, id int64) error
	Get(ctx context.Context, actor domain.AuthState, id int64) (*domain.DonationRequest, error)
	ListByOwner(ctx context.Context, actor domain.AuthState, email string) ([]domain.DonationRequest, error)
	ListAll(ctx context.Context, actor domain.AuthState, status domain.RequestStatus, search string) ([]domain.DonationRequest, error)
	// ListPendingSample is the public projection for the landing page.
	ListPendingSample(ctx context.Context, n int) ([]domain.DonationRequest, error)
}

// RequestInput carries the caller-editable fields of a donation request.
// Requester identity and status are never taken from input.
type RequestInput struct {
	RequesterName     string `json:"requesterName"`
	RecipientName     string `json:"recipientName"`
	BloodGroup        string `json:"bloodGroup"`
	RecipientDistrict string `json:"recipientDistrict"`
	RecipientUpazila  string `json:"recipientUpazila"`
	HospitalName      string `json:"hospitalName"`
	FullAddress       string `json:"fullAddress"`
	DonationDate      string `json:"donationDate"`
	DonationTime      string `json:"donationTime"`
	RequestMessage    string `json:"requestMessage"`
}

// UserService covers directory reads, self-service profile edits, and admin
// governance of roles and account standing.
type UserService interface {
	GetProfile(ctx context.Context, actor domain.AuthState, email string) (*domain.User, error)
	GetRoleStatus(ctx context.Context, email string) (*domain.RoleStatus, error)
	CreateRecord(ctx context.Context, user *domain.User) error
	UpdateProfile(ctx context.Context, actor domain.AuthState, email string, input ProfileInput) (*domain.User, error)
	List(ctx context.Context, actor domain.AuthState) ([]domain.User, error)
	SearchDonors(ctx context.Context, bloodGroup, district, upazila string) ([]domain.User, error)
	// SetStatus toggles active/blocked. Blocking revokes the account's live
	// sessions so the change bites before the next page load.
	SetStatus(ctx context.Context, actor domain.AuthState, email string, status domain.AccountStatus) error
	SetRole(ctx context.Context, actor domain.AuthState, email string, role domain.Role) error
	Stats(ctx context.Context, actor domain.AuthState) (*AdminStats, error)
}

// ProfileInput carries the self-service editable fields. Email and role are
// not among them.
type ProfileInput struct {
	Name       string `json:"name"`
	BloodGroup string `json:"bloodGroup"`
	District   string `json:"district"`
	Upazila    string `json:"upazila"`
	AvatarURL  string `json:"avatarUrl"`
}

// AdminStats aggregates the dashboard counters.
type AdminStats struct {
	TotalUsers    int64                          `json:"totalUsers"`
	TotalRequests int64                          `json:"totalRequests"`
	ByStatus      map[domain.RequestStatus]int64 `json:"requestsByStatus"`
}

type EmailService interface {
	SendAccountStatusNotification(ctx context.Context, email, name, status, reason string) error
	SendDonorAssignedNotification(ctx context.Context, requesterEmail, requesterName, donorName, donorEmail string) error
	SendStaleRequestReport(ctx context.Context, adminEmail string, requestCount int) error
}

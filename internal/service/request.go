package service

import (
	"context"
	"sort"
	"strings"

	"bloodbridge-backend/internal/domain"
	"bloodbridge-backend/internal/logger"
	"bloodbridge-backend/internal/repository"
)

type requestService struct {
	requestRepo repository.RequestRepository
	emailSvc    EmailService
}

func NewRequestService(requestRepo repository.RequestRepository, emailSvc EmailService) RequestService {
	return &requestService{
		requestRepo: requestRepo,
		emailSvc:    emailSvc,
	}
}

func (s *requestService) Create(ctx context.Context, actor domain.AuthState, input RequestInput) (*domain.DonationRequest, error) {
	if !actor.Usable() {
		return nil, domain.ErrUnauthorized
	}
	if err := validateRequestInput(input); err != nil {
		return nil, err
	}

	requesterName := input.RequesterName
	if requesterName == "" {
		requesterName = actor.Session.DisplayName
	}

	// Requester identity comes from the session and status is forced to
	// pending no matter what the caller supplied.
	dr := &domain.DonationRequest{
		RequesterName:     requesterName,
		RequesterEmail:    actor.Email(),
		RecipientName:     input.RecipientName,
		BloodGroup:        input.BloodGroup,
		RecipientDistrict: input.RecipientDistrict,
		RecipientUpazila:  input.RecipientUpazila,
		HospitalName:      input.HospitalName,
		FullAddress:       input.FullAddress,
		DonationDate:      input.DonationDate,
		DonationTime:      input.DonationTime,
		RequestMessage:    input.RequestMessage,
		Status:            domain.RequestStatusPending,
	}

	if err := s.requestRepo.Create(ctx, dr); err != nil {
		return nil, err
	}
	logger.Info("Donation request created", "id", dr.ID, "requester", dr.RequesterEmail)
	return dr, nil
}

// Edit re-checks state at the store: the client-side pending check is only
// advisory, a second writer can race past it.
func (s *requestService) Edit(ctx context.Context, actor domain.AuthState, id int64, input RequestInput) (*domain.DonationRequest, error) {
	if !actor.Usable() {
		return nil, domain.ErrUnauthorized
	}
	if err := validateRequestInput(input); err != nil {
		return nil, err
	}

	current, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.ownsOrAdmin(actor, current.RequesterEmail) {
		return nil, domain.ErrUnauthorized
	}

	updated := *current
	updated.RecipientName = input.RecipientName
	updated.BloodGroup = input.BloodGroup
	updated.RecipientDistrict = input.RecipientDistrict
	updated.RecipientUpazila = input.RecipientUpazila
	updated.HospitalName = input.HospitalName
	updated.FullAddress = input.FullAddress
	updated.DonationDate = input.DonationDate
	updated.DonationTime = input.DonationTime
	updated.RequestMessage = input.RequestMessage

	if err := s.requestRepo.UpdateFields(ctx, &updated); err != nil {
		return nil, err
	}
	return s.requestRepo.GetByID(ctx, id)
}

// Assign binds the acting donor to a pending request. Status and donor
// fields land in one conditional write, so concurrent donors are arbitrated
// by the store and a reader never sees inprogress with empty donor fields.
func (s *requestService) Assign(ctx context.Context, actor domain.AuthState, id int64) (*domain.DonationRequest, error) {
	if !actor.Usable() {
		return nil, domain.ErrUnauthorized
	}

	donorName := actor.Session.DisplayName
	if donorName == "" {
		donorName = actor.Email()
	}

	err := s.requestRepo.Transition(ctx, id, domain.RequestStatusPending, domain.RequestStatusInProgress, donorName, actor.Email())
	if err != nil {
		return nil, err
	}

	dr, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if notifyErr := s.emailSvc.SendDonorAssignedNotification(ctx, dr.RequesterEmail, dr.RequesterName, donorName, actor.Email()); notifyErr != nil {
		logger.Warn("Donor assignment notification failed", "id", id, "error", notifyErr)
	}

	logger.Info("Donation request assigned", "id", id, "donor", actor.Email())
	return dr, nil
}

func (s *requestService) Resolve(ctx context.Context, actor domain.AuthState, id int64, outcome domain.RequestStatus) (*domain.DonationRequest, error) {
	if !actor.Usable() {
		return nil, domain.ErrUnauthorized
	}
	if !domain.ResolveOutcome(outcome) {
		return nil, domain.Validationf("outcome must be done or canceled, got %q", outcome)
	}

	current, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.mayResolve(actor, current) {
		return nil, domain.ErrUnauthorized
	}

	// Donor fields are deliberately absent from this write; they survive
	// both outcomes.
	if err := s.requestRepo.Transition(ctx, id, domain.RequestStatusInProgress, outcome, "", ""); err != nil {
		return nil, err
	}
	return s.requestRepo.GetByID(ctx, id)
}

func (s *requestService) Delete(ctx context.Context, actor domain.AuthState, id int64) error {
	if !actor.Usable() {
		return domain.ErrUnauthorized
	}
	if actor.HasRole(domain.RoleAdmin) {
		// Admin removal is unconditional across all states.
		return s.requestRepo.Delete(ctx, id)
	}

	current, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !strings.EqualFold(current.RequesterEmail, actor.Email()) {
		return domain.ErrUnauthorized
	}
	if current.Status != domain.RequestStatusPending {
		return domain.ErrInvalidState
	}
	return s.requestRepo.Delete(ctx, id)
}

func (s *requestService) Get(ctx context.Context, actor domain.AuthState, id int64) (*domain.DonationRequest, error) {
	if !actor.Usable() {
		return nil, domain.ErrUnauthorized
	}
	return s.requestRepo.GetByID(ctx, id)
}

func (s *requestService) ListByOwner(ctx context.Context, actor domain.AuthState, email string) ([]domain.DonationRequest, error) {
	if !s.ownsOrAdmin(actor, email) {
		return nil, domain.ErrUnauthorized
	}
	return s.requestRepo.ListByRequester(ctx, email)
}

func (s *requestService) ListAll(ctx context.Context, actor domain.AuthState, status domain.RequestStatus, search string) ([]domain.DonationRequest, error) {
	if !actor.HasRole(domain.RoleAdmin, domain.RoleVolunteer) {
		return nil, domain.ErrUnauthorized
	}
	if status != "" && !status.Valid() {
		return nil, domain.Validationf("unknown status %q", status)
	}
	return s.requestRepo.ListAll(ctx, status, search)
}

func (s *requestService) ListPendingSample(ctx context.Context, n int) ([]domain.DonationRequest, error) {
	if n <= 0 || n > 50 {
		n = 6
	}
	return s.requestRepo.ListPending(ctx, n)
}

func (s *requestService) ownsOrAdmin(actor domain.AuthState, requesterEmail string) bool {
	if !actor.Usable() {
		return false
	}
	if actor.HasRole(domain.RoleAdmin) {
		return true
	}
	return strings.EqualFold(actor.Email(), requesterEmail)
}

// mayResolve allows the assigned donor, the requester, or an admin.
func (s *requestService) mayResolve(actor domain.AuthState, dr *domain.DonationRequest) bool {
	if actor.HasRole(domain.RoleAdmin) {
		return true
	}
	email := actor.Email()
	return strings.EqualFold(email, dr.DonorEmail) || strings.EqualFold(email, dr.RequesterEmail)
}

func validateRequestInput(input RequestInput) error {
	required := map[string]string{
		"recipientName":     input.RecipientName,
		"bloodGroup":        input.BloodGroup,
		"recipientDistrict": input.RecipientDistrict,
		"recipientUpazila":  input.RecipientUpazila,
		"hospitalName":      input.HospitalName,
		"fullAddress":       input.FullAddress,
		"donationDate":      input.DonationDate,
		"donationTime":      input.DonationTime,
	}
	var missing []string
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		return domain.Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !domain.ValidBloodGroup(input.BloodGroup) {
		return domain.Validationf("unknown blood group %q", input.BloodGroup)
	}
	return nil
}

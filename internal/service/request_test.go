package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"bloodbridge-backend/internal/domain"
	"bloodbridge-backend/internal/service"
)

func activeActor(email string, role domain.Role) domain.AuthState {
	return domain.AuthState{
		Phase:   domain.AuthPhaseAuthorized,
		Session: &domain.Session{UID: "uid-" + email, Email: email, DisplayName: "User " + email},
		Role:    role,
		Status:  domain.AccountStatusActive,
	}
}

func validInput() service.RequestInput {
	return service.RequestInput{
		RecipientName:     "Patient",
		BloodGroup:        "A+",
		RecipientDistrict: "Dhaka",
		RecipientUpazila:  "Dhanmondi",
		HospitalName:      "City Hospital",
		FullAddress:       "12 Road, Dhaka",
		DonationDate:      "2026-09-15",
		DonationTime:      "10:30",
		RequestMessage:    "Urgent",
	}
}

func TestRequestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Forces Pending And Requester Identity", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.DonationRequest")).Return(nil)

		actor := activeActor("requester@test.com", domain.RoleDonor)
		dr, err := svc.Create(ctx, actor, validInput())
		assert.NoError(t, err)
		assert.Equal(t, domain.RequestStatusPending, dr.Status)
		assert.Equal(t, "requester@test.com", dr.RequesterEmail)
		assert.Empty(t, dr.DonorEmail)
	})

	t.Run("Unusable Actor Rejected", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		_, err := svc.Create(ctx, domain.Unauthenticated(), validInput())
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Missing Fields Reported Together", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		input := validInput()
		input.HospitalName = ""
		input.DonationDate = ""

		_, err := svc.Create(ctx, activeActor("r@test.com", domain.RoleDonor), input)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "donationDate")
		assert.Contains(t, err.Error(), "hospitalName")
	})

	t.Run("Unknown Blood Group Rejected", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		input := validInput()
		input.BloodGroup = "Z+"
		_, err := svc.Create(ctx, activeActor("r@test.com", domain.RoleDonor), input)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestRequestService_Edit(t *testing.T) {
	ctx := context.Background()
	existing := &domain.DonationRequest{
		ID:             7,
		RequesterEmail: "owner@test.com",
		RequesterName:  "Owner",
		Status:         domain.RequestStatusPending,
	}

	t.Run("Owner Edits Pending Request", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		repo.On("GetByID", ctx, int64(7)).Return(existing, nil)
		repo.On("UpdateFields", ctx, mock.AnythingOfType("*domain.DonationRequest")).Return(nil)

		_, err := svc.Edit(ctx, activeActor("owner@test.com", domain.RoleDonor), 7, validInput())
		assert.NoError(t, err)
	})

	t.Run("Non Owner Rejected", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		repo.On("GetByID", ctx, int64(7)).Return(existing, nil)

		_, err := svc.Edit(ctx, activeActor("other@test.com", domain.RoleDonor), 7, validInput())
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		repo.AssertNotCalled(t, "UpdateFields", ctx, mock.Anything)
	})

	t.Run("Concurrent Assignment Wins Over Stale Edit", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		repo.On("GetByID", ctx, int64(7)).Return(existing, nil)
		repo.On("UpdateFields", ctx, mock.AnythingOfType("*domain.DonationRequest")).Return(domain.ErrInvalidState)

		_, err := svc.Edit(ctx, activeActor("owner@test.com", domain.RoleDonor), 7, validInput())
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestRequestService_Assign(t *testing.T) {
	ctx := context.Background()

	t.Run("Writes Donor Identity From Session", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		actor := activeActor("donor@test.com", domain.RoleDonor)
		assigned := &domain.DonationRequest{
			ID:             9,
			RequesterEmail: "owner@test.com",
			RequesterName:  "Owner",
			Status:         domain.RequestStatusInProgress,
			DonorName:      actor.Session.DisplayName,
			DonorEmail:     "donor@test.com",
		}

		repo.On("Transition", ctx, int64(9), domain.RequestStatusPending, domain.RequestStatusInProgress,
			actor.Session.DisplayName, "donor@test.com").Return(nil)
		repo.On("GetByID", ctx, int64(9)).Return(assigned, nil)
		emailSvc.On("SendDonorAssignedNotification", ctx, "owner@test.com", "Owner",
			actor.Session.DisplayName, "donor@test.com").Return(nil)

		dr, err := svc.Assign(ctx, actor, 9)
		assert.NoError(t, err)
		assert.Equal(t, domain.RequestStatusInProgress, dr.Status)
		assert.Equal(t, "donor@test.com", dr.DonorEmail)
	})

	t.Run("Second Donor Loses The Race", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		actor := activeActor("late@test.com", domain.RoleDonor)
		repo.On("Transition", ctx, int64(9), domain.RequestStatusPending, domain.RequestStatusInProgress,
			actor.Session.DisplayName, "late@test.com").Return(domain.ErrInvalidState)

		_, err := svc.Assign(ctx, actor, 9)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		emailSvc.AssertNotCalled(t, "SendDonorAssignedNotification", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Notification Failure Does Not Fail Assignment", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		actor := activeActor("donor@test.com", domain.RoleDonor)
		assigned := &domain.DonationRequest{ID: 9, RequesterEmail: "owner@test.com", Status: domain.RequestStatusInProgress}

		repo.On("Transition", ctx, int64(9), domain.RequestStatusPending, domain.RequestStatusInProgress,
			actor.Session.DisplayName, "donor@test.com").Return(nil)
		repo.On("GetByID", ctx, int64(9)).Return(assigned, nil)
		emailSvc.On("SendDonorAssignedNotification", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(assert.AnError)

		_, err := svc.Assign(ctx, actor, 9)
		assert.NoError(t, err)
	})
}

func TestRequestService_Resolve(t *testing.T) {
	ctx := context.Background()
	inProgress := &domain.DonationRequest{
		ID:             11,
		RequesterEmail: "owner@test.com",
		DonorEmail:     "donor@test.com",
		DonorName:      "Donor",
		Status:         domain.RequestStatusInProgress,
	}

	t.Run("Assigned Donor Marks Done", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		done := *inProgress
		done.Status = domain.RequestStatusDone

		repo.On("GetByID", ctx, int64(11)).Return(inProgress, nil).Once()
		// Donor fields are not rewritten on resolution.
		repo.On("Transition", ctx, int64(11), domain.RequestStatusInProgress, domain.RequestStatusDone, "", "").Return(nil)
		repo.On("GetByID", ctx, int64(11)).Return(&done, nil)

		dr, err := svc.Resolve(ctx, activeActor("donor@test.com", domain.RoleDonor), 11, domain.RequestStatusDone)
		assert.NoError(t, err)
		assert.Equal(t, domain.RequestStatusDone, dr.Status)
		assert.Equal(t, "donor@test.com", dr.DonorEmail)
	})

	t.Run("Requester Cancels", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		canceled := *inProgress
		canceled.Status = domain.RequestStatusCanceled

		repo.On("GetByID", ctx, int64(11)).Return(inProgress, nil).Once()
		repo.On("Transition", ctx, int64(11), domain.RequestStatusInProgress, domain.RequestStatusCanceled, "", "").Return(nil)
		repo.On("GetByID", ctx, int64(11)).Return(&canceled, nil)

		dr, err := svc.Resolve(ctx, activeActor("owner@test.com", domain.RoleDonor), 11, domain.RequestStatusCanceled)
		assert.NoError(t, err)
		assert.Equal(t, domain.RequestStatusCanceled, dr.Status)
	})

	t.Run("Bystander Rejected", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		repo.On("GetByID", ctx, int64(11)).Return(inProgress, nil)

		_, err := svc.Resolve(ctx, activeActor("stranger@test.com", domain.RoleDonor), 11, domain.RequestStatusDone)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		repo.AssertNotCalled(t, "Transition", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Only Terminal Outcomes Allowed", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		_, err := svc.Resolve(ctx, activeActor("donor@test.com", domain.RoleDonor), 11, domain.RequestStatusPending)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Pending Request Cannot Be Resolved", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		pending := &domain.DonationRequest{ID: 11, RequesterEmail: "owner@test.com", Status: domain.RequestStatusPending}
		repo.On("GetByID", ctx, int64(11)).Return(pending, nil)
		repo.On("Transition", ctx, int64(11), domain.RequestStatusInProgress, domain.RequestStatusDone, "", "").
			Return(domain.ErrInvalidState)

		_, err := svc.Resolve(ctx, activeActor("owner@test.com", domain.RoleDonor), 11, domain.RequestStatusDone)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestRequestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Admin Deletes Any State", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		repo.On("Delete", ctx, int64(3)).Return(nil)

		err := svc.Delete(ctx, activeActor("admin@test.com", domain.RoleAdmin), 3)
		assert.NoError(t, err)
		repo.AssertNotCalled(t, "GetByID", ctx, int64(3))
	})

	t.Run("Owner Deletes Pending Only", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		repo.On("GetByID", ctx, int64(3)).
			Return(&domain.DonationRequest{ID: 3, RequesterEmail: "owner@test.com", Status: domain.RequestStatusInProgress}, nil)

		err := svc.Delete(ctx, activeActor("owner@test.com", domain.RoleDonor), 3)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		repo.AssertNotCalled(t, "Delete", ctx, int64(3))
	})

	t.Run("Non Owner Rejected", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		repo.On("GetByID", ctx, int64(3)).
			Return(&domain.DonationRequest{ID: 3, RequesterEmail: "owner@test.com", Status: domain.RequestStatusPending}, nil)

		err := svc.Delete(ctx, activeActor("other@test.com", domain.RoleDonor), 3)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestRequestService_Listing(t *testing.T) {
	ctx := context.Background()

	t.Run("ListAll Gated To Admin And Volunteer", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		repo.On("ListAll", ctx, domain.RequestStatusPending, "rahim").Return([]domain.DonationRequest{}, nil)

		_, err := svc.ListAll(ctx, activeActor("vol@test.com", domain.RoleVolunteer), domain.RequestStatusPending, "rahim")
		assert.NoError(t, err)

		_, err = svc.ListAll(ctx, activeActor("donor@test.com", domain.RoleDonor), domain.RequestStatusPending, "rahim")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("ListByOwner Restricted To Self Or Admin", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		repo.On("ListByRequester", ctx, "owner@test.com").Return([]domain.DonationRequest{}, nil)

		_, err := svc.ListByOwner(ctx, activeActor("owner@test.com", domain.RoleDonor), "owner@test.com")
		assert.NoError(t, err)

		_, err = svc.ListByOwner(ctx, activeActor("admin@test.com", domain.RoleAdmin), "owner@test.com")
		assert.NoError(t, err)

		_, err = svc.ListByOwner(ctx, activeActor("other@test.com", domain.RoleDonor), "owner@test.com")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("Pending Sample Clamps Limit", func(t *testing.T) {
		repo := new(MockRequestRepo)
		emailSvc := new(MockEmailService)
		svc := service.NewRequestService(repo, emailSvc)

		repo.On("ListPending", ctx, 6).Return([]domain.DonationRequest{}, nil)

		_, err := svc.ListPendingSample(ctx, 0)
		assert.NoError(t, err)
		_, err = svc.ListPendingSample(ctx, 500)
		assert.NoError(t, err)
		repo.AssertNumberOfCalls(t, "ListPending", 2)
	})
}

package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"bloodbridge-backend/internal/logger"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
	enabled   bool
}

// NewEmailService builds a SendGrid-backed email service. With enabled=false
// every send is logged and dropped, which keeps development and tests free
// of outbound mail.
func NewEmailService(apiKey, fromEmail, fromName string, enabled bool) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   enabled,
	}
}

func (s *emailService) SendAccountStatusNotification(ctx context.Context, email, name, status, reason string) error {
	subject := "Your BloodBridge account status has changed"
	body := fmt.Sprintf("Hello %s,\n\nYour account status has been updated to: %s.", name, status)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nIf you believe this is a mistake, please contact the administrators.\n\nBest regards,\nThe BloodBridge Team"
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendDonorAssignedNotification(ctx context.Context, requesterEmail, requesterName, donorName, donorEmail string) error {
	subject := "A donor volunteered for your donation request"
	body := fmt.Sprintf("Hello %s,\n\n%s (%s) has volunteered to donate for your request. Please coordinate the donation details directly.\n\nBest regards,\nThe BloodBridge Team",
		requesterName, donorName, donorEmail)
	return s.send(ctx, requesterEmail, requesterName, subject, body)
}

func (s *emailService) SendStaleRequestReport(ctx context.Context, adminEmail string, requestCount int) error {
	subject := "Stale donation requests report"
	body := fmt.Sprintf("There are %d pending donation requests whose donation date has already passed.\n\nBest regards,\nThe BloodBridge Team", requestCount)
	return s.send(ctx, adminEmail, "", subject, body)
}

func (s *emailService) send(ctx context.Context, to, toName, subject, plainText string) error {
	if !s.enabled {
		logger.Debug("Email sending disabled, dropping message", "to", to, "subject", subject)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)

	logger.ExternalServiceCall("sendgrid", "Send", "to", to, "subject", subject)
	response, err := client.SendWithContext(ctx, message)
	logger.ExternalServiceResult("sendgrid", "Send", err)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

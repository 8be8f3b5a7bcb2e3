package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ailubes/veterans-orden-sub001/internal/domain"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendAdvancementNotification(ctx context.Context, email, name string, fromRole, toRole domain.MembershipRole) error {
	subject := fmt.Sprintf("Congratulations, you are now a %s", toRole)
	body := fmt.Sprintf("Hello %s,\n\nYour membership rank has advanced from %s to %s. New privileges are already active on your account.\n\nThank you for your service to the community.", name, fromRole, toRole)
	return s.send(email, name, subject, body)
}

func (s *emailService) SendRejectionNotification(ctx context.Context, email, name string, requestedRole domain.MembershipRole, reason string) error {
	subject := "Your rank advancement request was reviewed"
	body := fmt.Sprintf("Hello %s,\n\nYour request to advance to %s was not approved at this time.", name, requestedRole)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nYou can continue building your progress; eligible requests may be re-submitted automatically."
	return s.send(email, name, subject, body)
}

// NoopEmailService discards all notifications. Used by the cron binary and in
// tests where no SendGrid key is configured.
type NoopEmailService struct{}

func (NoopEmailService) SendAdvancementNotification(ctx context.Context, email, name string, fromRole, toRole domain.MembershipRole) error {
	return nil
}

func (NoopEmailService) SendRejectionNotification(ctx context.Context, email, name string, requestedRole domain.MembershipRole, reason string) error {
	return nil
}

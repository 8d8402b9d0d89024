package mailer

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers through the SendGrid transactional API.
type SendGridSender struct {
	apiKey    string
	fromEmail string
	logger    *log.Logger
}

// NewSendGridSender creates a SendGrid-backed sender.
func NewSendGridSender(apiKey, fromEmail string, logger *log.Logger) *SendGridSender {
	if fromEmail == "" {
		fromEmail = "outreach@leadforge.local"
	}
	return &SendGridSender{apiKey: apiKey, fromEmail: fromEmail, logger: logger}
}

// Provider returns the provider name.
func (s *SendGridSender) Provider() string { return "sendgrid" }

// Send delivers one email via the SendGrid API.
func (s *SendGridSender) Send(ctx context.Context, to, subject, body string) (*SendResult, error) {
	from := mail.NewEmail("", s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, body, body)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Printf("❌ SendGrid error: %v", err)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		s.logger.Printf("❌ SendGrid returned status %d: %s", response.StatusCode, response.Body)
		return nil, fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	s.logger.Printf("✅ Email sent to %s (SendGrid status: %d)", to, response.StatusCode)
	return &SendResult{Provider: s.Provider()}, nil
}

package mailer

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/leadforge/leadforge/pkg/settings"
	"gopkg.in/gomail.v2"
)

// SMTPSender delivers through an authenticated SMTP relay.
type SMTPSender struct {
	host   string
	port   int
	secure bool
	user   string
	pass   string
	logger *log.Logger
}

// NewSMTPSender creates an SMTP relay sender from delivery settings.
func NewSMTPSender(cfg *settings.DeliveryConfig, logger *log.Logger) *SMTPSender {
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil || port <= 0 {
		port = 587
	}

	secure, _ := strconv.ParseBool(cfg.SMTPSecure)

	return &SMTPSender{
		host:   cfg.SMTPHost,
		port:   port,
		secure: secure,
		user:   cfg.SMTPUser,
		pass:   cfg.SMTPPass,
		logger: logger,
	}
}

// Provider returns the provider name.
func (s *SMTPSender) Provider() string { return "smtp" }

// Send delivers one email over SMTP. gomail has no context support; the
// dial is bounded by the relay's own timeouts.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) (*SendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.user)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.user, s.pass)
	d.SSL = s.secure

	if err := d.DialAndSend(m); err != nil {
		s.logger.Printf("❌ SMTP error sending to %s: %v", to, err)
		return nil, fmt.Errorf("failed to send email via SMTP: %w", err)
	}

	s.logger.Printf("✅ Email sent to %s (SMTP relay %s)", to, s.host)
	return &SendResult{Provider: s.Provider()}, nil
}

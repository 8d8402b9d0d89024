package mailer

import (
	"context"
	"log"
	"testing"

	"github.com/leadforge/leadforge/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSettings(t *testing.T) {
	logger := log.Default()

	t.Run("SendGrid wins when API key is configured", func(t *testing.T) {
		sender := FromSettings(&settings.DeliveryConfig{
			SendGridAPIKey: "SG.test",
			SMTPHost:       "smtp.example.com",
			SMTPUser:       "user@example.com",
		}, logger)
		assert.Equal(t, "sendgrid", sender.Provider())
	})

	t.Run("SMTP next when relay credentials are configured", func(t *testing.T) {
		sender := FromSettings(&settings.DeliveryConfig{
			SMTPHost: "smtp.example.com",
			SMTPUser: "user@example.com",
			SMTPPass: "secret",
			SMTPPort: "465",
		}, logger)
		assert.Equal(t, "smtp", sender.Provider())
	})

	t.Run("Console fallback when nothing is configured", func(t *testing.T) {
		sender := FromSettings(&settings.DeliveryConfig{}, logger)
		assert.Equal(t, "console", sender.Provider())
	})

	t.Run("Nil config falls back to console", func(t *testing.T) {
		sender := FromSettings(nil, logger)
		assert.Equal(t, "console", sender.Provider())
	})

	t.Run("SMTP host without user is not enough", func(t *testing.T) {
		sender := FromSettings(&settings.DeliveryConfig{SMTPHost: "smtp.example.com"}, logger)
		assert.Equal(t, "console", sender.Provider())
	})
}

func TestConsoleSender(t *testing.T) {
	sender := NewConsoleSender(log.Default())

	result, err := sender.Send(context.Background(), "owner@example.com", "Hello", "Body")
	require.NoError(t, err)
	assert.True(t, result.Simulated)
	assert.Equal(t, "console", result.Provider)
}

func TestSMTPSenderConfig(t *testing.T) {
	t.Run("Invalid port falls back to 587", func(t *testing.T) {
		s := NewSMTPSender(&settings.DeliveryConfig{
			SMTPHost: "smtp.example.com",
			SMTPPort: "not-a-port",
			SMTPUser: "u",
		}, log.Default())
		assert.Equal(t, 587, s.port)
	})

	t.Run("Secure flag parsed", func(t *testing.T) {
		s := NewSMTPSender(&settings.DeliveryConfig{
			SMTPHost:   "smtp.example.com",
			SMTPPort:   "465",
			SMTPSecure: "true",
			SMTPUser:   "u",
		}, log.Default())
		assert.Equal(t, 465, s.port)
		assert.True(t, s.secure)
	})

	t.Run("Cancelled context aborts before dialing", func(t *testing.T) {
		s := NewSMTPSender(&settings.DeliveryConfig{
			SMTPHost: "smtp.example.com",
			SMTPPort: "587",
			SMTPUser: "u",
		}, log.Default())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Send(ctx, "to@example.com", "s", "b")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

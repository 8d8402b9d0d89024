package mailer

import (
	"context"
	"log"

	"github.com/leadforge/leadforge/pkg/settings"
)

// SendResult reports one delivery outcome.
type SendResult struct {
	Provider  string `json:"provider"`
	Simulated bool   `json:"simulated"`
}

// Sender delivers one outbound email. A returned error means the provider
// rejected the message or the network failed; callers treat it as a
// per-recipient failure, never a batch-fatal one.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) (*SendResult, error)
	Provider() string
}

// FromSettings picks the outbound provider by static precedence: the
// SendGrid API first when a key is configured, SMTP relay second, and a
// console no-op sender when neither is set. Evaluated per send so settings
// changes take effect without a restart.
func FromSettings(cfg *settings.DeliveryConfig, logger *log.Logger) Sender {
	if logger == nil {
		logger = log.Default()
	}

	if cfg != nil && cfg.SendGridAPIKey != "" {
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, logger)
	}
	if cfg != nil && cfg.SMTPHost != "" && cfg.SMTPUser != "" {
		return NewSMTPSender(cfg, logger)
	}
	return NewConsoleSender(logger)
}

package mailer

import (
	"context"
	"log"
)

// ConsoleSender is the no-provider fallback: every send is a simulated
// success logged to the console. Messages still get recorded upstream, so
// an operator can dry-run a whole campaign without credentials.
type ConsoleSender struct {
	logger *log.Logger
}

// NewConsoleSender creates the console fallback sender.
func NewConsoleSender(logger *log.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

// Provider returns the provider name.
func (s *ConsoleSender) Provider() string { return "console" }

// Send logs the email instead of delivering it.
func (s *ConsoleSender) Send(ctx context.Context, to, subject, body string) (*SendResult, error) {
	s.logger.Printf("📧 [EMAIL] %s", subject)
	s.logger.Printf("   To: %s", to)
	s.logger.Printf("   ⚠️  Email NOT sent (no delivery provider configured)")
	return &SendResult{Provider: s.Provider(), Simulated: true}, nil
}

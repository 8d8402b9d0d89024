package outreach

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/leadforge/leadforge/pkg/ai/llm"
	"github.com/leadforge/leadforge/pkg/mailer"
	"github.com/leadforge/leadforge/pkg/metrics"
	"github.com/leadforge/leadforge/pkg/models"
	"github.com/leadforge/leadforge/pkg/settings"
	"gorm.io/gorm"
)

var (
	// ErrLeadNotFound is returned when the lead does not exist.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrNoEmail is returned when a single-lead send targets a lead with
	// no known email address.
	ErrNoEmail = errors.New("lead has no email address")
)

// Service handles one-off outreach: a generated pitch or follow-up to a
// single lead, and the ad-hoc bulk variant. Unlike a campaign send, a
// single-lead generation failure surfaces directly to the caller.
type Service struct {
	db       *gorm.DB
	settings *settings.Service
	writer   llm.EmailWriter
	logger   *log.Logger
	metrics  *metrics.Metrics

	newSender func(*settings.DeliveryConfig) mailer.Sender
}

// SetMetrics attaches optional Prometheus counters for sends.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// NewService creates a new outreach service.
func NewService(db *gorm.DB, settingsSvc *settings.Service, writer llm.EmailWriter, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{
		db:       db,
		settings: settingsSvc,
		writer:   writer,
		logger:   logger,
	}
	s.newSender = func(cfg *settings.DeliveryConfig) mailer.Sender {
		return mailer.FromSettings(cfg, logger)
	}
	return s
}

// SendPitch generates and delivers a cold pitch to one lead.
func (s *Service) SendPitch(ctx context.Context, leadID uint) (*models.Message, error) {
	return s.send(ctx, leadID, models.IntentPitch)
}

// SendFollowUp generates and delivers a follow-up referencing the earlier
// outreach, and bumps the lead's follow-up counter.
func (s *Service) SendFollowUp(ctx context.Context, leadID uint) (*models.Message, error) {
	return s.send(ctx, leadID, models.IntentFollowUp)
}

func (s *Service) send(ctx context.Context, leadID uint, intent models.MessageIntent) (*models.Message, error) {
	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to fetch lead: %w", err)
	}

	to := lead.EmailAddress()
	if to == "" {
		return nil, ErrNoEmail
	}

	profile, err := s.settings.SenderProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sender profile: %w", err)
	}

	email, err := s.writer.WriteEmail(ctx, llm.PromptContext{
		Lead:   &lead,
		Sender: profile,
		Intent: intent,
	})
	if err != nil {
		return nil, err
	}

	deliveryCfg, err := s.settings.DeliveryConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery config: %w", err)
	}

	sender := s.newSender(deliveryCfg)
	if _, err := sender.Send(ctx, to, email.Subject, email.Body); err != nil {
		if s.metrics != nil {
			s.metrics.RecordEmailFailed(string(intent))
		}
		return nil, fmt.Errorf("failed to send email: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordEmailSent(sender.Provider(), string(intent))
	}

	message := models.Message{
		LeadID:    lead.ID,
		Direction: models.DirectionOutbound,
		Content:   models.OutboundContent(email.Subject, email.Body),
		Intent:    intent,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, fmt.Errorf("failed to record message: %w", err)
	}

	updates := map[string]interface{}{}
	if lead.Status.AdvancedBySend() {
		updates["status"] = models.LeadStatusEmailed
	}
	if intent == models.IntentFollowUp {
		updates["follow_up_count"] = gorm.Expr("follow_up_count + 1")
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&lead).Updates(updates).Error; err != nil {
			s.logger.Printf("⚠️  Failed to update lead %d after send: %v", lead.ID, err)
		}
	}

	s.logger.Printf("📧 Sent %s to %q via %s", intent, lead.Name, sender.Provider())
	return &message, nil
}

// BulkEmail sends a generated pitch to each lead. Per-lead failures are
// collected; the batch always runs to the end.
func (s *Service) BulkEmail(ctx context.Context, leadIDs []uint) (*models.BatchResult, error) {
	result := &models.BatchResult{Success: true, Errors: []string{}}

	for _, leadID := range leadIDs {
		if _, err := s.SendPitch(ctx, leadID); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", s.leadLabel(ctx, leadID), err))
			continue
		}
		result.Sent++
	}

	return result, nil
}

func (s *Service) leadLabel(ctx context.Context, leadID uint) string {
	var lead models.Lead
	if err := s.db.WithContext(ctx).Select("name").First(&lead, leadID).Error; err != nil || lead.Name == "" {
		return fmt.Sprintf("lead %d", leadID)
	}
	return lead.Name
}

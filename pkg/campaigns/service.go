package campaigns

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/leadforge/leadforge/pkg/ai/llm"
	"github.com/leadforge/leadforge/pkg/mailer"
	"github.com/leadforge/leadforge/pkg/metrics"
	"github.com/leadforge/leadforge/pkg/models"
	"github.com/leadforge/leadforge/pkg/settings"
	"github.com/leadforge/leadforge/pkg/templates"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCampaignNotFound is returned when the referenced campaign does not
// exist. It is fatal to the whole request, unlike per-recipient failures.
var ErrCampaignNotFound = errors.New("campaign not found")

const (
	// maxDripStep caps the configured drip delay per recipient. A typo'd
	// drip_delay_minutes must not park the send loop for hours.
	maxDripStep = 5 * time.Minute

	// bulkPreviewDelay is the fixed safety delay between recipients when
	// sending an approved preview batch in bulk mode.
	bulkPreviewDelay = 2 * time.Second
)

// Service is the campaign orchestrator: it owns the per-lead send loop,
// the CampaignLead state machine, pacing, and result aggregation.
// Recipients are processed strictly sequentially within one invocation;
// resumability comes from committing each recipient's status before moving
// to the next one.
type Service struct {
	db       *gorm.DB
	settings *settings.Service
	writer   llm.EmailWriter
	logger   *log.Logger
	metrics  *metrics.Metrics

	// seams for tests
	sleep     func(time.Duration)
	newSender func(*settings.DeliveryConfig) mailer.Sender
}

// SetMetrics attaches the Prometheus registry. Optional; a nil metrics
// receiver disables business counters.
func (s *Service) SetMetrics(m *metrics.Metrics) { s.metrics = m }

// NewService creates a new campaign service.
func NewService(db *gorm.DB, settingsSvc *settings.Service, writer llm.EmailWriter, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{
		db:       db,
		settings: settingsSvc,
		writer:   writer,
		logger:   logger,
		sleep:    time.Sleep,
	}
	s.newSender = func(cfg *settings.DeliveryConfig) mailer.Sender {
		return mailer.FromSettings(cfg, logger)
	}
	return s
}

// CreateCampaignRequest is the payload for creating a campaign.
type CreateCampaignRequest struct {
	Name             string `json:"name" validate:"required,max=200"`
	SubjectTemplate  string `json:"subject_template"`
	BodyTemplate     string `json:"body_template"`
	SendMode         string `json:"send_mode" validate:"omitempty,oneof=bulk drip"`
	DripDelayMinutes int    `json:"drip_delay_minutes" validate:"min=0"`
}

// Create creates a new campaign in draft status.
func (s *Service) Create(ctx context.Context, req CreateCampaignRequest) (*models.Campaign, error) {
	mode := models.SendMode(req.SendMode)
	if mode == "" {
		mode = models.SendModeBulk
	}

	campaign := models.Campaign{
		Name:             req.Name,
		SubjectTemplate:  req.SubjectTemplate,
		BodyTemplate:     req.BodyTemplate,
		SendMode:         mode,
		DripDelayMinutes: req.DripDelayMinutes,
		Status:           models.CampaignStatusDraft,
	}
	if err := s.db.WithContext(ctx).Create(&campaign).Error; err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	return &campaign, nil
}

// List returns all campaigns, newest first.
func (s *Service) List(ctx context.Context) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// Get returns one campaign by id.
func (s *Service) Get(ctx context.Context, campaignID uint) (*models.Campaign, error) {
	return s.loadCampaign(ctx, campaignID)
}

// AddLeads attaches leads to a campaign as pending recipients. The
// (campaign, lead) pair is unique, so re-adding an existing lead is a
// no-op; the returned count covers newly attached rows only. Lead ids
// that don't exist are skipped silently.
func (s *Service) AddLeads(ctx context.Context, campaignID uint, leadIDs []uint) (int, error) {
	if _, err := s.loadCampaign(ctx, campaignID); err != nil {
		return 0, err
	}
	if len(leadIDs) == 0 {
		return 0, nil
	}

	var existing []uint
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).
		Where("id IN ?", leadIDs).Pluck("id", &existing).Error; err != nil {
		return 0, fmt.Errorf("failed to verify leads: %w", err)
	}
	if len(existing) == 0 {
		return 0, nil
	}

	rows := make([]models.CampaignLead, 0, len(existing))
	for _, leadID := range existing {
		rows = append(rows, models.CampaignLead{
			CampaignID: campaignID,
			LeadID:     leadID,
			Status:     models.CampaignLeadPending,
		})
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to add leads to campaign: %w", result.Error)
	}

	return int(result.RowsAffected), nil
}

// RemoveLead detaches a lead from a campaign. Removing an absent pair is
// not an error.
func (s *Service) RemoveLead(ctx context.Context, campaignID, leadID uint) error {
	err := s.db.WithContext(ctx).
		Where("campaign_id = ? AND lead_id = ?", campaignID, leadID).
		Delete(&models.CampaignLead{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove lead from campaign: %w", err)
	}
	return nil
}

// Send runs the direct send flow: every pending recipient gets content
// resolved (template or generated), delivered, and recorded, highest lead
// score first. Per-recipient failures never abort the batch; the summary
// carries one error string per failed recipient.
func (s *Service) Send(ctx context.Context, campaignID uint) (*models.BatchResult, error) {
	campaign, err := s.loadCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	rows, err := s.loadPending(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	result := &models.BatchResult{Success: true, Errors: []string{}}
	if len(rows) == 0 {
		return result, nil
	}

	if err := s.activate(ctx, campaign); err != nil {
		return nil, err
	}

	sender, profile, err := s.prepareDelivery(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("📨 Campaign %q: sending to %d pending leads (%s mode)",
		campaign.Name, len(rows), campaign.SendMode)

	for i := range rows {
		row := &rows[i]
		lead := row.Lead
		if lead == nil {
			s.failRecipient(ctx, row, nil, result, errors.New("lead record missing"))
			continue
		}

		subject, body, err := s.resolveContent(ctx, campaign, lead, profile)
		if err != nil {
			s.failRecipient(ctx, row, lead, result, err)
		} else {
			s.deliverAndRecord(ctx, sender, row, lead, subject, body, result)
		}

		// Drip pacing: suspend before the next recipient, never after the
		// last. Bulk direct sends run back to back.
		if campaign.SendMode == models.SendModeDrip && i < len(rows)-1 {
			s.sleep(dripStep(campaign.DripDelayMinutes))
		}
	}

	if err := s.refreshRollup(ctx, campaign.ID); err != nil {
		s.logger.Printf("⚠️  Failed to refresh rollup for campaign %d: %v", campaign.ID, err)
	}

	s.logger.Printf("✅ Campaign %q: sent=%d failed=%d", campaign.Name, result.Sent, result.Failed)
	return result, nil
}

// resolveContent produces the subject and body for one recipient. When
// both templates are set the interpolator runs and the generator is never
// invoked; otherwise every email is generated from the lead's facts.
func (s *Service) resolveContent(ctx context.Context, campaign *models.Campaign, lead *models.Lead, profile *settings.SenderProfile) (string, string, error) {
	if campaign.UsesTemplates() {
		subject := templates.Interpolate(campaign.SubjectTemplate, lead, profile)
		body := templates.Interpolate(campaign.BodyTemplate, lead, profile)
		return subject, body, nil
	}

	email, err := s.writer.WriteEmail(ctx, llm.PromptContext{
		Lead:   lead,
		Sender: profile,
		Intent: models.IntentCampaign,
	})
	if err != nil {
		return "", "", err
	}
	return email.Subject, email.Body, nil
}

// deliverAndRecord runs steps b-e of the per-recipient sequence: attempt
// delivery (skipped when the lead has no email address), append the
// Message row, and advance both status machines. A delivery error marks
// the recipient failed but the Message row is still written.
func (s *Service) deliverAndRecord(ctx context.Context, sender mailer.Sender, row *models.CampaignLead, lead *models.Lead, subject, body string, result *models.BatchResult) {
	var deliveryErr error
	if to := lead.EmailAddress(); to != "" {
		_, deliveryErr = sender.Send(ctx, to, subject, body)
	} else {
		s.logger.Printf("⚠️  Lead %q has no email address, logging message without delivery", lead.Name)
	}

	s.recordMessage(ctx, lead.ID, subject, body, models.IntentCampaign)

	if deliveryErr != nil {
		s.failRecipient(ctx, row, lead, result, deliveryErr)
		return
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(row).
		Updates(map[string]interface{}{
			"status":  models.CampaignLeadSent,
			"sent_at": &now,
		}).Error; err != nil {
		s.failRecipient(ctx, row, lead, result, fmt.Errorf("failed to update recipient status: %w", err))
		return
	}

	s.advanceLeadStatus(ctx, lead)
	result.Sent++
	if s.metrics != nil {
		s.metrics.RecordEmailSent(sender.Provider(), string(models.IntentCampaign))
	}
}

// failRecipient converts any per-recipient error into a failed status plus
// one entry in the result's error list. The loop always continues.
func (s *Service) failRecipient(ctx context.Context, row *models.CampaignLead, lead *models.Lead, result *models.BatchResult, cause error) {
	name := "unknown lead"
	if lead != nil {
		name = lead.Name
	}

	s.logger.Printf("❌ Send to %q failed: %v", name, cause)

	if err := s.db.WithContext(ctx).Model(row).
		Update("status", models.CampaignLeadFailed).Error; err != nil {
		s.logger.Printf("⚠️  Failed to mark recipient %d failed: %v", row.ID, err)
	}

	result.Failed++
	result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, cause))
	if s.metrics != nil {
		s.metrics.RecordEmailFailed(string(models.IntentCampaign))
	}
}

// advanceLeadStatus pushes the lead to "emailed" after a successful send.
// Leads that already replied, showed interest, booked, or were lost keep
// their status; a campaign send must never regress real engagement.
func (s *Service) advanceLeadStatus(ctx context.Context, lead *models.Lead) {
	if lead == nil || !lead.Status.AdvancedBySend() {
		return
	}
	if err := s.db.WithContext(ctx).Model(lead).
		Update("status", models.LeadStatusEmailed).Error; err != nil {
		s.logger.Printf("⚠️  Failed to advance lead %d status: %v", lead.ID, err)
	}
}

func (s *Service) recordMessage(ctx context.Context, leadID uint, subject, body string, intent models.MessageIntent) {
	message := models.Message{
		LeadID:    leadID,
		Direction: models.DirectionOutbound,
		Content:   models.OutboundContent(subject, body),
		Intent:    intent,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		s.logger.Printf("⚠️  Failed to record message for lead %d: %v", leadID, err)
	}
}

// activate moves a campaign to active on the first send attempt.
// Idempotent for campaigns already active.
func (s *Service) activate(ctx context.Context, campaign *models.Campaign) error {
	if campaign.Status == models.CampaignStatusActive {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(campaign).
		Update("status", models.CampaignStatusActive).Error; err != nil {
		return fmt.Errorf("failed to activate campaign: %w", err)
	}
	return nil
}

// refreshRollup recomputes the cached counters and completes the campaign
// once no pending recipients remain.
func (s *Service) refreshRollup(ctx context.Context, campaignID uint) error {
	var sent, pending int64

	db := s.db.WithContext(ctx).Model(&models.CampaignLead{})
	if err := db.Where("campaign_id = ? AND status = ?", campaignID, models.CampaignLeadSent).
		Count(&sent).Error; err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&models.CampaignLead{}).
		Where("campaign_id = ? AND status = ?", campaignID, models.CampaignLeadPending).
		Count(&pending).Error; err != nil {
		return err
	}

	updates := map[string]interface{}{"total_sent": int(sent)}
	if pending == 0 {
		updates["status"] = models.CampaignStatusCompleted
	}

	res := s.db.WithContext(ctx).Model(&models.Campaign{}).
		Where("id = ?", campaignID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}

	if pending == 0 && res.RowsAffected > 0 && s.metrics != nil {
		s.metrics.RecordCampaignCompleted()
	}
	return nil
}

// ReconcileRollups recomputes the cached counters for every active
// campaign. The hourly job runs this to repair rollups after a crash
// mid-send; sends commit recipient state row by row, so the campaign
// counters can lag behind.
func (s *Service) ReconcileRollups(ctx context.Context) (int, error) {
	var active []models.Campaign
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.CampaignStatusActive).
		Find(&active).Error; err != nil {
		return 0, fmt.Errorf("failed to load active campaigns: %w", err)
	}

	reconciled := 0
	for i := range active {
		if err := s.refreshRollup(ctx, active[i].ID); err != nil {
			s.logger.Printf("⚠️  Failed to reconcile campaign %d: %v", active[i].ID, err)
			continue
		}
		reconciled++
	}
	return reconciled, nil
}

func (s *Service) loadCampaign(ctx context.Context, campaignID uint) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.db.WithContext(ctx).First(&campaign, campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to fetch campaign: %w", err)
	}
	return &campaign, nil
}

// loadPending returns the pending recipients with their leads, ordered by
// descending lead score so the highest-value leads are contacted first.
// Ties keep insertion order.
func (s *Service) loadPending(ctx context.Context, campaignID uint) ([]models.CampaignLead, error) {
	var rows []models.CampaignLead
	err := s.db.WithContext(ctx).
		Joins("Lead").
		Where("campaign_leads.campaign_id = ? AND campaign_leads.status = ?",
			campaignID, models.CampaignLeadPending).
		Order(`"Lead".lead_score DESC, campaign_leads.id ASC`).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending recipients: %w", err)
	}
	return rows, nil
}

// prepareDelivery resolves the sender profile and the delivery provider
// chain from the settings store for one send run.
func (s *Service) prepareDelivery(ctx context.Context) (mailer.Sender, *settings.SenderProfile, error) {
	profile, err := s.settings.SenderProfile(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sender profile: %w", err)
	}
	deliveryCfg, err := s.settings.DeliveryConfig(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load delivery config: %w", err)
	}
	return s.newSender(deliveryCfg), profile, nil
}

// dripStep converts the configured drip delay to the actual sleep,
// hard-capped at 5 minutes per step.
func dripStep(minutes int) time.Duration {
	if minutes <= 0 {
		return 0
	}
	d := time.Duration(minutes) * time.Minute
	if d > maxDripStep {
		return maxDripStep
	}
	return d
}

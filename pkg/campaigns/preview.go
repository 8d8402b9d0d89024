package campaigns

import (
	"context"
	"fmt"

	"github.com/leadforge/leadforge/pkg/mailer"
	"github.com/leadforge/leadforge/pkg/models"
)

// EmailPreview is one reviewable draft in the preview-then-send flow. It
// is never persisted; the client holds the batch, edits it, and posts it
// back for sending.
type EmailPreview struct {
	LeadID       uint   `json:"lead_id"`
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	Industry     string `json:"industry"`
	LeadScore    int    `json:"lead_score"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	Selected     bool   `json:"selected"`
}

const (
	failedPreviewSubject = "[generation failed] Draft for review"
	failedPreviewBody    = "Email generation failed for this lead. Edit this draft before sending, or deselect it."
)

// Preview resolves content for every pending recipient without sending
// anything. A recipient whose generation fails still gets a preview, with
// a clearly marked placeholder subject and body so the operator can edit
// or deselect it. All previews start selected.
func (s *Service) Preview(ctx context.Context, campaignID uint) ([]EmailPreview, error) {
	campaign, err := s.loadCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	rows, err := s.loadPending(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	profile, err := s.settings.SenderProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sender profile: %w", err)
	}

	previews := make([]EmailPreview, 0, len(rows))
	for i := range rows {
		lead := rows[i].Lead
		if lead == nil {
			continue
		}

		subject, body, err := s.resolveContent(ctx, campaign, lead, profile)
		if err != nil {
			s.logger.Printf("⚠️  Preview generation failed for lead %q: %v", lead.Name, err)
			subject = failedPreviewSubject
			body = failedPreviewBody
		}

		previews = append(previews, EmailPreview{
			LeadID:       lead.ID,
			BusinessName: lead.Name,
			Email:        lead.EmailAddress(),
			Industry:     lead.Industry,
			LeadScore:    lead.LeadScore,
			Subject:      subject,
			Body:         body,
			Selected:     true,
		})
	}

	return previews, nil
}

// SendPreviews delivers a reviewed preview batch. Only selected previews
// are sent, and the subject and body are used verbatim so operator edits
// survive. Deselected previews leave their recipients pending. Pacing
// follows the campaign's send mode, with a short fixed delay between
// recipients even in bulk mode.
func (s *Service) SendPreviews(ctx context.Context, campaignID uint, previews []EmailPreview) (*models.BatchResult, error) {
	campaign, err := s.loadCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	selected := make([]EmailPreview, 0, len(previews))
	for _, p := range previews {
		if p.Selected {
			selected = append(selected, p)
		}
	}

	result := &models.BatchResult{Success: true, Errors: []string{}}
	if len(selected) == 0 {
		return result, nil
	}

	if err := s.activate(ctx, campaign); err != nil {
		return nil, err
	}

	sender, _, err := s.prepareDelivery(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("📨 Campaign %q: sending %d approved previews", campaign.Name, len(selected))

	for i, preview := range selected {
		s.sendPreview(ctx, sender, campaign, preview, result)

		if i < len(selected)-1 {
			if campaign.SendMode == models.SendModeDrip {
				s.sleep(dripStep(campaign.DripDelayMinutes))
			} else {
				s.sleep(bulkPreviewDelay)
			}
		}
	}

	if err := s.refreshRollup(ctx, campaign.ID); err != nil {
		s.logger.Printf("⚠️  Failed to refresh rollup for campaign %d: %v", campaign.ID, err)
	}

	s.logger.Printf("✅ Campaign %q: sent=%d failed=%d", campaign.Name, result.Sent, result.Failed)
	return result, nil
}

// sendPreview runs the per-recipient delivery sequence for one approved
// preview. The recipient must still be attached to the campaign.
func (s *Service) sendPreview(ctx context.Context, sender mailer.Sender, campaign *models.Campaign, preview EmailPreview, result *models.BatchResult) {
	var row models.CampaignLead
	err := s.db.WithContext(ctx).
		Where("campaign_id = ? AND lead_id = ?", campaign.ID, preview.LeadID).
		First(&row).Error
	if err != nil {
		result.Failed++
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: not attached to campaign", previewName(preview)))
		return
	}

	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, preview.LeadID).Error; err != nil {
		s.failRecipient(ctx, &row, nil, result, fmt.Errorf("failed to load lead: %w", err))
		return
	}

	s.deliverAndRecord(ctx, sender, &row, &lead, preview.Subject, preview.Body, result)
}

func previewName(p EmailPreview) string {
	if p.BusinessName != "" {
		return p.BusinessName
	}
	return fmt.Sprintf("lead %d", p.LeadID)
}

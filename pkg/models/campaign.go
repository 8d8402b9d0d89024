package models

import "time"

// CampaignStatus is the lifecycle status of a campaign.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// SendMode controls inter-recipient pacing during a campaign send.
type SendMode string

const (
	SendModeBulk SendMode = "bulk"
	SendModeDrip SendMode = "drip"
)

// Campaign is a named outreach batch addressed to a set of leads.
// When both templates are empty the campaign runs in AI-generation mode.
type Campaign struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Name             string         `json:"name" gorm:"not null"`
	SubjectTemplate  string         `json:"subject_template"`
	BodyTemplate     string         `json:"body_template"`
	SendMode         SendMode       `json:"send_mode" gorm:"type:varchar(10);default:bulk"`
	DripDelayMinutes int            `json:"drip_delay_minutes" gorm:"default:0"`
	Status           CampaignStatus `json:"status" gorm:"type:varchar(20);default:draft;index"`
	TotalSent        int            `json:"total_sent" gorm:"default:0"`

	Leads []CampaignLead `json:"leads,omitempty" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UsesTemplates reports whether the campaign resolves content through the
// interpolator. Both templates must be non-empty; otherwise every email is
// generated per lead.
func (c *Campaign) UsesTemplates() bool {
	return c.SubjectTemplate != "" && c.BodyTemplate != ""
}

// CampaignLeadStatus is the per-recipient state within one campaign.
type CampaignLeadStatus string

const (
	CampaignLeadPending CampaignLeadStatus = "pending"
	CampaignLeadSent    CampaignLeadStatus = "sent"
	CampaignLeadOpened  CampaignLeadStatus = "opened"
	CampaignLeadReplied CampaignLeadStatus = "replied"
	CampaignLeadFailed  CampaignLeadStatus = "failed"
)

// CampaignLead is the join row tracking one lead's progress within one
// campaign. The (campaign_id, lead_id) pair is unique; re-adding a lead to
// a campaign is a no-op.
type CampaignLead struct {
	ID         uint               `json:"id" gorm:"primaryKey"`
	CampaignID uint               `json:"campaign_id" gorm:"not null;uniqueIndex:idx_campaign_lead"`
	LeadID     uint               `json:"lead_id" gorm:"not null;uniqueIndex:idx_campaign_lead"`
	Status     CampaignLeadStatus `json:"status" gorm:"type:varchar(10);default:pending;index"`
	SentAt     *time.Time         `json:"sent_at"`
	OpenedAt   *time.Time         `json:"opened_at"`

	Lead *Lead `json:"lead,omitempty" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package models

import "time"

// MessageDirection distinguishes outbound sends from inbound replies.
type MessageDirection string

const (
	DirectionOutbound MessageDirection = "outbound"
	DirectionInbound  MessageDirection = "inbound"
)

// MessageIntent tags what kind of communication a message is.
type MessageIntent string

const (
	IntentPitch    MessageIntent = "pitch"
	IntentFollowUp MessageIntent = "follow_up"
	IntentCampaign MessageIntent = "campaign"
)

// Message is an append-only record of one communication with a lead.
// Messages are never mutated; they are only deleted by cascading with
// their lead.
type Message struct {
	ID        uint             `json:"id" gorm:"primaryKey"`
	LeadID    uint             `json:"lead_id" gorm:"not null;index"`
	Direction MessageDirection `json:"direction" gorm:"type:varchar(10);not null"`
	Content   string           `json:"content" gorm:"not null"`
	Intent    MessageIntent    `json:"intent" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time        `json:"created_at" gorm:"index"`
}

// OutboundContent joins a subject and body into the single text blob
// stored for outbound messages.
func OutboundContent(subject, body string) string {
	return subject + "\n\n" + body
}

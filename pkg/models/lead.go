package models

import "time"

// LeadStatus is the lifecycle status of a lead.
type LeadStatus string

const (
	LeadStatusNew        LeadStatus = "new"
	LeadStatusEnriched   LeadStatus = "enriched"
	LeadStatusEmailed    LeadStatus = "emailed"
	LeadStatusReplied    LeadStatus = "replied"
	LeadStatusInterested LeadStatus = "interested"
	LeadStatusBooked     LeadStatus = "booked"
	LeadStatusLost       LeadStatus = "lost"
)

// leadStatusRank orders statuses by how far along the pipeline they are.
// Statuses past "emailed" represent real prospect engagement and must not
// be regressed by an automated send.
var leadStatusRank = map[LeadStatus]int{
	LeadStatusNew:        0,
	LeadStatusEnriched:   1,
	LeadStatusEmailed:    2,
	LeadStatusReplied:    3,
	LeadStatusInterested: 4,
	LeadStatusBooked:     5,
	LeadStatusLost:       5,
}

// AdvancedBySend reports whether a successful outbound send may move the
// lead to "emailed". Leads that already replied, showed interest, booked,
// or were marked lost keep their status.
func (s LeadStatus) AdvancedBySend() bool {
	return leadStatusRank[s] < leadStatusRank[LeadStatusReplied]
}

// Facts holds the structured enrichment output for a lead. All fields are
// optional; Merge overwrites field by field so repeated enrichment runs
// refine rather than reset the profile.
type Facts struct {
	Services      []string `json:"services,omitempty"`
	PainPoints    []string `json:"pain_points,omitempty"`
	Tone          string   `json:"tone,omitempty"`
	CompanySize   string   `json:"company_size,omitempty"`
	TechSavviness string   `json:"tech_savviness,omitempty"`
	Email         string   `json:"email,omitempty"`
	Phone         string   `json:"phone,omitempty"`
}

// Merge applies non-empty fields from other on top of f, key by key.
// Empty fields in other never clear existing data.
func (f Facts) Merge(other Facts) Facts {
	if len(other.Services) > 0 {
		f.Services = other.Services
	}
	if len(other.PainPoints) > 0 {
		f.PainPoints = other.PainPoints
	}
	if other.Tone != "" {
		f.Tone = other.Tone
	}
	if other.CompanySize != "" {
		f.CompanySize = other.CompanySize
	}
	if other.TechSavviness != "" {
		f.TechSavviness = other.TechSavviness
	}
	if other.Email != "" {
		f.Email = other.Email
	}
	if other.Phone != "" {
		f.Phone = other.Phone
	}
	return f
}

// Lead represents a prospective customer business.
type Lead struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null;index"`
	Website     string  `json:"website"`
	Industry    string  `json:"industry" gorm:"index"`
	Location    string  `json:"location"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`

	// Contact info, nullable until enrichment fills it in
	Email *string `json:"email" gorm:"index"`
	Phone *string `json:"phone"`

	Facts Facts `json:"facts" gorm:"serializer:json"`

	Status        LeadStatus `json:"status" gorm:"type:varchar(20);default:new;index"`
	LeadScore     int        `json:"lead_score" gorm:"default:0;index"`
	FollowUpCount int        `json:"follow_up_count" gorm:"default:0"`

	Messages []Message `json:"messages,omitempty" gorm:"constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmailAddress returns the best known email for the lead: the contact
// field first, the enrichment facts as fallback.
func (l *Lead) EmailAddress() string {
	if l.Email != nil && *l.Email != "" {
		return *l.Email
	}
	return l.Facts.Email
}

// PhoneNumber returns the best known phone number for the lead.
func (l *Lead) PhoneNumber() string {
	if l.Phone != nil && *l.Phone != "" {
		return *l.Phone
	}
	return l.Facts.Phone
}

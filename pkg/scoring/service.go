package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/leadforge/leadforge/pkg/models"
	"gorm.io/gorm"
)

// ErrLeadNotFound is returned when the lead does not exist.
var ErrLeadNotFound = errors.New("lead not found")

// Service persists recomputed lead scores.
type Service struct {
	db *gorm.DB
}

// NewService creates a new scoring service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ScoreResponse represents a lead's calculated score.
type ScoreResponse struct {
	LeadID    uint           `json:"lead_id"`
	LeadName  string         `json:"lead_name"`
	Score     int            `json:"score"`
	MaxScore  int            `json:"max_score"`
	Breakdown map[string]int `json:"breakdown"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// UpdateLeadScore recomputes and saves the score for one lead.
func (s *Service) UpdateLeadScore(ctx context.Context, leadID uint) (*ScoreResponse, error) {
	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to fetch lead: %w", err)
	}

	score := Score(&lead)
	if err := s.db.WithContext(ctx).Model(&lead).Update("lead_score", score).Error; err != nil {
		return nil, fmt.Errorf("failed to update lead score: %w", err)
	}

	return &ScoreResponse{
		LeadID:    lead.ID,
		LeadName:  lead.Name,
		Score:     score,
		MaxScore:  MaxScore,
		Breakdown: Breakdown(&lead),
		UpdatedAt: time.Now(),
	}, nil
}

// RescoreAll recomputes scores for up to limit leads. Used by the nightly
// job; per-lead failures are skipped so one bad row never stops the sweep.
func (s *Service) RescoreAll(ctx context.Context, limit int) (int, error) {
	if limit <= 0 || limit > 1000 {
		limit = 500
	}

	var leads []models.Lead
	if err := s.db.WithContext(ctx).Limit(limit).Find(&leads).Error; err != nil {
		return 0, fmt.Errorf("failed to fetch leads: %w", err)
	}

	updated := 0
	for i := range leads {
		score := Score(&leads[i])
		if score == leads[i].LeadScore {
			continue
		}
		if err := s.db.WithContext(ctx).Model(&leads[i]).Update("lead_score", score).Error; err != nil {
			continue
		}
		updated++
	}

	return updated, nil
}

package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leadforge/leadforge/pkg/models"
	"github.com/leadforge/leadforge/pkg/scoring"
	"gorm.io/gorm"
)

// ErrLeadNotFound is returned when the lead does not exist.
var ErrLeadNotFound = errors.New("lead not found")

// SearchRequest holds filters and pagination for lead listing.
type SearchRequest struct {
	Industry string `query:"industry"`
	Status   string `query:"status"`
	Search   string `query:"search"`
	HasEmail *bool  `query:"has_email"`
	MinScore int    `query:"min_score"`
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
}

// ListResponse is one page of leads.
type ListResponse struct {
	Data       []models.Lead         `json:"data"`
	Pagination models.PaginationInfo `json:"pagination"`
}

// CreateLeadRequest is the payload for creating a lead by hand.
type CreateLeadRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Website     string  `json:"website"`
	Industry    string  `json:"industry"`
	Location    string  `json:"location"`
	Rating      float64 `json:"rating" validate:"min=0,max=5"`
	ReviewCount int     `json:"review_count" validate:"min=0"`
	Email       string  `json:"email" validate:"omitempty,email"`
	Phone       string  `json:"phone"`
}

// UpdateLeadRequest carries optional field updates; nil fields are left
// unchanged.
type UpdateLeadRequest struct {
	Name     *string  `json:"name" validate:"omitempty,max=200"`
	Website  *string  `json:"website"`
	Industry *string  `json:"industry"`
	Location *string  `json:"location"`
	Rating   *float64 `json:"rating" validate:"omitempty,min=0,max=5"`
	Email    *string  `json:"email" validate:"omitempty,email"`
	Phone    *string  `json:"phone"`
	Status   *string  `json:"status"`
}

var validStatuses = map[models.LeadStatus]bool{
	models.LeadStatusNew:        true,
	models.LeadStatusEnriched:   true,
	models.LeadStatusEmailed:    true,
	models.LeadStatusReplied:    true,
	models.LeadStatusInterested: true,
	models.LeadStatusBooked:     true,
	models.LeadStatusLost:       true,
}

// Service handles lead CRUD and search.
type Service struct {
	db *gorm.DB
}

// NewService creates a new lead service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Search lists leads with filters and pagination, highest score first.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*ListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 50
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	query := s.db.WithContext(ctx).Model(&models.Lead{})

	if req.Industry != "" {
		query = query.Where("industry = ?", req.Industry)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Search != "" {
		query = query.Where("name LIKE ?", "%"+strings.TrimSpace(req.Search)+"%")
	}
	if req.HasEmail != nil && *req.HasEmail {
		query = query.Where("email IS NOT NULL AND email != ''")
	}
	if req.MinScore > 0 {
		query = query.Where("lead_score >= ?", req.MinScore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))

	var leads []models.Lead
	if err := query.
		Order("lead_score DESC, created_at DESC").
		Limit(req.Limit).
		Offset(offset).
		Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}

	return &ListResponse{
		Data: leads,
		Pagination: models.PaginationInfo{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// GetByID retrieves a single lead with its message history.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC")
		}).
		First(&lead, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

// Create adds a lead and scores it immediately.
func (s *Service) Create(ctx context.Context, req CreateLeadRequest) (*models.Lead, error) {
	lead := models.Lead{
		Name:        req.Name,
		Website:     req.Website,
		Industry:    req.Industry,
		Location:    req.Location,
		Rating:      req.Rating,
		ReviewCount: req.ReviewCount,
		Status:      models.LeadStatusNew,
	}
	if req.Email != "" {
		lead.Email = &req.Email
	}
	if req.Phone != "" {
		lead.Phone = &req.Phone
	}
	lead.LeadScore = scoring.Score(&lead)

	if err := s.db.WithContext(ctx).Create(&lead).Error; err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return &lead, nil
}

// Update applies partial field updates and rescores. Manual status changes
// are allowed in any direction; only automated sends are guarded.
func (s *Service) Update(ctx context.Context, id uint, req UpdateLeadRequest) (*models.Lead, error) {
	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.Industry != nil {
		updates["industry"] = *req.Industry
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Rating != nil {
		updates["rating"] = *req.Rating
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Status != nil {
		status := models.LeadStatus(*req.Status)
		if !validStatuses[status] {
			return nil, fmt.Errorf("invalid status: %s", *req.Status)
		}
		updates["status"] = status
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&lead).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update lead: %w", err)
		}
	}

	var updated models.Lead
	if err := s.db.WithContext(ctx).First(&updated, id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload lead: %w", err)
	}

	// Contact fields feed the score.
	score := scoring.Score(&updated)
	if score != updated.LeadScore {
		if err := s.db.WithContext(ctx).Model(&updated).Update("lead_score", score).Error; err != nil {
			return nil, fmt.Errorf("failed to rescore lead: %w", err)
		}
		updated.LeadScore = score
	}

	return &updated, nil
}

// Delete removes a lead; messages and campaign attachments cascade.
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Lead{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete lead: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLeadNotFound
	}
	// Child rows are cleaned up explicitly; sqlite does not enforce the
	// cascade constraints without a pragma.
	if err := s.db.WithContext(ctx).Where("lead_id = ?", id).Delete(&models.Message{}).Error; err != nil {
		return fmt.Errorf("failed to delete lead messages: %w", err)
	}
	if err := s.db.WithContext(ctx).Where("lead_id = ?", id).Delete(&models.CampaignLead{}).Error; err != nil {
		return fmt.Errorf("failed to detach lead from campaigns: %w", err)
	}
	return nil
}

// RecordReply appends an inbound message and moves the lead to replied
// unless it is already further along.
func (s *Service) RecordReply(ctx context.Context, id uint, content string) (*models.Message, error) {
	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	message := models.Message{
		LeadID:    lead.ID,
		Direction: models.DirectionInbound,
		Content:   content,
	}
	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, fmt.Errorf("failed to record reply: %w", err)
	}

	if lead.Status.AdvancedBySend() {
		if err := s.db.WithContext(ctx).Model(&lead).
			Update("status", models.LeadStatusReplied).Error; err != nil {
			return nil, fmt.Errorf("failed to update lead status: %w", err)
		}
	}

	// Replies on the lead also flip campaign recipient rows.
	if err := s.db.WithContext(ctx).Model(&models.CampaignLead{}).
		Where("lead_id = ? AND status = ?", lead.ID, models.CampaignLeadSent).
		Update("status", models.CampaignLeadReplied).Error; err != nil {
		return nil, fmt.Errorf("failed to update campaign recipients: %w", err)
	}

	return &message, nil
}

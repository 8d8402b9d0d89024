package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/nyaruka/phonenumbers"

	"github.com/leadforge/leadforge/pkg/ai/llm"
	"github.com/leadforge/leadforge/pkg/metrics"
	"github.com/leadforge/leadforge/pkg/models"
	"github.com/leadforge/leadforge/pkg/scoring"
	"gorm.io/gorm"
)

var (
	// ErrLeadNotFound is returned when the lead does not exist.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrNoWebsite is returned when a lead has no website to enrich from.
	ErrNoWebsite = errors.New("lead has no website")
)

// BulkResult summarizes a bulk enrichment run.
type BulkResult struct {
	TotalLeads   int             `json:"total_leads"`
	SuccessCount int             `json:"success_count"`
	FailureCount int             `json:"failure_count"`
	Errors       map[uint]string `json:"errors"`
}

// Stats reports enrichment coverage across the lead database.
type Stats struct {
	TotalLeads      int64   `json:"total_leads"`
	EnrichedLeads   int64   `json:"enriched_leads"`
	UnenrichedLeads int64   `json:"unenriched_leads"`
	EnrichmentRate  float64 `json:"enrichment_rate"`
}

// Service runs the enrichment pipeline: fetch the lead's website, extract
// structured facts with the LLM, merge them into the lead's profile, and
// rescore.
type Service struct {
	db        *gorm.DB
	fetcher   WebsiteFetcher
	extractor llm.FactsExtractor
	scoring   *scoring.Service
	logger    *log.Logger
	metrics   *metrics.Metrics

	// defaultRegion biases phone number parsing for numbers without a
	// country prefix.
	defaultRegion string
}

// SetMetrics attaches optional Prometheus counters for enrichment runs.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// NewService creates a new enrichment service.
func NewService(db *gorm.DB, fetcher WebsiteFetcher, extractor llm.FactsExtractor, scoringSvc *scoring.Service, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		db:            db,
		fetcher:       fetcher,
		extractor:     extractor,
		scoring:       scoringSvc,
		logger:        logger,
		defaultRegion: "US",
	}
}

// EnrichLead runs the full pipeline for one lead and returns the updated
// record. Repeated runs refine the profile; existing facts are only
// overwritten by newly extracted non-empty values.
func (s *Service) EnrichLead(ctx context.Context, leadID uint) (*models.Lead, error) {
	lead, err := s.enrich(ctx, leadID)
	if s.metrics != nil {
		s.metrics.RecordLeadEnriched(err == nil)
	}
	return lead, err
}

func (s *Service) enrich(ctx context.Context, leadID uint) (*models.Lead, error) {
	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to fetch lead: %w", err)
	}

	if lead.Website == "" {
		return nil, ErrNoWebsite
	}

	s.logger.Printf("ℹ️  Enriching lead %q from %s", lead.Name, lead.Website)

	text, err := s.fetcher.FetchText(ctx, lead.Website)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch website: %w", err)
	}

	extracted, err := s.extractor.ExtractFacts(ctx, &lead, text)
	if err != nil {
		return nil, fmt.Errorf("failed to extract facts: %w", err)
	}

	merged := lead.Facts.Merge(*extracted)
	merged.Phone = s.normalizePhone(merged.Phone)

	updates := map[string]interface{}{
		"facts": merged,
	}
	// Fill empty contact columns from extracted facts; never overwrite a
	// manually entered address.
	if lead.EmailAddress() == "" && merged.Email != "" {
		updates["email"] = merged.Email
	}
	if lead.PhoneNumber() == "" && merged.Phone != "" {
		updates["phone"] = merged.Phone
	}
	if lead.Status == models.LeadStatusNew {
		updates["status"] = models.LeadStatusEnriched
	}

	if err := s.db.WithContext(ctx).Model(&lead).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to save enriched data: %w", err)
	}

	if _, err := s.scoring.UpdateLeadScore(ctx, lead.ID); err != nil {
		s.logger.Printf("⚠️  Failed to rescore lead %d after enrichment: %v", lead.ID, err)
	}

	var updated models.Lead
	if err := s.db.WithContext(ctx).First(&updated, leadID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload lead: %w", err)
	}

	s.logger.Printf("✅ Enriched lead %q (score %d)", updated.Name, updated.LeadScore)
	return &updated, nil
}

// BulkEnrich enriches multiple leads. Per-lead failures are collected,
// never fatal to the batch.
func (s *Service) BulkEnrich(ctx context.Context, leadIDs []uint) (*BulkResult, error) {
	result := &BulkResult{
		TotalLeads: len(leadIDs),
		Errors:     make(map[uint]string),
	}

	for _, leadID := range leadIDs {
		if _, err := s.EnrichLead(ctx, leadID); err != nil {
			result.FailureCount++
			result.Errors[leadID] = err.Error()
		} else {
			result.SuccessCount++
		}
	}

	return result, nil
}

// GetStats returns enrichment coverage for the whole lead database. A
// lead counts as enriched once it has moved past "new".
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	var total, unenriched int64

	if err := s.db.WithContext(ctx).Model(&models.Lead{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).
		Where("status = ?", models.LeadStatusNew).Count(&unenriched).Error; err != nil {
		return nil, fmt.Errorf("failed to count unenriched leads: %w", err)
	}

	stats := &Stats{
		TotalLeads:      total,
		EnrichedLeads:   total - unenriched,
		UnenrichedLeads: unenriched,
	}
	if total > 0 {
		stats.EnrichmentRate = float64(stats.EnrichedLeads) / float64(total) * 100
	}
	return stats, nil
}

// normalizePhone formats an extracted phone number to E.164. Numbers that
// fail to parse are kept as extracted rather than dropped.
func (s *Service) normalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(raw, s.defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return raw
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

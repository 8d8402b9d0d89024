package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leadforge/leadforge/pkg/cache"
	"github.com/leadforge/leadforge/pkg/metrics"
	"github.com/leadforge/leadforge/pkg/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Well-known settings keys consumed by the outreach pipeline.
const (
	KeySenderName         = "sender_name"
	KeyCompanyName        = "company_name"
	KeyServiceDescription = "service_description"
	KeyBookingLink        = "booking_link"
	KeyEmailTone          = "email_tone"
	KeyCustomInstructions = "custom_instructions"
	KeySMTPHost           = "smtp_host"
	KeySMTPPort           = "smtp_port"
	KeySMTPSecure         = "smtp_secure"
	KeySMTPUser           = "smtp_user"
	KeySMTPPass           = "smtp_pass"
	KeySendGridAPIKey     = "sendgrid_api_key"
	KeySendGridFromEmail  = "sendgrid_from_email"
	KeyOpenAIAPIKey       = "openai_api_key"
)

const (
	cacheKeyAll = "settings:all"
	cacheTTL    = 5 * time.Minute
)

// SenderProfile is the operator identity used in outgoing emails.
type SenderProfile struct {
	SenderName         string `json:"sender_name"`
	CompanyName        string `json:"company_name"`
	ServiceDescription string `json:"service_description"`
	BookingLink        string `json:"booking_link"`
	EmailTone          string `json:"email_tone"`
	CustomInstructions string `json:"custom_instructions"`
}

// DeliveryConfig holds the outbound email provider credentials. Provider
// precedence is decided by the mailer package, not here.
type DeliveryConfig struct {
	SendGridAPIKey    string
	SendGridFromEmail string
	SMTPHost          string
	SMTPPort          string
	SMTPSecure        string
	SMTPUser          string
	SMTPPass          string
}

// Service reads and writes the operator-editable key/value store. The
// Redis cache is optional; a nil cache client degrades to direct reads.
type Service struct {
	db      *gorm.DB
	cache   *cache.Client
	metrics *metrics.Metrics
}

// NewService creates a new settings service.
func NewService(db *gorm.DB, cacheClient *cache.Client) *Service {
	return &Service{db: db, cache: cacheClient}
}

// SetMetrics attaches a metrics recorder to the service.
func (s *Service) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// GetAll returns every setting as a key/value map.
func (s *Service) GetAll(ctx context.Context) (map[string]string, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKeyAll); err == nil {
			var cached map[string]string
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				if s.metrics != nil {
					s.metrics.RecordCacheHit("settings")
				}
				return cached, nil
			}
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss("settings")
		}
	}

	var rows []models.Setting
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	result := make(map[string]string, len(rows))
	for _, row := range rows {
		result[row.Key] = row.Value
	}

	if s.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(ctx, cacheKeyAll, raw, cacheTTL)
		}
	}

	return result, nil
}

// Get returns one setting value; missing keys return "".
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return "", err
	}
	return all[key], nil
}

// BulkUpsert writes the given key/value pairs atomically. This is the only
// multi-row transaction in the system; campaign sends deliberately commit
// row by row so a crash mid-batch loses at most one recipient's state.
func (s *Service) BulkUpsert(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	rows := make([]models.Setting, 0, len(values))
	for key, value := range values {
		if key == "" {
			return fmt.Errorf("empty settings key")
		}
		rows = append(rows, models.Setting{Key: key, Value: value})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to upsert settings: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, cacheKeyAll)
	}

	return nil
}

// SenderProfile loads the sender identity settings.
func (s *Service) SenderProfile(ctx context.Context) (*SenderProfile, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return &SenderProfile{
		SenderName:         all[KeySenderName],
		CompanyName:        all[KeyCompanyName],
		ServiceDescription: all[KeyServiceDescription],
		BookingLink:        all[KeyBookingLink],
		EmailTone:          all[KeyEmailTone],
		CustomInstructions: all[KeyCustomInstructions],
	}, nil
}

// DeliveryConfig loads the outbound provider credentials.
func (s *Service) DeliveryConfig(ctx context.Context) (*DeliveryConfig, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return &DeliveryConfig{
		SendGridAPIKey:    all[KeySendGridAPIKey],
		SendGridFromEmail: all[KeySendGridFromEmail],
		SMTPHost:          all[KeySMTPHost],
		SMTPPort:          all[KeySMTPPort],
		SMTPSecure:        all[KeySMTPSecure],
		SMTPUser:          all[KeySMTPUser],
		SMTPPass:          all[KeySMTPPass],
	}, nil
}

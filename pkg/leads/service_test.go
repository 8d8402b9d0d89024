package leads

import (
	"context"
	"fmt"
	"testing"

	"github.com/leadforge/leadforge/pkg/database"
	"github.com/leadforge/leadforge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newLeadService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := database.OpenTest()
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db), db
}

func TestCreate(t *testing.T) {
	svc, _ := newLeadService(t)

	lead, err := svc.Create(context.Background(), CreateLeadRequest{
		Name:     "Acme Plumbing",
		Website:  "acme.example.com",
		Industry: "plumbing",
		Rating:   4.6,
		Email:    "office@acme.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, models.LeadStatusNew, lead.Status)
	assert.Equal(t, "office@acme.example.com", lead.EmailAddress())
	// email 25 + website 10 + rating 15
	assert.Equal(t, 50, lead.LeadScore)
}

func TestSearch(t *testing.T) {
	svc, db := newLeadService(t)

	email := "a@example.com"
	require.NoError(t, db.Create(&models.Lead{Name: "Austin Roofing", Industry: "roofing", Status: models.LeadStatusNew, LeadScore: 80, Email: &email}).Error)
	require.NoError(t, db.Create(&models.Lead{Name: "Dallas Dental", Industry: "dentist", Status: models.LeadStatusEnriched, LeadScore: 60}).Error)
	require.NoError(t, db.Create(&models.Lead{Name: "Austin Bakery", Industry: "bakery", Status: models.LeadStatusLost, LeadScore: 10}).Error)

	t.Run("no filters orders by score", func(t *testing.T) {
		res, err := svc.Search(context.Background(), SearchRequest{})
		require.NoError(t, err)
		require.Len(t, res.Data, 3)
		assert.Equal(t, "Austin Roofing", res.Data[0].Name)
		assert.Equal(t, int64(3), res.Pagination.Total)
	})

	t.Run("filter by industry", func(t *testing.T) {
		res, err := svc.Search(context.Background(), SearchRequest{Industry: "dentist"})
		require.NoError(t, err)
		require.Len(t, res.Data, 1)
		assert.Equal(t, "Dallas Dental", res.Data[0].Name)
	})

	t.Run("filter by status", func(t *testing.T) {
		res, err := svc.Search(context.Background(), SearchRequest{Status: "lost"})
		require.NoError(t, err)
		require.Len(t, res.Data, 1)
	})

	t.Run("name search", func(t *testing.T) {
		res, err := svc.Search(context.Background(), SearchRequest{Search: "Austin"})
		require.NoError(t, err)
		assert.Len(t, res.Data, 2)
	})

	t.Run("has email", func(t *testing.T) {
		hasEmail := true
		res, err := svc.Search(context.Background(), SearchRequest{HasEmail: &hasEmail})
		require.NoError(t, err)
		require.Len(t, res.Data, 1)
		assert.Equal(t, "Austin Roofing", res.Data[0].Name)
	})

	t.Run("min score", func(t *testing.T) {
		res, err := svc.Search(context.Background(), SearchRequest{MinScore: 50})
		require.NoError(t, err)
		assert.Len(t, res.Data, 2)
	})

	t.Run("pagination", func(t *testing.T) {
		res, err := svc.Search(context.Background(), SearchRequest{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, res.Data, 1)
		assert.True(t, res.Pagination.HasPrev)
		assert.False(t, res.Pagination.HasNext)
		assert.Equal(t, 2, res.Pagination.TotalPages)
	})
}

func TestGetByIDIncludesMessages(t *testing.T) {
	svc, db := newLeadService(t)

	lead := &models.Lead{Name: "History Inc"}
	require.NoError(t, db.Create(lead).Error)
	require.NoError(t, db.Create(&models.Message{
		LeadID: lead.ID, Direction: models.DirectionOutbound,
		Content: "Subject\n\nBody", Intent: models.IntentPitch,
	}).Error)

	got, err := svc.GetByID(context.Background(), lead.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, models.DirectionOutbound, got.Messages[0].Direction)

	_, err = svc.GetByID(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestUpdate(t *testing.T) {
	svc, db := newLeadService(t)
	lead := &models.Lead{Name: "Before", Status: models.LeadStatusNew}
	require.NoError(t, db.Create(lead).Error)

	t.Run("partial update rescores", func(t *testing.T) {
		email := "new@example.com"
		updated, err := svc.Update(context.Background(), lead.ID, UpdateLeadRequest{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.EmailAddress())
		assert.Equal(t, 25, updated.LeadScore)
		assert.Equal(t, "Before", updated.Name)
	})

	t.Run("manual status change allowed in any direction", func(t *testing.T) {
		status := "booked"
		updated, err := svc.Update(context.Background(), lead.ID, UpdateLeadRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, models.LeadStatusBooked, updated.Status)

		back := "new"
		updated, err = svc.Update(context.Background(), lead.ID, UpdateLeadRequest{Status: &back})
		require.NoError(t, err)
		assert.Equal(t, models.LeadStatusNew, updated.Status)
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		bad := "zombie"
		_, err := svc.Update(context.Background(), lead.ID, UpdateLeadRequest{Status: &bad})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid status")
	})

	t.Run("unknown lead", func(t *testing.T) {
		_, err := svc.Update(context.Background(), 9999, UpdateLeadRequest{})
		assert.ErrorIs(t, err, ErrLeadNotFound)
	})
}

func TestDelete(t *testing.T) {
	svc, db := newLeadService(t)

	lead := &models.Lead{Name: "Doomed"}
	require.NoError(t, db.Create(lead).Error)
	require.NoError(t, db.Create(&models.Message{LeadID: lead.ID, Direction: models.DirectionOutbound, Content: "x", Intent: models.IntentPitch}).Error)
	campaign := &models.Campaign{Name: "C"}
	require.NoError(t, db.Create(campaign).Error)
	require.NoError(t, db.Create(&models.CampaignLead{CampaignID: campaign.ID, LeadID: lead.ID, Status: models.CampaignLeadPending}).Error)

	require.NoError(t, svc.Delete(context.Background(), lead.ID))

	for _, model := range []interface{}{&models.Message{}, &models.CampaignLead{}} {
		var n int64
		require.NoError(t, db.Model(model).Where("lead_id = ?", lead.ID).Count(&n).Error)
		assert.Equal(t, int64(0), n, fmt.Sprintf("%T rows should be gone", model))
	}

	assert.ErrorIs(t, svc.Delete(context.Background(), lead.ID), ErrLeadNotFound)
}

func TestRecordReply(t *testing.T) {
	svc, db := newLeadService(t)

	lead := &models.Lead{Name: "Responsive", Status: models.LeadStatusEmailed}
	require.NoError(t, db.Create(lead).Error)
	campaign := &models.Campaign{Name: "C", Status: models.CampaignStatusActive}
	require.NoError(t, db.Create(campaign).Error)
	require.NoError(t, db.Create(&models.CampaignLead{CampaignID: campaign.ID, LeadID: lead.ID, Status: models.CampaignLeadSent}).Error)

	msg, err := svc.RecordReply(context.Background(), lead.ID, "Sounds interesting, tell me more")
	require.NoError(t, err)
	assert.Equal(t, models.DirectionInbound, msg.Direction)

	var reloaded models.Lead
	require.NoError(t, db.First(&reloaded, lead.ID).Error)
	assert.Equal(t, models.LeadStatusReplied, reloaded.Status)

	var row models.CampaignLead
	require.NoError(t, db.Where("lead_id = ?", lead.ID).First(&row).Error)
	assert.Equal(t, models.CampaignLeadReplied, row.Status)

	t.Run("booked lead keeps status", func(t *testing.T) {
		booked := &models.Lead{Name: "Already Booked", Status: models.LeadStatusBooked}
		require.NoError(t, db.Create(booked).Error)

		_, err := svc.RecordReply(context.Background(), booked.ID, "see you Tuesday")
		require.NoError(t, err)

		var b models.Lead
		require.NoError(t, db.First(&b, booked.ID).Error)
		assert.Equal(t, models.LeadStatusBooked, b.Status)
	})
}

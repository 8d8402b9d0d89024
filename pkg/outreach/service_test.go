package outreach

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/leadforge/leadforge/pkg/ai/llm"
	"github.com/leadforge/leadforge/pkg/database"
	"github.com/leadforge/leadforge/pkg/mailer"
	"github.com/leadforge/leadforge/pkg/models"
	"github.com/leadforge/leadforge/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSender struct {
	sent []string
	fail bool
}

func (f *fakeSender) Send(ctx context.Context, to, subject, body string) (*mailer.SendResult, error) {
	if f.fail {
		return nil, fmt.Errorf("smtp relay down")
	}
	f.sent = append(f.sent, to)
	return &mailer.SendResult{Provider: "fake"}, nil
}

func (f *fakeSender) Provider() string { return "fake" }

type fakeWriter struct {
	intents []models.MessageIntent
	err     error
}

func (f *fakeWriter) WriteEmail(ctx context.Context, pc llm.PromptContext) (*llm.Email, error) {
	f.intents = append(f.intents, pc.Intent)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Email{Subject: "Subject for " + pc.Lead.Name, Body: "Body"}, nil
}

func newOutreachService(t *testing.T) (*Service, *gorm.DB, *fakeSender, *fakeWriter) {
	t.Helper()

	db, err := database.OpenTest()
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sender := &fakeSender{}
	writer := &fakeWriter{}

	svc := NewService(db, settings.NewService(db, nil), writer, log.New(io.Discard, "", 0))
	svc.newSender = func(*settings.DeliveryConfig) mailer.Sender { return sender }
	return svc, db, sender, writer
}

func createLead(t *testing.T, db *gorm.DB, name, email string) *models.Lead {
	t.Helper()
	lead := &models.Lead{Name: name, Status: models.LeadStatusNew}
	if email != "" {
		lead.Email = &email
	}
	require.NoError(t, db.Create(lead).Error)
	return lead
}

func TestSendPitch(t *testing.T) {
	svc, db, sender, writer := newOutreachService(t)
	lead := createLead(t, db, "Pitch Cafe", "pitch@example.com")

	msg, err := svc.SendPitch(context.Background(), lead.ID)
	require.NoError(t, err)

	assert.Equal(t, []models.MessageIntent{models.IntentPitch}, writer.intents)
	assert.Equal(t, []string{"pitch@example.com"}, sender.sent)
	assert.Equal(t, models.DirectionOutbound, msg.Direction)
	assert.Equal(t, models.IntentPitch, msg.Intent)
	assert.Contains(t, msg.Content, "Subject for Pitch Cafe")

	var reloaded models.Lead
	require.NoError(t, db.First(&reloaded, lead.ID).Error)
	assert.Equal(t, models.LeadStatusEmailed, reloaded.Status)
	assert.Equal(t, 0, reloaded.FollowUpCount)
}

func TestSendFollowUp(t *testing.T) {
	svc, db, _, writer := newOutreachService(t)
	lead := createLead(t, db, "Again Cafe", "again@example.com")

	_, err := svc.SendFollowUp(context.Background(), lead.ID)
	require.NoError(t, err)
	_, err = svc.SendFollowUp(context.Background(), lead.ID)
	require.NoError(t, err)

	assert.Equal(t, []models.MessageIntent{models.IntentFollowUp, models.IntentFollowUp}, writer.intents)

	var reloaded models.Lead
	require.NoError(t, db.First(&reloaded, lead.ID).Error)
	assert.Equal(t, 2, reloaded.FollowUpCount)
}

func TestSendPitchErrors(t *testing.T) {
	t.Run("lead not found", func(t *testing.T) {
		svc, _, _, _ := newOutreachService(t)
		_, err := svc.SendPitch(context.Background(), 9999)
		assert.ErrorIs(t, err, ErrLeadNotFound)
	})

	t.Run("no email address", func(t *testing.T) {
		svc, db, _, _ := newOutreachService(t)
		lead := createLead(t, db, "Offline", "")
		_, err := svc.SendPitch(context.Background(), lead.ID)
		assert.ErrorIs(t, err, ErrNoEmail)
	})

	t.Run("generation failure surfaces directly", func(t *testing.T) {
		svc, db, sender, writer := newOutreachService(t)
		writer.err = fmt.Errorf("%w: model refused", llm.ErrGeneration)
		lead := createLead(t, db, "Unlucky", "unlucky@example.com")

		_, err := svc.SendPitch(context.Background(), lead.ID)
		assert.ErrorIs(t, err, llm.ErrGeneration)
		assert.Empty(t, sender.sent)

		// Nothing is recorded and the lead does not advance.
		var n int64
		require.NoError(t, db.Model(&models.Message{}).Count(&n).Error)
		assert.Equal(t, int64(0), n)

		var reloaded models.Lead
		require.NoError(t, db.First(&reloaded, lead.ID).Error)
		assert.Equal(t, models.LeadStatusNew, reloaded.Status)
	})

	t.Run("delivery failure records nothing", func(t *testing.T) {
		svc, db, sender, _ := newOutreachService(t)
		sender.fail = true
		lead := createLead(t, db, "Bounced", "bounced@example.com")

		_, err := svc.SendPitch(context.Background(), lead.ID)
		require.Error(t, err)

		var n int64
		require.NoError(t, db.Model(&models.Message{}).Count(&n).Error)
		assert.Equal(t, int64(0), n)
	})
}

func TestSendPitchKeepsEngagedStatus(t *testing.T) {
	svc, db, _, _ := newOutreachService(t)
	lead := createLead(t, db, "Engaged Gym", "engaged@example.com")
	require.NoError(t, db.Model(lead).Update("status", models.LeadStatusInterested).Error)

	_, err := svc.SendPitch(context.Background(), lead.ID)
	require.NoError(t, err)

	var reloaded models.Lead
	require.NoError(t, db.First(&reloaded, lead.ID).Error)
	assert.Equal(t, models.LeadStatusInterested, reloaded.Status)
}

func TestBulkEmail(t *testing.T) {
	svc, db, sender, _ := newOutreachService(t)

	a := createLead(t, db, "Bulk A", "a@example.com")
	noEmail := createLead(t, db, "Bulk B", "")
	c := createLead(t, db, "Bulk C", "c@example.com")

	result, err := svc.BulkEmail(context.Background(), []uint{a.ID, noEmail.ID, c.ID, 9999})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Bulk B:")
	assert.Contains(t, result.Errors[1], "lead 9999:")
	assert.Equal(t, []string{"a@example.com", "c@example.com"}, sender.sent)
}

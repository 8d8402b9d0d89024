package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadforge/pkg/ai/llm"
	"github.com/leadforge/leadforge/pkg/models"
	"github.com/leadforge/leadforge/pkg/outreach"
	"github.com/leadforge/leadforge/pkg/settings"
)

func newOutreachHandler(env *testEnv, writer *stubWriter) *OutreachHandler {
	settingsSvc := settings.NewService(env.db, nil)
	return NewOutreachHandler(outreach.NewService(env.db, settingsSvc, writer, quietLogger()))
}

func TestPitchEndpoint(t *testing.T) {
	env := newTestEnv(t)
	writer := &stubWriter{}
	h := newOutreachHandler(env, writer)

	env.seedLead(&models.Lead{Name: "Pitch Target", Email: strptr("owner@pitch.example")})

	t.Run("sends and records", func(t *testing.T) {
		rec := env.call(http.MethodPost, "/api/v1/leads/1/pitch", nil, h.Pitch,
			map[string]string{"id": "1"})
		require.Equal(t, http.StatusOK, rec.Code)

		var message models.Message
		env.decode(rec, &message)
		assert.Equal(t, models.DirectionOutbound, message.Direction)
		assert.Contains(t, message.Content, "Pitch Target")
	})

	t.Run("unknown lead is 404", func(t *testing.T) {
		rec := env.call(http.MethodPost, "/api/v1/leads/99/pitch", nil, h.Pitch,
			map[string]string{"id": "99"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPitchGenerationFailureIsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	writer := &stubWriter{err: fmt.Errorf("%w: model unavailable", llm.ErrGeneration)}
	h := newOutreachHandler(env, writer)

	env.seedLead(&models.Lead{Name: "No Draft", Email: strptr("x@y.example")})

	rec := env.call(http.MethodPost, "/api/v1/leads/1/pitch", nil, h.Pitch,
		map[string]string{"id": "1"})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp models.ErrorResponse
	env.decode(rec, &resp)
	assert.Equal(t, "generation_failed", resp.Error)

	// Nothing sent means nothing recorded.
	var count int64
	require.NoError(t, env.db.Model(&models.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPitchWithoutEmailIsBadRequest(t *testing.T) {
	env := newTestEnv(t)
	h := newOutreachHandler(env, &stubWriter{})

	env.seedLead(&models.Lead{Name: "No Email Co"})

	rec := env.call(http.MethodPost, "/api/v1/leads/1/pitch", nil, h.Pitch,
		map[string]string{"id": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFollowUpEndpoint(t *testing.T) {
	env := newTestEnv(t)
	h := newOutreachHandler(env, &stubWriter{})

	env.seedLead(&models.Lead{Name: "Follow Me", Email: strptr("f@m.example")})

	rec := env.call(http.MethodPost, "/api/v1/leads/1/follow-up", nil, h.FollowUp,
		map[string]string{"id": "1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var lead models.Lead
	require.NoError(t, env.db.First(&lead, 1).Error)
	assert.Equal(t, 1, lead.FollowUpCount)
}

func TestBulkEmailEndpoint(t *testing.T) {
	env := newTestEnv(t)
	h := newOutreachHandler(env, &stubWriter{})

	ok := env.seedLead(&models.Lead{Name: "Has Email", Email: strptr("has@email.example")})
	noEmail := env.seedLead(&models.Lead{Name: "No Email"})

	t.Run("collects per-lead failures at 200", func(t *testing.T) {
		rec := env.call(http.MethodPost, "/api/v1/leads/bulk-email",
			leadIDsRequest{LeadIDs: []uint{ok.ID, noEmail.ID, 999}}, h.BulkEmail, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var result models.BatchResult
		env.decode(rec, &result)
		assert.Equal(t, 1, result.Sent)
		assert.Equal(t, 2, result.Failed)
		require.Len(t, result.Errors, 2)
		assert.Contains(t, result.Errors[0], "No Email")
	})

	t.Run("empty body is 400", func(t *testing.T) {
		rec := env.call(http.MethodPost, "/api/v1/leads/bulk-email",
			leadIDsRequest{}, h.BulkEmail, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

package testdata

import (
	"testing"

	"github.com/leadforge/leadforge/pkg/database"
	"github.com/leadforge/leadforge/pkg/models"
	"github.com/leadforge/leadforge/pkg/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLead(t *testing.T) {
	lead := GenerateLead(LeadGeneratorConfig{
		Industry:      "plumbing",
		EmailChance:   1,
		PhoneChance:   1,
		WebsiteChance: 1,
		FactsChance:   1,
	})

	assert.Equal(t, "plumbing", lead.Industry)
	assert.NotEmpty(t, lead.Name)
	assert.NotEmpty(t, lead.Location)
	assert.NotEmpty(t, lead.EmailAddress())
	assert.NotEmpty(t, lead.PhoneNumber())
	assert.NotEmpty(t, lead.Website)
	assert.NotEmpty(t, lead.Facts.Services)
	assert.Equal(t, models.LeadStatusEnriched, lead.Status)

	// The stored score always matches the rubric.
	assert.Equal(t, scoring.Score(lead), lead.LeadScore)
}

func TestGenerateLeadZeroChances(t *testing.T) {
	lead := GenerateLead(LeadGeneratorConfig{Industry: "cafe"})

	assert.Nil(t, lead.Email)
	assert.Nil(t, lead.Phone)
	assert.Empty(t, lead.Website)
	assert.Equal(t, models.LeadStatusNew, lead.Status)
}

func TestGenerateLeadsCount(t *testing.T) {
	leads := GenerateLeads(LeadGeneratorConfig{Industry: "gym", Count: 25})
	assert.Len(t, leads, 25)

	// Default count kicks in when unset.
	assert.Len(t, GenerateLeads(LeadGeneratorConfig{Industry: "gym"}), 10)
}

func TestSeed(t *testing.T) {
	db, err := database.OpenTest()
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	n, err := Seed(db, LeadGeneratorConfig{Count: 5, EmailChance: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	var count int64
	require.NoError(t, db.Model(&models.Lead{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

package templates

import (
	"testing"

	"github.com/leadforge/leadforge/pkg/models"
	"github.com/leadforge/leadforge/pkg/settings"
	"github.com/stretchr/testify/assert"
)

func sampleLead() *models.Lead {
	return &models.Lead{
		Name:     "Iron Peak Fitness",
		Industry: "gym",
		Location: "Austin, TX",
		Facts: models.Facts{
			Services:   []string{"personal training", "group classes"},
			PainPoints: []string{"no online booking", "outdated website"},
		},
	}
}

func sampleSender() *settings.SenderProfile {
	return &settings.SenderProfile{
		SenderName:         "Alex Morgan",
		CompanyName:        "LeadForge",
		ServiceDescription: "web design for local businesses",
		BookingLink:        "https://cal.example.com/alex",
	}
}

func TestInterpolate(t *testing.T) {
	t.Run("Substitutes all known placeholders", func(t *testing.T) {
		template := "Hi {{businessName}} ({{industry}}, {{location}}) — " +
			"{{senderName}} from {{companyName}} offers {{serviceDescription}}. " +
			"Book: {{bookingLink}}. Issues: {{painPoints}}. You offer: {{services}}."

		got := Interpolate(template, sampleLead(), sampleSender())

		assert.Equal(t,
			"Hi Iron Peak Fitness (gym, Austin, TX) — "+
				"Alex Morgan from LeadForge offers web design for local businesses. "+
				"Book: https://cal.example.com/alex. "+
				"Issues: no online booking, outdated website. "+
				"You offer: personal training, group classes.",
			got)
	})

	t.Run("Unknown placeholders pass through verbatim", func(t *testing.T) {
		got := Interpolate("Hello {{firstName}}, greetings from {{companyName}}", sampleLead(), sampleSender())
		assert.Equal(t, "Hello {{firstName}}, greetings from LeadForge", got)
	})

	t.Run("Missing values substitute empty strings", func(t *testing.T) {
		lead := &models.Lead{Name: "Bare Lead"}
		got := Interpolate("{{businessName}}|{{location}}|{{painPoints}}|{{bookingLink}}", lead, nil)
		assert.Equal(t, "Bare Lead|||", got)
	})

	t.Run("Case sensitive tokens", func(t *testing.T) {
		got := Interpolate("{{BusinessName}} vs {{businessName}}", sampleLead(), nil)
		assert.Equal(t, "{{BusinessName}} vs Iron Peak Fitness", got)
	})

	t.Run("Empty template", func(t *testing.T) {
		assert.Equal(t, "", Interpolate("", sampleLead(), sampleSender()))
	})

	t.Run("Deterministic", func(t *testing.T) {
		template := "{{businessName}} {{services}} {{painPoints}}"
		first := Interpolate(template, sampleLead(), sampleSender())
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Interpolate(template, sampleLead(), sampleSender()))
		}
	})
}

package testdata

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/leadforge/leadforge/pkg/models"
	"github.com/leadforge/leadforge/pkg/scoring"
	"gorm.io/gorm"
)

// LeadGeneratorConfig configures lead generation parameters
type LeadGeneratorConfig struct {
	Industry      string
	Count         int
	Location      string
	EmailChance   float64 // 0.0-1.0 (probability of having email)
	PhoneChance   float64
	WebsiteChance float64
	FactsChance   float64 // probability of pre-filled enrichment facts
}

// Locations used when the config leaves the location empty
var locations = []string{
	"Austin, TX", "Dallas, TX", "Houston, TX", "Phoenix, AZ", "Denver, CO",
	"Nashville, TN", "Charlotte, NC", "Tampa, FL", "Columbus, OH", "Portland, OR",
}

// Industry-specific business name parts, services, and pain points
var industryProfiles = map[string]struct {
	Prefixes   []string
	Suffixes   []string
	Services   []string
	PainPoints []string
}{
	"plumbing": {
		Prefixes:   []string{"Ace", "Rapid", "Blue Ribbon", "All Hours", "Honest", "Metro", "Family", "Pro"},
		Suffixes:   []string{"Plumbing", "Plumbing Co", "Plumbing & Drain", "Pipe Works", "Plumbers"},
		Services:   []string{"drain cleaning", "water heater repair", "leak detection", "repiping"},
		PainPoints: []string{"no online booking", "outdated website", "few recent reviews", "slow quote turnaround"},
	},
	"roofing": {
		Prefixes:   []string{"Summit", "Peak", "Storm Guard", "Reliable", "Lone Star", "Heritage", "Precision"},
		Suffixes:   []string{"Roofing", "Roofing Co", "Roof Repair", "Exteriors", "Roofing & Gutters"},
		Services:   []string{"roof replacement", "storm damage repair", "gutter installation", "inspections"},
		PainPoints: []string{"no free estimate form", "missing before/after photos", "no financing info"},
	},
	"hvac": {
		Prefixes:   []string{"Comfort", "Arctic", "All Season", "Premier", "Quality", "Airflow", "TrueTemp"},
		Suffixes:   []string{"Heating & Air", "HVAC", "Air Conditioning", "Climate Control", "Mechanical"},
		Services:   []string{"AC repair", "furnace installation", "duct cleaning", "maintenance plans"},
		PainPoints: []string{"no emergency line listed", "no maintenance plan upsell", "stale blog"},
	},
	"dentist": {
		Prefixes:   []string{"Bright", "Gentle", "Family", "Modern", "Premier", "Smile", "Lakeside"},
		Suffixes:   []string{"Dental", "Dentistry", "Dental Care", "Dental Studio", "Family Dentistry"},
		Services:   []string{"cleanings", "whitening", "implants", "invisible aligners"},
		PainPoints: []string{"phone-only scheduling", "no new patient specials", "dated site design"},
	},
	"gym": {
		Prefixes:   []string{"Iron", "Peak", "Forge", "Apex", "Grit", "Pulse", "Anchor"},
		Suffixes:   []string{"Fitness", "Gym", "Strength Co", "Training Club", "Athletics"},
		Services:   []string{"personal training", "group classes", "nutrition coaching", "open gym"},
		PainPoints: []string{"no class schedule online", "no trial pass funnel", "weak social proof"},
	},
	"cafe": {
		Prefixes:   []string{"Corner", "Daily", "Harvest", "Drift", "Golden Hour", "Local", "Stonework"},
		Suffixes:   []string{"Cafe", "Coffee Co", "Coffee House", "Roasters", "Espresso Bar"},
		Services:   []string{"espresso drinks", "pastries", "catering", "private events"},
		PainPoints: []string{"no online ordering", "menu only on social media", "no loyalty program"},
	},
}

// GenerateLead creates one fake lead using the config's probabilities. The
// generated profile is internally consistent: facts line up with the
// industry, and the score matches the rubric.
func GenerateLead(config LeadGeneratorConfig) *models.Lead {
	industry := config.Industry
	if industry == "" {
		industry = randomIndustry()
	}
	profile := industryProfiles[industry]

	name := businessName(industry)
	location := config.Location
	if location == "" {
		location = locations[gofakeit.Number(0, len(locations)-1)]
	}

	lead := &models.Lead{
		Name:        name,
		Industry:    industry,
		Location:    location,
		Rating:      float64(gofakeit.Number(25, 50)) / 10.0,
		ReviewCount: gofakeit.Number(3, 400),
		Status:      models.LeadStatusNew,
	}

	if chance(config.WebsiteChance) {
		lead.Website = websiteFor(name)
	}
	if chance(config.EmailChance) {
		email := emailFor(name)
		lead.Email = &email
	}
	if chance(config.PhoneChance) {
		phone := fmt.Sprintf("+1512555%04d", gofakeit.Number(0, 9999))
		lead.Phone = &phone
	}

	if chance(config.FactsChance) && len(profile.Services) > 0 {
		lead.Facts = models.Facts{
			Services:   pick(profile.Services, gofakeit.Number(1, len(profile.Services))),
			PainPoints: pick(profile.PainPoints, gofakeit.Number(1, len(profile.PainPoints))),
			Tone:       gofakeit.RandomString([]string{"casual", "professional", "friendly"}),
		}
		lead.Status = models.LeadStatusEnriched
	}

	lead.LeadScore = scoring.Score(lead)
	return lead
}

// GenerateLeads creates config.Count fake leads.
func GenerateLeads(config LeadGeneratorConfig) []*models.Lead {
	count := config.Count
	if count <= 0 {
		count = 10
	}

	leads := make([]*models.Lead, 0, count)
	for i := 0; i < count; i++ {
		leads = append(leads, GenerateLead(config))
	}
	return leads
}

// Seed inserts fake leads for local development and demos.
func Seed(db *gorm.DB, config LeadGeneratorConfig) (int, error) {
	leads := GenerateLeads(config)
	for _, lead := range leads {
		if err := db.Create(lead).Error; err != nil {
			return 0, fmt.Errorf("failed to seed lead %q: %w", lead.Name, err)
		}
	}
	return len(leads), nil
}

func randomIndustry() string {
	keys := make([]string, 0, len(industryProfiles))
	for k := range industryProfiles {
		keys = append(keys, k)
	}
	return keys[gofakeit.Number(0, len(keys)-1)]
}

func businessName(industry string) string {
	profile, ok := industryProfiles[industry]
	if !ok || len(profile.Prefixes) == 0 {
		return gofakeit.Company()
	}
	prefix := profile.Prefixes[gofakeit.Number(0, len(profile.Prefixes)-1)]
	suffix := profile.Suffixes[gofakeit.Number(0, len(profile.Suffixes)-1)]
	return prefix + " " + suffix
}

func websiteFor(name string) string {
	slug := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	slug = strings.ReplaceAll(slug, "&", "and")
	return slug + ".com"
}

func emailFor(name string) string {
	return "info@" + websiteFor(name)
}

func chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return gofakeit.Float64Range(0, 1) < p
}

func pick(options []string, n int) []string {
	if n >= len(options) {
		out := make([]string, len(options))
		copy(out, options)
		return out
	}
	shuffled := make([]string, len(options))
	copy(shuffled, options)
	gofakeit.ShuffleStrings(shuffled)
	return shuffled[:n]
}

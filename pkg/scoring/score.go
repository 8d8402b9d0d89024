package scoring

import "github.com/leadforge/leadforge/pkg/models"

// Scoring weights. The rubric is additive and the total is clamped to
// MaxScore, so a lead with everything present still scores 100.
const (
	ScoreHasEmail   = 25
	ScoreHasPhone   = 10
	ScoreHasWebsite = 10

	ScoreRatingHigh = 15 // rating >= 4
	ScoreRatingMid  = 5  // rating in [3, 4)

	ScorePerPainPoint = 10
	PainPointsCap     = 25

	ScorePerService = 5
	ServicesCap     = 15

	MaxScore = 100
)

// Score computes the 0-100 suitability score for a lead from its
// attributes and enrichment facts. Pure and deterministic: identical
// inputs always produce the identical integer.
func Score(lead *models.Lead) int {
	total := 0
	for _, part := range Breakdown(lead) {
		total += part
	}
	if total > MaxScore {
		total = MaxScore
	}
	return total
}

// Breakdown returns the per-rule contributions that make up the score,
// before clamping.
func Breakdown(lead *models.Lead) map[string]int {
	breakdown := make(map[string]int)

	if lead.EmailAddress() != "" {
		breakdown["has_email"] = ScoreHasEmail
	}
	if lead.PhoneNumber() != "" {
		breakdown["has_phone"] = ScoreHasPhone
	}
	if lead.Website != "" {
		breakdown["has_website"] = ScoreHasWebsite
	}

	switch {
	case lead.Rating >= 4:
		breakdown["rating"] = ScoreRatingHigh
	case lead.Rating >= 3:
		breakdown["rating"] = ScoreRatingMid
	}

	if n := len(lead.Facts.PainPoints); n > 0 {
		points := n * ScorePerPainPoint
		if points > PainPointsCap {
			points = PainPointsCap
		}
		breakdown["pain_points"] = points
	}

	if n := len(lead.Facts.Services); n > 0 {
		points := n * ScorePerService
		if points > ServicesCap {
			points = ServicesCap
		}
		breakdown["services"] = points
	}

	return breakdown
}

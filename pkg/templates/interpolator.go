package templates

import (
	"strings"

	"github.com/leadforge/leadforge/pkg/models"
	"github.com/leadforge/leadforge/pkg/settings"
)

// Placeholder tokens recognized by Interpolate. Tokens are exact,
// case-sensitive literals; anything else in the template passes through
// verbatim.
const (
	TokenBusinessName       = "{{businessName}}"
	TokenIndustry           = "{{industry}}"
	TokenLocation           = "{{location}}"
	TokenSenderName         = "{{senderName}}"
	TokenCompanyName        = "{{companyName}}"
	TokenServiceDescription = "{{serviceDescription}}"
	TokenBookingLink        = "{{bookingLink}}"
	TokenPainPoints         = "{{painPoints}}"
	TokenServices           = "{{services}}"
)

// Interpolate substitutes the recognized placeholders with values from the
// lead and the sender profile. Missing values substitute an empty string;
// unknown placeholders are left untouched. Pure and deterministic.
func Interpolate(template string, lead *models.Lead, sender *settings.SenderProfile) string {
	if template == "" {
		return ""
	}

	if sender == nil {
		sender = &settings.SenderProfile{}
	}

	return strings.NewReplacer(
		TokenBusinessName, lead.Name,
		TokenIndustry, lead.Industry,
		TokenLocation, lead.Location,
		TokenPainPoints, strings.Join(lead.Facts.PainPoints, ", "),
		TokenServices, strings.Join(lead.Facts.Services, ", "),
		TokenSenderName, sender.SenderName,
		TokenCompanyName, sender.CompanyName,
		TokenServiceDescription, sender.ServiceDescription,
		TokenBookingLink, sender.BookingLink,
	).Replace(template)
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leadforge/leadforge/pkg/metrics"
	"github.com/leadforge/leadforge/pkg/models"
	"github.com/leadforge/leadforge/pkg/settings"
)

// ErrGeneration marks content-generation failures: unreachable model,
// unparsable output, or a payload missing subject/body. Callers on batch
// paths recover with a fallback; the single-lead interactive path surfaces
// it directly.
var ErrGeneration = errors.New("content generation failed")

// Email is one generated outreach email.
type Email struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// PromptContext carries everything the generator may use for one email.
type PromptContext struct {
	Lead   *models.Lead
	Sender *settings.SenderProfile
	Intent models.MessageIntent
}

// EmailWriter produces one outreach email per call. Calls are independent;
// no state is shared between leads.
type EmailWriter interface {
	WriteEmail(ctx context.Context, pc PromptContext) (*Email, error)
}

// FactsExtractor derives structured enrichment facts from raw website text.
type FactsExtractor interface {
	ExtractFacts(ctx context.Context, lead *models.Lead, websiteText string) (*models.Facts, error)
}

const emailSystemPrompt = `You are an expert cold-outreach copywriter for a small agency. ` +
	`You write short, personal emails to local business owners. ` +
	`Respond with a single JSON object: {"subject": "...", "body": "..."}. ` +
	`No markdown, no commentary outside the JSON.`

const factsSystemPrompt = `You are a business analyst. Given the text of a local business ` +
	`website, extract structured facts about the business. ` +
	`Respond with a single JSON object: {"services": [...], "pain_points": [...], ` +
	`"tone": "...", "company_size": "...", "tech_savviness": "...", "email": "...", "phone": "..."}. ` +
	`Use empty values for anything you cannot determine. No commentary outside the JSON.`

// Generator is the content-generation adapter over an LLM.
type Generator struct {
	client  Completer
	metrics *metrics.Metrics
}

// NewGenerator creates a generation adapter on top of the given model
// client.
func NewGenerator(client Completer) *Generator {
	return &Generator{client: client}
}

// SetMetrics attaches an optional duration histogram for generation calls.
func (g *Generator) SetMetrics(m *metrics.Metrics) {
	g.metrics = m
}

// WriteEmail builds the outreach-framework prompt for the lead, submits
// it, and parses the {subject, body} payload out of the raw completion.
func (g *Generator) WriteEmail(ctx context.Context, pc PromptContext) (*Email, error) {
	defer g.observe("email", time.Now())

	raw, err := g.client.Complete(ctx, buildEmailPrompt(pc), emailSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	payload, err := extractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	var email Email
	if err := json.Unmarshal(payload, &email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	email.Subject = strings.TrimSpace(email.Subject)
	email.Body = strings.TrimSpace(email.Body)
	if email.Subject == "" || email.Body == "" {
		return nil, fmt.Errorf("%w: missing subject or body", ErrGeneration)
	}

	return &email, nil
}

// ExtractFacts derives enrichment facts from website text.
func (g *Generator) ExtractFacts(ctx context.Context, lead *models.Lead, websiteText string) (*models.Facts, error) {
	defer g.observe("facts", time.Now())

	prompt := fmt.Sprintf("Business: %s (%s, %s)\n\nWebsite text:\n%s",
		lead.Name, lead.Industry, lead.Location, truncate(websiteText, 8000))

	raw, err := g.client.Complete(ctx, prompt, factsSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	payload, err := extractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	var facts models.Facts
	if err := json.Unmarshal(payload, &facts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	return &facts, nil
}

func (g *Generator) observe(kind string, start time.Time) {
	if g.metrics != nil {
		g.metrics.RecordGeneration(kind, time.Since(start))
	}
}

// buildEmailPrompt lays out the fixed outreach framework: hook, problem,
// agitate, solve, low-friction call to action.
func buildEmailPrompt(pc PromptContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a cold outreach email to %s, a %s business in %s.\n\n",
		pc.Lead.Name, displayOr(pc.Lead.Industry, "local"), displayOr(pc.Lead.Location, "their area"))

	if len(pc.Lead.Facts.Services) > 0 {
		fmt.Fprintf(&b, "Their services: %s.\n", strings.Join(pc.Lead.Facts.Services, ", "))
	}
	if len(pc.Lead.Facts.PainPoints) > 0 {
		fmt.Fprintf(&b, "Observed problems: %s.\n", strings.Join(pc.Lead.Facts.PainPoints, ", "))
	}
	if pc.Lead.Facts.CompanySize != "" {
		fmt.Fprintf(&b, "Company size: %s.\n", pc.Lead.Facts.CompanySize)
	}
	if pc.Lead.Facts.TechSavviness != "" {
		fmt.Fprintf(&b, "Tech savviness: %s.\n", pc.Lead.Facts.TechSavviness)
	}

	sender := pc.Sender
	if sender == nil {
		sender = &settings.SenderProfile{}
	}
	fmt.Fprintf(&b, "\nSender: %s from %s. Offering: %s.\n",
		displayOr(sender.SenderName, "the sender"),
		displayOr(sender.CompanyName, "their company"),
		displayOr(sender.ServiceDescription, "their services"))
	if sender.BookingLink != "" {
		fmt.Fprintf(&b, "Booking link to include: %s\n", sender.BookingLink)
	}
	if sender.EmailTone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", sender.EmailTone)
	} else if pc.Lead.Facts.Tone != "" {
		fmt.Fprintf(&b, "Tone: match the business's %s style.\n", pc.Lead.Facts.Tone)
	}
	if sender.CustomInstructions != "" {
		fmt.Fprintf(&b, "Extra instructions: %s\n", sender.CustomInstructions)
	}

	if pc.Intent == models.IntentFollowUp {
		fmt.Fprintf(&b, "\nThis is follow-up #%d to an earlier pitch that got no reply. "+
			"Keep it shorter than the original, reference the earlier email briefly, and stay polite.\n",
			pc.Lead.FollowUpCount+1)
	}

	b.WriteString("\nStructure: open with a specific hook about their business, " +
		"name the problem you noticed, briefly agitate what it costs them, " +
		"present the solution, and close with a low-friction call to action " +
		"(a quick reply or a 15-minute call). Under 150 words. Plain text.")

	return b.String()
}

func displayOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

var (
	_ EmailWriter    = (*Generator)(nil)
	_ FactsExtractor = (*Generator)(nil)
)

// Package composer drafts personalized internship outreach emails with a
// generative model, falling back to a fixed template when generation fails.
package composer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/outreach-agent/internal/companies"
	"github.com/jonathan/outreach-agent/internal/llm"
	"github.com/jonathan/outreach-agent/internal/logging"
	"github.com/jonathan/outreach-agent/internal/prompts"
	"github.com/jonathan/outreach-agent/internal/ratelimit"
	"github.com/jonathan/outreach-agent/internal/types"
)

const (
	promptFile        = "outreach.json"
	emailPromptKey    = "internship-email"
	fallbackPromptKey = "fallback-body"

	// DefaultInternshipType labels the role when none is requested.
	DefaultInternshipType = "Software Development Intern"

	defaultIndustry  = "technology"
	progressInterval = 5
)

// Options configures a Composer.
type Options struct {
	// Pacer spaces out generation requests in GenerateBulk.
	Pacer ratelimit.Pacer
	// Tier selects the model used for drafting.
	Tier llm.ModelTier
	// Now overrides the clock.
	Now func() time.Time
}

// Composer writes one email per contact on behalf of a sender.
type Composer struct {
	client    llm.Client
	directory *companies.Directory
	sender    types.SenderProfile
	pacer     ratelimit.Pacer
	tier      llm.ModelTier
	now       func() time.Time
}

// New creates a Composer. A nil directory uses the built-in company table.
func New(client llm.Client, directory *companies.Directory, sender types.SenderProfile, opts Options) *Composer {
	if directory == nil {
		directory = companies.Default()
	}
	c := &Composer{
		client:    client,
		directory: directory,
		sender:    sender,
		pacer:     opts.Pacer,
		tier:      opts.Tier,
		now:       opts.Now,
	}
	if c.pacer == nil {
		c.pacer = ratelimit.Unlimited()
	}
	if c.tier == "" {
		c.tier = llm.TierStandard
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// NormalizeEmailType maps an empty or unknown type to an application email.
func NormalizeEmailType(emailType string) string {
	switch emailType {
	case types.EmailTypeApplication, types.EmailTypeInquiry:
		return emailType
	default:
		return types.EmailTypeApplication
	}
}

// WritePersonalizedEmail drafts an email for contact. It never fails: any
// generation error yields the template email with Error set.
func (c *Composer) WritePersonalizedEmail(ctx context.Context, contact types.Contact, emailType, internshipType string) types.GeneratedEmail {
	emailType = NormalizeEmailType(emailType)
	ctx = logging.WithFields(ctx, zap.String("company", contact.Company), zap.String("email_type", emailType))

	email := c.envelope(contact, emailType, internshipType)

	text, err := c.generate(ctx, contact, emailType, internshipType)
	if err != nil {
		logging.Error(ctx, "email generation failed, using template", zap.Error(err))
		label := internshipType
		if label == "" {
			label = "Software Development"
		}
		company := contact.Company
		if company == "" {
			company = "Your Company"
		}
		email.Subject = fmt.Sprintf("Internship Application - %s at %s", label, company)
		email.Body = c.FallbackBody(contact, internshipType)
		email.Error = err.Error()
		return email
	}

	parsed := ParseEmailResponse(llm.StripCodeFence(text))
	email.Subject = parsed.Subject
	email.Body = parsed.Body
	if n := utf8.RuneCountInString(strings.TrimSpace(email.Body)); n < MinBodyLength {
		logging.Warn(ctx, "generated body too short, using template", zap.Int("length", n))
		email.Body = c.FallbackBody(contact, internshipType)
	}
	email.ConfidenceScore = ConfidenceScore(email.Subject, email.Body)

	logging.Info(ctx, "generated email", zap.Float64("confidence", email.ConfidenceScore))
	return email
}

func (c *Composer) generate(ctx context.Context, contact types.Contact, emailType, internshipType string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &GenerationError{Company: contact.Company, Message: fmt.Sprintf("panic: %v", r)}
		}
	}()

	prompt, err := c.Prompt(contact, emailType, internshipType)
	if err != nil {
		return "", &GenerationError{Company: contact.Company, Message: "failed to build prompt", Cause: err}
	}
	text, err = c.client.GenerateContent(ctx, prompt, c.tier)
	if err != nil {
		return "", &GenerationError{Company: contact.Company, Message: "model request failed", Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{Company: contact.Company, Message: "empty response"}
	}
	return text, nil
}

func (c *Composer) envelope(contact types.Contact, emailType, internshipType string) types.GeneratedEmail {
	company := contact.Company
	if company == "" {
		company = "Company"
	}
	return types.GeneratedEmail{
		Email:          contact.Email,
		Name:           contact.Name,
		Company:        company,
		Title:          contact.Title,
		LinkedInURL:    contact.LinkedInURL,
		Recipient:      contact.Recipient(),
		GeneratedAt:    c.now(),
		EmailType:      emailType,
		InternshipType: internshipType,
	}
}

// Prompt builds the generation prompt for contact.
func (c *Composer) Prompt(contact types.Contact, emailType, internshipType string) (string, error) {
	if internshipType == "" {
		internshipType = DefaultInternshipType
	}
	company := contact.Company
	if company == "" {
		company = "the company"
	}
	profile := c.directory.Profile(contact.Company)

	purpose, goal := "internship application", "internship"
	if emailType == types.EmailTypeInquiry {
		purpose, goal = "internship inquiry", "information about upcoming internship openings"
	}

	data := c.senderData()
	data["Purpose"] = purpose
	data["Goal"] = goal
	data["RecipientName"] = contact.Recipient()
	data["Company"] = company
	data["Business"] = profile.Business
	data["Culture"] = profile.Culture
	data["InternshipType"] = internshipType

	return prompts.Render(promptFile, emailPromptKey, data)
}

// FallbackBody renders the template email used when generation cannot be trusted.
func (c *Composer) FallbackBody(contact types.Contact, internshipType string) string {
	if internshipType == "" {
		internshipType = "software internship"
	}
	company := contact.Company
	if company == "" {
		company = "your company"
	}
	industry := contact.Industry
	if industry == "" {
		industry = defaultIndustry
	}

	data := c.senderData()
	data["RecipientName"] = contact.Recipient()
	data["Company"] = company
	data["InternshipType"] = internshipType
	data["Industry"] = industry

	return prompts.Format(prompts.MustGet(promptFile, fallbackPromptKey), data)
}

func (c *Composer) senderData() map[string]string {
	return map[string]string{
		"SenderName":     c.sender.Name,
		"CurrentRole":    c.sender.CurrentRole,
		"Year":           c.sender.Year,
		"Education":      c.sender.Education,
		"Skills":         c.sender.Skills,
		"Experience":     c.sender.Experience,
		"Achievements":   c.sender.Achievements,
		"GraduationYear": c.sender.GraduationYear,
	}
}

// BulkOptions selects the email and internship type for GenerateBulk.
type BulkOptions struct {
	EmailType      string
	InternshipType string
}

// GenerateBulk drafts one email per deliverable contact, pacing requests.
// It returns the emails drafted so far when ctx is cancelled.
func (c *Composer) GenerateBulk(ctx context.Context, contacts []types.Contact, opts BulkOptions) ([]types.GeneratedEmail, error) {
	if opts.InternshipType == "" {
		opts.InternshipType = DefaultInternshipType
	}

	deliverable := types.Deliverable(contacts)
	if skipped := len(contacts) - len(deliverable); skipped > 0 {
		logging.Warn(ctx, "skipping contacts without an address", zap.Int("skipped", skipped))
	}

	emails := make([]types.GeneratedEmail, 0, len(deliverable))
	for i, contact := range deliverable {
		if err := c.pacer.Wait(ctx); err != nil {
			return emails, err
		}

		logging.Info(ctx, "generating email",
			zap.Int("index", i+1),
			zap.Int("total", len(deliverable)),
			zap.String("company", contact.Company))

		emails = append(emails, c.WritePersonalizedEmail(ctx, contact, opts.EmailType, opts.InternshipType))

		if (i+1)%progressInterval == 0 {
			logging.Info(ctx, "generation progress", zap.Int("completed", i+1), zap.Int("total", len(deliverable)))
		}
	}
	return emails, nil
}

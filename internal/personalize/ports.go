package personalize

import (
	"context"
	"strings"
)

// Profile is the generator's input: the lead attributes that matter for
// copywriting. Empty string means the field is absent.
type Profile struct {
	Name        string
	Company     string
	JobTitle    string
	Location    string
	Industry    string
	CompanySize string
}

// Context renders the profile as the compact pipe-delimited string fed to
// the prompts. Absent fields are omitted; ordering is fixed.
func (p Profile) Context() string {
	var parts []string
	if p.Name != "" {
		parts = append(parts, "Name: "+p.Name)
	}
	if p.Company != "" {
		parts = append(parts, "Company: "+p.Company)
	}
	if p.JobTitle != "" {
		parts = append(parts, "Title: "+p.JobTitle)
	}
	if p.Location != "" {
		parts = append(parts, "Location: "+p.Location)
	}
	if p.Industry != "" {
		parts = append(parts, "Industry: "+p.Industry)
	}
	if p.CompanySize != "" {
		parts = append(parts, "Company Size: "+p.CompanySize)
	}
	return strings.Join(parts, " | ")
}

func (p Profile) FirstName() string {
	fields := strings.Fields(p.Name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

type EmailDraft struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Drafts struct {
	SMS         string     `json:"sms"`
	Email       EmailDraft `json:"email"`
	LinkedIn    string     `json:"linkedin"`
	ContextUsed string     `json:"context_used"`
}

// Generator produces a full set of drafts for one lead. Implementations:
// the OpenAI-backed service, the deterministic Mock, and the fallback
// wrapper combining both.
type Generator interface {
	Generate(ctx context.Context, p Profile) (Drafts, error)
}

// Branding carries the booking link and sender identity every outbound
// email must contain.
type Branding struct {
	CalendlyURL   string
	SenderName    string
	SenderTitle   string
	SenderCompany string
	SenderPhone   string
	SenderEmail   string
}

// SignatureBlock is the fixed signature appended to email bodies.
func (b Branding) SignatureBlock() string {
	sig := "\n\nBest regards,\n" +
		b.SenderName + "\n" +
		b.SenderTitle + "\n" +
		b.SenderCompany + "\n" +
		b.SenderPhone + "\n" +
		b.SenderEmail
	return strings.TrimRight(sig, " \n")
}

// EnsureLinkAndSignature enforces the email body postconditions: booking
// link present (appended first when missing), then signature with at least
// sender name and company.
func (b Branding) EnsureLinkAndSignature(body string) string {
	out := strings.TrimSpace(body)
	if b.CalendlyURL != "" && !strings.Contains(out, b.CalendlyURL) {
		out += "\n\n" + b.CalendlyURL + "\n"
	}
	if !strings.Contains(out, b.SenderName) || !strings.Contains(out, b.SenderCompany) {
		out += b.SignatureBlock() + "\n"
	}
	return out
}

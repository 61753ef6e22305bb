package personalize

import (
	"context"
	"fmt"
)

// Mock is the deterministic generator used when no backend is configured
// and as the fallback when the backend fails. Identical input produces
// identical output.
type Mock struct {
	branding Branding
}

func NewMock(b Branding) *Mock {
	return &Mock{branding: b}
}

func (m *Mock) Generate(_ context.Context, p Profile) (Drafts, error) {
	name := p.FirstName()
	company := p.Company
	if company == "" {
		company = "your company"
	}
	title := p.JobTitle
	if title == "" {
		title = "your role"
	}

	sms := fmt.Sprintf("Hi %s! Quick question about %s's coverage—worth a quick chat this week?", name, company)

	emailBody := fmt.Sprintf(
		"Hi %s,\n\n"+
			"I noticed you're %s at %s. I specialize in helping teams like yours "+
			"optimize insurance coverage and reduce costs.\n\n"+
			"%s\n%s\n",
		name, title, company, m.branding.CalendlyURL, m.branding.SignatureBlock(),
	)

	linkedin := fmt.Sprintf("Hi %s — impressed by the work at %s. I help %ss optimize insurance. Would love to connect!", name, company, title)

	return Drafts{
		SMS: clampSMS(sms),
		Email: EmailDraft{
			Subject: fmt.Sprintf("Insurance review for %s", company),
			Body:    emailBody,
		},
		LinkedIn:    linkedin,
		ContextUsed: p.Context(),
	}, nil
}

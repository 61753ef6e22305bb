package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/solisa-ai/leadflow/internal/channels"
	"github.com/solisa-ai/leadflow/internal/personalize"
)

const fallbackPhone = "+15550000000"

// Service owns lead capture, the message timeline and the direct send
// endpoints. The follow-up orchestration lives in the followup package and
// calls back into SendSMS/SendEmail.
type Service struct {
	repo        Repo
	gen         personalize.Generator
	sms         channels.SMSSender
	email       channels.EmailSender
	calendlyURL string
	log         *zap.Logger
}

func NewService(
	repo Repo,
	gen personalize.Generator,
	sms channels.SMSSender,
	email channels.EmailSender,
	calendlyURL string,
	log *zap.Logger,
) *Service {
	return &Service{
		repo:        repo,
		gen:         gen,
		sms:         sms,
		email:       email,
		calendlyURL: calendlyURL,
		log:         log,
	}
}

func (s *Service) Repo() Repo { return s.repo }

// Capture creates a lead with placeholder enrichment. Email must be unique.
func (s *Service) Capture(ctx context.Context, name, email, phone string) (*Lead, error) {
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email required: %w", ErrValidation)
	}
	if _, err := s.repo.GetLeadByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("lead with email %s already exists: %w", email, ErrConflict)
	}

	if phone == "" {
		phone = fallbackPhone
	}

	now := time.Now().UTC()
	l := &Lead{
		Name:       name,
		Email:      email,
		Phone:      phone,
		Status:     "new",
		Enriched:   EnrichedSuccess,
		EnrichedAt: &now,
	}
	enrich(l)

	if err := s.repo.CreateLead(ctx, l); err != nil {
		return nil, err
	}
	s.log.Info("lead captured", zap.Int64("lead_id", l.ID), zap.String("email", email))
	return l, nil
}

// enrich fills the placeholder enrichment fields, derived from the email
// domain so repeated captures are reproducible.
func enrich(l *Lead) {
	domain := "unknown.com"
	if at := strings.Index(l.Email, "@"); at >= 0 && at < len(l.Email)-1 {
		domain = l.Email[at+1:]
	}
	label := domain
	if dot := strings.Index(domain, "."); dot > 0 {
		label = domain[:dot]
	}
	company := strings.ToUpper(label[:1]) + label[1:] + " Inc."
	slug := strings.ToLower(strings.ReplaceAll(l.Name, " ", "-"))

	l.Company = StrPtr(company)
	l.JobTitle = StrPtr("Data Analyst")
	l.Location = StrPtr("Austin, TX")
	l.LinkedinURL = StrPtr("https://linkedin.com/in/" + slug)
	l.CompanySize = StrPtr("50-200 employees")
	l.Industry = StrPtr(inferIndustry(domain))
}

func inferIndustry(domain string) string {
	d := strings.ToLower(domain)
	for _, k := range []string{"tech", "software", "ai", "cloud"} {
		if strings.Contains(d, k) {
			return "Technology"
		}
	}
	for _, k := range []string{"bank", "fin", "pay", "card"} {
		if strings.Contains(d, k) {
			return "Finance"
		}
	}
	for _, k := range []string{"health", "med", "care", "bio"} {
		if strings.Contains(d, k) {
			return "Healthcare"
		}
	}
	return "Business Services"
}

func (s *Service) Get(ctx context.Context, id int64) (*Lead, error) {
	return s.repo.GetLead(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Lead, error) {
	return s.repo.ListLeads(ctx)
}

func (s *Service) Thread(ctx context.Context, leadID int64) ([]Message, error) {
	if _, err := s.repo.GetLead(ctx, leadID); err != nil {
		return nil, err
	}
	return s.repo.Thread(ctx, leadID)
}

// ProfileFor maps a lead onto the generator's input, once, at this boundary.
func ProfileFor(l *Lead) personalize.Profile {
	return personalize.Profile{
		Name:        l.Name,
		Company:     Deref(l.Company),
		JobTitle:    Deref(l.JobTitle),
		Location:    Deref(l.Location),
		Industry:    Deref(l.Industry),
		CompanySize: Deref(l.CompanySize),
	}
}

// Personalize generates drafts for a lead without persisting anything.
func (s *Service) Personalize(ctx context.Context, leadID int64) (*Lead, personalize.Drafts, error) {
	l, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return nil, personalize.Drafts{}, err
	}
	drafts, err := s.gen.Generate(ctx, ProfileFor(l))
	if err != nil {
		return nil, personalize.Drafts{}, err
	}
	return l, drafts, nil
}

// SendSMS sends to the lead's phone and records an outbound queued message.
// When override is empty the text is freshly generated from the profile.
func (s *Service) SendSMS(ctx context.Context, leadID int64, override string) (*Message, channels.Receipt, error) {
	l, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return nil, channels.Receipt{}, err
	}

	text := override
	if text == "" {
		drafts, err := s.gen.Generate(ctx, ProfileFor(l))
		if err != nil {
			return nil, channels.Receipt{}, err
		}
		text = drafts.SMS
	}

	to := l.Phone
	if to == "" {
		to = fallbackPhone
	}
	receipt, err := s.sms.Send(ctx, to, text)
	if err != nil {
		return nil, channels.Receipt{}, fmt.Errorf("sms send: %w", err)
	}

	m := &Message{
		LeadID:      leadID,
		Direction:   DirectionOutbound,
		Channel:     ChannelSMS,
		Body:        text,
		ProviderSID: StrPtr(receipt.SID),
		Status:      StatusQueued,
	}
	if err := s.repo.SaveMessage(ctx, m); err != nil {
		return nil, receipt, err
	}
	return m, receipt, nil
}

// SendEmail generates (or takes override) subject/body, guarantees the
// booking link, writes the outbox artifact, sends, and records the message.
func (s *Service) SendEmail(ctx context.Context, leadID int64, overrideSubject, overrideBody string) (*Message, channels.Receipt, error) {
	l, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return nil, channels.Receipt{}, err
	}

	subject, body := overrideSubject, overrideBody
	if body == "" {
		drafts, err := s.gen.Generate(ctx, ProfileFor(l))
		if err != nil {
			return nil, channels.Receipt{}, err
		}
		subject, body = drafts.Email.Subject, drafts.Email.Body
	}
	body = s.withBookingLink(body)

	receipt, err := s.email.Send(ctx, l.Name, l.Email, subject, body)
	if err != nil {
		return nil, channels.Receipt{}, fmt.Errorf("email send: %w", err)
	}

	m := &Message{
		LeadID:      leadID,
		Direction:   DirectionOutbound,
		Channel:     ChannelEmail,
		Subject:     StrPtr(subject),
		Body:        body,
		ProviderSID: StrPtr(receipt.SID),
		Status:      StatusQueued,
	}
	if err := s.repo.SaveMessage(ctx, m); err != nil {
		return nil, receipt, err
	}
	return m, receipt, nil
}

// ComposeEmail writes the artifact only; nothing is persisted or sent.
func (s *Service) ComposeEmail(ctx context.Context, leadID int64) (path, subject string, err error) {
	l, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return "", "", err
	}
	drafts, err := s.gen.Generate(ctx, ProfileFor(l))
	if err != nil {
		return "", "", err
	}
	body := s.withBookingLink(drafts.Email.Body)
	path, err = s.email.Compose(l.Name, l.Email, drafts.Email.Subject, body)
	return path, drafts.Email.Subject, err
}

func (s *Service) withBookingLink(body string) string {
	if s.calendlyURL == "" || strings.Contains(body, s.calendlyURL) {
		return body
	}
	return strings.TrimRight(body, " \n") + "\n\nBook a time: " + s.calendlyURL + "\n"
}

// RecordInboundSMS matches the sender's phone to a lead and appends the
// received message.
func (s *Service) RecordInboundSMS(ctx context.Context, from, body string) (*Lead, *Message, error) {
	if strings.TrimSpace(from) == "" {
		return nil, nil, fmt.Errorf("From required: %w", ErrValidation)
	}
	l, err := s.repo.GetLeadByPhone(ctx, strings.TrimSpace(from))
	if err != nil {
		return nil, nil, fmt.Errorf("no lead matched by phone: %w", err)
	}
	m := &Message{
		LeadID:    l.ID,
		Direction: DirectionInbound,
		Channel:   ChannelSMS,
		Body:      body,
		Status:    StatusReceived,
	}
	if err := s.repo.SaveMessage(ctx, m); err != nil {
		return nil, nil, err
	}
	return l, m, nil
}

// RecordInboundEmail matches the sender's address to a lead and appends the
// received message.
func (s *Service) RecordInboundEmail(ctx context.Context, from, subject, text string) (*Lead, *Message, error) {
	if strings.TrimSpace(from) == "" {
		return nil, nil, fmt.Errorf("From required: %w", ErrValidation)
	}
	l, err := s.repo.GetLeadByEmail(ctx, strings.TrimSpace(from))
	if err != nil {
		return nil, nil, fmt.Errorf("no lead matched by email: %w", err)
	}
	m := &Message{
		LeadID:    l.ID,
		Direction: DirectionInbound,
		Channel:   ChannelEmail,
		Subject:   StrPtr(subject),
		Body:      text,
		Status:    StatusReceived,
	}
	if err := s.repo.SaveMessage(ctx, m); err != nil {
		return nil, nil, err
	}
	return l, m, nil
}

package personalize

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solisa-ai/leadflow/internal/ai"
)

const maxSMSLen = 160

// service is the real generator. The three channel drafts are generated
// concurrently; any failure fails the whole call so the fallback wrapper
// never returns a half-real, half-mock result.
type service struct {
	ai       ai.AI
	branding Branding
	log      *zap.Logger
}

// NewGenerator wires the generator stack: mock only when no backend client
// is configured, otherwise the real service wrapped with the mock fallback.
func NewGenerator(client ai.AI, b Branding, log *zap.Logger) Generator {
	mock := NewMock(b)
	if client == nil {
		log.Info("personalization mode: MOCK")
		return mock
	}
	log.Info("personalization mode: GPT")
	return WithFallback(&service{ai: client, branding: b, log: log}, mock, log)
}

func (s *service) Generate(ctx context.Context, p Profile) (Drafts, error) {
	leadCtx := p.Context()

	var sms, linkedin string
	var email EmailDraft

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sms, err = s.generateSMS(gctx, leadCtx)
		return err
	})
	g.Go(func() error {
		var err error
		email, err = s.generateEmail(gctx, leadCtx)
		return err
	})
	g.Go(func() error {
		var err error
		linkedin, err = s.generateLinkedIn(gctx, leadCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Drafts{}, fmt.Errorf("draft generation: %w", err)
	}

	return Drafts{
		SMS:         sms,
		Email:       email,
		LinkedIn:    linkedin,
		ContextUsed: leadCtx,
	}, nil
}

func (s *service) generateSMS(ctx context.Context, leadCtx string) (string, error) {
	raw, err := s.ai.Complete(ctx, fmt.Sprintf(smsPromptTmpl, leadCtx))
	if err != nil {
		return "", err
	}
	return clampSMS(strings.TrimSpace(raw)), nil
}

func (s *service) generateEmail(ctx context.Context, leadCtx string) (EmailDraft, error) {
	prompt := fmt.Sprintf(emailPromptTmpl, leadCtx, s.branding.CalendlyURL, s.branding.SignatureBlock())
	raw, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		return EmailDraft{}, err
	}

	subject, body := parseSubjectBody(raw)
	if subject == "" {
		subject = defaultSubject
	}
	// even an empty body goes through the postconditions, so the final
	// email always carries the link and signature
	body = s.branding.EnsureLinkAndSignature(body)

	return EmailDraft{Subject: subject, Body: body}, nil
}

func (s *service) generateLinkedIn(ctx context.Context, leadCtx string) (string, error) {
	raw, err := s.ai.Complete(ctx, fmt.Sprintf(linkedinPromptTmpl, leadCtx))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// parseSubjectBody expects a SUBJECT: line, a blank line, a BODY: marker
// and the remaining lines as the body.
func parseSubjectBody(raw string) (subject, body string) {
	var bodyLines []string
	inBody := false
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "SUBJECT:"):
			subject = strings.TrimSpace(strings.TrimPrefix(trimmed, "SUBJECT:"))
		case strings.HasPrefix(trimmed, "BODY:"):
			inBody = true
		case inBody:
			bodyLines = append(bodyLines, line)
		}
	}
	return subject, strings.TrimSpace(strings.Join(bodyLines, "\n"))
}

func clampSMS(text string) string {
	runes := []rune(text)
	if len(runes) <= maxSMSLen {
		return text
	}
	return string(runes[:maxSMSLen])
}

// fallbackGenerator delegates to the primary and falls back atomically to
// the secondary on any error. Selected at construction, not via exception
// control flow in callers.
type fallbackGenerator struct {
	primary  Generator
	fallback Generator
	log      *zap.Logger
}

func WithFallback(primary, fallback Generator, log *zap.Logger) Generator {
	return &fallbackGenerator{primary: primary, fallback: fallback, log: log}
}

func (f *fallbackGenerator) Generate(ctx context.Context, p Profile) (Drafts, error) {
	drafts, err := f.primary.Generate(ctx, p)
	if err == nil {
		return drafts, nil
	}
	f.log.Warn("generation backend failed, using mock drafts", zap.Error(err))
	return f.fallback.Generate(ctx, p)
}

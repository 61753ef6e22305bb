package followup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solisa-ai/leadflow/internal/ai"
	"github.com/solisa-ai/leadflow/internal/leads"
	"github.com/solisa-ai/leadflow/internal/personalize"
)

const (
	// threadContextLimit bounds the reconstructed-context window.
	threadContextLimit = 12
	// agentHistoryLimit bounds the history fed to the agent analyze call.
	agentHistoryLimit = 15

	noContextPlaceholder = "(no prior context)"
)

// Service is the autopilot orchestrator: it throttles per lead, gathers
// context, classifies, drafts, persists and (on the agent path) dispatches.
type Service struct {
	repo        leads.Repo
	sender      *leads.Service
	gen         personalize.Generator
	state       StateStore
	aiClient    ai.AI // nil in mock mode; the agent analyze call then uses the fallback plan
	calendlyURL string
	enabled     bool
	minInterval time.Duration
	log         *zap.Logger
}

func NewService(
	repo leads.Repo,
	sender *leads.Service,
	gen personalize.Generator,
	state StateStore,
	aiClient ai.AI,
	calendlyURL string,
	enabled bool,
	minInterval time.Duration,
	log *zap.Logger,
) *Service {
	return &Service{
		repo:        repo,
		sender:      sender,
		gen:         gen,
		state:       state,
		aiClient:    aiClient,
		calendlyURL: calendlyURL,
		enabled:     enabled,
		minInterval: minInterval,
		log:         log,
	}
}

// Ingest stores text as the lead's current context and appends a note to
// the timeline. Returns the stored byte count.
func (s *Service) Ingest(ctx context.Context, leadID int64, text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("text required: %w", leads.ErrValidation)
	}
	if _, err := s.repo.GetLead(ctx, leadID); err != nil {
		return 0, err
	}
	if err := s.state.IngestContext(ctx, leadID, text); err != nil {
		return 0, err
	}

	note := &leads.Message{
		LeadID:    leadID,
		Direction: leads.DirectionInbound,
		Channel:   leads.ChannelNote,
		Body:      "[INGESTED CONTEXT]\n" + text,
		Status:    leads.StatusReceived,
	}
	if err := s.repo.SaveMessage(ctx, note); err != nil {
		return 0, err
	}
	return len(text), nil
}

// Autopilot runs one throttled decision cycle: classify the gathered
// context, draft sms+email, persist both as draft messages and return the
// three-step plan. The throttle slot is reserved up front and rolled back
// if anything after the reservation fails, so an errored run never blocks
// the retry.
func (s *Service) Autopilot(ctx context.Context, leadID int64) (*RunResult, error) {
	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if !s.enabled {
		return &RunResult{LeadID: leadID, Disabled: true}, nil
	}

	ok, err := s.state.BeginRun(ctx, leadID, s.minInterval)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Info("autopilot throttled", zap.Int64("lead_id", leadID))
		return &RunResult{LeadID: leadID, Throttled: true}, nil
	}

	res, err := s.execute(ctx, lead)
	if err != nil {
		if ferr := s.state.FailRun(ctx, leadID); ferr != nil {
			s.log.Error("throttle rollback failed", zap.Int64("lead_id", leadID), zap.Error(ferr))
		}
		return nil, err
	}
	return res, nil
}

func (s *Service) execute(ctx context.Context, lead *leads.Lead) (*RunResult, error) {
	usedCtx, ok, err := s.state.Context(ctx, lead.ID)
	if err != nil {
		return nil, err
	}
	if !ok || usedCtx == "" {
		usedCtx, err = s.recentThreadAsText(ctx, lead.ID)
		if err != nil {
			return nil, err
		}
	}
	if usedCtx == "" {
		usedCtx = noContextPlaceholder
	}

	// drafts depend on the profile only, classification on the context
	// only, so both run concurrently
	var drafts personalize.Drafts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var genErr error
		drafts, genErr = s.gen.Generate(gctx, leads.ProfileFor(lead))
		return genErr
	})
	cls := Classify(usedCtx)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	emailBody := ensureBookingLink(drafts.Email.Body, s.calendlyURL)

	// drafts land in the timeline before anything is sent, so the thread
	// distinguishes proposed from sent
	smsDraft := &leads.Message{
		LeadID:    lead.ID,
		Direction: leads.DirectionOutbound,
		Channel:   leads.ChannelSMS,
		Body:      drafts.SMS,
		Status:    leads.StatusDraft,
	}
	emailDraft := &leads.Message{
		LeadID:    lead.ID,
		Direction: leads.DirectionOutbound,
		Channel:   leads.ChannelEmail,
		Subject:   leads.StrPtr(drafts.Email.Subject),
		Body:      emailBody,
		Status:    leads.StatusDraft,
	}
	if err := s.repo.SaveMessage(ctx, smsDraft); err != nil {
		return nil, err
	}
	if err := s.repo.SaveMessage(ctx, emailDraft); err != nil {
		return nil, err
	}

	reasoning := fmt.Sprintf("Detected intent='%s' with objections=%v. Drafting next-best actions.",
		cls.Intent, cls.Objections)

	return &RunResult{
		LeadID:      lead.ID,
		Executed:    true,
		Reasoning:   reasoning,
		State:       &cls,
		Plan:        BuildPlan(drafts, emailBody, s.calendlyURL),
		UsedContext: usedCtx,
	}, nil
}

// recentThreadAsText rebuilds context from the most recent messages,
// rendered chronologically as "[Speaker CHANNEL subj=...] body" lines.
func (s *Service) recentThreadAsText(ctx context.Context, leadID int64) (string, error) {
	msgs, err := s.repo.RecentMessages(ctx, leadID, threadContextLimit)
	if err != nil {
		return "", err
	}

	var lines []string
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		who := "Agent"
		if m.Direction == leads.DirectionInbound {
			who = "Prospect"
		}
		subj := ""
		if m.Subject != nil && *m.Subject != "" {
			subj = " subj=" + *m.Subject
		}
		lines = append(lines, fmt.Sprintf("[%s %s%s] %s", who, strings.ToUpper(m.Channel), subj, m.Body))
	}
	return strings.Join(lines, "\n"), nil
}

package followup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/solisa-ai/leadflow/internal/leads"
)

const agentDefaultSubject = "Follow-up on coverage & quick booking"

// AgentPlan is the structured output of the combined analyze call.
type AgentPlan struct {
	Summary            string              `json:"summary"`
	Stage              string              `json:"stage"`
	IntentSignal       string              `json:"intent_signal"`
	Objections         []string            `json:"objections"`
	RecommendedActions []RecommendedAction `json:"recommended_actions"`
	SMS1               string              `json:"sms_1"`
	SMS2               string              `json:"sms_2"`
	Email              string              `json:"email"`
}

type RecommendedAction struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Body  string `json:"body"`
	When  string `json:"when"`
}

const (
	StepSent    = "sent"
	StepFailed  = "failed"
	StepSkipped = "skipped"
)

// StepResult records one action of the dispatch sequence. The sequence is
// best-effort with no rollback: a failed step is recorded and the next one
// still runs.
type StepResult struct {
	Action string `json:"action"` // sms_1 | email | sms_2 | escalate
	Status string `json:"status"` // sent | failed | skipped
	Detail string `json:"detail,omitempty"`
}

type AgentResult struct {
	LeadID    int64        `json:"lead_id"`
	Disabled  bool         `json:"disabled,omitempty"`
	Throttled bool         `json:"throttled,omitempty"`
	Executed  bool         `json:"executed,omitempty"`
	Plan      *AgentPlan   `json:"plan,omitempty"`
	Steps     []StepResult `json:"steps,omitempty"`
}

// RunAgent is the executing entry point: analyze the history into a plan,
// then dispatch sms_1, email, sms_2 and a conditional escalation note.
// Shares the throttle with Autopilot.
func (s *Service) RunAgent(ctx context.Context, leadID int64) (*AgentResult, error) {
	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if !s.enabled {
		return &AgentResult{LeadID: leadID, Disabled: true}, nil
	}

	ok, err := s.state.BeginRun(ctx, leadID, s.minInterval)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Info("agent throttled", zap.Int64("lead_id", leadID))
		return &AgentResult{LeadID: leadID, Throttled: true}, nil
	}

	events, err := s.repo.RecentMessages(ctx, leadID, agentHistoryLimit)
	if err != nil {
		if ferr := s.state.FailRun(ctx, leadID); ferr != nil {
			s.log.Error("throttle rollback failed", zap.Int64("lead_id", leadID), zap.Error(ferr))
		}
		return nil, err
	}

	plan := s.analyze(ctx, lead, events)
	steps := s.act(ctx, leadID, plan)

	return &AgentResult{
		LeadID:   leadID,
		Executed: true,
		Plan:     plan,
		Steps:    steps,
	}, nil
}

// analyze runs the combined LLM call. Backend absence, call failure and
// parse failure all land on the hardcoded fallback plan.
func (s *Service) analyze(ctx context.Context, lead *leads.Lead, events []leads.Message) *AgentPlan {
	if s.aiClient == nil {
		return s.fallbackPlan()
	}

	raw, err := s.aiClient.CompleteJSON(ctx, agentSystemPrompt, s.agentPrompt(lead, events))
	if err != nil {
		s.log.Warn("agent analyze failed", zap.Error(err))
		return s.fallbackPlan()
	}

	var plan AgentPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		s.log.Warn("agent plan parse failed", zap.Error(err))
		return s.fallbackPlan()
	}
	return &plan
}

func (s *Service) agentPrompt(lead *leads.Lead, events []leads.Message) string {
	who := strings.TrimSpace(fmt.Sprintf("%s — %s @ %s",
		lead.Name, leads.Deref(lead.JobTitle), leads.Deref(lead.Company)))

	// events arrive newest-first; the prompt wants most recent last
	var lines []string
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		line := strings.TrimSpace(fmt.Sprintf("[%s] %s %s: %s %s",
			e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			strings.ToUpper(e.Channel), e.Direction, leads.Deref(e.Subject), e.Body))
		lines = append(lines, line)
	}
	history := strings.Join(lines, "\n")
	if history == "" {
		history = "(no history)"
	}

	return fmt.Sprintf(agentTaskTmpl,
		who, leads.Deref(lead.Location), leads.Deref(lead.Industry),
		leads.Deref(lead.CompanySize), history, s.calendlyURL)
}

func (s *Service) fallbackPlan() *AgentPlan {
	return &AgentPlan{
		Summary:      "Light interest; pricing concern. Recommend quick nudge + ROI email.",
		Stage:        "evaluating",
		IntentSignal: "asked pricing last call",
		Objections:   []string{"too expensive"},
		RecommendedActions: []RecommendedAction{
			{Type: "sms", Title: "Nudge", Body: "Can price a lighter plan for apples-to-apples. Want me to send it?", When: "now"},
			{Type: "email", Title: "ROI example", Body: "Send ROI proof + booking link", When: "now"},
		},
		SMS1:  "Quick one — I can quote a lighter plan to compare apples-to-apples. Want me to send it?",
		SMS2:  "We just cut a similar team's premium 14% without losing coverage. Want a side-by-side?",
		Email: fmt.Sprintf("Subject: Quick path to savings\n\nHi there…\n\nBook a time:\n%s\n", s.calendlyURL),
	}
}

// act dispatches the plan strictly in sequence; each step's outcome is
// recorded and a failure never aborts the remaining steps.
func (s *Service) act(ctx context.Context, leadID int64, plan *AgentPlan) []StepResult {
	var steps []StepResult

	steps = append(steps, s.sendPlannedSMS(ctx, leadID, "sms_1", plan.SMS1))
	steps = append(steps, s.sendPlannedEmail(ctx, leadID, plan.Email))
	steps = append(steps, s.sendPlannedSMS(ctx, leadID, "sms_2", plan.SMS2))
	steps = append(steps, s.escalateIfNeeded(ctx, leadID, plan))

	return steps
}

func (s *Service) sendPlannedSMS(ctx context.Context, leadID int64, action, text string) StepResult {
	if strings.TrimSpace(text) == "" {
		return StepResult{Action: action, Status: StepSkipped, Detail: "no draft"}
	}
	if _, _, err := s.sender.SendSMS(ctx, leadID, text); err != nil {
		s.log.Warn("agent sms step failed", zap.Int64("lead_id", leadID), zap.String("action", action), zap.Error(err))
		return StepResult{Action: action, Status: StepFailed, Detail: err.Error()}
	}
	return StepResult{Action: action, Status: StepSent}
}

func (s *Service) sendPlannedEmail(ctx context.Context, leadID int64, email string) StepResult {
	subject, body := parseAgentEmail(strings.TrimSpace(email))
	body = ensureBookingLink(body, s.calendlyURL)

	if _, _, err := s.sender.SendEmail(ctx, leadID, subject, body); err != nil {
		s.log.Warn("agent email step failed", zap.Int64("lead_id", leadID), zap.Error(err))
		return StepResult{Action: "email", Status: StepFailed, Detail: err.Error()}
	}
	return StepResult{Action: "email", Status: StepSent}
}

// parseAgentEmail strips an optional leading "Subject:" line out of the
// generated email text.
func parseAgentEmail(email string) (subject, body string) {
	subject = agentDefaultSubject
	body = email
	if strings.HasPrefix(strings.ToLower(email), "subject:") {
		lines := strings.Split(email, "\n")
		if s := strings.TrimSpace(lines[0][len("subject:"):]); s != "" {
			subject = s
		}
		if len(lines) > 2 {
			body = strings.TrimSpace(strings.Join(lines[2:], "\n"))
		} else {
			body = ""
		}
	}
	return subject, body
}

// escalateIfNeeded files the human-handoff note when the plan's objections
// carry a budget signal.
func (s *Service) escalateIfNeeded(ctx context.Context, leadID int64, plan *AgentPlan) StepResult {
	hit := false
	for _, o := range plan.Objections {
		lo := strings.ToLower(o)
		if strings.Contains(lo, "expensive") || strings.Contains(lo, "budget") || strings.Contains(lo, "price") {
			hit = true
			break
		}
	}
	if !hit {
		return StepResult{Action: "escalate", Status: StepSkipped, Detail: "no pricing signal"}
	}

	brief := fmt.Sprintf(
		"ESCALATE: Pricing resistance.\n\nSUMMARY: %s\nSTAGE: %s • SIGNAL: %s\n"+
			"SCRIPT:\n- Acknowledge cost.\n- Offer lighter plan quote.\n- Share 1-liner ROI: "+
			"'Teams like yours saved ~12-18%% keeping same coverage.'\n- Close with booking link: %s\n",
		plan.Summary, plan.Stage, plan.IntentSignal, s.calendlyURL,
	)

	note := &leads.Message{
		LeadID:    leadID,
		Direction: leads.DirectionInbound,
		Channel:   leads.ChannelNote,
		Subject:   leads.StrPtr("escalate_to_human"),
		Body:      brief,
		Status:    leads.StatusReceived,
	}
	if err := s.repo.SaveMessage(ctx, note); err != nil {
		s.log.Warn("escalation note failed", zap.Int64("lead_id", leadID), zap.Error(err))
		return StepResult{Action: "escalate", Status: StepFailed, Detail: err.Error()}
	}
	return StepResult{Action: "escalate", Status: StepSent}
}

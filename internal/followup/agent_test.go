package followup

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solisa-ai/leadflow/internal/leads"
	"github.com/solisa-ai/leadflow/internal/personalize"
)

// scriptedAI returns canned replies so the agent analyze call can be
// exercised without a backend.
type scriptedAI struct {
	jsonReply string
	err       error
}

func (s *scriptedAI) Complete(context.Context, string) (string, error) {
	return "", s.err
}

func (s *scriptedAI) CompleteJSON(context.Context, string, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.jsonReply, nil
}

func stepByAction(t *testing.T, steps []StepResult, action string) StepResult {
	t.Helper()
	for _, s := range steps {
		if s.Action == action {
			return s
		}
	}
	t.Fatalf("no step %q in %v", action, steps)
	return StepResult{}
}

func TestRunAgentFallbackPlan(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	// no backend configured: the hardcoded fallback plan drives the run,
	// and its "too expensive" objection triggers the escalation
	res, err := env.svc.RunAgent(ctx, env.lead.ID)
	require.NoError(t, err)
	require.True(t, res.Executed)
	require.NotNil(t, res.Plan)
	assert.Equal(t, "evaluating", res.Plan.Stage)

	require.Len(t, res.Steps, 4)
	assert.Equal(t, StepSent, stepByAction(t, res.Steps, "sms_1").Status)
	assert.Equal(t, StepSent, stepByAction(t, res.Steps, "email").Status)
	assert.Equal(t, StepSent, stepByAction(t, res.Steps, "sms_2").Status)
	assert.Equal(t, StepSent, stepByAction(t, res.Steps, "escalate").Status)

	assert.Len(t, env.sms.sent, 2)
	require.Len(t, env.email.sent, 1)
	assert.Equal(t, "Quick path to savings", env.email.sent[0].subject)
	assert.Equal(t, 1, strings.Count(env.email.sent[0].body, testCalendly))

	// three dispatched sends plus exactly one escalation note
	msgs, err := env.repo.Thread(ctx, env.lead.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	var notes []leads.Message
	for _, m := range msgs {
		if m.Channel == leads.ChannelNote {
			notes = append(notes, m)
		}
	}
	require.Len(t, notes, 1)
	assert.Equal(t, "escalate_to_human", leads.Deref(notes[0].Subject))
	assert.Contains(t, notes[0].Body, "ESCALATE: Pricing resistance.")
}

func TestRunAgentScriptedPlanNoEscalation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	aiClient := &scriptedAI{jsonReply: `{
		"summary": "Warm lead, wants a demo.",
		"stage": "curious",
		"intent_signal": "asked for details",
		"objections": [],
		"recommended_actions": [{"type": "sms", "title": "Nudge", "body": "ping", "when": "now"}],
		"sms_1": "Hey Jane, quick follow-up!",
		"sms_2": "Happy to share a side-by-side.",
		"email": "Subject: Custom subject\n\nHere are the details you asked for."
	}`}
	leadsSvc := leads.NewService(env.repo, personalize.NewMock(testBranding), env.sms, env.email, testCalendly, zap.NewNop())
	svc := NewService(env.repo, leadsSvc, personalize.NewMock(testBranding), NewMemoryState(), aiClient,
		testCalendly, true, 30*time.Second, zap.NewNop())

	res, err := svc.RunAgent(ctx, env.lead.ID)
	require.NoError(t, err)
	require.True(t, res.Executed)

	assert.Equal(t, StepSkipped, stepByAction(t, res.Steps, "escalate").Status)
	require.Len(t, env.email.sent, 1)
	assert.Equal(t, "Custom subject", env.email.sent[0].subject)
	assert.Contains(t, env.email.sent[0].body, "Here are the details")
	assert.Contains(t, env.email.sent[0].body, testCalendly)

	// no escalation note in the thread: two sms + one email only
	msgs, _ := env.repo.Thread(ctx, env.lead.ID)
	assert.Len(t, msgs, 3)
}

func TestRunAgentParseFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	aiClient := &scriptedAI{jsonReply: "not json at all"}
	leadsSvc := leads.NewService(env.repo, personalize.NewMock(testBranding), env.sms, env.email, testCalendly, zap.NewNop())
	svc := NewService(env.repo, leadsSvc, personalize.NewMock(testBranding), NewMemoryState(), aiClient,
		testCalendly, true, 30*time.Second, zap.NewNop())

	res, err := svc.RunAgent(ctx, env.lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "evaluating", res.Plan.Stage, "parse failure lands on the fallback plan")
}

func TestRunAgentStepFailureContinues(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.sms.fail = true

	res, err := env.svc.RunAgent(ctx, env.lead.ID)
	require.NoError(t, err)
	require.True(t, res.Executed)

	// sms steps fail, email and escalation still run
	assert.Equal(t, StepFailed, stepByAction(t, res.Steps, "sms_1").Status)
	assert.Equal(t, StepSent, stepByAction(t, res.Steps, "email").Status)
	assert.Equal(t, StepFailed, stepByAction(t, res.Steps, "sms_2").Status)
	assert.Equal(t, StepSent, stepByAction(t, res.Steps, "escalate").Status)
	assert.Len(t, env.email.sent, 1)
}

func TestRunAgentThrottleSharedWithAutopilot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	first, err := env.svc.Autopilot(ctx, env.lead.ID)
	require.NoError(t, err)
	require.True(t, first.Executed)

	second, err := env.svc.RunAgent(ctx, env.lead.ID)
	require.NoError(t, err)
	assert.True(t, second.Throttled)
	assert.Empty(t, env.sms.sent)
}

func TestParseAgentEmail(t *testing.T) {
	subject, body := parseAgentEmail("Subject: Quick path to savings\n\nHi there…\n\nmore")
	assert.Equal(t, "Quick path to savings", subject)
	assert.Equal(t, "Hi there…\n\nmore", body)

	subject, body = parseAgentEmail("plain body, no subject line")
	assert.Equal(t, agentDefaultSubject, subject)
	assert.Equal(t, "plain body, no subject line", body)

	subject, body = parseAgentEmail("Subject:   \n\nbody")
	assert.Equal(t, agentDefaultSubject, subject)
	assert.Equal(t, "body", body)
}

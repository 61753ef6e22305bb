package followup

import (
	"strings"

	"github.com/solisa-ai/leadflow/internal/personalize"
)

const taskBody = "Prep ROI one-pager and claims SLA, tailored to objections."

// BuildPlan assembles the fixed three-step plan: sms now, email now, prep
// task in two hours. Escalation is not a plan step here; the agent path
// fires it as a side effect from accumulated objection signals.
func BuildPlan(drafts personalize.Drafts, emailBody, calendlyURL string) []PlanStep {
	emailMeta := map[string]any{"channel": "email"}
	if calendlyURL != "" {
		emailMeta["calendly"] = calendlyURL
	}

	return []PlanStep{
		{
			Action: "sms",
			When:   "now",
			Body:   drafts.SMS,
			Meta:   map[string]any{"channel": "sms"},
		},
		{
			Action:  "email",
			When:    "now",
			Subject: drafts.Email.Subject,
			Body:    emailBody,
			Meta:    emailMeta,
		},
		{
			Action: "task",
			When:   "in_2h",
			Body:   taskBody,
			Meta:   map[string]any{"assignee": "agent", "priority": "high"},
		},
	}
}

// ensureBookingLink appends the booking link when the body does not already
// carry it.
func ensureBookingLink(body, calendlyURL string) string {
	if calendlyURL == "" || strings.Contains(body, calendlyURL) {
		return body
	}
	return strings.TrimRight(body, " \n") + "\n\nBook a time:\n" + calendlyURL + "\n"
}

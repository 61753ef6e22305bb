package followup

import (
	"context"
	"time"
)

type Intent string

const (
	IntentReadyToSwitch Intent = "ready_to_switch"
	IntentConsidering   Intent = "considering"
	IntentJustBrowsing  Intent = "just_browsing"
	IntentUnknown       Intent = "unknown"
)

const (
	ObjectionPrice  = "price"
	ObjectionClaims = "claims"
)

// Classification is the coarse read of a conversation: one intent, any
// number of objection tags.
type Classification struct {
	Intent     Intent   `json:"intent"`
	Objections []string `json:"objections"`
}

// PlanStep is one action in the ephemeral per-run plan. Plans are returned
// and acted on, never stored.
type PlanStep struct {
	Action  string         `json:"action"` // sms | email | task
	When    string         `json:"when"`   // opaque timing label: "now", "in_2h"
	Body    string         `json:"body,omitempty"`
	Subject string         `json:"subject,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// RunResult is the outcome of one autopilot invocation. Exactly one of
// Disabled/Throttled/Executed is set.
type RunResult struct {
	LeadID      int64           `json:"lead_id"`
	Disabled    bool            `json:"disabled,omitempty"`
	Throttled   bool            `json:"throttled,omitempty"`
	Executed    bool            `json:"executed,omitempty"`
	Reasoning   string          `json:"reasoning,omitempty"`
	State       *Classification `json:"state,omitempty"`
	Plan        []PlanStep      `json:"plan,omitempty"`
	UsedContext string          `json:"used_context,omitempty"`
}

// StateStore holds the per-lead autopilot state: the last ingested context
// and the throttle reservation. Keys never interact across leads.
//
// BeginRun atomically reserves a run slot: it returns false when the last
// successful run is closer than minInterval, otherwise records now as the
// last run and returns true. FailRun rolls the reservation back so a run
// that errored does not block the retry.
type StateStore interface {
	IngestContext(ctx context.Context, leadID int64, text string) error
	Context(ctx context.Context, leadID int64) (string, bool, error)
	BeginRun(ctx context.Context, leadID int64, minInterval time.Duration) (bool, error)
	FailRun(ctx context.Context, leadID int64) error
}

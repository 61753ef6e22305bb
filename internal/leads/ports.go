package leads

import (
	"context"
	"time"

	"github.com/solisa-ai/leadflow/internal/httpx"
)

// Stable error kinds. Handlers map these to HTTP statuses: ErrNotFound -> 404,
// ErrConflict and ErrValidation -> 400. The values live in httpx so the
// response helpers can match them without importing this package.
var (
	ErrNotFound   = httpx.ErrNotFound
	ErrConflict   = httpx.ErrConflict
	ErrValidation = httpx.ErrValidation
)

const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"

	ChannelSMS   = "sms"
	ChannelEmail = "email"
	ChannelNote  = "note"

	StatusQueued   = "queued"
	StatusSent     = "sent"
	StatusReceived = "received"
	StatusDraft    = "draft"
	StatusFailed   = "failed"

	EnrichedPending = "pending"
	EnrichedSuccess = "success"
	EnrichedFailed  = "failed"
)

// Lead is the identity record. Enrichment fields are nullable and written
// once by the capture-time enrichment step.
type Lead struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`

	Company     *string    `json:"company"`
	JobTitle    *string    `json:"job_title"`
	Location    *string    `json:"location"`
	LinkedinURL *string    `json:"linkedin_url"`
	CompanySize *string    `json:"company_size"`
	Industry    *string    `json:"industry"`
	Enriched    string     `json:"enriched"`
	EnrichedAt  *time.Time `json:"enriched_at"`
}

// Message is an append-only event in a lead's timeline. Never mutated after
// creation; thread order is created_at ascending.
type Message struct {
	ID          int64     `json:"id"`
	LeadID      int64     `json:"lead_id"`
	Direction   string    `json:"direction"`
	Channel     string    `json:"channel"`
	Subject     *string   `json:"subject"`
	Body        string    `json:"body"`
	ProviderSID *string   `json:"provider_sid"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Repo — persistence. Lookups return ErrNotFound on a miss.
type Repo interface {
	CreateLead(ctx context.Context, l *Lead) error
	GetLead(ctx context.Context, id int64) (*Lead, error)
	GetLeadByEmail(ctx context.Context, email string) (*Lead, error)
	GetLeadByPhone(ctx context.Context, phone string) (*Lead, error)
	ListLeads(ctx context.Context) ([]Lead, error)

	SaveMessage(ctx context.Context, m *Message) error
	Thread(ctx context.Context, leadID int64) ([]Message, error)
	RecentMessages(ctx context.Context, leadID int64, limit int) ([]Message, error)
}

func StrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

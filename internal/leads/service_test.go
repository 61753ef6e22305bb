package leads

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/solisa-ai/leadflow/internal/channels"
	"github.com/solisa-ai/leadflow/internal/personalize"
)

const testCalendly = "https://calendly.com/test/meet"

var testBranding = personalize.Branding{
	CalendlyURL:   testCalendly,
	SenderName:    "Max",
	SenderTitle:   "Founder",
	SenderCompany: "Solisa AI",
	SenderEmail:   "max@solisa.ai",
}

type recorderSMS struct {
	to   []string
	body []string
}

func (r *recorderSMS) Send(_ context.Context, to, body string) (channels.Receipt, error) {
	r.to = append(r.to, to)
	r.body = append(r.body, body)
	return channels.Receipt{SID: "dry_run", Status: "queued", To: to}, nil
}

type sentEmail struct {
	to      string
	subject string
	body    string
}

type recorderEmail struct {
	sent []sentEmail
}

func (r *recorderEmail) Send(_ context.Context, _, toAddr, subject, body string) (channels.Receipt, error) {
	r.sent = append(r.sent, sentEmail{to: toAddr, subject: subject, body: body})
	return channels.Receipt{SID: "console", Status: "queued", To: toAddr}, nil
}

func (r *recorderEmail) Compose(_, toAddr, _, _ string) (string, error) {
	return "outbox/" + toAddr + ".eml", nil
}

func newTestService(t *testing.T) (*Service, *recorderSMS, *recorderEmail) {
	t.Helper()
	sms := &recorderSMS{}
	email := &recorderEmail{}
	svc := NewService(NewMemoryRepo(), personalize.NewMock(testBranding), sms, email, testCalendly, zap.NewNop())
	return svc, sms, email
}

func TestCaptureEnriches(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	l, err := svc.Capture(ctx, "Jane Doe", "jane@acme.com", "+15551234567")
	require.NoError(t, err)

	assert.NotZero(t, l.ID)
	assert.Equal(t, "new", l.Status)
	assert.Equal(t, EnrichedSuccess, l.Enriched)
	require.NotNil(t, l.EnrichedAt)
	assert.Equal(t, "Acme Inc.", Deref(l.Company))
	assert.Equal(t, "Data Analyst", Deref(l.JobTitle))
	assert.Equal(t, "Austin, TX", Deref(l.Location))
	assert.Equal(t, "https://linkedin.com/in/jane-doe", Deref(l.LinkedinURL))
	assert.Equal(t, "50-200 employees", Deref(l.CompanySize))
	assert.Equal(t, "Business Services", Deref(l.Industry))
}

func TestCaptureValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Capture(ctx, "", "jane@acme.com", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Capture(ctx, "Jane", "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCaptureDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Capture(ctx, "Jane Doe", "jane@acme.com", "")
	require.NoError(t, err)

	_, err = svc.Capture(ctx, "Other Jane", "jane@acme.com", "+15559999999")
	assert.ErrorIs(t, err, ErrConflict)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "rejected duplicate must not be stored")
}

func TestCaptureFallbackPhone(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	l, err := svc.Capture(ctx, "Jane Doe", "jane@acme.com", "")
	require.NoError(t, err)
	assert.Equal(t, fallbackPhone, l.Phone)
}

func TestInferIndustry(t *testing.T) {
	cases := map[string]string{
		"cloudnine.io":   "Technology",
		"firstbank.com":  "Finance",
		"medgroup.org":   "Healthcare",
		"example.com":    "Business Services",
		"SOFTWAREco.com": "Technology",
	}
	for domain, want := range cases {
		assert.Equal(t, want, inferIndustry(domain), domain)
	}
}

func TestSendSMSPersistsOutbound(t *testing.T) {
	ctx := context.Background()
	svc, sms, _ := newTestService(t)

	l, err := svc.Capture(ctx, "Jane Doe", "jane@acme.com", "+15551234567")
	require.NoError(t, err)

	m, receipt, err := svc.SendSMS(ctx, l.ID, "custom text")
	require.NoError(t, err)

	assert.Equal(t, "dry_run", receipt.SID)
	require.Len(t, sms.to, 1)
	assert.Equal(t, "+15551234567", sms.to[0])
	assert.Equal(t, "custom text", sms.body[0])

	assert.Equal(t, DirectionOutbound, m.Direction)
	assert.Equal(t, ChannelSMS, m.Channel)
	assert.Equal(t, StatusQueued, m.Status)
	assert.Equal(t, "dry_run", Deref(m.ProviderSID))

	msgs, err := svc.Thread(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "custom text", msgs[0].Body)
}

func TestSendSMSGeneratesWhenNoOverride(t *testing.T) {
	ctx := context.Background()
	svc, sms, _ := newTestService(t)

	l, err := svc.Capture(ctx, "Jane Doe", "jane@acme.com", "")
	require.NoError(t, err)

	_, _, err = svc.SendSMS(ctx, l.ID, "")
	require.NoError(t, err)
	require.Len(t, sms.body, 1)
	assert.Contains(t, sms.body[0], "Jane")
	assert.Contains(t, sms.body[0], "Acme Inc.")
}

func TestSendEmailBookingLink(t *testing.T) {
	ctx := context.Background()
	svc, _, email := newTestService(t)

	l, err := svc.Capture(ctx, "Jane Doe", "jane@acme.com", "")
	require.NoError(t, err)

	// an override body without the link gets it appended exactly once
	m, _, err := svc.SendEmail(ctx, l.ID, "Hello", "plain body")
	require.NoError(t, err)

	require.Len(t, email.sent, 1)
	assert.Equal(t, "jane@acme.com", email.sent[0].to)
	assert.Equal(t, "Hello", email.sent[0].subject)
	assert.Equal(t, 1, strings.Count(email.sent[0].body, testCalendly))
	assert.Equal(t, 1, strings.Count(m.Body, testCalendly))

	// a body that already carries the link is left alone
	_, _, err = svc.SendEmail(ctx, l.ID, "Hello", "see "+testCalendly+" for times")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(email.sent[1].body, testCalendly))
}

func TestSendToUnknownLead(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, _, err := svc.SendSMS(ctx, 42, "text")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = svc.SendEmail(ctx, 42, "s", "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestThreadOrdering(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	l, err := svc.Capture(ctx, "Jane Doe", "jane@acme.com", "+15551234567")
	require.NoError(t, err)

	_, _, err = svc.SendSMS(ctx, l.ID, "first out")
	require.NoError(t, err)
	_, _, err = svc.RecordInboundSMS(ctx, "+15551234567", "reply")
	require.NoError(t, err)
	_, _, err = svc.SendEmail(ctx, l.ID, "s", "second out")
	require.NoError(t, err)

	msgs, err := svc.Thread(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first out", msgs[0].Body)
	assert.Equal(t, "reply", msgs[1].Body)
	assert.Equal(t, ChannelEmail, msgs[2].Channel)

	recent, err := svc.Repo().RecentMessages(ctx, l.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, ChannelEmail, recent[0].Channel)
	assert.Equal(t, "reply", recent[1].Body)
}

func TestThreadUnknownLead(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Thread(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordInboundSMS(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	l, err := svc.Capture(ctx, "Jane Doe", "jane@acme.com", "+15551234567")
	require.NoError(t, err)

	matched, m, err := svc.RecordInboundSMS(ctx, " +15551234567 ", "worried about price")
	require.NoError(t, err)
	assert.Equal(t, l.ID, matched.ID)
	assert.Equal(t, DirectionInbound, m.Direction)
	assert.Equal(t, StatusReceived, m.Status)

	// unmatched sender: nothing stored
	_, _, err = svc.RecordInboundSMS(ctx, "+15550001122", "hello?")
	assert.ErrorIs(t, err, ErrNotFound)

	msgs, _ := svc.Thread(ctx, l.ID)
	assert.Len(t, msgs, 1)
}

func TestRecordInboundEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	l, err := svc.Capture(ctx, "Jane Doe", "jane@acme.com", "")
	require.NoError(t, err)

	matched, m, err := svc.RecordInboundEmail(ctx, "jane@acme.com", "Re: coverage", "sounds good")
	require.NoError(t, err)
	assert.Equal(t, l.ID, matched.ID)
	assert.Equal(t, ChannelEmail, m.Channel)
	assert.Equal(t, "Re: coverage", Deref(m.Subject))

	_, _, err = svc.RecordInboundEmail(ctx, "", "s", "b")
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.RecordInboundEmail(ctx, "nobody@nowhere.com", "s", "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersonalizeDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	l, err := svc.Capture(ctx, "Jane Doe", "jane@acme.com", "")
	require.NoError(t, err)

	_, drafts, err := svc.Personalize(ctx, l.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, drafts.SMS)
	assert.NotEmpty(t, drafts.Email.Body)
	assert.NotEmpty(t, drafts.LinkedIn)
	assert.Contains(t, drafts.ContextUsed, "Acme Inc.")

	msgs, _ := svc.Thread(ctx, l.ID)
	assert.Empty(t, msgs)
}

func TestComposeEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	l, err := svc.Capture(ctx, "Jane Doe", "jane@acme.com", "")
	require.NoError(t, err)

	path, subject, err := svc.ComposeEmail(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "outbox/jane@acme.com.eml", path)
	assert.Equal(t, "Insurance review for Acme Inc.", subject)

	msgs, _ := svc.Thread(ctx, l.ID)
	assert.Empty(t, msgs, "compose writes the artifact only")
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_, err := svc.Capture(ctx, "First", "first@acme.com", "")
	require.NoError(t, err)
	second, err := svc.Capture(ctx, "Second", "second@acme.com", "")
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
}

package leads

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/solisa-ai/leadflow/internal/httpx"
	"github.com/solisa-ai/leadflow/internal/personalize"
)

const batchLimit = 10

type Handler struct {
	svc           *Service
	webhookSecret string
	log           *zap.Logger
}

func NewHandler(svc *Service, webhookSecret string, log *zap.Logger) *Handler {
	return &Handler{svc: svc, webhookSecret: webhookSecret, log: log}
}

func leadID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid lead id: %w", ErrValidation)
	}
	return id, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if out == nil {
		out = []Lead{}
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	l, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpx.WriteError(w, fmt.Errorf("invalid json: %w", ErrValidation))
		return
	}

	l, err := h.svc.Capture(r.Context(), payload.Name, payload.Email, payload.Phone)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, l)
}

type personalizeResponse struct {
	LeadID      int64              `json:"lead_id"`
	LeadName    string             `json:"lead_name"`
	Messages    personalize.Drafts `json:"messages"`
	GeneratedAt string             `json:"generated_at,omitempty"`
}

func (h *Handler) Personalize(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	l, drafts, err := h.svc.Personalize(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, personalizeResponse{
		LeadID:      id,
		LeadName:    l.Name,
		Messages:    drafts,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// PersonalizeBatch handles up to batchLimit ids; missing leads are skipped.
func (h *Handler) PersonalizeBatch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpx.WriteError(w, fmt.Errorf("invalid json: %w", ErrValidation))
		return
	}

	ids := payload.IDs
	if len(ids) > batchLimit {
		ids = ids[:batchLimit]
	}

	results := []personalizeResponse{}
	for _, id := range ids {
		l, drafts, err := h.svc.Personalize(r.Context(), id)
		if err != nil {
			continue
		}
		results = append(results, personalizeResponse{LeadID: id, LeadName: l.Name, Messages: drafts})
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"total":   len(results),
		"results": results,
	})
}

func (h *Handler) SendSMS(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	// regenerate is part of the wire contract; both branches generate fresh
	// content today
	var payload struct {
		Regenerate bool `json:"regenerate"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	m, receipt, err := h.svc.SendSMS(r.Context(), id, "")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"sent":       true,
		"provider":   receipt,
		"message_id": m.ID,
		"sms":        m.Body,
	})
}

func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	var payload struct {
		Regenerate bool `json:"regenerate"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	m, receipt, err := h.svc.SendEmail(r.Context(), id, "", "")
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"sent":       true,
		"provider":   receipt,
		"message_id": m.ID,
		"subject":    Deref(m.Subject),
		"to":         receipt.To,
	})
}

func (h *Handler) ComposeEmail(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	path, subject, err := h.svc.ComposeEmail(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"compose_path": path,
		"subject":      subject,
	})
}

func (h *Handler) Thread(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	msgs, err := h.svc.Thread(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if msgs == nil {
		msgs = []Message{}
	}
	httpx.WriteJSON(w, http.StatusOK, msgs)
}

func (h *Handler) checkWebhookSecret(r *http.Request) bool {
	if h.webhookSecret == "" {
		return true
	}
	return r.Header.Get("X-Webhook-Secret") == h.webhookSecret
}

// InboundSMS is the provider webhook: form-encoded From/Body.
func (h *Handler) InboundSMS(w http.ResponseWriter, r *http.Request) {
	if !h.checkWebhookSecret(r) {
		httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, fmt.Errorf("invalid form: %w", ErrValidation))
		return
	}

	l, m, err := h.svc.RecordInboundSMS(r.Context(), r.FormValue("From"), r.FormValue("Body"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":                true,
		"stored_message_id": m.ID,
		"matched_lead_id":   l.ID,
	})
}

// InboundEmail accepts both capitalizations of the provider's form fields.
func (h *Handler) InboundEmail(w http.ResponseWriter, r *http.Request) {
	if !h.checkWebhookSecret(r) {
		httpx.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, fmt.Errorf("invalid form: %w", ErrValidation))
		return
	}

	pick := func(a, b string) string {
		if v := r.FormValue(a); v != "" {
			return v
		}
		return r.FormValue(b)
	}
	sender := pick("From", "from")
	subject := pick("Subject", "subject")
	text := pick("Text", "text")

	l, m, err := h.svc.RecordInboundEmail(r.Context(), sender, subject, text)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":                true,
		"stored_message_id": m.ID,
		"matched_lead_id":   l.ID,
	})
}

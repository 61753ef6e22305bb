package followup

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/solisa-ai/leadflow/internal/httpx"
	"github.com/solisa-ai/leadflow/internal/leads"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func leadID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid lead id: %w", leads.ErrValidation)
	}
	return id, nil
}

// Ingest accepts {"text": ...} as JSON or a form field.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	var text string
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var payload struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		text = payload.Text
	} else {
		_ = r.ParseForm()
		text = r.FormValue("text")
	}

	stored, err := h.svc.Ingest(r.Context(), id, text)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"lead_id":      id,
		"stored_bytes": stored,
	})
}

func (h *Handler) Autopilot(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.svc.Autopilot(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Agent(w http.ResponseWriter, r *http.Request) {
	id, err := leadID(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	res, err := h.svc.RunAgent(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}

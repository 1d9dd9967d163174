package web

import (
	"net/http"
	"strings"

	"stock-orders/internal/wire"
)

// POST /api/drafts/propose
// Body: {"text": "..."}. Returns a draft document for review; nothing is saved.
func (h *Handler) proposeDraft(w http.ResponseWriter, r *http.Request) {
	var body wire.Propose
	if !decodeJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.ProposeDraft(r.Context(), body.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Draft)
}

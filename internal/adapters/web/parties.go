package web

import (
	"net/http"
	"strconv"

	"stock-orders/internal/core"
	"stock-orders/internal/wire"

	"github.com/go-chi/chi/v5"
)

// partyRoutes mounts the read-only counterparty endpoints under prefix.
func (h *Handler) partyRoutes(r chi.Router, prefix string, kind core.PartyKind) {
	r.Route(prefix, func(r chi.Router) {
		r.Get("/showAll", func(w http.ResponseWriter, r *http.Request) {
			h.listParties(w, r, kind)
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.getParty(w, r, kind)
		})
	})
}

// GET /{clients|fournisseurs}/showAll?entrepriseId=
func (h *Handler) listParties(w http.ResponseWriter, r *http.Request, kind core.PartyKind) {
	enterpriseID := 0
	if raw := r.URL.Query().Get("entrepriseId"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, "invalid entrepriseId: "+raw, "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		enterpriseID = n
	}
	result, err := h.svc.ListParties(r.Context(), kind, enterpriseID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]wire.Party, 0, len(result.Parties))
	for _, p := range result.Parties {
		out = append(out, wire.FromParty(p))
	}
	writeJSON(w, out)
}

// GET /{clients|fournisseurs}/{id}
func (h *Handler) getParty(w http.ResponseWriter, r *http.Request, kind core.PartyKind) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetParty(r.Context(), kind, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, wire.FromParty(*result.Party))
}

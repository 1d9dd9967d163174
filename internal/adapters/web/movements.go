package web

import (
	"net/http"

	"stock-orders/internal/app"
	"stock-orders/internal/wire"
)

// GET /mvtstk/showAll
func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListMovements(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]wire.MvtStk, 0, len(result.Movements))
	for _, m := range result.Movements {
		out = append(out, wire.FromMovement(m))
	}
	writeJSON(w, out)
}

// GET /mvtstk/stock
func (h *Handler) stockLevels(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.StockLevels(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]wire.StockLevel, 0, len(result.Levels))
	for _, l := range result.Levels {
		out = append(out, wire.FromStockLevel(l))
	}
	writeJSON(w, out)
}

// GET /mvtstk/{id}
func (h *Handler) getMovement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetMovement(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, wire.FromMovement(*result.Movement))
}

// POST /mvtstk/create
func (h *Handler) createMovement(w http.ResponseWriter, r *http.Request) {
	var body wire.MvtStkRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CreateMovement(r.Context(), movementRequest(r, body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, wire.FromMovement(*result.Movement))
}

// PUT /mvtstk/update/{id}
func (h *Handler) updateMovement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body wire.MvtStkRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.UpdateMovement(r.Context(), id, movementRequest(r, body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, wire.FromMovement(*result.Movement))
}

// DELETE /mvtstk/delete/{id}
func (h *Handler) deleteMovement(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteMovement(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// movementRequest takes a missing entrepriseId from the token, then from the
// article in the store.
func movementRequest(r *http.Request, body wire.MvtStkRequest) app.MovementRequest {
	enterpriseID := body.EntrepriseID
	if claims := authFromContext(r.Context()); enterpriseID == 0 && claims != nil {
		enterpriseID = claims.EnterpriseID
	}
	return app.MovementRequest{
		Date:         body.DateMvt,
		Quantity:     body.Quantite,
		Type:         body.TypeMvt,
		ArticleID:    body.ArticleID,
		EnterpriseID: enterpriseID,
	}
}

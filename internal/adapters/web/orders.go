package web

import (
	"net/http"

	"stock-orders/internal/app"
	"stock-orders/internal/core"
	"stock-orders/internal/wire"

	"github.com/go-chi/chi/v5"
)

// orderRoutes mounts header and line endpoints for one order kind. Client and
// fournisseur orders share the same shape; only the counterparty field and
// the line list name differ in the bodies.
func (h *Handler) orderRoutes(r chi.Router, prefix string, kind core.OrderKind) {
	o := orderHandler{h: h, kind: kind}
	r.Route(prefix, func(r chi.Router) {
		r.Get("/showAll", o.list)
		r.Get("/code/{code}", o.getByCode)
		r.Post("/create", o.create)
		r.Put("/update/{id}", o.update)
		r.Delete("/delete/{id}", o.delete)
		r.Get("/{id}", o.get)

		r.Get("/{id}/lignes", o.listLines)
		r.Post("/{id}/lignes", o.addLine)
		r.Delete("/{id}/lignes", o.removeAllLines)
		r.Put("/{id}/lignes/{ligneId}", o.updateLine)
		r.Delete("/{id}/lignes/{ligneId}", o.removeLine)
	})
}

type orderHandler struct {
	h    *Handler
	kind core.OrderKind
}

func (o orderHandler) list(w http.ResponseWriter, r *http.Request) {
	result, err := o.h.svc.ListOrders(r.Context(), o.kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]wire.Order, 0, len(result.Orders))
	for _, order := range result.Orders {
		out = append(out, wire.FromOrder(order))
	}
	writeJSON(w, out)
}

func (o orderHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := o.h.svc.GetOrder(r.Context(), o.kind, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, wire.FromOrder(*result.Order))
}

func (o orderHandler) getByCode(w http.ResponseWriter, r *http.Request) {
	result, err := o.h.svc.GetOrderByCode(r.Context(), o.kind, chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, wire.FromOrder(*result.Order))
}

func (o orderHandler) create(w http.ResponseWriter, r *http.Request) {
	var body wire.OrderRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := o.h.svc.CreateOrder(r.Context(), o.kind, o.orderRequest(r, body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, wire.FromOrder(*result.Order))
}

func (o orderHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body wire.OrderRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := o.h.svc.UpdateOrder(r.Context(), o.kind, id, o.orderRequest(r, body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, wire.FromOrder(*result.Order))
}

func (o orderHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := o.h.svc.DeleteOrder(r.Context(), o.kind, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Lines ────────────────────────────────────────────────────────────────────

func (o orderHandler) listLines(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := o.h.svc.ListLines(r.Context(), o.kind, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]wire.Line, 0, len(result.Lines))
	for _, l := range result.Lines {
		out = append(out, wire.FromLine(l))
	}
	writeJSON(w, out)
}

func (o orderHandler) addLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body wire.LineRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := o.h.svc.AddLine(r.Context(), o.kind, id, lineRequest(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, wire.FromLine(*result.Line))
}

func (o orderHandler) updateLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	lineID, ok := pathID(w, r, "ligneId")
	if !ok {
		return
	}
	var body wire.LineRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := o.h.svc.UpdateLine(r.Context(), o.kind, id, lineID, lineRequest(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, wire.FromLine(*result.Line))
}

func (o orderHandler) removeLine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	lineID, ok := pathID(w, r, "ligneId")
	if !ok {
		return
	}
	if err := o.h.svc.RemoveLine(r.Context(), o.kind, id, lineID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (o orderHandler) removeAllLines(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := o.h.svc.RemoveAllLines(r.Context(), o.kind, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, wire.RemovedLines{CommandeID: result.OrderID, Removed: result.Removed})
}

// orderRequest falls back to the token's enterprise when the body names none.
func (o orderHandler) orderRequest(r *http.Request, body wire.OrderRequest) app.OrderRequest {
	enterpriseID := body.EntrepriseID
	if claims := authFromContext(r.Context()); enterpriseID == 0 && claims != nil {
		enterpriseID = claims.EnterpriseID
	}
	return app.OrderRequest{
		Code:         body.Code,
		OrderDate:    body.DateCommande,
		EnterpriseID: enterpriseID,
		PartyID:      body.PartyID(o.kind),
	}
}

func lineRequest(body wire.LineRequest) app.LineRequest {
	return app.LineRequest{
		ArticleID:    body.ArticleID,
		Quantity:     body.Quantite,
		UnitPrice:    body.PrixUnitaire,
		EnterpriseID: body.EntrepriseID,
	}
}

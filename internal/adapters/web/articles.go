package web

import (
	"net/http"

	"stock-orders/internal/app"
	"stock-orders/internal/wire"

	"github.com/go-chi/chi/v5"
)

// GET /articles/showAll
func (h *Handler) listArticles(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListArticles(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]wire.Article, 0, len(result.Articles))
	for _, a := range result.Articles {
		out = append(out, wire.FromArticle(a))
	}
	writeJSON(w, out)
}

// GET /articles/id/{id}
func (h *Handler) getArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetArticle(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, wire.FromArticle(*result.Article))
}

// GET /articles/code/{code}
func (h *Handler) getArticleByCode(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetArticleByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, wire.FromArticle(*result.Article))
}

// POST /articles/create
func (h *Handler) createArticle(w http.ResponseWriter, r *http.Request) {
	var body wire.Article
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.CreateArticle(r.Context(), articleRequest(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, wire.FromArticle(*result.Article))
}

// PUT /articles/update/{id}
func (h *Handler) updateArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body wire.Article
	if !decodeJSON(w, r, &body) {
		return
	}
	result, err := h.svc.UpdateArticle(r.Context(), id, articleRequest(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, wire.FromArticle(*result.Article))
}

// DELETE /articles/delete/{id}
func (h *Handler) deleteArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteArticle(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// articleRequest ignores the TTC price sent by the caller; the service derives it.
func articleRequest(body wire.Article) app.ArticleRequest {
	return app.ArticleRequest{
		Code:         body.CodeArticle,
		Designation:  body.Designation,
		UnitPrice:    body.PrixUnitaire,
		TaxRate:      body.TauxTva,
		EnterpriseID: body.EntrepriseID,
	}
}

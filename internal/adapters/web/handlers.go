package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"stock-orders/internal/app"
	"stock-orders/internal/core"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the auth settings.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
}

// NewHandler creates and wires the chi router with all routes. Bearer-token
// auth guards every route except the health check when jwtSecret is set.
func NewHandler(svc app.ApplicationService, allowedOrigins []string, jwtSecret string) http.Handler {
	h := &Handler{
		svc:       svc,
		jwtSecret: jwtSecret,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ──────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	r.Group(func(r chi.Router) {
		if jwtSecret != "" {
			r.Use(h.RequireAuth)
		}
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// ── Catalog ──────────────────────────────────────────────────────────
		r.Route("/articles", func(r chi.Router) {
			r.Get("/showAll", h.listArticles)
			r.Get("/id/{id}", h.getArticle)
			r.Get("/code/{code}", h.getArticleByCode)
			r.Post("/create", h.createArticle)
			r.Put("/update/{id}", h.updateArticle)
			r.Delete("/delete/{id}", h.deleteArticle)
		})

		// ── Parties ──────────────────────────────────────────────────────────
		h.partyRoutes(r, "/clients", core.PartyClient)
		h.partyRoutes(r, "/fournisseurs", core.PartyFournisseur)

		// ── Orders ───────────────────────────────────────────────────────────
		h.orderRoutes(r, "/commandesclients", core.OrderClient)
		h.orderRoutes(r, "/commandesfournisseurs", core.OrderFournisseur)

		// ── Stock movements ──────────────────────────────────────────────────
		r.Route("/mvtstk", func(r chi.Router) {
			r.Get("/showAll", h.listMovements)
			r.Get("/stock", h.stockLevels)
			r.Post("/create", h.createMovement)
			r.Put("/update/{id}", h.updateMovement)
			r.Delete("/delete/{id}", h.deleteMovement)
			r.Get("/{id}", h.getMovement)
		})

		// ── Drafts ───────────────────────────────────────────────────────────
		r.Post("/api/drafts/propose", h.proposeDraft)
	})

	return r
}

// health reports service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// pathID parses the {name} URL parameter as a positive id, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid "+name+": "+chi.URLParam(r, name), "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

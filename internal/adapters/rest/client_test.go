package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stock-orders/internal/adapters/rest"
	"stock-orders/internal/adapters/web"
	"stock-orders/internal/app"
	"stock-orders/internal/core"
	"stock-orders/internal/store"
	"stock-orders/internal/wire"

	"github.com/shopspring/decimal"
)

const secret = "rest-test-secret"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newBackend serves the real web handler over an in-memory store.
func newBackend(t *testing.T) (*rest.Client, *store.Memory, *core.Party) {
	t.Helper()
	ctx := context.Background()
	m := store.NewMemory()
	for _, a := range []core.Article{
		{Code: "ART-1", Designation: "Vis", UnitPrice: dec("10"), TaxRate: dec("20")},
		{Code: "ART-2", Designation: "Écrou", UnitPrice: dec("2.50"), TaxRate: dec("20")},
	} {
		if _, err := m.CreateArticle(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	client, err := m.CreateParty(ctx, core.Party{Kind: core.PartyClient, LastName: "Martin", EnterpriseID: 1})
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(web.NewHandler(app.NewAppService(m, m, m, m, nil), nil, secret))
	t.Cleanup(srv.Close)

	token, err := web.IssueToken(secret, "test", 1, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return rest.NewClient(srv.URL+"/", rest.WithToken(token), rest.WithTimeout(5*time.Second)), m, client
}

func TestClient_ApplyCreateThenEdit(t *testing.T) {
	ctx := context.Background()
	c, _, party := newBackend(t)

	newDriver := func() *core.Driver {
		r := core.NewReconciler(c, core.WithNotifier(core.DiscardNotifier))
		return core.NewDriver(core.Session{EnterpriseID: 1}, c, c, r, nil)
	}

	doc := core.DraftDocument{
		Kind:         core.OrderClient,
		Code:         "CMD-100",
		OrderDate:    "2024-05-02",
		EnterpriseID: 1,
		PartyID:      party.ID,
		Lines: []core.DraftDocumentLine{
			{ArticleCode: "ART-1", Quantity: "2"},
			{ArticleCode: "ART-2", Quantity: "4", UnitPrice: "2.00"},
		},
	}
	d := newDriver()
	d.OpenCreate(doc.Kind)
	if err := doc.Fill(ctx, d); err != nil {
		t.Fatal(err)
	}
	result, err := d.Submit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !result.OK() || result.Count(core.OpAddLine) != 2 {
		t.Fatalf("create result = %+v", result.Outcomes)
	}

	order, err := c.GetOrderByCode(ctx, core.OrderClient, "CMD-100")
	if err != nil {
		t.Fatal(err)
	}
	if len(order.Lines) != 2 || !order.Total().Equal(dec("28")) {
		t.Fatalf("persisted order = %+v", order)
	}

	// Edit: drop ART-2, change the ART-1 quantity.
	edited := core.DraftDocumentFromOrder(*order)
	for _, l := range edited.Lines {
		if l.ArticleCode == "ART-1" {
			l.Quantity = "5"
			edited.Lines = []core.DraftDocumentLine{l}
			break
		}
	}
	d = newDriver()
	if err := d.OpenEdit(ctx, order); err != nil {
		t.Fatal(err)
	}
	if err := edited.Fill(ctx, d); err != nil {
		t.Fatal(err)
	}
	result, err = d.Submit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !result.OK() || result.Count(core.OpUpdateLine) != 1 || result.Count(core.OpRemoveLine) != 1 {
		t.Fatalf("edit result = %+v", result.Outcomes)
	}

	lines, err := c.ListLines(ctx, core.OrderClient, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || !lines[0].Quantity.Equal(dec("5")) {
		t.Errorf("lines after edit = %+v", lines)
	}
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	c, _, party := newBackend(t)

	if _, err := c.GetOrder(ctx, core.OrderClient, 999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing order: %v", err)
	}
	if _, err := c.FindArticleByCode(ctx, "NOPE"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing article: %v", err)
	}

	fields := core.OrderFields{Code: "CMD-1", EnterpriseID: 1, PartyID: party.ID}
	if _, err := c.CreateOrder(ctx, core.OrderClient, fields); err != nil {
		t.Fatal(err)
	}
	if _, err := c.CreateOrder(ctx, core.OrderClient, fields); !errors.Is(err, core.ErrConflict) {
		t.Errorf("duplicate code: %v", err)
	}

	_, err := c.CreateOrder(ctx, core.OrderClient, core.OrderFields{})
	var apiErr *rest.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest || len(apiErr.Errors) == 0 {
		t.Fatalf("empty header: %v", err)
	}
	if !rest.IsValidation(err) {
		t.Error("IsValidation = false for a 400")
	}
}

func TestClient_FallbackMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"empty body", http.StatusInternalServerError, "", "Erreur lors de la création de la commande"},
		{"not json", http.StatusBadGateway, "<html>", "Erreur lors de la création de la commande"},
		{"server message", http.StatusBadRequest, `{"message":"code déjà utilisé","code":"X"}`, "code déjà utilisé"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := rest.NewClient(srv.URL).CreateOrder(context.Background(), core.OrderClient, core.OrderFields{Code: "X"})
			var apiErr *rest.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status || apiErr.Message != tt.wantMsg {
				t.Errorf("got %d %q, want %d %q", apiErr.Status, apiErr.Message, tt.status, tt.wantMsg)
			}
		})
	}
}

func TestClient_Unauthorized(t *testing.T) {
	m := store.NewMemory()
	srv := httptest.NewServer(web.NewHandler(app.NewAppService(m, m, m, m, nil), nil, secret))
	defer srv.Close()

	_, err := rest.NewClient(srv.URL).ListArticles(context.Background())
	var apiErr *rest.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("err = %v, want 401", err)
	}
}

func TestClient_PartiesByEnterprise(t *testing.T) {
	ctx := context.Background()
	c, m, _ := newBackend(t)
	if _, err := m.CreateParty(ctx, core.Party{Kind: core.PartyClient, LastName: "Durand", EnterpriseID: 2}); err != nil {
		t.Fatal(err)
	}
	all, err := c.ListParties(ctx, core.PartyClient)
	if err != nil || len(all) != 2 {
		t.Fatalf("all = %d, %v", len(all), err)
	}
	mine, err := c.ListPartiesByEnterprise(ctx, core.PartyClient, 1)
	if err != nil || len(mine) != 1 || mine[0].Kind != core.PartyClient {
		t.Fatalf("enterprise 1 = %+v, %v", mine, err)
	}
}

func TestClient_PartiesFilteredWhenBackendIgnoresQuery(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]wire.Party{
			{ID: 1, Nom: "Martin", EntrepriseID: 1},
			{ID: 2, Nom: "Durand", EntrepriseID: 2},
		})
	}))
	defer srv.Close()
	c := rest.NewClient(srv.URL)

	mine, err := c.ListPartiesByEnterprise(ctx, core.PartyClient, 1)
	if err != nil || len(mine) != 1 || mine[0].ID != 1 {
		t.Fatalf("enterprise 1 = %+v, %v", mine, err)
	}

	d := core.NewDriver(core.Session{EnterpriseID: 1}, c, c, core.NewReconciler(c, core.WithNotifier(core.DiscardNotifier)), nil)
	d.OpenCreate(core.OrderClient)
	if err := d.SetParty(ctx, 2); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("SetParty(2) = %v, want ErrNotFound", err)
	}
	if got := d.Fields().PartyID; got != 0 {
		t.Errorf("party = %d, want none selected", got)
	}
}

func TestClient_Movements(t *testing.T) {
	ctx := context.Background()
	c, m, _ := newBackend(t)
	art, err := m.FindArticleByCode(ctx, "ART-2")
	if err != nil {
		t.Fatal(err)
	}

	at := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	in, err := c.CreateMovement(ctx, core.MovementFields{Date: at, Quantity: dec("12"), Type: core.MovementIn, ArticleID: art.ID})
	if err != nil {
		t.Fatal(err)
	}
	if in.EnterpriseID != 1 || !in.Date.Equal(at) || in.Article == nil || in.Article.Code != "ART-2" {
		t.Errorf("created = %+v", in)
	}
	out, err := c.CreateMovement(ctx, core.MovementFields{Quantity: dec("5"), Type: core.MovementOut, ArticleID: art.ID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.UpdateMovement(ctx, out.ID, core.MovementFields{Quantity: dec("2"), Type: core.MovementOut, ArticleID: art.ID}); err != nil {
		t.Fatal(err)
	}

	levels, err := c.StockLevels(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(levels) != 2 || levels[1].Code != "ART-2" || !levels[1].OnHand().Equal(dec("10")) {
		t.Errorf("levels = %+v", levels)
	}

	if err := c.DeleteMovement(ctx, in.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetMovement(ctx, in.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("deleted movement: %v", err)
	}
	if _, err := c.CreateMovement(ctx, core.MovementFields{Quantity: dec("1"), Type: core.MovementIn, ArticleID: 999}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown article: %v", err)
	}
	all, err := c.ListMovements(ctx)
	if err != nil || len(all) != 1 || all[0].ID != out.ID {
		t.Errorf("movements = %+v, %v", all, err)
	}
}

package store_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"stock-orders/internal/core"
	"stock-orders/internal/db"
	"stock-orders/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type fixture struct {
	pool     *pgxpool.Pool
	articles store.ArticleService
	parties  store.PartyService
	orders   store.OrderService
	moves    store.MovementService
	client   *core.Party
	supplier *core.Party
	stylo    *core.Article
	cahier   *core.Article
}

func setupTestDB(t *testing.T) (*fixture, context.Context) {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Integration tests truncate every table; they never run against DATABASE_URL.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	if err := db.Migrate(dbURL); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE mvt_stk, lignes_commande_client, lignes_commande_fournisseur,
			commandes_clients, commandes_fournisseurs, clients, fournisseurs,
			articles, entreprises RESTART IDENTITY CASCADE;

		INSERT INTO entreprises (id, nom) VALUES (1, 'Papeterie Nord'), (2, 'Bureau Sud');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	f := &fixture{
		pool:     pool,
		articles: store.NewArticleService(pool),
		parties:  store.NewPartyService(pool),
		orders:   store.NewOrderService(pool),
		moves:    store.NewMovementService(pool),
	}

	f.stylo = mustArticle(t, ctx, f.articles, core.Article{Code: "ART-1", Designation: "Stylo", UnitPrice: dec("10.00"), TaxRate: dec("20"), EnterpriseID: 1})
	f.cahier = mustArticle(t, ctx, f.articles, core.Article{Code: "ART-2", Designation: "Cahier", UnitPrice: dec("4.50"), TaxRate: dec("5.5"), EnterpriseID: 1})

	f.client, err = f.parties.CreateParty(ctx, core.Party{Kind: core.PartyClient, FirstName: "Ada", LastName: "Martin", EnterpriseID: 1,
		Address: &core.Address{Line1: "1 rue Haute", City: "Lille", PostalCode: "59000", Country: "FR"}})
	if err != nil {
		t.Fatalf("CreateParty client failed: %v", err)
	}
	f.supplier, err = f.parties.CreateParty(ctx, core.Party{Kind: core.PartyFournisseur, LastName: "Encres SA", EnterpriseID: 1})
	if err != nil {
		t.Fatalf("CreateParty fournisseur failed: %v", err)
	}
	if _, err := f.parties.CreateParty(ctx, core.Party{Kind: core.PartyClient, LastName: "Dupont", EnterpriseID: 2}); err != nil {
		t.Fatalf("CreateParty second client failed: %v", err)
	}
	return f, ctx
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustArticle(t *testing.T, ctx context.Context, svc store.ArticleService, a core.Article) *core.Article {
	t.Helper()
	created, err := svc.CreateArticle(ctx, a)
	if err != nil {
		t.Fatalf("CreateArticle %s failed: %v", a.Code, err)
	}
	return created
}

func TestArticleService_CRUD(t *testing.T) {
	f, ctx := setupTestDB(t)

	if !f.stylo.UnitPriceTTC.Equal(dec("12.00")) {
		t.Errorf("Expected TTC 12.00, got %s", f.stylo.UnitPriceTTC)
	}

	got, err := f.articles.FindArticleByCode(ctx, "ART-2")
	if err != nil {
		t.Fatalf("FindArticleByCode failed: %v", err)
	}
	if got.ID != f.cahier.ID || !got.UnitPriceTTC.Equal(dec("4.75")) {
		t.Errorf("Unexpected article: %+v", got)
	}

	updated, err := f.articles.UpdateArticle(ctx, f.stylo.ID, core.Article{Code: "ART-1", Designation: "Stylo bleu", UnitPrice: dec("20"), TaxRate: dec("10"), UnitPriceTTC: dec("1")})
	if err != nil {
		t.Fatalf("UpdateArticle failed: %v", err)
	}
	if !updated.UnitPriceTTC.Equal(dec("22")) {
		t.Errorf("Expected recomputed TTC 22, got %s", updated.UnitPriceTTC)
	}

	if _, err := f.articles.CreateArticle(ctx, core.Article{Code: "ART-1", UnitPrice: dec("1")}); !errors.Is(err, core.ErrConflict) {
		t.Errorf("Expected ErrConflict for duplicate code, got %v", err)
	}
	if _, err := f.articles.FindArticleByCode(ctx, "NOPE"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	list, err := f.articles.ListArticles(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListArticles = %d, %v", len(list), err)
	}
}

func TestPartyService_FilterByEnterprise(t *testing.T) {
	f, ctx := setupTestDB(t)

	clients, err := f.parties.ListPartiesByEnterprise(ctx, core.PartyClient, 1)
	if err != nil {
		t.Fatalf("ListPartiesByEnterprise failed: %v", err)
	}
	if len(clients) != 1 || clients[0].ID != f.client.ID {
		t.Fatalf("Expected only Ada for enterprise 1, got %+v", clients)
	}
	if clients[0].Address == nil || clients[0].Address.City != "Lille" {
		t.Errorf("Address not read back: %+v", clients[0].Address)
	}

	none, err := f.parties.ListPartiesByEnterprise(ctx, core.PartyFournisseur, 2)
	if err != nil || len(none) != 0 {
		t.Errorf("Expected empty list, got %+v, %v", none, err)
	}

	all, err := f.parties.ListParties(ctx, core.PartyClient)
	if err != nil || len(all) != 2 {
		t.Errorf("ListParties = %d, %v", len(all), err)
	}

	if _, err := f.parties.GetParty(ctx, core.PartyFournisseur, f.client.ID+100); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestOrderService_Lifecycle(t *testing.T) {
	f, ctx := setupTestDB(t)
	kind := core.OrderClient
	header := core.OrderFields{Code: "CMD-001", OrderDate: "2024-03-01", EnterpriseID: 1, PartyID: f.client.ID}

	order, err := f.orders.CreateOrder(ctx, kind, header)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.OrderDate != "2024-03-01" || order.Party == nil || order.Party.LastName != "Martin" {
		t.Errorf("Unexpected order: %+v", order)
	}

	if _, err := f.orders.CreateOrder(ctx, kind, header); !errors.Is(err, core.ErrConflict) {
		t.Errorf("Expected ErrConflict on duplicate code, got %v", err)
	}

	l1, err := f.orders.AddLine(ctx, kind, order.ID, core.LineFields{ArticleID: f.stylo.ID, Quantity: dec("2"), UnitPrice: dec("10.00"), EnterpriseID: 1})
	if err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}
	l2, err := f.orders.AddLine(ctx, kind, order.ID, core.LineFields{ArticleID: f.cahier.ID, Quantity: dec("1"), UnitPrice: dec("4.50"), EnterpriseID: 1})
	if err != nil {
		t.Fatalf("AddLine failed: %v", err)
	}

	got, err := f.orders.GetOrderByCode(ctx, kind, "CMD-001")
	if err != nil {
		t.Fatalf("GetOrderByCode failed: %v", err)
	}
	if len(got.Lines) != 2 || !got.Total().Equal(dec("24.50")) {
		t.Errorf("Expected 2 lines totalling 24.50, got %d / %s", len(got.Lines), got.Total())
	}
	if got.Lines[0].Article == nil || got.Lines[0].Article.Code != "ART-1" {
		t.Errorf("Line article not joined: %+v", got.Lines[0])
	}

	if _, err := f.orders.UpdateLine(ctx, kind, order.ID, l1.ID, core.LineFields{ArticleID: f.stylo.ID, Quantity: dec("5"), UnitPrice: dec("9"), EnterpriseID: 1}); err != nil {
		t.Fatalf("UpdateLine failed: %v", err)
	}
	if err := f.orders.RemoveLine(ctx, kind, order.ID, l2.ID); err != nil {
		t.Fatalf("RemoveLine failed: %v", err)
	}
	if err := f.orders.RemoveLine(ctx, kind, order.ID, l2.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound removing twice, got %v", err)
	}

	lines, err := f.orders.ListLines(ctx, kind, order.ID)
	if err != nil || len(lines) != 1 || !lines[0].Subtotal().Equal(dec("45")) {
		t.Fatalf("ListLines = %+v, %v", lines, err)
	}

	if _, err := f.orders.AddLine(ctx, kind, order.ID, core.LineFields{ArticleID: f.cahier.ID, Quantity: dec("0"), EnterpriseID: 1}); err == nil {
		t.Error("Expected validation error for zero quantity")
	}

	header.Code = "CMD-001-B"
	updated, err := f.orders.UpdateOrder(ctx, kind, order.ID, header)
	if err != nil || updated.Code != "CMD-001-B" {
		t.Fatalf("UpdateOrder = %+v, %v", updated, err)
	}

	list, err := f.orders.ListOrders(ctx, kind)
	if err != nil || len(list) != 1 || len(list[0].Lines) != 1 {
		t.Fatalf("ListOrders = %+v, %v", list, err)
	}

	if err := f.orders.DeleteOrder(ctx, kind, order.ID); err != nil {
		t.Fatalf("DeleteOrder failed: %v", err)
	}
	var remaining int
	if err := f.pool.QueryRow(ctx, "SELECT count(*) FROM lignes_commande_client").Scan(&remaining); err != nil {
		t.Fatal(err)
	}
	if remaining != 0 {
		t.Errorf("Expected lines to cascade, %d remain", remaining)
	}
	if _, err := f.orders.GetOrder(ctx, kind, order.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestOrderService_PartyMustMatchEnterprise(t *testing.T) {
	f, ctx := setupTestDB(t)

	_, err := f.orders.CreateOrder(ctx, core.OrderFournisseur, core.OrderFields{Code: "CF-1", EnterpriseID: 2, PartyID: f.supplier.ID})
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	_, err = f.orders.CreateOrder(ctx, core.OrderFournisseur, core.OrderFields{Code: "CF-1", EnterpriseID: 1, PartyID: f.client.ID + 999})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown supplier, got %v", err)
	}
}

func TestOrderService_RemoveAllLines(t *testing.T) {
	f, ctx := setupTestDB(t)
	kind := core.OrderFournisseur

	order, err := f.orders.CreateOrder(ctx, kind, core.OrderFields{Code: "CF-2", EnterpriseID: 1, PartyID: f.supplier.ID})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	for _, a := range []*core.Article{f.stylo, f.cahier} {
		if _, err := f.orders.AddLine(ctx, kind, order.ID, core.LineFields{ArticleID: a.ID, Quantity: dec("1"), UnitPrice: a.UnitPrice, EnterpriseID: 1}); err != nil {
			t.Fatalf("AddLine failed: %v", err)
		}
	}
	n, err := f.orders.RemoveAllLines(ctx, kind, order.ID)
	if err != nil || n != 2 {
		t.Fatalf("RemoveAllLines = %d, %v", n, err)
	}
	if _, err := f.orders.RemoveAllLines(ctx, kind, order.ID+1); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

// The reconciler runs unchanged against the database backend.
func TestOrderService_Reconcile(t *testing.T) {
	f, ctx := setupTestDB(t)
	r := core.NewReconciler(f.orders, core.WithNotifier(core.DiscardNotifier))

	result, err := r.Save(ctx, core.SaveRequest{
		Kind:   core.OrderClient,
		Mode:   core.SaveCreate,
		Fields: core.OrderFields{Code: "CMD-010", OrderDate: "2024-04-02", EnterpriseID: 1, PartyID: f.client.ID},
		Draft: []core.DraftLine{
			core.NewDraftLine(f.stylo.ID, dec("2"), f.stylo.UnitPrice),
			core.NewDraftLine(f.cahier.ID, dec("3"), f.cahier.UnitPrice),
		},
	})
	if err != nil || !result.OK() {
		t.Fatalf("Save = %+v, %v", result, err)
	}

	saved, err := f.orders.GetOrder(ctx, core.OrderClient, result.Order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !saved.Total().Equal(dec("33.50")) {
		t.Errorf("Expected total 33.50, got %s", saved.Total())
	}

	draft := []core.DraftLine{core.DraftFromLineItem(saved.Lines[0])}
	draft[0].Quantity = dec("1")
	edit, err := r.Save(ctx, core.SaveRequest{
		Kind: core.OrderClient, Mode: core.SaveEdit, OrderID: saved.ID,
		Fields: saved.Fields(), Draft: draft, Baseline: saved.Lines,
	})
	if err != nil || !edit.OK() || edit.Count(core.OpUpdateLine) != 1 || edit.Count(core.OpRemoveLine) != 1 {
		t.Fatalf("edit Save = %+v, %v", edit, err)
	}
}

func TestMovementService_Lifecycle(t *testing.T) {
	f, ctx := setupTestDB(t)

	in, err := f.moves.CreateMovement(ctx, core.MovementFields{Quantity: dec("10"), Type: "entree", ArticleID: f.stylo.ID})
	if err != nil {
		t.Fatalf("CreateMovement failed: %v", err)
	}
	if in.Type != core.MovementIn || in.EnterpriseID != 1 || in.Date.IsZero() || in.Article == nil || in.Article.Code != "ART-1" {
		t.Errorf("created = %+v", in)
	}
	out, err := f.moves.CreateMovement(ctx, core.MovementFields{Quantity: dec("3"), Type: core.MovementOut, ArticleID: f.stylo.ID})
	if err != nil {
		t.Fatalf("CreateMovement failed: %v", err)
	}
	if _, err := f.moves.CreateMovement(ctx, core.MovementFields{Quantity: dec("1"), Type: core.MovementIn, ArticleID: 999}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown article: %v", err)
	}

	levels, err := f.moves.StockLevels(ctx)
	if err != nil || len(levels) != 2 {
		t.Fatalf("StockLevels = %+v, %v", levels, err)
	}
	if levels[0].Code != "ART-1" || !levels[0].OnHand().Equal(dec("7")) || !levels[1].OnHand().IsZero() {
		t.Errorf("levels = %+v", levels)
	}

	updated, err := f.moves.UpdateMovement(ctx, out.ID, core.MovementFields{Quantity: dec("4"), Type: core.MovementOut, ArticleID: f.cahier.ID, EnterpriseID: 2})
	if err != nil || updated.ArticleID != f.cahier.ID || updated.EnterpriseID != 2 {
		t.Fatalf("UpdateMovement = %+v, %v", updated, err)
	}
	if err := f.moves.DeleteMovement(ctx, in.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.moves.GetMovement(ctx, in.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("deleted movement: %v", err)
	}
	all, err := f.moves.ListMovements(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("ListMovements = %+v, %v", all, err)
	}
}

package wire

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"stock-orders/internal/core"

	"github.com/shopspring/decimal"
)

func TestOrderFieldNamesFollowKind(t *testing.T) {
	o := core.Order{
		ID: 1, Kind: core.OrderFournisseur, Code: "CF-1", OrderDate: "2024-01-02", EnterpriseID: 3, PartyID: 9,
		Lines: []core.LineItem{{ID: 4, ArticleID: 2, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.RequireFromString("1.50")}},
	}
	body, err := json.Marshal(FromOrder(o))
	if err != nil {
		t.Fatal(err)
	}
	s := string(body)
	for _, want := range []string{`"fournisseurId":9`, `"ligneCommandeFournisseurs":[`, `"quantite":"2"`, `"total":"3"`} {
		if !strings.Contains(s, want) {
			t.Errorf("body %s missing %s", s, want)
		}
	}
	for _, unwanted := range []string{"clientId", "ligneCommandeClients"} {
		if strings.Contains(s, unwanted) {
			t.Errorf("body %s should not contain %s", s, unwanted)
		}
	}

	var back Order
	if err := json.Unmarshal(body, &back); err != nil {
		t.Fatal(err)
	}
	got := back.Core(core.OrderFournisseur)
	if got.PartyID != 9 || len(got.Lines) != 1 || !got.Lines[0].UnitPrice.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("decoded = %+v", got)
	}
}

func TestEmptyClientOrderKeepsLineList(t *testing.T) {
	body, _ := json.Marshal(FromOrder(core.Order{Kind: core.OrderClient, PartyID: 5}))
	if !strings.Contains(string(body), `"ligneCommandeClients":[]`) {
		t.Errorf("body = %s", body)
	}
}

func TestLineRequestAcceptsNumbersAndStrings(t *testing.T) {
	var req LineRequest
	if err := json.Unmarshal([]byte(`{"articleId":1,"quantite":2,"prixUnitaire":"10.00"}`), &req); err != nil {
		t.Fatal(err)
	}
	if !req.Quantite.Equal(decimal.NewFromInt(2)) || req.PrixUnitaire == nil || !req.PrixUnitaire.Equal(decimal.NewFromInt(10)) {
		t.Errorf("req = %+v", req)
	}
	var bare LineRequest
	if err := json.Unmarshal([]byte(`{"articleId":1,"quantite":"1"}`), &bare); err != nil {
		t.Fatal(err)
	}
	if bare.PrixUnitaire != nil {
		t.Error("missing prixUnitaire should stay nil")
	}
}

func TestOrderRequestPartyID(t *testing.T) {
	r := NewOrderRequest(core.OrderClient, core.OrderFields{Code: "C", PartyID: 4})
	if r.ClientID != 4 || r.FournisseurID != 0 || r.PartyID(core.OrderClient) != 4 {
		t.Errorf("request = %+v", r)
	}
}

func TestMvtStkCarriesArticleAndStock(t *testing.T) {
	at := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	m := core.StockMovement{
		ID: 3, Date: at, Quantity: decimal.NewFromInt(4), Type: core.MovementOut, ArticleID: 2,
		Article: &core.Article{ID: 2, Code: "ART-2"},
	}
	body, err := json.Marshal(FromMovement(m))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"typeMvt":"SORTIE"`, `"dateMvt":"2024-05-02T00:00:00Z"`, `"codeArticle":"ART-2"`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}

	level, _ := json.Marshal(FromStockLevel(core.StockLevel{ArticleID: 2, In: decimal.NewFromInt(5), Out: decimal.NewFromInt(7)}))
	if !strings.Contains(string(level), `"stock":"-2"`) {
		t.Errorf("level = %s", level)
	}

	if req := NewMvtStkRequest(core.MovementFields{Quantity: decimal.NewFromInt(1), Type: core.MovementIn}); req.DateMvt != "" {
		t.Errorf("zero date should be omitted, got %q", req.DateMvt)
	}
}

package core_test

import (
	"testing"
	"time"

	"stock-orders/internal/core"
)

func TestParseMovementType(t *testing.T) {
	tests := []struct {
		in      string
		want    core.MovementType
		wantErr bool
	}{
		{"ENTREE", core.MovementIn, false},
		{"entree", core.MovementIn, false},
		{" in ", core.MovementIn, false},
		{"SORTIE", core.MovementOut, false},
		{"out", core.MovementOut, false},
		{"CORRECTION", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := core.ParseMovementType(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Errorf("ParseMovementType(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestStockLevels(t *testing.T) {
	movements := []core.StockMovement{
		{ArticleID: 2, Type: core.MovementIn, Quantity: dec("10")},
		{ArticleID: 2, Type: core.MovementOut, Quantity: dec("3")},
		{ArticleID: 1, Type: core.MovementOut, Quantity: dec("2")},
		{ArticleID: 99, Type: core.MovementIn, Quantity: dec("5")},
	}
	levels := core.StockLevels([]core.Article{testArticles[2], testArticles[1], testArticles[0]}, movements)
	if len(levels) != 3 {
		t.Fatalf("levels = %+v", levels)
	}
	want := []struct {
		code   string
		onHand string
	}{
		{"ART-1", "-2"},
		{"ART-2", "7"},
		{"ART-3", "0"},
	}
	for i, w := range want {
		if levels[i].Code != w.code || !levels[i].OnHand().Equal(dec(w.onHand)) {
			t.Errorf("level %d = %s on hand %s, want %s %s", i, levels[i].Code, levels[i].OnHand(), w.code, w.onHand)
		}
	}
}

func TestMovementsForOrder(t *testing.T) {
	at := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	order := core.Order{
		Kind: core.OrderFournisseur, EnterpriseID: 1,
		Lines: []core.LineItem{
			{ID: 1, ArticleID: 1, Quantity: dec("4"), EnterpriseID: 3},
			{ID: 2, ArticleID: 2, Quantity: dec("0")},
			{ID: 3, ArticleID: 3, Quantity: dec("1.5")},
		},
	}
	got := core.MovementsForOrder(order, at)
	if len(got) != 2 {
		t.Fatalf("movements = %+v", got)
	}
	if got[0].Type != core.MovementIn || got[0].EnterpriseID != 3 || !got[0].Date.Equal(at) {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].ArticleID != 3 || got[1].EnterpriseID != 1 || !got[1].Quantity.Equal(dec("1.5")) {
		t.Errorf("second = %+v", got[1])
	}

	order.Kind = core.OrderClient
	if got := core.MovementsForOrder(order, at); got[0].Type != core.MovementOut {
		t.Errorf("client order type = %s, want SORTIE", got[0].Type)
	}
}

func TestStockMovementSigned(t *testing.T) {
	in := core.StockMovement{Type: core.MovementIn, Quantity: dec("2")}
	out := core.StockMovement{Type: core.MovementOut, Quantity: dec("2")}
	if !in.Signed().Equal(dec("2")) || !out.Signed().Equal(dec("-2")) {
		t.Errorf("signed = %s, %s", in.Signed(), out.Signed())
	}
}

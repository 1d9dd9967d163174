package core_test

import (
	"testing"

	"stock-orders/internal/core"

	"github.com/shopspring/decimal"
)

func TestPriceTTC(t *testing.T) {
	tests := []struct {
		price, rate, want string
	}{
		{"10", "20", "12"},
		{"10.00", "0", "10"},
		{"4.50", "5.5", "4.75"},
		{"19.99", "5.5", "21.09"},
		{"0", "20", "0"},
		{"1.005", "10", "1.11"},
	}

	for _, tt := range tests {
		t.Run(tt.price+"@"+tt.rate, func(t *testing.T) {
			got := core.PriceTTC(dec(tt.price), dec(tt.rate))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("PriceTTC(%s, %s) = %s, want %s", tt.price, tt.rate, got, tt.want)
			}
		})
	}
}

func TestArticleRecomputeIsIdempotent(t *testing.T) {
	a := core.Article{UnitPrice: dec("19.99"), TaxRate: dec("5.5"), UnitPriceTTC: dec("999")}
	a.Recompute()
	first := a.UnitPriceTTC
	a.Recompute()
	if !a.UnitPriceTTC.Equal(first) {
		t.Fatalf("second Recompute changed TTC: %s -> %s", first, a.UnitPriceTTC)
	}
	if !first.Equal(dec("21.09")) {
		t.Errorf("TTC = %s, want 21.09", first)
	}
}

func TestOrderTotal(t *testing.T) {
	o := core.Order{Lines: []core.LineItem{
		{Quantity: dec("2"), UnitPrice: dec("10.00")},
		{Quantity: dec("0.5"), UnitPrice: dec("3")},
	}}
	if got := o.Total(); !got.Equal(dec("21.5")) {
		t.Errorf("Total = %s, want 21.5", got)
	}
	if got := (core.Order{}).Total(); !got.Equal(decimal.Zero) {
		t.Errorf("empty Total = %s, want 0", got)
	}
}

func TestParseOrderKind(t *testing.T) {
	for _, s := range []string{"client", "fournisseur"} {
		k, err := core.ParseOrderKind(s)
		if err != nil || string(k) != s {
			t.Errorf("ParseOrderKind(%q) = %q, %v", s, k, err)
		}
	}
	if _, err := core.ParseOrderKind("vendor"); err == nil {
		t.Error("expected error for unknown kind")
	}
	if core.OrderFournisseur.PartyKind() != core.PartyFournisseur || core.OrderClient.PartyKind() != core.PartyClient {
		t.Error("PartyKind mapping is wrong")
	}
}

func TestFilterByEnterprise(t *testing.T) {
	got := core.FilterByEnterprise(testParties, 1)
	if len(got) != 2 || got[0].ID != 42 || got[1].ID != 7 {
		t.Fatalf("FilterByEnterprise(1) = %+v", got)
	}
	if got := core.FilterByEnterprise(testParties, 9); len(got) != 0 {
		t.Errorf("FilterByEnterprise(9) = %+v, want none", got)
	}
}

func TestPartyDisplayName(t *testing.T) {
	tests := []struct {
		party core.Party
		want  string
	}{
		{core.Party{FirstName: "Ada", LastName: "Martin"}, "Ada Martin"},
		{core.Party{LastName: "Papeterie SA"}, "Papeterie SA"},
		{core.Party{FirstName: "Ada"}, "Ada"},
	}
	for _, tt := range tests {
		if got := tt.party.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		qty   string
		price string
	}{
		{"int", 3, "3", "3"},
		{"float", 2.5, "2.5", "2.5"},
		{"string", "4", "4", "4"},
		{"comma decimal", "1,25", "1.25", "1.25"},
		{"padded", "  7 ", "7", "7"},
		{"empty", "", "1", "0"},
		{"garbage", "abc", "1", "0"},
		{"nil", nil, "1", "0"},
		{"decimal", dec("9.99"), "9.99", "9.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.CoerceQuantity(tt.in); !got.Equal(dec(tt.qty)) {
				t.Errorf("CoerceQuantity(%v) = %s, want %s", tt.in, got, tt.qty)
			}
			if got := core.CoercePrice(tt.in); !got.Equal(dec(tt.price)) {
				t.Errorf("CoercePrice(%v) = %s, want %s", tt.in, got, tt.price)
			}
		})
	}
}

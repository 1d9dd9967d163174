package core_test

import (
	"context"
	"errors"
	"testing"

	"stock-orders/internal/core"
)

func TestDraftDocumentFillCreate(t *testing.T) {
	ctx := context.Background()
	f := newDriverFixture(t, 0)
	f.driver.OpenCreate(core.OrderClient)

	doc := core.DraftDocument{
		Kind:         core.OrderClient,
		Code:         "CMD-010",
		OrderDate:    "2024-05-02",
		EnterpriseID: 1,
		PartyID:      42,
		Lines: []core.DraftDocumentLine{
			{ArticleCode: "ART-1", Quantity: "2"},
			{ArticleID: 3, Quantity: "1", UnitPrice: "22,50"},
		},
	}
	must(t, doc.Fill(ctx, f.driver))

	lines := f.driver.Editor().Lines()
	if len(lines) != 2 {
		t.Fatalf("rows = %d", len(lines))
	}
	if !lines[0].UnitPrice.Equal(dec("10.00")) || !lines[0].Quantity.Equal(dec("2")) {
		t.Errorf("row 0 = %+v, want catalog price and qty 2", lines[0])
	}
	if !lines[1].UnitPrice.Equal(dec("22.50")) {
		t.Errorf("row 1 price = %s, want 22.50", lines[1].UnitPrice)
	}
	if got := f.driver.Fields(); got.Code != "CMD-010" || got.PartyID != 42 || got.EnterpriseID != 1 {
		t.Errorf("fields = %+v", got)
	}
}

func TestDraftDocumentRoundTripIssuesNoLineCall(t *testing.T) {
	ctx := context.Background()
	f := newDriverFixture(t, 0)

	order := core.Order{
		ID: 100, Kind: core.OrderClient, Code: "CMD-001", OrderDate: "2024-03-01",
		EnterpriseID: 1, PartyID: 42, Lines: baselineLines(),
	}
	must(t, f.driver.OpenEdit(ctx, &order))
	must(t, core.DraftDocumentFromOrder(order).Fill(ctx, f.driver))

	if _, err := f.driver.Submit(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.backend.String(); got != "updateOrder:0" {
		t.Errorf("calls = %s, want header only", got)
	}
}

func TestDraftDocumentFillEditDropsMissingLines(t *testing.T) {
	ctx := context.Background()
	f := newDriverFixture(t, 0)
	order := core.Order{
		ID: 100, Kind: core.OrderClient, Code: "CMD-001", OrderDate: "2024-03-01",
		EnterpriseID: 1, PartyID: 42, Lines: baselineLines(),
	}
	must(t, f.driver.OpenEdit(ctx, &order))

	doc := core.DraftDocumentFromOrder(order)
	doc.Lines = doc.Lines[:1]
	doc.Lines[0].Quantity = "4"
	must(t, doc.Fill(ctx, f.driver))

	if _, err := f.driver.Submit(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.backend.String(); got != "updateOrder:0,updateLine:1,removeLine:2,removeLine:3" {
		t.Errorf("calls = %s", got)
	}
}

func TestDraftDocumentFillErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		line core.DraftDocumentLine
	}{
		{"unknown article code", core.DraftDocumentLine{ArticleCode: "NOPE", Quantity: "1"}},
		{"unknown article id", core.DraftDocumentLine{ArticleID: 99, Quantity: "1"}},
		{"unknown line id", core.DraftDocumentLine{ID: 77, ArticleID: 1, Quantity: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDriverFixture(t, 1)
			f.driver.OpenCreate(core.OrderClient)
			doc := core.DraftDocument{Kind: core.OrderClient, Code: "C", EnterpriseID: 1, Lines: []core.DraftDocumentLine{tt.line}}
			if err := doc.Fill(ctx, f.driver); !errors.Is(err, core.ErrNotFound) {
				t.Errorf("err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestDraftDocumentFillSwapsArticles(t *testing.T) {
	ctx := context.Background()
	f := newDriverFixture(t, 0)
	order := core.Order{
		ID: 100, Kind: core.OrderClient, Code: "CMD-001", OrderDate: "2024-03-01",
		EnterpriseID: 1, PartyID: 42, Lines: baselineLines(),
	}
	must(t, f.driver.OpenEdit(ctx, &order))

	doc := core.DraftDocumentFromOrder(order)
	doc.Lines[0].ArticleID, doc.Lines[0].ArticleCode = 2, ""
	doc.Lines[1].ArticleID, doc.Lines[1].ArticleCode = 1, ""
	must(t, doc.Fill(ctx, f.driver))

	lines := f.driver.Editor().Lines()
	if lines[0].ArticleID != 2 || lines[1].ArticleID != 1 {
		t.Fatalf("articles = %d,%d, want 2,1", lines[0].ArticleID, lines[1].ArticleID)
	}
	if _, err := f.driver.Submit(ctx); err != nil {
		t.Fatal(err)
	}
	if got := f.backend.String(); got != "updateOrder:0,updateLine:1,updateLine:2" {
		t.Errorf("calls = %s", got)
	}
}

func TestDraftDocumentFillRejectsDuplicateArticles(t *testing.T) {
	ctx := context.Background()
	f := newDriverFixture(t, 1)
	f.driver.OpenCreate(core.OrderClient)
	doc := core.DraftDocument{Kind: core.OrderClient, Code: "C", EnterpriseID: 1, Lines: []core.DraftDocumentLine{
		{ArticleCode: "ART-1", Quantity: "1"},
		{ArticleID: 1, Quantity: "2"},
	}}
	if err := doc.Fill(ctx, f.driver); !errors.Is(err, core.ErrDuplicateArticle) {
		t.Errorf("err = %v, want ErrDuplicateArticle", err)
	}
	if n := f.driver.Editor().Len(); n != 0 {
		t.Errorf("rows = %d, want the form untouched", n)
	}
}

package repl_test

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"stock-orders/internal/adapters/repl"
	"stock-orders/internal/core"
	"stock-orders/internal/store"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seed(t *testing.T) (*store.Memory, *core.Party) {
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
	p, err := m.CreateParty(ctx, core.Party{Kind: core.PartyClient, LastName: "Martin", EnterpriseID: 1})
	if err != nil {
		t.Fatal(err)
	}
	return m, p
}

func run(t *testing.T, m *store.Memory, agent *fakeAgent, script ...string) string {
	t.Helper()
	cfg := repl.Config{Catalog: m, Parties: m, Orders: m, Session: core.Session{EnterpriseID: 1}}
	if agent != nil {
		cfg.Agent = agent
	}
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader(strings.Join(script, "\n") + "\n"))
	if err := repl.Run(context.Background(), cfg, in, &out); err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func TestFormCreate(t *testing.T) {
	m, p := seed(t)
	out := run(t, m, nil,
		"/submit",
		"/new client",
		"/code CMD-7",
		"/party "+strconv.Itoa(p.ID),
		"/add ART-1 2",
		"/add ART-1",
		"/lines",
		"ART-2 4 2.00",
		"done",
		"/qty 1 5",
		"/submit",
		"/quit",
	)
	if !strings.Contains(out, "Error: "+core.ErrNotEditing.Error()) {
		t.Errorf("submit while idle not reported:\n%s", out)
	}
	if !strings.Contains(out, "Goodbye!") {
		t.Errorf("missing goodbye:\n%s", out)
	}
	if strings.Contains(out, "Price not set") {
		t.Errorf("wizard price was not applied:\n%s", out)
	}

	o, err := m.GetOrderByCode(context.Background(), core.OrderClient, "CMD-7")
	if err != nil {
		t.Fatalf("order not saved: %v\n%s", err, out)
	}
	// ART-1 merged to 3 then set to 5: 50, plus 4 x 2.00.
	if len(o.Lines) != 2 || !o.Total().Equal(dec("58")) {
		t.Errorf("order = %+v, total %s", o.Lines, o.Total())
	}
}

func TestFormGateKeepsFormOpen(t *testing.T) {
	m, _ := seed(t)
	out := run(t, m, nil,
		"/new client",
		"/code CMD-8",
		"/submit",
		"/show",
		"/cancel",
		"/show",
	)
	if !strings.Contains(out, "client is required") || !strings.Contains(out, "add at least one article") {
		t.Errorf("gate problems not printed:\n%s", out)
	}
	if !strings.Contains(out, "ORDER FORM (client, editing)") {
		t.Errorf("form not shown after failed submit:\n%s", out)
	}
	if strings.Count(out, "Error: "+core.ErrNotEditing.Error()) != 1 {
		t.Errorf("show after cancel:\n%s", out)
	}
	orders, _ := m.ListOrders(context.Background(), core.OrderClient)
	if len(orders) != 0 {
		t.Errorf("%d orders saved", len(orders))
	}
}

func TestFormEdit(t *testing.T) {
	m, p := seed(t)
	ctx := context.Background()
	a1, _ := m.FindArticleByCode(ctx, "ART-1")
	o, err := m.CreateOrder(ctx, core.OrderClient, core.OrderFields{Code: "CMD-9", EnterpriseID: 1, PartyID: p.ID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddLine(ctx, core.OrderClient, o.ID, core.LineFields{ArticleID: a1.ID, Quantity: dec("1"), UnitPrice: dec("10"), EnterpriseID: 1}); err != nil {
		t.Fatal(err)
	}

	out := run(t, m, nil,
		"/edit client CMD-9",
		"/set 1 ART-2",
		"/rm 3",
		"/submit",
	)
	if !strings.Contains(out, "update_line") {
		t.Errorf("no update issued:\n%s", out)
	}
	if !strings.Contains(out, core.ErrLineIndex.Error()) {
		t.Errorf("bad line index not reported:\n%s", out)
	}
	lines, _ := m.ListLines(ctx, core.OrderClient, o.ID)
	if len(lines) != 1 || lines[0].Article == nil || lines[0].Article.Code != "ART-2" || !lines[0].UnitPrice.Equal(dec("2.50")) {
		t.Errorf("lines = %+v", lines)
	}
}

type fakeAgent struct{ partyID int }

func (a *fakeAgent) ProposeDraft(ctx context.Context, text string, articles []core.Article) (*core.DraftDocument, error) {
	return &core.DraftDocument{
		Kind:         core.OrderClient,
		Code:         "CMD-AI",
		EnterpriseID: 1,
		PartyID:      a.partyID,
		Lines:        []core.DraftDocumentLine{{ArticleCode: "ART-2", Quantity: "10"}},
	}, nil
}

func TestFormAgentDraft(t *testing.T) {
	m, p := seed(t)
	out := run(t, m, &fakeAgent{partyID: p.ID},
		"dix écrous pour Martin",
		"/submit",
	)
	if !strings.Contains(out, "Review the draft") {
		t.Errorf("draft not loaded:\n%s", out)
	}
	o, err := m.GetOrderByCode(context.Background(), core.OrderClient, "CMD-AI")
	if err != nil {
		t.Fatalf("draft not saved after submit: %v", err)
	}
	if !o.Total().Equal(dec("25")) {
		t.Errorf("total = %s", o.Total())
	}

	out = run(t, m, nil, "une commande")
	if !strings.Contains(out, "Draft agent not configured") {
		t.Errorf("missing agent not reported:\n%s", out)
	}
}

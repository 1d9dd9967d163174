package core_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stock-orders/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var testArticles = []core.Article{
	{ID: 1, Code: "ART-1", Designation: "Stylo", UnitPrice: dec("10.00"), TaxRate: dec("20"), UnitPriceTTC: dec("12.00"), EnterpriseID: 1},
	{ID: 2, Code: "ART-2", Designation: "Cahier", UnitPrice: dec("4.50"), TaxRate: dec("5.5"), UnitPriceTTC: dec("4.75"), EnterpriseID: 1},
	{ID: 3, Code: "ART-3", Designation: "Agrafeuse", UnitPrice: dec("25"), TaxRate: dec("20"), UnitPriceTTC: dec("30.00"), EnterpriseID: 1},
}

type fakeCatalog struct {
	articles []core.Article
	err      error
}

func (c *fakeCatalog) ListArticles(ctx context.Context) ([]core.Article, error) {
	if c.err != nil {
		return nil, c.err
	}
	return append([]core.Article(nil), c.articles...), nil
}

func (c *fakeCatalog) FindArticleByCode(ctx context.Context, code string) (*core.Article, error) {
	for _, a := range c.articles {
		if a.Code == code {
			a := a
			return &a, nil
		}
	}
	return nil, fmt.Errorf("article %s: %w", code, core.ErrNotFound)
}

type fakeParties struct {
	parties []core.Party
	calls   int
}

func (p *fakeParties) ListPartiesByEnterprise(ctx context.Context, kind core.PartyKind, enterpriseID int) ([]core.Party, error) {
	p.calls++
	var out []core.Party
	for _, party := range p.parties {
		if party.Kind == kind && party.EnterpriseID == enterpriseID {
			out = append(out, party)
		}
	}
	return out, nil
}

var testParties = []core.Party{
	{ID: 42, Kind: core.PartyClient, FirstName: "Ada", LastName: "Martin", EnterpriseID: 1},
	{ID: 43, Kind: core.PartyClient, FirstName: "Jean", LastName: "Dupont", EnterpriseID: 2},
	{ID: 7, Kind: core.PartyFournisseur, LastName: "Papeterie SA", EnterpriseID: 1},
}

// call is one recorded backend call, e.g. "addLine(100) article=1 qty=2 price=10".
type call struct {
	op      string
	orderID int
	lineID  int
	fields  core.LineFields
	header  core.OrderFields
}

// recordingBackend records every call and fails those whose op and line id
// match an entry of failOn ("updateLine:2", "createOrder", ...).
type recordingBackend struct {
	calls   []call
	failOn  map[string]bool
	nextID  int
	onCall  func(c call)
	current *core.Order
}

func newRecordingBackend(failOn ...string) *recordingBackend {
	b := &recordingBackend{failOn: map[string]bool{}, nextID: 500}
	for _, f := range failOn {
		b.failOn[f] = true
	}
	return b
}

var errBackend = errors.New("backend said no")

func (b *recordingBackend) record(c call) error {
	b.calls = append(b.calls, c)
	if b.onCall != nil {
		b.onCall(c)
	}
	if b.failOn[c.op] || b.failOn[fmt.Sprintf("%s:%d", c.op, c.lineID)] ||
		b.failOn[fmt.Sprintf("%s:article=%d", c.op, c.fields.ArticleID)] {
		return errBackend
	}
	return nil
}

func (b *recordingBackend) ops(op string) []call {
	var out []call
	for _, c := range b.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (b *recordingBackend) String() string {
	var parts []string
	for _, c := range b.calls {
		parts = append(parts, fmt.Sprintf("%s:%d", c.op, c.lineID))
	}
	return strings.Join(parts, ",")
}

func (b *recordingBackend) CreateOrder(ctx context.Context, kind core.OrderKind, f core.OrderFields) (*core.Order, error) {
	if err := b.record(call{op: "createOrder", header: f}); err != nil {
		return nil, err
	}
	return &core.Order{ID: 100, Kind: kind, Code: f.Code, OrderDate: f.OrderDate, EnterpriseID: f.EnterpriseID, PartyID: f.PartyID}, nil
}

func (b *recordingBackend) UpdateOrder(ctx context.Context, kind core.OrderKind, id int, f core.OrderFields) (*core.Order, error) {
	if err := b.record(call{op: "updateOrder", orderID: id, header: f}); err != nil {
		return nil, err
	}
	return &core.Order{ID: id, Kind: kind, Code: f.Code, OrderDate: f.OrderDate, EnterpriseID: f.EnterpriseID, PartyID: f.PartyID}, nil
}

func (b *recordingBackend) GetOrder(ctx context.Context, kind core.OrderKind, id int) (*core.Order, error) {
	if b.current != nil && b.current.ID == id {
		o := *b.current
		return &o, nil
	}
	return nil, fmt.Errorf("order %d: %w", id, core.ErrNotFound)
}

func (b *recordingBackend) GetOrderByCode(ctx context.Context, kind core.OrderKind, code string) (*core.Order, error) {
	if b.current != nil && b.current.Code == code {
		o := *b.current
		return &o, nil
	}
	return nil, fmt.Errorf("order %s: %w", code, core.ErrNotFound)
}

func (b *recordingBackend) ListOrders(ctx context.Context, kind core.OrderKind) ([]core.Order, error) {
	if b.current == nil {
		return nil, nil
	}
	return []core.Order{*b.current}, nil
}

func (b *recordingBackend) DeleteOrder(ctx context.Context, kind core.OrderKind, id int) error {
	return b.record(call{op: "deleteOrder", orderID: id})
}

func (b *recordingBackend) ListLines(ctx context.Context, kind core.OrderKind, orderID int) ([]core.LineItem, error) {
	if b.current == nil {
		return nil, nil
	}
	return b.current.Lines, nil
}

func (b *recordingBackend) AddLine(ctx context.Context, kind core.OrderKind, orderID int, f core.LineFields) (*core.LineItem, error) {
	if err := b.record(call{op: "addLine", orderID: orderID, fields: f}); err != nil {
		return nil, err
	}
	b.nextID++
	return &core.LineItem{ID: b.nextID, OrderID: orderID, ArticleID: f.ArticleID, Quantity: f.Quantity, UnitPrice: f.UnitPrice, EnterpriseID: f.EnterpriseID}, nil
}

func (b *recordingBackend) UpdateLine(ctx context.Context, kind core.OrderKind, orderID, lineID int, f core.LineFields) (*core.LineItem, error) {
	if err := b.record(call{op: "updateLine", orderID: orderID, lineID: lineID, fields: f}); err != nil {
		return nil, err
	}
	return &core.LineItem{ID: lineID, OrderID: orderID, ArticleID: f.ArticleID, Quantity: f.Quantity, UnitPrice: f.UnitPrice, EnterpriseID: f.EnterpriseID}, nil
}

func (b *recordingBackend) RemoveLine(ctx context.Context, kind core.OrderKind, orderID, lineID int) error {
	return b.record(call{op: "removeLine", orderID: orderID, lineID: lineID})
}

// recordingNotifier collects notifications.
type recordingNotifier struct {
	ok     []string
	failed []string
}

func (n *recordingNotifier) Success(msg string)            { n.ok = append(n.ok, msg) }
func (n *recordingNotifier) Failure(msg string, err error) { n.failed = append(n.failed, msg+": "+err.Error()) }

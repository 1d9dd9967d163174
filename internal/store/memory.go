package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"stock-orders/internal/core"
)

// Memory is an in-process store with the same semantics as the PostgreSQL
// services: unique codes, enterprise checks on parties and cascading order
// deletes. It backs tests of the layers above the store.
type Memory struct {
	mu       sync.Mutex
	nextID   int
	articles map[int]core.Article
	parties  map[core.PartyKind]map[int]core.Party
	orders   map[core.OrderKind]map[int]core.Order
	moves    map[int]core.StockMovement
}

var (
	_ ArticleService  = (*Memory)(nil)
	_ PartyService    = (*Memory)(nil)
	_ OrderService    = (*Memory)(nil)
	_ MovementService = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		articles: map[int]core.Article{},
		parties: map[core.PartyKind]map[int]core.Party{
			core.PartyClient:      {},
			core.PartyFournisseur: {},
		},
		orders: map[core.OrderKind]map[int]core.Order{
			core.OrderClient:      {},
			core.OrderFournisseur: {},
		},
		moves: map[int]core.StockMovement{},
	}
}

func (m *Memory) id() int {
	m.nextID++
	return m.nextID
}

func sortedByID[T any](items map[int]T) []T {
	ids := make([]int, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, items[id])
	}
	return out
}

// ── Articles ─────────────────────────────────────────────────────────────────

func (m *Memory) ListArticles(ctx context.Context) ([]core.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := sortedByID(m.articles)
	slices.SortStableFunc(out, func(a, b core.Article) int { return strings.Compare(a.Code, b.Code) })
	return out, nil
}

func (m *Memory) GetArticle(ctx context.Context, id int) (*core.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, fmt.Errorf("get article %d: %w", id, core.ErrNotFound)
	}
	return &a, nil
}

func (m *Memory) FindArticleByCode(ctx context.Context, code string) (*core.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.articles {
		if a.Code == code {
			return &a, nil
		}
	}
	return nil, fmt.Errorf("get article %s: %w", code, core.ErrNotFound)
}

func (m *Memory) CreateArticle(ctx context.Context, a core.Article) (*core.Article, error) {
	return m.putArticle(0, a)
}

func (m *Memory) UpdateArticle(ctx context.Context, id int, a core.Article) (*core.Article, error) {
	return m.putArticle(id, a)
}

func (m *Memory) putArticle(id int, a core.Article) (*core.Article, error) {
	if err := validateArticle(a); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != 0 {
		if _, ok := m.articles[id]; !ok {
			return nil, fmt.Errorf("update article %d: %w", id, core.ErrNotFound)
		}
	}
	for _, other := range m.articles {
		if other.Code == a.Code && other.ID != id {
			return nil, fmt.Errorf("save article %s: %w", a.Code, core.ErrConflict)
		}
	}
	if id == 0 {
		id = m.id()
	}
	a.ID = id
	a.Recompute()
	m.articles[id] = a
	return &a, nil
}

func (m *Memory) DeleteArticle(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; !ok {
		return fmt.Errorf("article %d: %w", id, core.ErrNotFound)
	}
	delete(m.articles, id)
	for mid, mv := range m.moves {
		if mv.ArticleID == id {
			delete(m.moves, mid)
		}
	}
	return nil
}

// ── Parties ──────────────────────────────────────────────────────────────────

func (m *Memory) ListParties(ctx context.Context, kind core.PartyKind) ([]core.Party, error) {
	return m.ListPartiesByEnterprise(ctx, kind, 0)
}

func (m *Memory) ListPartiesByEnterprise(ctx context.Context, kind core.PartyKind, enterpriseID int) ([]core.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.parties[kind]
	if !ok {
		return nil, fmt.Errorf("unknown party kind %q", kind)
	}
	all := sortedByID(table)
	if enterpriseID == 0 {
		return all, nil
	}
	return core.FilterByEnterprise(all, enterpriseID), nil
}

func (m *Memory) GetParty(ctx context.Context, kind core.PartyKind, id int) (*core.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.parties[kind][id]
	if !ok {
		return nil, fmt.Errorf("get %s %d: %w", kind, id, core.ErrNotFound)
	}
	return &p, nil
}

func (m *Memory) CreateParty(ctx context.Context, p core.Party) (*core.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.parties[p.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown party kind %q", p.Kind)
	}
	if strings.TrimSpace(p.LastName) == "" || p.EnterpriseID <= 0 {
		return nil, &core.ValidationError{Problems: []string{"nom and entrepriseId are required"}}
	}
	p.ID = m.id()
	table[p.ID] = p
	return &p, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (m *Memory) checkOrder(kind core.OrderKind, f core.OrderFields, id int) error {
	if _, ok := m.orders[kind]; !ok {
		return fmt.Errorf("unknown order kind %q", kind)
	}
	if err := validateOrderFields(f); err != nil {
		return err
	}
	p, ok := m.parties[kind.PartyKind()][f.PartyID]
	if !ok {
		return fmt.Errorf("get %s %d: %w", kind.PartyKind(), f.PartyID, core.ErrNotFound)
	}
	if p.EnterpriseID != f.EnterpriseID {
		return &core.ValidationError{Problems: []string{
			fmt.Sprintf("%s %d does not belong to enterprise %d", kind.PartyKind(), f.PartyID, f.EnterpriseID),
		}}
	}
	for _, o := range m.orders[kind] {
		if o.Code == f.Code && o.ID != id {
			return fmt.Errorf("save %s order %s: %w", kind, f.Code, core.ErrConflict)
		}
	}
	return nil
}

func (m *Memory) CreateOrder(ctx context.Context, kind core.OrderKind, f core.OrderFields) (*core.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOrder(kind, f, 0); err != nil {
		return nil, err
	}
	o := core.Order{ID: m.id(), Kind: kind, Lines: []core.LineItem{}}
	m.setHeader(&o, f)
	m.orders[kind][o.ID] = o
	return m.view(o), nil
}

func (m *Memory) UpdateOrder(ctx context.Context, kind core.OrderKind, orderID int, f core.OrderFields) (*core.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOrder(kind, f, orderID); err != nil {
		return nil, err
	}
	o, ok := m.orders[kind][orderID]
	if !ok {
		return nil, fmt.Errorf("%s order %d: %w", kind, orderID, core.ErrNotFound)
	}
	m.setHeader(&o, f)
	m.orders[kind][orderID] = o
	return m.view(o), nil
}

func (m *Memory) setHeader(o *core.Order, f core.OrderFields) {
	o.Code = f.Code
	o.OrderDate = orderDate(f)
	o.EnterpriseID = f.EnterpriseID
	o.PartyID = f.PartyID
}

// view copies o with its party and line articles attached.
func (m *Memory) view(o core.Order) *core.Order {
	if p, ok := m.parties[o.Kind.PartyKind()][o.PartyID]; ok {
		o.Party = &p
	}
	o.Lines = slices.Clone(o.Lines)
	for i := range o.Lines {
		o.Lines[i] = m.lineView(o.Lines[i])
	}
	return &o
}

func (m *Memory) lineView(l core.LineItem) core.LineItem {
	if a, ok := m.articles[l.ArticleID]; ok {
		l.Article = &a
	}
	return l
}

func (m *Memory) GetOrder(ctx context.Context, kind core.OrderKind, orderID int) (*core.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[kind][orderID]
	if !ok {
		return nil, fmt.Errorf("get %s order %d: %w", kind, orderID, core.ErrNotFound)
	}
	return m.view(o), nil
}

func (m *Memory) GetOrderByCode(ctx context.Context, kind core.OrderKind, code string) (*core.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders[kind] {
		if o.Code == code {
			return m.view(o), nil
		}
	}
	return nil, fmt.Errorf("get %s order %s: %w", kind, code, core.ErrNotFound)
}

func (m *Memory) ListOrders(ctx context.Context, kind core.OrderKind) ([]core.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table, ok := m.orders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown order kind %q", kind)
	}
	out := []core.Order{}
	for _, o := range sortedByID(table) {
		out = append(out, *m.view(o))
	}
	return out, nil
}

func (m *Memory) DeleteOrder(ctx context.Context, kind core.OrderKind, orderID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[kind][orderID]; !ok {
		return fmt.Errorf("%s order %d: %w", kind, orderID, core.ErrNotFound)
	}
	delete(m.orders[kind], orderID)
	return nil
}

func (m *Memory) ListLines(ctx context.Context, kind core.OrderKind, orderID int) ([]core.LineItem, error) {
	o, err := m.GetOrder(ctx, kind, orderID)
	if err != nil {
		return nil, err
	}
	return o.Lines, nil
}

func (m *Memory) AddLine(ctx context.Context, kind core.OrderKind, orderID int, f core.LineFields) (*core.LineItem, error) {
	if err := validateLineFields(f); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[kind][orderID]
	if !ok {
		return nil, fmt.Errorf("%s order %d: %w", kind, orderID, core.ErrNotFound)
	}
	if _, ok := m.articles[f.ArticleID]; !ok {
		return nil, fmt.Errorf("add line to %s order %d: referenced row does not exist: %w", kind, orderID, core.ErrNotFound)
	}
	l := core.LineItem{
		ID:           m.id(),
		OrderID:      orderID,
		ArticleID:    f.ArticleID,
		Quantity:     f.Quantity,
		UnitPrice:    f.UnitPrice,
		EnterpriseID: f.EnterpriseID,
	}
	o.Lines = append(o.Lines, l)
	m.orders[kind][orderID] = o
	v := m.lineView(l)
	return &v, nil
}

func (m *Memory) UpdateLine(ctx context.Context, kind core.OrderKind, orderID, lineID int, f core.LineFields) (*core.LineItem, error) {
	if err := validateLineFields(f); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[kind][orderID]
	if !ok {
		return nil, fmt.Errorf("%s order %d: %w", kind, orderID, core.ErrNotFound)
	}
	if _, ok := m.articles[f.ArticleID]; !ok {
		return nil, fmt.Errorf("update line %d: referenced row does not exist: %w", lineID, core.ErrNotFound)
	}
	for i, l := range o.Lines {
		if l.ID != lineID {
			continue
		}
		l.ArticleID = f.ArticleID
		l.Quantity = f.Quantity
		l.UnitPrice = f.UnitPrice
		l.EnterpriseID = f.EnterpriseID
		o.Lines[i] = l
		v := m.lineView(l)
		return &v, nil
	}
	return nil, fmt.Errorf("update line %d of %s order %d: %w", lineID, kind, orderID, core.ErrNotFound)
}

func (m *Memory) RemoveLine(ctx context.Context, kind core.OrderKind, orderID, lineID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[kind][orderID]
	if ok {
		for i, l := range o.Lines {
			if l.ID == lineID {
				o.Lines = slices.Delete(o.Lines, i, i+1)
				m.orders[kind][orderID] = o
				return nil
			}
		}
	}
	return fmt.Errorf("line %d of %s order %d: %w", lineID, kind, orderID, core.ErrNotFound)
}

func (m *Memory) RemoveAllLines(ctx context.Context, kind core.OrderKind, orderID int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[kind][orderID]
	if !ok {
		return 0, fmt.Errorf("%s order %d: %w", kind, orderID, core.ErrNotFound)
	}
	n := int64(len(o.Lines))
	o.Lines = []core.LineItem{}
	m.orders[kind][orderID] = o
	return n, nil
}

// ── Stock movements ──────────────────────────────────────────────────────────

func (m *Memory) ListMovements(ctx context.Context) ([]core.StockMovement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := sortedByID(m.moves)
	slices.SortStableFunc(out, func(a, b core.StockMovement) int { return a.Date.Compare(b.Date) })
	for i := range out {
		out[i] = m.movementView(out[i])
	}
	return out, nil
}

func (m *Memory) GetMovement(ctx context.Context, id int) (*core.StockMovement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mv, ok := m.moves[id]
	if !ok {
		return nil, fmt.Errorf("get stock movement %d: %w", id, core.ErrNotFound)
	}
	mv = m.movementView(mv)
	return &mv, nil
}

func (m *Memory) CreateMovement(ctx context.Context, f core.MovementFields) (*core.StockMovement, error) {
	return m.putMovement(0, f)
}

func (m *Memory) UpdateMovement(ctx context.Context, id int, f core.MovementFields) (*core.StockMovement, error) {
	return m.putMovement(id, f)
}

func (m *Memory) putMovement(id int, f core.MovementFields) (*core.StockMovement, error) {
	f, err := validateMovement(f)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if id != 0 {
		if _, ok := m.moves[id]; !ok {
			return nil, fmt.Errorf("stock movement %d: %w", id, core.ErrNotFound)
		}
	}
	a, ok := m.articles[f.ArticleID]
	if !ok {
		return nil, fmt.Errorf("get article %d: %w", f.ArticleID, core.ErrNotFound)
	}
	if f.EnterpriseID <= 0 {
		f.EnterpriseID = a.EnterpriseID
	}
	if f.Date.IsZero() {
		f.Date = time.Now()
	}
	if id == 0 {
		id = m.id()
	}
	mv := core.StockMovement{
		ID:           id,
		Date:         f.Date,
		Quantity:     f.Quantity,
		Type:         f.Type,
		ArticleID:    f.ArticleID,
		EnterpriseID: f.EnterpriseID,
	}
	m.moves[id] = mv
	mv = m.movementView(mv)
	return &mv, nil
}

func (m *Memory) DeleteMovement(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.moves[id]; !ok {
		return fmt.Errorf("stock movement %d: %w", id, core.ErrNotFound)
	}
	delete(m.moves, id)
	return nil
}

func (m *Memory) StockLevels(ctx context.Context) ([]core.StockLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return core.StockLevels(sortedByID(m.articles), sortedByID(m.moves)), nil
}

func (m *Memory) movementView(mv core.StockMovement) core.StockMovement {
	if a, ok := m.articles[mv.ArticleID]; ok {
		mv.Article = &a
	}
	return mv
}

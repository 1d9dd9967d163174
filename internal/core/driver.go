package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DriverState is the form state of a Driver.
type DriverState int

const (
	StateIdle DriverState = iota
	StateEditing
	StateSaving
)

func (s DriverState) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSaving:
		return "saving"
	}
	return "idle"
}

// Session carries the signed-in user's context. EnterpriseID, when non-zero,
// preselects the enterprise of new orders.
type Session struct {
	EnterpriseID int
}

// Driver binds the catalog, the party reader, the line editor and the
// reconciler into one order form with a single save action.
//
//	Idle --Open*--> Editing --Submit--> Saving --ok--> Idle
//	                   ^                  |
//	                   +--header failed---+
type Driver struct {
	mu sync.Mutex

	session    Session
	catalog    ArticleCatalog
	parties    PartyReader
	reconciler *Reconciler
	onSaved    func(*SaveResult)

	state    DriverState
	kind     OrderKind
	mode     SaveMode
	orderID  int
	fields   OrderFields
	baseline []LineItem
	editor   *Editor

	articles   []Article
	candidates []Party
}

// NewDriver builds a Driver. onSaved runs after every save whose header
// succeeded, whatever the line outcomes; it may be nil.
func NewDriver(session Session, catalog ArticleCatalog, parties PartyReader, reconciler *Reconciler, onSaved func(*SaveResult)) *Driver {
	return &Driver{
		session:    session,
		catalog:    catalog,
		parties:    parties,
		reconciler: reconciler,
		onSaved:    onSaved,
		editor:     NewEditor(),
	}
}

// State returns the current form state.
func (d *Driver) State() DriverState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// OpenCreate opens an empty form for a new order of kind.
func (d *Driver) OpenCreate(kind OrderKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = StateEditing
	d.kind = kind
	d.mode = SaveCreate
	d.orderID = 0
	d.fields = OrderFields{
		OrderDate:    time.Now().Format("2006-01-02"),
		EnterpriseID: d.session.EnterpriseID,
	}
	d.baseline = nil
	d.candidates = nil
	d.editor.Reset()
}

// OpenEdit opens the form on an existing order; its lines become both the
// editor rows and the reconciliation baseline.
func (d *Driver) OpenEdit(ctx context.Context, order *Order) error {
	if order == nil || order.ID <= 0 {
		return fmt.Errorf("open edit: order is not persisted")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = StateEditing
	d.kind = order.Kind
	d.mode = SaveEdit
	d.orderID = order.ID
	d.fields = order.Fields()
	d.baseline = append([]LineItem(nil), order.Lines...)
	d.candidates = nil
	d.editor.Load(order.Lines)
	if d.fields.EnterpriseID > 0 {
		return d.loadCandidates(ctx)
	}
	return nil
}

// Cancel closes the form without saving.
func (d *Driver) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateSaving {
		d.state = StateIdle
	}
}

// Fields returns the current header fields.
func (d *Driver) Fields() OrderFields {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fields
}

// Editor gives direct access to the line rows. Callers must not use it while
// a Submit is running.
func (d *Driver) Editor() *Editor {
	return d.editor
}

func (d *Driver) SetCode(code string) error {
	return d.edit(func() error {
		d.fields.Code = strings.TrimSpace(code)
		return nil
	})
}

// SetDate sets the order date; date must be YYYY-MM-DD.
func (d *Driver) SetDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("invalid order date %q: %w", date, err)
	}
	return d.edit(func() error {
		d.fields.OrderDate = date
		return nil
	})
}

// SetEnterprise selects the enterprise. The selected party is cleared because
// it may not belong to the new enterprise.
func (d *Driver) SetEnterprise(ctx context.Context, enterpriseID int) error {
	return d.edit(func() error {
		if d.fields.EnterpriseID != enterpriseID {
			d.fields.PartyID = 0
		}
		d.fields.EnterpriseID = enterpriseID
		d.candidates = nil
		if enterpriseID <= 0 {
			return nil
		}
		return d.loadCandidates(ctx)
	})
}

// Candidates returns the parties selectable for the current enterprise.
func (d *Driver) Candidates() []Party {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Party(nil), d.candidates...)
}

// SetParty selects the counterparty. It must belong to the selected enterprise.
func (d *Driver) SetParty(ctx context.Context, partyID int) error {
	return d.edit(func() error {
		if d.fields.EnterpriseID <= 0 {
			return fmt.Errorf("select an enterprise before the %s", d.kind.PartyKind())
		}
		if d.candidates == nil {
			if err := d.loadCandidates(ctx); err != nil {
				return err
			}
		}
		for _, p := range d.candidates {
			if p.ID == partyID {
				d.fields.PartyID = partyID
				return nil
			}
		}
		return fmt.Errorf("%s %d does not belong to enterprise %d: %w", d.kind.PartyKind(), partyID, d.fields.EnterpriseID, ErrNotFound)
	})
}

// SetLineArticle selects articleID on row i, resolving its price through the
// catalog.
func (d *Driver) SetLineArticle(ctx context.Context, i, articleID int) error {
	return d.edit(func() error {
		a, err := d.article(ctx, articleID)
		if err != nil {
			return err
		}
		return d.editor.SetLineArticle(i, *a)
	})
}

// AddArticleByCode looks an article up by code and merges qty into the rows.
func (d *Driver) AddArticleByCode(ctx context.Context, code string, qty any) error {
	return d.edit(func() error {
		a, err := d.catalog.FindArticleByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("article %s: %w", code, err)
		}
		d.editor.AddArticle(*a, CoerceQuantity(qty))
		return nil
	})
}

// Articles returns the catalog, loading it on first use.
func (d *Driver) Articles(ctx context.Context) ([]Article, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.loadArticles(ctx); err != nil {
		return nil, err
	}
	return append([]Article(nil), d.articles...), nil
}

// Validate runs the submit gate without issuing any call.
func (d *Driver) Validate() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.validate()
}

func (d *Driver) validate() error {
	verr := &ValidationError{}
	if d.fields.Code == "" {
		verr.add("order code is required")
	}
	if d.fields.EnterpriseID <= 0 {
		verr.add("enterprise is required")
	}
	if d.fields.PartyID <= 0 {
		verr.add(string(d.kind.PartyKind()) + " is required")
	}
	lines := d.editor.Lines()
	if len(lines) == 0 {
		verr.add("add at least one article to the order")
	}
	for i, l := range lines {
		if l.ArticleID <= 0 {
			verr.add(fmt.Sprintf("line %d: select an article", i+1))
		}
	}
	return verr.orNil()
}

// Submit validates the form and saves it. A validation failure issues no call
// and leaves the form open. A header failure returns to Editing. Otherwise the
// form closes, onSaved runs and the result is returned; check
// SaveResult.OK for line failures.
func (d *Driver) Submit(ctx context.Context) (*SaveResult, error) {
	d.mu.Lock()
	switch d.state {
	case StateIdle:
		d.mu.Unlock()
		return nil, ErrNotEditing
	case StateSaving:
		d.mu.Unlock()
		return nil, ErrBusy
	}
	if err := d.validate(); err != nil {
		d.mu.Unlock()
		return nil, err
	}
	req := SaveRequest{
		Kind:     d.kind,
		Mode:     d.mode,
		OrderID:  d.orderID,
		Fields:   d.fields,
		Draft:    d.editor.Lines(),
		Baseline: append([]LineItem(nil), d.baseline...),
	}
	d.state = StateSaving
	d.mu.Unlock()

	result, err := d.reconciler.Save(ctx, req)

	d.mu.Lock()
	if err != nil {
		d.state = StateEditing
		d.mu.Unlock()
		return nil, err
	}
	d.state = StateIdle
	d.editor.Reset()
	d.baseline = nil
	d.mu.Unlock()

	if d.onSaved != nil {
		d.onSaved(result)
	}
	return result, nil
}

// edit runs fn under the lock when a form is open and not saving.
func (d *Driver) edit(fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch d.state {
	case StateIdle:
		return ErrNotEditing
	case StateSaving:
		return ErrBusy
	}
	return fn()
}

func (d *Driver) loadCandidates(ctx context.Context) error {
	parties, err := d.parties.ListPartiesByEnterprise(ctx, d.kind.PartyKind(), d.fields.EnterpriseID)
	if err != nil {
		return fmt.Errorf("failed to load %s list: %w", d.kind.PartyKind(), err)
	}
	d.candidates = parties
	return nil
}

func (d *Driver) loadArticles(ctx context.Context) error {
	if d.articles != nil {
		return nil
	}
	articles, err := d.catalog.ListArticles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load articles: %w", err)
	}
	d.articles = articles
	return nil
}

func (d *Driver) article(ctx context.Context, id int) (*Article, error) {
	if err := d.loadArticles(ctx); err != nil {
		return nil, err
	}
	for i := range d.articles {
		if d.articles[i].ID == id {
			return &d.articles[i], nil
		}
	}
	return nil, fmt.Errorf("article %d: %w", id, ErrNotFound)
}

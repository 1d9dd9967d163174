package core

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Editor holds the draft lines of one order form. At most one row references a
// given article. Rows are addressed by index in display order.
//
// Editor is not safe for concurrent use; Driver serializes access to it.
type Editor struct {
	lines   []DraftLine
	removed []int
}

// NewEditor returns an editor with no rows.
func NewEditor() *Editor {
	return &Editor{}
}

// Load replaces the rows with the persisted lines of an order and clears
// removal bookkeeping.
func (e *Editor) Load(lines []LineItem) {
	e.lines = make([]DraftLine, 0, len(lines))
	for _, l := range lines {
		e.lines = append(e.lines, DraftFromLineItem(l))
	}
	e.removed = nil
}

// Reset drops every row.
func (e *Editor) Reset() {
	e.lines = nil
	e.removed = nil
}

// Lines returns a copy of the rows.
func (e *Editor) Lines() []DraftLine {
	return slices.Clone(e.lines)
}

// Len is the number of rows.
func (e *Editor) Len() int {
	return len(e.lines)
}

// Removed returns the ids of persisted rows removed since the last Load.
func (e *Editor) Removed() []int {
	return slices.Clone(e.removed)
}

// AddLine appends an empty row: no article, quantity 1, price 0.
func (e *Editor) AddLine() int {
	e.lines = append(e.lines, NewDraftLine(0, defaultQuantity, defaultPrice))
	return len(e.lines) - 1
}

// AddArticle is the code-entry flow: if a row already references a, its
// quantity grows by qty; otherwise a row priced at a.UnitPrice is appended.
// It returns the index of the affected row.
func (e *Editor) AddArticle(a Article, qty decimal.Decimal) int {
	if i := e.indexOfArticle(a.ID, -1); i >= 0 {
		e.lines[i].Quantity = e.lines[i].Quantity.Add(qty)
		return i
	}
	e.lines = append(e.lines, NewDraftLine(a.ID, qty, a.UnitPrice))
	return len(e.lines) - 1
}

// SetLineArticle selects a for row i and fills in its current unit price. The
// price stays editable afterwards. Selecting an article held by another row
// fails with ErrDuplicateArticle.
func (e *Editor) SetLineArticle(i int, a Article) error {
	if err := e.check(i); err != nil {
		return err
	}
	if j := e.indexOfArticle(a.ID, i); j >= 0 {
		return fmt.Errorf("line %d: article %s: %w (line %d)", i+1, a.Code, ErrDuplicateArticle, j+1)
	}
	e.assignArticle(i, a)
	return nil
}

// assignArticle sets the article of row i without the duplicate check. Callers
// that rewrite several rows at once check the final article set themselves.
func (e *Editor) assignArticle(i int, a Article) {
	e.lines[i].ArticleID = a.ID
	e.lines[i].UnitPrice = a.UnitPrice
}

// SetLineQuantity sets the quantity of row i. Non-positive values are kept
// here and rejected only when the order is saved.
func (e *Editor) SetLineQuantity(i int, q decimal.Decimal) error {
	if err := e.check(i); err != nil {
		return err
	}
	e.lines[i].Quantity = q
	return nil
}

// SetLineUnitPrice sets the unit price of row i.
func (e *Editor) SetLineUnitPrice(i int, p decimal.Decimal) error {
	if err := e.check(i); err != nil {
		return err
	}
	e.lines[i].UnitPrice = p
	return nil
}

// RemoveLine deletes row i. A persisted row's id is kept in Removed.
func (e *Editor) RemoveLine(i int) error {
	if err := e.check(i); err != nil {
		return err
	}
	if id, ok := e.lines[i].ID(); ok {
		e.removed = append(e.removed, id)
	}
	e.lines = slices.Delete(e.lines, i, i+1)
	return nil
}

// Total is the sum of quantity * unit price over all rows.
func (e *Editor) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Candidates returns the articles row i may select: all of them except those
// already held by other rows.
func (e *Editor) Candidates(i int, articles []Article) []Article {
	out := make([]Article, 0, len(articles))
	for _, a := range articles {
		if e.indexOfArticle(a.ID, i) < 0 {
			out = append(out, a)
		}
	}
	return out
}

func (e *Editor) indexOfArticle(articleID, skip int) int {
	if articleID <= 0 {
		return -1
	}
	for j, l := range e.lines {
		if j != skip && l.ArticleID == articleID {
			return j
		}
	}
	return -1
}

func (e *Editor) check(i int) error {
	if i < 0 || i >= len(e.lines) {
		return fmt.Errorf("line %d of %d: %w", i+1, len(e.lines), ErrLineIndex)
	}
	return nil
}

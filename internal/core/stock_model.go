package core

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType is the direction of a stock movement.
type MovementType string

const (
	MovementIn  MovementType = "ENTREE"
	MovementOut MovementType = "SORTIE"
)

// ParseMovementType accepts ENTREE/SORTIE in any case, plus in/out.
func ParseMovementType(s string) (MovementType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(MovementIn), "IN":
		return MovementIn, nil
	case string(MovementOut), "OUT":
		return MovementOut, nil
	}
	return "", fmt.Errorf("unknown movement type %q (want ENTREE or SORTIE)", s)
}

// StockMovement records goods entering or leaving stock for one article.
// Quantity is always positive; Type carries the direction.
type StockMovement struct {
	ID           int             `json:"id"`
	Date         time.Time       `json:"date"`
	Quantity     decimal.Decimal `json:"quantity"`
	Type         MovementType    `json:"type"`
	ArticleID    int             `json:"article_id"`
	EnterpriseID int             `json:"enterprise_id"`
	Article      *Article        `json:"article,omitempty"`
}

// Signed is the quantity with the movement's direction applied.
func (m StockMovement) Signed() decimal.Decimal {
	if m.Type == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// MovementFields is what a caller sends to record or rewrite a movement.
type MovementFields struct {
	Date         time.Time
	Quantity     decimal.Decimal
	Type         MovementType
	ArticleID    int
	EnterpriseID int
}

// StockLevel is the running balance of one article over all its movements.
type StockLevel struct {
	ArticleID   int             `json:"article_id"`
	Code        string          `json:"code"`
	Designation string          `json:"designation"`
	In          decimal.Decimal `json:"in"`
	Out         decimal.Decimal `json:"out"`
}

// OnHand is In - Out. It goes negative when more left stock than entered.
func (l StockLevel) OnHand() decimal.Decimal {
	return l.In.Sub(l.Out)
}

// StockLevels balances movements per article. Every article appears, ordered
// by code; movements for unknown articles are ignored.
func StockLevels(articles []Article, movements []StockMovement) []StockLevel {
	levels := make([]StockLevel, 0, len(articles))
	index := make(map[int]int, len(articles))
	for _, a := range articles {
		index[a.ID] = len(levels)
		levels = append(levels, StockLevel{ArticleID: a.ID, Code: a.Code, Designation: a.Designation, In: decimal.Zero, Out: decimal.Zero})
	}
	for _, m := range movements {
		i, ok := index[m.ArticleID]
		if !ok {
			continue
		}
		if m.Type == MovementOut {
			levels[i].Out = levels[i].Out.Add(m.Quantity)
		} else {
			levels[i].In = levels[i].In.Add(m.Quantity)
		}
	}
	slices.SortStableFunc(levels, func(a, b StockLevel) int { return strings.Compare(a.Code, b.Code) })
	return levels
}

// MovementTypeFor is the stock direction of fulfilling an order: goods from a
// fournisseur enter stock, goods for a client leave it.
func MovementTypeFor(kind OrderKind) MovementType {
	if kind == OrderFournisseur {
		return MovementIn
	}
	return MovementOut
}

// MovementsForOrder returns one movement per order line, dated at, in line
// order. Lines with a non-positive quantity produce nothing.
func MovementsForOrder(o Order, at time.Time) []MovementFields {
	typ := MovementTypeFor(o.Kind)
	out := make([]MovementFields, 0, len(o.Lines))
	for _, l := range o.Lines {
		if !l.Quantity.IsPositive() {
			continue
		}
		enterpriseID := l.EnterpriseID
		if enterpriseID <= 0 {
			enterpriseID = o.EnterpriseID
		}
		out = append(out, MovementFields{
			Date:         at,
			Quantity:     l.Quantity,
			Type:         typ,
			ArticleID:    l.ArticleID,
			EnterpriseID: enterpriseID,
		})
	}
	return out
}

package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderKind selects between sales orders (commandes client) and purchase
// orders (commandes fournisseur). Both kinds share one shape.
type OrderKind string

const (
	OrderClient      OrderKind = "client"
	OrderFournisseur OrderKind = "fournisseur"
)

// ParseOrderKind accepts "client" or "fournisseur".
func ParseOrderKind(s string) (OrderKind, error) {
	switch OrderKind(s) {
	case OrderClient, OrderFournisseur:
		return OrderKind(s), nil
	}
	return "", fmt.Errorf("unknown order kind %q (want client or fournisseur)", s)
}

// PartyKind returns the counterparty kind for orders of this kind.
func (k OrderKind) PartyKind() PartyKind {
	if k == OrderFournisseur {
		return PartyFournisseur
	}
	return PartyClient
}

// Order is a persisted order header with its lines.
type Order struct {
	ID           int        `json:"id"`
	Kind         OrderKind  `json:"kind"`
	Code         string     `json:"code"`
	OrderDate    string     `json:"order_date"` // YYYY-MM-DD
	EnterpriseID int        `json:"enterprise_id"`
	PartyID      int        `json:"party_id"`
	Party        *Party     `json:"party,omitempty"`
	Lines        []LineItem `json:"lines"`
}

// Total is the sum of line subtotals. It is never stored.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Fields returns the header fields sent on create and update.
func (o Order) Fields() OrderFields {
	return OrderFields{
		Code:         o.Code,
		OrderDate:    o.OrderDate,
		EnterpriseID: o.EnterpriseID,
		PartyID:      o.PartyID,
	}
}

// LineItem is one persisted order line. UnitPrice is a snapshot taken when the
// line was written.
type LineItem struct {
	ID           int             `json:"id"`
	OrderID      int             `json:"order_id"`
	ArticleID    int             `json:"article_id"`
	Article      *Article        `json:"article,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	EnterpriseID int             `json:"enterprise_id"`
}

// Subtotal is Quantity * UnitPrice.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// Fields returns the line fields as sent to the backend.
func (l LineItem) Fields() LineFields {
	return LineFields{
		ArticleID:    l.ArticleID,
		Quantity:     l.Quantity,
		UnitPrice:    l.UnitPrice,
		EnterpriseID: l.EnterpriseID,
	}
}

// OrderFields are the header fields of an order. The enterprise and the party
// must agree: the party belongs to the enterprise.
type OrderFields struct {
	Code         string
	OrderDate    string // YYYY-MM-DD
	EnterpriseID int
	PartyID      int
}

// LineFields are the per-line fields sent on add and update. EnterpriseID is
// duplicated from the parent order.
type LineFields struct {
	ArticleID    int
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	EnterpriseID int
}

// Valid reports whether the line can be sent: an article is selected, the
// quantity is positive and the price is not negative.
func (f LineFields) Valid() bool {
	return f.ArticleID > 0 && f.Quantity.IsPositive() && !f.UnitPrice.IsNegative()
}

// sameContent compares the fields a line update can change.
func (f LineFields) sameContent(o LineFields) bool {
	return f.ArticleID == o.ArticleID &&
		f.Quantity.Equal(o.Quantity) &&
		f.UnitPrice.Equal(o.UnitPrice) &&
		f.EnterpriseID == o.EnterpriseID
}

// DraftLine is an editable line. It is either new (never persisted) or
// persisted, in which case it carries the backend line id. The two states are
// built with NewDraftLine and PersistedDraftLine; the zero value is a new,
// empty line.
type DraftLine struct {
	id        int
	persisted bool

	ArticleID int
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// NewDraftLine returns an unpersisted line.
func NewDraftLine(articleID int, quantity, unitPrice decimal.Decimal) DraftLine {
	return DraftLine{ArticleID: articleID, Quantity: quantity, UnitPrice: unitPrice}
}

// PersistedDraftLine returns a line that already exists on the backend as id.
func PersistedDraftLine(id, articleID int, quantity, unitPrice decimal.Decimal) DraftLine {
	return DraftLine{id: id, persisted: true, ArticleID: articleID, Quantity: quantity, UnitPrice: unitPrice}
}

// DraftFromLineItem turns a persisted line into an editable one.
func DraftFromLineItem(l LineItem) DraftLine {
	return PersistedDraftLine(l.ID, l.ArticleID, l.Quantity, l.UnitPrice)
}

// ID returns the backend id and true for persisted lines, or 0 and false.
func (d DraftLine) ID() (int, bool) {
	return d.id, d.persisted
}

// Subtotal is Quantity * UnitPrice.
func (d DraftLine) Subtotal() decimal.Decimal {
	return d.Quantity.Mul(d.UnitPrice)
}

// Fields builds the wire fields for the line within enterpriseID.
func (d DraftLine) Fields(enterpriseID int) LineFields {
	return LineFields{
		ArticleID:    d.ArticleID,
		Quantity:     d.Quantity,
		UnitPrice:    d.UnitPrice,
		EnterpriseID: enterpriseID,
	}
}

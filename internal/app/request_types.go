package app

import (
	"github.com/shopspring/decimal"
)

// ArticleRequest is the input for creating or updating an article.
type ArticleRequest struct {
	Code         string
	Designation  string
	UnitPrice    decimal.Decimal
	TaxRate      decimal.Decimal
	EnterpriseID int
}

// OrderRequest is the header of a client or fournisseur order.
type OrderRequest struct {
	Code         string
	OrderDate    string // YYYY-MM-DD; empty means today
	EnterpriseID int
	PartyID      int
}

// LineRequest is one order line.
type LineRequest struct {
	ArticleID    int
	Quantity     decimal.Decimal
	UnitPrice    *decimal.Decimal // nil means the article's current price
	EnterpriseID int              // zero means the order's enterprise
}

// MovementRequest is one stock movement.
type MovementRequest struct {
	Date         string // RFC 3339 or YYYY-MM-DD; empty means now
	Quantity     decimal.Decimal
	Type         string // ENTREE or SORTIE
	ArticleID    int
	EnterpriseID int // zero means the article's enterprise
}

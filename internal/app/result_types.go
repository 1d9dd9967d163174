package app

import "stock-orders/internal/core"

type ArticleResult struct {
	Article *core.Article
}

type ArticleListResult struct {
	Articles []core.Article
}

type PartyResult struct {
	Party *core.Party
}

type PartyListResult struct {
	Kind    core.PartyKind
	Parties []core.Party
}

// OrderResult is returned by order header operations. Lines are included.
type OrderResult struct {
	Order *core.Order
}

type OrderListResult struct {
	Kind   core.OrderKind
	Orders []core.Order
}

type LineResult struct {
	Line *core.LineItem
}

type LineListResult struct {
	OrderID int
	Lines   []core.LineItem
}

// RemovedLinesResult is returned by RemoveAllLines.
type RemovedLinesResult struct {
	OrderID int
	Removed int64
}

type MovementResult struct {
	Movement *core.StockMovement
}

type MovementListResult struct {
	Movements []core.StockMovement
}

type StockLevelsResult struct {
	Levels []core.StockLevel
}

// DraftResult is returned by ProposeDraft.
type DraftResult struct {
	Draft *core.DraftDocument
}

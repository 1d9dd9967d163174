package core

import "context"

// ArticleCatalog reads the article catalog. The order workflow never mutates it.
type ArticleCatalog interface {
	ListArticles(ctx context.Context) ([]Article, error)
	// FindArticleByCode returns an error wrapping ErrNotFound for unknown codes.
	FindArticleByCode(ctx context.Context, code string) (*Article, error)
}

// PartyReader lists the parties selectable for an order.
type PartyReader interface {
	ListPartiesByEnterprise(ctx context.Context, kind PartyKind, enterpriseID int) ([]Party, error)
}

// OrderBackend persists orders and their lines. There is no bulk line endpoint:
// lines are added, updated and removed one call at a time.
type OrderBackend interface {
	CreateOrder(ctx context.Context, kind OrderKind, fields OrderFields) (*Order, error)
	UpdateOrder(ctx context.Context, kind OrderKind, orderID int, fields OrderFields) (*Order, error)
	GetOrder(ctx context.Context, kind OrderKind, orderID int) (*Order, error)
	GetOrderByCode(ctx context.Context, kind OrderKind, code string) (*Order, error)
	ListOrders(ctx context.Context, kind OrderKind) ([]Order, error)
	DeleteOrder(ctx context.Context, kind OrderKind, orderID int) error

	ListLines(ctx context.Context, kind OrderKind, orderID int) ([]LineItem, error)
	AddLine(ctx context.Context, kind OrderKind, orderID int, fields LineFields) (*LineItem, error)
	UpdateLine(ctx context.Context, kind OrderKind, orderID, lineID int, fields LineFields) (*LineItem, error)
	RemoveLine(ctx context.Context, kind OrderKind, orderID, lineID int) error
}

// StockRecorder records stock movements and reports the resulting levels.
type StockRecorder interface {
	CreateMovement(ctx context.Context, fields MovementFields) (*StockMovement, error)
	ListMovements(ctx context.Context) ([]StockMovement, error)
	StockLevels(ctx context.Context) ([]StockLevel, error)
}

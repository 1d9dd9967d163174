package app

import (
	"context"

	"stock-orders/internal/core"
)

// ApplicationService is the single interface the web adapter calls. It holds
// no HTTP or display logic.
type ApplicationService interface {
	// ListArticles returns the whole catalog ordered by code.
	ListArticles(ctx context.Context) (*ArticleListResult, error)
	GetArticle(ctx context.Context, id int) (*ArticleResult, error)
	GetArticleByCode(ctx context.Context, code string) (*ArticleResult, error)
	// CreateArticle and UpdateArticle derive the TTC price from price and tax rate.
	CreateArticle(ctx context.Context, req ArticleRequest) (*ArticleResult, error)
	UpdateArticle(ctx context.Context, id int, req ArticleRequest) (*ArticleResult, error)
	DeleteArticle(ctx context.Context, id int) error

	// ListParties returns clients or fournisseurs, restricted to one
	// enterprise when enterpriseID is non-zero.
	ListParties(ctx context.Context, kind core.PartyKind, enterpriseID int) (*PartyListResult, error)
	GetParty(ctx context.Context, kind core.PartyKind, id int) (*PartyResult, error)

	ListOrders(ctx context.Context, kind core.OrderKind) (*OrderListResult, error)
	GetOrder(ctx context.Context, kind core.OrderKind, id int) (*OrderResult, error)
	GetOrderByCode(ctx context.Context, kind core.OrderKind, code string) (*OrderResult, error)
	CreateOrder(ctx context.Context, kind core.OrderKind, req OrderRequest) (*OrderResult, error)
	UpdateOrder(ctx context.Context, kind core.OrderKind, id int, req OrderRequest) (*OrderResult, error)
	// DeleteOrder removes the order and all of its lines.
	DeleteOrder(ctx context.Context, kind core.OrderKind, id int) error

	ListLines(ctx context.Context, kind core.OrderKind, orderID int) (*LineListResult, error)
	// AddLine and UpdateLine default a missing unit price to the article's
	// catalog price and a missing enterprise to the order's.
	AddLine(ctx context.Context, kind core.OrderKind, orderID int, req LineRequest) (*LineResult, error)
	UpdateLine(ctx context.Context, kind core.OrderKind, orderID, lineID int, req LineRequest) (*LineResult, error)
	RemoveLine(ctx context.Context, kind core.OrderKind, orderID, lineID int) error
	RemoveAllLines(ctx context.Context, kind core.OrderKind, orderID int) (*RemovedLinesResult, error)

	ListMovements(ctx context.Context) (*MovementListResult, error)
	GetMovement(ctx context.Context, id int) (*MovementResult, error)
	// CreateMovement and UpdateMovement default a missing date to now and a
	// missing enterprise to the article's.
	CreateMovement(ctx context.Context, req MovementRequest) (*MovementResult, error)
	UpdateMovement(ctx context.Context, id int, req MovementRequest) (*MovementResult, error)
	DeleteMovement(ctx context.Context, id int) error
	// StockLevels balances every article's movements.
	StockLevels(ctx context.Context) (*StockLevelsResult, error)

	// ProposeDraft asks the draft agent for an order draft. The draft is
	// returned for review and never saved.
	ProposeDraft(ctx context.Context, text string) (*DraftResult, error)
}

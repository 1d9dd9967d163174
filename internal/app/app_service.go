package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-orders/internal/ai"
	"stock-orders/internal/core"
	"stock-orders/internal/store"
)

// ErrAgentUnavailable is returned by ProposeDraft when no OpenAI key is configured.
var ErrAgentUnavailable = errors.New("draft agent not configured")

type appService struct {
	articles  store.ArticleService
	parties   store.PartyService
	orders    store.OrderService
	movements store.MovementService
	agent     ai.DraftProposer
}

// NewAppService constructs an appService that satisfies ApplicationService.
// agent may be nil.
func NewAppService(
	articles store.ArticleService,
	parties store.PartyService,
	orders store.OrderService,
	movements store.MovementService,
	agent ai.DraftProposer,
) ApplicationService {
	return &appService{
		articles:  articles,
		parties:   parties,
		orders:    orders,
		movements: movements,
		agent:     agent,
	}
}

// ── Articles ─────────────────────────────────────────────────────────────────

func (s *appService) ListArticles(ctx context.Context) (*ArticleListResult, error) {
	articles, err := s.articles.ListArticles(ctx)
	if err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []core.Article{}
	}
	return &ArticleListResult{Articles: articles}, nil
}

func (s *appService) GetArticle(ctx context.Context, id int) (*ArticleResult, error) {
	a, err := s.articles.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ArticleResult{Article: a}, nil
}

func (s *appService) GetArticleByCode(ctx context.Context, code string) (*ArticleResult, error) {
	a, err := s.articles.FindArticleByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return &ArticleResult{Article: a}, nil
}

func (s *appService) CreateArticle(ctx context.Context, req ArticleRequest) (*ArticleResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	a, err := s.articles.CreateArticle(ctx, req.article())
	if err != nil {
		return nil, err
	}
	return &ArticleResult{Article: a}, nil
}

func (s *appService) UpdateArticle(ctx context.Context, id int, req ArticleRequest) (*ArticleResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	a, err := s.articles.UpdateArticle(ctx, id, req.article())
	if err != nil {
		return nil, err
	}
	return &ArticleResult{Article: a}, nil
}

func (s *appService) DeleteArticle(ctx context.Context, id int) error {
	return s.articles.DeleteArticle(ctx, id)
}

// ── Parties ──────────────────────────────────────────────────────────────────

func (s *appService) ListParties(ctx context.Context, kind core.PartyKind, enterpriseID int) (*PartyListResult, error) {
	var (
		parties []core.Party
		err     error
	)
	if enterpriseID > 0 {
		parties, err = s.parties.ListPartiesByEnterprise(ctx, kind, enterpriseID)
	} else {
		parties, err = s.parties.ListParties(ctx, kind)
	}
	if err != nil {
		return nil, err
	}
	if parties == nil {
		parties = []core.Party{}
	}
	return &PartyListResult{Kind: kind, Parties: parties}, nil
}

func (s *appService) GetParty(ctx context.Context, kind core.PartyKind, id int) (*PartyResult, error) {
	p, err := s.parties.GetParty(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return &PartyResult{Party: p}, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *appService) ListOrders(ctx context.Context, kind core.OrderKind) (*OrderListResult, error) {
	orders, err := s.orders.ListOrders(ctx, kind)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []core.Order{}
	}
	return &OrderListResult{Kind: kind, Orders: orders}, nil
}

func (s *appService) GetOrder(ctx context.Context, kind core.OrderKind, id int) (*OrderResult, error) {
	o, err := s.orders.GetOrder(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: o}, nil
}

func (s *appService) GetOrderByCode(ctx context.Context, kind core.OrderKind, code string) (*OrderResult, error) {
	o, err := s.orders.GetOrderByCode(ctx, kind, code)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: o}, nil
}

func (s *appService) CreateOrder(ctx context.Context, kind core.OrderKind, req OrderRequest) (*OrderResult, error) {
	if err := req.validate(kind); err != nil {
		return nil, err
	}
	o, err := s.orders.CreateOrder(ctx, kind, req.fields())
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: o}, nil
}

func (s *appService) UpdateOrder(ctx context.Context, kind core.OrderKind, id int, req OrderRequest) (*OrderResult, error) {
	if err := req.validate(kind); err != nil {
		return nil, err
	}
	o, err := s.orders.UpdateOrder(ctx, kind, id, req.fields())
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: o}, nil
}

func (s *appService) DeleteOrder(ctx context.Context, kind core.OrderKind, id int) error {
	return s.orders.DeleteOrder(ctx, kind, id)
}

// ── Lines ────────────────────────────────────────────────────────────────────

func (s *appService) ListLines(ctx context.Context, kind core.OrderKind, orderID int) (*LineListResult, error) {
	lines, err := s.orders.ListLines(ctx, kind, orderID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []core.LineItem{}
	}
	return &LineListResult{OrderID: orderID, Lines: lines}, nil
}

func (s *appService) AddLine(ctx context.Context, kind core.OrderKind, orderID int, req LineRequest) (*LineResult, error) {
	fields, err := s.lineFields(ctx, kind, orderID, req)
	if err != nil {
		return nil, err
	}
	l, err := s.orders.AddLine(ctx, kind, orderID, fields)
	if err != nil {
		return nil, err
	}
	return &LineResult{Line: l}, nil
}

func (s *appService) UpdateLine(ctx context.Context, kind core.OrderKind, orderID, lineID int, req LineRequest) (*LineResult, error) {
	fields, err := s.lineFields(ctx, kind, orderID, req)
	if err != nil {
		return nil, err
	}
	l, err := s.orders.UpdateLine(ctx, kind, orderID, lineID, fields)
	if err != nil {
		return nil, err
	}
	return &LineResult{Line: l}, nil
}

func (s *appService) RemoveLine(ctx context.Context, kind core.OrderKind, orderID, lineID int) error {
	return s.orders.RemoveLine(ctx, kind, orderID, lineID)
}

func (s *appService) RemoveAllLines(ctx context.Context, kind core.OrderKind, orderID int) (*RemovedLinesResult, error) {
	n, err := s.orders.RemoveAllLines(ctx, kind, orderID)
	if err != nil {
		return nil, err
	}
	return &RemovedLinesResult{OrderID: orderID, Removed: n}, nil
}

// lineFields validates req and fills the price and enterprise defaults.
func (s *appService) lineFields(ctx context.Context, kind core.OrderKind, orderID int, req LineRequest) (core.LineFields, error) {
	if err := req.validate(); err != nil {
		return core.LineFields{}, err
	}
	fields := core.LineFields{
		ArticleID:    req.ArticleID,
		Quantity:     req.Quantity,
		EnterpriseID: req.EnterpriseID,
	}
	if req.UnitPrice != nil {
		fields.UnitPrice = *req.UnitPrice
	} else {
		a, err := s.articles.GetArticle(ctx, req.ArticleID)
		if err != nil {
			return core.LineFields{}, err
		}
		fields.UnitPrice = a.UnitPrice
	}
	if fields.EnterpriseID <= 0 {
		o, err := s.orders.GetOrder(ctx, kind, orderID)
		if err != nil {
			return core.LineFields{}, err
		}
		fields.EnterpriseID = o.EnterpriseID
	}
	return fields, nil
}

// ── Stock movements ──────────────────────────────────────────────────────────

func (s *appService) ListMovements(ctx context.Context) (*MovementListResult, error) {
	movements, err := s.movements.ListMovements(ctx)
	if err != nil {
		return nil, err
	}
	if movements == nil {
		movements = []core.StockMovement{}
	}
	return &MovementListResult{Movements: movements}, nil
}

func (s *appService) GetMovement(ctx context.Context, id int) (*MovementResult, error) {
	m, err := s.movements.GetMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	return &MovementResult{Movement: m}, nil
}

func (s *appService) CreateMovement(ctx context.Context, req MovementRequest) (*MovementResult, error) {
	fields, err := req.fields()
	if err != nil {
		return nil, err
	}
	m, err := s.movements.CreateMovement(ctx, fields)
	if err != nil {
		return nil, err
	}
	return &MovementResult{Movement: m}, nil
}

func (s *appService) UpdateMovement(ctx context.Context, id int, req MovementRequest) (*MovementResult, error) {
	fields, err := req.fields()
	if err != nil {
		return nil, err
	}
	m, err := s.movements.UpdateMovement(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	return &MovementResult{Movement: m}, nil
}

func (s *appService) DeleteMovement(ctx context.Context, id int) error {
	return s.movements.DeleteMovement(ctx, id)
}

func (s *appService) StockLevels(ctx context.Context) (*StockLevelsResult, error) {
	levels, err := s.movements.StockLevels(ctx)
	if err != nil {
		return nil, err
	}
	if levels == nil {
		levels = []core.StockLevel{}
	}
	return &StockLevelsResult{Levels: levels}, nil
}

// ── Drafts ───────────────────────────────────────────────────────────────────

func (s *appService) ProposeDraft(ctx context.Context, text string) (*DraftResult, error) {
	if s.agent == nil {
		return nil, ErrAgentUnavailable
	}
	articles, err := s.articles.ListArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	doc, err := s.agent.ProposeDraft(ctx, text, articles)
	if err != nil {
		return nil, err
	}
	return &DraftResult{Draft: doc}, nil
}

// ── Validation ───────────────────────────────────────────────────────────────

func (r ArticleRequest) validate() error {
	var problems []string
	if strings.TrimSpace(r.Code) == "" {
		problems = append(problems, "codeArticle is required")
	}
	if strings.TrimSpace(r.Designation) == "" {
		problems = append(problems, "designation is required")
	}
	if r.UnitPrice.IsNegative() {
		problems = append(problems, "prixUnitaire must not be negative")
	}
	if r.TaxRate.IsNegative() {
		problems = append(problems, "tauxTva must not be negative")
	}
	return validation(problems)
}

func (r ArticleRequest) article() core.Article {
	return core.Article{
		Code:         strings.TrimSpace(r.Code),
		Designation:  strings.TrimSpace(r.Designation),
		UnitPrice:    r.UnitPrice,
		TaxRate:      r.TaxRate,
		EnterpriseID: r.EnterpriseID,
	}
}

func (r OrderRequest) validate(kind core.OrderKind) error {
	var problems []string
	if strings.TrimSpace(r.Code) == "" {
		problems = append(problems, "code is required")
	}
	if r.PartyID <= 0 {
		problems = append(problems, partyField(kind)+" is required")
	}
	if r.EnterpriseID <= 0 {
		problems = append(problems, "entrepriseId is required")
	}
	if r.OrderDate != "" {
		if _, err := time.Parse("2006-01-02", r.OrderDate); err != nil {
			problems = append(problems, "dateCommande must be YYYY-MM-DD")
		}
	}
	return validation(problems)
}

func (r OrderRequest) fields() core.OrderFields {
	return core.OrderFields{
		Code:         strings.TrimSpace(r.Code),
		OrderDate:    r.OrderDate,
		EnterpriseID: r.EnterpriseID,
		PartyID:      r.PartyID,
	}
}

func (r LineRequest) validate() error {
	var problems []string
	if r.ArticleID <= 0 {
		problems = append(problems, "articleId is required")
	}
	if !r.Quantity.IsPositive() {
		problems = append(problems, "quantite must be positive")
	}
	if r.UnitPrice != nil && r.UnitPrice.IsNegative() {
		problems = append(problems, "prixUnitaire must not be negative")
	}
	return validation(problems)
}

// fields validates r and converts it. A zero date is filled in by the store.
func (r MovementRequest) fields() (core.MovementFields, error) {
	var problems []string
	f := core.MovementFields{
		Quantity:     r.Quantity,
		ArticleID:    r.ArticleID,
		EnterpriseID: r.EnterpriseID,
	}
	if r.ArticleID <= 0 {
		problems = append(problems, "articleId is required")
	}
	if !r.Quantity.IsPositive() {
		problems = append(problems, "quantite must be positive")
	}
	typ, err := core.ParseMovementType(r.Type)
	if err != nil {
		problems = append(problems, "typeMvt must be ENTREE or SORTIE")
	}
	f.Type = typ
	if d := strings.TrimSpace(r.Date); d != "" {
		at, err := parseMovementDate(d)
		if err != nil {
			problems = append(problems, "dateMvt must be RFC 3339 or YYYY-MM-DD")
		}
		f.Date = at
	}
	return f, validation(problems)
}

func parseMovementDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// partyField is the JSON name of the counterparty id for kind.
func partyField(kind core.OrderKind) string {
	if kind == core.OrderFournisseur {
		return "fournisseurId"
	}
	return "clientId"
}

func validation(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &core.ValidationError{Problems: problems}
}

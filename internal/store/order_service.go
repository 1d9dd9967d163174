package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-orders/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderService persists both order kinds and their lines. It implements
// core.OrderBackend, so a backend process and the ordersync --local mode share it.
type OrderService interface {
	core.OrderBackend
	// RemoveAllLines deletes every line of an order and returns how many went.
	RemoveAllLines(ctx context.Context, kind core.OrderKind, orderID int) (int64, error)
}

type orderService struct {
	pool *pgxpool.Pool
}

func NewOrderService(pool *pgxpool.Pool) OrderService {
	return &orderService{pool: pool}
}

// orderTables names the tables and columns backing one order kind.
type orderTables struct {
	orders      string
	lines       string
	parties     string
	partyColumn string
}

func tablesFor(kind core.OrderKind) (orderTables, error) {
	switch kind {
	case core.OrderClient:
		return orderTables{"commandes_clients", "lignes_commande_client", "clients", "client_id"}, nil
	case core.OrderFournisseur:
		return orderTables{"commandes_fournisseurs", "lignes_commande_fournisseur", "fournisseurs", "fournisseur_id"}, nil
	}
	return orderTables{}, fmt.Errorf("unknown order kind %q", kind)
}

func validateOrderFields(f core.OrderFields) error {
	verr := &core.ValidationError{}
	if strings.TrimSpace(f.Code) == "" {
		verr.Problems = append(verr.Problems, "code is required")
	}
	if f.EnterpriseID <= 0 {
		verr.Problems = append(verr.Problems, "entrepriseId is required")
	}
	if f.PartyID <= 0 {
		verr.Problems = append(verr.Problems, "party is required")
	}
	if f.OrderDate != "" {
		if _, err := time.Parse("2006-01-02", f.OrderDate); err != nil {
			verr.Problems = append(verr.Problems, "dateCommande must be YYYY-MM-DD")
		}
	}
	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

func validateLineFields(f core.LineFields) error {
	verr := &core.ValidationError{}
	if f.ArticleID <= 0 {
		verr.Problems = append(verr.Problems, "articleId is required")
	}
	if !f.Quantity.IsPositive() {
		verr.Problems = append(verr.Problems, "quantite must be positive")
	}
	if f.UnitPrice.IsNegative() {
		verr.Problems = append(verr.Problems, "prixUnitaire must not be negative")
	}
	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

// checkParty verifies that the party exists and belongs to the enterprise.
func checkParty(ctx context.Context, q pgxQuerier, t orderTables, kind core.OrderKind, f core.OrderFields) error {
	var enterpriseID int
	err := q.QueryRow(ctx, `SELECT entreprise_id FROM `+t.parties+` WHERE id = $1`, f.PartyID).Scan(&enterpriseID)
	if err != nil {
		return dbError(err, fmt.Sprintf("get %s %d", kind.PartyKind(), f.PartyID))
	}
	if enterpriseID != f.EnterpriseID {
		return &core.ValidationError{Problems: []string{
			fmt.Sprintf("%s %d does not belong to enterprise %d", kind.PartyKind(), f.PartyID, f.EnterpriseID),
		}}
	}
	return nil
}

func orderDate(f core.OrderFields) string {
	if f.OrderDate == "" {
		return time.Now().Format("2006-01-02")
	}
	return f.OrderDate
}

func (s *orderService) CreateOrder(ctx context.Context, kind core.OrderKind, f core.OrderFields) (*core.Order, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	if err := validateOrderFields(f); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := checkParty(ctx, tx, t, kind, f); err != nil {
		return nil, err
	}

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO `+t.orders+` (code, date_commande, entreprise_id, `+t.partyColumn+`)
		VALUES ($1, $2::date, $3, $4)
		RETURNING id
	`, f.Code, orderDate(f), f.EnterpriseID, f.PartyID).Scan(&id)
	if err != nil {
		return nil, dbError(err, fmt.Sprintf("create %s order %s", kind, f.Code))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order creation: %w", err)
	}
	return s.GetOrder(ctx, kind, id)
}

func (s *orderService) UpdateOrder(ctx context.Context, kind core.OrderKind, orderID int, f core.OrderFields) (*core.Order, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	if err := validateOrderFields(f); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := checkParty(ctx, tx, t, kind, f); err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE `+t.orders+`
		SET code = $1, date_commande = $2::date, entreprise_id = $3, `+t.partyColumn+` = $4
		WHERE id = $5
	`, f.Code, orderDate(f), f.EnterpriseID, f.PartyID, orderID)
	if err != nil {
		return nil, dbError(err, fmt.Sprintf("update %s order %d", kind, orderID))
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%s order %d: %w", kind, orderID, core.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order update: %w", err)
	}
	return s.GetOrder(ctx, kind, orderID)
}

func (s *orderService) GetOrder(ctx context.Context, kind core.OrderKind, orderID int) (*core.Order, error) {
	return s.getOrder(ctx, kind, "o.id = $1", orderID, fmt.Sprintf("get %s order %d", kind, orderID))
}

func (s *orderService) GetOrderByCode(ctx context.Context, kind core.OrderKind, code string) (*core.Order, error) {
	return s.getOrder(ctx, kind, "o.code = $1", code, fmt.Sprintf("get %s order %s", kind, code))
}

func (s *orderService) getOrder(ctx context.Context, kind core.OrderKind, where string, arg any, what string) (*core.Order, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	o, err := scanOrder(s.pool.QueryRow(ctx, selectOrders(t)+` WHERE `+where, arg), kind)
	if err != nil {
		return nil, dbError(err, what)
	}
	lines, err := s.queryLines(ctx, s.pool, t, "l.commande_id = $1", o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return o, nil
}

func (s *orderService) ListOrders(ctx context.Context, kind core.OrderKind) ([]core.Order, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, selectOrders(t)+` ORDER BY o.date_commande DESC, o.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.orders, err)
	}
	defer rows.Close()

	orders := []core.Order{}
	index := map[int]int{}
	for rows.Next() {
		o, err := scanOrder(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s order: %w", kind, err)
		}
		index[o.ID] = len(orders)
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t.orders, err)
	}

	lines, err := s.queryLines(ctx, s.pool, t, "TRUE")
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if i, ok := index[l.OrderID]; ok {
			orders[i].Lines = append(orders[i].Lines, l)
		}
	}
	return orders, nil
}

// DeleteOrder removes the header; its lines go with it through ON DELETE CASCADE.
func (s *orderService) DeleteOrder(ctx context.Context, kind core.OrderKind, orderID int) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+t.orders+` WHERE id = $1`, orderID)
	if err != nil {
		return dbError(err, fmt.Sprintf("delete %s order %d", kind, orderID))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s order %d: %w", kind, orderID, core.ErrNotFound)
	}
	return nil
}

func (s *orderService) ListLines(ctx context.Context, kind core.OrderKind, orderID int) ([]core.LineItem, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	if err := s.orderExists(ctx, t, kind, orderID); err != nil {
		return nil, err
	}
	return s.queryLines(ctx, s.pool, t, "l.commande_id = $1", orderID)
}

func (s *orderService) AddLine(ctx context.Context, kind core.OrderKind, orderID int, f core.LineFields) (*core.LineItem, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	if err := validateLineFields(f); err != nil {
		return nil, err
	}
	if err := s.orderExists(ctx, t, kind, orderID); err != nil {
		return nil, err
	}
	l, err := scanLine(s.pool.QueryRow(ctx, `
		INSERT INTO `+t.lines+` (commande_id, article_id, quantite, prix_unitaire, entreprise_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, commande_id, article_id, quantite, prix_unitaire, entreprise_id
	`, orderID, f.ArticleID, f.Quantity, f.UnitPrice, f.EnterpriseID))
	if err != nil {
		return nil, dbError(err, fmt.Sprintf("add line to %s order %d", kind, orderID))
	}
	return l, nil
}

func (s *orderService) UpdateLine(ctx context.Context, kind core.OrderKind, orderID, lineID int, f core.LineFields) (*core.LineItem, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	if err := validateLineFields(f); err != nil {
		return nil, err
	}
	l, err := scanLine(s.pool.QueryRow(ctx, `
		UPDATE `+t.lines+`
		SET article_id = $1, quantite = $2, prix_unitaire = $3, entreprise_id = $4
		WHERE id = $5 AND commande_id = $6
		RETURNING id, commande_id, article_id, quantite, prix_unitaire, entreprise_id
	`, f.ArticleID, f.Quantity, f.UnitPrice, f.EnterpriseID, lineID, orderID))
	if err != nil {
		return nil, dbError(err, fmt.Sprintf("update line %d of %s order %d", lineID, kind, orderID))
	}
	return l, nil
}

func (s *orderService) RemoveLine(ctx context.Context, kind core.OrderKind, orderID, lineID int) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+t.lines+` WHERE id = $1 AND commande_id = $2`, lineID, orderID)
	if err != nil {
		return dbError(err, fmt.Sprintf("remove line %d of %s order %d", lineID, kind, orderID))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("line %d of %s order %d: %w", lineID, kind, orderID, core.ErrNotFound)
	}
	return nil
}

func (s *orderService) RemoveAllLines(ctx context.Context, kind core.OrderKind, orderID int) (int64, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return 0, err
	}
	if err := s.orderExists(ctx, t, kind, orderID); err != nil {
		return 0, err
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+t.lines+` WHERE commande_id = $1`, orderID)
	if err != nil {
		return 0, dbError(err, fmt.Sprintf("remove lines of %s order %d", kind, orderID))
	}
	return tag.RowsAffected(), nil
}

func (s *orderService) orderExists(ctx context.Context, t orderTables, kind core.OrderKind, orderID int) error {
	var id int
	err := s.pool.QueryRow(ctx, `SELECT id FROM `+t.orders+` WHERE id = $1`, orderID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s order %d: %w", kind, orderID, core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch %s order %d: %w", kind, orderID, err)
	}
	return nil
}

func selectOrders(t orderTables) string {
	return `
		SELECT o.id, o.code, to_char(o.date_commande, 'YYYY-MM-DD'), o.entreprise_id, o.` + t.partyColumn + `,
		       p.prenom, p.nom, p.mail, p.num_tel, p.entreprise_id
		FROM ` + t.orders + ` o
		JOIN ` + t.parties + ` p ON p.id = o.` + t.partyColumn
}

func scanOrder(row pgx.Row, kind core.OrderKind) (*core.Order, error) {
	o := core.Order{Kind: kind, Lines: []core.LineItem{}}
	p := core.Party{Kind: kind.PartyKind()}
	if err := row.Scan(&o.ID, &o.Code, &o.OrderDate, &o.EnterpriseID, &o.PartyID,
		&p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.EnterpriseID); err != nil {
		return nil, err
	}
	p.ID = o.PartyID
	o.Party = &p
	return &o, nil
}

func scanLine(row pgx.Row) (*core.LineItem, error) {
	var l core.LineItem
	if err := row.Scan(&l.ID, &l.OrderID, &l.ArticleID, &l.Quantity, &l.UnitPrice, &l.EnterpriseID); err != nil {
		return nil, err
	}
	return &l, nil
}

// queryLines loads lines joined with their article, in insertion order.
func (s *orderService) queryLines(ctx context.Context, q pgxQuerier, t orderTables, where string, args ...any) ([]core.LineItem, error) {
	rows, err := q.Query(ctx, `
		SELECT l.id, l.commande_id, l.article_id, l.quantite, l.prix_unitaire, l.entreprise_id,
		       `+prefixed("a", articleColumns)+`
		FROM `+t.lines+` l
		JOIN articles a ON a.id = l.article_id
		WHERE `+where+`
		ORDER BY l.commande_id, l.id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.lines, err)
	}
	defer rows.Close()

	lines := []core.LineItem{}
	for rows.Next() {
		var l core.LineItem
		var a core.Article
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ArticleID, &l.Quantity, &l.UnitPrice, &l.EnterpriseID,
			&a.ID, &a.Code, &a.Designation, &a.UnitPrice, &a.TaxRate, &a.UnitPriceTTC, &a.EnterpriseID); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		l.Article = &a
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// prefixed qualifies each column of a column list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, c := range parts {
		if strings.HasPrefix(c, "COALESCE(") {
			parts[i] = "COALESCE(" + alias + "." + strings.TrimPrefix(c, "COALESCE(")
			continue
		}
		parts[i] = alias + "." + c
	}
	return strings.Join(parts, ", ")
}

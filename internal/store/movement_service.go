package store

import (
	"context"
	"fmt"
	"time"

	"stock-orders/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MovementService manages stock movements (mvt_stk) and the stock levels they
// add up to.
type MovementService interface {
	core.StockRecorder
	GetMovement(ctx context.Context, id int) (*core.StockMovement, error)
	// UpdateMovement rewrites every field of the movement.
	UpdateMovement(ctx context.Context, id int, f core.MovementFields) (*core.StockMovement, error)
	DeleteMovement(ctx context.Context, id int) error
}

type movementService struct {
	pool *pgxpool.Pool
}

func NewMovementService(pool *pgxpool.Pool) MovementService {
	return &movementService{pool: pool}
}

const movementSelect = `
	SELECT m.id, m.date_mvt, m.quantite, m.type_mvt, m.article_id, COALESCE(m.entreprise_id, 0),
	       a.code_article, a.designation, a.prix_unitaire, a.taux_tva, a.prix_unitaire_ttc, COALESCE(a.entreprise_id, 0)
	FROM mvt_stk m
	JOIN articles a ON a.id = m.article_id`

func scanMovement(row pgx.Row) (*core.StockMovement, error) {
	var (
		m   core.StockMovement
		a   core.Article
		typ string
	)
	if err := row.Scan(&m.ID, &m.Date, &m.Quantity, &typ, &m.ArticleID, &m.EnterpriseID,
		&a.Code, &a.Designation, &a.UnitPrice, &a.TaxRate, &a.UnitPriceTTC, &a.EnterpriseID); err != nil {
		return nil, err
	}
	m.Type = core.MovementType(typ)
	a.ID = m.ArticleID
	m.Article = &a
	return &m, nil
}

func (s *movementService) ListMovements(ctx context.Context) ([]core.StockMovement, error) {
	rows, err := s.pool.Query(ctx, movementSelect+` ORDER BY m.date_mvt, m.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	defer rows.Close()

	var movements []core.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, *m)
	}
	return movements, rows.Err()
}

func (s *movementService) GetMovement(ctx context.Context, id int) (*core.StockMovement, error) {
	return getMovement(ctx, s.pool, id)
}

func getMovement(ctx context.Context, q pgxQuerier, id int) (*core.StockMovement, error) {
	m, err := scanMovement(q.QueryRow(ctx, movementSelect+` WHERE m.id = $1`, id))
	if err != nil {
		return nil, dbError(err, fmt.Sprintf("get stock movement %d", id))
	}
	return m, nil
}

// CreateMovement records a movement. A missing enterprise is taken from the
// article; a zero date means now.
func (s *movementService) CreateMovement(ctx context.Context, f core.MovementFields) (*core.StockMovement, error) {
	f, err := validateMovement(f)
	if err != nil {
		return nil, err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if f, err = movementDefaults(ctx, tx, f); err != nil {
		return nil, err
	}
	var id int
	if err := tx.QueryRow(ctx, `
		INSERT INTO mvt_stk (date_mvt, quantite, type_mvt, article_id, entreprise_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, 0))
		RETURNING id
	`, f.Date, f.Quantity, string(f.Type), f.ArticleID, f.EnterpriseID).Scan(&id); err != nil {
		return nil, dbError(err, "create stock movement")
	}
	m, err := getMovement(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock movement: %w", err)
	}
	return m, nil
}

func (s *movementService) UpdateMovement(ctx context.Context, id int, f core.MovementFields) (*core.StockMovement, error) {
	f, err := validateMovement(f)
	if err != nil {
		return nil, err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if f, err = movementDefaults(ctx, tx, f); err != nil {
		return nil, err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE mvt_stk
		SET date_mvt = $1, quantite = $2, type_mvt = $3, article_id = $4, entreprise_id = NULLIF($5, 0)
		WHERE id = $6
	`, f.Date, f.Quantity, string(f.Type), f.ArticleID, f.EnterpriseID, id)
	if err != nil {
		return nil, dbError(err, fmt.Sprintf("update stock movement %d", id))
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("stock movement %d: %w", id, core.ErrNotFound)
	}
	m, err := getMovement(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit stock movement: %w", err)
	}
	return m, nil
}

func (s *movementService) DeleteMovement(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM mvt_stk WHERE id = $1`, id)
	if err != nil {
		return dbError(err, fmt.Sprintf("delete stock movement %d", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stock movement %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *movementService) StockLevels(ctx context.Context) ([]core.StockLevel, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.id, a.code_article, a.designation,
		       COALESCE(SUM(m.quantite) FILTER (WHERE m.type_mvt = 'ENTREE'), 0),
		       COALESCE(SUM(m.quantite) FILTER (WHERE m.type_mvt = 'SORTIE'), 0)
		FROM articles a
		LEFT JOIN mvt_stk m ON m.article_id = a.id
		GROUP BY a.id, a.code_article, a.designation
		ORDER BY a.code_article
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock levels: %w", err)
	}
	defer rows.Close()

	var levels []core.StockLevel
	for rows.Next() {
		var l core.StockLevel
		if err := rows.Scan(&l.ArticleID, &l.Code, &l.Designation, &l.In, &l.Out); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

// movementDefaults locks the article row and fills the date and enterprise.
func movementDefaults(ctx context.Context, tx pgx.Tx, f core.MovementFields) (core.MovementFields, error) {
	var articleEnterprise int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(entreprise_id, 0) FROM articles WHERE id = $1 FOR SHARE`, f.ArticleID,
	).Scan(&articleEnterprise); err != nil {
		return f, dbError(err, fmt.Sprintf("get article %d", f.ArticleID))
	}
	if f.EnterpriseID <= 0 {
		f.EnterpriseID = articleEnterprise
	}
	if f.Date.IsZero() {
		f.Date = time.Now()
	}
	return f, nil
}

// validateMovement checks f and returns it with the type in canonical form.
func validateMovement(f core.MovementFields) (core.MovementFields, error) {
	verr := &core.ValidationError{}
	if f.ArticleID <= 0 {
		verr.Problems = append(verr.Problems, "articleId is required")
	}
	if !f.Quantity.IsPositive() {
		verr.Problems = append(verr.Problems, "quantite must be positive")
	}
	typ, err := core.ParseMovementType(string(f.Type))
	if err != nil {
		verr.Problems = append(verr.Problems, "typeMvt must be ENTREE or SORTIE")
	}
	if len(verr.Problems) > 0 {
		return f, verr
	}
	f.Type = typ
	return f, nil
}

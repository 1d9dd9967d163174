package store

import (
	"context"
	"fmt"
	"strings"

	"stock-orders/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ArticleService manages the article catalog.
type ArticleService interface {
	core.ArticleCatalog
	GetArticle(ctx context.Context, id int) (*core.Article, error)
	// CreateArticle and UpdateArticle recompute the TTC price before writing.
	CreateArticle(ctx context.Context, a core.Article) (*core.Article, error)
	UpdateArticle(ctx context.Context, id int, a core.Article) (*core.Article, error)
	DeleteArticle(ctx context.Context, id int) error
}

type articleService struct {
	pool *pgxpool.Pool
}

func NewArticleService(pool *pgxpool.Pool) ArticleService {
	return &articleService{pool: pool}
}

const articleColumns = `id, code_article, designation, prix_unitaire, taux_tva, prix_unitaire_ttc, COALESCE(entreprise_id, 0)`

func scanArticle(row pgx.Row) (*core.Article, error) {
	var a core.Article
	if err := row.Scan(&a.ID, &a.Code, &a.Designation, &a.UnitPrice, &a.TaxRate, &a.UnitPriceTTC, &a.EnterpriseID); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *articleService) ListArticles(ctx context.Context) ([]core.Article, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY code_article`)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var articles []core.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}

func (s *articleService) GetArticle(ctx context.Context, id int) (*core.Article, error) {
	a, err := scanArticle(s.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id))
	if err != nil {
		return nil, dbError(err, fmt.Sprintf("get article %d", id))
	}
	return a, nil
}

func (s *articleService) FindArticleByCode(ctx context.Context, code string) (*core.Article, error) {
	a, err := scanArticle(s.pool.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE code_article = $1`, code))
	if err != nil {
		return nil, dbError(err, fmt.Sprintf("get article %s", code))
	}
	return a, nil
}

func (s *articleService) CreateArticle(ctx context.Context, a core.Article) (*core.Article, error) {
	if err := validateArticle(a); err != nil {
		return nil, err
	}
	a.Recompute()
	created, err := scanArticle(s.pool.QueryRow(ctx, `
		INSERT INTO articles (code_article, designation, prix_unitaire, taux_tva, prix_unitaire_ttc, entreprise_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, 0))
		RETURNING `+articleColumns,
		a.Code, a.Designation, a.UnitPrice, a.TaxRate, a.UnitPriceTTC, a.EnterpriseID))
	if err != nil {
		return nil, dbError(err, "create article "+a.Code)
	}
	return created, nil
}

func (s *articleService) UpdateArticle(ctx context.Context, id int, a core.Article) (*core.Article, error) {
	if err := validateArticle(a); err != nil {
		return nil, err
	}
	a.Recompute()
	updated, err := scanArticle(s.pool.QueryRow(ctx, `
		UPDATE articles
		SET code_article = $1, designation = $2, prix_unitaire = $3, taux_tva = $4,
		    prix_unitaire_ttc = $5, entreprise_id = NULLIF($6, 0)
		WHERE id = $7
		RETURNING `+articleColumns,
		a.Code, a.Designation, a.UnitPrice, a.TaxRate, a.UnitPriceTTC, a.EnterpriseID, id))
	if err != nil {
		return nil, dbError(err, fmt.Sprintf("update article %d", id))
	}
	return updated, nil
}

func (s *articleService) DeleteArticle(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return dbError(err, fmt.Sprintf("delete article %d", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("article %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func validateArticle(a core.Article) error {
	verr := &core.ValidationError{}
	if strings.TrimSpace(a.Code) == "" {
		verr.Problems = append(verr.Problems, "codeArticle is required")
	}
	if a.UnitPrice.IsNegative() {
		verr.Problems = append(verr.Problems, "prixUnitaire must not be negative")
	}
	if a.TaxRate.IsNegative() {
		verr.Problems = append(verr.Problems, "tauxTva must not be negative")
	}
	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

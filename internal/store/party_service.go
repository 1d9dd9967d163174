package store

import (
	"context"
	"fmt"
	"strings"

	"stock-orders/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PartyService reads and creates clients and fournisseurs.
type PartyService interface {
	core.PartyReader
	ListParties(ctx context.Context, kind core.PartyKind) ([]core.Party, error)
	GetParty(ctx context.Context, kind core.PartyKind, id int) (*core.Party, error)
	CreateParty(ctx context.Context, p core.Party) (*core.Party, error)
}

type partyService struct {
	pool *pgxpool.Pool
}

func NewPartyService(pool *pgxpool.Pool) PartyService {
	return &partyService{pool: pool}
}

func partyTable(kind core.PartyKind) (string, error) {
	switch kind {
	case core.PartyClient:
		return "clients", nil
	case core.PartyFournisseur:
		return "fournisseurs", nil
	}
	return "", fmt.Errorf("unknown party kind %q", kind)
}

const partyColumns = `id, prenom, nom, mail, num_tel, adresse1, adresse2, ville, code_postale, pays, entreprise_id`

func scanParty(row pgx.Row, kind core.PartyKind) (*core.Party, error) {
	p := core.Party{Kind: kind}
	var line1, line2, city, postal, country *string
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Phone,
		&line1, &line2, &city, &postal, &country, &p.EnterpriseID); err != nil {
		return nil, err
	}
	if line1 != nil || city != nil {
		p.Address = &core.Address{
			Line1:      deref(line1),
			Line2:      deref(line2),
			City:       deref(city),
			PostalCode: deref(postal),
			Country:    deref(country),
		}
	}
	return &p, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *partyService) ListParties(ctx context.Context, kind core.PartyKind) ([]core.Party, error) {
	return s.list(ctx, kind, 0)
}

// ListPartiesByEnterprise filters in SQL. An enterprise with no parties
// yields an empty list, not an error.
func (s *partyService) ListPartiesByEnterprise(ctx context.Context, kind core.PartyKind, enterpriseID int) ([]core.Party, error) {
	return s.list(ctx, kind, enterpriseID)
}

func (s *partyService) list(ctx context.Context, kind core.PartyKind, enterpriseID int) ([]core.Party, error) {
	table, err := partyTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+partyColumns+` FROM `+table+`
		WHERE $1 = 0 OR entreprise_id = $1
		ORDER BY nom, prenom, id
	`, enterpriseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	parties := []core.Party{}
	for rows.Next() {
		p, err := scanParty(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		parties = append(parties, *p)
	}
	return parties, rows.Err()
}

func (s *partyService) GetParty(ctx context.Context, kind core.PartyKind, id int) (*core.Party, error) {
	table, err := partyTable(kind)
	if err != nil {
		return nil, err
	}
	p, err := scanParty(s.pool.QueryRow(ctx, `SELECT `+partyColumns+` FROM `+table+` WHERE id = $1`, id), kind)
	if err != nil {
		return nil, dbError(err, fmt.Sprintf("get %s %d", kind, id))
	}
	return p, nil
}

func (s *partyService) CreateParty(ctx context.Context, p core.Party) (*core.Party, error) {
	table, err := partyTable(p.Kind)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.LastName) == "" {
		return nil, &core.ValidationError{Problems: []string{"nom is required"}}
	}
	if p.EnterpriseID <= 0 {
		return nil, &core.ValidationError{Problems: []string{"entrepriseId is required"}}
	}
	var addr core.Address
	hasAddr := p.Address != nil
	if hasAddr {
		addr = *p.Address
	}
	created, err := scanParty(s.pool.QueryRow(ctx, `
		INSERT INTO `+table+` (prenom, nom, mail, num_tel, adresse1, adresse2, ville, code_postale, pays, entreprise_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+partyColumns,
		p.FirstName, p.LastName, p.Email, p.Phone,
		optional(hasAddr, addr.Line1), optional(hasAddr, addr.Line2), optional(hasAddr, addr.City),
		optional(hasAddr, addr.PostalCode), optional(hasAddr, addr.Country), p.EnterpriseID), p.Kind)
	if err != nil {
		return nil, dbError(err, fmt.Sprintf("create %s %s", p.Kind, p.LastName))
	}
	return created, nil
}

func optional(ok bool, s string) *string {
	if !ok {
		return nil
	}
	return &s
}

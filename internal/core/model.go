package core

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Article is a catalog entry. Orders snapshot its price on each line; the line
// price does not follow later catalog changes.
type Article struct {
	ID           int             `json:"id"`
	Code         string          `json:"code"`
	Designation  string          `json:"designation"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TaxRate      decimal.Decimal `json:"tax_rate"` // percentage, e.g. 20 for 20%
	UnitPriceTTC decimal.Decimal `json:"unit_price_ttc"`
	EnterpriseID int             `json:"enterprise_id"`
}

// PriceTTC returns the tax-inclusive price unitPrice + unitPrice*taxRate/100,
// rounded to two decimals.
func PriceTTC(unitPrice, taxRate decimal.Decimal) decimal.Decimal {
	return unitPrice.Add(unitPrice.Mul(taxRate).Div(hundred)).Round(2)
}

// Recompute refreshes UnitPriceTTC from UnitPrice and TaxRate.
func (a *Article) Recompute() {
	a.UnitPriceTTC = PriceTTC(a.UnitPrice, a.TaxRate)
}

// PartyKind distinguishes customers from suppliers.
type PartyKind string

const (
	PartyClient      PartyKind = "client"
	PartyFournisseur PartyKind = "fournisseur"
)

// Address is a postal address attached to a party.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Party is the counterparty of an order: a client for sales orders, a
// fournisseur for purchase orders. It always belongs to one enterprise.
type Party struct {
	ID           int       `json:"id"`
	Kind         PartyKind `json:"kind"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      *Address  `json:"address,omitempty"`
	EnterpriseID int       `json:"enterprise_id"`
}

// DisplayName joins the name parts.
func (p Party) DisplayName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// FilterByEnterprise returns the parties owned by enterpriseID, preserving order.
func FilterByEnterprise(parties []Party, enterpriseID int) []Party {
	out := make([]Party, 0, len(parties))
	for _, p := range parties {
		if p.EnterpriseID == enterpriseID {
			out = append(out, p)
		}
	}
	return out
}

// Package wire holds the JSON bodies exchanged between the REST backend and
// its clients. Field names follow the original API (codeArticle, quantite,
// ligneCommandeClients, ...). Decimals travel as JSON strings.
package wire

import (
	"time"

	"stock-orders/internal/core"

	"github.com/shopspring/decimal"
)

type Article struct {
	ID              int             `json:"id,omitempty"`
	CodeArticle     string          `json:"codeArticle"`
	Designation     string          `json:"designation"`
	PrixUnitaire    decimal.Decimal `json:"prixUnitaire"`
	TauxTva         decimal.Decimal `json:"tauxTva"`
	PrixUnitaireTtc decimal.Decimal `json:"prixUnitaireTtc"`
	EntrepriseID    int             `json:"entrepriseId,omitempty"`
}

func FromArticle(a core.Article) Article {
	return Article{
		ID:              a.ID,
		CodeArticle:     a.Code,
		Designation:     a.Designation,
		PrixUnitaire:    a.UnitPrice,
		TauxTva:         a.TaxRate,
		PrixUnitaireTtc: a.UnitPriceTTC,
		EntrepriseID:    a.EnterpriseID,
	}
}

func (a Article) Core() core.Article {
	return core.Article{
		ID:           a.ID,
		Code:         a.CodeArticle,
		Designation:  a.Designation,
		UnitPrice:    a.PrixUnitaire,
		TaxRate:      a.TauxTva,
		UnitPriceTTC: a.PrixUnitaireTtc,
		EnterpriseID: a.EntrepriseID,
	}
}

type Address struct {
	Adresse1    string `json:"adresse1"`
	Adresse2    string `json:"adresse2,omitempty"`
	Ville       string `json:"ville"`
	CodePostale string `json:"codePostale"`
	Pays        string `json:"pays"`
}

// Party is a client or a fournisseur.
type Party struct {
	ID           int      `json:"id"`
	Prenom       string   `json:"prenom,omitempty"`
	Nom          string   `json:"nom"`
	Mail         string   `json:"mail,omitempty"`
	NumTel       string   `json:"numTel,omitempty"`
	Adresse      *Address `json:"adresse,omitempty"`
	EntrepriseID int      `json:"entrepriseId"`
}

func FromParty(p core.Party) Party {
	out := Party{
		ID:           p.ID,
		Prenom:       p.FirstName,
		Nom:          p.LastName,
		Mail:         p.Email,
		NumTel:       p.Phone,
		EntrepriseID: p.EnterpriseID,
	}
	if p.Address != nil {
		out.Adresse = &Address{
			Adresse1:    p.Address.Line1,
			Adresse2:    p.Address.Line2,
			Ville:       p.Address.City,
			CodePostale: p.Address.PostalCode,
			Pays:        p.Address.Country,
		}
	}
	return out
}

func (p Party) Core(kind core.PartyKind) core.Party {
	out := core.Party{
		ID:           p.ID,
		Kind:         kind,
		FirstName:    p.Prenom,
		LastName:     p.Nom,
		Email:        p.Mail,
		Phone:        p.NumTel,
		EnterpriseID: p.EntrepriseID,
	}
	if p.Adresse != nil {
		out.Address = &core.Address{
			Line1:      p.Adresse.Adresse1,
			Line2:      p.Adresse.Adresse2,
			City:       p.Adresse.Ville,
			PostalCode: p.Adresse.CodePostale,
			Country:    p.Adresse.Pays,
		}
	}
	return out
}

// Line is an order line as read from the backend.
type Line struct {
	ID           int             `json:"id"`
	CommandeID   int             `json:"commandeId"`
	ArticleID    int             `json:"articleId"`
	Article      *Article        `json:"article,omitempty"`
	Quantite     decimal.Decimal `json:"quantite"`
	PrixUnitaire decimal.Decimal `json:"prixUnitaire"`
	EntrepriseID int             `json:"entrepriseId"`
}

func FromLine(l core.LineItem) Line {
	out := Line{
		ID:           l.ID,
		CommandeID:   l.OrderID,
		ArticleID:    l.ArticleID,
		Quantite:     l.Quantity,
		PrixUnitaire: l.UnitPrice,
		EntrepriseID: l.EnterpriseID,
	}
	if l.Article != nil {
		a := FromArticle(*l.Article)
		out.Article = &a
	}
	return out
}

func (l Line) Core() core.LineItem {
	out := core.LineItem{
		ID:           l.ID,
		OrderID:      l.CommandeID,
		ArticleID:    l.ArticleID,
		Quantity:     l.Quantite,
		UnitPrice:    l.PrixUnitaire,
		EnterpriseID: l.EntrepriseID,
	}
	if l.Article != nil {
		a := l.Article.Core()
		out.Article = &a
	}
	return out
}

// LineRequest is the body of line add and update calls. A missing
// prixUnitaire means the article's catalog price; a missing entrepriseId
// means the order's enterprise.
type LineRequest struct {
	ArticleID    int              `json:"articleId"`
	Quantite     decimal.Decimal  `json:"quantite"`
	PrixUnitaire *decimal.Decimal `json:"prixUnitaire,omitempty"`
	EntrepriseID int              `json:"entrepriseId,omitempty"`
}

func NewLineRequest(f core.LineFields) LineRequest {
	price := f.UnitPrice
	return LineRequest{
		ArticleID:    f.ArticleID,
		Quantite:     f.Quantity,
		PrixUnitaire: &price,
		EntrepriseID: f.EnterpriseID,
	}
}

// Order is an order header with its lines. Only the counterparty id and the
// line list matching the order kind are set.
type Order struct {
	ID                        int             `json:"id"`
	Code                      string          `json:"code"`
	DateCommande              string          `json:"dateCommande"`
	EntrepriseID              int             `json:"entrepriseId"`
	ClientID                  int             `json:"clientId,omitempty"`
	FournisseurID             int             `json:"fournisseurId,omitempty"`
	Client                    *Party          `json:"client,omitempty"`
	Fournisseur               *Party          `json:"fournisseur,omitempty"`
	LigneCommandeClients      *[]Line         `json:"ligneCommandeClients,omitempty"`
	LigneCommandeFournisseurs *[]Line         `json:"ligneCommandeFournisseurs,omitempty"`
	Total                     decimal.Decimal `json:"total"`
}

func FromOrder(o core.Order) Order {
	out := Order{
		ID:           o.ID,
		Code:         o.Code,
		DateCommande: o.OrderDate,
		EntrepriseID: o.EnterpriseID,
		Total:        o.Total(),
	}
	lines := make([]Line, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, FromLine(l))
	}
	var party *Party
	if o.Party != nil {
		p := FromParty(*o.Party)
		party = &p
	}
	if o.Kind == core.OrderFournisseur {
		out.FournisseurID = o.PartyID
		out.Fournisseur = party
		out.LigneCommandeFournisseurs = &lines
	} else {
		out.ClientID = o.PartyID
		out.Client = party
		out.LigneCommandeClients = &lines
	}
	return out
}

func (o Order) Core(kind core.OrderKind) core.Order {
	out := core.Order{
		ID:           o.ID,
		Kind:         kind,
		Code:         o.Code,
		OrderDate:    o.DateCommande,
		EnterpriseID: o.EntrepriseID,
		PartyID:      o.ClientID,
		Lines:        []core.LineItem{},
	}
	party, lines := o.Client, o.LigneCommandeClients
	if kind == core.OrderFournisseur {
		out.PartyID = o.FournisseurID
		party, lines = o.Fournisseur, o.LigneCommandeFournisseurs
	}
	if party != nil {
		p := party.Core(kind.PartyKind())
		out.Party = &p
	}
	if lines != nil {
		for _, l := range *lines {
			out.Lines = append(out.Lines, l.Core())
		}
	}
	return out
}

// OrderRequest is the body of order create and update calls.
type OrderRequest struct {
	Code          string `json:"code"`
	DateCommande  string `json:"dateCommande,omitempty"`
	EntrepriseID  int    `json:"entrepriseId"`
	ClientID      int    `json:"clientId,omitempty"`
	FournisseurID int    `json:"fournisseurId,omitempty"`
}

func NewOrderRequest(kind core.OrderKind, f core.OrderFields) OrderRequest {
	req := OrderRequest{Code: f.Code, DateCommande: f.OrderDate, EntrepriseID: f.EnterpriseID}
	if kind == core.OrderFournisseur {
		req.FournisseurID = f.PartyID
	} else {
		req.ClientID = f.PartyID
	}
	return req
}

// PartyID returns the counterparty id matching kind.
func (r OrderRequest) PartyID(kind core.OrderKind) int {
	if kind == core.OrderFournisseur {
		return r.FournisseurID
	}
	return r.ClientID
}

// MvtStk is a stock movement as read from the backend.
type MvtStk struct {
	ID           int             `json:"id"`
	DateMvt      time.Time       `json:"dateMvt"`
	Quantite     decimal.Decimal `json:"quantite"`
	TypeMvt      string          `json:"typeMvt"`
	ArticleID    int             `json:"articleId"`
	EntrepriseID int             `json:"entrepriseId,omitempty"`
	Article      *Article        `json:"article,omitempty"`
}

func FromMovement(m core.StockMovement) MvtStk {
	out := MvtStk{
		ID:           m.ID,
		DateMvt:      m.Date,
		Quantite:     m.Quantity,
		TypeMvt:      string(m.Type),
		ArticleID:    m.ArticleID,
		EntrepriseID: m.EnterpriseID,
	}
	if m.Article != nil {
		a := FromArticle(*m.Article)
		out.Article = &a
	}
	return out
}

func (m MvtStk) Core() core.StockMovement {
	out := core.StockMovement{
		ID:           m.ID,
		Date:         m.DateMvt,
		Quantity:     m.Quantite,
		Type:         core.MovementType(m.TypeMvt),
		ArticleID:    m.ArticleID,
		EnterpriseID: m.EntrepriseID,
	}
	if m.Article != nil {
		a := m.Article.Core()
		out.Article = &a
		if out.ArticleID == 0 {
			out.ArticleID = a.ID
		}
	}
	return out
}

// MvtStkRequest is the body of movement create and update calls. dateMvt is
// RFC 3339 or YYYY-MM-DD; a missing one means now.
type MvtStkRequest struct {
	DateMvt      string          `json:"dateMvt,omitempty"`
	Quantite     decimal.Decimal `json:"quantite"`
	TypeMvt      string          `json:"typeMvt"`
	ArticleID    int             `json:"articleId"`
	EntrepriseID int             `json:"entrepriseId,omitempty"`
}

func NewMvtStkRequest(f core.MovementFields) MvtStkRequest {
	req := MvtStkRequest{
		Quantite:     f.Quantity,
		TypeMvt:      string(f.Type),
		ArticleID:    f.ArticleID,
		EntrepriseID: f.EnterpriseID,
	}
	if !f.Date.IsZero() {
		req.DateMvt = f.Date.Format(time.RFC3339)
	}
	return req
}

// StockLevel is one article's balance. stock is entrees - sorties.
type StockLevel struct {
	ArticleID   int             `json:"articleId"`
	CodeArticle string          `json:"codeArticle"`
	Designation string          `json:"designation"`
	Entrees     decimal.Decimal `json:"entrees"`
	Sorties     decimal.Decimal `json:"sorties"`
	Stock       decimal.Decimal `json:"stock"`
}

func FromStockLevel(l core.StockLevel) StockLevel {
	return StockLevel{
		ArticleID:   l.ArticleID,
		CodeArticle: l.Code,
		Designation: l.Designation,
		Entrees:     l.In,
		Sorties:     l.Out,
		Stock:       l.OnHand(),
	}
}

func (l StockLevel) Core() core.StockLevel {
	return core.StockLevel{ArticleID: l.ArticleID, Code: l.CodeArticle, Designation: l.Designation, In: l.Entrees, Out: l.Sorties}
}

// Error is the body of every failed call.
type Error struct {
	Message   string   `json:"message"`
	Code      string   `json:"code"`
	RequestID string   `json:"request_id,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// Propose is the body of a draft proposal request.
type Propose struct {
	Text string `json:"text"`
}

// RemovedLines answers a remove-all-lines call.
type RemovedLines struct {
	CommandeID int   `json:"commandeId"`
	Removed    int64 `json:"removed"`
}

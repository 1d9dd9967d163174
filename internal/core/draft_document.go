package core

import (
	"context"
	"fmt"
	"strings"
)

// DraftDocument is the file form of an order draft, read by ordersync apply
// and produced by the draft agent. ID zero means a new order; a line ID zero
// means a new line.
type DraftDocument struct {
	Kind         OrderKind           `json:"kind" jsonschema:"enum=client,enum=fournisseur" jsonschema_description:"client for a sales order, fournisseur for a purchase order"`
	ID           int                 `json:"id" jsonschema_description:"Existing order id to edit, or 0 to create a new order"`
	Code         string              `json:"code" jsonschema_description:"Human order code, e.g. CMD-001"`
	OrderDate    string              `json:"dateCommande" jsonschema_description:"Order date in YYYY-MM-DD format"`
	EnterpriseID int                 `json:"entrepriseId" jsonschema_description:"Owning enterprise id"`
	PartyID      int                 `json:"partyId" jsonschema_description:"Client id for sales orders, fournisseur id for purchase orders"`
	Lines        []DraftDocumentLine `json:"lines" jsonschema_description:"Order lines; at most one line per article"`
}

// DraftDocumentLine is one line of a DraftDocument. The article is given by
// id or by code. Quantity and price are decimal strings; an empty price means
// the article's current unit price.
type DraftDocumentLine struct {
	ID          int    `json:"id" jsonschema_description:"Existing line id, or 0 for a new line"`
	ArticleID   int    `json:"articleId" jsonschema_description:"Article id, or 0 when articleCode is given"`
	ArticleCode string `json:"articleCode" jsonschema_description:"Exact article code from the catalog"`
	Quantity    string `json:"quantite" jsonschema_description:"Quantity as a decimal string, e.g. \"2\""`
	UnitPrice   string `json:"prixUnitaire" jsonschema_description:"Unit price as a decimal string, or empty to use the catalog price"`
}

// DraftDocumentFromOrder renders a persisted order as a document that Fill
// can load back unchanged.
func DraftDocumentFromOrder(o Order) DraftDocument {
	doc := DraftDocument{
		Kind:         o.Kind,
		ID:           o.ID,
		Code:         o.Code,
		OrderDate:    o.OrderDate,
		EnterpriseID: o.EnterpriseID,
		PartyID:      o.PartyID,
		Lines:        make([]DraftDocumentLine, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		dl := DraftDocumentLine{
			ID:        l.ID,
			ArticleID: l.ArticleID,
			Quantity:  l.Quantity.String(),
			UnitPrice: l.UnitPrice.StringFixed(2),
		}
		if l.Article != nil {
			dl.ArticleCode = l.Article.Code
		}
		doc.Lines = append(doc.Lines, dl)
	}
	return doc
}

// Fill copies the document into an open Driver form. Editor rows absent from
// the document are removed; rows are matched to document lines by id.
func (doc DraftDocument) Fill(ctx context.Context, d *Driver) error {
	if err := d.SetCode(doc.Code); err != nil {
		return err
	}
	if doc.OrderDate != "" {
		if err := d.SetDate(doc.OrderDate); err != nil {
			return err
		}
	}
	if doc.EnterpriseID > 0 && doc.EnterpriseID != d.Fields().EnterpriseID {
		if err := d.SetEnterprise(ctx, doc.EnterpriseID); err != nil {
			return err
		}
	}
	if doc.PartyID > 0 {
		if err := d.SetParty(ctx, doc.PartyID); err != nil {
			return err
		}
	}

	articles, err := d.Articles(ctx)
	if err != nil {
		return err
	}

	resolved := make([]*Article, len(doc.Lines))
	seen := make(map[int]int, len(doc.Lines))
	for n, l := range doc.Lines {
		a, err := findArticle(articles, l.ArticleID, l.ArticleCode)
		if err != nil {
			return fmt.Errorf("line %d: %w", n+1, err)
		}
		if prev, dup := seen[a.ID]; dup {
			return fmt.Errorf("line %d: article %s: %w (line %d)", n+1, a.Code, ErrDuplicateArticle, prev+1)
		}
		seen[a.ID] = n
		resolved[n] = a
	}

	ed := d.Editor()
	wanted := make(map[int]bool, len(doc.Lines))
	for _, l := range doc.Lines {
		if l.ID > 0 {
			wanted[l.ID] = true
		}
	}
	rows := ed.Lines()
	for i := len(rows) - 1; i >= 0; i-- {
		if id, ok := rows[i].ID(); !ok || !wanted[id] {
			if err := ed.RemoveLine(i); err != nil {
				return err
			}
		}
	}

	// Rows left in the editor are exactly the document's lines, so the
	// article set checked above is the final one.
	for n, l := range doc.Lines {
		a := resolved[n]
		i := -1
		if l.ID > 0 {
			i = rowIndex(ed, l.ID)
			if i < 0 {
				return fmt.Errorf("line %d: line id %d is not part of order %d: %w", n+1, l.ID, doc.ID, ErrNotFound)
			}
		} else {
			i = ed.AddLine()
		}
		if ed.lines[i].ArticleID != a.ID {
			ed.assignArticle(i, *a)
		}
		if err := ed.SetLineQuantity(i, CoerceQuantity(l.Quantity)); err != nil {
			return err
		}
		if strings.TrimSpace(l.UnitPrice) != "" {
			if err := ed.SetLineUnitPrice(i, CoercePrice(l.UnitPrice)); err != nil {
				return err
			}
		}
	}
	return nil
}

func rowIndex(ed *Editor, id int) int {
	for i, l := range ed.lines {
		if lid, ok := l.ID(); ok && lid == id {
			return i
		}
	}
	return -1
}

func findArticle(articles []Article, id int, code string) (*Article, error) {
	for i := range articles {
		if (id > 0 && articles[i].ID == id) || (id <= 0 && code != "" && articles[i].Code == code) {
			return &articles[i], nil
		}
	}
	if id > 0 {
		return nil, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	if code == "" {
		return nil, fmt.Errorf("no article given")
	}
	return nil, fmt.Errorf("article code %s: %w", code, ErrNotFound)
}

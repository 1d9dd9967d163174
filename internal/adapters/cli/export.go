package cli

import (
	"context"
	"fmt"

	"stock-orders/internal/core"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Commande"

func runExport(ctx context.Context, env Env, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: export <kind> <id> <out.xlsx>", ErrUsage)
	}
	kind, id, err := kindAndID("export", args[:2])
	if err != nil {
		return err
	}
	order, err := env.Backend.GetOrder(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("failed to load order %d: %w", id, err)
	}
	if err := ExportOrder(order, args[2]); err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "Order %s written to %s.\n", order.Code, args[2])
	return nil
}

// ExportOrder writes one sheet with the order header, one row per line with
// its subtotal, and a total row. Amounts are written as numbers.
func ExportOrder(o *core.Order, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := [][]any{
		{"Commande", o.Code},
		{"Date", o.OrderDate},
		{"Entreprise", o.EnterpriseID},
		{string(o.Kind.PartyKind()), partyName(o)},
		{},
		{"Code article", "Désignation", "Quantité", "Prix unitaire", "Sous-total"},
	}
	row := 1
	for _, values := range header {
		if err := setRow(f, row, values); err != nil {
			return err
		}
		row++
	}
	for _, l := range o.Lines {
		code, name := "", ""
		if l.Article != nil {
			code, name = l.Article.Code, l.Article.Designation
		}
		if err := setRow(f, row, []any{code, name, l.Quantity.InexactFloat64(), l.UnitPrice.InexactFloat64(), l.Subtotal().InexactFloat64()}); err != nil {
			return err
		}
		row++
	}
	if err := setRow(f, row, []any{"Total", nil, nil, nil, o.Total().InexactFloat64()}); err != nil {
		return err
	}

	if err := f.SetColWidth(exportSheet, "A", "B", 24); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []any) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

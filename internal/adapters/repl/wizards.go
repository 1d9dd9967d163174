package repl

import (
	"context"
	"fmt"
	"strings"

	"stock-orders/internal/core"
)

// lineWizard reads order lines one per input line until 'done'. Lines for an
// article already on the order merge into its row.
func (s *session) lineWizard(ctx context.Context) error {
	if s.driver.State() == core.StateIdle {
		return core.ErrNotEditing
	}
	fmt.Fprintln(s.out, "Enter order lines. Type 'done' when finished.")
	fmt.Fprintln(s.out, "Format per line: <article-code> <quantity> [unit-price]")
	fmt.Fprintln(s.out, "  Example: ART-1 10")
	fmt.Fprintln(s.out, "  Example: ART-1 5 4.50   (overrides the catalog price)")

	lineNum := s.driver.Editor().Len() + 1
	for {
		fmt.Fprintf(s.out, "  Line %d: ", lineNum)
		raw, err := s.reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if strings.EqualFold(raw, "done") || (raw == "" && err != nil) {
			break
		}
		if raw == "" {
			continue
		}

		parts := strings.Fields(raw)
		if len(parts) < 2 || len(parts) > 3 {
			fmt.Fprintln(s.out, "  Invalid format. Use: <article-code> <quantity> [unit-price]")
			continue
		}
		qty := core.CoerceQuantity(parts[1])
		if !qty.IsPositive() {
			fmt.Fprintln(s.out, "  Invalid quantity.")
			continue
		}
		if err := s.driver.AddArticleByCode(ctx, parts[0], qty); err != nil {
			fmt.Fprintf(s.out, "  %v\n", err)
			continue
		}
		if len(parts) == 3 {
			i := s.rowOf(ctx, parts[0])
			if i < 0 {
				fmt.Fprintf(s.out, "  Price not set: %s is not on the form.\n", parts[0])
			} else if err := s.driver.Editor().SetLineUnitPrice(i, core.CoercePrice(parts[2])); err != nil {
				fmt.Fprintf(s.out, "  %v\n", err)
			}
		}
		lineNum = s.driver.Editor().Len() + 1
	}
	s.printLines(ctx)
	return nil
}

// rowOf returns the editor row holding the article with code, or -1.
func (s *session) rowOf(ctx context.Context, code string) int {
	a, err := s.cfg.Catalog.FindArticleByCode(ctx, code)
	if err != nil {
		return -1
	}
	for i, l := range s.driver.Editor().Lines() {
		if l.ArticleID == a.ID {
			return i
		}
	}
	return -1
}

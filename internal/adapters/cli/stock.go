package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock-orders/internal/core"

	"github.com/shopspring/decimal"
)

func runStock(ctx context.Context, env Env, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: stock", ErrUsage)
	}
	levels, err := env.Backend.StockLevels(ctx)
	if err != nil {
		return fmt.Errorf("failed to load stock: %w", err)
	}
	w := env.Stdout
	fmt.Fprintf(w, "  %-12s %-24s %10s %10s %10s\n", "CODE", "DESIGNATION", "IN", "OUT", "ON HAND")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, l := range levels {
		fmt.Fprintf(w, "  %-12s %-24s %10s %10s %10s\n", l.Code, l.Designation, l.In.String(), l.Out.String(), l.OnHand().String())
	}
	return nil
}

func runMovements(ctx context.Context, env Env, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: movements", ErrUsage)
	}
	movements, err := env.Backend.ListMovements(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stock movements: %w", err)
	}
	w := env.Stdout
	fmt.Fprintf(w, "  %-6s %-12s %-7s %-12s %10s %6s\n", "ID", "DATE", "TYPE", "CODE", "QTY", "ENT")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, m := range movements {
		code := fmt.Sprintf("#%d", m.ArticleID)
		if m.Article != nil {
			code = m.Article.Code
		}
		fmt.Fprintf(w, "  %-6d %-12s %-7s %-12s %10s %6d\n", m.ID, m.Date.Format("2006-01-02"), m.Type, code, m.Quantity.String(), m.EnterpriseID)
	}
	return nil
}

// runMove records one movement: move <entree|sortie> <article-code> <qty> [YYYY-MM-DD].
func runMove(ctx context.Context, env Env, args []string) error {
	if len(args) != 3 && len(args) != 4 {
		return fmt.Errorf("%w: move <entree|sortie> <article-code> <qty> [YYYY-MM-DD]", ErrUsage)
	}
	typ, err := core.ParseMovementType(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	qty, err := decimal.NewFromString(args[2])
	if err != nil || !qty.IsPositive() {
		return fmt.Errorf("%w: invalid quantity %q", ErrUsage, args[2])
	}
	var at time.Time
	if len(args) == 4 {
		if at, err = time.Parse("2006-01-02", args[3]); err != nil {
			return fmt.Errorf("%w: invalid date %q", ErrUsage, args[3])
		}
	}
	article, err := env.Backend.FindArticleByCode(ctx, args[1])
	if err != nil {
		return fmt.Errorf("failed to find article %s: %w", args[1], err)
	}
	m, err := env.Backend.CreateMovement(ctx, core.MovementFields{
		Date:         at,
		Quantity:     qty,
		Type:         typ,
		ArticleID:    article.ID,
		EnterpriseID: env.EnterpriseID,
	})
	if err != nil {
		return fmt.Errorf("failed to record movement: %w", err)
	}
	fmt.Fprintf(env.Stdout, "Movement %d: %s %s x %s.\n", m.ID, m.Type, article.Code, m.Quantity)
	return nil
}

// runReceive books the movements of a fulfilled order: fournisseur lines
// enter stock, client lines leave it. It stops at the first failure and
// reports how many were saved.
func runReceive(ctx context.Context, env Env, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: receive <kind> <id|code>", ErrUsage)
	}
	kind, err := kindArg(args[0])
	if err != nil {
		return err
	}
	order, err := findOrder(ctx, env.Backend, kind, args[1])
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	fields := core.MovementsForOrder(*order, time.Now())
	for i, f := range fields {
		if _, err := env.Backend.CreateMovement(ctx, f); err != nil {
			return fmt.Errorf("order %s: %d of %d movements recorded: %w", order.Code, i, len(fields), err)
		}
	}
	fmt.Fprintf(env.Stdout, "Recorded %d %s movement(s) for order %s.\n", len(fields), core.MovementTypeFor(kind), order.Code)
	return nil
}

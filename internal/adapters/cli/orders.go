package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"stock-orders/internal/core"
)

func runShow(ctx context.Context, env Env, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	asJSON := fs.Bool("json", false, "print the order as a draft document")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return fmt.Errorf("%w: show [-json] <kind> <id|code>", ErrUsage)
	}
	kind, err := kindArg(fs.Arg(0))
	if err != nil {
		return err
	}
	order, err := findOrder(ctx, env.Backend, kind, fs.Arg(1))
	if err != nil {
		return fmt.Errorf("failed to load order: %w", err)
	}
	if *asJSON {
		return writeIndented(env.Stdout, core.DraftDocumentFromOrder(*order))
	}
	printOrder(env.Stdout, order)
	return nil
}

func runList(ctx context.Context, env Env, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: list <kind>", ErrUsage)
	}
	kind, err := kindArg(args[0])
	if err != nil {
		return err
	}
	orders, err := env.Backend.ListOrders(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}
	w := env.Stdout
	fmt.Fprintf(w, "  %-6s %-14s %-12s %-6s %-24s %6s %12s\n", "ID", "CODE", "DATE", "ENT", strings.ToUpper(string(kind.PartyKind())), "LINES", "TOTAL")
	fmt.Fprintln(w, strings.Repeat("-", 88))
	for _, o := range orders {
		fmt.Fprintf(w, "  %-6d %-14s %-12s %-6d %-24s %6d %12s\n", o.ID, o.Code, o.OrderDate, o.EnterpriseID, partyName(&o), len(o.Lines), o.Total().StringFixed(2))
	}
	return nil
}

func runDelete(ctx context.Context, env Env, args []string) error {
	kind, id, err := kindAndID("delete", args)
	if err != nil {
		return err
	}
	if err := env.Backend.DeleteOrder(ctx, kind, id); err != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, err)
	}
	fmt.Fprintf(env.Stdout, "Order %d deleted.\n", id)
	return nil
}

func runClear(ctx context.Context, env Env, args []string) error {
	kind, id, err := kindAndID("clear", args)
	if err != nil {
		return err
	}
	n, err := env.Backend.RemoveAllLines(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("failed to clear order %d: %w", id, err)
	}
	fmt.Fprintf(env.Stdout, "Removed %d line(s) from order %d.\n", n, id)
	return nil
}

func kindAndID(cmd string, args []string) (core.OrderKind, int, error) {
	if len(args) != 2 {
		return "", 0, fmt.Errorf("%w: %s <kind> <id>", ErrUsage, cmd)
	}
	kind, err := kindArg(args[0])
	if err != nil {
		return "", 0, err
	}
	id, err := idArg(args[1])
	if err != nil {
		return "", 0, err
	}
	return kind, id, nil
}

func printOrder(w io.Writer, o *core.Order) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "  ORDER %s (%s #%d)\n", o.Code, o.Kind, o.ID)
	fmt.Fprintf(w, "  Date       : %s\n", o.OrderDate)
	fmt.Fprintf(w, "  Enterprise : %d\n", o.EnterpriseID)
	fmt.Fprintf(w, "  Party      : %s (%s)\n", partyName(o), o.Kind.PartyKind())
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "  %-6s %-12s %-22s %8s %10s %10s\n", "LINE", "CODE", "DESIGNATION", "QTY", "PRICE", "SUBTOTAL")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, l := range o.Lines {
		code, name := fmt.Sprintf("#%d", l.ArticleID), ""
		if l.Article != nil {
			code, name = l.Article.Code, l.Article.Designation
		}
		fmt.Fprintf(w, "  %-6d %-12s %-22s %8s %10s %10s\n", l.ID, code, name, l.Quantity.String(), l.UnitPrice.StringFixed(2), l.Subtotal().StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintf(w, "  %-60s %10s\n", "TOTAL", o.Total().StringFixed(2))
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

func partyName(o *core.Order) string {
	if o.Party != nil {
		return o.Party.DisplayName()
	}
	return fmt.Sprintf("#%d", o.PartyID)
}

package repl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"stock-orders/internal/core"
)

func (s *session) printForm(ctx context.Context) {
	f := s.driver.Fields()
	w := s.out
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "  ORDER FORM (%s, %s)\n", s.kind, s.driver.State())
	fmt.Fprintf(w, "  Code       : %s\n", orDash(f.Code))
	fmt.Fprintf(w, "  Date       : %s\n", orDash(f.OrderDate))
	fmt.Fprintf(w, "  Enterprise : %s\n", idOrDash(f.EnterpriseID))
	party := idOrDash(f.PartyID)
	for _, p := range s.driver.Candidates() {
		if p.ID == f.PartyID {
			party = fmt.Sprintf("%s (#%d)", p.DisplayName(), p.ID)
		}
	}
	fmt.Fprintf(w, "  %-11s: %s\n", strings.ToUpper(string(s.kind.PartyKind())), party)
	s.printLines(ctx)
}

func (s *session) printLines(ctx context.Context) {
	w := s.out
	codes := map[int]string{}
	if articles, err := s.driver.Articles(ctx); err == nil {
		for _, a := range articles {
			codes[a.ID] = a.Code
		}
	}
	ed := s.driver.Editor()
	fmt.Fprintln(w, strings.Repeat("=", 72))
	if ed.Len() == 0 {
		fmt.Fprintln(w, "  No lines. Use /add <article-code> [qty] or /lines.")
		fmt.Fprintln(w, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(w, "  %-4s %-8s %-14s %10s %12s %12s\n", "#", "LINE", "ARTICLE", "QTY", "PRICE", "SUBTOTAL")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for i, l := range ed.Lines() {
		lineID := "new"
		if id, ok := l.ID(); ok {
			lineID = fmt.Sprintf("%d", id)
		}
		code := codes[l.ArticleID]
		if code == "" {
			code = orDash("")
		}
		fmt.Fprintf(w, "  %-4d %-8s %-14s %10s %12s %12s\n", i+1, lineID, code, l.Quantity.String(), l.UnitPrice.StringFixed(2), l.Subtotal().StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("-", 72))
	fmt.Fprintf(w, "  %-54s %12s\n", "TOTAL", ed.Total().StringFixed(2))
	if removed := ed.Removed(); len(removed) > 0 {
		fmt.Fprintf(w, "  Lines to remove on save: %v\n", removed)
	}
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

func printParties(w io.Writer, kind core.OrderKind, parties []core.Party) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %sS\n", strings.ToUpper(string(kind.PartyKind())))
	fmt.Fprintln(w, strings.Repeat("=", 62))
	if len(parties) == 0 {
		fmt.Fprintln(w, "  None for this enterprise.")
		fmt.Fprintln(w, strings.Repeat("=", 62))
		return
	}
	fmt.Fprintf(w, "  %-6s %-30s %s\n", "ID", "NAME", "EMAIL")
	fmt.Fprintln(w, strings.Repeat("-", 62))
	for _, p := range parties {
		fmt.Fprintf(w, "  %-6d %-30s %s\n", p.ID, p.DisplayName(), p.Email)
	}
	fmt.Fprintln(w, strings.Repeat("=", 62))
}

func printArticles(w io.Writer, articles []core.Article) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "  %-12s %-30s %12s %12s\n", "CODE", "DESIGNATION", "PRICE HT", "PRICE TTC")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, a := range articles {
		fmt.Fprintf(w, "  %-12s %-30s %12s %12s\n", a.Code, a.Designation, a.UnitPrice.StringFixed(2), a.UnitPriceTTC.StringFixed(2))
	}
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

// PrintResult writes the outcome table of a save.
func PrintResult(w io.Writer, r *core.SaveResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  ORDER %s (%s #%d)\n", r.Order.Code, r.Kind, r.Order.ID)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %-12s %-8s %-10s %-8s %s\n", "OP", "LINE", "ARTICLE", "QTY", "RESULT")
	fmt.Fprintln(w, strings.Repeat("-", 62))
	for _, o := range r.Outcomes {
		status := "ok"
		if o.Err != nil {
			status = "FAILED: " + o.Err.Error()
		}
		fmt.Fprintf(w, "  %-12s %-8d %-10d %-8s %s\n", o.Op, o.LineID, o.Fields.ArticleID, o.Fields.Quantity, status)
	}
	for _, s := range r.Plan.Skipped {
		fmt.Fprintf(w, "  %-12s %-8s %-10d %-8s %s\n", "skipped", "-", s.Line.ArticleID, s.Line.Quantity, s.Reason)
	}
	if len(r.Outcomes) == 0 && len(r.Plan.Skipped) == 0 {
		fmt.Fprintln(w, "  (no line changes)")
	}
	fmt.Fprintln(w, strings.Repeat("=", 62))
	if failed := len(r.Failed()); failed > 0 {
		fmt.Fprintf(w, "  %d line call(s) failed; the order header is saved.\n", failed)
	}
}

func printResult(w io.Writer, r *core.SaveResult) {
	PrintResult(w, r)
	if !r.OK() {
		fmt.Fprintln(w, "  Use /retry to resend the failed calls.")
	}
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "ORDER FORM COMMANDS")
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  FORM")
	fmt.Fprintln(w, "  /new <client|fournisseur>        Open a new order")
	fmt.Fprintln(w, "  /edit <kind> <id|code>           Open an existing order")
	fmt.Fprintln(w, "  /code <code>  /date <YYYY-MM-DD> Header fields")
	fmt.Fprintln(w, "  /ent <id>                        Select the enterprise (clears the party)")
	fmt.Fprintln(w, "  /parties  /party <id>            List and select the counterparty")
	fmt.Fprintln(w, "  /show  /check                    Print or validate the form")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  LINES")
	fmt.Fprintln(w, "  /articles                        List the catalog")
	fmt.Fprintln(w, "  /add <code> [qty]                Add an article, merging into its row")
	fmt.Fprintln(w, "  /lines                           Enter several lines")
	fmt.Fprintln(w, "  /set <n> <code>                  Change the article of line n")
	fmt.Fprintln(w, "  /qty <n> <q>  /price <n> <p>     Edit line n")
	fmt.Fprintln(w, "  /rm <n>                          Remove line n")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  SAVE")
	fmt.Fprintln(w, "  /submit                          Save header then lines")
	fmt.Fprintln(w, "  /retry                           Resend failed line calls")
	fmt.Fprintln(w, "  /cancel                          Close without saving")
	fmt.Fprintln(w, "  /exit                            Exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  AGENT MODE  (no / prefix)")
	fmt.Fprintln(w, "  Describe an order in plain words; the draft is loaded for review.")
	fmt.Fprintln(w, strings.Repeat("=", 62))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func idOrDash(id int) string {
	if id <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", id)
}

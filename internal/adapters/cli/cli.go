// Package cli implements the ordersync subcommands. Every command goes
// through a Backend, which is either the REST client or the local pgx store.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"stock-orders/internal/adapters/repl"
	"stock-orders/internal/ai"
	"stock-orders/internal/core"
)

// Backend is what ordersync needs from the order system.
type Backend interface {
	core.ArticleCatalog
	core.PartyReader
	core.OrderBackend
	core.StockRecorder
	RemoveAllLines(ctx context.Context, kind core.OrderKind, orderID int) (int64, error)
}

// Env carries a command's dependencies. Agent may be nil.
type Env struct {
	Backend      Backend
	Agent        ai.DraftProposer
	EnterpriseID int // session enterprise used when a draft names none
	Notifier     core.Notifier
	Stdin        io.Reader
	Stdout       io.Writer
}

// ErrUsage is returned for a malformed command line.
var ErrUsage = errors.New("usage")

// ErrPartialSave is returned by apply when the header was saved but some line
// calls failed.
var ErrPartialSave = errors.New("some line operations failed")

const usage = `Usage: ordersync [--local] <command> [args]

Commands:
  form                             interactive order form
  apply [-retry N] <file|->        create or edit an order from a draft document
  show [-json] <kind> <id|code>    print an order
  list <kind>                      list orders
  delete <kind> <id>               delete an order and its lines
  clear <kind> <id>                remove every line of an order
  schema                           print the draft document JSON Schema
  propose "<text>"                 ask the AI agent for a draft (never saved)
  export <kind> <id> <out.xlsx>    write an order sheet
  stock                            print the stock level of every article
  movements                        list stock movements
  move <entree|sortie> <code> <qty> [YYYY-MM-DD]
                                   record a stock movement
  receive <kind> <id|code>         book an order's lines as stock movements

kind is client or fournisseur.`

// Usage returns the command summary.
func Usage() string { return usage }

// Run executes one command. args is os.Args after the global flags; the first
// element is the subcommand name.
func Run(ctx context.Context, env Env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}
	if env.Stdout == nil {
		env.Stdout = os.Stdout
	}
	if env.Stdin == nil {
		env.Stdin = os.Stdin
	}
	if env.Notifier == nil {
		env.Notifier = core.LogNotifier{}
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "form", "f":
		return repl.Run(ctx, repl.Config{
			Catalog:  env.Backend,
			Parties:  env.Backend,
			Orders:   env.Backend,
			Agent:    env.Agent,
			Session:  core.Session{EnterpriseID: env.EnterpriseID},
			Notifier: env.Notifier,
		}, bufio.NewReader(env.Stdin), env.Stdout)
	case "apply", "a":
		return runApply(ctx, env, rest)
	case "show", "s":
		return runShow(ctx, env, rest)
	case "list", "ls":
		return runList(ctx, env, rest)
	case "delete", "rm":
		return runDelete(ctx, env, rest)
	case "clear":
		return runClear(ctx, env, rest)
	case "schema":
		return writeIndented(env.Stdout, ai.DraftSchema())
	case "propose", "p":
		return runPropose(ctx, env, rest)
	case "export", "x":
		return runExport(ctx, env, rest)
	case "stock":
		return runStock(ctx, env, rest)
	case "movements", "mv":
		return runMovements(ctx, env, rest)
	case "move":
		return runMove(ctx, env, rest)
	case "receive":
		return runReceive(ctx, env, rest)
	case "help", "-h", "--help":
		fmt.Fprintln(env.Stdout, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func runPropose(ctx context.Context, env Env, args []string) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("%w: propose \"<order description>\"", ErrUsage)
	}
	if env.Agent == nil {
		return errors.New("propose: OPENAI_API_KEY is not set")
	}
	articles, err := env.Backend.ListArticles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	doc, err := env.Agent.ProposeDraft(ctx, args[0], articles)
	if err != nil {
		return fmt.Errorf("agent error: %w", err)
	}
	return writeIndented(env.Stdout, doc)
}

// ── Argument helpers ─────────────────────────────────────────────────────────

func kindArg(s string) (core.OrderKind, error) {
	kind, err := core.ParseOrderKind(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return kind, nil
}

func idArg(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid order id %q", ErrUsage, s)
	}
	return id, nil
}

// findOrder looks ref up as an id when numeric, else as an order code.
func findOrder(ctx context.Context, b Backend, kind core.OrderKind, ref string) (*core.Order, error) {
	if id, err := strconv.Atoi(ref); err == nil && id > 0 {
		return b.GetOrder(ctx, kind, id)
	}
	return b.GetOrderByCode(ctx, kind, ref)
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Package repl is an interactive order form. Slash commands edit the form
// through core.Driver; free text asks the draft agent for a proposal that is
// loaded into the form for review.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"stock-orders/internal/ai"
	"stock-orders/internal/core"
)

// Config carries the ports the form talks to. Agent may be nil.
type Config struct {
	Catalog  core.ArticleCatalog
	Parties  core.PartyReader
	Orders   core.OrderBackend
	Agent    ai.DraftProposer
	Session  core.Session
	Notifier core.Notifier
}

type session struct {
	cfg        Config
	out        io.Writer
	reader     *bufio.Reader
	driver     *core.Driver
	reconciler *core.Reconciler
	kind       core.OrderKind
	last       *core.SaveResult
}

var errExit = errors.New("exit")

// Run reads commands from reader until /quit or end of input.
func Run(ctx context.Context, cfg Config, reader *bufio.Reader, out io.Writer) error {
	if cfg.Notifier == nil {
		cfg.Notifier = core.DiscardNotifier
	}
	s := &session{cfg: cfg, out: out, reader: reader}
	s.reconciler = core.NewReconciler(cfg.Orders, core.WithNotifier(cfg.Notifier))
	s.driver = core.NewDriver(cfg.Session, cfg.Catalog, cfg.Parties, s.reconciler, nil)

	fmt.Fprintln(out, "Order form")
	fmt.Fprintln(out, "Use /new or /edit to open an order, /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	for {
		fmt.Fprint(out, "\n> ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input != "" {
			if cmdErr := s.handle(ctx, input); cmdErr != nil {
				if errors.Is(cmdErr, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return nil
				}
				fmt.Fprintf(out, "Error: %v\n", cmdErr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
}

func (s *session) handle(ctx context.Context, input string) error {
	if !strings.HasPrefix(input, "/") {
		return s.propose(ctx, input)
	}
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(tokens[0]), tokens[1:]

	switch cmd {
	case "new":
		if len(args) != 1 {
			return usageErr("/new <client|fournisseur>")
		}
		kind, err := core.ParseOrderKind(args[0])
		if err != nil {
			return err
		}
		s.kind = kind
		s.last = nil
		s.driver.OpenCreate(kind)
		s.printForm(ctx)

	case "edit":
		if len(args) != 2 {
			return usageErr("/edit <client|fournisseur> <id|code>")
		}
		kind, err := core.ParseOrderKind(args[0])
		if err != nil {
			return err
		}
		order, err := s.findOrder(ctx, kind, args[1])
		if err != nil {
			return err
		}
		if err := s.driver.OpenEdit(ctx, order); err != nil {
			return err
		}
		s.kind = kind
		s.last = nil
		s.printForm(ctx)

	case "code":
		if len(args) != 1 {
			return usageErr("/code <order-code>")
		}
		return s.driver.SetCode(args[0])

	case "date":
		if len(args) != 1 {
			return usageErr("/date <YYYY-MM-DD>")
		}
		return s.driver.SetDate(args[0])

	case "ent", "enterprise":
		id, err := intArg(args, "/ent <enterprise-id>")
		if err != nil {
			return err
		}
		if err := s.driver.SetEnterprise(ctx, id); err != nil {
			return err
		}
		printParties(s.out, s.kind, s.driver.Candidates())

	case "parties":
		printParties(s.out, s.kind, s.driver.Candidates())

	case "party":
		id, err := intArg(args, "/party <id>")
		if err != nil {
			return err
		}
		return s.driver.SetParty(ctx, id)

	case "articles":
		articles, err := s.driver.Articles(ctx)
		if err != nil {
			return err
		}
		printArticles(s.out, articles)

	case "add":
		if len(args) < 1 || len(args) > 2 {
			return usageErr("/add <article-code> [qty]")
		}
		qty := "1"
		if len(args) == 2 {
			qty = args[1]
		}
		if err := s.driver.AddArticleByCode(ctx, args[0], qty); err != nil {
			return err
		}
		s.printLines(ctx)

	case "lines":
		return s.lineWizard(ctx)

	case "set":
		if len(args) != 2 {
			return usageErr("/set <line> <article-code>")
		}
		i, err := s.lineIndex(args[0])
		if err != nil {
			return err
		}
		a, err := s.cfg.Catalog.FindArticleByCode(ctx, args[1])
		if err != nil {
			return fmt.Errorf("article %s: %w", args[1], err)
		}
		if err := s.driver.SetLineArticle(ctx, i, a.ID); err != nil {
			return err
		}
		s.printLines(ctx)

	case "qty", "price":
		if len(args) != 2 {
			return usageErr("/" + cmd + " <line> <value>")
		}
		i, err := s.lineIndex(args[0])
		if err != nil {
			return err
		}
		ed := s.driver.Editor()
		if cmd == "qty" {
			err = ed.SetLineQuantity(i, core.CoerceQuantity(args[1]))
		} else {
			err = ed.SetLineUnitPrice(i, core.CoercePrice(args[1]))
		}
		if err != nil {
			return err
		}
		s.printLines(ctx)

	case "rm":
		i, err := s.lineIndex(first(args))
		if err != nil {
			return err
		}
		if err := s.driver.Editor().RemoveLine(i); err != nil {
			return err
		}
		s.printLines(ctx)

	case "show":
		if s.driver.State() == core.StateIdle {
			return core.ErrNotEditing
		}
		s.printForm(ctx)

	case "check":
		if err := s.driver.Validate(); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Form is valid.")

	case "submit", "save":
		result, err := s.driver.Submit(ctx)
		if err != nil {
			return err
		}
		s.last = result
		printResult(s.out, result)

	case "retry":
		if s.last == nil || s.last.OK() {
			fmt.Fprintln(s.out, "Nothing to retry.")
			return nil
		}
		result, err := s.reconciler.Retry(ctx, s.last)
		if err != nil {
			return err
		}
		s.last = result
		printResult(s.out, result)

	case "cancel":
		s.driver.Cancel()
		fmt.Fprintln(s.out, "Form closed without saving.")

	case "help", "h":
		printHelp(s.out)

	case "exit", "quit", "q":
		return errExit

	default:
		fmt.Fprintf(s.out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

// propose loads an agent draft into the form. A new form is opened unless an
// order is already open; nothing is saved until /submit.
func (s *session) propose(ctx context.Context, text string) error {
	if s.cfg.Agent == nil {
		fmt.Fprintln(s.out, "Draft agent not configured. Use slash commands, or set OPENAI_API_KEY.")
		return nil
	}
	articles, err := s.cfg.Catalog.ListArticles(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	fmt.Fprintln(s.out, "[AI] Processing...")
	doc, err := s.cfg.Agent.ProposeDraft(ctx, text, articles)
	if err != nil {
		return err
	}
	if s.driver.State() == core.StateIdle {
		s.kind = doc.Kind
		s.driver.OpenCreate(doc.Kind)
	}
	if err := doc.Fill(ctx, s.driver); err != nil {
		return fmt.Errorf("draft could not be loaded: %w", err)
	}
	s.printForm(ctx)
	fmt.Fprintln(s.out, "Review the draft, then /submit to save or /cancel to discard.")
	return nil
}

func (s *session) findOrder(ctx context.Context, kind core.OrderKind, ref string) (*core.Order, error) {
	if id, err := strconv.Atoi(ref); err == nil && id > 0 {
		return s.cfg.Orders.GetOrder(ctx, kind, id)
	}
	return s.cfg.Orders.GetOrderByCode(ctx, kind, ref)
}

// lineIndex converts a 1-based line number to an editor index.
func (s *session) lineIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > s.driver.Editor().Len() {
		return 0, fmt.Errorf("line %q: %w", arg, core.ErrLineIndex)
	}
	return n - 1, nil
}

func intArg(args []string, usage string) (int, error) {
	if len(args) != 1 {
		return 0, usageErr(usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, usageErr(usage)
	}
	return n, nil
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func usageErr(usage string) error {
	return fmt.Errorf("usage: %s", usage)
}

package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"stock-orders/internal/adapters/repl"
	"stock-orders/internal/core"
)

// runApply fills a Driver from a draft document and submits it. An id in the
// document opens the persisted order as the baseline; otherwise a new order
// is created.
func runApply(ctx context.Context, env Env, args []string) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	retries := fs.Int("retry", 0, "retry failed line calls up to N times")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return fmt.Errorf("%w: apply [-retry N] <file|->", ErrUsage)
	}

	doc, err := readDraft(env, fs.Arg(0))
	if err != nil {
		return err
	}
	if _, err := core.ParseOrderKind(string(doc.Kind)); err != nil {
		return fmt.Errorf("draft: %w", err)
	}

	session := core.Session{EnterpriseID: env.EnterpriseID}
	if doc.EnterpriseID > 0 {
		session.EnterpriseID = doc.EnterpriseID
	}
	reconciler := core.NewReconciler(env.Backend, core.WithNotifier(env.Notifier))
	driver := core.NewDriver(session, env.Backend, env.Backend, reconciler, nil)

	if doc.ID > 0 {
		order, err := env.Backend.GetOrder(ctx, doc.Kind, doc.ID)
		if err != nil {
			return fmt.Errorf("failed to load order %d: %w", doc.ID, err)
		}
		if err := driver.OpenEdit(ctx, order); err != nil {
			return err
		}
	} else {
		driver.OpenCreate(doc.Kind)
	}
	if err := doc.Fill(ctx, driver); err != nil {
		return fmt.Errorf("draft: %w", err)
	}

	result, err := driver.Submit(ctx)
	if err != nil {
		return err
	}
	for i := 0; i < *retries && !result.OK(); i++ {
		retried, err := reconciler.Retry(ctx, result)
		if err != nil {
			return err
		}
		result = merge(result, retried)
	}

	repl.PrintResult(env.Stdout, result)
	if !result.OK() {
		return fmt.Errorf("order %s: %d of %d: %w", result.Order.Code, len(result.Failed()), len(result.Outcomes), ErrPartialSave)
	}
	return nil
}

// merge replaces the failed outcomes of prev with the outcomes of the retry.
func merge(prev, retried *core.SaveResult) *core.SaveResult {
	out := *prev
	out.Outcomes = nil
	for _, o := range prev.Outcomes {
		if o.Err == nil {
			out.Outcomes = append(out.Outcomes, o)
		}
	}
	out.Outcomes = append(out.Outcomes, retried.Outcomes...)
	return &out
}

func readDraft(env Env, path string) (core.DraftDocument, error) {
	var r io.Reader = env.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return core.DraftDocument{}, fmt.Errorf("failed to open draft: %w", err)
		}
		defer f.Close()
		r = f
	}
	var doc core.DraftDocument
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return core.DraftDocument{}, fmt.Errorf("invalid draft JSON: %w", err)
	}
	return doc, nil
}

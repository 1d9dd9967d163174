package core

import (
	"context"
	"errors"
	"fmt"
)

// SaveMode says whether the order header is created or updated.
type SaveMode int

const (
	SaveCreate SaveMode = iota
	SaveEdit
)

func (m SaveMode) String() string {
	if m == SaveEdit {
		return "edit"
	}
	return "create"
}

// Op is one kind of line call.
type Op string

const (
	OpAddLine    Op = "add_line"
	OpUpdateLine Op = "update_line"
	OpRemoveLine Op = "remove_line"
)

// SkippedLine is a draft line that produced no call.
type SkippedLine struct {
	Line   DraftLine
	Reason string
}

// LinePlan is the set of line calls needed to bring the backend's lines from
// the baseline to the draft.
type LinePlan struct {
	Add     []DraftLine
	Update  []DraftLine
	Remove  []LineItem
	Skipped []SkippedLine
}

// Empty reports whether the plan issues no call.
func (p LinePlan) Empty() bool {
	return len(p.Add) == 0 && len(p.Update) == 0 && len(p.Remove) == 0
}

// PlanLines diffs draft against baseline.
//
//   - new lines that are valid are added;
//   - persisted lines present in the baseline are updated when valid and changed;
//   - baseline lines absent from the draft are removed;
//   - invalid lines, and persisted lines unknown to the baseline, are skipped.
//
// enterpriseID is the order's enterprise, copied onto every line.
func PlanLines(draft []DraftLine, baseline []LineItem, enterpriseID int) LinePlan {
	byID := make(map[int]LineItem, len(baseline))
	for _, b := range baseline {
		byID[b.ID] = b
	}

	var plan LinePlan
	kept := make(map[int]bool, len(draft))
	for _, d := range draft {
		id, persisted := d.ID()
		if persisted {
			kept[id] = true
		}
		fields := d.Fields(enterpriseID)
		if !fields.Valid() {
			plan.Skipped = append(plan.Skipped, SkippedLine{Line: d, Reason: invalidReason(fields)})
			continue
		}
		if !persisted {
			plan.Add = append(plan.Add, d)
			continue
		}
		b, ok := byID[id]
		if !ok {
			plan.Skipped = append(plan.Skipped, SkippedLine{Line: d, Reason: fmt.Sprintf("line %d is not part of this order", id)})
			continue
		}
		if !fields.sameContent(b.Fields()) {
			plan.Update = append(plan.Update, d)
		}
	}

	for _, b := range baseline {
		if !kept[b.ID] {
			plan.Remove = append(plan.Remove, b)
		}
	}
	return plan
}

func invalidReason(f LineFields) string {
	switch {
	case f.ArticleID <= 0:
		return "no article selected"
	case !f.Quantity.IsPositive():
		return "quantity must be positive"
	default:
		return "unit price must not be negative"
	}
}

// SaveRequest is one save of an order form.
type SaveRequest struct {
	Kind     OrderKind
	Mode     SaveMode
	OrderID  int // required in edit mode
	Fields   OrderFields
	Draft    []DraftLine
	Baseline []LineItem // lines as fetched when editing began; empty on create
}

// Outcome records one line call.
type Outcome struct {
	Op     Op
	LineID int // line targeted by update/remove, or the id assigned by add
	Fields LineFields
	Err    error
}

// SaveResult enumerates what a save did. A non-nil result with failed outcomes
// means the header was saved and some line calls were not.
type SaveResult struct {
	Kind     OrderKind
	Order    *Order
	Plan     LinePlan
	Outcomes []Outcome
}

// Failed returns the outcomes whose call did not succeed.
func (r *SaveResult) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// OK reports whether every line call succeeded.
func (r *SaveResult) OK() bool {
	return len(r.Failed()) == 0
}

// Count returns how many calls of op were issued.
func (r *SaveResult) Count(op Op) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Op == op {
			n++
		}
	}
	return n
}

// Reconciler saves an order header then its lines, one call at a time. It is
// not a transaction: the header stays saved when line calls fail, and the
// failures are reported in the SaveResult so they can be retried.
type Reconciler struct {
	backend  OrderBackend
	notifier Notifier
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithNotifier sets where per-call notifications go. The default logs them.
func WithNotifier(n Notifier) ReconcilerOption {
	return func(r *Reconciler) { r.notifier = n }
}

func NewReconciler(backend OrderBackend, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{backend: backend, notifier: LogNotifier{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save creates or updates the header, then adds, updates and removes lines in
// that order. A header failure returns an error wrapping ErrOrderNotSaved and
// no line call is made. Line failures do not stop the remaining calls.
func (r *Reconciler) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	order, err := r.saveHeader(ctx, req)
	if err != nil {
		return nil, err
	}

	plan := PlanLines(req.Draft, req.Baseline, req.Fields.EnterpriseID)
	for _, s := range plan.Skipped {
		r.notifier.Failure(fmt.Sprintf("order %s: line skipped", order.Code), errors.New(s.Reason))
	}

	ops := make([]Outcome, 0, len(plan.Add)+len(plan.Update)+len(plan.Remove))
	for _, d := range plan.Add {
		ops = append(ops, Outcome{Op: OpAddLine, Fields: d.Fields(req.Fields.EnterpriseID)})
	}
	for _, d := range plan.Update {
		id, _ := d.ID()
		ops = append(ops, Outcome{Op: OpUpdateLine, LineID: id, Fields: d.Fields(req.Fields.EnterpriseID)})
	}
	for _, b := range plan.Remove {
		ops = append(ops, Outcome{Op: OpRemoveLine, LineID: b.ID, Fields: b.Fields()})
	}

	return &SaveResult{
		Kind:     req.Kind,
		Order:    order,
		Plan:     plan,
		Outcomes: r.dispatch(ctx, req.Kind, order, ops),
	}, nil
}

// Retry re-issues the failed calls of prev against the same order and returns
// a result holding only the retried outcomes.
func (r *Reconciler) Retry(ctx context.Context, prev *SaveResult) (*SaveResult, error) {
	if prev == nil || prev.Order == nil {
		return nil, fmt.Errorf("retry: %w", ErrOrderNotSaved)
	}
	failed := prev.Failed()
	for i := range failed {
		failed[i].Err = nil
	}
	return &SaveResult{
		Kind:     prev.Kind,
		Order:    prev.Order,
		Plan:     prev.Plan,
		Outcomes: r.dispatch(ctx, prev.Kind, prev.Order, failed),
	}, nil
}

func (r *Reconciler) saveHeader(ctx context.Context, req SaveRequest) (*Order, error) {
	switch req.Mode {
	case SaveCreate:
		order, err := r.backend.CreateOrder(ctx, req.Kind, req.Fields)
		if err != nil {
			r.notifier.Failure(fmt.Sprintf("create %s order %s", req.Kind, req.Fields.Code), err)
			return nil, fmt.Errorf("create %s order %q: %w: %w", req.Kind, req.Fields.Code, ErrOrderNotSaved, err)
		}
		r.notifier.Success(fmt.Sprintf("%s order %s created", req.Kind, order.Code))
		return order, nil
	case SaveEdit:
		if req.OrderID <= 0 {
			return nil, fmt.Errorf("update %s order: missing order id: %w", req.Kind, ErrOrderNotSaved)
		}
		order, err := r.backend.UpdateOrder(ctx, req.Kind, req.OrderID, req.Fields)
		if err != nil {
			r.notifier.Failure(fmt.Sprintf("update %s order %d", req.Kind, req.OrderID), err)
			return nil, fmt.Errorf("update %s order %d: %w: %w", req.Kind, req.OrderID, ErrOrderNotSaved, err)
		}
		r.notifier.Success(fmt.Sprintf("%s order %s updated", req.Kind, order.Code))
		return order, nil
	}
	return nil, fmt.Errorf("unknown save mode %d: %w", req.Mode, ErrOrderNotSaved)
}

// dispatch issues ops sequentially. Once ctx is done, the remaining ops are
// recorded as failed with the context error without being sent.
func (r *Reconciler) dispatch(ctx context.Context, kind OrderKind, order *Order, ops []Outcome) []Outcome {
	out := make([]Outcome, 0, len(ops))
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			op.Err = err
			out = append(out, op)
			continue
		}
		op.LineID, op.Err = r.issue(ctx, kind, order.ID, op)
		if op.Err != nil {
			r.notifier.Failure(describe(order, op), op.Err)
		} else {
			r.notifier.Success(describe(order, op))
		}
		out = append(out, op)
	}
	return out
}

func (r *Reconciler) issue(ctx context.Context, kind OrderKind, orderID int, op Outcome) (int, error) {
	switch op.Op {
	case OpAddLine:
		line, err := r.backend.AddLine(ctx, kind, orderID, op.Fields)
		if err != nil {
			return 0, err
		}
		return line.ID, nil
	case OpUpdateLine:
		if _, err := r.backend.UpdateLine(ctx, kind, orderID, op.LineID, op.Fields); err != nil {
			return op.LineID, err
		}
		return op.LineID, nil
	case OpRemoveLine:
		return op.LineID, r.backend.RemoveLine(ctx, kind, orderID, op.LineID)
	}
	return op.LineID, fmt.Errorf("unknown line op %q", op.Op)
}

func describe(order *Order, op Outcome) string {
	switch op.Op {
	case OpAddLine:
		return fmt.Sprintf("order %s: add line (article %d, qty %s)", order.Code, op.Fields.ArticleID, op.Fields.Quantity)
	case OpUpdateLine:
		return fmt.Sprintf("order %s: update line %d", order.Code, op.LineID)
	default:
		return fmt.Sprintf("order %s: remove line %d", order.Code, op.LineID)
	}
}

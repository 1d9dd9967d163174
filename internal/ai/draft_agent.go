package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"stock-orders/internal/core"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
	"github.com/shopspring/decimal"
)

// DraftProposer turns a free-text order request into a draft document.
type DraftProposer interface {
	ProposeDraft(ctx context.Context, text string, articles []core.Article) (*core.DraftDocument, error)
}

// DraftAgent proposes order drafts with an OpenAI model. A proposal is never
// saved by the agent; callers review it and apply it through the Driver.
type DraftAgent struct {
	client *openai.Client
	model  shared.ResponsesModel
}

// NewDraftAgent builds an agent. An empty model selects gpt-4o.
func NewDraftAgent(apiKey, model string) *DraftAgent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	m := shared.ResponsesModel(shared.ChatModelGPT4o)
	if model != "" {
		m = shared.ResponsesModel(model)
	}
	return &DraftAgent{client: &client, model: m}
}

func (a *DraftAgent) ProposeDraft(ctx context.Context, text string, articles []core.Article) (*core.DraftDocument, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("nothing to propose: empty request")
	}
	schemaMap, err := draftSchemaMap()
	if err != nil {
		return nil, err
	}

	params := responses.ResponseNewParams{
		Model: a.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(buildPrompt(text, articles)),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "order_draft",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A draft client or supplier order built from the article catalog"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var doc core.DraftDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	if err := checkDraft(&doc, articles); err != nil {
		return nil, fmt.Errorf("draft validation failed: %w", err)
	}
	return &doc, nil
}

func buildPrompt(text string, articles []core.Article) string {
	var catalog strings.Builder
	for _, a := range articles {
		fmt.Fprintf(&catalog, "- %s | %s | %s\n", a.Code, a.Designation, a.UnitPrice.StringFixed(2))
	}
	return fmt.Sprintf(`You prepare draft purchase and sales orders for a stock management system.
Rules:
1. Use ONLY article codes from the catalog below, and at most one line per article.
2. kind is "client" when goods are sold to a customer, "fournisseur" when bought from a supplier.
3. id and every line id are 0: the draft is always a new order.
4. Quantities and prices are decimal strings (e.g. "2", "10.00"). Leave prixUnitaire empty to use the catalog price.
5. Use 0 for entrepriseId and partyId unless the request gives the numeric ids, and "" for unknown fields.

Catalog (code | designation | unit price):
%s
Request: %s`, catalog.String(), text)
}

// checkDraft resolves article codes against the catalog and rejects
// proposals that reference unknown articles or repeat one.
func checkDraft(doc *core.DraftDocument, articles []core.Article) error {
	if _, err := core.ParseOrderKind(string(doc.Kind)); err != nil {
		return err
	}
	byCode := make(map[string]core.Article, len(articles))
	for _, a := range articles {
		byCode[a.Code] = a
	}

	doc.ID = 0
	seen := map[int]bool{}
	var problems []string
	for i := range doc.Lines {
		l := &doc.Lines[i]
		l.ID = 0
		a, ok := byCode[strings.TrimSpace(l.ArticleCode)]
		if !ok {
			problems = append(problems, fmt.Sprintf("line %d: unknown article code %q", i+1, l.ArticleCode))
			continue
		}
		if seen[a.ID] {
			problems = append(problems, fmt.Sprintf("line %d: article %s appears twice", i+1, a.Code))
			continue
		}
		seen[a.ID] = true
		l.ArticleID = a.ID
		l.ArticleCode = a.Code
		if q, err := decimal.NewFromString(strings.TrimSpace(l.Quantity)); err != nil || !q.IsPositive() {
			problems = append(problems, fmt.Sprintf("line %d: invalid quantity %q", i+1, l.Quantity))
		}
	}
	if len(doc.Lines) == 0 {
		problems = append(problems, "no order line proposed")
	}
	if len(problems) > 0 {
		return &core.ValidationError{Problems: problems}
	}
	return nil
}

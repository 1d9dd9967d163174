// Package rest implements the catalog, party, order and stock ports over the HTTP
// API served by internal/adapters/web.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stock-orders/internal/core"
	"stock-orders/internal/wire"
)

// Client talks to one backend. It is safe for concurrent use.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

var (
	_ core.ArticleCatalog = (*Client)(nil)
	_ core.PartyReader    = (*Client)(nil)
	_ core.OrderBackend   = (*Client)(nil)
	_ core.StockRecorder  = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithToken sends "Authorization: Bearer <token>" on every call.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds each call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Articles ─────────────────────────────────────────────────────────────────

func (c *Client) ListArticles(ctx context.Context) ([]core.Article, error) {
	var body []wire.Article
	if err := c.do(ctx, http.MethodGet, "/articles/showAll", nil, &body, msgLoadArticles); err != nil {
		return nil, err
	}
	out := make([]core.Article, 0, len(body))
	for _, a := range body {
		out = append(out, a.Core())
	}
	return out, nil
}

func (c *Client) GetArticle(ctx context.Context, id int) (*core.Article, error) {
	var body wire.Article
	if err := c.do(ctx, http.MethodGet, "/articles/id/"+strconv.Itoa(id), nil, &body, msgLoadArticle); err != nil {
		return nil, err
	}
	a := body.Core()
	return &a, nil
}

func (c *Client) FindArticleByCode(ctx context.Context, code string) (*core.Article, error) {
	var body wire.Article
	if err := c.do(ctx, http.MethodGet, "/articles/code/"+url.PathEscape(code), nil, &body, msgLoadArticle); err != nil {
		return nil, err
	}
	a := body.Core()
	return &a, nil
}

// ── Parties ──────────────────────────────────────────────────────────────────

func (c *Client) ListParties(ctx context.Context, kind core.PartyKind) ([]core.Party, error) {
	return c.ListPartiesByEnterprise(ctx, kind, 0)
}

// ListPartiesByEnterprise lists every party when enterpriseID is zero.
func (c *Client) ListPartiesByEnterprise(ctx context.Context, kind core.PartyKind, enterpriseID int) ([]core.Party, error) {
	path := partyBase(kind) + "/showAll"
	if enterpriseID > 0 {
		path += "?entrepriseId=" + strconv.Itoa(enterpriseID)
	}
	var body []wire.Party
	if err := c.do(ctx, http.MethodGet, path, nil, &body, msgLoadParties); err != nil {
		return nil, err
	}
	out := make([]core.Party, 0, len(body))
	for _, p := range body {
		out = append(out, p.Core(kind))
	}
	if enterpriseID > 0 {
		// Backends that ignore the query parameter still return every party.
		return core.FilterByEnterprise(out, enterpriseID), nil
	}
	return out, nil
}

func (c *Client) GetParty(ctx context.Context, kind core.PartyKind, id int) (*core.Party, error) {
	var body wire.Party
	if err := c.do(ctx, http.MethodGet, partyBase(kind)+"/"+strconv.Itoa(id), nil, &body, msgLoadParties); err != nil {
		return nil, err
	}
	p := body.Core(kind)
	return &p, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (c *Client) CreateOrder(ctx context.Context, kind core.OrderKind, fields core.OrderFields) (*core.Order, error) {
	return c.orderCall(ctx, kind, http.MethodPost, "/create", wire.NewOrderRequest(kind, fields), msgCreateOrder)
}

func (c *Client) UpdateOrder(ctx context.Context, kind core.OrderKind, orderID int, fields core.OrderFields) (*core.Order, error) {
	return c.orderCall(ctx, kind, http.MethodPut, "/update/"+strconv.Itoa(orderID), wire.NewOrderRequest(kind, fields), msgUpdateOrder)
}

func (c *Client) GetOrder(ctx context.Context, kind core.OrderKind, orderID int) (*core.Order, error) {
	return c.orderCall(ctx, kind, http.MethodGet, "/"+strconv.Itoa(orderID), nil, msgLoadOrder)
}

func (c *Client) GetOrderByCode(ctx context.Context, kind core.OrderKind, code string) (*core.Order, error) {
	return c.orderCall(ctx, kind, http.MethodGet, "/code/"+url.PathEscape(code), nil, msgLoadOrder)
}

func (c *Client) ListOrders(ctx context.Context, kind core.OrderKind) ([]core.Order, error) {
	var body []wire.Order
	if err := c.do(ctx, http.MethodGet, orderBase(kind)+"/showAll", nil, &body, msgLoadOrders); err != nil {
		return nil, err
	}
	out := make([]core.Order, 0, len(body))
	for _, o := range body {
		out = append(out, o.Core(kind))
	}
	return out, nil
}

func (c *Client) DeleteOrder(ctx context.Context, kind core.OrderKind, orderID int) error {
	return c.do(ctx, http.MethodDelete, orderBase(kind)+"/delete/"+strconv.Itoa(orderID), nil, nil, msgDeleteOrder)
}

func (c *Client) orderCall(ctx context.Context, kind core.OrderKind, method, path string, in any, fallback string) (*core.Order, error) {
	var body wire.Order
	if err := c.do(ctx, method, orderBase(kind)+path, in, &body, fallback); err != nil {
		return nil, err
	}
	o := body.Core(kind)
	return &o, nil
}

// ── Lines ────────────────────────────────────────────────────────────────────

func (c *Client) ListLines(ctx context.Context, kind core.OrderKind, orderID int) ([]core.LineItem, error) {
	var body []wire.Line
	if err := c.do(ctx, http.MethodGet, linesPath(kind, orderID), nil, &body, msgLoadLines); err != nil {
		return nil, err
	}
	out := make([]core.LineItem, 0, len(body))
	for _, l := range body {
		out = append(out, l.Core())
	}
	return out, nil
}

func (c *Client) AddLine(ctx context.Context, kind core.OrderKind, orderID int, fields core.LineFields) (*core.LineItem, error) {
	return c.lineCall(ctx, http.MethodPost, linesPath(kind, orderID), wire.NewLineRequest(fields), msgAddLine)
}

func (c *Client) UpdateLine(ctx context.Context, kind core.OrderKind, orderID, lineID int, fields core.LineFields) (*core.LineItem, error) {
	return c.lineCall(ctx, http.MethodPut, linesPath(kind, orderID)+"/"+strconv.Itoa(lineID), wire.NewLineRequest(fields), msgUpdateLine)
}

func (c *Client) RemoveLine(ctx context.Context, kind core.OrderKind, orderID, lineID int) error {
	return c.do(ctx, http.MethodDelete, linesPath(kind, orderID)+"/"+strconv.Itoa(lineID), nil, nil, msgRemoveLine)
}

// RemoveAllLines deletes every line of an order and returns how many went.
func (c *Client) RemoveAllLines(ctx context.Context, kind core.OrderKind, orderID int) (int64, error) {
	var body wire.RemovedLines
	if err := c.do(ctx, http.MethodDelete, linesPath(kind, orderID), nil, &body, msgRemoveLines); err != nil {
		return 0, err
	}
	return body.Removed, nil
}

func (c *Client) lineCall(ctx context.Context, method, path string, in any, fallback string) (*core.LineItem, error) {
	var body wire.Line
	if err := c.do(ctx, method, path, in, &body, fallback); err != nil {
		return nil, err
	}
	l := body.Core()
	return &l, nil
}

// ── Stock movements ──────────────────────────────────────────────────────────

func (c *Client) ListMovements(ctx context.Context) ([]core.StockMovement, error) {
	var body []wire.MvtStk
	if err := c.do(ctx, http.MethodGet, "/mvtstk/showAll", nil, &body, msgLoadMovements); err != nil {
		return nil, err
	}
	out := make([]core.StockMovement, 0, len(body))
	for _, m := range body {
		out = append(out, m.Core())
	}
	return out, nil
}

func (c *Client) GetMovement(ctx context.Context, id int) (*core.StockMovement, error) {
	return c.movementCall(ctx, http.MethodGet, "/mvtstk/"+strconv.Itoa(id), nil, msgLoadMovements)
}

func (c *Client) CreateMovement(ctx context.Context, f core.MovementFields) (*core.StockMovement, error) {
	return c.movementCall(ctx, http.MethodPost, "/mvtstk/create", wire.NewMvtStkRequest(f), msgCreateMovement)
}

func (c *Client) UpdateMovement(ctx context.Context, id int, f core.MovementFields) (*core.StockMovement, error) {
	return c.movementCall(ctx, http.MethodPut, "/mvtstk/update/"+strconv.Itoa(id), wire.NewMvtStkRequest(f), msgUpdateMovement)
}

func (c *Client) DeleteMovement(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/mvtstk/delete/"+strconv.Itoa(id), nil, nil, msgDeleteMovement)
}

func (c *Client) StockLevels(ctx context.Context) ([]core.StockLevel, error) {
	var body []wire.StockLevel
	if err := c.do(ctx, http.MethodGet, "/mvtstk/stock", nil, &body, msgLoadStock); err != nil {
		return nil, err
	}
	out := make([]core.StockLevel, 0, len(body))
	for _, l := range body {
		out = append(out, l.Core())
	}
	return out, nil
}

func (c *Client) movementCall(ctx context.Context, method, path string, in any, fallback string) (*core.StockMovement, error) {
	var body wire.MvtStk
	if err := c.do(ctx, method, path, in, &body, fallback); err != nil {
		return nil, err
	}
	m := body.Core()
	return &m, nil
}

// ── Transport ────────────────────────────────────────────────────────────────

// do sends one JSON request. A nil out discards the response body. Any
// non-2xx status becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any, fallback string) error {
	var reqBody io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp, fallback)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", fallback, err)
	}
	return nil
}

func decodeError(resp *http.Response, fallback string) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: fallback}
	var body wire.Error
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			apiErr.Message = body.Message
		}
		apiErr.Code = body.Code
		apiErr.Errors = body.Errors
	}
	return apiErr
}

// IsValidation reports whether err is a 400 answer from the backend.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest
}

func partyBase(kind core.PartyKind) string {
	if kind == core.PartyFournisseur {
		return "/fournisseurs"
	}
	return "/clients"
}

func orderBase(kind core.OrderKind) string {
	if kind == core.OrderFournisseur {
		return "/commandesfournisseurs"
	}
	return "/commandesclients"
}

func linesPath(kind core.OrderKind, orderID int) string {
	return orderBase(kind) + "/" + strconv.Itoa(orderID) + "/lignes"
}

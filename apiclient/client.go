// Package apiclient talks to a running quote builder over its REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quotebuilder/api"
	"quotebuilder/services"
)

// Client is a QuoteStore and CatalogLookup backed by the REST API. Calls are
// sequential and never retried.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       api.ErrorBody
}

func (e *StatusError) Error() string {
	msg := e.Body.Error.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode}
		// a body that is not an ErrorBody still yields a usable error
		_ = json.Unmarshal(data, &se.Body)
		return se
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func escape(id string) string {
	return url.PathEscape(id)
}

// ── Quotes ──────────────────────────────────────────────────

func (c *Client) CreateQuote(ctx context.Context, in services.QuoteInput) (string, error) {
	excl := in.Totals.ExclGST
	req := api.QuoteWrite{
		JobID:       in.JobID,
		CostExclGST: &excl,
	}
	if !in.Date.IsZero() {
		req.DateCreated = in.Date.Format("2006-01-02")
	}

	var quote api.Quote
	if err := c.do(ctx, http.MethodPost, "/api/quotes", req, &quote); err != nil {
		return "", err
	}
	return quote.ID, nil
}

func (c *Client) UpdateQuoteTotals(ctx context.Context, quoteID string, totals services.QuoteTotals) error {
	excl := totals.ExclGST
	return c.do(ctx, http.MethodPut, "/api/quotes/"+escape(quoteID), api.QuoteWrite{
		CostExclGST: &excl,
	}, nil)
}

func (c *Client) DeleteQuote(ctx context.Context, quoteID string) error {
	return c.do(ctx, http.MethodDelete, "/api/quotes/"+escape(quoteID), nil, nil)
}

// GetQuote returns a quote with its items and their selections.
func (c *Client) GetQuote(ctx context.Context, quoteID string) (api.Quote, error) {
	var quote api.Quote
	err := c.do(ctx, http.MethodGet, "/api/quotes/"+escape(quoteID), nil, &quote)
	return quote, err
}

// ── Items ───────────────────────────────────────────────────

func (c *Client) CreateItem(ctx context.Context, in services.ItemInput) (string, error) {
	var item api.Item
	err := c.do(ctx, http.MethodPost, "/api/items", api.Item{
		QuoteID:     in.QuoteID,
		ProductID:   in.ProductID,
		SortOrder:   in.SortOrder,
		Reference:   in.Reference,
		Notes:       in.Notes,
		Quantity:    api.NewNumber(in.Quantity),
		Length:      api.NewNumber(in.Length),
		Height:      api.NewNumber(in.Height),
		CostExclGST: in.CostExclGST,
	}, &item)
	if err != nil {
		return "", err
	}
	return item.ID, nil
}

func (c *Client) CreateItemVariable(ctx context.Context, itemID string, sel services.Selection) error {
	return c.do(ctx, http.MethodPost, "/api/item-variables", api.ItemVariable{
		ItemID:     itemID,
		VariableID: sel.VariableID,
		OptionID:   sel.OptionID,
	}, nil)
}

func (c *Client) ListItemIDs(ctx context.Context, quoteID string) ([]string, error) {
	var items []api.Item
	if err := c.do(ctx, http.MethodGet, "/api/items?quote_id="+url.QueryEscape(quoteID), nil, &items); err != nil {
		return nil, err
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids, nil
}

func (c *Client) DeleteItem(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, "/api/items/"+escape(itemID), nil, nil)
}

// ── Catalogue ───────────────────────────────────────────────

func (c *Client) MeasureTypeOf(ctx context.Context, productID string) (services.MeasureType, error) {
	var product api.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+escape(productID), nil, &product); err != nil {
		if IsNotFound(err) {
			return services.MeasureArea, fmt.Errorf("product %s: %w", productID, services.ErrUnknownProduct)
		}
		return services.MeasureArea, err
	}
	return services.MeasureTypeFromCode(product.MeasureTypeCode), nil
}

func (c *Client) OptionCosts(ctx context.Context, optionIDs []string) (map[string]services.OptionDetail, error) {
	var costs []api.OptionCost
	if err := c.do(ctx, http.MethodPost, "/api/variable-options/costs", api.OptionCostsRequest{OptionIDs: optionIDs}, &costs); err != nil {
		return nil, err
	}
	out := make(map[string]services.OptionDetail, len(costs))
	for _, oc := range costs {
		out[oc.OptionID] = services.OptionDetail{
			OptionCost: services.OptionCost{
				OptionID:       oc.OptionID,
				BaseCost:       oc.BaseCost,
				MultiplierCost: oc.MultiplierCost,
			},
			VariableID: oc.VariableID,
			ProductID:  oc.ProductID,
		}
	}
	return out, nil
}

// ── Pricing ─────────────────────────────────────────────────

// Price asks the server to price drafts without saving them.
func (c *Client) Price(ctx context.Context, items []api.ItemDraft) (api.PriceResponse, error) {
	var resp api.PriceResponse
	err := c.do(ctx, http.MethodPost, "/api/quotes/price", api.PriceRequest{Items: items}, &resp)
	return resp, err
}

var (
	_ services.QuoteStore    = (*Client)(nil)
	_ services.CatalogLookup = (*Client)(nil)
)

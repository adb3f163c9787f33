// Package api holds the JSON bodies exchanged between the quote builder's
// REST handlers and its HTTP client.
package api

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"

	"quotebuilder/services"
)

// Error types carried in ErrorBody.
const (
	ErrorValidation = "validation"
	ErrorNotFound   = "not_found"
	ErrorInternal   = "internal"
)

type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Number is a lenient measurement: it accepts a JSON number, a numeric
// string or null. Malformed and negative values decode to zero.
type Number struct {
	decimal.Decimal
}

func NewNumber(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		n.Decimal = decimal.Zero
		return nil
	}
	n.Decimal = services.ParseMeasurement(strings.Trim(string(b), `"`))
	return nil
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type MeasureType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code int    `json:"code"`
}

type Option struct {
	ID             string          `json:"id"`
	VariableID     string          `json:"product_variable_id"`
	Name           string          `json:"name"`
	BaseCost       decimal.Decimal `json:"base_cost"`
	MultiplierCost decimal.Decimal `json:"multiplier_cost"`
}

type Variable struct {
	ID           string   `json:"id"`
	ProductID    string   `json:"product_id"`
	Name         string   `json:"name"`
	DataType     string   `json:"data_type"`
	DisplayOrder int      `json:"display_order"`
	Options      []Option `json:"options"`
}

type Product struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	CategoryID      string     `json:"category_id"`
	MeasureTypeID   string     `json:"measure_type_id"`
	MeasureTypeCode int        `json:"measure_type_code"`
	Variables       []Variable `json:"variables,omitempty"`
}

type OptionCostsRequest struct {
	OptionIDs []string `json:"option_ids"`
}

type OptionCost struct {
	OptionID       string          `json:"variable_option_id"`
	VariableID     string          `json:"product_variable_id"`
	ProductID      string          `json:"product_id"`
	BaseCost       decimal.Decimal `json:"base_cost"`
	MultiplierCost decimal.Decimal `json:"multiplier_cost"`
}

type Job struct {
	ID            string `json:"id"`
	JobNumber     int    `json:"job_number"`
	Reference     string `json:"reference"`
	ClientName    string `json:"client_name"`
	ProjectName   string `json:"project_name"`
	ApprovedQuote string `json:"approved_quote"`
}

type ApproveRequest struct {
	QuoteID string `json:"quote_id"`
}

type NextQuoteNumber struct {
	QuoteNumber string `json:"quote_number"`
}

type Quote struct {
	ID          string          `json:"id"`
	JobID       string          `json:"job"`
	QuoteNumber string          `json:"quote_number"`
	DateCreated string          `json:"date_created"`
	CostExclGST decimal.Decimal `json:"cost_excl_gst"`
	CostInclGST decimal.Decimal `json:"cost_incl_gst"`
	Items       []Item          `json:"items,omitempty"`
}

// QuoteWrite is the body of POST and PUT /api/quotes. On PUT only the
// fields that are set are changed. The incl. GST total is always derived
// from CostExclGST.
type QuoteWrite struct {
	JobID       string           `json:"job,omitempty"`
	QuoteNumber string           `json:"quote_number,omitempty"`
	DateCreated string           `json:"date_created,omitempty"`
	CostExclGST *decimal.Decimal `json:"cost_excl_gst,omitempty"`
}

type Item struct {
	ID          string               `json:"id,omitempty"`
	QuoteID     string               `json:"quote"`
	ProductID   string               `json:"product"`
	SortOrder   int                  `json:"sort_order"`
	Reference   string               `json:"reference"`
	Notes       string               `json:"notes"`
	Quantity    Number               `json:"quantity"`
	Length      Number               `json:"length"`
	Height      Number               `json:"height"`
	CostExclGST decimal.Decimal      `json:"cost_excl_gst"`
	CostInclGST decimal.Decimal      `json:"cost_incl_gst"`
	Selections  []services.Selection `json:"selections,omitempty"`
}

type ItemVariable struct {
	ID         string `json:"id,omitempty"`
	ItemID     string `json:"item"`
	VariableID string `json:"product_variable"`
	OptionID   string `json:"variable_option"`
}

// ItemDraft is one item as entered in the quote builder, before pricing.
type ItemDraft struct {
	ProductID         string               `json:"product_id"`
	Reference         string               `json:"reference"`
	Notes             string               `json:"notes"`
	Quantity          Number               `json:"quantity"`
	Length            Number               `json:"length"`
	Height            Number               `json:"height"`
	Selections        []services.Selection `json:"selections"`
	ManualCostExclGST *Number              `json:"manual_cost_excl_gst,omitempty"`
}

// Draft converts the wire item into the pricing engine's input.
func (d ItemDraft) Draft() services.ItemDraft {
	out := services.ItemDraft{
		ProductID: d.ProductID,
		Reference: d.Reference,
		Notes:     d.Notes,
		Measurements: services.Measurements{
			Quantity: d.Quantity.Decimal,
			Length:   d.Length.Decimal,
			Height:   d.Height.Decimal,
		},
		Selections: d.Selections,
	}
	if d.ManualCostExclGST != nil {
		manual := d.ManualCostExclGST.Decimal
		out.ManualCostExclGST = &manual
	}
	return out
}

func Drafts(items []ItemDraft) []services.ItemDraft {
	out := make([]services.ItemDraft, len(items))
	for i, it := range items {
		out[i] = it.Draft()
	}
	return out
}

type PriceRequest struct {
	Items []ItemDraft `json:"items"`
}

type PricedItem struct {
	ProductID   string          `json:"product_id"`
	MeasureType string          `json:"measure_type"`
	CostExclGST decimal.Decimal `json:"cost_excl_gst"`
	CostInclGST decimal.Decimal `json:"cost_incl_gst"`
}

type Totals struct {
	CostExclGST decimal.Decimal `json:"cost_excl_gst"`
	GST         decimal.Decimal `json:"gst"`
	CostInclGST decimal.Decimal `json:"cost_incl_gst"`
}

func NewTotals(t services.QuoteTotals) Totals {
	return Totals{CostExclGST: t.ExclGST, GST: t.GST, CostInclGST: t.InclGST}
}

type PriceResponse struct {
	Items  []PricedItem `json:"items"`
	Totals Totals       `json:"totals"`
}

func NewPriceResponse(items []services.PricedItem, totals services.QuoteTotals) PriceResponse {
	out := PriceResponse{Items: make([]PricedItem, len(items)), Totals: NewTotals(totals)}
	for i, it := range items {
		out.Items[i] = PricedItem{
			ProductID:   it.ProductID,
			MeasureType: it.MeasureType.String(),
			CostExclGST: it.CostExclGST,
			CostInclGST: it.CostInclGST,
		}
	}
	return out
}

// SaveRequest creates a quote for JobID when QuoteID is empty, otherwise
// replaces the items of QuoteID.
type SaveRequest struct {
	JobID       string      `json:"job_id"`
	QuoteID     string      `json:"quote_id"`
	DateCreated string      `json:"date_created"`
	Items       []ItemDraft `json:"items"`
}

type SaveResponse struct {
	QuoteID     string   `json:"quote_id"`
	QuoteNumber string   `json:"quote_number"`
	Created     bool     `json:"created"`
	ItemIDs     []string `json:"item_ids"`
	Removed     int      `json:"removed"`
	Totals      Totals   `json:"totals"`
}

package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"quotebuilder/api"
	"quotebuilder/services"
)

const (
	errBadDate   = "Invalid date_created, expected YYYY-MM-DD"
	errMoveQuote = "A quote cannot be moved to another job"
)

// parseAPIDate accepts "2006-01-02" or RFC 3339. Empty input and anything
// else is reported as not ok.
func parseAPIDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{apiDateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// loadItemsWithSelections returns the quote's items in sort order, each with
// its selected options.
func loadItemsWithSelections(app core.App, quoteID string) ([]api.Item, error) {
	items, err := listRecords(app, "items", "sort_order ASC", dbx.HashExp{"quote": quoteID})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []api.Item{}, nil
	}

	itemIDs := make([]any, len(items))
	for i, it := range items {
		itemIDs[i] = it.Id
	}
	selections, err := app.FindAllRecords("item_variables", dbx.In("item", itemIDs...))
	if err != nil {
		return nil, err
	}
	byItem := make(map[string][]services.Selection)
	for _, s := range selections {
		itemID := s.GetString("item")
		byItem[itemID] = append(byItem[itemID], services.Selection{
			VariableID: s.GetString("variable"),
			OptionID:   s.GetString("option"),
		})
	}

	out := make([]api.Item, len(items))
	for i, it := range items {
		out[i] = itemJSON(it)
		out[i].Selections = byItem[it.Id]
	}
	return out, nil
}

// HandleQuoteList handles GET /api/quotes, optionally filtered by ?job_id=.
func HandleQuoteList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var where []dbx.Expression
		if jobID := e.Request.URL.Query().Get("job_id"); jobID != "" {
			where = append(where, dbx.HashExp{"job": jobID})
		}
		records, err := listRecords(app, "quotes", "created DESC", where...)
		if err != nil {
			return RespondError(e, "quote_list", err)
		}
		out := make([]api.Quote, len(records))
		for i, r := range records {
			out[i] = quoteJSON(r)
		}
		return e.JSON(http.StatusOK, out)
	}
}

// HandleQuoteGet handles GET /api/quotes/{id}, including items and their
// selected options.
func HandleQuoteGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quote, err := app.FindRecordById("quotes", e.Request.PathValue("id"))
		if err != nil {
			return NotFound(e, "Quote not found")
		}
		items, err := loadItemsWithSelections(app, quote.Id)
		if err != nil {
			return RespondError(e, "quote_get", err)
		}
		out := quoteJSON(quote)
		out.Items = items
		return e.JSON(http.StatusOK, out)
	}
}

// costsFromExcl rounds a client-supplied excl. figure and derives incl. from
// it. Negative and out of range amounts become zero.
func costsFromExcl(excl decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	e := services.RoundMoney(services.ClampAmount(excl))
	return e, services.ApplyGST(e)
}

// applyQuoteCosts sets the quote's totals when excl is given.
func applyQuoteCosts(rec *core.Record, excl *decimal.Decimal) {
	if excl == nil {
		return
	}
	e, i := costsFromExcl(*excl)
	rec.Set("cost_excl_gst", e.InexactFloat64())
	rec.Set("cost_incl_gst", i.InexactFloat64())
}

// HandleQuoteCreate handles POST /api/quotes. Without a quote_number the next
// number for the job is generated; without a date today is used.
func HandleQuoteCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req api.QuoteWrite
		if err := e.BindBody(&req); err != nil {
			return BadRequest(e, "Invalid request body")
		}
		if req.JobID == "" {
			return BadRequest(e, services.ErrMissingJob.Error())
		}
		if _, err := app.FindRecordById("jobs", req.JobID); err != nil {
			return NotFound(e, "Job not found")
		}

		number := req.QuoteNumber
		if number == "" {
			n, err := services.GenerateQuoteNumber(app, req.JobID)
			if err != nil {
				return RespondError(e, "quote_create", err)
			}
			number = n
		}
		date, ok := parseAPIDate(req.DateCreated)
		if !ok {
			if req.DateCreated != "" {
				return BadRequest(e, errBadDate)
			}
			date = time.Now()
		}

		col, err := app.FindCachedCollectionByNameOrId("quotes")
		if err != nil {
			return RespondError(e, "quote_create", err)
		}
		rec := core.NewRecord(col)
		rec.Set("job", req.JobID)
		rec.Set("quote_number", number)
		rec.Set("date_created", date)
		zero := decimal.Zero
		if req.CostExclGST == nil {
			req.CostExclGST = &zero
		}
		applyQuoteCosts(rec, req.CostExclGST)

		if err := app.SaveWithContext(e.Request.Context(), rec); err != nil {
			return RespondError(e, "quote_create", err)
		}
		return e.JSON(http.StatusCreated, quoteJSON(rec))
	}
}

// HandleQuoteUpdate handles PUT /api/quotes/{id}. Only the fields present in
// the body change; the job of a quote cannot be moved.
func HandleQuoteUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("quotes", e.Request.PathValue("id"))
		if err != nil {
			return NotFound(e, "Quote not found")
		}

		var req api.QuoteWrite
		if err := e.BindBody(&req); err != nil {
			return BadRequest(e, "Invalid request body")
		}
		if req.JobID != "" && req.JobID != rec.GetString("job") {
			return BadRequest(e, errMoveQuote)
		}

		if req.QuoteNumber != "" {
			rec.Set("quote_number", req.QuoteNumber)
		}
		if req.DateCreated != "" {
			date, ok := parseAPIDate(req.DateCreated)
			if !ok {
				return BadRequest(e, errBadDate)
			}
			rec.Set("date_created", date)
		}
		applyQuoteCosts(rec, req.CostExclGST)

		if err := app.SaveWithContext(e.Request.Context(), rec); err != nil {
			return RespondError(e, "quote_update", err)
		}
		return e.JSON(http.StatusOK, quoteJSON(rec))
	}
}

// HandleQuoteDelete handles DELETE /api/quotes/{id}. Items and their
// selections are removed by the cascade on their relations.
func HandleQuoteDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("quotes", e.Request.PathValue("id"))
		if err != nil {
			return NotFound(e, "Quote not found")
		}
		if err := app.DeleteWithContext(e.Request.Context(), rec); err != nil {
			return RespondError(e, "quote_delete", err)
		}
		return e.NoContent(http.StatusNoContent)
	}
}

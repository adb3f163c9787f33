package handlers

import (
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/api"
	"quotebuilder/metrics"
	"quotebuilder/services"
)

// HandleQuotePrice handles POST /api/quotes/price. It prices the drafts with
// the stored catalogue and writes nothing.
func HandleQuotePrice(app *pocketbase.PocketBase, m *metrics.Metrics) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req api.PriceRequest
		if err := e.BindBody(&req); err != nil {
			return BadRequest(e, "Invalid request body")
		}

		items, totals, err := services.PriceItems(e.Request.Context(), services.NewRecordCatalog(app), api.Drafts(req.Items))
		if err != nil {
			return RespondError(e, "quote_price", err)
		}
		m.RecordItemsPriced(len(items))
		return e.JSON(http.StatusOK, api.NewPriceResponse(items, totals))
	}
}

// HandleQuoteSave handles POST /api/quotes/save. Drafts are validated and
// priced before anything is written, then the quote and its items are saved
// in one transaction: either the whole new item set replaces the old one or
// nothing changes.
func HandleQuoteSave(app *pocketbase.PocketBase, m *metrics.Metrics) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req api.SaveRequest
		if err := e.BindBody(&req); err != nil {
			return BadRequest(e, "Invalid request body")
		}
		if req.QuoteID == "" && req.JobID == "" {
			m.RecordSave(metrics.SaveInvalid)
			return BadRequest(e, services.ErrMissingJob.Error())
		}
		if req.QuoteID != "" {
			quote, err := app.FindRecordById("quotes", req.QuoteID)
			if err != nil {
				return NotFound(e, "Quote not found")
			}
			if req.JobID != "" && req.JobID != quote.GetString("job") {
				m.RecordSave(metrics.SaveInvalid)
				return BadRequest(e, errMoveQuote)
			}
		} else if _, err := app.FindRecordById("jobs", req.JobID); err != nil {
			return NotFound(e, "Job not found")
		}

		date, ok := parseAPIDate(req.DateCreated)
		if !ok && req.DateCreated != "" {
			m.RecordSave(metrics.SaveInvalid)
			return BadRequest(e, errBadDate)
		}
		ctx := e.Request.Context()
		defer m.TrackDBOperation("save_quote")(time.Now())

		var result services.SaveResult
		var number string
		err := app.RunInTransaction(func(txApp core.App) error {
			items, _, err := services.PriceItems(ctx, services.NewRecordCatalog(txApp), api.Drafts(req.Items))
			if err != nil {
				return err
			}
			result, err = services.SaveQuote(ctx, services.NewRecordStore(txApp), services.SaveQuoteRequest{
				JobID:   req.JobID,
				QuoteID: req.QuoteID,
				Date:    date,
				Items:   items,
			})
			if err != nil {
				return err
			}
			quote, err := txApp.FindRecordById("quotes", result.QuoteID)
			if err != nil {
				return err
			}
			number = quote.GetString("quote_number")
			return nil
		})
		if err != nil {
			if services.IsValidationError(err) {
				m.RecordSave(metrics.SaveInvalid)
			} else {
				m.RecordSave(metrics.SaveFailed)
			}
			return RespondError(e, "quote_save", err)
		}

		if result.Created {
			m.RecordSave(metrics.SaveCreated)
			SetToast(e, "success", "Quote "+number+" created")
		} else {
			m.RecordSave(metrics.SaveUpdated)
			SetToast(e, "success", "Quote "+number+" saved")
		}
		m.RecordItemsPriced(len(result.ItemIDs))

		status := http.StatusOK
		if result.Created {
			status = http.StatusCreated
		}
		return e.JSON(status, api.SaveResponse{
			QuoteID:     result.QuoteID,
			QuoteNumber: number,
			Created:     result.Created,
			ItemIDs:     result.ItemIDs,
			Removed:     result.Removed,
			Totals:      api.NewTotals(result.Totals),
		})
	}
}

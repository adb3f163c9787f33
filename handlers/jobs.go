package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/api"
	"quotebuilder/services"
)

// HandleJobList handles GET /api/jobs, newest job number first.
func HandleJobList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := listRecords(app, "jobs", "job_number DESC, created DESC")
		if err != nil {
			return RespondError(e, "job_list", err)
		}
		out := make([]api.Job, len(records))
		for i, r := range records {
			out[i] = jobJSON(r)
		}
		return e.JSON(http.StatusOK, out)
	}
}

// HandleJobGet handles GET /api/jobs/{id}.
func HandleJobGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		job, err := app.FindRecordById("jobs", e.Request.PathValue("id"))
		if err != nil {
			return NotFound(e, "Job not found")
		}
		return e.JSON(http.StatusOK, jobJSON(job))
	}
}

// HandleJobApprove handles POST /api/jobs/{id}/approve with {"quote_id"}.
// The quote must belong to the job; an empty quote_id clears the approval.
func HandleJobApprove(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		job, err := app.FindRecordById("jobs", e.Request.PathValue("id"))
		if err != nil {
			return NotFound(e, "Job not found")
		}

		var req api.ApproveRequest
		if err := e.BindBody(&req); err != nil {
			return BadRequest(e, "Invalid request body")
		}

		if req.QuoteID != "" {
			quote, err := app.FindRecordById("quotes", req.QuoteID)
			if err != nil {
				return NotFound(e, "Quote not found")
			}
			if quote.GetString("job") != job.Id {
				return BadRequest(e, "Quote belongs to a different job")
			}
		}

		job.Set("approved_quote", req.QuoteID)
		if err := app.SaveWithContext(e.Request.Context(), job); err != nil {
			return RespondError(e, "job_approve", err)
		}

		if req.QuoteID == "" {
			SetToast(e, "success", "Approval cleared")
		} else {
			SetToast(e, "success", "Quote approved")
		}
		return e.JSON(http.StatusOK, jobJSON(job))
	}
}

// HandleNextQuoteNumber handles GET /api/jobs/{id}/next-quote-number. The
// number is a preview; the save assigns the number actually used.
func HandleNextQuoteNumber(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		jobID := e.Request.PathValue("id")
		if _, err := app.FindRecordById("jobs", jobID); err != nil {
			return NotFound(e, "Job not found")
		}
		number, err := services.GenerateQuoteNumber(app, jobID)
		if err != nil {
			return RespondError(e, "next_quote_number", err)
		}
		return e.JSON(http.StatusOK, api.NextQuoteNumber{QuoteNumber: number})
	}
}

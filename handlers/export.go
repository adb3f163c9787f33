package handlers

import (
	"fmt"
	"log"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/config"
	"quotebuilder/metrics"
	"quotebuilder/services"
	"quotebuilder/templates"
)

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

func exportFilename(data services.ExportData, ext string) string {
	number := data.QuoteNumber
	if number == "" {
		number = "draft"
	}
	return fmt.Sprintf("Quote_%s.%s", sanitizeFilename(number), ext)
}

// loadExportData resolves the quote for an export handler, writing the error
// response itself when it fails.
func loadExportData(app *pocketbase.PocketBase, cfg *config.Config, e *core.RequestEvent, component string) (services.ExportData, bool, error) {
	quoteID := e.Request.PathValue("id")
	if quoteID == "" {
		return services.ExportData{}, false, BadRequest(e, "Missing quote ID")
	}
	data, err := services.BuildExportData(app, quoteID, cfg.Company, cfg.QuoteValidDays)
	if err != nil {
		log.Printf("%s: %v", component, err)
		return services.ExportData{}, false, NotFound(e, "Quote not found")
	}
	return data, true, nil
}

// HandleQuoteExportExcel handles GET /api/quotes/{id}/export/excel.
func HandleQuoteExportExcel(app *pocketbase.PocketBase, cfg *config.Config, m *metrics.Metrics) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, ok, err := loadExportData(app, cfg, e, "export_excel")
		if !ok {
			return err
		}

		xlsxBytes, err := services.GenerateExcel(data)
		if err != nil {
			return RespondError(e, "export_excel", err)
		}
		m.RecordExport("excel")

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(data, "xlsx")))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleQuoteExportPDF handles GET /api/quotes/{id}/export/pdf.
func HandleQuoteExportPDF(app *pocketbase.PocketBase, cfg *config.Config, m *metrics.Metrics) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, ok, err := loadExportData(app, cfg, e, "export_pdf")
		if !ok {
			return err
		}

		pdfBytes, err := services.GeneratePDF(data)
		if err != nil {
			return RespondError(e, "export_pdf", err)
		}
		m.RecordExport("pdf")

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(data, "pdf")))
		e.Response.Write(pdfBytes)
		return nil
	}
}

// HandleQuotePrint handles GET /quotes/{id}/print, a printable HTML page.
func HandleQuotePrint(app *pocketbase.PocketBase, cfg *config.Config, m *metrics.Metrics) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, ok, err := loadExportData(app, cfg, e, "quote_print")
		if !ok {
			return err
		}
		m.RecordExport("print")

		e.Response.Header().Set("Content-Type", "text/html; charset=utf-8")
		return templates.QuotePrint(data).Render(e.Request.Context(), e.Response)
	}
}

package handlers

import (
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"

	"quotebuilder/config"
	"quotebuilder/metrics"
)

// RegisterRoutes binds the middleware and every quote builder route to r.
func RegisterRoutes(r *router.Router[*core.RequestEvent], app *pocketbase.PocketBase, cfg *config.Config, m *metrics.Metrics) {
	r.BindFunc(RequestIDMiddleware())
	r.BindFunc(MetricsMiddleware(m))

	r.GET("/metrics", apis.WrapStdHandler(m.Handler()))

	// ── Catalogue ────────────────────────────────────────────
	r.GET("/api/categories", HandleCategoryList(app))
	r.GET("/api/measure-types", HandleMeasureTypeList(app))
	r.GET("/api/products", HandleProductList(app))
	r.GET("/api/products/{id}", HandleProductGet(app))
	r.GET("/api/products/{id}/variables", HandleProductVariables(app))
	r.POST("/api/variable-options/costs", HandleOptionCosts(app))

	// ── Jobs ─────────────────────────────────────────────────
	r.GET("/api/jobs", HandleJobList(app))
	r.GET("/api/jobs/{id}", HandleJobGet(app))
	r.POST("/api/jobs/{id}/approve", HandleJobApprove(app))
	r.GET("/api/jobs/{id}/next-quote-number", HandleNextQuoteNumber(app))

	// ── Quotes ───────────────────────────────────────────────
	// price and save must be registered before the {id} routes they share a prefix with
	r.POST("/api/quotes/price", HandleQuotePrice(app, m))
	r.POST("/api/quotes/save", HandleQuoteSave(app, m))
	r.GET("/api/quotes", HandleQuoteList(app))
	r.POST("/api/quotes", HandleQuoteCreate(app))
	r.GET("/api/quotes/{id}", HandleQuoteGet(app))
	r.PUT("/api/quotes/{id}", HandleQuoteUpdate(app))
	r.DELETE("/api/quotes/{id}", HandleQuoteDelete(app))

	// ── Items ────────────────────────────────────────────────
	r.GET("/api/items", HandleItemList(app))
	r.POST("/api/items", HandleItemCreate(app))
	r.DELETE("/api/items/{id}", HandleItemDelete(app))
	r.GET("/api/item-variables", HandleItemVariableList(app))
	r.POST("/api/item-variables", HandleItemVariableCreate(app))

	// ── Export ───────────────────────────────────────────────
	r.GET("/api/quotes/{id}/export/excel", HandleQuoteExportExcel(app, cfg, m))
	r.GET("/api/quotes/{id}/export/pdf", HandleQuoteExportPDF(app, cfg, m))
	r.GET("/quotes/{id}/print", HandleQuotePrint(app, cfg, m))
}

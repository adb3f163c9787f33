// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

func save(t *testing.T, app core.App, collection string, fields map[string]any) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		t.Fatalf("failed to find %s collection: %v", collection, err)
	}

	record := core.NewRecord(col)
	for k, v := range fields {
		record.Set(k, v)
	}
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test %s record: %v", collection, err)
	}
	return record
}

// CreateTestMeasureType creates a measure type with the given code.
func CreateTestMeasureType(t *testing.T, app core.App, name string, code int) *core.Record {
	t.Helper()
	return save(t, app, "measure_types", map[string]any{"name": name, "code": code})
}

// CreateTestCategory creates a product category.
func CreateTestCategory(t *testing.T, app core.App, name string) *core.Record {
	t.Helper()
	return save(t, app, "product_categories", map[string]any{"name": name})
}

// CreateTestProduct creates a product in a new category. measureTypeID may be
// empty for a product without a measure type.
func CreateTestProduct(t *testing.T, app core.App, name, measureTypeID string) *core.Record {
	t.Helper()
	category := CreateTestCategory(t, app, name+" category")
	return save(t, app, "products", map[string]any{
		"name":         name,
		"category":     category.Id,
		"measure_type": measureTypeID,
	})
}

// CreateTestVariable creates a product variable.
func CreateTestVariable(t *testing.T, app core.App, productID, name string, displayOrder int) *core.Record {
	t.Helper()
	return save(t, app, "product_variables", map[string]any{
		"product":       productID,
		"name":          name,
		"data_type":     "select",
		"display_order": displayOrder,
	})
}

// CreateTestOption creates a variable option with the given costs.
func CreateTestOption(t *testing.T, app core.App, variableID, name string, baseCost, multiplierCost float64) *core.Record {
	t.Helper()
	return save(t, app, "variable_options", map[string]any{
		"variable":        variableID,
		"name":            name,
		"base_cost":       baseCost,
		"multiplier_cost": multiplierCost,
	})
}

// CreateTestJob creates a job with the given number and reference.
func CreateTestJob(t *testing.T, app core.App, jobNumber int, reference string) *core.Record {
	t.Helper()
	return save(t, app, "jobs", map[string]any{
		"job_number":   jobNumber,
		"reference":    reference,
		"client_name":  "Test Client",
		"project_name": "Test Project",
	})
}

// CreateTestQuote creates a quote with stored totals.
func CreateTestQuote(t *testing.T, app core.App, jobID, quoteNumber string, exclGST, inclGST float64) *core.Record {
	t.Helper()
	return save(t, app, "quotes", map[string]any{
		"job":           jobID,
		"quote_number":  quoteNumber,
		"date_created":  "2026-03-01 00:00:00.000Z",
		"cost_excl_gst": exclGST,
		"cost_incl_gst": inclGST,
	})
}

// CreateTestItem creates a quote item.
func CreateTestItem(t *testing.T, app core.App, quoteID, productID string, sortOrder int, quantity, length, height, exclGST float64) *core.Record {
	t.Helper()
	return save(t, app, "items", map[string]any{
		"quote":         quoteID,
		"product":       productID,
		"sort_order":    sortOrder,
		"reference":     "",
		"quantity":      quantity,
		"length":        length,
		"height":        height,
		"cost_excl_gst": exclGST,
		"cost_incl_gst": exclGST * 1.1,
	})
}

// CreateTestItemVariable records a selected option on an item.
func CreateTestItemVariable(t *testing.T, app core.App, itemID, variableID, optionID string) *core.Record {
	t.Helper()
	return save(t, app, "item_variables", map[string]any{
		"item":     itemID,
		"variable": variableID,
		"option":   optionID,
	})
}

// Catalog is a small priced catalogue for tests: one Area product with two
// variables and two options each.
type Catalog struct {
	Area    *core.Record
	Product *core.Record
	Colour  *core.Record
	Finish  *core.Record
	Red     *core.Record // base 10, multiplier 2
	Blue    *core.Record // base 5, multiplier 1
	Gloss   *core.Record // base 3.25, multiplier 0
	Matte   *core.Record // base 0, multiplier 4.5
}

// CreateTestCatalog creates the Catalog records.
func CreateTestCatalog(t *testing.T, app core.App) Catalog {
	t.Helper()

	var c Catalog
	c.Area = CreateTestMeasureType(t, app, "Area", 1)
	c.Product = CreateTestProduct(t, app, "Panel", c.Area.Id)
	c.Colour = CreateTestVariable(t, app, c.Product.Id, "Colour", 1)
	c.Finish = CreateTestVariable(t, app, c.Product.Id, "Finish", 2)
	c.Red = CreateTestOption(t, app, c.Colour.Id, "Red", 10, 2)
	c.Blue = CreateTestOption(t, app, c.Colour.Id, "Blue", 5, 1)
	c.Gloss = CreateTestOption(t, app, c.Finish.Id, "Gloss", 3.25, 0)
	c.Matte = CreateTestOption(t, app, c.Finish.Id, "Matte", 0, 4.5)
	return c
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

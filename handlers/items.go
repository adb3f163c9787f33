package handlers

import (
	"fmt"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/api"
	"quotebuilder/services"
)

// nextSortOrder returns one past the highest sort_order of the quote's items.
func nextSortOrder(app core.App, quoteID string) int {
	existing, err := app.FindRecordsByFilter(
		"items",
		"quote = {:quoteId}",
		"-sort_order",
		1,
		0,
		dbx.Params{"quoteId": quoteID},
	)
	if err != nil || len(existing) == 0 {
		return 1
	}
	return existing[0].GetInt("sort_order") + 1
}

// HandleItemList handles GET /api/items?quote_id=.
func HandleItemList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.URL.Query().Get("quote_id")
		if quoteID == "" {
			return BadRequest(e, "quote_id is required")
		}
		items, err := loadItemsWithSelections(app, quoteID)
		if err != nil {
			return RespondError(e, "item_list", err)
		}
		return e.JSON(http.StatusOK, items)
	}
}

// HandleItemCreate handles POST /api/items. The excl. cost is stored rounded
// and incl. is always derived from it; an incl. figure in the body is
// ignored. Selections in the body are ignored too; they are posted to
// /api/item-variables.
func HandleItemCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req api.Item
		if err := e.BindBody(&req); err != nil {
			return BadRequest(e, "Invalid request body")
		}
		if req.ProductID == "" {
			return BadRequest(e, services.ErrMissingProduct.Error())
		}
		if _, err := app.FindRecordById("quotes", req.QuoteID); err != nil {
			return NotFound(e, "Quote not found")
		}
		if _, err := app.FindRecordById("products", req.ProductID); err != nil {
			return BadRequest(e, services.ErrUnknownProduct.Error())
		}

		excl, incl := costsFromExcl(req.CostExclGST)
		sortOrder := req.SortOrder
		if sortOrder <= 0 {
			sortOrder = nextSortOrder(app, req.QuoteID)
		}

		col, err := app.FindCachedCollectionByNameOrId("items")
		if err != nil {
			return RespondError(e, "item_create", err)
		}
		rec := core.NewRecord(col)
		rec.Set("quote", req.QuoteID)
		rec.Set("product", req.ProductID)
		rec.Set("sort_order", sortOrder)
		rec.Set("reference", req.Reference)
		rec.Set("notes", req.Notes)
		rec.Set("quantity", req.Quantity.InexactFloat64())
		rec.Set("length", req.Length.InexactFloat64())
		rec.Set("height", req.Height.InexactFloat64())
		rec.Set("cost_excl_gst", excl.InexactFloat64())
		rec.Set("cost_incl_gst", incl.InexactFloat64())

		if err := app.SaveWithContext(e.Request.Context(), rec); err != nil {
			return RespondError(e, "item_create", err)
		}
		return e.JSON(http.StatusCreated, itemJSON(rec))
	}
}

// HandleItemDelete handles DELETE /api/items/{id}. The item's selections go
// with it.
func HandleItemDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rec, err := app.FindRecordById("items", e.Request.PathValue("id"))
		if err != nil {
			return NotFound(e, "Item not found")
		}
		if err := app.DeleteWithContext(e.Request.Context(), rec); err != nil {
			return RespondError(e, "item_delete", err)
		}
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleItemVariableList handles GET /api/item-variables?item_id=.
func HandleItemVariableList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		itemID := e.Request.URL.Query().Get("item_id")
		if itemID == "" {
			return BadRequest(e, "item_id is required")
		}
		records, err := listRecords(app, "item_variables", "created ASC", dbx.HashExp{"item": itemID})
		if err != nil {
			return RespondError(e, "item_variable_list", err)
		}
		out := make([]api.ItemVariable, len(records))
		for i, r := range records {
			out[i] = itemVariableJSON(r)
		}
		return e.JSON(http.StatusOK, out)
	}
}

// checkSelection verifies that the option belongs to the variable, the
// variable belongs to the item's product, and the item has no option for
// that variable yet.
func checkSelection(app core.App, item *core.Record, sel services.Selection) error {
	option, err := app.FindRecordById("variable_options", sel.OptionID)
	if err != nil {
		return fmt.Errorf("option %s: %w", sel.OptionID, services.ErrUnknownOption)
	}
	if option.GetString("variable") != sel.VariableID {
		return fmt.Errorf("option %s: %w", sel.OptionID, services.ErrOptionMismatch)
	}
	variable, err := app.FindRecordById("product_variables", sel.VariableID)
	if err != nil || variable.GetString("product") != item.GetString("product") {
		return fmt.Errorf("variable %s: %w", sel.VariableID, services.ErrOptionMismatch)
	}

	existing, err := app.FindRecordsByFilter(
		"item_variables",
		"item = {:item} && variable = {:variable}",
		"",
		1,
		0,
		dbx.Params{"item": item.Id, "variable": sel.VariableID},
	)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return fmt.Errorf("variable %s: %w", sel.VariableID, services.ErrDuplicateVariable)
	}
	return nil
}

// HandleItemVariableCreate handles POST /api/item-variables.
func HandleItemVariableCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req api.ItemVariable
		if err := e.BindBody(&req); err != nil {
			return BadRequest(e, "Invalid request body")
		}
		item, err := app.FindRecordById("items", req.ItemID)
		if err != nil {
			return NotFound(e, "Item not found")
		}
		sel := services.Selection{VariableID: req.VariableID, OptionID: req.OptionID}
		if err := checkSelection(app, item, sel); err != nil {
			return RespondError(e, "item_variable_create", err)
		}

		col, err := app.FindCachedCollectionByNameOrId("item_variables")
		if err != nil {
			return RespondError(e, "item_variable_create", err)
		}
		rec := core.NewRecord(col)
		rec.Set("item", item.Id)
		rec.Set("variable", sel.VariableID)
		rec.Set("option", sel.OptionID)
		if err := app.SaveWithContext(e.Request.Context(), rec); err != nil {
			return RespondError(e, "item_variable_create", err)
		}
		return e.JSON(http.StatusCreated, itemVariableJSON(rec))
	}
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/api"
	"quotebuilder/services"
)

// listRecords returns all records of a collection ordered by orderBy, a
// comma separated list such as "display_order ASC, name ASC".
func listRecords(app core.App, collection, orderBy string, where ...dbx.Expression) ([]*core.Record, error) {
	q := app.RecordQuery(collection)
	for _, col := range strings.Split(orderBy, ",") {
		q = q.AndOrderBy(strings.TrimSpace(col))
	}
	for _, w := range where {
		q = q.AndWhere(w)
	}
	var records []*core.Record
	if err := q.All(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// HandleCategoryList handles GET /api/categories.
func HandleCategoryList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := listRecords(app, "product_categories", "name ASC")
		if err != nil {
			return RespondError(e, "category_list", err)
		}
		out := make([]api.Category, len(records))
		for i, r := range records {
			out[i] = categoryJSON(r)
		}
		return e.JSON(http.StatusOK, out)
	}
}

// HandleMeasureTypeList handles GET /api/measure-types.
func HandleMeasureTypeList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := listRecords(app, "measure_types", "code ASC")
		if err != nil {
			return RespondError(e, "measure_type_list", err)
		}
		out := make([]api.MeasureType, len(records))
		for i, r := range records {
			out[i] = measureTypeJSON(r)
		}
		return e.JSON(http.StatusOK, out)
	}
}

// measureTypeCodes maps measure type IDs to their codes.
func measureTypeCodes(app core.App) (map[string]int, error) {
	records, err := listRecords(app, "measure_types", "code ASC")
	if err != nil {
		return nil, err
	}
	codes := make(map[string]int, len(records))
	for _, r := range records {
		codes[r.Id] = r.GetInt("code")
	}
	return codes, nil
}

// loadVariables returns the variables of the given products, each with its
// options, grouped by product ID in display order.
func loadVariables(app core.App, productIDs ...string) (map[string][]api.Variable, error) {
	ids := make([]any, len(productIDs))
	for i, id := range productIDs {
		ids[i] = id
	}
	variables, err := listRecords(app, "product_variables", "display_order ASC, name ASC", dbx.In("product", ids...))
	if err != nil {
		return nil, err
	}
	if len(variables) == 0 {
		return map[string][]api.Variable{}, nil
	}

	variableIDs := make([]any, len(variables))
	for i, v := range variables {
		variableIDs[i] = v.Id
	}
	options, err := listRecords(app, "variable_options", "name ASC", dbx.In("variable", variableIDs...))
	if err != nil {
		return nil, err
	}
	byVariable := make(map[string][]api.Option)
	for _, o := range options {
		byVariable[o.GetString("variable")] = append(byVariable[o.GetString("variable")], optionJSON(o))
	}

	out := make(map[string][]api.Variable)
	for _, v := range variables {
		pid := v.GetString("product")
		out[pid] = append(out[pid], variableJSON(v, byVariable[v.Id]))
	}
	return out, nil
}

// HandleProductList handles GET /api/products. Each product carries its
// variables and their options so the quote builder can render in one call.
func HandleProductList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var where []dbx.Expression
		if categoryID := e.Request.URL.Query().Get("category_id"); categoryID != "" {
			where = append(where, dbx.HashExp{"category": categoryID})
		}
		products, err := listRecords(app, "products", "name ASC", where...)
		if err != nil {
			return RespondError(e, "product_list", err)
		}
		codes, err := measureTypeCodes(app)
		if err != nil {
			return RespondError(e, "product_list", err)
		}

		ids := make([]string, len(products))
		for i, p := range products {
			ids[i] = p.Id
		}
		variables, err := loadVariables(app, ids...)
		if err != nil {
			return RespondError(e, "product_list", err)
		}

		out := make([]api.Product, len(products))
		for i, p := range products {
			out[i] = productJSON(p, codes)
			out[i].Variables = variables[p.Id]
		}
		return e.JSON(http.StatusOK, out)
	}
}

// HandleProductGet handles GET /api/products/{id}.
func HandleProductGet(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		product, err := app.FindRecordById("products", e.Request.PathValue("id"))
		if err != nil {
			return NotFound(e, "Product not found")
		}
		codes, err := measureTypeCodes(app)
		if err != nil {
			return RespondError(e, "product_get", err)
		}
		variables, err := loadVariables(app, product.Id)
		if err != nil {
			return RespondError(e, "product_get", err)
		}

		out := productJSON(product, codes)
		out.Variables = variables[product.Id]
		return e.JSON(http.StatusOK, out)
	}
}

// HandleProductVariables handles GET /api/products/{id}/variables.
func HandleProductVariables(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		product, err := app.FindRecordById("products", e.Request.PathValue("id"))
		if err != nil {
			return NotFound(e, "Product not found")
		}
		variables, err := loadVariables(app, product.Id)
		if err != nil {
			return RespondError(e, "product_variables", err)
		}
		out := variables[product.Id]
		if out == nil {
			out = []api.Variable{}
		}
		return e.JSON(http.StatusOK, out)
	}
}

// HandleOptionCosts handles POST /api/variable-options/costs. Unknown IDs
// are left out of the response rather than failing the request.
func HandleOptionCosts(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req api.OptionCostsRequest
		if err := e.BindBody(&req); err != nil {
			return BadRequest(e, "Invalid request body")
		}

		details, err := services.NewRecordCatalog(app).OptionCosts(e.Request.Context(), req.OptionIDs)
		if err != nil {
			return RespondError(e, "option_costs", err)
		}

		out := make([]api.OptionCost, 0, len(details))
		for _, id := range req.OptionIDs {
			d, ok := details[id]
			if !ok {
				continue
			}
			out = append(out, api.OptionCost{
				OptionID:       id,
				VariableID:     d.VariableID,
				ProductID:      d.ProductID,
				BaseCost:       d.BaseCost,
				MultiplierCost: d.MultiplierCost,
			})
			// each option once, even if requested twice
			delete(details, id)
		}
		return e.JSON(http.StatusOK, out)
	}
}

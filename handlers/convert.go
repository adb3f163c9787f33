package handlers

import (
	"github.com/pocketbase/pocketbase/core"

	"quotebuilder/api"
	"quotebuilder/services"
)

const apiDateLayout = "2006-01-02"

func categoryJSON(r *core.Record) api.Category {
	return api.Category{ID: r.Id, Name: r.GetString("name")}
}

func measureTypeJSON(r *core.Record) api.MeasureType {
	return api.MeasureType{ID: r.Id, Name: r.GetString("name"), Code: r.GetInt("code")}
}

func optionJSON(r *core.Record) api.Option {
	return api.Option{
		ID:             r.Id,
		VariableID:     r.GetString("variable"),
		Name:           r.GetString("name"),
		BaseCost:       services.MoneyFromFloat(r.GetFloat("base_cost")),
		MultiplierCost: services.MoneyFromFloat(r.GetFloat("multiplier_cost")),
	}
}

func variableJSON(r *core.Record, options []api.Option) api.Variable {
	if options == nil {
		options = []api.Option{}
	}
	return api.Variable{
		ID:           r.Id,
		ProductID:    r.GetString("product"),
		Name:         r.GetString("name"),
		DataType:     r.GetString("data_type"),
		DisplayOrder: r.GetInt("display_order"),
		Options:      options,
	}
}

// productJSON resolves the measure type code from codes, keyed by measure
// type ID. Products without a known measure type report Area.
func productJSON(r *core.Record, codes map[string]int) api.Product {
	mtID := r.GetString("measure_type")
	code, ok := codes[mtID]
	if !ok {
		code = int(services.MeasureArea)
	}
	return api.Product{
		ID:              r.Id,
		Name:            r.GetString("name"),
		CategoryID:      r.GetString("category"),
		MeasureTypeID:   mtID,
		MeasureTypeCode: int(services.MeasureTypeFromCode(code)),
	}
}

func jobJSON(r *core.Record) api.Job {
	return api.Job{
		ID:            r.Id,
		JobNumber:     r.GetInt("job_number"),
		Reference:     r.GetString("reference"),
		ClientName:    r.GetString("client_name"),
		ProjectName:   r.GetString("project_name"),
		ApprovedQuote: r.GetString("approved_quote"),
	}
}

func quoteJSON(r *core.Record) api.Quote {
	q := api.Quote{
		ID:          r.Id,
		JobID:       r.GetString("job"),
		QuoteNumber: r.GetString("quote_number"),
		CostExclGST: services.MoneyFromFloat(r.GetFloat("cost_excl_gst")),
		CostInclGST: services.MoneyFromFloat(r.GetFloat("cost_incl_gst")),
	}
	if dt := r.GetDateTime("date_created"); !dt.IsZero() {
		q.DateCreated = dt.Time().Format(apiDateLayout)
	}
	return q
}

func itemJSON(r *core.Record) api.Item {
	return api.Item{
		ID:          r.Id,
		QuoteID:     r.GetString("quote"),
		ProductID:   r.GetString("product"),
		SortOrder:   r.GetInt("sort_order"),
		Reference:   r.GetString("reference"),
		Notes:       r.GetString("notes"),
		Quantity:    api.NewNumber(services.MeasurementFromFloat(r.GetFloat("quantity"))),
		Length:      api.NewNumber(services.MeasurementFromFloat(r.GetFloat("length"))),
		Height:      api.NewNumber(services.MeasurementFromFloat(r.GetFloat("height"))),
		CostExclGST: services.MoneyFromFloat(r.GetFloat("cost_excl_gst")),
		CostInclGST: services.MoneyFromFloat(r.GetFloat("cost_incl_gst")),
	}
}

func itemVariableJSON(r *core.Record) api.ItemVariable {
	return api.ItemVariable{
		ID:         r.Id,
		ItemID:     r.GetString("item"),
		VariableID: r.GetString("variable"),
		OptionID:   r.GetString("option"),
	}
}

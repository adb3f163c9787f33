package services

import (
	"context"
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// OptionDetail is an option's costs plus the variable and product it
// belongs to.
type OptionDetail struct {
	OptionCost
	VariableID string
	ProductID  string
}

// CatalogLookup resolves the catalogue data needed to price items.
type CatalogLookup interface {
	// MeasureTypeOf returns the product's measure type. A product without
	// one prices as Area. Unknown products return ErrUnknownProduct.
	MeasureTypeOf(ctx context.Context, productID string) (MeasureType, error)
	// OptionCosts returns details for the requested options keyed by
	// option ID. Missing options are left out of the map.
	OptionCosts(ctx context.Context, optionIDs []string) (map[string]OptionDetail, error)
}

// PriceItems validates drafts, resolves their catalogue data and computes
// every item's cost and the quote totals. Selections with no option chosen
// are dropped.
func PriceItems(ctx context.Context, catalog CatalogLookup, drafts []ItemDraft) ([]PricedItem, QuoteTotals, error) {
	if err := ValidateDrafts(drafts); err != nil {
		return nil, QuoteTotals{}, err
	}

	var optionIDs []string
	seen := make(map[string]bool)
	for _, d := range drafts {
		for _, sel := range d.Selections {
			if sel.OptionID != "" && !seen[sel.OptionID] {
				seen[sel.OptionID] = true
				optionIDs = append(optionIDs, sel.OptionID)
			}
		}
	}

	details := map[string]OptionDetail{}
	if len(optionIDs) > 0 {
		var err error
		details, err = catalog.OptionCosts(ctx, optionIDs)
		if err != nil {
			return nil, QuoteTotals{}, fmt.Errorf("load option costs: %w", err)
		}
	}

	measureTypes := make(map[string]MeasureType)
	priced := make([]PricedItem, len(drafts))
	costs := make([]decimal.Decimal, len(drafts))

	for i, d := range drafts {
		mt, ok := measureTypes[d.ProductID]
		if !ok {
			var err error
			mt, err = catalog.MeasureTypeOf(ctx, d.ProductID)
			if err != nil {
				return nil, QuoteTotals{}, fmt.Errorf("item %d: %w", i+1, err)
			}
			measureTypes[d.ProductID] = mt
		}

		var selections []Selection
		var options []OptionCost
		for _, sel := range d.Selections {
			if sel.OptionID == "" {
				continue
			}
			detail, ok := details[sel.OptionID]
			if !ok {
				return nil, QuoteTotals{}, fmt.Errorf("item %d, option %s: %w", i+1, sel.OptionID, ErrUnknownOption)
			}
			if detail.VariableID != sel.VariableID || detail.ProductID != d.ProductID {
				return nil, QuoteTotals{}, fmt.Errorf("item %d, option %s: %w", i+1, sel.OptionID, ErrOptionMismatch)
			}
			selections = append(selections, sel)
			options = append(options, detail.OptionCost)
		}

		cost := CalcItemCost(mt, d.Measurements, options)
		if d.ManualCostExclGST != nil {
			cost = ClampAmount(*d.ManualCostExclGST)
		}

		item := d
		item.Selections = selections
		priced[i] = PricedItem{
			ItemDraft:   item,
			MeasureType: mt,
			CostExclGST: cost,
			CostInclGST: ApplyGST(RoundMoney(cost)),
		}
		costs[i] = cost
	}

	return priced, CalcQuoteTotals(costs), nil
}

// RecordCatalog is a CatalogLookup backed by PocketBase records.
type RecordCatalog struct {
	app core.App
}

// NewRecordCatalog returns a RecordCatalog that reads through app.
func NewRecordCatalog(app core.App) *RecordCatalog {
	return &RecordCatalog{app: app}
}

func (c *RecordCatalog) MeasureTypeOf(_ context.Context, productID string) (MeasureType, error) {
	product, err := c.app.FindRecordById("products", productID)
	if err != nil {
		return MeasureArea, fmt.Errorf("product %s: %w", productID, ErrUnknownProduct)
	}

	mtID := product.GetString("measure_type")
	if mtID == "" {
		return MeasureArea, nil
	}
	mt, err := c.app.FindRecordById("measure_types", mtID)
	if err != nil {
		return MeasureArea, nil
	}
	return MeasureTypeFromCode(mt.GetInt("code")), nil
}

func (c *RecordCatalog) OptionCosts(_ context.Context, optionIDs []string) (map[string]OptionDetail, error) {
	options, err := c.app.FindRecordsByIds("variable_options", optionIDs)
	if err != nil {
		return nil, err
	}

	var variableIDs []string
	for _, o := range options {
		variableIDs = append(variableIDs, o.GetString("variable"))
	}
	variables, err := c.app.FindRecordsByIds("product_variables", variableIDs)
	if err != nil {
		return nil, err
	}
	productOf := make(map[string]string, len(variables))
	for _, v := range variables {
		productOf[v.Id] = v.GetString("product")
	}

	out := make(map[string]OptionDetail, len(options))
	for _, o := range options {
		variableID := o.GetString("variable")
		out[o.Id] = OptionDetail{
			OptionCost: OptionCost{
				OptionID:       o.Id,
				BaseCost:       MoneyFromFloat(o.GetFloat("base_cost")),
				MultiplierCost: MoneyFromFloat(o.GetFloat("multiplier_cost")),
			},
			VariableID: variableID,
			ProductID:  productOf[variableID],
		}
	}
	return out, nil
}

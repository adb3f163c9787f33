package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"quotebuilder/testhelpers"
)

type fakeCatalog struct {
	measureTypes map[string]MeasureType
	options      map[string]OptionDetail
	optionCalls  int
}

func (c *fakeCatalog) MeasureTypeOf(_ context.Context, productID string) (MeasureType, error) {
	mt, ok := c.measureTypes[productID]
	if !ok {
		return MeasureArea, ErrUnknownProduct
	}
	return mt, nil
}

func (c *fakeCatalog) OptionCosts(_ context.Context, ids []string) (map[string]OptionDetail, error) {
	c.optionCalls++
	out := make(map[string]OptionDetail)
	for _, id := range ids {
		if d, ok := c.options[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		measureTypes: map[string]MeasureType{
			"panel": MeasureArea,
			"trim":  MeasureLinear,
			"card":  MeasureQuantityOnly,
		},
		options: map[string]OptionDetail{
			"red":   {OptionCost: opt("10", "2"), VariableID: "colour", ProductID: "panel"},
			"gloss": {OptionCost: opt("3.25", "0"), VariableID: "finish", ProductID: "panel"},
			"flat":  {OptionCost: opt("5", "1"), VariableID: "profile", ProductID: "trim"},
			"std":   {OptionCost: opt("7", "3"), VariableID: "stock", ProductID: "card"},
		},
	}
}

func TestPriceItems(t *testing.T) {
	catalog := newFakeCatalog()
	drafts := []ItemDraft{
		{
			ProductID:    "panel",
			Measurements: Measurements{Quantity: dec("1"), Length: dec("3"), Height: dec("2")},
			Selections:   []Selection{{VariableID: "colour", OptionID: "red"}},
		},
		{
			ProductID:    "trim",
			Measurements: Measurements{Quantity: dec("2"), Length: dec("4")},
			Selections:   []Selection{{VariableID: "profile", OptionID: "flat"}},
		},
		{
			ProductID:    "card",
			Measurements: Measurements{Quantity: dec("4")},
			Selections:   []Selection{{VariableID: "stock", OptionID: "std"}},
		},
	}

	items, totals, err := PriceItems(context.Background(), catalog, drafts)
	if err != nil {
		t.Fatalf("PriceItems() error = %v", err)
	}

	want := []string{"22", "13", "19"}
	for i, w := range want {
		if !items[i].CostExclGST.Equal(dec(w)) {
			t.Errorf("item %d cost = %s, want %s", i+1, items[i].CostExclGST, w)
		}
	}
	if items[1].MeasureType != MeasureLinear {
		t.Errorf("item 2 measure type = %v, want Linear", items[1].MeasureType)
	}
	if !totals.ExclGST.Equal(dec("54")) || !totals.InclGST.Equal(dec("59.4")) {
		t.Errorf("totals = %s / %s, want 54 / 59.4", totals.ExclGST, totals.InclGST)
	}
	if catalog.optionCalls != 1 {
		t.Errorf("expected options to be loaded once, got %d calls", catalog.optionCalls)
	}
}

func TestPriceItems_ManualOverride(t *testing.T) {
	manual := dec("100")
	drafts := []ItemDraft{{
		ProductID:         "panel",
		Measurements:      Measurements{Quantity: dec("1"), Length: dec("3"), Height: dec("2")},
		Selections:        []Selection{{VariableID: "colour", OptionID: "red"}},
		ManualCostExclGST: &manual,
	}}

	items, totals, err := PriceItems(context.Background(), newFakeCatalog(), drafts)
	if err != nil {
		t.Fatalf("PriceItems() error = %v", err)
	}
	if !items[0].CostExclGST.Equal(dec("100")) {
		t.Errorf("cost excl = %s, want 100", items[0].CostExclGST)
	}
	if !items[0].CostInclGST.Equal(dec("110")) {
		t.Errorf("cost incl = %s, want 110", items[0].CostInclGST)
	}
	if !totals.InclGST.Equal(dec("110")) {
		t.Errorf("quote incl = %s, want 110", totals.InclGST)
	}
}

func TestPriceItems_NegativeManualOverrideIsZero(t *testing.T) {
	manual := dec("-5")
	items, _, err := PriceItems(context.Background(), newFakeCatalog(), []ItemDraft{{
		ProductID:         "card",
		ManualCostExclGST: &manual,
	}})
	if err != nil {
		t.Fatalf("PriceItems() error = %v", err)
	}
	if !items[0].CostExclGST.IsZero() {
		t.Errorf("cost = %s, want 0", items[0].CostExclGST)
	}
}

func TestPriceItems_DropsUnselectedVariables(t *testing.T) {
	items, _, err := PriceItems(context.Background(), newFakeCatalog(), []ItemDraft{{
		ProductID:    "panel",
		Measurements: Measurements{Quantity: dec("1"), Length: dec("1"), Height: dec("1")},
		Selections: []Selection{
			{VariableID: "colour", OptionID: "red"},
			{VariableID: "finish", OptionID: ""},
		},
	}})
	if err != nil {
		t.Fatalf("PriceItems() error = %v", err)
	}
	if len(items[0].Selections) != 1 {
		t.Errorf("expected 1 selection kept, got %d", len(items[0].Selections))
	}
	if !items[0].CostExclGST.Equal(dec("12")) {
		t.Errorf("cost = %s, want 12", items[0].CostExclGST)
	}
}

func TestPriceItems_EmptyOptionDoesNotClashWithChosenOne(t *testing.T) {
	items, _, err := PriceItems(context.Background(), newFakeCatalog(), []ItemDraft{{
		ProductID:    "panel",
		Measurements: Measurements{Quantity: dec("1"), Length: dec("1"), Height: dec("1")},
		Selections: []Selection{
			{VariableID: "colour", OptionID: ""},
			{VariableID: "colour", OptionID: "red"},
		},
	}})
	if err != nil {
		t.Fatalf("PriceItems() error = %v", err)
	}
	if len(items[0].Selections) != 1 || items[0].Selections[0].OptionID != "red" {
		t.Errorf("selections = %+v, want [colour/red]", items[0].Selections)
	}
}

func TestPriceItems_HugeManualOverrideIsZero(t *testing.T) {
	manual := dec("1e400")
	items, totals, err := PriceItems(context.Background(), newFakeCatalog(), []ItemDraft{{
		ProductID:         "card",
		ManualCostExclGST: &manual,
	}})
	if err != nil {
		t.Fatalf("PriceItems() error = %v", err)
	}
	if !items[0].CostExclGST.IsZero() || !totals.InclGST.IsZero() {
		t.Errorf("cost = %s, incl = %s, want 0", items[0].CostExclGST, totals.InclGST)
	}
}

func TestPriceItems_Errors(t *testing.T) {
	tests := []struct {
		name   string
		drafts []ItemDraft
		expect error
	}{
		{"no items", nil, ErrNoItems},
		{"missing product", []ItemDraft{{}}, ErrMissingProduct},
		{"unknown product", []ItemDraft{{ProductID: "ghost"}}, ErrUnknownProduct},
		{
			"unknown option",
			[]ItemDraft{{ProductID: "panel", Selections: []Selection{{VariableID: "colour", OptionID: "purple"}}}},
			ErrUnknownOption,
		},
		{
			"option from another variable",
			[]ItemDraft{{ProductID: "panel", Selections: []Selection{{VariableID: "colour", OptionID: "gloss"}}}},
			ErrOptionMismatch,
		},
		{
			"option from another product",
			[]ItemDraft{{ProductID: "panel", Selections: []Selection{{VariableID: "profile", OptionID: "flat"}}}},
			ErrOptionMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := PriceItems(context.Background(), newFakeCatalog(), tt.drafts)
			if !errors.Is(err, tt.expect) {
				t.Errorf("expected %v, got %v", tt.expect, err)
			}
			if !IsValidationError(err) {
				t.Errorf("IsValidationError(%v) = false", err)
			}
		})
	}
}

func TestRecordCatalog(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cat := testhelpers.CreateTestCatalog(t, app)
	linear := testhelpers.CreateTestMeasureType(t, app, "Linear", 2)
	trim := testhelpers.CreateTestProduct(t, app, "Trim", linear.Id)
	plain := testhelpers.CreateTestProduct(t, app, "Plain", "")

	catalog := NewRecordCatalog(app)
	ctx := context.Background()

	tests := []struct {
		productID string
		expect    MeasureType
	}{
		{cat.Product.Id, MeasureArea},
		{trim.Id, MeasureLinear},
		{plain.Id, MeasureArea},
	}
	for _, tt := range tests {
		got, err := catalog.MeasureTypeOf(ctx, tt.productID)
		if err != nil {
			t.Fatalf("MeasureTypeOf(%s) error = %v", tt.productID, err)
		}
		if got != tt.expect {
			t.Errorf("MeasureTypeOf(%s) = %v, want %v", tt.productID, got, tt.expect)
		}
	}

	if _, err := catalog.MeasureTypeOf(ctx, "missing"); !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("expected ErrUnknownProduct, got %v", err)
	}

	details, err := catalog.OptionCosts(ctx, []string{cat.Red.Id, cat.Matte.Id, "missing"})
	if err != nil {
		t.Fatalf("OptionCosts() error = %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 option details, got %d", len(details))
	}
	red := details[cat.Red.Id]
	if !red.BaseCost.Equal(decimal.NewFromInt(10)) || !red.MultiplierCost.Equal(decimal.NewFromInt(2)) {
		t.Errorf("red costs = %s / %s, want 10 / 2", red.BaseCost, red.MultiplierCost)
	}
	if red.VariableID != cat.Colour.Id || red.ProductID != cat.Product.Id {
		t.Errorf("red belongs to %s/%s, want %s/%s", red.VariableID, red.ProductID, cat.Colour.Id, cat.Product.Id)
	}
	if !details[cat.Matte.Id].MultiplierCost.Equal(dec("4.5")) {
		t.Errorf("matte multiplier = %s, want 4.5", details[cat.Matte.Id].MultiplierCost)
	}
}

package handlers

import (
	"net/http"
	"testing"

	"quotebuilder/api"
	"quotebuilder/testhelpers"
)

func TestHandleCategoryList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestCategory(t, app, "Signage")
	testhelpers.CreateTestCategory(t, app, "Printing")

	rec := serve(t, app, HandleCategoryList(app), jsonRequest(t, http.MethodGet, "/api/categories", nil))
	expectStatus(t, rec, http.StatusOK)

	var got []api.Category
	decodeJSON(t, rec, &got)
	if len(got) != 2 || got[0].Name != "Printing" || got[1].Name != "Signage" {
		t.Errorf("categories = %+v, want Printing, Signage", got)
	}
}

func TestHandleMeasureTypeList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestMeasureType(t, app, "Linear", 2)
	testhelpers.CreateTestMeasureType(t, app, "Area", 1)

	rec := serve(t, app, HandleMeasureTypeList(app), jsonRequest(t, http.MethodGet, "/api/measure-types", nil))
	expectStatus(t, rec, http.StatusOK)

	var got []api.MeasureType
	decodeJSON(t, rec, &got)
	if len(got) != 2 || got[0].Code != 1 || got[1].Code != 2 {
		t.Errorf("measure types = %+v, want ordered by code", got)
	}
}

func TestHandleProductList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cat := testhelpers.CreateTestCatalog(t, app)
	testhelpers.CreateTestProduct(t, app, "Business Cards", "")

	rec := serve(t, app, HandleProductList(app), jsonRequest(t, http.MethodGet, "/api/products", nil))
	expectStatus(t, rec, http.StatusOK)

	var got []api.Product
	decodeJSON(t, rec, &got)
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
	cards, panel := got[0], got[1]
	if cards.Name != "Business Cards" || len(cards.Variables) != 0 {
		t.Errorf("unexpected first product %+v", cards)
	}
	if cards.MeasureTypeCode != 1 {
		t.Errorf("product without measure type should report Area, got %d", cards.MeasureTypeCode)
	}
	if panel.ID != cat.Product.Id || len(panel.Variables) != 2 {
		t.Fatalf("unexpected panel %+v", panel)
	}
	if panel.Variables[0].Name != "Colour" || panel.Variables[1].Name != "Finish" {
		t.Errorf("variables out of display order: %+v", panel.Variables)
	}
	if len(panel.Variables[0].Options) != 2 {
		t.Errorf("expected 2 colour options, got %d", len(panel.Variables[0].Options))
	}
}

func TestHandleProductList_FilterByCategory(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cat := testhelpers.CreateTestCatalog(t, app)
	testhelpers.CreateTestProduct(t, app, "Other", "")

	req := jsonRequest(t, http.MethodGet, "/api/products?category_id="+cat.Product.GetString("category"), nil)
	rec := serve(t, app, HandleProductList(app), req)
	expectStatus(t, rec, http.StatusOK)

	var got []api.Product
	decodeJSON(t, rec, &got)
	if len(got) != 1 || got[0].ID != cat.Product.Id {
		t.Errorf("filtered products = %+v", got)
	}
}

func TestHandleProductGet(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cat := testhelpers.CreateTestCatalog(t, app)

	req := jsonRequest(t, http.MethodGet, "/api/products/"+cat.Product.Id, nil, "id", cat.Product.Id)
	rec := serve(t, app, HandleProductGet(app), req)
	expectStatus(t, rec, http.StatusOK)

	var got api.Product
	decodeJSON(t, rec, &got)
	if got.MeasureTypeCode != 1 || got.MeasureTypeID != cat.Area.Id {
		t.Errorf("measure type = %s/%d", got.MeasureTypeID, got.MeasureTypeCode)
	}
	if len(got.Variables) != 2 {
		t.Errorf("expected 2 variables, got %d", len(got.Variables))
	}
}

func TestHandleProductGet_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	req := jsonRequest(t, http.MethodGet, "/api/products/missing", nil, "id", "missing")
	rec := serve(t, app, HandleProductGet(app), req)
	expectStatus(t, rec, http.StatusNotFound)

	var body api.ErrorBody
	decodeJSON(t, rec, &body)
	if body.Error.Type != api.ErrorNotFound {
		t.Errorf("error type = %q", body.Error.Type)
	}
}

func TestHandleProductVariables(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cat := testhelpers.CreateTestCatalog(t, app)
	bare := testhelpers.CreateTestProduct(t, app, "Bare", "")

	req := jsonRequest(t, http.MethodGet, "/", nil, "id", cat.Product.Id)
	rec := serve(t, app, HandleProductVariables(app), req)
	expectStatus(t, rec, http.StatusOK)
	var got []api.Variable
	decodeJSON(t, rec, &got)
	if len(got) != 2 || got[0].ID != cat.Colour.Id {
		t.Errorf("variables = %+v", got)
	}

	req = jsonRequest(t, http.MethodGet, "/", nil, "id", bare.Id)
	rec = serve(t, app, HandleProductVariables(app), req)
	expectStatus(t, rec, http.StatusOK)
	if body := rec.Body.String(); body != "[]\n" && body != "[]" {
		t.Errorf("expected empty array, got %q", body)
	}
}

func TestHandleOptionCosts(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	cat := testhelpers.CreateTestCatalog(t, app)

	body := api.OptionCostsRequest{OptionIDs: []string{cat.Red.Id, "missing", cat.Matte.Id, cat.Red.Id}}
	rec := serve(t, app, HandleOptionCosts(app), jsonRequest(t, http.MethodPost, "/api/variable-options/costs", body))
	expectStatus(t, rec, http.StatusOK)

	var got []api.OptionCost
	decodeJSON(t, rec, &got)
	if len(got) != 2 {
		t.Fatalf("expected 2 costs, got %+v", got)
	}
	if got[0].OptionID != cat.Red.Id || got[0].BaseCost.String() != "10" || got[0].MultiplierCost.String() != "2" {
		t.Errorf("red = %+v", got[0])
	}
	if got[1].OptionID != cat.Matte.Id || got[1].MultiplierCost.String() != "4.5" {
		t.Errorf("matte = %+v", got[1])
	}
	if got[0].VariableID != cat.Colour.Id || got[0].ProductID != cat.Product.Id {
		t.Errorf("red ownership = %s/%s", got[0].VariableID, got[0].ProductID)
	}
}

package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type optionDef struct {
	name           string
	baseCost       float64
	multiplierCost float64
}

type variableDef struct {
	name     string
	dataType string
	options  []optionDef
}

type productDef struct {
	name        string
	category    string
	measureCode int
	variables   []variableDef
}

type jobDef struct {
	jobNumber   int
	reference   string
	clientName  string
	projectName string
}

var seedMeasureTypes = []struct {
	code int
	name string
}{
	{1, "Area"},
	{2, "Linear"},
	{3, "Quantity Only"},
}

var seedCategories = []string{"Signage", "Printing", "Digital"}

var seedProducts = []productDef{
	{
		name:        "Vinyl Banner",
		category:    "Signage",
		measureCode: 1,
		variables: []variableDef{
			{name: "Size", dataType: "select", options: []optionDef{
				{"Small (1m x 1m)", 0, 0.05},
				{"Medium (2m x 1m)", 5, 0.10},
				{"Large (3m x 1m)", 10, 0.15},
			}},
			{name: "Material", dataType: "select", options: []optionDef{
				{"Standard Vinyl", 0, 0.15},
				{"Premium Vinyl", 15, 0.25},
				{"Mesh Vinyl", 20, 0.30},
			}},
		},
	},
	{
		name:        "Business Cards",
		category:    "Printing",
		measureCode: 3,
		variables: []variableDef{
			{name: "Finish", dataType: "select", options: []optionDef{
				{"Standard", 0, 0.05},
				{"Gloss", 10, 0.15},
				{"Matte", 15, 0.20},
			}},
		},
	},
	{
		name:        "Edge Trim",
		category:    "Signage",
		measureCode: 2,
		variables: []variableDef{
			{name: "Profile", dataType: "select", options: []optionDef{
				{"Flat", 2, 4.50},
				{"Rounded", 5, 6.00},
			}},
		},
	},
	{
		name:        "Website Design",
		category:    "Digital",
		measureCode: 3,
		variables: []variableDef{
			{name: "Features", dataType: "select", options: []optionDef{
				{"Basic", 0, 0},
				{"E-commerce", 200, 0},
				{"CMS", 150, 0},
			}},
		},
	},
}

var seedJobs = []jobDef{
	{jobNumber: 1001, reference: "Shopfront refit", clientName: "Harbour Cafe", projectName: "Main Street signage"},
}

// Seed makes sure the measure types exist and loads a sample catalogue and
// job into an empty database. It is safe to call on every startup.
func Seed(app *pocketbase.PocketBase) error {
	measureIDs, err := seedMeasureTypeRecords(app)
	if err != nil {
		return err
	}

	// ── idempotency: skip the catalogue if any category exists ─────────
	categoriesCol, err := app.FindCollectionByNameOrId("product_categories")
	if err != nil {
		return fmt.Errorf("seed: could not find product_categories collection: %w", err)
	}
	total, err := app.CountRecords(categoriesCol)
	if err != nil {
		return fmt.Errorf("seed: could not count categories: %w", err)
	}
	if total == 0 {
		if err := seedCatalogue(app, categoriesCol, measureIDs); err != nil {
			return err
		}
	}

	return seedJobRecords(app)
}

func seedMeasureTypeRecords(app *pocketbase.PocketBase) (map[int]string, error) {
	col, err := app.FindCollectionByNameOrId("measure_types")
	if err != nil {
		return nil, fmt.Errorf("seed: could not find measure_types collection: %w", err)
	}

	ids := make(map[int]string, len(seedMeasureTypes))
	for _, mt := range seedMeasureTypes {
		existing, err := app.FindFirstRecordByData(col, "code", mt.code)
		if err == nil {
			ids[mt.code] = existing.Id
			continue
		}

		rec := core.NewRecord(col)
		rec.Set("code", mt.code)
		rec.Set("name", mt.name)
		if err := app.Save(rec); err != nil {
			return nil, fmt.Errorf("seed: save measure type %q: %w", mt.name, err)
		}
		ids[mt.code] = rec.Id
	}
	return ids, nil
}

func seedCatalogue(app *pocketbase.PocketBase, categoriesCol *core.Collection, measureIDs map[int]string) error {
	productsCol, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return fmt.Errorf("seed: could not find products collection: %w", err)
	}
	variablesCol, err := app.FindCollectionByNameOrId("product_variables")
	if err != nil {
		return fmt.Errorf("seed: could not find product_variables collection: %w", err)
	}
	optionsCol, err := app.FindCollectionByNameOrId("variable_options")
	if err != nil {
		return fmt.Errorf("seed: could not find variable_options collection: %w", err)
	}

	categoryIDs := make(map[string]string, len(seedCategories))
	for _, name := range seedCategories {
		rec := core.NewRecord(categoriesCol)
		rec.Set("name", name)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: save category %q: %w", name, err)
		}
		categoryIDs[name] = rec.Id
	}

	var variableCount, optionCount int
	for _, p := range seedProducts {
		product := core.NewRecord(productsCol)
		product.Set("name", p.name)
		product.Set("category", categoryIDs[p.category])
		product.Set("measure_type", measureIDs[p.measureCode])
		if err := app.Save(product); err != nil {
			return fmt.Errorf("seed: save product %q: %w", p.name, err)
		}

		for vi, v := range p.variables {
			variable := core.NewRecord(variablesCol)
			variable.Set("product", product.Id)
			variable.Set("name", v.name)
			variable.Set("data_type", v.dataType)
			variable.Set("display_order", vi+1)
			if err := app.Save(variable); err != nil {
				return fmt.Errorf("seed: save variable %q of %q: %w", v.name, p.name, err)
			}
			variableCount++

			for _, o := range v.options {
				option := core.NewRecord(optionsCol)
				option.Set("variable", variable.Id)
				option.Set("name", o.name)
				option.Set("base_cost", o.baseCost)
				option.Set("multiplier_cost", o.multiplierCost)
				if err := app.Save(option); err != nil {
					return fmt.Errorf("seed: save option %q of %q: %w", o.name, v.name, err)
				}
				optionCount++
			}
		}
	}

	log.Printf("seed: created %d categories, %d products, %d variables, %d options",
		len(seedCategories), len(seedProducts), variableCount, optionCount)
	return nil
}

func seedJobRecords(app *pocketbase.PocketBase) error {
	col, err := app.FindCollectionByNameOrId("jobs")
	if err != nil {
		return fmt.Errorf("seed: could not find jobs collection: %w", err)
	}
	total, err := app.CountRecords(col)
	if err != nil {
		return fmt.Errorf("seed: could not count jobs: %w", err)
	}
	if total > 0 {
		return nil
	}

	for _, j := range seedJobs {
		rec := core.NewRecord(col)
		rec.Set("job_number", j.jobNumber)
		rec.Set("reference", j.reference)
		rec.Set("client_name", j.clientName)
		rec.Set("project_name", j.projectName)
		if err := app.Save(rec); err != nil {
			return fmt.Errorf("seed: save job %d: %w", j.jobNumber, err)
		}
	}
	log.Printf("seed: created %d job(s)", len(seedJobs))
	return nil
}

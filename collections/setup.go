package collections

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
)

// Setup creates the catalogue, job and quote collections if they do not
// exist yet. Collections are created in dependency order.
func Setup(app *pocketbase.PocketBase) {
	categories := ensureCollection(app, "product_categories", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
	})

	measureTypes := ensureCollection(app, "measure_types", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "code", Required: true, OnlyInt: true, Min: types.Pointer(1.0)})
		c.AddIndex("idx_measure_types_code", true, "code", "")
	})

	products := ensureCollection(app, "products", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.RelationField{
			Name:         "category",
			Required:     true,
			CollectionId: categories.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "measure_type",
			Required:     false,
			CollectionId: measureTypes.Id,
			MaxSelect:    1,
		})
	})

	variables := ensureCollection(app, "product_variables", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "product",
			Required:      true,
			CollectionId:  products.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "data_type"})
		c.Fields.Add(&core.NumberField{Name: "display_order", OnlyInt: true})
	})

	options := ensureCollection(app, "variable_options", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "variable",
			Required:      true,
			CollectionId:  variables.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "base_cost", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "multiplier_cost", Min: types.Pointer(0.0)})
	})

	jobs := ensureCollection(app, "jobs", func(c *core.Collection) {
		c.Fields.Add(&core.NumberField{Name: "job_number", OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "reference", Required: true})
		c.Fields.Add(&core.TextField{Name: "client_name"})
		c.Fields.Add(&core.TextField{Name: "project_name"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	quotes := ensureCollection(app, "quotes", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "job",
			Required:      true,
			CollectionId:  jobs.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "quote_number", Required: true})
		c.Fields.Add(&core.DateField{Name: "date_created"})
		c.Fields.Add(&core.NumberField{Name: "cost_excl_gst", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "cost_incl_gst", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex(quoteNumberIndex, true, "job, quote_number", "")
	})
	if quotes.GetIndex(quoteNumberIndex) == "" {
		quotes.AddIndex(quoteNumberIndex, true, "job, quote_number", "")
		if err := app.Save(quotes); err != nil {
			// existing duplicate numbers block the index; the app still runs
			log.Printf("collections: Setup: could not add %s: %v", quoteNumberIndex, err)
		}
	}

	// jobs and quotes reference each other, so the approved quote relation
	// is added once quotes exists.
	if jobs.Fields.GetByName("approved_quote") == nil {
		jobs.Fields.Add(&core.RelationField{
			Name:         "approved_quote",
			CollectionId: quotes.Id,
			MaxSelect:    1,
		})
		if err := app.Save(jobs); err != nil {
			log.Fatalf("collections: Setup: could not add jobs.approved_quote: %v", err)
		}
	}

	items := ensureCollection(app, "items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "quote",
			Required:      true,
			CollectionId:  quotes.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "product",
			Required:     true,
			CollectionId: products.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", OnlyInt: true})
		c.Fields.Add(&core.TextField{Name: "reference"})
		c.Fields.Add(&core.TextField{Name: "notes"})
		c.Fields.Add(&core.NumberField{Name: "quantity", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "length", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "height", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "cost_excl_gst", Min: types.Pointer(0.0)})
		c.Fields.Add(&core.NumberField{Name: "cost_incl_gst", Min: types.Pointer(0.0)})
	})

	ensureCollection(app, "item_variables", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "item",
			Required:      true,
			CollectionId:  items.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "variable",
			Required:     true,
			CollectionId: variables.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.RelationField{
			Name:         "option",
			Required:     true,
			CollectionId: options.Id,
			MaxSelect:    1,
		})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.AddIndex("idx_item_variables_item_variable", true, "item, variable", "")
	})
}

const quoteNumberIndex = "idx_quotes_job_number"

// ensureCollection returns the named collection, creating it with the fields
// added by addFields when it does not exist yet.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("collections: %q already exists, skipping creation", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("collections: failed to create %q: %v", name, err)
	}

	log.Printf("collections: created %q (id=%s)", name, collection.Id)
	return collection
}

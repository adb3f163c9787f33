package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"
)

// CompanyInfo is the quoting business shown in export headers.
type CompanyInfo struct {
	Name  string
	ABN   string
	Phone string
	Email string
}

// ExportRow represents a single quote item in an export.
type ExportRow struct {
	Index       int
	Product     string
	MeasureType MeasureType
	Reference   string
	Options     []string // "Variable: Option", in display order
	Notes       string
	Quantity    decimal.Decimal
	Length      decimal.Decimal
	Height      decimal.Decimal
	CostExclGST decimal.Decimal
	CostInclGST decimal.Decimal
}

// Size describes the item's measurements for its measure type.
func (r ExportRow) Size() string {
	switch r.MeasureType {
	case MeasureLinear:
		return formatQty(r.Length) + " L"
	case MeasureQuantityOnly:
		return ""
	default:
		return formatQty(r.Length) + " W × " + formatQty(r.Height) + " H"
	}
}

// ExportData holds all data needed for a quote export.
type ExportData struct {
	Company      CompanyInfo
	QuoteNumber  string
	JobNumber    string
	JobReference string
	ClientName   string
	ProjectName  string
	Date         string
	ValidUntil   string
	Approved     bool
	Rows         []ExportRow
	Totals       QuoteTotals
}

// Title is the document title used for headings, sheet names and filenames.
func (d ExportData) Title() string {
	return "Quote " + d.QuoteNumber
}

const exportDateLayout = "02/01/2006"

// BuildExportData loads a quote with its job, items and selected options.
// Totals come from the stored quote so an export always matches what was
// saved. validDays controls the "valid until" date; zero leaves it blank.
func BuildExportData(app core.App, quoteID string, company CompanyInfo, validDays int) (ExportData, error) {
	quote, err := app.FindRecordById("quotes", quoteID)
	if err != nil {
		return ExportData{}, fmt.Errorf("quote not found: %w", err)
	}
	job, err := app.FindRecordById("jobs", quote.GetString("job"))
	if err != nil {
		return ExportData{}, fmt.Errorf("job not found: %w", err)
	}

	date := quote.GetDateTime("date_created").Time()
	if date.IsZero() {
		date = quote.GetDateTime("created").Time()
	}

	data := ExportData{
		Company:      company,
		QuoteNumber:  quote.GetString("quote_number"),
		JobReference: job.GetString("reference"),
		ClientName:   job.GetString("client_name"),
		ProjectName:  job.GetString("project_name"),
		Approved:     job.GetString("approved_quote") == quote.Id,
	}
	if n := job.GetInt("job_number"); n > 0 {
		data.JobNumber = fmt.Sprint(n)
	}
	if !date.IsZero() {
		data.Date = date.Format(exportDateLayout)
		if validDays > 0 {
			data.ValidUntil = date.AddDate(0, 0, validDays).Format(exportDateLayout)
		}
	}

	excl := MoneyFromFloat(quote.GetFloat("cost_excl_gst"))
	incl := MoneyFromFloat(quote.GetFloat("cost_incl_gst"))
	data.Totals = QuoteTotals{ExclGST: excl, GST: incl.Sub(excl), InclGST: incl}

	items, err := app.FindRecordsByFilter("items", "quote = {:quoteId}", "sort_order", 0, 0, dbx.Params{"quoteId": quoteID})
	if err != nil {
		return ExportData{}, fmt.Errorf("load items: %w", err)
	}
	if len(items) == 0 {
		return data, nil
	}

	products, measureTypes, err := loadProducts(app, items)
	if err != nil {
		return ExportData{}, err
	}
	options, err := loadItemOptions(app, items)
	if err != nil {
		return ExportData{}, err
	}

	for i, it := range items {
		productID := it.GetString("product")
		data.Rows = append(data.Rows, ExportRow{
			Index:       i + 1,
			Product:     products[productID],
			MeasureType: measureTypes[productID],
			Reference:   it.GetString("reference"),
			Options:     options[it.Id],
			Notes:       it.GetString("notes"),
			Quantity:    MeasurementFromFloat(it.GetFloat("quantity")),
			Length:      MeasurementFromFloat(it.GetFloat("length")),
			Height:      MeasurementFromFloat(it.GetFloat("height")),
			CostExclGST: MoneyFromFloat(it.GetFloat("cost_excl_gst")),
			CostInclGST: MoneyFromFloat(it.GetFloat("cost_incl_gst")),
		})
	}

	return data, nil
}

// loadProducts returns product names and measure types keyed by product ID.
func loadProducts(app core.App, items []*core.Record) (map[string]string, map[string]MeasureType, error) {
	var ids []string
	for _, it := range items {
		ids = append(ids, it.GetString("product"))
	}
	products, err := app.FindRecordsByIds("products", ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load products: %w", err)
	}

	var mtIDs []string
	for _, p := range products {
		if id := p.GetString("measure_type"); id != "" {
			mtIDs = append(mtIDs, id)
		}
	}
	codes := make(map[string]int)
	if len(mtIDs) > 0 {
		mts, err := app.FindRecordsByIds("measure_types", mtIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("load measure types: %w", err)
		}
		for _, mt := range mts {
			codes[mt.Id] = mt.GetInt("code")
		}
	}

	names := make(map[string]string, len(products))
	types := make(map[string]MeasureType, len(products))
	for _, p := range products {
		names[p.Id] = p.GetString("name")
		types[p.Id] = MeasureTypeFromCode(codes[p.GetString("measure_type")])
	}
	return names, types, nil
}

// loadItemOptions returns "Variable: Option" labels keyed by item ID, ordered
// by the variables' display order.
func loadItemOptions(app core.App, items []*core.Record) (map[string][]string, error) {
	itemIDs := make([]any, len(items))
	for i, it := range items {
		itemIDs[i] = it.Id
	}
	selections, err := app.FindAllRecords("item_variables", dbx.In("item", itemIDs...))
	if err != nil {
		return nil, fmt.Errorf("load item variables: %w", err)
	}
	if len(selections) == 0 {
		return map[string][]string{}, nil
	}

	var variableIDs, optionIDs []string
	for _, s := range selections {
		variableIDs = append(variableIDs, s.GetString("variable"))
		optionIDs = append(optionIDs, s.GetString("option"))
	}
	variables, err := app.FindRecordsByIds("product_variables", variableIDs)
	if err != nil {
		return nil, fmt.Errorf("load variables: %w", err)
	}
	optionRecs, err := app.FindRecordsByIds("variable_options", optionIDs)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}

	byID := make(map[string]*core.Record, len(variables)+len(optionRecs))
	for _, r := range variables {
		byID[r.Id] = r
	}
	for _, r := range optionRecs {
		byID[r.Id] = r
	}

	sort.SliceStable(selections, func(i, j int) bool {
		vi, vj := byID[selections[i].GetString("variable")], byID[selections[j].GetString("variable")]
		if vi == nil || vj == nil {
			return false
		}
		return vi.GetInt("display_order") < vj.GetInt("display_order")
	})

	out := make(map[string][]string)
	for _, s := range selections {
		v, o := byID[s.GetString("variable")], byID[s.GetString("option")]
		if v == nil || o == nil {
			continue
		}
		itemID := s.GetString("item")
		out[itemID] = append(out[itemID], v.GetString("name")+": "+o.GetString("name"))
	}
	return out, nil
}

// formatQty returns a measurement without trailing zeros.
func formatQty(d decimal.Decimal) string {
	return d.String()
}

// OptionSummary joins an export row's options for single-line output.
func (r ExportRow) OptionSummary() string {
	return strings.Join(r.Options, ", ")
}

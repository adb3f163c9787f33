package services

import (
	"context"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// RecordStore is a QuoteStore backed by PocketBase records. Bind it to the
// transaction app from RunInTransaction to make a save atomic.
type RecordStore struct {
	app core.App
}

// NewRecordStore returns a RecordStore that reads and writes through app.
func NewRecordStore(app core.App) *RecordStore {
	return &RecordStore{app: app}
}

func (s *RecordStore) newRecord(collection string) (*core.Record, error) {
	col, err := s.app.FindCachedCollectionByNameOrId(collection)
	if err != nil {
		return nil, fmt.Errorf("find %s collection: %w", collection, err)
	}
	return core.NewRecord(col), nil
}

func (s *RecordStore) CreateQuote(ctx context.Context, in QuoteInput) (string, error) {
	number, err := GenerateQuoteNumber(s.app, in.JobID)
	if err != nil {
		return "", err
	}

	rec, err := s.newRecord("quotes")
	if err != nil {
		return "", err
	}
	rec.Set("job", in.JobID)
	rec.Set("quote_number", number)
	rec.Set("date_created", in.Date)
	rec.Set("cost_excl_gst", in.Totals.ExclGST.InexactFloat64())
	rec.Set("cost_incl_gst", in.Totals.InclGST.InexactFloat64())

	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return "", err
	}
	return rec.Id, nil
}

func (s *RecordStore) UpdateQuoteTotals(ctx context.Context, quoteID string, totals QuoteTotals) error {
	rec, err := s.app.FindRecordById("quotes", quoteID)
	if err != nil {
		return fmt.Errorf("quote %s: %w", quoteID, err)
	}
	rec.Set("cost_excl_gst", totals.ExclGST.InexactFloat64())
	rec.Set("cost_incl_gst", totals.InclGST.InexactFloat64())
	return s.app.SaveWithContext(ctx, rec)
}

func (s *RecordStore) DeleteQuote(ctx context.Context, quoteID string) error {
	rec, err := s.app.FindRecordById("quotes", quoteID)
	if err != nil {
		return fmt.Errorf("quote %s: %w", quoteID, err)
	}
	return s.app.DeleteWithContext(ctx, rec)
}

func (s *RecordStore) CreateItem(ctx context.Context, in ItemInput) (string, error) {
	rec, err := s.newRecord("items")
	if err != nil {
		return "", err
	}
	rec.Set("quote", in.QuoteID)
	rec.Set("product", in.ProductID)
	rec.Set("sort_order", in.SortOrder)
	rec.Set("reference", in.Reference)
	rec.Set("notes", in.Notes)
	rec.Set("quantity", in.Quantity.InexactFloat64())
	rec.Set("length", in.Length.InexactFloat64())
	rec.Set("height", in.Height.InexactFloat64())
	rec.Set("cost_excl_gst", in.CostExclGST.InexactFloat64())
	rec.Set("cost_incl_gst", in.CostInclGST.InexactFloat64())

	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return "", err
	}
	return rec.Id, nil
}

func (s *RecordStore) CreateItemVariable(ctx context.Context, itemID string, sel Selection) error {
	rec, err := s.newRecord("item_variables")
	if err != nil {
		return err
	}
	rec.Set("item", itemID)
	rec.Set("variable", sel.VariableID)
	rec.Set("option", sel.OptionID)
	return s.app.SaveWithContext(ctx, rec)
}

func (s *RecordStore) ListItemIDs(_ context.Context, quoteID string) ([]string, error) {
	records, err := s.app.FindRecordsByFilter(
		"items",
		"quote = {:quoteId}",
		"sort_order",
		0,
		0,
		dbx.Params{"quoteId": quoteID},
	)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.Id
	}
	return ids, nil
}

func (s *RecordStore) DeleteItem(ctx context.Context, itemID string) error {
	rec, err := s.app.FindRecordById("items", itemID)
	if err != nil {
		return fmt.Errorf("item %s: %w", itemID, err)
	}
	return s.app.DeleteWithContext(ctx, rec)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNoItems           = errors.New("quote must contain at least one item")
	ErrMissingProduct    = errors.New("item is missing a product selection")
	ErrDuplicateVariable = errors.New("variable selected more than once")
	ErrMissingJob        = errors.New("job is required to create a quote")
	ErrUnknownProduct    = errors.New("product not found")
	ErrUnknownOption     = errors.New("variable option not found")
	ErrOptionMismatch    = errors.New("option does not belong to the selected variable or product")
)

// IsValidationError reports whether err was caused by bad input rather than
// a storage failure.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrNoItems, ErrMissingProduct, ErrDuplicateVariable, ErrMissingJob,
		ErrUnknownProduct, ErrUnknownOption, ErrOptionMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Selection is one chosen option for one product variable.
type Selection struct {
	VariableID string `json:"product_variable_id"`
	OptionID   string `json:"variable_option_id"`
}

// ItemDraft is a quote line item as entered, before pricing.
type ItemDraft struct {
	ProductID    string
	Reference    string
	Notes        string
	Measurements Measurements
	Selections   []Selection

	// ManualCostExclGST replaces the computed cost when set.
	ManualCostExclGST *decimal.Decimal
}

// PricedItem is a draft with its resolved costs. CostExclGST keeps full
// precision; CostInclGST is derived from it rounded to cents.
type PricedItem struct {
	ItemDraft
	MeasureType MeasureType
	CostExclGST decimal.Decimal
	CostInclGST decimal.Decimal
}

// QuoteInput holds the fields needed to create a quote.
type QuoteInput struct {
	JobID  string
	Date   time.Time
	Totals QuoteTotals
}

// ItemInput holds the fields needed to create a quote item.
type ItemInput struct {
	QuoteID     string
	SortOrder   int
	ProductID   string
	Reference   string
	Notes       string
	Quantity    decimal.Decimal
	Length      decimal.Decimal
	Height      decimal.Decimal
	CostExclGST decimal.Decimal
	CostInclGST decimal.Decimal
}

// QuoteStore is the resource model quotes are persisted through.
type QuoteStore interface {
	CreateQuote(ctx context.Context, in QuoteInput) (string, error)
	UpdateQuoteTotals(ctx context.Context, quoteID string, totals QuoteTotals) error
	DeleteQuote(ctx context.Context, quoteID string) error
	CreateItem(ctx context.Context, in ItemInput) (string, error)
	CreateItemVariable(ctx context.Context, itemID string, sel Selection) error
	ListItemIDs(ctx context.Context, quoteID string) ([]string, error)
	DeleteItem(ctx context.Context, itemID string) error
}

// SaveQuoteRequest describes a create (QuoteID empty) or an update.
type SaveQuoteRequest struct {
	JobID   string
	QuoteID string
	Date    time.Time
	Items   []PricedItem
}

// SaveResult describes a completed save.
type SaveResult struct {
	QuoteID string
	Created bool
	ItemIDs []string
	Removed int
	Totals  QuoteTotals
}

// ValidateDrafts checks the item list before anything is written.
func ValidateDrafts(drafts []ItemDraft) error {
	if len(drafts) == 0 {
		return ErrNoItems
	}
	for i, d := range drafts {
		if d.ProductID == "" {
			return fmt.Errorf("item %d: %w", i+1, ErrMissingProduct)
		}
		seen := make(map[string]bool, len(d.Selections))
		for _, sel := range d.Selections {
			// no option chosen; dropped before pricing
			if sel.OptionID == "" {
				continue
			}
			if seen[sel.VariableID] {
				return fmt.Errorf("item %d, variable %s: %w", i+1, sel.VariableID, ErrDuplicateVariable)
			}
			seen[sel.VariableID] = true
		}
	}
	return nil
}

// SaveQuote persists priced items as a new quote or as the replacement item
// set of an existing quote.
//
// New items are always written before old ones are removed, so an updated
// quote is never left without items. If an item fails to save, every item
// written by this call is deleted again and existing items stay untouched.
// A failed create also deletes the quote it just created.
func SaveQuote(ctx context.Context, store QuoteStore, req SaveQuoteRequest) (SaveResult, error) {
	drafts := make([]ItemDraft, len(req.Items))
	costs := make([]decimal.Decimal, len(req.Items))
	for i, it := range req.Items {
		drafts[i] = it.ItemDraft
		costs[i] = it.CostExclGST
	}
	if err := ValidateDrafts(drafts); err != nil {
		return SaveResult{}, err
	}

	result := SaveResult{
		QuoteID: req.QuoteID,
		Totals:  CalcQuoteTotals(costs),
	}

	if req.QuoteID == "" {
		if req.JobID == "" {
			return SaveResult{}, ErrMissingJob
		}
		date := req.Date
		if date.IsZero() {
			date = time.Now()
		}
		quoteID, err := store.CreateQuote(ctx, QuoteInput{JobID: req.JobID, Date: date, Totals: result.Totals})
		if err != nil {
			return SaveResult{}, fmt.Errorf("create quote: %w", err)
		}

		created, err := createItems(ctx, store, quoteID, req.Items)
		if err != nil {
			rollbackItems(ctx, store, created)
			if derr := store.DeleteQuote(context.WithoutCancel(ctx), quoteID); derr != nil {
				log.Printf("quote_save: could not delete quote %s after failed create: %v", quoteID, derr)
			}
			return SaveResult{}, err
		}

		result.QuoteID = quoteID
		result.Created = true
		result.ItemIDs = created
		return result, nil
	}

	created, err := createItems(ctx, store, req.QuoteID, req.Items)
	if err != nil {
		rollbackItems(ctx, store, created)
		return SaveResult{}, err
	}

	existing, err := store.ListItemIDs(ctx, req.QuoteID)
	if err != nil {
		rollbackItems(ctx, store, created)
		return SaveResult{}, fmt.Errorf("list existing items: %w", err)
	}

	if err := store.UpdateQuoteTotals(ctx, req.QuoteID, result.Totals); err != nil {
		rollbackItems(ctx, store, created)
		return SaveResult{}, fmt.Errorf("update quote totals: %w", err)
	}

	keep := make(map[string]bool, len(created))
	for _, id := range created {
		keep[id] = true
	}
	for _, id := range existing {
		if keep[id] {
			continue
		}
		if err := store.DeleteItem(ctx, id); err != nil {
			// The new item set is complete; a retry removes what is left.
			return SaveResult{}, fmt.Errorf("delete replaced item %s: %w", id, err)
		}
		result.Removed++
	}

	result.ItemIDs = created
	return result, nil
}

func createItems(ctx context.Context, store QuoteStore, quoteID string, items []PricedItem) ([]string, error) {
	var created []string
	for i, it := range items {
		itemID, err := store.CreateItem(ctx, ItemInput{
			QuoteID:     quoteID,
			SortOrder:   i + 1,
			ProductID:   it.ProductID,
			Reference:   it.Reference,
			Notes:       it.Notes,
			Quantity:    it.Measurements.Quantity,
			Length:      it.Measurements.Length,
			Height:      it.Measurements.Height,
			CostExclGST: RoundMoney(it.CostExclGST),
			CostInclGST: it.CostInclGST,
		})
		if err != nil {
			return created, fmt.Errorf("create item %d: %w", i+1, err)
		}
		created = append(created, itemID)

		for _, sel := range it.Selections {
			if err := store.CreateItemVariable(ctx, itemID, sel); err != nil {
				return created, fmt.Errorf("create item %d variable %s: %w", i+1, sel.VariableID, err)
			}
		}
	}
	return created, nil
}

// rollbackItems deletes items in reverse creation order. It ignores
// cancellation of ctx so a cancelled request still cleans up.
func rollbackItems(ctx context.Context, store QuoteStore, itemIDs []string) {
	ctx = context.WithoutCancel(ctx)
	for i := len(itemIDs) - 1; i >= 0; i-- {
		if err := store.DeleteItem(ctx, itemIDs[i]); err != nil {
			log.Printf("quote_save: rollback: could not delete item %s: %v", itemIDs[i], err)
		}
	}
}

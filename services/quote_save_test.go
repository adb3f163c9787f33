package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
)

// memStore is an in-memory QuoteStore with failure injection.
type memStore struct {
	nextID        int
	quotes        map[string]QuoteTotals
	items         map[string]ItemInput
	itemVariables map[string][]Selection
	calls         int

	failCreateItemAt    int // 1-based CreateItem call that fails; 0 = never
	failItemVariableAt  int
	failUpdateTotals    bool
	createItemCalls     int
	createVariableCalls int
}

func newMemStore() *memStore {
	return &memStore{
		quotes:        map[string]QuoteTotals{},
		items:         map[string]ItemInput{},
		itemVariables: map[string][]Selection{},
	}
}

func (s *memStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s%d", prefix, s.nextID)
}

func (s *memStore) CreateQuote(_ context.Context, in QuoteInput) (string, error) {
	s.calls++
	id := s.id("q")
	s.quotes[id] = in.Totals
	return id, nil
}

func (s *memStore) UpdateQuoteTotals(_ context.Context, quoteID string, totals QuoteTotals) error {
	s.calls++
	if s.failUpdateTotals {
		return errors.New("update failed")
	}
	if _, ok := s.quotes[quoteID]; !ok {
		return errors.New("quote not found")
	}
	s.quotes[quoteID] = totals
	return nil
}

func (s *memStore) DeleteQuote(_ context.Context, quoteID string) error {
	s.calls++
	delete(s.quotes, quoteID)
	return nil
}

func (s *memStore) CreateItem(_ context.Context, in ItemInput) (string, error) {
	s.calls++
	s.createItemCalls++
	if s.failCreateItemAt == s.createItemCalls {
		return "", errors.New("backend unavailable")
	}
	id := s.id("i")
	s.items[id] = in
	return id, nil
}

func (s *memStore) CreateItemVariable(_ context.Context, itemID string, sel Selection) error {
	s.calls++
	s.createVariableCalls++
	if s.failItemVariableAt == s.createVariableCalls {
		return errors.New("variable write failed")
	}
	s.itemVariables[itemID] = append(s.itemVariables[itemID], sel)
	return nil
}

func (s *memStore) ListItemIDs(_ context.Context, quoteID string) ([]string, error) {
	s.calls++
	var ids []string
	for id, it := range s.items {
		if it.QuoteID == quoteID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *memStore) DeleteItem(_ context.Context, itemID string) error {
	s.calls++
	delete(s.items, itemID)
	delete(s.itemVariables, itemID)
	return nil
}

func (s *memStore) itemsFor(quoteID string) []string {
	ids, _ := s.ListItemIDs(context.Background(), quoteID)
	return ids
}

func pricedItem(productID, cost string, sels ...Selection) PricedItem {
	excl := dec(cost)
	return PricedItem{
		ItemDraft: ItemDraft{
			ProductID:    productID,
			Measurements: Measurements{Quantity: dec("1")},
			Selections:   sels,
		},
		CostExclGST: excl,
		CostInclGST: ApplyGST(excl),
	}
}

func seedQuote(t *testing.T, store *memStore, itemCount int) string {
	t.Helper()
	var items []PricedItem
	for i := 0; i < itemCount; i++ {
		items = append(items, pricedItem(fmt.Sprintf("p%d", i), "10"))
	}
	res, err := SaveQuote(context.Background(), store, SaveQuoteRequest{JobID: "job1", Items: items})
	if err != nil {
		t.Fatalf("seed quote: %v", err)
	}
	return res.QuoteID
}

func TestSaveQuote_Create(t *testing.T) {
	store := newMemStore()
	req := SaveQuoteRequest{
		JobID: "job1",
		Items: []PricedItem{
			pricedItem("p1", "22", Selection{VariableID: "v1", OptionID: "o1"}, Selection{VariableID: "v2", OptionID: "o5"}),
			pricedItem("p2", "78"),
		},
	}

	res, err := SaveQuote(context.Background(), store, req)
	if err != nil {
		t.Fatalf("SaveQuote() error = %v", err)
	}
	if !res.Created {
		t.Error("expected Created = true")
	}
	if len(res.ItemIDs) != 2 {
		t.Fatalf("expected 2 item ids, got %d", len(res.ItemIDs))
	}
	if got := store.quotes[res.QuoteID]; !got.ExclGST.Equal(dec("100")) || !got.InclGST.Equal(dec("110")) {
		t.Errorf("quote totals = %s / %s, want 100 / 110", got.ExclGST, got.InclGST)
	}
	if n := len(store.itemVariables[res.ItemIDs[0]]); n != 2 {
		t.Errorf("expected 2 item variables on first item, got %d", n)
	}
	if got := store.items[res.ItemIDs[1]].SortOrder; got != 2 {
		t.Errorf("expected sort order 2 on second item, got %d", got)
	}
}

func TestSaveQuote_CreateFailureCleansUp(t *testing.T) {
	store := newMemStore()
	store.failCreateItemAt = 2

	_, err := SaveQuote(context.Background(), store, SaveQuoteRequest{
		JobID: "job1",
		Items: []PricedItem{pricedItem("p1", "1"), pricedItem("p2", "2"), pricedItem("p3", "3")},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(store.items) != 0 {
		t.Errorf("expected no items left, got %d", len(store.items))
	}
	if len(store.quotes) != 0 {
		t.Errorf("expected orphaned quote to be deleted, got %d quotes", len(store.quotes))
	}
}

func TestSaveQuote_UpdateReplacesItems(t *testing.T) {
	store := newMemStore()
	quoteID := seedQuote(t, store, 2)
	before := store.itemsFor(quoteID)

	res, err := SaveQuote(context.Background(), store, SaveQuoteRequest{
		QuoteID: quoteID,
		Items:   []PricedItem{pricedItem("p9", "50"), pricedItem("p8", "25"), pricedItem("p7", "25")},
	})
	if err != nil {
		t.Fatalf("SaveQuote() error = %v", err)
	}
	if res.Created {
		t.Error("expected Created = false on update")
	}
	if res.Removed != 2 {
		t.Errorf("expected 2 removed items, got %d", res.Removed)
	}

	after := store.itemsFor(quoteID)
	if len(after) != 3 {
		t.Fatalf("expected 3 items after update, got %d", len(after))
	}
	for _, old := range before {
		if _, ok := store.items[old]; ok {
			t.Errorf("old item %s still present", old)
		}
	}
	if got := store.quotes[quoteID]; !got.InclGST.Equal(dec("110")) {
		t.Errorf("quote incl total = %s, want 110", got.InclGST)
	}
}

func TestSaveQuote_UpdateFailureKeepsOriginalItems(t *testing.T) {
	store := newMemStore()
	quoteID := seedQuote(t, store, 2)
	original := store.itemsFor(quoteID)
	originalTotals := store.quotes[quoteID]

	// Seeding made 2 CreateItem calls; the 3rd replacement is call 5.
	store.failCreateItemAt = store.createItemCalls + 3

	_, err := SaveQuote(context.Background(), store, SaveQuoteRequest{
		QuoteID: quoteID,
		Items:   []PricedItem{pricedItem("p1", "1"), pricedItem("p2", "2"), pricedItem("p3", "3")},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	remaining := store.itemsFor(quoteID)
	if len(remaining) != 2 {
		t.Fatalf("expected original 2 items to remain, got %d", len(remaining))
	}
	for i := range original {
		if remaining[i] != original[i] {
			t.Errorf("item %d: got %s, want original %s", i, remaining[i], original[i])
		}
	}
	if got := store.quotes[quoteID]; !got.ExclGST.Equal(originalTotals.ExclGST) {
		t.Errorf("quote totals changed on failed update: %s", got.ExclGST)
	}
}

func TestSaveQuote_ItemVariableFailureRollsBack(t *testing.T) {
	store := newMemStore()
	quoteID := seedQuote(t, store, 1)
	store.failItemVariableAt = 2

	_, err := SaveQuote(context.Background(), store, SaveQuoteRequest{
		QuoteID: quoteID,
		Items: []PricedItem{
			pricedItem("p1", "1", Selection{VariableID: "v1", OptionID: "o1"}),
			pricedItem("p2", "2", Selection{VariableID: "v2", OptionID: "o2"}),
		},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if n := len(store.itemsFor(quoteID)); n != 1 {
		t.Errorf("expected only the original item, got %d", n)
	}
	if len(store.itemVariables) != 0 {
		t.Errorf("expected no item variables left, got %d", len(store.itemVariables))
	}
}

func TestSaveQuote_TotalsFailureRollsBack(t *testing.T) {
	store := newMemStore()
	quoteID := seedQuote(t, store, 2)
	store.failUpdateTotals = true

	_, err := SaveQuote(context.Background(), store, SaveQuoteRequest{
		QuoteID: quoteID,
		Items:   []PricedItem{pricedItem("p1", "1")},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if n := len(store.itemsFor(quoteID)); n != 2 {
		t.Errorf("expected 2 original items, got %d", n)
	}
}

func TestSaveQuote_ValidationBeforeWrites(t *testing.T) {
	tests := []struct {
		name   string
		items  []PricedItem
		expect error
	}{
		{"no items", nil, ErrNoItems},
		{"missing product", []PricedItem{pricedItem("p1", "1"), pricedItem("", "1")}, ErrMissingProduct},
		{
			"duplicate variable",
			[]PricedItem{pricedItem("p1", "1",
				Selection{VariableID: "v1", OptionID: "o1"},
				Selection{VariableID: "v1", OptionID: "o2"})},
			ErrDuplicateVariable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			_, err := SaveQuote(context.Background(), store, SaveQuoteRequest{JobID: "job1", Items: tt.items})
			if !errors.Is(err, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, err)
			}
			if !IsValidationError(err) {
				t.Errorf("IsValidationError(%v) = false", err)
			}
			if store.calls != 0 {
				t.Errorf("expected no store calls, got %d", store.calls)
			}
		})
	}
}

func TestValidateDrafts(t *testing.T) {
	tests := []struct {
		name   string
		drafts []ItemDraft
		expect error
	}{
		{"ok", []ItemDraft{{ProductID: "p1", Selections: []Selection{{VariableID: "v1", OptionID: "o1"}}}}, nil},
		{"no items", nil, ErrNoItems},
		{"missing product", []ItemDraft{{}}, ErrMissingProduct},
		{"duplicate variable", []ItemDraft{{ProductID: "p1", Selections: []Selection{
			{VariableID: "v1", OptionID: "o1"},
			{VariableID: "v1", OptionID: "o2"},
		}}}, ErrDuplicateVariable},
		{"unchosen option alongside chosen one", []ItemDraft{{ProductID: "p1", Selections: []Selection{
			{VariableID: "v1", OptionID: ""},
			{VariableID: "v1", OptionID: "o1"},
		}}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateDrafts(tt.drafts); !errors.Is(err, tt.expect) {
				t.Errorf("ValidateDrafts() = %v, want %v", err, tt.expect)
			}
		})
	}
}

func TestSaveQuote_CreateRequiresJob(t *testing.T) {
	store := newMemStore()
	_, err := SaveQuote(context.Background(), store, SaveQuoteRequest{Items: []PricedItem{pricedItem("p1", "1")}})
	if !errors.Is(err, ErrMissingJob) {
		t.Fatalf("expected ErrMissingJob, got %v", err)
	}
}

func TestSaveQuote_CancelledContextStillRollsBack(t *testing.T) {
	store := newMemStore()
	quoteID := seedQuote(t, store, 1)
	store.failCreateItemAt = store.createItemCalls + 2

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SaveQuote(ctx, store, SaveQuoteRequest{
		QuoteID: quoteID,
		Items:   []PricedItem{pricedItem("p1", "1"), pricedItem("p2", "2")},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if n := len(store.itemsFor(quoteID)); n != 1 {
		t.Errorf("expected 1 item after rollback, got %d", n)
	}
}

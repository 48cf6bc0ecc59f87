package storage

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/firegeo/brand-monitor/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUsageRepositoryCreateAndList(t *testing.T) {
	repo := NewUsageRepository(newTestDB(t))
	ctx := context.Background()

	record := &model.UsageRecord{
		Provider:         "OpenAI",
		Model:            "gpt-4o",
		PromptTokens:     100,
		CompletionTokens: 50,
		TotalTokens:      150,
		CostEstimate:     0.00075,
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if record.ID == 0 {
		t.Error("Create() should set the record ID")
	}

	records, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("listed %d records, want 1", len(records))
	}
	got := records[0]
	if got.Provider != "OpenAI" || got.Model != "gpt-4o" || got.TotalTokens != 150 {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at should be set by the database")
	}
}

func TestUsageRepositoryListLimit(t *testing.T) {
	repo := NewUsageRepository(newTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		record := &model.UsageRecord{Provider: "OpenAI", Model: "gpt-4o", TotalTokens: 10}
		if err := repo.Create(ctx, record); err != nil {
			t.Fatal(err)
		}
	}

	records, err := repo.List(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("listed %d records, want 3", len(records))
	}
	// Newest first.
	if records[0].ID <= records[1].ID {
		t.Errorf("expected descending order, got ids %d, %d", records[0].ID, records[1].ID)
	}
}

func TestUsageRepositoryTotals(t *testing.T) {
	repo := NewUsageRepository(newTestDB(t))
	ctx := context.Background()

	entries := []model.UsageRecord{
		{Provider: "OpenAI", Model: "gpt-4o", TotalTokens: 100, CostEstimate: 0.5},
		{Provider: "OpenAI", Model: "gpt-4o", TotalTokens: 200, CostEstimate: 1.0},
		{Provider: "Google", Model: "gemini-2.5-flash", TotalTokens: 50, CostEstimate: 0.1},
	}
	for i := range entries {
		if err := repo.Create(ctx, &entries[i]); err != nil {
			t.Fatal(err)
		}
	}

	totals, err := repo.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals() error: %v", err)
	}
	if totals.TotalTokens != 350 {
		t.Errorf("total tokens = %d, want 350", totals.TotalTokens)
	}
	if totals.Calls != 3 {
		t.Errorf("calls = %d, want 3", totals.Calls)
	}

	byProvider, err := repo.TotalsByProvider(ctx)
	if err != nil {
		t.Fatalf("TotalsByProvider() error: %v", err)
	}
	if len(byProvider) != 2 {
		t.Fatalf("providers = %d, want 2", len(byProvider))
	}
	// Ordered by provider name: Google then OpenAI.
	if byProvider[0].Provider != "Google" || byProvider[0].TotalTokens != 50 {
		t.Errorf("unexpected first row: %+v", byProvider[0])
	}
	if byProvider[1].Provider != "OpenAI" || byProvider[1].Calls != 2 {
		t.Errorf("unexpected second row: %+v", byProvider[1])
	}
}

func TestUsageRepositoryTotalsEmpty(t *testing.T) {
	repo := NewUsageRepository(newTestDB(t))

	totals, err := repo.Totals(context.Background())
	if err != nil {
		t.Fatalf("Totals() error: %v", err)
	}
	if totals.TotalTokens != 0 || totals.TotalCost != 0 || totals.Calls != 0 {
		t.Errorf("empty table totals should be zero: %+v", totals)
	}
}

func TestAnalysisRepositoryRoundTrip(t *testing.T) {
	repo := NewAnalysisRepository(newTestDB(t))
	ctx := context.Background()

	doc, _ := json.Marshal(map[string]string{"target_brand": "Acme"})
	record := &model.AnalysisRecord{
		TargetBrand:      "Acme",
		CompetitorCount:  2,
		TotalPrompts:     3,
		CompletedPrompts: 3,
		DurationSeconds:  12.5,
		TotalCost:        0.042,
		ResultJSON:       string(doc),
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := repo.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.TargetBrand != "Acme" || got.CompetitorCount != 2 {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.ResultJSON != string(doc) {
		t.Errorf("result json altered: %q", got.ResultJSON)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestAnalysisRepositoryNotFound(t *testing.T) {
	repo := NewAnalysisRepository(newTestDB(t))

	_, err := repo.GetByID(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAnalysisRepositoryList(t *testing.T) {
	repo := NewAnalysisRepository(newTestDB(t))
	ctx := context.Background()

	for _, brand := range []string{"Acme", "Bolt", "Crux"} {
		record := &model.AnalysisRecord{TargetBrand: brand}
		if err := repo.Create(ctx, record); err != nil {
			t.Fatal(err)
		}
	}

	records, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("listed %d records, want 2", len(records))
	}
	// Newest first.
	if records[0].TargetBrand != "Crux" {
		t.Errorf("first record = %q, want Crux", records[0].TargetBrand)
	}
}

func TestNewDatabaseCreatesSchema(t *testing.T) {
	db := newTestDB(t)

	var tables []string
	err := db.Select(&tables,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('usage_records', 'analyses') ORDER BY name")
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 2 {
		t.Errorf("expected both tables, got %v", tables)
	}
}

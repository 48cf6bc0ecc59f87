package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/firegeo/brand-monitor/internal/model"
)

// UsageTotals aggregates persisted usage for the stats endpoints.
type UsageTotals struct {
	TotalTokens int64   `db:"total_tokens" json:"total_tokens"`
	TotalCost   float64 `db:"total_cost" json:"total_cost"`
	Calls       int64   `db:"calls" json:"calls"`
}

// ProviderUsage is UsageTotals broken down by provider.
type ProviderUsage struct {
	Provider string `db:"provider" json:"provider"`
	UsageTotals
}

// UsageRepository persists per-call token usage records.
type UsageRepository interface {
	Create(ctx context.Context, record *model.UsageRecord) error
	List(ctx context.Context, limit int) ([]model.UsageRecord, error)
	Totals(ctx context.Context) (*UsageTotals, error)
	TotalsByProvider(ctx context.Context) ([]ProviderUsage, error)
}

type sqliteUsageRepository struct {
	db *sqlx.DB
}

// NewUsageRepository creates a SQLite-backed UsageRepository.
func NewUsageRepository(db *sqlx.DB) UsageRepository {
	return &sqliteUsageRepository{db: db}
}

func (r *sqliteUsageRepository) Create(ctx context.Context, record *model.UsageRecord) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO usage_records (provider, model, prompt_tokens, completion_tokens, total_tokens, search_requests, cost_estimate)
		VALUES (:provider, :model, :prompt_tokens, :completion_tokens, :total_tokens, :search_requests, :cost_estimate)
	`, record)
	if err != nil {
		return fmt.Errorf("creating usage record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	record.ID = id
	return nil
}

func (r *sqliteUsageRepository) List(ctx context.Context, limit int) ([]model.UsageRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var records []model.UsageRecord
	err := r.db.SelectContext(ctx, &records,
		"SELECT * FROM usage_records ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing usage records: %w", err)
	}
	return records, nil
}

func (r *sqliteUsageRepository) Totals(ctx context.Context) (*UsageTotals, error) {
	var totals UsageTotals
	err := r.db.GetContext(ctx, &totals, `
		SELECT COALESCE(SUM(total_tokens), 0) AS total_tokens,
		       COALESCE(SUM(cost_estimate), 0) AS total_cost,
		       COUNT(*) AS calls
		FROM usage_records
	`)
	if err != nil {
		return nil, fmt.Errorf("computing usage totals: %w", err)
	}
	return &totals, nil
}

func (r *sqliteUsageRepository) TotalsByProvider(ctx context.Context) ([]ProviderUsage, error) {
	var rows []ProviderUsage
	err := r.db.SelectContext(ctx, &rows, `
		SELECT provider,
		       COALESCE(SUM(total_tokens), 0) AS total_tokens,
		       COALESCE(SUM(cost_estimate), 0) AS total_cost,
		       COUNT(*) AS calls
		FROM usage_records
		GROUP BY provider
		ORDER BY provider
	`)
	if err != nil {
		return nil, fmt.Errorf("computing per-provider usage: %w", err)
	}
	return rows, nil
}

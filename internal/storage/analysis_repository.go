package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/firegeo/brand-monitor/internal/model"
)

// ErrNotFound is returned when a requested analysis record does not exist.
// Callers check with errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("analysis not found")

// AnalysisRepository persists completed-run summaries together with their
// full JSON export documents.
type AnalysisRepository interface {
	Create(ctx context.Context, record *model.AnalysisRecord) error
	GetByID(ctx context.Context, id int64) (*model.AnalysisRecord, error)
	List(ctx context.Context, limit int) ([]model.AnalysisRecord, error)
	Count(ctx context.Context) (int64, error)
}

type sqliteAnalysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a SQLite-backed AnalysisRepository.
func NewAnalysisRepository(db *sqlx.DB) AnalysisRepository {
	return &sqliteAnalysisRepository{db: db}
}

func (r *sqliteAnalysisRepository) Create(ctx context.Context, record *model.AnalysisRecord) error {
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO analyses (target_brand, competitor_count, total_prompts, completed_prompts, duration_seconds, total_cost, result_json)
		VALUES (:target_brand, :competitor_count, :total_prompts, :completed_prompts, :duration_seconds, :total_cost, :result_json)
	`, record)
	if err != nil {
		return fmt.Errorf("creating analysis record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	record.ID = id
	return nil
}

func (r *sqliteAnalysisRepository) GetByID(ctx context.Context, id int64) (*model.AnalysisRecord, error) {
	var record model.AnalysisRecord
	err := r.db.GetContext(ctx, &record, "SELECT * FROM analyses WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting analysis %d: %w", id, err)
	}
	return &record, nil
}

func (r *sqliteAnalysisRepository) List(ctx context.Context, limit int) ([]model.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []model.AnalysisRecord
	err := r.db.SelectContext(ctx, &records,
		"SELECT * FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing analyses: %w", err)
	}
	return records, nil
}

func (r *sqliteAnalysisRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM analyses")
	if err != nil {
		return 0, fmt.Errorf("counting analyses: %w", err)
	}
	return count, nil
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/basel-ax/diffusionto/internal/domain"
)

// HistoryRepository defines the interface for generation history access
type HistoryRepository interface {
	EnsureSchema(ctx context.Context) error
	Save(ctx context.Context, rec *domain.GenerationRecord) error
	ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error)
}

// PostgresHistoryRepository implements HistoryRepository for PostgreSQL
type PostgresHistoryRepository struct {
	db *sql.DB
}

// NewPostgresHistoryRepository creates a new PostgreSQL history repository
func NewPostgresHistoryRepository(db *sql.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

const createGenerationsTable = `
	CREATE TABLE IF NOT EXISTS generations (
		id              BIGSERIAL PRIMARY KEY,
		run_id          UUID NOT NULL,
		token           TEXT NOT NULL,
		prompt          TEXT NOT NULL,
		negative_prompt TEXT NOT NULL DEFAULT '',
		steps           INTEGER NOT NULL,
		model           TEXT NOT NULL,
		size            TEXT NOT NULL,
		orientation     TEXT NOT NULL,
		image_id        BIGINT NOT NULL,
		credits_used    BIGINT NOT NULL,
		output_path     TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// EnsureSchema creates the generations table when it does not exist
func (r *PostgresHistoryRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createGenerationsTable); err != nil {
		return fmt.Errorf("failed to create generations table: %w", err)
	}
	return nil
}

// Save inserts a finished generation and fills in its ID and creation time
func (r *PostgresHistoryRepository) Save(ctx context.Context, rec *domain.GenerationRecord) error {
	query := `
		INSERT INTO generations (
			run_id, token, prompt, negative_prompt, steps, model, size,
			orientation, image_id, credits_used, output_path
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		rec.RunID,
		rec.Token,
		rec.Prompt,
		rec.NegativePrompt,
		rec.Steps,
		rec.Model,
		rec.Size,
		rec.Orientation,
		int64(rec.ImageID),
		int64(rec.CreditsUsed),
		rec.OutputPath,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save generation: %w", err)
	}
	return nil
}

// ListRecent returns the newest generations first
func (r *PostgresHistoryRepository) ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	query := `
		SELECT id, run_id, token, prompt, negative_prompt, steps, model, size,
			orientation, image_id, credits_used, output_path, created_at
		FROM generations
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	var records []domain.GenerationRecord
	for rows.Next() {
		var (
			rec              domain.GenerationRecord
			imageID, credits int64
		)
		err := rows.Scan(
			&rec.ID,
			&rec.RunID,
			&rec.Token,
			&rec.Prompt,
			&rec.NegativePrompt,
			&rec.Steps,
			&rec.Model,
			&rec.Size,
			&rec.Orientation,
			&imageID,
			&credits,
			&rec.OutputPath,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		rec.ImageID = uint64(imageID)
		rec.CreditsUsed = uint64(credits)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}

	return records, nil
}

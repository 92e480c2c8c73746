// internal/repository/postgres/analysis_repo.go
package postgres

import (
	"context"
	"fmt"

	"adscreen-service/internal/domain/offer"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AnalysisRepository struct {
	db *pgxpool.Pool
}

func NewAnalysisRepository(db *pgxpool.Pool) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) Create(ctx context.Context, a *offer.Analysis) error {
	query := `
		INSERT INTO offer_analyses (offer_id, requested_by, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, a.OfferID, a.RequestedBy, a.Status).Scan(&a.ID, &a.CreatedAt)
	return mapError(err, "failed to create offer analysis")
}

// Finish records the terminal state of an analysis, completed or failed.
func (r *AnalysisRepository) Finish(ctx context.Context, a *offer.Analysis) error {
	query := `
		UPDATE offer_analyses
		SET status = $2, score = $3, suggestions = $4, raw = $5, error = $6, completed_at = NOW()
		WHERE id = $1
		RETURNING completed_at
	`
	err := r.db.QueryRow(ctx, query, a.ID, a.Status, a.Score, a.Suggestions, a.Raw, a.Error).Scan(&a.CompletedAt)
	return mapError(err, "failed to finish offer analysis")
}

func (r *AnalysisRepository) ListByOffer(ctx context.Context, offerID int64) ([]offer.Analysis, error) {
	query := `
		SELECT id, offer_id, requested_by, status, score, suggestions, raw, error, created_at, completed_at
		FROM offer_analyses
		WHERE offer_id = $1
		ORDER BY created_at DESC
		LIMIT 50
	`
	rows, err := r.db.Query(ctx, query, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offer analyses: %w", err)
	}
	defer rows.Close()

	analyses := []offer.Analysis{}
	for rows.Next() {
		var a offer.Analysis
		if err := rows.Scan(&a.ID, &a.OfferID, &a.RequestedBy, &a.Status, &a.Score, &a.Suggestions,
			&a.Raw, &a.Error, &a.CreatedAt, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan offer analysis: %w", err)
		}
		analyses = append(analyses, a)
	}
	return analyses, rows.Err()
}

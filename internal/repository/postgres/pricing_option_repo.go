// internal/repository/postgres/pricing_option_repo.go
package postgres

import (
	"context"
	"fmt"

	"adscreen-service/internal/domain/screen"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PricingOptionRepository struct {
	db *pgxpool.Pool
}

func NewPricingOptionRepository(db *pgxpool.Pool) *PricingOptionRepository {
	return &PricingOptionRepository{db: db}
}

const pricingOptionColumns = `
	id, location_id, label_en, label_ar, unit, price, min_duration, max_duration, is_active, created_at, updated_at`

func scanPricingOption(row pgx.Row) (*screen.PricingOption, error) {
	var p screen.PricingOption
	err := row.Scan(&p.ID, &p.LocationID, &p.LabelEn, &p.LabelAr, &p.Unit, &p.Price,
		&p.MinDuration, &p.MaxDuration, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PricingOptionRepository) Create(ctx context.Context, p *screen.PricingOption) error {
	query := `
		INSERT INTO screen_pricing_options (location_id, label_en, label_ar, unit, price, min_duration, max_duration, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, p.LocationID, p.LabelEn, p.LabelAr, p.Unit, p.Price,
		p.MinDuration, p.MaxDuration, p.IsActive).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapError(err, "failed to create pricing option")
}

func (r *PricingOptionRepository) Update(ctx context.Context, p *screen.PricingOption) error {
	query := `
		UPDATE screen_pricing_options
		SET label_en = $2, label_ar = $3, price = $4, min_duration = $5, max_duration = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, p.ID, p.LabelEn, p.LabelAr, p.Price,
		p.MinDuration, p.MaxDuration, p.IsActive).Scan(&p.UpdatedAt)
	return mapError(err, "failed to update pricing option")
}

// Deactivate hides an option; bookings keep their reference to it.
func (r *PricingOptionRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE screen_pricing_options SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "failed to deactivate pricing option")
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "")
	}
	return nil
}

func (r *PricingOptionRepository) FindByID(ctx context.Context, id int64) (*screen.PricingOption, error) {
	p, err := scanPricingOption(r.db.QueryRow(ctx, `SELECT `+pricingOptionColumns+` FROM screen_pricing_options WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "failed to find pricing option")
	}
	return p, nil
}

func (r *PricingOptionRepository) ListByLocation(ctx context.Context, locationID int64, includeInactive bool) ([]screen.PricingOption, error) {
	query := `SELECT ` + pricingOptionColumns + ` FROM screen_pricing_options
		WHERE location_id = $1 AND (is_active OR $2) ORDER BY price`
	rows, err := r.db.Query(ctx, query, locationID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list pricing options: %w", err)
	}
	defer rows.Close()

	options := []screen.PricingOption{}
	for rows.Next() {
		p, err := scanPricingOption(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pricing option: %w", err)
		}
		options = append(options, *p)
	}
	return options, rows.Err()
}

// internal/repository/postgres/subscription_plans.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"adscreen-service/internal/domain/subscription"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionPlanRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionPlanRepository(db *pgxpool.Pool) *SubscriptionPlanRepository {
	return &SubscriptionPlanRepository{db: db}
}

const planColumns = `
	id, name, display_name_en, display_name_ar, price, currency, offer_quota, screen_quota,
	features, is_active, sort_order, created_at, updated_at`

func scanPlan(row pgx.Row) (*subscription.Plan, error) {
	var p subscription.Plan
	var featuresJSON []byte

	err := row.Scan(&p.ID, &p.Name, &p.DisplayNameEn, &p.DisplayNameAr, &p.Price, &p.Currency,
		&p.OfferQuota, &p.ScreenQuota, &featuresJSON, &p.IsActive, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Features, err = unmarshalFeatures(featuresJSON); err != nil {
		return nil, err
	}
	return &p, nil
}

func unmarshalFeatures(b []byte) ([]string, error) {
	features := []string{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &features); err != nil {
			return nil, fmt.Errorf("failed to unmarshal features: %w", err)
		}
	}
	return features, nil
}

func marshalFeatures(features []string) ([]byte, error) {
	if features == nil {
		features = []string{}
	}
	b, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal features: %w", err)
	}
	return b, nil
}

// Create creates a new subscription plan
func (r *SubscriptionPlanRepository) Create(ctx context.Context, p *subscription.Plan) error {
	featuresJSON, err := marshalFeatures(p.Features)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO subscription_plans (
			name, display_name_en, display_name_ar, price, currency, offer_quota, screen_quota,
			features, is_active, sort_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query,
		p.Name, p.DisplayNameEn, p.DisplayNameAr, p.Price, p.Currency, p.OfferQuota, p.ScreenQuota,
		featuresJSON, p.IsActive, p.SortOrder,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapError(err, "failed to create subscription plan")
}

func (r *SubscriptionPlanRepository) Update(ctx context.Context, p *subscription.Plan) error {
	featuresJSON, err := marshalFeatures(p.Features)
	if err != nil {
		return err
	}

	query := `
		UPDATE subscription_plans SET
			display_name_en = $2, display_name_ar = $3, price = $4, offer_quota = $5, screen_quota = $6,
			features = $7, is_active = $8, sort_order = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err = r.db.QueryRow(ctx, query,
		p.ID, p.DisplayNameEn, p.DisplayNameAr, p.Price, p.OfferQuota, p.ScreenQuota,
		featuresJSON, p.IsActive, p.SortOrder,
	).Scan(&p.UpdatedAt)
	return mapError(err, "failed to update subscription plan")
}

// FindByID retrieves a subscription plan by ID
func (r *SubscriptionPlanRepository) FindByID(ctx context.Context, id int64) (*subscription.Plan, error) {
	return findPlan(ctx, r.db, id)
}

func (r *SubscriptionPlanRepository) FindByIDTx(ctx context.Context, tx pgx.Tx, id int64) (*subscription.Plan, error) {
	return findPlan(ctx, tx, id)
}

func findPlan(ctx context.Context, q querier, id int64) (*subscription.Plan, error) {
	p, err := scanPlan(q.QueryRow(ctx, `SELECT `+planColumns+` FROM subscription_plans WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "failed to find subscription plan")
	}
	return p, nil
}

func (r *SubscriptionPlanRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM subscription_plans WHERE name = $1)`, name).Scan(&exists)
	return exists, mapError(err, "failed to check plan name")
}

func (r *SubscriptionPlanRepository) List(ctx context.Context, includeInactive bool) ([]subscription.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans WHERE is_active OR $1 ORDER BY sort_order, price`
	rows, err := r.db.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription plans: %w", err)
	}
	defer rows.Close()

	plans := []subscription.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

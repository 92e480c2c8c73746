// internal/repository/postgres/merchant_subscription_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"adscreen-service/internal/domain/subscription"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MerchantSubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewMerchantSubscriptionRepository(db *pgxpool.Pool) *MerchantSubscriptionRepository {
	return &MerchantSubscriptionRepository{db: db}
}

const merchantSubscriptionColumns = `
	id, merchant_id, plan_id, invoice_id, start_date, end_date, status, auto_renew, cancelled_at, created_at, updated_at`

func scanMerchantSubscription(row pgx.Row) (*subscription.MerchantSubscription, error) {
	var s subscription.MerchantSubscription
	err := row.Scan(&s.ID, &s.MerchantID, &s.PlanID, &s.InvoiceID, &s.StartDate, &s.EndDate,
		&s.Status, &s.AutoRenew, &s.CancelledAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateTx inserts a subscription. A second active row for the merchant
// fails on ux_merchant_subscriptions_active.
func (r *MerchantSubscriptionRepository) CreateTx(ctx context.Context, tx pgx.Tx, s *subscription.MerchantSubscription) error {
	query := `
		INSERT INTO merchant_subscriptions (merchant_id, plan_id, invoice_id, start_date, end_date, status, auto_renew)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query, s.MerchantID, s.PlanID, s.InvoiceID, s.StartDate, s.EndDate, s.Status, s.AutoRenew).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapError(err, "failed to create merchant subscription")
}

// CancelActiveTx cancels whatever subscription is currently active for the
// merchant and returns the ids it touched.
func (r *MerchantSubscriptionRepository) CancelActiveTx(ctx context.Context, tx pgx.Tx, merchantID int64, at time.Time) ([]int64, error) {
	rows, err := tx.Query(ctx, `
		UPDATE merchant_subscriptions
		SET status = 'cancelled', cancelled_at = $2, auto_renew = FALSE, updated_at = NOW()
		WHERE merchant_id = $1 AND status = 'active'
		RETURNING id
	`, merchantID, at)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel active subscriptions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to cancel active subscriptions: %w", err)
	}
	return ids, nil
}

// ExpireTx marks a single subscription expired if it is still active.
func (r *MerchantSubscriptionRepository) ExpireTx(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE merchant_subscriptions SET status = 'expired', updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`, id)
	if err != nil {
		return false, fmt.Errorf("failed to expire subscription: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// FindActiveByMerchant returns the merchant's active subscription with its plan.
func (r *MerchantSubscriptionRepository) FindActiveByMerchant(ctx context.Context, merchantID int64) (*subscription.MerchantSubscription, error) {
	query := `
		SELECT ` + prefixed("s", merchantSubscriptionColumns) + `, ` + prefixed("p", planColumns) + `
		FROM merchant_subscriptions s
		JOIN subscription_plans p ON p.id = s.plan_id
		WHERE s.merchant_id = $1 AND s.status = 'active'
	`
	var s subscription.MerchantSubscription
	var p subscription.Plan
	var featuresJSON []byte
	err := r.db.QueryRow(ctx, query, merchantID).Scan(
		&s.ID, &s.MerchantID, &s.PlanID, &s.InvoiceID, &s.StartDate, &s.EndDate,
		&s.Status, &s.AutoRenew, &s.CancelledAt, &s.CreatedAt, &s.UpdatedAt,
		&p.ID, &p.Name, &p.DisplayNameEn, &p.DisplayNameAr, &p.Price, &p.Currency,
		&p.OfferQuota, &p.ScreenQuota, &featuresJSON, &p.IsActive, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "failed to find active subscription")
	}
	if p.Features, err = unmarshalFeatures(featuresJSON); err != nil {
		return nil, err
	}
	s.Plan = &p
	return &s, nil
}

func (r *MerchantSubscriptionRepository) ListByMerchant(ctx context.Context, merchantID int64) ([]subscription.MerchantSubscription, error) {
	query := `SELECT ` + merchantSubscriptionColumns + ` FROM merchant_subscriptions WHERE merchant_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, merchantID)
}

// FindEnded lists active subscriptions whose period ended before now.
func (r *MerchantSubscriptionRepository) FindEnded(ctx context.Context, now time.Time) ([]subscription.MerchantSubscription, error) {
	query := `SELECT ` + merchantSubscriptionColumns + ` FROM merchant_subscriptions WHERE status = 'active' AND end_date < $1`
	return r.list(ctx, query, now)
}

func (r *MerchantSubscriptionRepository) list(ctx context.Context, query string, args ...any) ([]subscription.MerchantSubscription, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []subscription.MerchantSubscription{}
	for rows.Next() {
		s, err := scanMerchantSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

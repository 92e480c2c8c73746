// internal/domain/subscription/entity.go
package subscription

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
)

// Plan is a priced tier governing a merchant's offer and screen quotas.
type Plan struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	DisplayNameEn string          `json:"display_name_en" db:"display_name_en"`
	DisplayNameAr string          `json:"display_name_ar" db:"display_name_ar"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Currency      string          `json:"currency" db:"currency"`
	OfferQuota    int             `json:"offer_quota" db:"offer_quota"`
	ScreenQuota   int             `json:"screen_quota" db:"screen_quota"`
	Features      []string        `json:"features" db:"features"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	SortOrder     int             `json:"sort_order" db:"sort_order"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

func (p *Plan) IsFree() bool { return !p.Price.IsPositive() }

// MerchantSubscription links a merchant to a plan for a period. At most one
// row per merchant is active at a time.
type MerchantSubscription struct {
	ID          int64              `json:"id" db:"id"`
	MerchantID  int64              `json:"merchant_id" db:"merchant_id"`
	PlanID      int64              `json:"plan_id" db:"plan_id"`
	InvoiceID   *int64             `json:"invoice_id,omitempty" db:"invoice_id"`
	StartDate   time.Time          `json:"start_date" db:"start_date"`
	EndDate     time.Time          `json:"end_date" db:"end_date"`
	Status      SubscriptionStatus `json:"status" db:"status"`
	AutoRenew   bool               `json:"auto_renew" db:"auto_renew"`
	CancelledAt *time.Time         `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`

	Plan *Plan `json:"plan,omitempty"`
}

// PeriodEnd returns the end of a one month period starting at start.
func PeriodEnd(start time.Time) time.Time {
	return start.AddDate(0, 1, 0)
}

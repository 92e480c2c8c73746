// internal/domain/offer/entity.go
package offer

import (
	"time"

	"github.com/shopspring/decimal"
)

type OfferStatus string

const (
	OfferStatusDraft   OfferStatus = "draft"
	OfferStatusActive  OfferStatus = "active"
	OfferStatusPaused  OfferStatus = "paused"
	OfferStatusExpired OfferStatus = "expired"
)

type Category struct {
	ID        int64     `json:"id" db:"id"`
	NameEn    string    `json:"name_en" db:"name_en"`
	NameAr    string    `json:"name_ar" db:"name_ar"`
	Slug      string    `json:"slug" db:"slug"`
	Icon      *string   `json:"icon,omitempty" db:"icon"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Offer struct {
	ID         int64  `json:"id" db:"id"`
	MerchantID int64  `json:"merchant_id" db:"merchant_id"`
	CategoryID *int64 `json:"category_id,omitempty" db:"category_id"`

	TitleEn       string  `json:"title_en" db:"title_en"`
	TitleAr       string  `json:"title_ar" db:"title_ar"`
	DescriptionEn *string `json:"description_en,omitempty" db:"description_en"`
	DescriptionAr *string `json:"description_ar,omitempty" db:"description_ar"`
	Slug          string  `json:"slug" db:"slug"`

	OriginalPrice      decimal.Decimal `json:"original_price" db:"original_price"`
	DiscountedPrice    decimal.Decimal `json:"discounted_price" db:"discounted_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" db:"discount_percentage"`

	ImageURL *string    `json:"image_url,omitempty" db:"image_url"`
	City     *string    `json:"city,omitempty" db:"city"`
	StartsAt *time.Time `json:"starts_at,omitempty" db:"starts_at"`
	EndsAt   *time.Time `json:"ends_at,omitempty" db:"ends_at"`

	Status     OfferStatus `json:"status" db:"status"`
	IsFeatured bool        `json:"is_featured" db:"is_featured"`
	ViewCount  int64       `json:"view_count" db:"view_count"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// SavedOffer is a customer's bookmark of an offer.
type SavedOffer struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	OfferID   int64     `json:"offer_id" db:"offer_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Offer     *Offer    `json:"offer,omitempty"`
}

type AnalysisStatus string

const (
	AnalysisStatusPending   AnalysisStatus = "pending"
	AnalysisStatusCompleted AnalysisStatus = "completed"
	AnalysisStatusFailed    AnalysisStatus = "failed"
)

// Analysis is one AI review of an offer. Failed attempts are kept so the
// merchant can see them and retry.
type Analysis struct {
	ID          int64                  `json:"id" db:"id"`
	OfferID     int64                  `json:"offer_id" db:"offer_id"`
	RequestedBy int64                  `json:"requested_by" db:"requested_by"`
	Status      AnalysisStatus         `json:"status" db:"status"`
	Score       *int                   `json:"score,omitempty" db:"score"`
	Suggestions []string               `json:"suggestions,omitempty" db:"suggestions"`
	Raw         map[string]interface{} `json:"raw,omitempty" db:"raw"`
	Error       *string                `json:"error,omitempty" db:"error"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty" db:"completed_at"`
}

// DiscountPercent returns the rounded percentage saved, 0 when original is not positive.
func DiscountPercent(original, discounted decimal.Decimal) decimal.Decimal {
	if !original.IsPositive() || discounted.GreaterThanOrEqual(original) {
		return decimal.Zero
	}
	return original.Sub(discounted).Div(original).Mul(decimal.NewFromInt(100)).Round(2)
}

// internal/domain/subscription/dto.go
package subscription

import (
	"adscreen-service/internal/domain/invoice"
	"adscreen-service/internal/domain/payment"

	"github.com/shopspring/decimal"
)

type CreatePlanRequest struct {
	Name          string          `json:"name" binding:"required,max=50"`
	DisplayNameEn string          `json:"display_name_en" binding:"required,max=100"`
	DisplayNameAr string          `json:"display_name_ar" binding:"required,max=100"`
	Price         decimal.Decimal `json:"price" binding:"dec_gte0"`
	OfferQuota    int             `json:"offer_quota" binding:"min=0,max=100000"`
	ScreenQuota   int             `json:"screen_quota" binding:"min=0,max=100000"`
	Features      []string        `json:"features" binding:"omitempty,dive,max=255"`
	SortOrder     int             `json:"sort_order"`
}

type UpdatePlanRequest struct {
	DisplayNameEn *string          `json:"display_name_en" binding:"omitempty,max=100"`
	DisplayNameAr *string          `json:"display_name_ar" binding:"omitempty,max=100"`
	Price         *decimal.Decimal `json:"price" binding:"omitempty,dec_gte0"`
	OfferQuota    *int             `json:"offer_quota" binding:"omitempty,min=0,max=100000"`
	ScreenQuota   *int             `json:"screen_quota" binding:"omitempty,min=0,max=100000"`
	Features      []string         `json:"features" binding:"omitempty,dive,max=255"`
	IsActive      *bool            `json:"is_active"`
	SortOrder     *int             `json:"sort_order"`
}

type SubscribeRequest struct {
	PlanID int64 `json:"plan_id" binding:"required,min=1"`
}

// SubscribeResponse either carries the activated subscription (free plans) or
// the invoice plus checkout details the client pays through.
type SubscribeResponse struct {
	Subscription *MerchantSubscription `json:"subscription,omitempty"`
	Invoice      *invoice.Invoice      `json:"invoice,omitempty"`
	Checkout     *payment.CheckoutInfo `json:"checkout,omitempty"`
}

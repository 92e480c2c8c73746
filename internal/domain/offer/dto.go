// internal/domain/offer/dto.go
package offer

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateCategoryRequest struct {
	NameEn string `json:"name_en" binding:"required,max=100"`
	NameAr string `json:"name_ar" binding:"required,max=100"`
	Icon   string `json:"icon" binding:"omitempty,max=255"`
}

type UpdateCategoryRequest struct {
	NameEn   *string `json:"name_en" binding:"omitempty,max=100"`
	NameAr   *string `json:"name_ar" binding:"omitempty,max=100"`
	Icon     *string `json:"icon" binding:"omitempty,max=255"`
	IsActive *bool   `json:"is_active"`
}

type CreateOfferRequest struct {
	CategoryID      *int64          `json:"category_id" binding:"omitempty,min=1"`
	TitleEn         string          `json:"title_en" binding:"required,max=255"`
	TitleAr         string          `json:"title_ar" binding:"required,max=255"`
	DescriptionEn   string          `json:"description_en" binding:"omitempty,max=5000"`
	DescriptionAr   string          `json:"description_ar" binding:"omitempty,max=5000"`
	OriginalPrice   decimal.Decimal `json:"original_price" binding:"dec_gt0"`
	DiscountedPrice decimal.Decimal `json:"discounted_price" binding:"dec_gte0"`
	ImageURL        string          `json:"image_url" binding:"omitempty,max=1024"`
	City            string          `json:"city" binding:"omitempty,max=100"`
	StartsAt        *time.Time      `json:"starts_at"`
	EndsAt          *time.Time      `json:"ends_at"`
	Status          OfferStatus     `json:"status" binding:"omitempty,oneof=draft active paused"`
}

type UpdateOfferRequest struct {
	CategoryID      *int64           `json:"category_id" binding:"omitempty,min=1"`
	TitleEn         *string          `json:"title_en" binding:"omitempty,max=255"`
	TitleAr         *string          `json:"title_ar" binding:"omitempty,max=255"`
	DescriptionEn   *string          `json:"description_en" binding:"omitempty,max=5000"`
	DescriptionAr   *string          `json:"description_ar" binding:"omitempty,max=5000"`
	OriginalPrice   *decimal.Decimal `json:"original_price" binding:"omitempty,dec_gt0"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price" binding:"omitempty,dec_gte0"`
	ImageURL        *string          `json:"image_url" binding:"omitempty,max=1024"`
	City            *string          `json:"city" binding:"omitempty,max=100"`
	StartsAt        *time.Time       `json:"starts_at"`
	EndsAt          *time.Time       `json:"ends_at"`
	Status          *OfferStatus     `json:"status" binding:"omitempty,oneof=draft active paused"`
	IsFeatured      *bool            `json:"is_featured"`
}

type OfferListFilters struct {
	MerchantID *int64       `form:"-"`
	CategoryID *int64       `form:"category_id" binding:"omitempty,min=1"`
	City       string       `form:"city" binding:"omitempty,max=100"`
	Search     string       `form:"search" binding:"omitempty,max=100"`
	Featured   *bool        `form:"featured"`
	Status     *OfferStatus `form:"status" binding:"omitempty,oneof=draft active paused expired"`
	Page       int          `form:"page" binding:"omitempty,min=1"`
	PageSize   int          `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type OfferListResponse struct {
	Offers     []Offer `json:"offers"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}

// AnalysisResult is what the analyzer collaborator returns.
type AnalysisResult struct {
	Score       int                    `json:"score"`
	Suggestions []string               `json:"suggestions"`
	Raw         map[string]interface{} `json:"raw,omitempty"`
}

// internal/domain/screen/dto.go
package screen

import "github.com/shopspring/decimal"

type CreateLocationRequest struct {
	NameEn         string          `json:"name_en" binding:"required,max=255"`
	NameAr         string          `json:"name_ar" binding:"required,max=255"`
	AddressEn      string          `json:"address_en" binding:"omitempty,max=500"`
	AddressAr      string          `json:"address_ar" binding:"omitempty,max=500"`
	CityEn         string          `json:"city_en" binding:"required,max=100"`
	CityAr         string          `json:"city_ar" binding:"required,max=100"`
	NeighborhoodEn string          `json:"neighborhood_en" binding:"omitempty,max=100"`
	NeighborhoodAr string          `json:"neighborhood_ar" binding:"omitempty,max=100"`
	Latitude       *float64        `json:"latitude" binding:"omitempty,latitude"`
	Longitude      *float64        `json:"longitude" binding:"omitempty,longitude"`
	OpensAt        string          `json:"opens_at" binding:"omitempty,clock"`
	ClosesAt       string          `json:"closes_at" binding:"omitempty,clock"`
	ScreenCount    int             `json:"screen_count" binding:"required,min=1,max=500"`
	ScreenType     ScreenType      `json:"screen_type" binding:"required,oneof=indoor outdoor billboard mall"`
	ScreenSize     string          `json:"screen_size" binding:"omitempty,max=50"`
	DailyPrice     decimal.Decimal `json:"daily_price" binding:"dec_gt0"`
	ImageURL       string          `json:"image_url" binding:"omitempty,max=1024"`
}

type UpdateLocationRequest struct {
	NameEn         *string          `json:"name_en" binding:"omitempty,max=255"`
	NameAr         *string          `json:"name_ar" binding:"omitempty,max=255"`
	AddressEn      *string          `json:"address_en" binding:"omitempty,max=500"`
	AddressAr      *string          `json:"address_ar" binding:"omitempty,max=500"`
	CityEn         *string          `json:"city_en" binding:"omitempty,max=100"`
	CityAr         *string          `json:"city_ar" binding:"omitempty,max=100"`
	NeighborhoodEn *string          `json:"neighborhood_en" binding:"omitempty,max=100"`
	NeighborhoodAr *string          `json:"neighborhood_ar" binding:"omitempty,max=100"`
	Latitude       *float64         `json:"latitude" binding:"omitempty,latitude"`
	Longitude      *float64         `json:"longitude" binding:"omitempty,longitude"`
	OpensAt        *string          `json:"opens_at" binding:"omitempty,clock"`
	ClosesAt       *string          `json:"closes_at" binding:"omitempty,clock"`
	ScreenCount    *int             `json:"screen_count" binding:"omitempty,min=1,max=500"`
	ScreenType     *ScreenType      `json:"screen_type" binding:"omitempty,oneof=indoor outdoor billboard mall"`
	ScreenSize     *string          `json:"screen_size" binding:"omitempty,max=50"`
	DailyPrice     *decimal.Decimal `json:"daily_price" binding:"omitempty,dec_gt0"`
	ImageURL       *string          `json:"image_url" binding:"omitempty,max=1024"`
	IsActive       *bool            `json:"is_active"`
}

// LocationFilters are the public list filters. Near is "lat,lng".
type LocationFilters struct {
	City       string           `form:"city" binding:"omitempty,max=100"`
	MinPrice   *decimal.Decimal `form:"min_price"`
	MaxPrice   *decimal.Decimal `form:"max_price"`
	MinRating  *decimal.Decimal `form:"min_rating"`
	ScreenType ScreenType       `form:"screen_type" binding:"omitempty,oneof=indoor outdoor billboard mall"`
	Near       string           `form:"near" binding:"omitempty,max=64"`
	RadiusKm   float64          `form:"radius_km" binding:"omitempty,gt=0,lte=500"`

	// IncludeInactive is set by admin listings only.
	IncludeInactive bool `form:"-"`
}

type CreatePricingOptionRequest struct {
	LabelEn     string          `json:"label_en" binding:"required,max=100"`
	LabelAr     string          `json:"label_ar" binding:"required,max=100"`
	Unit        DurationUnit    `json:"unit" binding:"required,oneof=hour day week month"`
	Price       decimal.Decimal `json:"price" binding:"dec_gt0"`
	MinDuration *int            `json:"min_duration" binding:"omitempty,min=1"`
	MaxDuration *int            `json:"max_duration" binding:"omitempty,min=1"`
}

type UpdatePricingOptionRequest struct {
	LabelEn     *string          `json:"label_en" binding:"omitempty,max=100"`
	LabelAr     *string          `json:"label_ar" binding:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price" binding:"omitempty,dec_gt0"`
	MinDuration *int             `json:"min_duration" binding:"omitempty,min=1"`
	MaxDuration *int             `json:"max_duration" binding:"omitempty,min=1"`
	IsActive    *bool            `json:"is_active"`
}

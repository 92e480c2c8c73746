// internal/domain/screen/entity.go
package screen

import (
	"time"

	"github.com/shopspring/decimal"
)

type ScreenType string

const (
	ScreenTypeIndoor    ScreenType = "indoor"
	ScreenTypeOutdoor   ScreenType = "outdoor"
	ScreenTypeBillboard ScreenType = "billboard"
	ScreenTypeMall      ScreenType = "mall"
)

// Location is a physical digital-signage site.
type Location struct {
	ID             int64           `json:"id" db:"id"`
	NameEn         string          `json:"name_en" db:"name_en"`
	NameAr         string          `json:"name_ar" db:"name_ar"`
	AddressEn      *string         `json:"address_en,omitempty" db:"address_en"`
	AddressAr      *string         `json:"address_ar,omitempty" db:"address_ar"`
	CityEn         string          `json:"city_en" db:"city_en"`
	CityAr         string          `json:"city_ar" db:"city_ar"`
	NeighborhoodEn *string         `json:"neighborhood_en,omitempty" db:"neighborhood_en"`
	NeighborhoodAr *string         `json:"neighborhood_ar,omitempty" db:"neighborhood_ar"`
	Latitude       *float64        `json:"latitude,omitempty" db:"latitude"`
	Longitude      *float64        `json:"longitude,omitempty" db:"longitude"`
	OpensAt        *string         `json:"opens_at,omitempty" db:"opens_at"`
	ClosesAt       *string         `json:"closes_at,omitempty" db:"closes_at"`
	ScreenCount    int             `json:"screen_count" db:"screen_count"`
	ScreenType     ScreenType      `json:"screen_type" db:"screen_type"`
	ScreenSize     *string         `json:"screen_size,omitempty" db:"screen_size"`
	DailyPrice     decimal.Decimal `json:"daily_price" db:"daily_price"`
	Rating         decimal.Decimal `json:"rating" db:"rating"`
	ImageURL       *string         `json:"image_url,omitempty" db:"image_url"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`

	PricingOptions []PricingOption `json:"pricing_options,omitempty"`
	DistanceKm     *float64        `json:"distance_km,omitempty"`
}

type DurationUnit string

const (
	UnitHour  DurationUnit = "hour"
	UnitDay   DurationUnit = "day"
	UnitWeek  DurationUnit = "week"
	UnitMonth DurationUnit = "month"
)

// PricingOption is an alternative price tier for a location. Durations are
// expressed in Unit; a nil bound means unbounded.
type PricingOption struct {
	ID          int64           `json:"id" db:"id"`
	LocationID  int64           `json:"location_id" db:"location_id"`
	LabelEn     string          `json:"label_en" db:"label_en"`
	LabelAr     string          `json:"label_ar" db:"label_ar"`
	Unit        DurationUnit    `json:"unit" db:"unit"`
	Price       decimal.Decimal `json:"price" db:"price"`
	MinDuration *int            `json:"min_duration,omitempty" db:"min_duration"`
	MaxDuration *int            `json:"max_duration,omitempty" db:"max_duration"`
	IsActive    bool            `json:"is_active" db:"is_active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Allows reports whether duration falls within the option's bounds.
func (p *PricingOption) Allows(duration int) bool {
	if p.MinDuration != nil && duration < *p.MinDuration {
		return false
	}
	if p.MaxDuration != nil && duration > *p.MaxDuration {
		return false
	}
	return true
}

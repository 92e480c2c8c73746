// internal/domain/booking/entity.go
package booking

import (
	"time"

	"adscreen-service/internal/domain/screen"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusApproved  BookingStatus = "approved"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// ScreenBooking is a merchant's request to display media at a location.
// StartDate and EndDate are both inclusive.
type ScreenBooking struct {
	ID              int64               `json:"id" db:"id"`
	MerchantID      int64               `json:"merchant_id" db:"merchant_id"`
	LocationID      int64               `json:"location_id" db:"location_id"`
	PricingOptionID *int64              `json:"pricing_option_id,omitempty" db:"pricing_option_id"`
	CampaignTitle   *string             `json:"campaign_title,omitempty" db:"campaign_title"`
	StartDate       time.Time           `json:"start_date" db:"start_date"`
	EndDate         time.Time           `json:"end_date" db:"end_date"`
	Duration        int                 `json:"duration" db:"duration"`
	DurationUnit    screen.DurationUnit `json:"duration_unit" db:"duration_unit"`
	NumberOfScreens int                 `json:"number_of_screens" db:"number_of_screens"`
	UnitPrice       decimal.Decimal     `json:"unit_price" db:"unit_price"`
	TotalPrice      decimal.Decimal     `json:"total_price" db:"total_price"`
	Status          BookingStatus       `json:"status" db:"status"`
	MediaURL        *string             `json:"media_url,omitempty" db:"media_url"`
	MediaType       *MediaType          `json:"media_type,omitempty" db:"media_type"`
	MerchantNotes   *string             `json:"merchant_notes,omitempty" db:"merchant_notes"`
	AdminNotes      *string             `json:"admin_notes,omitempty" db:"admin_notes"`
	RejectionReason *string             `json:"rejection_reason,omitempty" db:"rejection_reason"`

	InvoiceGenerated bool    `json:"invoice_generated" db:"invoice_generated"`
	InvoiceNumber    *string `json:"invoice_number,omitempty" db:"invoice_number"`

	ApprovedAt  *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedBy  *int64     `json:"approved_by,omitempty" db:"approved_by"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty" db:"rejected_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

func (b *ScreenBooking) IsPending() bool { return b.Status == StatusPending }

// Overlaps reports whether the inclusive ranges [aStart, aEnd] and [bStart, bEnd]
// intersect: a starts inside b, a ends inside b, or a fully contains b.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	startsInside := !aStart.Before(bStart) && !aStart.After(bEnd)
	endsInside := !aEnd.Before(bStart) && !aEnd.After(bEnd)
	contains := !aStart.After(bStart) && !aEnd.Before(bEnd)
	return startsInside || endsInside || contains
}

// Availability is the answer to an availability check.
type Availability struct {
	IsAvailable         bool            `json:"is_available"`
	ConflictingBookings []ScreenBooking `json:"conflicting_bookings"`
}

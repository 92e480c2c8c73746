// internal/domain/booking/dto.go
package booking

import "github.com/shopspring/decimal"

// CreateBookingRequest is bound from JSON or multipart form. Dates accept
// "2006-01-02" or RFC3339. TotalCost is optional and only cross-checked.
type CreateBookingRequest struct {
	LocationID      int64            `json:"location_id" form:"location_id" binding:"required,min=1"`
	PricingOptionID *int64           `json:"pricing_option_id" form:"pricing_option_id" binding:"omitempty,min=1"`
	StartDate       string           `json:"start_date" form:"start_date" binding:"required"`
	EndDate         string           `json:"end_date" form:"end_date" binding:"required"`
	NumberOfScreens *int             `json:"number_of_screens" form:"number_of_screens" binding:"omitempty,min=1,max=500"`
	TotalCost       *decimal.Decimal `json:"total_cost" form:"total_cost"`
	CampaignTitle   string           `json:"campaign_title" form:"campaign_title" binding:"omitempty,max=255"`
	Notes           string           `json:"notes" form:"notes" binding:"omitempty,max=2000"`
}

type AvailabilityRequest struct {
	LocationID       int64  `json:"location_id" binding:"required,min=1"`
	StartDate        string `json:"start_date" binding:"required"`
	EndDate          string `json:"end_date" binding:"required"`
	ExcludeBookingID *int64 `json:"exclude_booking_id" binding:"omitempty,min=1"`
}

type ApproveRequest struct {
	AdminNotes string `json:"admin_notes" binding:"omitempty,max=2000"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=2000"`
}

type UpdateNotesRequest struct {
	AdminNotes string `json:"admin_notes" binding:"max=2000"`
}

type BookingListFilters struct {
	MerchantID *int64         `form:"merchant_id" binding:"omitempty,min=1"`
	LocationID *int64         `form:"location_id" binding:"omitempty,min=1"`
	Status     *BookingStatus `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled"`
	Page       int            `form:"page" binding:"omitempty,min=1"`
	PageSize   int            `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type BookingListResponse struct {
	Bookings   []ScreenBooking `json:"bookings"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// Media is an uploaded creative stored before the booking row is written.
type Media struct {
	URL  string
	Type MediaType
}

// internal/domain/audit/entity.go
package audit

import "time"

type Action string

const (
	ActionBookingCreated     Action = "booking.created"
	ActionBookingApproved    Action = "booking.approved"
	ActionBookingRejected    Action = "booking.rejected"
	ActionBookingCancelled   Action = "booking.cancelled"
	ActionBookingNotes       Action = "booking.notes_updated"
	ActionInvoiceIssued      Action = "invoice.issued"
	ActionInvoicePaid        Action = "invoice.paid"
	ActionInvoiceCancelled   Action = "invoice.cancelled"
	ActionInvoiceOverdue     Action = "invoice.overdue"
	ActionSubscriptionActive Action = "subscription.activated"
	ActionSubscriptionCancel Action = "subscription.cancelled"
	ActionSubscriptionExpire Action = "subscription.expired"
)

const (
	EntityBooking      = "screen_booking"
	EntityInvoice      = "invoice"
	EntitySubscription = "merchant_subscription"
)

// Entry is an append-only record of a state transition. ActorID is nil for
// system actors (payment callbacks, scheduler).
type Entry struct {
	ID            int64                  `json:"id" db:"id"`
	ActorID       *int64                 `json:"actor_id,omitempty" db:"actor_id"`
	Action        Action                 `json:"action" db:"action"`
	EntityType    string                 `json:"entity_type" db:"entity_type"`
	EntityID      int64                  `json:"entity_id" db:"entity_id"`
	PreviousValue *string                `json:"previous_value,omitempty" db:"previous_value"`
	NewValue      *string                `json:"new_value,omitempty" db:"new_value"`
	Metadata      map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	CreatedAt     time.Time              `json:"created_at" db:"created_at"`
}

type EntryFilters struct {
	EntityType string `form:"entity_type" binding:"omitempty,max=64"`
	EntityID   *int64 `form:"entity_id" binding:"omitempty,min=1"`
	ActorID    *int64 `form:"actor_id" binding:"omitempty,min=1"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type EntryListResponse struct {
	Entries    []Entry `json:"entries"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"page_size"`
	TotalPages int     `json:"total_pages"`
}

// internal/domain/notification/entity.go
package notification

import "time"

type NotificationType string

const (
	TypeBookingCreated   NotificationType = "booking_created"
	TypeBookingApproved  NotificationType = "booking_approved"
	TypeBookingRejected  NotificationType = "booking_rejected"
	TypeBookingCancelled NotificationType = "booking_cancelled"
	TypeInvoiceIssued    NotificationType = "invoice_issued"
	TypeInvoicePaid      NotificationType = "invoice_paid"
	TypeInvoiceOverdue   NotificationType = "invoice_overdue"
	TypeSubscription     NotificationType = "subscription"
	TypeSystem           NotificationType = "system"
)

type Notification struct {
	ID        int64                  `json:"id" db:"id"`
	UserID    int64                  `json:"user_id" db:"user_id"`
	Title     string                 `json:"title" db:"title"`
	Message   string                 `json:"message" db:"message"`
	Type      NotificationType       `json:"type" db:"type"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	IsRead    bool                   `json:"is_read" db:"is_read"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	ReadAt    *time.Time             `json:"read_at,omitempty" db:"read_at"`
}

// Event is what services hand to the dispatcher. Titles and messages are
// bilingual; the stored notification uses Arabic, emails carry both.
type Event struct {
	UserID    int64
	Type      NotificationType
	TitleAr   string
	TitleEn   string
	MessageAr string
	MessageEn string
	Metadata  map[string]interface{}
}

type NotificationListFilters struct {
	IsRead   *bool `form:"is_read"`
	Page     int   `form:"page" binding:"omitempty,min=1"`
	PageSize int   `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type NotificationSummary struct {
	TotalUnread int64 `json:"total_unread"`
	Total       int64 `json:"total"`
}

type NotificationListResponse struct {
	Notifications []Notification      `json:"notifications"`
	Summary       NotificationSummary `json:"summary"`
	Page          int                 `json:"page"`
	PageSize      int                 `json:"page_size"`
	TotalPages    int                 `json:"total_pages"`
}

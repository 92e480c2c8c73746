// internal/domain/invoice/entity.go
package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	StatusUnpaid    InvoiceStatus = "unpaid"
	StatusPaid      InvoiceStatus = "paid"
	StatusCancelled InvoiceStatus = "cancelled"
	StatusOverdue   InvoiceStatus = "overdue"
)

type InvoiceType string

const (
	TypeBooking      InvoiceType = "booking"
	TypeSubscription InvoiceType = "subscription"
)

const (
	BookingDueDays      = 30
	SubscriptionDueDays = 7
)

// Invoice is a billable document. TotalAmount always equals Subtotal + TaxAmount.
type Invoice struct {
	ID            int64           `json:"id" db:"id"`
	InvoiceNumber string          `json:"invoice_number" db:"invoice_number"`
	InvoiceType   InvoiceType     `json:"invoice_type" db:"invoice_type"`
	MerchantID    int64           `json:"merchant_id" db:"merchant_id"`
	BookingID     *int64          `json:"booking_id,omitempty" db:"booking_id"`
	PlanID        *int64          `json:"plan_id,omitempty" db:"plan_id"`
	Description   *string         `json:"description,omitempty" db:"description"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxRate       decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	TaxAmount     decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	Currency      string          `json:"currency" db:"currency"`
	Status        InvoiceStatus   `json:"status" db:"status"`
	IssueDate     time.Time       `json:"issue_date" db:"issue_date"`
	DueDate       time.Time       `json:"due_date" db:"due_date"`
	PaidAt        *time.Time      `json:"paid_at,omitempty" db:"paid_at"`

	PaymentID     *string `json:"payment_id,omitempty" db:"payment_id"`
	TransactionID *string `json:"transaction_id,omitempty" db:"transaction_id"`
	GatewayStatus *string `json:"gateway_status,omitempty" db:"gateway_status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (i *Invoice) IsPayable() bool {
	return i.Status == StatusUnpaid || i.Status == StatusOverdue
}

// internal/domain/payment/moyasar.go
package payment

// Moyasar webhook event types handled by the callback.
const (
	EventPaymentPaid     = "payment_paid"
	EventPaymentFailed   = "payment_failed"
	EventPaymentVoided   = "payment_voided"
	EventPaymentRefunded = "payment_refunded"
)

// Gateway payment statuses.
const (
	StatusPaid     = "paid"
	StatusFailed   = "failed"
	StatusVoided   = "voided"
	StatusRefunded = "refunded"
)

// CallbackRequest is the Moyasar webhook body.
type CallbackRequest struct {
	ID          string        `json:"id" binding:"required"`
	Type        string        `json:"type" binding:"required"`
	CreatedAt   string        `json:"created_at"`
	SecretToken string        `json:"secret_token"`
	AccountName *string       `json:"account_name"`
	Live        bool          `json:"live"`
	Data        PaymentObject `json:"data" binding:"required"`
}

// PaymentObject is the subset of Moyasar's payment we consume. Amount is in halalas.
type PaymentObject struct {
	ID          string          `json:"id" binding:"required"`
	Status      string          `json:"status" binding:"required"`
	Amount      int64           `json:"amount" binding:"min=0"`
	Currency    string          `json:"currency" binding:"required"`
	Description *string         `json:"description"`
	Fee         int64           `json:"fee"`
	Metadata    PaymentMetadata `json:"metadata"`
	Source      *PaymentSource  `json:"source"`
}

type PaymentMetadata struct {
	InvoiceID string `json:"invoice_id"`
}

// PaymentSource carries the acquirer references used as our transaction id.
type PaymentSource struct {
	Type            string  `json:"type"`
	GatewayID       *string `json:"gateway_id"`
	ReferenceNumber *string `json:"reference_number"`
}

// TransactionID prefers the acquirer reference number over the gateway id.
func (p *PaymentObject) TransactionID() *string {
	if p.Source == nil {
		return nil
	}
	if p.Source.ReferenceNumber != nil && *p.Source.ReferenceNumber != "" {
		return p.Source.ReferenceNumber
	}
	return p.Source.GatewayID
}

// CheckoutInfo is what a client needs to start a Moyasar payment for an invoice.
type CheckoutInfo struct {
	PublishableKey string `json:"publishable_key"`
	CallbackURL    string `json:"callback_url"`
	AmountHalalas  int64  `json:"amount"`
	Currency       string `json:"currency"`
	Description    string `json:"description"`
	InvoiceID      int64  `json:"invoice_id"`
}

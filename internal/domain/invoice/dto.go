// internal/domain/invoice/dto.go
package invoice

import "time"

type InvoiceListFilters struct {
	MerchantID *int64         `form:"merchant_id" binding:"omitempty,min=1"`
	Status     *InvoiceStatus `form:"status" binding:"omitempty,oneof=unpaid paid cancelled overdue"`
	Type       *InvoiceType   `form:"type" binding:"omitempty,oneof=booking subscription"`
	From       *time.Time     `form:"from" time_format:"2006-01-02"`
	To         *time.Time     `form:"to" time_format:"2006-01-02"`
	Page       int            `form:"page" binding:"omitempty,min=1"`
	PageSize   int            `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type InvoiceListResponse struct {
	Invoices   []Invoice `json:"invoices"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

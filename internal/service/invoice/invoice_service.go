// internal/service/invoice/invoice_service.go
package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adscreen-service/internal/domain/audit"
	"adscreen-service/internal/domain/auth"
	"adscreen-service/internal/domain/booking"
	"adscreen-service/internal/domain/invoice"
	"adscreen-service/internal/domain/notification"
	"adscreen-service/internal/domain/subscription"
	"adscreen-service/internal/metrics"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/money"
	"adscreen-service/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxNumberAttempts bounds retries on invoice number collisions.
const maxNumberAttempts = 5

type InvoiceStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, i *invoice.Invoice) error
	FindByID(ctx context.Context, id int64) (*invoice.Invoice, error)
	MarkOverdueTx(ctx context.Context, tx pgx.Tx, now time.Time) ([]invoice.Invoice, error)
	List(ctx context.Context, filters *invoice.InvoiceListFilters) ([]invoice.Invoice, int64, error)
}

type BookingMarker interface {
	MarkInvoicedTx(ctx context.Context, tx pgx.Tx, id int64, invoiceNumber string) error
}

type AuditWriter interface {
	CreateTx(ctx context.Context, tx pgx.Tx, e *audit.Entry) error
}

type Notifier interface {
	Notify(ctx context.Context, ev notification.Event)
}

// Seller identifies the issuer printed on invoices and encoded in QR codes.
type Seller struct {
	Name      string
	VATNumber string
}

type InvoiceService struct {
	tx       postgres.TxRunner
	invoices InvoiceStore
	bookings BookingMarker
	audit    AuditWriter
	notifier Notifier
	seller   Seller
	logger   *zap.Logger
	now      func() time.Time
}

func NewInvoiceService(tx postgres.TxRunner, invoices InvoiceStore, bookings BookingMarker, auditLog AuditWriter, notifier Notifier, seller Seller, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		tx:       tx,
		invoices: invoices,
		bookings: bookings,
		audit:    auditLog,
		notifier: notifier,
		seller:   seller,
		logger:   logger,
		now:      time.Now,
	}
}

// GenerateForBookingTx issues the VAT invoice for an approved booking inside
// the caller's transaction and marks the booking as invoiced.
func (s *InvoiceService) GenerateForBookingTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) (*invoice.Invoice, error) {
	if b.Status != booking.StatusApproved {
		return nil, fmt.Errorf("booking %d is %s: %w", b.ID, b.Status, xerrors.ErrInvalidState)
	}

	issued := s.now()
	subtotal := money.Round(b.TotalPrice)
	tax, total := money.VAT(subtotal)
	bookingID := b.ID
	description := fmt.Sprintf("Screen booking #%d (%s to %s)", b.ID, b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"))

	inv := &invoice.Invoice{
		InvoiceType: invoice.TypeBooking,
		MerchantID:  b.MerchantID,
		BookingID:   &bookingID,
		Description: &description,
		Subtotal:    subtotal,
		TaxRate:     money.VATRate,
		TaxAmount:   tax,
		TotalAmount: total,
		Currency:    money.Currency,
		Status:      invoice.StatusUnpaid,
		IssueDate:   issued,
		DueDate:     issued.AddDate(0, 0, invoice.BookingDueDays),
	}

	err := s.insertWithNumber(ctx, tx, inv, func(ts int64) string {
		return fmt.Sprintf("INV-%d-%d", ts, b.ID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.bookings.MarkInvoicedTx(ctx, tx, b.ID, inv.InvoiceNumber); err != nil {
		return nil, fmt.Errorf("failed to mark booking invoiced: %w", err)
	}
	b.InvoiceGenerated = true
	b.InvoiceNumber = &inv.InvoiceNumber

	if err := s.writeIssued(ctx, tx, inv); err != nil {
		return nil, err
	}

	metrics.InvoicesIssued.WithLabelValues(string(invoice.TypeBooking)).Inc()
	return inv, nil
}

// GenerateForSubscriptionTx issues a VAT-free invoice for a paid plan.
func (s *InvoiceService) GenerateForSubscriptionTx(ctx context.Context, tx pgx.Tx, merchantID int64, plan *subscription.Plan) (*invoice.Invoice, error) {
	issued := s.now()
	planID := plan.ID
	description := fmt.Sprintf("Subscription: %s", plan.DisplayNameEn)
	subtotal := money.Round(plan.Price)

	inv := &invoice.Invoice{
		InvoiceType: invoice.TypeSubscription,
		MerchantID:  merchantID,
		PlanID:      &planID,
		Description: &description,
		Subtotal:    subtotal,
		TaxRate:     decimal.Zero,
		TaxAmount:   decimal.Zero,
		TotalAmount: subtotal,
		Currency:    money.Currency,
		Status:      invoice.StatusUnpaid,
		IssueDate:   issued,
		DueDate:     issued.AddDate(0, 0, invoice.SubscriptionDueDays),
	}

	err := s.insertWithNumber(ctx, tx, inv, func(ts int64) string {
		return fmt.Sprintf("INV-SUB-%d-%d", ts, merchantID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.writeIssued(ctx, tx, inv); err != nil {
		return nil, err
	}

	metrics.InvoicesIssued.WithLabelValues(string(invoice.TypeSubscription)).Inc()
	return inv, nil
}

// insertWithNumber retries with a fresh timestamp when the number is taken.
func (s *InvoiceService) insertWithNumber(ctx context.Context, tx pgx.Tx, inv *invoice.Invoice, number func(ts int64) string) error {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		inv.InvoiceNumber = number(s.now().UnixMilli() + int64(attempt))

		err := s.invoices.CreateTx(ctx, tx, inv)
		if err == nil {
			return nil
		}
		if !errors.Is(err, postgres.ErrInvoiceNumberTaken) {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		s.logger.Warn("invoice number collision, retrying",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Int("attempt", attempt+1))
	}
	return fmt.Errorf("failed to allocate invoice number after %d attempts: %w", maxNumberAttempts, xerrors.ErrConflict)
}

func (s *InvoiceService) writeIssued(ctx context.Context, tx pgx.Tx, inv *invoice.Invoice) error {
	status := string(invoice.StatusUnpaid)
	return s.audit.CreateTx(ctx, tx, &audit.Entry{
		Action:     audit.ActionInvoiceIssued,
		EntityType: audit.EntityInvoice,
		EntityID:   inv.ID,
		NewValue:   &status,
		Metadata: map[string]interface{}{
			"invoice_number": inv.InvoiceNumber,
			"invoice_type":   string(inv.InvoiceType),
			"total_amount":   inv.TotalAmount.StringFixed(2),
		},
	})
}

// ========== Queries ==========

func (s *InvoiceService) Get(ctx context.Context, actor auth.Principal, id int64) (*invoice.Invoice, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(inv.MerchantID) {
		return nil, xerrors.ErrNotFound
	}
	return inv, nil
}

// List scopes merchants to their own invoices; admins may filter by merchant.
func (s *InvoiceService) List(ctx context.Context, actor auth.Principal, filters *invoice.InvoiceListFilters) (*invoice.InvoiceListResponse, error) {
	if !actor.IsAdmin() {
		filters.MerchantID = &actor.UserID
	}
	if filters.From != nil && filters.To != nil && filters.To.Before(*filters.From) {
		return nil, xerrors.NewValidationError("to", i18n.FieldDateOrder)
	}

	invoices, total, err := s.invoices.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	return &invoice.InvoiceListResponse{
		Invoices:   invoices,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: postgres.TotalPages(total, filters.PageSize),
	}, nil
}

// ========== Jobs ==========

// MarkOverdue flips unpaid invoices past due and tells their merchants.
func (s *InvoiceService) MarkOverdue(ctx context.Context) (int, error) {
	var overdue []invoice.Invoice
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		overdue, err = s.invoices.MarkOverdueTx(ctx, tx, s.now())
		if err != nil {
			return err
		}

		previous, next := string(invoice.StatusUnpaid), string(invoice.StatusOverdue)
		for _, inv := range overdue {
			if err := s.audit.CreateTx(ctx, tx, &audit.Entry{
				Action:        audit.ActionInvoiceOverdue,
				EntityType:    audit.EntityInvoice,
				EntityID:      inv.ID,
				PreviousValue: &previous,
				NewValue:      &next,
				Metadata:      map[string]interface{}{"due_date": inv.DueDate},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, inv := range overdue {
		s.notifier.Notify(ctx, notification.Event{
			UserID:    inv.MerchantID,
			Type:      notification.TypeInvoiceOverdue,
			TitleAr:   "فاتورة متأخرة السداد",
			TitleEn:   "Invoice overdue",
			MessageAr: fmt.Sprintf("الفاتورة %s بمبلغ %s ريال تجاوزت تاريخ الاستحقاق", inv.InvoiceNumber, inv.TotalAmount.StringFixed(2)),
			MessageEn: fmt.Sprintf("Invoice %s for %s SAR is past its due date", inv.InvoiceNumber, inv.TotalAmount.StringFixed(2)),
			Metadata:  map[string]interface{}{"invoice_id": inv.ID},
		})
	}

	if len(overdue) > 0 {
		s.logger.Info("invoices marked overdue", zap.Int("count", len(overdue)))
	}
	return len(overdue), nil
}

// internal/service/payment/payment_service.go
package payment

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"
	"time"

	"adscreen-service/internal/domain/audit"
	"adscreen-service/internal/domain/invoice"
	"adscreen-service/internal/domain/notification"
	"adscreen-service/internal/domain/payment"
	"adscreen-service/internal/domain/subscription"
	"adscreen-service/internal/metrics"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/money"
	"adscreen-service/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Callback outcomes, also used as metric labels.
const (
	OutcomePaid         = "paid"
	OutcomeFailed       = "failed"
	OutcomeDuplicate    = "duplicate"
	OutcomeIgnored      = "ignored"
	OutcomeUnauthorized = "unauthorized"
	OutcomeInvalid      = "invalid"
	OutcomeNotFound     = "not_found"
	OutcomeRejected     = "rejected"
	OutcomeError        = "error"
)

type InvoiceStore interface {
	FindByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*invoice.Invoice, error)
	UpdatePaymentTx(ctx context.Context, tx pgx.Tx, i *invoice.Invoice) error
}

type SubscriptionActivator interface {
	ActivateTx(ctx context.Context, tx pgx.Tx, merchantID, planID int64, invoiceID, actorID *int64) (*subscription.MerchantSubscription, error)
	NotifyActivated(ctx context.Context, sub *subscription.MerchantSubscription)
}

type AuditWriter interface {
	CreateTx(ctx context.Context, tx pgx.Tx, e *audit.Entry) error
}

type Notifier interface {
	Notify(ctx context.Context, ev notification.Event)
}

// CallbackResult reports what a callback did to the invoice.
type CallbackResult struct {
	Outcome      string                             `json:"outcome"`
	Invoice      *invoice.Invoice                   `json:"invoice"`
	Subscription *subscription.MerchantSubscription `json:"subscription,omitempty"`
}

type PaymentService struct {
	tx            postgres.TxRunner
	invoices      InvoiceStore
	subscriptions SubscriptionActivator
	audit         AuditWriter
	notifier      Notifier
	webhookSecret string
	logger        *zap.Logger
	now           func() time.Time
}

func NewPaymentService(
	tx postgres.TxRunner,
	invoices InvoiceStore,
	subscriptions SubscriptionActivator,
	auditLog AuditWriter,
	notifier Notifier,
	webhookSecret string,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		tx:            tx,
		invoices:      invoices,
		subscriptions: subscriptions,
		audit:         auditLog,
		notifier:      notifier,
		webhookSecret: webhookSecret,
		logger:        logger,
		now:           time.Now,
	}
}

// HandleCallback applies a Moyasar webhook to its invoice. A paid invoice is
// never touched again, so redelivered webhooks are harmless.
func (s *PaymentService) HandleCallback(ctx context.Context, req *payment.CallbackRequest) (*CallbackResult, error) {
	if s.webhookSecret == "" || subtle.ConstantTimeCompare([]byte(req.SecretToken), []byte(s.webhookSecret)) != 1 {
		metrics.PaymentCallbacks.WithLabelValues(OutcomeUnauthorized).Inc()
		s.logger.Warn("payment callback with invalid secret", zap.String("event_id", req.ID))
		return nil, xerrors.ErrUnauthorized
	}

	invoiceID, err := strconv.ParseInt(strings.TrimSpace(req.Data.Metadata.InvoiceID), 10, 64)
	if err != nil || invoiceID <= 0 {
		metrics.PaymentCallbacks.WithLabelValues(OutcomeInvalid).Inc()
		return nil, xerrors.NewValidationError("data.metadata.invoice_id", i18n.FieldInvalid)
	}

	result := &CallbackResult{}
	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		inv, err := s.invoices.FindByIDForUpdateTx(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		result.Invoice = inv

		if inv.Status == invoice.StatusPaid {
			result.Outcome = OutcomeDuplicate
			return nil
		}

		if req.Data.Amount != money.ToHalalas(inv.TotalAmount) {
			return xerrors.NewValidationError("data.amount", i18n.FieldInvalid)
		}
		if !strings.EqualFold(req.Data.Currency, inv.Currency) {
			return xerrors.NewValidationError("data.currency", i18n.FieldInvalid)
		}

		paymentID := req.Data.ID
		gatewayStatus := req.Data.Status
		inv.PaymentID = &paymentID
		inv.TransactionID = req.Data.TransactionID()
		inv.GatewayStatus = &gatewayStatus

		previous := string(inv.Status)
		switch req.Data.Status {
		case payment.StatusPaid:
			if !inv.IsPayable() {
				s.logger.Error("payment captured for an invoice that is no longer payable",
					zap.Int64("invoice_id", inv.ID),
					zap.String("status", string(inv.Status)),
					zap.String("payment_id", paymentID))
				return fmt.Errorf("invoice %d is %s: %w", inv.ID, inv.Status, xerrors.ErrInvalidState)
			}
			paidAt := s.now()
			inv.Status = invoice.StatusPaid
			inv.PaidAt = &paidAt
			result.Outcome = OutcomePaid
		case payment.StatusFailed:
			if !inv.IsPayable() {
				result.Outcome = OutcomeIgnored
				return nil
			}
			inv.Status = invoice.StatusCancelled
			result.Outcome = OutcomeFailed
		default:
			result.Outcome = OutcomeIgnored
		}

		if err := s.invoices.UpdatePaymentTx(ctx, tx, inv); err != nil {
			return err
		}
		if result.Outcome == OutcomeIgnored {
			return nil
		}

		action := audit.ActionInvoicePaid
		if inv.Status == invoice.StatusCancelled {
			action = audit.ActionInvoiceCancelled
		}
		next := string(inv.Status)
		if err := s.audit.CreateTx(ctx, tx, &audit.Entry{
			Action:        action,
			EntityType:    audit.EntityInvoice,
			EntityID:      inv.ID,
			PreviousValue: &previous,
			NewValue:      &next,
			Metadata: map[string]interface{}{
				"payment_id":     paymentID,
				"gateway_status": gatewayStatus,
				"event_id":       req.ID,
			},
		}); err != nil {
			return err
		}

		if inv.Status == invoice.StatusPaid && inv.InvoiceType == invoice.TypeSubscription && inv.PlanID != nil {
			sub, err := s.subscriptions.ActivateTx(ctx, tx, inv.MerchantID, *inv.PlanID, &inv.ID, nil)
			if err != nil {
				return fmt.Errorf("failed to activate subscription: %w", err)
			}
			result.Subscription = sub
		}
		return nil
	})
	if err != nil {
		metrics.PaymentCallbacks.WithLabelValues(outcomeForError(err)).Inc()
		s.logger.Error("payment callback failed",
			zap.String("event_id", req.ID),
			zap.Int64("invoice_id", invoiceID),
			zap.Error(err))
		return nil, err
	}

	metrics.PaymentCallbacks.WithLabelValues(result.Outcome).Inc()
	s.logger.Info("payment callback processed",
		zap.String("event_id", req.ID),
		zap.Int64("invoice_id", invoiceID),
		zap.String("gateway_status", req.Data.Status),
		zap.String("outcome", result.Outcome))

	s.notifyOutcome(ctx, result)
	return result, nil
}

// outcomeForError labels a failed callback for the metrics.
func outcomeForError(err error) string {
	switch {
	case xerrors.Is(err, xerrors.ErrInvalidInput):
		return OutcomeInvalid
	case xerrors.Is(err, xerrors.ErrNotFound):
		return OutcomeNotFound
	case xerrors.Is(err, xerrors.ErrInvalidState):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}

func (s *PaymentService) notifyOutcome(ctx context.Context, result *CallbackResult) {
	inv := result.Invoice
	switch result.Outcome {
	case OutcomePaid:
		s.notifier.Notify(ctx, notification.Event{
			UserID:    inv.MerchantID,
			Type:      notification.TypeInvoicePaid,
			TitleAr:   "تم استلام الدفعة",
			TitleEn:   "Payment received",
			MessageAr: fmt.Sprintf("تم سداد الفاتورة %s بمبلغ %s ريال", inv.InvoiceNumber, inv.TotalAmount.StringFixed(2)),
			MessageEn: fmt.Sprintf("Invoice %s for %s SAR has been paid", inv.InvoiceNumber, inv.TotalAmount.StringFixed(2)),
			Metadata:  map[string]interface{}{"invoice_id": inv.ID},
		})
		if result.Subscription != nil {
			s.subscriptions.NotifyActivated(ctx, result.Subscription)
		}
	case OutcomeFailed:
		s.notifier.Notify(ctx, notification.Event{
			UserID:    inv.MerchantID,
			Type:      notification.TypeSystem,
			TitleAr:   "فشلت عملية الدفع",
			TitleEn:   "Payment failed",
			MessageAr: fmt.Sprintf("لم تكتمل عملية الدفع للفاتورة %s", inv.InvoiceNumber),
			MessageEn: fmt.Sprintf("The payment for invoice %s did not go through", inv.InvoiceNumber),
			Metadata:  map[string]interface{}{"invoice_id": inv.ID},
		})
	}
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"adscreen-service/internal/domain/audit"
	"adscreen-service/internal/domain/invoice"
	"adscreen-service/internal/domain/notification"
	"adscreen-service/internal/domain/payment"
	"adscreen-service/internal/domain/subscription"
	xerrors "adscreen-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "whsec_test"

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error { return fn(nil) }

type mockInvoices struct{ mock.Mock }

func (m *mockInvoices) FindByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*invoice.Invoice, error) {
	args := m.Called(ctx, tx, id)
	i, _ := args.Get(0).(*invoice.Invoice)
	return i, args.Error(1)
}

func (m *mockInvoices) UpdatePaymentTx(ctx context.Context, tx pgx.Tx, i *invoice.Invoice) error {
	return m.Called(ctx, tx, i).Error(0)
}

type mockActivator struct {
	mock.Mock
	notified []*subscription.MerchantSubscription
}

func (m *mockActivator) ActivateTx(ctx context.Context, tx pgx.Tx, merchantID, planID int64, invoiceID, actorID *int64) (*subscription.MerchantSubscription, error) {
	args := m.Called(ctx, tx, merchantID, planID, invoiceID, actorID)
	s, _ := args.Get(0).(*subscription.MerchantSubscription)
	return s, args.Error(1)
}

func (m *mockActivator) NotifyActivated(ctx context.Context, sub *subscription.MerchantSubscription) {
	m.notified = append(m.notified, sub)
}

type mockAudit struct{ mock.Mock }

func (m *mockAudit) CreateTx(ctx context.Context, tx pgx.Tx, e *audit.Entry) error {
	return m.Called(ctx, tx, e).Error(0)
}

type recordingNotifier struct{ events []notification.Event }

func (r *recordingNotifier) Notify(ctx context.Context, ev notification.Event) {
	r.events = append(r.events, ev)
}

type paymentFixture struct {
	svc       *PaymentService
	invoices  *mockInvoices
	activator *mockActivator
	audit     *mockAudit
	notifier  *recordingNotifier
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	f := &paymentFixture{
		invoices:  &mockInvoices{},
		activator: &mockActivator{},
		audit:     &mockAudit{},
		notifier:  &recordingNotifier{},
	}
	f.svc = NewPaymentService(fakeTx{}, f.invoices, f.activator, f.audit, f.notifier, secret, zap.NewNop())
	f.svc.now = func() time.Time { return time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC) }

	t.Cleanup(func() {
		f.invoices.AssertExpectations(t)
		f.activator.AssertExpectations(t)
		f.audit.AssertExpectations(t)
	})
	return f
}

func callback(status string, amount int64) *payment.CallbackRequest {
	ref := "RRN-123"
	return &payment.CallbackRequest{
		ID:          "evt_1",
		Type:        payment.EventPaymentPaid,
		SecretToken: secret,
		Data: payment.PaymentObject{
			ID:       "pay_1",
			Status:   status,
			Amount:   amount,
			Currency: "SAR",
			Metadata: payment.PaymentMetadata{InvoiceID: "77"},
			Source:   &payment.PaymentSource{Type: "creditcard", ReferenceNumber: &ref},
		},
	}
}

func subscriptionInvoice() *invoice.Invoice {
	planID := int64(2)
	return &invoice.Invoice{
		ID:            77,
		InvoiceNumber: "INV-SUB-1-3",
		InvoiceType:   invoice.TypeSubscription,
		MerchantID:    3,
		PlanID:        &planID,
		TotalAmount:   decimal.NewFromInt(199),
		Currency:      "SAR",
		Status:        invoice.StatusUnpaid,
	}
}

func TestHandleCallback_PaidSubscriptionActivates(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	invID := int64(77)

	f.invoices.On("FindByIDForUpdateTx", ctx, mock.Anything, invID).Return(subscriptionInvoice(), nil)
	f.invoices.On("UpdatePaymentTx", ctx, mock.Anything, mock.MatchedBy(func(i *invoice.Invoice) bool {
		return i.Status == invoice.StatusPaid && i.PaidAt != nil &&
			*i.PaymentID == "pay_1" && *i.TransactionID == "RRN-123" && *i.GatewayStatus == "paid"
	})).Return(nil)
	f.audit.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionInvoicePaid && *e.PreviousValue == "unpaid"
	})).Return(nil)
	f.activator.On("ActivateTx", ctx, mock.Anything, int64(3), int64(2), &invID, (*int64)(nil)).
		Return(&subscription.MerchantSubscription{ID: 11, MerchantID: 3, PlanID: 2}, nil)

	res, err := f.svc.HandleCallback(ctx, callback(payment.StatusPaid, 19900))
	require.NoError(t, err)
	assert.Equal(t, OutcomePaid, res.Outcome)
	require.NotNil(t, res.Subscription)
	assert.Equal(t, int64(11), res.Subscription.ID)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, notification.TypeInvoicePaid, f.notifier.events[0].Type)
	assert.Len(t, f.activator.notified, 1)
}

func TestHandleCallback_PaidBookingInvoice(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	bookingID := int64(42)
	inv := &invoice.Invoice{
		ID:          77,
		InvoiceType: invoice.TypeBooking,
		MerchantID:  3,
		BookingID:   &bookingID,
		TotalAmount: decimal.NewFromInt(575),
		Currency:    "SAR",
		Status:      invoice.StatusOverdue,
	}
	f.invoices.On("FindByIDForUpdateTx", ctx, mock.Anything, int64(77)).Return(inv, nil)
	f.invoices.On("UpdatePaymentTx", ctx, mock.Anything, mock.Anything).Return(nil)
	f.audit.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.HandleCallback(ctx, callback(payment.StatusPaid, 57500))
	require.NoError(t, err)
	assert.Equal(t, OutcomePaid, res.Outcome)
	assert.Nil(t, res.Subscription)
	f.activator.AssertNotCalled(t, "ActivateTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCallback_AlreadyPaidIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	inv := subscriptionInvoice()
	inv.Status = invoice.StatusPaid
	f.invoices.On("FindByIDForUpdateTx", ctx, mock.Anything, int64(77)).Return(inv, nil)

	res, err := f.svc.HandleCallback(ctx, callback(payment.StatusPaid, 19900))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, res.Outcome)
	f.invoices.AssertNotCalled(t, "UpdatePaymentTx", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.events)
}

func TestHandleCallback_FailedCancelsInvoice(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	f.invoices.On("FindByIDForUpdateTx", ctx, mock.Anything, int64(77)).Return(subscriptionInvoice(), nil)
	f.invoices.On("UpdatePaymentTx", ctx, mock.Anything, mock.MatchedBy(func(i *invoice.Invoice) bool {
		return i.Status == invoice.StatusCancelled && i.PaidAt == nil
	})).Return(nil)
	f.audit.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionInvoiceCancelled
	})).Return(nil)

	res, err := f.svc.HandleCallback(ctx, callback(payment.StatusFailed, 19900))
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, notification.TypeSystem, f.notifier.events[0].Type)
}

func TestHandleCallback_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong secret", func(t *testing.T) {
		f := newPaymentFixture(t)
		req := callback(payment.StatusPaid, 19900)
		req.SecretToken = "nope"

		_, err := f.svc.HandleCallback(ctx, req)
		assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
	})

	t.Run("bad invoice id", func(t *testing.T) {
		f := newPaymentFixture(t)
		req := callback(payment.StatusPaid, 19900)
		req.Data.Metadata.InvoiceID = "abc"

		_, err := f.svc.HandleCallback(ctx, req)
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	})

	t.Run("amount mismatch", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.invoices.On("FindByIDForUpdateTx", ctx, mock.Anything, int64(77)).Return(subscriptionInvoice(), nil)

		_, err := f.svc.HandleCallback(ctx, callback(payment.StatusPaid, 100))
		var verr *xerrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "data.amount")
		f.invoices.AssertNotCalled(t, "UpdatePaymentTx", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.invoices.On("FindByIDForUpdateTx", ctx, mock.Anything, int64(77)).Return(nil, xerrors.ErrNotFound)

		_, err := f.svc.HandleCallback(ctx, callback(payment.StatusPaid, 19900))
		assert.ErrorIs(t, err, xerrors.ErrNotFound)
	})
}

func TestHandleCallback_PaidAfterCancelIsRefused(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	inv := subscriptionInvoice()
	inv.Status = invoice.StatusCancelled
	f.invoices.On("FindByIDForUpdateTx", ctx, mock.Anything, int64(77)).Return(inv, nil)

	_, err := f.svc.HandleCallback(ctx, callback(payment.StatusPaid, 19900))
	assert.ErrorIs(t, err, xerrors.ErrInvalidState)
	f.invoices.AssertNotCalled(t, "UpdatePaymentTx", mock.Anything, mock.Anything, mock.Anything)
	f.activator.AssertNotCalled(t, "ActivateTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.events)
}

func TestOutcomeForError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{xerrors.NewValidationError("data.amount", "invalid"), OutcomeInvalid},
		{fmt.Errorf("find invoice: %w", xerrors.ErrNotFound), OutcomeNotFound},
		{fmt.Errorf("invoice 7 is cancelled: %w", xerrors.ErrInvalidState), OutcomeRejected},
		{errors.New("connection reset"), OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, outcomeForError(tt.err))
		})
	}
}

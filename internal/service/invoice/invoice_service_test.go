package invoice

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"adscreen-service/internal/domain/audit"
	"adscreen-service/internal/domain/auth"
	"adscreen-service/internal/domain/booking"
	"adscreen-service/internal/domain/invoice"
	"adscreen-service/internal/domain/notification"
	"adscreen-service/internal/domain/subscription"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error { return fn(nil) }

type mockInvoices struct{ mock.Mock }

func (m *mockInvoices) CreateTx(ctx context.Context, tx pgx.Tx, i *invoice.Invoice) error {
	return m.Called(ctx, tx, i).Error(0)
}

func (m *mockInvoices) FindByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	i, _ := args.Get(0).(*invoice.Invoice)
	return i, args.Error(1)
}

func (m *mockInvoices) MarkOverdueTx(ctx context.Context, tx pgx.Tx, now time.Time) ([]invoice.Invoice, error) {
	args := m.Called(ctx, tx, now)
	is, _ := args.Get(0).([]invoice.Invoice)
	return is, args.Error(1)
}

func (m *mockInvoices) List(ctx context.Context, filters *invoice.InvoiceListFilters) ([]invoice.Invoice, int64, error) {
	args := m.Called(ctx, filters)
	is, _ := args.Get(0).([]invoice.Invoice)
	return is, args.Get(1).(int64), args.Error(2)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) MarkInvoicedTx(ctx context.Context, tx pgx.Tx, id int64, invoiceNumber string) error {
	return m.Called(ctx, tx, id, invoiceNumber).Error(0)
}

type mockAudit struct{ mock.Mock }

func (m *mockAudit) CreateTx(ctx context.Context, tx pgx.Tx, e *audit.Entry) error {
	return m.Called(ctx, tx, e).Error(0)
}

type recordingNotifier struct{ events []notification.Event }

func (r *recordingNotifier) Notify(ctx context.Context, ev notification.Event) {
	r.events = append(r.events, ev)
}

var issuedAt = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestService() (*InvoiceService, *mockInvoices, *mockBookings, *mockAudit, *recordingNotifier) {
	invoices := &mockInvoices{}
	bookings := &mockBookings{}
	auditLog := &mockAudit{}
	notifier := &recordingNotifier{}
	svc := NewInvoiceService(fakeTx{}, invoices, bookings, auditLog, notifier, Seller{Name: "AdScreen", VATNumber: "300000000000003"}, zap.NewNop())
	svc.now = func() time.Time { return issuedAt }
	return svc, invoices, bookings, auditLog, notifier
}

func approved(total string) *booking.ScreenBooking {
	return &booking.ScreenBooking{
		ID:         42,
		MerchantID: 3,
		StartDate:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
		TotalPrice: decimal.RequireFromString(total),
		Status:     booking.StatusApproved,
	}
}

func TestGenerateForBookingTx(t *testing.T) {
	svc, invoices, bookings, auditLog, _ := newTestService()
	ctx := context.Background()

	invoices.On("CreateTx", ctx, mock.Anything, mock.AnythingOfType("*invoice.Invoice")).
		Run(func(args mock.Arguments) { args.Get(2).(*invoice.Invoice).ID = 9 }).
		Return(nil)
	bookings.On("MarkInvoicedTx", ctx, mock.Anything, int64(42), "INV-1717236000000-42").Return(nil)
	auditLog.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionInvoiceIssued && e.EntityID == 9 && e.ActorID == nil
	})).Return(nil)

	b := approved("500")
	inv, err := svc.GenerateForBookingTx(ctx, nil, b)
	require.NoError(t, err)

	assert.Equal(t, "INV-1717236000000-42", inv.InvoiceNumber)
	assert.Equal(t, invoice.TypeBooking, inv.InvoiceType)
	assert.Equal(t, invoice.StatusUnpaid, inv.Status)
	assert.Equal(t, "500.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "75.00", inv.TaxAmount.StringFixed(2))
	assert.Equal(t, "575.00", inv.TotalAmount.StringFixed(2))
	assert.True(t, inv.TotalAmount.Equal(inv.Subtotal.Add(inv.TaxAmount)))
	assert.Equal(t, issuedAt.AddDate(0, 0, 30), inv.DueDate)
	assert.Equal(t, int64(42), *inv.BookingID)

	assert.True(t, b.InvoiceGenerated)
	assert.Equal(t, inv.InvoiceNumber, *b.InvoiceNumber)

	invoices.AssertExpectations(t)
	bookings.AssertExpectations(t)
	auditLog.AssertExpectations(t)
}

func TestGenerateForBookingTx_VATRounding(t *testing.T) {
	svc, invoices, bookings, auditLog, _ := newTestService()
	ctx := context.Background()

	invoices.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(nil)
	bookings.On("MarkInvoicedTx", ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	auditLog.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(nil)

	// 0.15 * 2099.79 = 314.9685
	inv, err := svc.GenerateForBookingTx(ctx, nil, approved("2099.79"))
	require.NoError(t, err)
	assert.Equal(t, "314.97", inv.TaxAmount.StringFixed(2))
	assert.Equal(t, "2414.76", inv.TotalAmount.StringFixed(2))
}

func TestGenerateForBookingTx_RetriesOnNumberCollision(t *testing.T) {
	svc, invoices, bookings, auditLog, _ := newTestService()
	ctx := context.Background()

	var numbers []string
	invoices.On("CreateTx", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { numbers = append(numbers, args.Get(2).(*invoice.Invoice).InvoiceNumber) }).
		Return(postgres.ErrInvoiceNumberTaken).Once()
	invoices.On("CreateTx", ctx, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { numbers = append(numbers, args.Get(2).(*invoice.Invoice).InvoiceNumber) }).
		Return(nil).Once()
	bookings.On("MarkInvoicedTx", ctx, mock.Anything, int64(42), "INV-1717236000001-42").Return(nil)
	auditLog.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(nil)

	inv, err := svc.GenerateForBookingTx(ctx, nil, approved("500"))
	require.NoError(t, err)
	assert.Equal(t, []string{"INV-1717236000000-42", "INV-1717236000001-42"}, numbers)
	assert.Equal(t, "INV-1717236000001-42", inv.InvoiceNumber)
	bookings.AssertExpectations(t)
}

func TestGenerateForBookingTx_GivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, invoices, bookings, _, _ := newTestService()
	ctx := context.Background()

	invoices.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(postgres.ErrInvoiceNumberTaken)

	_, err := svc.GenerateForBookingTx(ctx, nil, approved("500"))
	assert.ErrorIs(t, err, xerrors.ErrConflict)
	invoices.AssertNumberOfCalls(t, "CreateTx", maxNumberAttempts)
	bookings.AssertNotCalled(t, "MarkInvoicedTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateForBookingTx_RequiresApproved(t *testing.T) {
	svc, invoices, _, _, _ := newTestService()

	b := approved("500")
	b.Status = booking.StatusPending

	_, err := svc.GenerateForBookingTx(context.Background(), nil, b)
	assert.ErrorIs(t, err, xerrors.ErrInvalidState)
	invoices.AssertNotCalled(t, "CreateTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateForSubscriptionTx(t *testing.T) {
	svc, invoices, _, auditLog, _ := newTestService()
	ctx := context.Background()

	invoices.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(nil)
	auditLog.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(nil)

	plan := &subscription.Plan{ID: 2, Name: "pro", DisplayNameEn: "Pro", Price: decimal.RequireFromString("199")}
	inv, err := svc.GenerateForSubscriptionTx(ctx, nil, 3, plan)
	require.NoError(t, err)

	assert.Equal(t, "INV-SUB-1717236000000-3", inv.InvoiceNumber)
	assert.Equal(t, invoice.TypeSubscription, inv.InvoiceType)
	assert.True(t, inv.TaxAmount.IsZero())
	assert.Equal(t, "199.00", inv.TotalAmount.StringFixed(2))
	assert.Equal(t, issuedAt.AddDate(0, 0, 7), inv.DueDate)
	assert.Equal(t, int64(2), *inv.PlanID)
	assert.Nil(t, inv.BookingID)
}

func TestGet_HidesOtherMerchantsInvoices(t *testing.T) {
	svc, invoices, _, _, _ := newTestService()
	ctx := context.Background()

	invoices.On("FindByID", ctx, int64(9)).Return(&invoice.Invoice{ID: 9, MerchantID: 3}, nil)

	_, err := svc.Get(ctx, auth.Principal{UserID: 4, Role: auth.RoleBusiness}, 9)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	got, err := svc.Get(ctx, auth.Principal{UserID: 1, Role: auth.RoleAdmin}, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.ID)
}

func TestList_ScopesMerchant(t *testing.T) {
	svc, invoices, _, _, _ := newTestService()
	ctx := context.Background()

	invoices.On("List", ctx, mock.MatchedBy(func(f *invoice.InvoiceListFilters) bool {
		return f.MerchantID != nil && *f.MerchantID == 3
	})).Return([]invoice.Invoice{{ID: 9, MerchantID: 3}}, int64(1), nil)

	resp, err := svc.List(ctx, auth.Principal{UserID: 3, Role: auth.RoleBusiness}, &invoice.InvoiceListFilters{PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, resp.Invoices, 1)
	assert.Equal(t, 1, resp.TotalPages)
}

func TestMarkOverdue_NotifiesMerchants(t *testing.T) {
	svc, invoices, _, auditLog, notifier := newTestService()
	ctx := context.Background()

	auditLog.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionInvoiceOverdue && e.EntityType == audit.EntityInvoice &&
			*e.PreviousValue == "unpaid" && *e.NewValue == "overdue"
	})).Return(nil).Twice()
	invoices.On("MarkOverdueTx", ctx, mock.Anything, issuedAt).Return([]invoice.Invoice{
		{ID: 1, MerchantID: 3, InvoiceNumber: "INV-1-1", TotalAmount: decimal.NewFromInt(115)},
		{ID: 2, MerchantID: 5, InvoiceNumber: "INV-2-2", TotalAmount: decimal.NewFromInt(230)},
	}, nil)

	n, err := svc.MarkOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, notifier.events, 2)
	assert.Equal(t, notification.TypeInvoiceOverdue, notifier.events[0].Type)
	assert.Equal(t, int64(5), notifier.events[1].UserID)
	auditLog.AssertExpectations(t)
}

func TestMarkOverdue_AuditFailureRollsBack(t *testing.T) {
	svc, invoices, _, auditLog, notifier := newTestService()
	ctx := context.Background()

	invoices.On("MarkOverdueTx", ctx, mock.Anything, issuedAt).Return([]invoice.Invoice{{ID: 1, MerchantID: 3}}, nil)
	auditLog.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	n, err := svc.MarkOverdue(ctx)
	assert.Error(t, err)
	assert.Zero(t, n)
	assert.Empty(t, notifier.events)
}

func TestQRPayload(t *testing.T) {
	inv := &invoice.Invoice{
		IssueDate:   issuedAt,
		TotalAmount: decimal.NewFromInt(575),
		TaxAmount:   decimal.NewFromInt(75),
	}

	encoded, err := QRPayload(Seller{Name: "AdScreen", VATNumber: "300000000000003"}, inv)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	var want bytes.Buffer
	for i, v := range []string{"AdScreen", "300000000000003", "2024-06-01T10:00:00Z", "575.00", "75.00"} {
		want.WriteByte(byte(i + 1))
		want.WriteByte(byte(len(v)))
		want.WriteString(v)
	}
	assert.Equal(t, want.Bytes(), raw)
}

func TestQRCode_RendersPNG(t *testing.T) {
	svc, invoices, _, _, _ := newTestService()
	ctx := context.Background()

	invoices.On("FindByID", ctx, int64(9)).Return(&invoice.Invoice{
		ID:          9,
		MerchantID:  3,
		IssueDate:   issuedAt,
		TotalAmount: decimal.NewFromInt(575),
		TaxAmount:   decimal.NewFromInt(75),
	}, nil)

	png, err := svc.QRCode(ctx, auth.Principal{UserID: 3, Role: auth.RoleBusiness}, 9)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

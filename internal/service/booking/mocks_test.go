package booking

import (
	"context"
	"time"

	"adscreen-service/internal/domain/audit"
	"adscreen-service/internal/domain/booking"
	"adscreen-service/internal/domain/invoice"
	"adscreen-service/internal/domain/notification"
	"adscreen-service/internal/domain/screen"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type fakeTx struct{ calls int }

func (f *fakeTx) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	f.calls++
	return fn(nil)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) CreateTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) error {
	return m.Called(ctx, tx, b).Error(0)
}

func (m *mockBookings) FindByID(ctx context.Context, id int64) (*booking.ScreenBooking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*booking.ScreenBooking)
	return b, args.Error(1)
}

func (m *mockBookings) FindByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*booking.ScreenBooking, error) {
	args := m.Called(ctx, tx, id)
	b, _ := args.Get(0).(*booking.ScreenBooking)
	return b, args.Error(1)
}

func (m *mockBookings) FindConflicting(ctx context.Context, locationID int64, start, end time.Time, exclude *int64) ([]booking.ScreenBooking, error) {
	args := m.Called(ctx, locationID, start, end, exclude)
	bs, _ := args.Get(0).([]booking.ScreenBooking)
	return bs, args.Error(1)
}

func (m *mockBookings) FindConflictingTx(ctx context.Context, tx pgx.Tx, locationID int64, start, end time.Time, exclude *int64) ([]booking.ScreenBooking, error) {
	args := m.Called(ctx, tx, locationID, start, end, exclude)
	bs, _ := args.Get(0).([]booking.ScreenBooking)
	return bs, args.Error(1)
}

func (m *mockBookings) ApproveTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) error {
	return m.Called(ctx, tx, b).Error(0)
}

func (m *mockBookings) RejectTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) error {
	return m.Called(ctx, tx, b).Error(0)
}

func (m *mockBookings) CancelTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) error {
	return m.Called(ctx, tx, b).Error(0)
}

func (m *mockBookings) UpdateNotesTx(ctx context.Context, tx pgx.Tx, id int64, adminNotes *string) error {
	return m.Called(ctx, tx, id, adminNotes).Error(0)
}

func (m *mockBookings) List(ctx context.Context, filters *booking.BookingListFilters) ([]booking.ScreenBooking, int64, error) {
	args := m.Called(ctx, filters)
	bs, _ := args.Get(0).([]booking.ScreenBooking)
	return bs, args.Get(1).(int64), args.Error(2)
}

type mockLocations struct{ mock.Mock }

func (m *mockLocations) FindByID(ctx context.Context, id int64) (*screen.Location, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*screen.Location)
	return l, args.Error(1)
}

func (m *mockLocations) LockTx(ctx context.Context, tx pgx.Tx, id int64) (*screen.Location, error) {
	args := m.Called(ctx, tx, id)
	l, _ := args.Get(0).(*screen.Location)
	return l, args.Error(1)
}

type mockOptions struct{ mock.Mock }

func (m *mockOptions) FindByID(ctx context.Context, id int64) (*screen.PricingOption, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*screen.PricingOption)
	return o, args.Error(1)
}

type mockInvoices struct{ mock.Mock }

func (m *mockInvoices) GenerateForBookingTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) (*invoice.Invoice, error) {
	args := m.Called(ctx, tx, b)
	i, _ := args.Get(0).(*invoice.Invoice)
	return i, args.Error(1)
}

type mockAudit struct{ mock.Mock }

func (m *mockAudit) CreateTx(ctx context.Context, tx pgx.Tx, e *audit.Entry) error {
	return m.Called(ctx, tx, e).Error(0)
}

type recordingNotifier struct{ events []notification.Event }

func (r *recordingNotifier) Notify(ctx context.Context, ev notification.Event) {
	r.events = append(r.events, ev)
}

package booking

import (
	"context"
	"testing"
	"time"

	"adscreen-service/internal/domain/audit"
	"adscreen-service/internal/domain/auth"
	"adscreen-service/internal/domain/booking"
	"adscreen-service/internal/domain/invoice"
	"adscreen-service/internal/domain/notification"
	"adscreen-service/internal/domain/screen"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc       *BookingService
	tx        *fakeTx
	bookings  *mockBookings
	locations *mockLocations
	options   *mockOptions
	invoices  *mockInvoices
	audit     *mockAudit
	notifier  *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		tx:        &fakeTx{},
		bookings:  &mockBookings{},
		locations: &mockLocations{},
		options:   &mockOptions{},
		invoices:  &mockInvoices{},
		audit:     &mockAudit{},
		notifier:  &recordingNotifier{},
	}
	f.svc = NewBookingService(f.tx, f.bookings, f.locations, f.options, f.invoices, f.audit, f.notifier, zap.NewNop())
	f.svc.now = func() time.Time { return time.Date(2024, 5, 30, 9, 0, 0, 0, time.UTC) }

	t.Cleanup(func() {
		f.bookings.AssertExpectations(t)
		f.locations.AssertExpectations(t)
		f.options.AssertExpectations(t)
		f.invoices.AssertExpectations(t)
		f.audit.AssertExpectations(t)
	})
	return f
}

func activeLocation() *screen.Location {
	return &screen.Location{
		ID:          7,
		NameEn:      "Riyadh Park",
		NameAr:      "الرياض بارك",
		DailyPrice:  decimal.NewFromInt(100),
		ScreenCount: 2,
		IsActive:    true,
	}
}

func approvedBooking(id int64, start, end string) booking.ScreenBooking {
	return booking.ScreenBooking{
		ID:         id,
		LocationID: 7,
		StartDate:  date(start),
		EndDate:    date(end),
		Status:     booking.StatusApproved,
	}
}

func TestCheckAvailability_OverlapWithApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	existing := approvedBooking(1, "2024-06-01", "2024-06-05")
	f.locations.On("FindByID", ctx, int64(7)).Return(activeLocation(), nil)
	f.bookings.On("FindConflicting", ctx, int64(7), date("2024-06-03"), date("2024-06-07"), (*int64)(nil)).
		Return([]booking.ScreenBooking{existing}, nil)

	got, err := f.svc.CheckAvailability(ctx, &booking.AvailabilityRequest{
		LocationID: 7,
		StartDate:  "2024-06-03",
		EndDate:    "2024-06-07",
	})
	require.NoError(t, err)
	assert.False(t, got.IsAvailable)
	require.Len(t, got.ConflictingBookings, 1)
	assert.Equal(t, int64(1), got.ConflictingBookings[0].ID)
}

func TestCheckAvailability_Free(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	exclude := int64(12)

	f.locations.On("FindByID", ctx, int64(7)).Return(activeLocation(), nil)
	f.bookings.On("FindConflicting", ctx, int64(7), date("2024-06-10"), date("2024-06-12"), &exclude).
		Return([]booking.ScreenBooking{}, nil)

	got, err := f.svc.CheckAvailability(ctx, &booking.AvailabilityRequest{
		LocationID:       7,
		StartDate:        "2024-06-10",
		EndDate:          "2024-06-12",
		ExcludeBookingID: &exclude,
	})
	require.NoError(t, err)
	assert.True(t, got.IsAvailable)
	assert.Empty(t, got.ConflictingBookings)
}

func TestCheckAvailability_EndBeforeStart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CheckAvailability(context.Background(), &booking.AvailabilityRequest{
		LocationID: 7,
		StartDate:  "2024-06-10",
		EndDate:    "2024-06-09",
	})
	var verr *xerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, i18n.FieldDateOrder, verr.Fields["end_date"])
}

func TestCreate_ComputesPriceServerSide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.locations.On("FindByID", ctx, int64(7)).Return(activeLocation(), nil)
	f.bookings.On("FindConflicting", ctx, int64(7), date("2024-06-01"), date("2024-06-03"), (*int64)(nil)).
		Return([]booking.ScreenBooking{}, nil)
	f.bookings.On("CreateTx", ctx, mock.Anything, mock.AnythingOfType("*booking.ScreenBooking")).
		Run(func(args mock.Arguments) { args.Get(2).(*booking.ScreenBooking).ID = 55 }).
		Return(nil)
	f.audit.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionBookingCreated && e.EntityID == 55
	})).Return(nil)

	client := decimal.RequireFromString("300.00")
	b, err := f.svc.Create(ctx, 3, &booking.CreateBookingRequest{
		LocationID: 7,
		StartDate:  "2024-06-01",
		EndDate:    "2024-06-03",
		TotalCost:  &client,
	}, &booking.Media{URL: "/uploads/abc.png", Type: booking.MediaImage})
	require.NoError(t, err)

	assert.Equal(t, booking.StatusPending, b.Status)
	assert.Equal(t, 3, b.Duration)
	assert.Equal(t, 1, b.NumberOfScreens)
	assert.Equal(t, "300.00", b.TotalPrice.StringFixed(2))
	require.NotNil(t, b.MediaType)
	assert.Equal(t, booking.MediaImage, *b.MediaType)
	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, notification.TypeBookingCreated, f.notifier.events[0].Type)
}

func TestCreate_RejectsMismatchedClientTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.locations.On("FindByID", ctx, int64(7)).Return(activeLocation(), nil)

	client := decimal.RequireFromString("1.00")
	_, err := f.svc.Create(ctx, 3, &booking.CreateBookingRequest{
		LocationID: 7,
		StartDate:  "2024-06-01",
		EndDate:    "2024-06-03",
		TotalCost:  &client,
	}, nil)

	var verr *xerrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, i18n.FieldPriceMismatch, verr.Fields["total_cost"])
	assert.Equal(t, 0, f.tx.calls)
}

func TestCreate_ToleratesRounding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.locations.On("FindByID", ctx, int64(7)).Return(activeLocation(), nil)
	f.bookings.On("FindConflicting", ctx, int64(7), mock.Anything, mock.Anything, (*int64)(nil)).
		Return([]booking.ScreenBooking{}, nil)
	f.bookings.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(nil)
	f.audit.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(nil)

	client := decimal.RequireFromString("299.99")
	b, err := f.svc.Create(ctx, 3, &booking.CreateBookingRequest{
		LocationID: 7,
		StartDate:  "2024-06-01",
		EndDate:    "2024-06-03",
		TotalCost:  &client,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "300.00", b.TotalPrice.StringFixed(2))
}

func TestCreate_ConflictWithApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.locations.On("FindByID", ctx, int64(7)).Return(activeLocation(), nil)
	f.bookings.On("FindConflicting", ctx, int64(7), mock.Anything, mock.Anything, (*int64)(nil)).
		Return([]booking.ScreenBooking{approvedBooking(1, "2024-06-01", "2024-06-05")}, nil)

	_, err := f.svc.Create(ctx, 3, &booking.CreateBookingRequest{
		LocationID: 7,
		StartDate:  "2024-06-03",
		EndDate:    "2024-06-07",
	}, nil)

	var cerr *xerrors.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, i18n.MsgLocationUnavailable, cerr.MessageID)
	assert.ErrorIs(t, err, xerrors.ErrConflict)
}

func TestCreate_Validation(t *testing.T) {
	inactive := activeLocation()
	inactive.IsActive = false

	otherLocationOption := &screen.PricingOption{ID: 4, LocationID: 99, Unit: screen.UnitDay, Price: decimal.NewFromInt(10), IsActive: true}
	boundedOption := &screen.PricingOption{ID: 5, LocationID: 7, Unit: screen.UnitDay, Price: decimal.NewFromInt(10), MinDuration: intPtr(5), IsActive: true}

	tests := []struct {
		name      string
		req       booking.CreateBookingRequest
		location  *screen.Location
		option    *screen.PricingOption
		wantField string
		wantMsg   string
	}{
		{
			name:      "start far in the past",
			req:       booking.CreateBookingRequest{LocationID: 7, StartDate: "2024-05-01", EndDate: "2024-06-01"},
			wantField: "start_date",
			wantMsg:   i18n.FieldDateInPast,
		},
		{
			name:      "inactive location",
			req:       booking.CreateBookingRequest{LocationID: 7, StartDate: "2024-06-01", EndDate: "2024-06-02"},
			location:  inactive,
			wantField: "location_id",
			wantMsg:   i18n.FieldLocationInactive,
		},
		{
			name:      "option of another location",
			req:       booking.CreateBookingRequest{LocationID: 7, PricingOptionID: ptr64(4), StartDate: "2024-06-01", EndDate: "2024-06-02"},
			location:  activeLocation(),
			option:    otherLocationOption,
			wantField: "pricing_option_id",
			wantMsg:   i18n.FieldOptionLocation,
		},
		{
			name:      "duration below option minimum",
			req:       booking.CreateBookingRequest{LocationID: 7, PricingOptionID: ptr64(5), StartDate: "2024-06-01", EndDate: "2024-06-02"},
			location:  activeLocation(),
			option:    boundedOption,
			wantField: "end_date",
			wantMsg:   i18n.FieldDurationBounds,
		},
		{
			name:      "more screens than the location has",
			req:       booking.CreateBookingRequest{LocationID: 7, NumberOfScreens: intPtr(3), StartDate: "2024-06-01", EndDate: "2024-06-02"},
			location:  activeLocation(),
			wantField: "number_of_screens",
			wantMsg:   i18n.FieldMax,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			if tt.location != nil {
				f.locations.On("FindByID", ctx, int64(7)).Return(tt.location, nil)
			}
			if tt.option != nil {
				f.options.On("FindByID", ctx, tt.option.ID).Return(tt.option, nil)
			}

			_, err := f.svc.Create(ctx, 3, &tt.req, nil)
			var verr *xerrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMsg, verr.Fields[tt.wantField])
		})
	}
}

func pendingBooking() *booking.ScreenBooking {
	return &booking.ScreenBooking{
		ID:         42,
		MerchantID: 3,
		LocationID: 7,
		StartDate:  date("2024-06-01"),
		EndDate:    date("2024-06-05"),
		TotalPrice: decimal.NewFromInt(500),
		Status:     booking.StatusPending,
	}
}

func TestApprove_IssuesInvoiceInTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := int64(42)

	f.bookings.On("FindByID", ctx, id).Return(pendingBooking(), nil)
	f.locations.On("LockTx", ctx, mock.Anything, int64(7)).Return(activeLocation(), nil)
	f.bookings.On("FindByIDForUpdateTx", ctx, mock.Anything, id).Return(pendingBooking(), nil)
	f.bookings.On("FindConflictingTx", ctx, mock.Anything, int64(7), date("2024-06-01"), date("2024-06-05"), &id).
		Return([]booking.ScreenBooking{}, nil)
	f.bookings.On("ApproveTx", ctx, mock.Anything, mock.MatchedBy(func(b *booking.ScreenBooking) bool {
		return b.Status == booking.StatusApproved && b.ApprovedAt != nil && *b.ApprovedBy == 1
	})).Return(nil)
	f.invoices.On("GenerateForBookingTx", ctx, mock.Anything, mock.Anything).Return(&invoice.Invoice{
		ID:            9,
		InvoiceNumber: "INV-1717200000000-42",
		Subtotal:      decimal.NewFromInt(500),
		TaxAmount:     decimal.NewFromInt(75),
		TotalAmount:   decimal.NewFromInt(575),
	}, nil)
	f.audit.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionBookingApproved &&
			*e.PreviousValue == "pending" && *e.NewValue == "approved" && *e.ActorID == 1
	})).Return(nil)

	b, inv, err := f.svc.Approve(ctx, 1, id, &booking.ApproveRequest{AdminNotes: "looks good"})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusApproved, b.Status)
	assert.Equal(t, "looks good", *b.AdminNotes)
	assert.Equal(t, "575", inv.TotalAmount.String())
	assert.Equal(t, 1, f.tx.calls)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, notification.TypeBookingApproved, f.notifier.events[0].Type)
	assert.Equal(t, int64(3), f.notifier.events[0].UserID)
}

func TestApprove_ConflictDetectedUnderLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := int64(42)

	f.bookings.On("FindByID", ctx, id).Return(pendingBooking(), nil)
	f.locations.On("LockTx", ctx, mock.Anything, int64(7)).Return(activeLocation(), nil)
	f.bookings.On("FindByIDForUpdateTx", ctx, mock.Anything, id).Return(pendingBooking(), nil)
	f.bookings.On("FindConflictingTx", ctx, mock.Anything, int64(7), mock.Anything, mock.Anything, &id).
		Return([]booking.ScreenBooking{approvedBooking(40, "2024-06-04", "2024-06-08")}, nil)

	_, _, err := f.svc.Approve(ctx, 1, id, nil)
	var cerr *xerrors.ConflictError
	require.ErrorAs(t, err, &cerr)
	f.bookings.AssertNotCalled(t, "ApproveTx", mock.Anything, mock.Anything, mock.Anything)
	f.invoices.AssertNotCalled(t, "GenerateForBookingTx", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.events)
}

func TestApprove_InvoiceFailureSurfaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := int64(42)

	f.bookings.On("FindByID", ctx, id).Return(pendingBooking(), nil)
	f.locations.On("LockTx", ctx, mock.Anything, int64(7)).Return(activeLocation(), nil)
	f.bookings.On("FindByIDForUpdateTx", ctx, mock.Anything, id).Return(pendingBooking(), nil)
	f.bookings.On("FindConflictingTx", ctx, mock.Anything, int64(7), mock.Anything, mock.Anything, &id).
		Return([]booking.ScreenBooking{}, nil)
	f.bookings.On("ApproveTx", ctx, mock.Anything, mock.Anything).Return(nil)
	f.invoices.On("GenerateForBookingTx", ctx, mock.Anything, mock.Anything).Return(nil, assert.AnError)

	_, _, err := f.svc.Approve(ctx, 1, id, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, f.notifier.events)
}

func TestApprove_NotPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := int64(42)

	rejected := pendingBooking()
	rejected.Status = booking.StatusRejected

	f.bookings.On("FindByID", ctx, id).Return(rejected, nil)
	f.locations.On("LockTx", ctx, mock.Anything, int64(7)).Return(activeLocation(), nil)
	f.bookings.On("FindByIDForUpdateTx", ctx, mock.Anything, id).Return(rejected, nil)

	_, _, err := f.svc.Approve(ctx, 1, id, nil)
	assert.ErrorIs(t, err, xerrors.ErrInvalidState)
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.bookings.On("FindByIDForUpdateTx", ctx, mock.Anything, int64(42)).Return(pendingBooking(), nil)
	f.bookings.On("RejectTx", ctx, mock.Anything, mock.MatchedBy(func(b *booking.ScreenBooking) bool {
		return b.Status == booking.StatusRejected && b.RejectedAt != nil && *b.RejectionReason == "blurry media"
	})).Return(nil)
	f.audit.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionBookingRejected
	})).Return(nil)

	b, err := f.svc.Reject(ctx, 1, 42, &booking.RejectRequest{Reason: "blurry media"})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusRejected, b.Status)
	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, notification.TypeBookingRejected, f.notifier.events[0].Type)
}

func TestCancel(t *testing.T) {
	t.Run("owner cancels pending", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		f.bookings.On("FindByIDForUpdateTx", ctx, mock.Anything, int64(42)).Return(pendingBooking(), nil)
		f.bookings.On("CancelTx", ctx, mock.Anything, mock.Anything).Return(nil)
		f.audit.On("CreateTx", ctx, mock.Anything, mock.Anything).Return(nil)

		b, err := f.svc.Cancel(ctx, auth.Principal{UserID: 3, Role: auth.RoleBusiness}, 42)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusCancelled, b.Status)
		assert.Empty(t, f.notifier.events)
	})

	t.Run("other merchant", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		f.bookings.On("FindByIDForUpdateTx", ctx, mock.Anything, int64(42)).Return(pendingBooking(), nil)

		_, err := f.svc.Cancel(ctx, auth.Principal{UserID: 8, Role: auth.RoleBusiness}, 42)
		assert.ErrorIs(t, err, xerrors.ErrNotFound)
	})

	t.Run("already approved", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()

		approved := pendingBooking()
		approved.Status = booking.StatusApproved
		f.bookings.On("FindByIDForUpdateTx", ctx, mock.Anything, int64(42)).Return(approved, nil)

		_, err := f.svc.Cancel(ctx, auth.Principal{UserID: 1, Role: auth.RoleAdmin}, 42)
		assert.ErrorIs(t, err, xerrors.ErrInvalidState)
	})
}

func TestUpdateNotes_AllowedAfterApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	approved := pendingBooking()
	approved.Status = booking.StatusApproved
	old := "old"
	approved.AdminNotes = &old

	f.bookings.On("FindByIDForUpdateTx", ctx, mock.Anything, int64(42)).Return(approved, nil)
	f.bookings.On("UpdateNotesTx", ctx, mock.Anything, int64(42), mock.MatchedBy(func(n *string) bool {
		return n != nil && *n == "new"
	})).Return(nil)
	f.audit.On("CreateTx", ctx, mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionBookingNotes && *e.PreviousValue == "old" && *e.NewValue == "new"
	})).Return(nil)

	b, err := f.svc.UpdateNotes(ctx, 1, 42, &booking.UpdateNotesRequest{AdminNotes: "new"})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusApproved, b.Status)
	assert.Equal(t, "new", *b.AdminNotes)
}

func TestList_ScopesMerchant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := int64(99)
	filters := &booking.BookingListFilters{MerchantID: &other}
	f.bookings.On("List", ctx, mock.MatchedBy(func(fl *booking.BookingListFilters) bool {
		return *fl.MerchantID == 3
	})).Run(func(args mock.Arguments) {
		fl := args.Get(1).(*booking.BookingListFilters)
		fl.Page, fl.PageSize = 1, 20
	}).Return([]booking.ScreenBooking{*pendingBooking()}, int64(1), nil)

	resp, err := f.svc.List(ctx, auth.Principal{UserID: 3, Role: auth.RoleBusiness}, filters)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	assert.Equal(t, 1, resp.TotalPages)
}

func ptr64(v int64) *int64 { return &v }

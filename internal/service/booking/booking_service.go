// internal/service/booking/booking_service.go
package booking

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
	"adscreen-service/internal/domain/screen"
	"adscreen-service/internal/metrics"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/money"
	"adscreen-service/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// maxPastStart is how far in the past a booking may start.
const maxPastStart = 24 * time.Hour

type BookingStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) error
	FindByID(ctx context.Context, id int64) (*booking.ScreenBooking, error)
	FindByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*booking.ScreenBooking, error)
	FindConflicting(ctx context.Context, locationID int64, start, end time.Time, exclude *int64) ([]booking.ScreenBooking, error)
	FindConflictingTx(ctx context.Context, tx pgx.Tx, locationID int64, start, end time.Time, exclude *int64) ([]booking.ScreenBooking, error)
	ApproveTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) error
	RejectTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) error
	CancelTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) error
	UpdateNotesTx(ctx context.Context, tx pgx.Tx, id int64, adminNotes *string) error
	List(ctx context.Context, filters *booking.BookingListFilters) ([]booking.ScreenBooking, int64, error)
}

type LocationStore interface {
	FindByID(ctx context.Context, id int64) (*screen.Location, error)
	LockTx(ctx context.Context, tx pgx.Tx, id int64) (*screen.Location, error)
}

type PricingOptionStore interface {
	FindByID(ctx context.Context, id int64) (*screen.PricingOption, error)
}

type InvoiceGenerator interface {
	GenerateForBookingTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) (*invoice.Invoice, error)
}

type AuditWriter interface {
	CreateTx(ctx context.Context, tx pgx.Tx, e *audit.Entry) error
}

type Notifier interface {
	Notify(ctx context.Context, ev notification.Event)
}

type BookingService struct {
	tx        postgres.TxRunner
	bookings  BookingStore
	locations LocationStore
	options   PricingOptionStore
	invoices  InvoiceGenerator
	audit     AuditWriter
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

func NewBookingService(
	tx postgres.TxRunner,
	bookings BookingStore,
	locations LocationStore,
	options PricingOptionStore,
	invoices InvoiceGenerator,
	auditLog AuditWriter,
	notifier Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:        tx,
		bookings:  bookings,
		locations: locations,
		options:   options,
		invoices:  invoices,
		audit:     auditLog,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// ========== Availability ==========

// CheckAvailability reports approved bookings overlapping the inclusive range.
// It takes no locks; approval re-checks under a row lock.
func (s *BookingService) CheckAvailability(ctx context.Context, req *booking.AvailabilityRequest) (*booking.Availability, error) {
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.locations.FindByID(ctx, req.LocationID); err != nil {
		return nil, err
	}

	conflicts, err := s.bookings.FindConflicting(ctx, req.LocationID, start, end, req.ExcludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}

	return &booking.Availability{
		IsAvailable:         len(conflicts) == 0,
		ConflictingBookings: conflicts,
	}, nil
}

func parseRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := ParseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, xerrors.NewValidationError("start_date", i18n.FieldInvalid)
	}
	end, err := ParseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, xerrors.NewValidationError("end_date", i18n.FieldInvalid)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, xerrors.NewValidationError("end_date", i18n.FieldDateOrder)
	}
	return start, end, nil
}

// ========== Create ==========

// Create validates and prices a booking request and stores it as pending.
// media may be nil when the merchant uploads the creative later.
func (s *BookingService) Create(ctx context.Context, merchantID int64, req *booking.CreateBookingRequest, media *booking.Media) (*booking.ScreenBooking, error) {
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if start.Before(s.now().Add(-maxPastStart)) {
		return nil, xerrors.NewValidationError("start_date", i18n.FieldDateInPast)
	}

	loc, err := s.locations.FindByID(ctx, req.LocationID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.NewValidationError("location_id", i18n.FieldInvalid)
		}
		return nil, err
	}
	if !loc.IsActive {
		return nil, xerrors.NewValidationError("location_id", i18n.FieldLocationInactive)
	}

	var opt *screen.PricingOption
	if req.PricingOptionID != nil {
		opt, err = s.options.FindByID(ctx, *req.PricingOptionID)
		if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
			return nil, err
		}
		if opt == nil || opt.LocationID != loc.ID || !opt.IsActive {
			return nil, xerrors.NewValidationError("pricing_option_id", i18n.FieldOptionLocation)
		}
	}

	screens := 1
	if req.NumberOfScreens != nil {
		screens = *req.NumberOfScreens
	}
	if screens > loc.ScreenCount {
		return nil, xerrors.NewValidationError("number_of_screens", i18n.FieldMax)
	}

	quote, err := Calculate(loc, opt, start, end, screens)
	if err != nil {
		if errors.Is(err, ErrDurationOutOfBounds) {
			return nil, xerrors.NewValidationError("end_date", i18n.FieldDurationBounds)
		}
		return nil, err
	}

	if req.TotalCost != nil && !money.WithinTolerance(*req.TotalCost, quote.Total) {
		s.logger.Warn("client total does not match server price",
			zap.Int64("merchant_id", merchantID),
			zap.String("client_total", req.TotalCost.String()),
			zap.String("server_total", quote.Total.String()))
		return nil, xerrors.NewValidationError("total_cost", i18n.FieldPriceMismatch)
	}

	conflicts, err := s.bookings.FindConflicting(ctx, loc.ID, start, end, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, &xerrors.ConflictError{MessageID: i18n.MsgLocationUnavailable, Details: conflicts}
	}

	b := &booking.ScreenBooking{
		MerchantID:      merchantID,
		LocationID:      loc.ID,
		PricingOptionID: req.PricingOptionID,
		CampaignTitle:   optional(req.CampaignTitle),
		StartDate:       start,
		EndDate:         end,
		Duration:        quote.Duration,
		DurationUnit:    quote.Unit,
		NumberOfScreens: quote.NumberOfScreens,
		UnitPrice:       quote.UnitPrice,
		TotalPrice:      quote.Total,
		Status:          booking.StatusPending,
		MerchantNotes:   optional(req.Notes),
	}
	if media != nil {
		b.MediaURL = &media.URL
		mt := media.Type
		b.MediaType = &mt
	}

	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
			return err
		}
		return s.audit.CreateTx(ctx, tx, &audit.Entry{
			ActorID:    &merchantID,
			Action:     audit.ActionBookingCreated,
			EntityType: audit.EntityBooking,
			EntityID:   b.ID,
			NewValue:   statusPtr(booking.StatusPending),
			Metadata: map[string]interface{}{
				"location_id": b.LocationID,
				"total_price": b.TotalPrice.String(),
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	metrics.BookingTransitions.WithLabelValues(string(booking.StatusPending)).Inc()
	s.logger.Info("screen booking created",
		zap.Int64("booking_id", b.ID),
		zap.Int64("merchant_id", merchantID),
		zap.Int64("location_id", loc.ID),
		zap.String("total", b.TotalPrice.String()))

	s.notifier.Notify(ctx, notification.Event{
		UserID:    merchantID,
		Type:      notification.TypeBookingCreated,
		TitleAr:   "تم استلام طلب الحجز",
		TitleEn:   "Booking request received",
		MessageAr: fmt.Sprintf("طلب حجز الشاشة في %s قيد المراجعة", loc.NameAr),
		MessageEn: fmt.Sprintf("Your screen booking at %s is pending review", loc.NameEn),
		Metadata:  map[string]interface{}{"booking_id": b.ID},
	})

	return b, nil
}

// ========== Admin transitions ==========

// Approve locks the location and the booking, re-validates availability and
// issues the invoice in the same transaction. Any failure leaves the booking pending.
func (s *BookingService) Approve(ctx context.Context, adminID, bookingID int64, req *booking.ApproveRequest) (*booking.ScreenBooking, *invoice.Invoice, error) {
	current, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}

	var approved *booking.ScreenBooking
	var inv *invoice.Invoice

	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := s.locations.LockTx(ctx, tx, current.LocationID); err != nil {
			return err
		}

		b, err := s.bookings.FindByIDForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !b.IsPending() {
			return fmt.Errorf("booking %d is %s: %w", b.ID, b.Status, xerrors.ErrInvalidState)
		}

		conflicts, err := s.bookings.FindConflictingTx(ctx, tx, b.LocationID, b.StartDate, b.EndDate, &b.ID)
		if err != nil {
			return fmt.Errorf("failed to re-check availability: %w", err)
		}
		if len(conflicts) > 0 {
			return &xerrors.ConflictError{MessageID: i18n.MsgLocationUnavailable, Details: conflicts}
		}

		now := s.now()
		b.Status = booking.StatusApproved
		b.ApprovedAt = &now
		b.ApprovedBy = &adminID
		if req != nil && req.AdminNotes != "" {
			b.AdminNotes = &req.AdminNotes
		}
		if err := s.bookings.ApproveTx(ctx, tx, b); err != nil {
			return err
		}

		inv, err = s.invoices.GenerateForBookingTx(ctx, tx, b)
		if err != nil {
			return fmt.Errorf("failed to generate invoice: %w", err)
		}

		if err := s.audit.CreateTx(ctx, tx, &audit.Entry{
			ActorID:       &adminID,
			Action:        audit.ActionBookingApproved,
			EntityType:    audit.EntityBooking,
			EntityID:      b.ID,
			PreviousValue: statusPtr(booking.StatusPending),
			NewValue:      statusPtr(booking.StatusApproved),
			Metadata:      map[string]interface{}{"invoice_number": inv.InvoiceNumber},
		}); err != nil {
			return err
		}

		approved = b
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.BookingTransitions.WithLabelValues(string(booking.StatusApproved)).Inc()
	s.logger.Info("screen booking approved",
		zap.Int64("booking_id", approved.ID),
		zap.Int64("admin_id", adminID),
		zap.String("invoice_number", inv.InvoiceNumber))

	s.notifier.Notify(ctx, notification.Event{
		UserID:    approved.MerchantID,
		Type:      notification.TypeBookingApproved,
		TitleAr:   "تمت الموافقة على الحجز",
		TitleEn:   "Booking approved",
		MessageAr: fmt.Sprintf("تمت الموافقة على حجزك رقم %d وإصدار الفاتورة %s بمبلغ %s ريال", approved.ID, inv.InvoiceNumber, inv.TotalAmount.StringFixed(2)),
		MessageEn: fmt.Sprintf("Booking #%d was approved. Invoice %s for %s SAR has been issued", approved.ID, inv.InvoiceNumber, inv.TotalAmount.StringFixed(2)),
		Metadata: map[string]interface{}{
			"booking_id": approved.ID,
			"invoice_id": inv.ID,
		},
	})

	return approved, inv, nil
}

func (s *BookingService) Reject(ctx context.Context, adminID, bookingID int64, req *booking.RejectRequest) (*booking.ScreenBooking, error) {
	var rejected *booking.ScreenBooking

	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.FindByIDForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !b.IsPending() {
			return fmt.Errorf("booking %d is %s: %w", b.ID, b.Status, xerrors.ErrInvalidState)
		}

		now := s.now()
		b.Status = booking.StatusRejected
		b.RejectedAt = &now
		b.RejectionReason = &req.Reason
		if err := s.bookings.RejectTx(ctx, tx, b); err != nil {
			return err
		}

		if err := s.audit.CreateTx(ctx, tx, &audit.Entry{
			ActorID:       &adminID,
			Action:        audit.ActionBookingRejected,
			EntityType:    audit.EntityBooking,
			EntityID:      b.ID,
			PreviousValue: statusPtr(booking.StatusPending),
			NewValue:      statusPtr(booking.StatusRejected),
			Metadata:      map[string]interface{}{"reason": req.Reason},
		}); err != nil {
			return err
		}

		rejected = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues(string(booking.StatusRejected)).Inc()
	s.logger.Info("screen booking rejected", zap.Int64("booking_id", rejected.ID), zap.Int64("admin_id", adminID))

	s.notifier.Notify(ctx, notification.Event{
		UserID:    rejected.MerchantID,
		Type:      notification.TypeBookingRejected,
		TitleAr:   "تم رفض الحجز",
		TitleEn:   "Booking rejected",
		MessageAr: fmt.Sprintf("تم رفض حجزك رقم %d. السبب: %s", rejected.ID, req.Reason),
		MessageEn: fmt.Sprintf("Booking #%d was rejected. Reason: %s", rejected.ID, req.Reason),
		Metadata:  map[string]interface{}{"booking_id": rejected.ID},
	})

	return rejected, nil
}

// Cancel withdraws a pending booking. Merchants may only cancel their own.
func (s *BookingService) Cancel(ctx context.Context, actor auth.Principal, bookingID int64) (*booking.ScreenBooking, error) {
	var cancelled *booking.ScreenBooking

	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.FindByIDForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if !actor.CanAccess(b.MerchantID) {
			return xerrors.ErrNotFound
		}
		if !b.IsPending() {
			return fmt.Errorf("booking %d is %s: %w", b.ID, b.Status, xerrors.ErrInvalidState)
		}

		now := s.now()
		b.Status = booking.StatusCancelled
		b.CancelledAt = &now
		if err := s.bookings.CancelTx(ctx, tx, b); err != nil {
			return err
		}

		if err := s.audit.CreateTx(ctx, tx, &audit.Entry{
			ActorID:       &actor.UserID,
			Action:        audit.ActionBookingCancelled,
			EntityType:    audit.EntityBooking,
			EntityID:      b.ID,
			PreviousValue: statusPtr(booking.StatusPending),
			NewValue:      statusPtr(booking.StatusCancelled),
		}); err != nil {
			return err
		}

		cancelled = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues(string(booking.StatusCancelled)).Inc()
	s.logger.Info("screen booking cancelled", zap.Int64("booking_id", cancelled.ID), zap.Int64("actor_id", actor.UserID))

	if actor.UserID != cancelled.MerchantID {
		s.notifier.Notify(ctx, notification.Event{
			UserID:    cancelled.MerchantID,
			Type:      notification.TypeBookingCancelled,
			TitleAr:   "تم إلغاء الحجز",
			TitleEn:   "Booking cancelled",
			MessageAr: fmt.Sprintf("تم إلغاء حجزك رقم %d من قبل الإدارة", cancelled.ID),
			MessageEn: fmt.Sprintf("Booking #%d was cancelled by an administrator", cancelled.ID),
			Metadata:  map[string]interface{}{"booking_id": cancelled.ID},
		})
	}

	return cancelled, nil
}

// UpdateNotes edits admin notes, the only field that may change after approval.
func (s *BookingService) UpdateNotes(ctx context.Context, adminID, bookingID int64, req *booking.UpdateNotesRequest) (*booking.ScreenBooking, error) {
	var updated *booking.ScreenBooking

	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		b, err := s.bookings.FindByIDForUpdateTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		previous := b.AdminNotes
		b.AdminNotes = optional(req.AdminNotes)
		if err := s.bookings.UpdateNotesTx(ctx, tx, b.ID, b.AdminNotes); err != nil {
			return err
		}

		if err := s.audit.CreateTx(ctx, tx, &audit.Entry{
			ActorID:       &adminID,
			Action:        audit.ActionBookingNotes,
			EntityType:    audit.EntityBooking,
			EntityID:      b.ID,
			PreviousValue: previous,
			NewValue:      b.AdminNotes,
		}); err != nil {
			return err
		}

		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ========== Queries ==========

func (s *BookingService) Get(ctx context.Context, actor auth.Principal, bookingID int64) (*booking.ScreenBooking, error) {
	b, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(b.MerchantID) {
		return nil, xerrors.ErrNotFound
	}
	return b, nil
}

// List scopes merchants to their own bookings; admins see all.
func (s *BookingService) List(ctx context.Context, actor auth.Principal, filters *booking.BookingListFilters) (*booking.BookingListResponse, error) {
	if !actor.IsAdmin() {
		filters.MerchantID = &actor.UserID
	}

	bookings, total, err := s.bookings.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return &booking.BookingListResponse{
		Bookings:   bookings,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: postgres.TotalPages(total, filters.PageSize),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func statusPtr(s booking.BookingStatus) *string {
	v := string(s)
	return &v
}

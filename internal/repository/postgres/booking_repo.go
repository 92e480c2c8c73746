// internal/repository/postgres/booking_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"adscreen-service/internal/domain/booking"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	id, merchant_id, location_id, pricing_option_id, campaign_title, start_date, end_date,
	duration, duration_unit, number_of_screens, unit_price, total_price, status,
	media_url, media_type, merchant_notes, admin_notes, rejection_reason,
	invoice_generated, invoice_number, approved_at, approved_by, rejected_at, cancelled_at,
	created_at, updated_at`

func scanBooking(row pgx.Row) (*booking.ScreenBooking, error) {
	var b booking.ScreenBooking
	err := row.Scan(
		&b.ID, &b.MerchantID, &b.LocationID, &b.PricingOptionID, &b.CampaignTitle, &b.StartDate, &b.EndDate,
		&b.Duration, &b.DurationUnit, &b.NumberOfScreens, &b.UnitPrice, &b.TotalPrice, &b.Status,
		&b.MediaURL, &b.MediaType, &b.MerchantNotes, &b.AdminNotes, &b.RejectionReason,
		&b.InvoiceGenerated, &b.InvoiceNumber, &b.ApprovedAt, &b.ApprovedBy, &b.RejectedAt, &b.CancelledAt,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]booking.ScreenBooking, error) {
	defer rows.Close()

	bookings := []booking.ScreenBooking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *BookingRepository) CreateTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) error {
	query := `
		INSERT INTO screen_bookings (
			merchant_id, location_id, pricing_option_id, campaign_title, start_date, end_date,
			duration, duration_unit, number_of_screens, unit_price, total_price, status,
			media_url, media_type, merchant_notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, invoice_generated, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query,
		b.MerchantID, b.LocationID, b.PricingOptionID, b.CampaignTitle, b.StartDate, b.EndDate,
		b.Duration, b.DurationUnit, b.NumberOfScreens, b.UnitPrice, b.TotalPrice, b.Status,
		b.MediaURL, b.MediaType, b.MerchantNotes,
	).Scan(&b.ID, &b.InvoiceGenerated, &b.CreatedAt, &b.UpdatedAt)
	return mapError(err, "failed to create booking")
}

func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*booking.ScreenBooking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM screen_bookings WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "failed to find booking")
	}
	return b, nil
}

func (r *BookingRepository) FindByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*booking.ScreenBooking, error) {
	b, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM screen_bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError(err, "failed to lock booking")
	}
	return b, nil
}

// FindConflicting returns approved bookings at the location whose inclusive
// date range intersects [start, end]. exclude skips one booking id.
func (r *BookingRepository) FindConflicting(ctx context.Context, locationID int64, start, end time.Time, exclude *int64) ([]booking.ScreenBooking, error) {
	return findConflicting(ctx, r.db, locationID, start, end, exclude)
}

func (r *BookingRepository) FindConflictingTx(ctx context.Context, tx pgx.Tx, locationID int64, start, end time.Time, exclude *int64) ([]booking.ScreenBooking, error) {
	return findConflicting(ctx, tx, locationID, start, end, exclude)
}

func findConflicting(ctx context.Context, q querier, locationID int64, start, end time.Time, exclude *int64) ([]booking.ScreenBooking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM screen_bookings
		WHERE location_id = $1
		  AND status = 'approved'
		  AND start_date <= $3
		  AND end_date >= $2
		  AND ($4::BIGINT IS NULL OR id <> $4)
		ORDER BY start_date
	`
	rows, err := q.Query(ctx, query, locationID, start, end, exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting bookings: %w", err)
	}
	return collectBookings(rows)
}

func (r *BookingRepository) ApproveTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) error {
	query := `
		UPDATE screen_bookings
		SET status = 'approved', approved_at = $2, approved_by = $3, admin_notes = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query, b.ID, b.ApprovedAt, b.ApprovedBy, b.AdminNotes).Scan(&b.UpdatedAt)
	return mapError(err, "failed to approve booking")
}

func (r *BookingRepository) MarkInvoicedTx(ctx context.Context, tx pgx.Tx, id int64, invoiceNumber string) error {
	_, err := tx.Exec(ctx, `
		UPDATE screen_bookings SET invoice_generated = TRUE, invoice_number = $2, updated_at = NOW()
		WHERE id = $1
	`, id, invoiceNumber)
	return mapError(err, "failed to mark booking invoiced")
}

func (r *BookingRepository) RejectTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) error {
	query := `
		UPDATE screen_bookings
		SET status = 'rejected', rejected_at = $2, rejection_reason = $3, admin_notes = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query, b.ID, b.RejectedAt, b.RejectionReason, b.AdminNotes).Scan(&b.UpdatedAt)
	return mapError(err, "failed to reject booking")
}

func (r *BookingRepository) CancelTx(ctx context.Context, tx pgx.Tx, b *booking.ScreenBooking) error {
	query := `
		UPDATE screen_bookings
		SET status = 'cancelled', cancelled_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query, b.ID, b.CancelledAt).Scan(&b.UpdatedAt)
	return mapError(err, "failed to cancel booking")
}

func (r *BookingRepository) UpdateNotesTx(ctx context.Context, tx pgx.Tx, id int64, adminNotes *string) error {
	tag, err := tx.Exec(ctx, `UPDATE screen_bookings SET admin_notes = $2, updated_at = NOW() WHERE id = $1`, id, adminNotes)
	if err != nil {
		return mapError(err, "failed to update booking notes")
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "")
	}
	return nil
}

func (r *BookingRepository) List(ctx context.Context, filters *booking.BookingListFilters) ([]booking.ScreenBooking, int64, error) {
	var w where
	if filters.MerchantID != nil {
		w.add("merchant_id = $%d", *filters.MerchantID)
	}
	if filters.LocationID != nil {
		w.add("location_id = $%d", *filters.LocationID)
	}
	if filters.Status != nil {
		w.add("status = $%d", *filters.Status)
	}

	var total int64
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM screen_bookings WHERE %s", w.clause()), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	page, size, offset := normalizePage(filters.Page, filters.PageSize)
	filters.Page, filters.PageSize = page, size

	query := fmt.Sprintf(`SELECT %s FROM screen_bookings WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		bookingColumns, w.clause(), w.next(), w.next()+1)

	rows, err := r.db.Query(ctx, query, append(w.args, size, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

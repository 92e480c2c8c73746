// internal/repository/postgres/invoice_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adscreen-service/internal/domain/invoice"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInvoiceNumberTaken is returned when the generated invoice number collides
// with an existing one. The enclosing transaction stays usable.
var ErrInvoiceNumberTaken = errors.New("invoice number already taken")

const invoiceNumberConstraint = "invoices_invoice_number_key"

type InvoiceRepository struct {
	db *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `
	id, invoice_number, invoice_type, merchant_id, booking_id, plan_id, description,
	subtotal, tax_rate, tax_amount, total_amount, currency, status, issue_date, due_date,
	paid_at, payment_id, transaction_id, gateway_status, created_at, updated_at`

func scanInvoice(row pgx.Row) (*invoice.Invoice, error) {
	var i invoice.Invoice
	err := row.Scan(
		&i.ID, &i.InvoiceNumber, &i.InvoiceType, &i.MerchantID, &i.BookingID, &i.PlanID, &i.Description,
		&i.Subtotal, &i.TaxRate, &i.TaxAmount, &i.TotalAmount, &i.Currency, &i.Status, &i.IssueDate, &i.DueDate,
		&i.PaidAt, &i.PaymentID, &i.TransactionID, &i.GatewayStatus, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// CreateTx inserts the invoice under a savepoint so a number collision can be
// retried by the caller without aborting the outer transaction.
func (r *InvoiceRepository) CreateTx(ctx context.Context, tx pgx.Tx, i *invoice.Invoice) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to open savepoint: %w", err)
	}

	query := `
		INSERT INTO invoices (
			invoice_number, invoice_type, merchant_id, booking_id, plan_id, description,
			subtotal, tax_rate, tax_amount, total_amount, currency, status, issue_date, due_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`
	err = sp.QueryRow(ctx, query,
		i.InvoiceNumber, i.InvoiceType, i.MerchantID, i.BookingID, i.PlanID, i.Description,
		i.Subtotal, i.TaxRate, i.TaxAmount, i.TotalAmount, i.Currency, i.Status, i.IssueDate, i.DueDate,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		_ = sp.Rollback(ctx)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == invoiceNumberConstraint {
			return ErrInvoiceNumberTaken
		}
		return mapError(err, "failed to create invoice")
	}
	return sp.Commit(ctx)
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id int64) (*invoice.Invoice, error) {
	i, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "failed to find invoice")
	}
	return i, nil
}

func (r *InvoiceRepository) FindByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*invoice.Invoice, error) {
	i, err := scanInvoice(tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError(err, "failed to lock invoice")
	}
	return i, nil
}

// UpdatePaymentTx stores the gateway outcome along with the new status.
func (r *InvoiceRepository) UpdatePaymentTx(ctx context.Context, tx pgx.Tx, i *invoice.Invoice) error {
	query := `
		UPDATE invoices
		SET status = $2, paid_at = $3, payment_id = $4, transaction_id = $5, gateway_status = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query, i.ID, i.Status, i.PaidAt, i.PaymentID, i.TransactionID, i.GatewayStatus).Scan(&i.UpdatedAt)
	return mapError(err, "failed to update invoice payment")
}

// MarkOverdueTx flips unpaid invoices past their due date and returns them.
func (r *InvoiceRepository) MarkOverdueTx(ctx context.Context, tx pgx.Tx, now time.Time) ([]invoice.Invoice, error) {
	query := `
		UPDATE invoices SET status = 'overdue', updated_at = NOW()
		WHERE status = 'unpaid' AND due_date < $1
		RETURNING ` + invoiceColumns
	rows, err := tx.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to mark overdue invoices: %w", err)
	}
	defer rows.Close()

	invoices := []invoice.Invoice{}
	for rows.Next() {
		i, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *i)
	}
	return invoices, rows.Err()
}

func (r *InvoiceRepository) List(ctx context.Context, filters *invoice.InvoiceListFilters) ([]invoice.Invoice, int64, error) {
	var w where
	if filters.MerchantID != nil {
		w.add("merchant_id = $%d", *filters.MerchantID)
	}
	if filters.Status != nil {
		w.add("status = $%d", *filters.Status)
	}
	if filters.Type != nil {
		w.add("invoice_type = $%d", *filters.Type)
	}
	if filters.From != nil {
		w.add("issue_date >= $%d", *filters.From)
	}
	if filters.To != nil {
		w.add("issue_date < $%d", filters.To.AddDate(0, 0, 1))
	}

	var total int64
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM invoices WHERE %s", w.clause()), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	page, size, offset := normalizePage(filters.Page, filters.PageSize)
	filters.Page, filters.PageSize = page, size

	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE %s ORDER BY issue_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		invoiceColumns, w.clause(), w.next(), w.next()+1)

	rows, err := r.db.Query(ctx, query, append(w.args, size, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []invoice.Invoice{}
	for rows.Next() {
		i, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, *i)
	}
	return invoices, total, rows.Err()
}

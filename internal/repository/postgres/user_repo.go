// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"adscreen-service/internal/domain/auth"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, email, password_hash, full_name, phone, role, business_name,
	subscription_plan, subscription_expiry, offer_limit, is_active,
	last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.BusinessName,
		&u.SubscriptionPlan, &u.SubscriptionExpiry, &u.OfferLimit, &u.IsActive,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user; a duplicate email surfaces as ErrConflict.
func (r *UserRepository) Create(ctx context.Context, u *auth.User) error {
	query := `
		INSERT INTO users (email, password_hash, full_name, phone, role, business_name, offer_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		u.Email, u.PasswordHash, u.FullName, u.Phone, u.Role, u.BusinessName, u.OfferLimit, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	return mapError(err, "failed to create user")
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "failed to find user")
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, mapError(err, "failed to find user by email")
	}
	return u, nil
}

// FindByIDForUpdateTx locks the user row for the rest of the transaction.
func (r *UserRepository) FindByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*auth.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	u, err := scanUser(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "failed to lock user")
	}
	return u, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	return mapError(err, "failed to update last login")
}

// UpdateSubscriptionTx sets the merchant's denormalized plan fields.
func (r *UserRepository) UpdateSubscriptionTx(ctx context.Context, tx pgx.Tx, userID int64, planName *string, expiry *time.Time, offerLimit int) error {
	query := `
		UPDATE users
		SET subscription_plan = $2, subscription_expiry = $3, offer_limit = $4, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := tx.Exec(ctx, query, userID, planName, expiry, offerLimit)
	if err != nil {
		return mapError(err, "failed to update merchant subscription fields")
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "")
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, filters *auth.UserListFilters) ([]auth.User, int64, error) {
	var w where
	if filters.Role != "" {
		w.add("role = $%d", filters.Role)
	}
	if filters.Search != "" {
		w.add("(email ILIKE $%[1]d OR full_name ILIKE $%[1]d OR business_name ILIKE $%[1]d)", "%"+filters.Search+"%")
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users WHERE %s", w.clause())
	if err := r.db.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	page, size, offset := normalizePage(filters.Page, filters.PageSize)
	filters.Page, filters.PageSize = page, size

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, w.clause(), w.next(), w.next()+1)

	rows, err := r.db.Query(ctx, query, append(w.args, size, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []auth.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// internal/repository/postgres/offer_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"adscreen-service/internal/domain/offer"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OfferRepository struct {
	db *pgxpool.Pool
}

func NewOfferRepository(db *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{db: db}
}

const offerColumns = `
	id, merchant_id, category_id, title_en, title_ar, description_en, description_ar, slug,
	original_price, discounted_price, discount_percentage, image_url, city, starts_at, ends_at,
	status, is_featured, view_count, created_at, updated_at, deleted_at`

func scanOffer(row pgx.Row) (*offer.Offer, error) {
	var o offer.Offer
	err := row.Scan(
		&o.ID, &o.MerchantID, &o.CategoryID, &o.TitleEn, &o.TitleAr, &o.DescriptionEn, &o.DescriptionAr, &o.Slug,
		&o.OriginalPrice, &o.DiscountedPrice, &o.DiscountPercentage, &o.ImageURL, &o.City, &o.StartsAt, &o.EndsAt,
		&o.Status, &o.IsFeatured, &o.ViewCount, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateTx inserts an offer inside the quota-checking transaction.
func (r *OfferRepository) CreateTx(ctx context.Context, tx pgx.Tx, o *offer.Offer) error {
	query := `
		INSERT INTO offers (
			merchant_id, category_id, title_en, title_ar, description_en, description_ar, slug,
			original_price, discounted_price, discount_percentage, image_url, city, starts_at, ends_at,
			status, is_featured
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, view_count, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query,
		o.MerchantID, o.CategoryID, o.TitleEn, o.TitleAr, o.DescriptionEn, o.DescriptionAr, o.Slug,
		o.OriginalPrice, o.DiscountedPrice, o.DiscountPercentage, o.ImageURL, o.City, o.StartsAt, o.EndsAt,
		o.Status, o.IsFeatured,
	).Scan(&o.ID, &o.ViewCount, &o.CreatedAt, &o.UpdatedAt)
	return mapError(err, "failed to create offer")
}

// CountActiveByMerchantTx counts the merchant's non-deleted offers.
func (r *OfferRepository) CountActiveByMerchantTx(ctx context.Context, tx pgx.Tx, merchantID int64) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM offers WHERE merchant_id = $1 AND deleted_at IS NULL`, merchantID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count offers: %w", err)
	}
	return n, nil
}

func (r *OfferRepository) Update(ctx context.Context, o *offer.Offer) error {
	query := `
		UPDATE offers SET
			category_id = $2, title_en = $3, title_ar = $4, description_en = $5, description_ar = $6,
			original_price = $7, discounted_price = $8, discount_percentage = $9, image_url = $10,
			city = $11, starts_at = $12, ends_at = $13, status = $14, is_featured = $15, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		o.ID, o.CategoryID, o.TitleEn, o.TitleAr, o.DescriptionEn, o.DescriptionAr,
		o.OriginalPrice, o.DiscountedPrice, o.DiscountPercentage, o.ImageURL,
		o.City, o.StartsAt, o.EndsAt, o.Status, o.IsFeatured,
	).Scan(&o.UpdatedAt)
	return mapError(err, "failed to update offer")
}

func (r *OfferRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE offers SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return mapError(err, "failed to delete offer")
	}
	if tag.RowsAffected() == 0 {
		return mapError(pgx.ErrNoRows, "")
	}
	return nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id int64) (*offer.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1 AND deleted_at IS NULL`
	o, err := scanOffer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "failed to find offer")
	}
	return o, nil
}

func (r *OfferRepository) FindBySlug(ctx context.Context, slug string) (*offer.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE slug = $1 AND deleted_at IS NULL`
	o, err := scanOffer(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, mapError(err, "failed to find offer by slug")
	}
	return o, nil
}

func (r *OfferRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM offers WHERE slug = $1)`, slug).Scan(&exists)
	return exists, mapError(err, "failed to check offer slug")
}

func (r *OfferRepository) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE offers SET view_count = view_count + 1 WHERE id = $1`, id)
	return mapError(err, "failed to increment offer views")
}

func (r *OfferRepository) List(ctx context.Context, filters *offer.OfferListFilters) ([]offer.Offer, int64, error) {
	var w where
	w.raw("deleted_at IS NULL")
	if filters.MerchantID != nil {
		w.add("merchant_id = $%d", *filters.MerchantID)
	}
	if filters.CategoryID != nil {
		w.add("category_id = $%d", *filters.CategoryID)
	}
	if filters.City != "" {
		w.add("LOWER(city) = LOWER($%d)", filters.City)
	}
	if filters.Search != "" {
		w.add("(title_en ILIKE $%[1]d OR title_ar ILIKE $%[1]d)", "%"+filters.Search+"%")
	}
	if filters.Featured != nil {
		w.add("is_featured = $%d", *filters.Featured)
	}
	if filters.Status != nil {
		w.add("status = $%d", *filters.Status)
	}

	var total int64
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM offers WHERE %s", w.clause()), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count offers: %w", err)
	}

	page, size, offset := normalizePage(filters.Page, filters.PageSize)
	filters.Page, filters.PageSize = page, size

	query := fmt.Sprintf(`SELECT %s FROM offers WHERE %s ORDER BY is_featured DESC, created_at DESC LIMIT $%d OFFSET $%d`,
		offerColumns, w.clause(), w.next(), w.next()+1)

	rows, err := r.db.Query(ctx, query, append(w.args, size, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	offers := []offer.Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, *o)
	}
	return offers, total, rows.Err()
}

// ExpireEnded flips active offers whose end date passed to expired.
func (r *OfferRepository) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE offers SET status = 'expired', updated_at = NOW()
		WHERE status = 'active' AND ends_at IS NOT NULL AND ends_at < $1 AND deleted_at IS NULL
	`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire offers: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Saved offers

func (r *OfferRepository) Save(ctx context.Context, userID, offerID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO saved_offers (user_id, offer_id) VALUES ($1, $2)
		ON CONFLICT (user_id, offer_id) DO NOTHING
	`, userID, offerID)
	return mapError(err, "failed to save offer")
}

func (r *OfferRepository) Unsave(ctx context.Context, userID, offerID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM saved_offers WHERE user_id = $1 AND offer_id = $2`, userID, offerID)
	return mapError(err, "failed to unsave offer")
}

func (r *OfferRepository) ListSaved(ctx context.Context, userID int64) ([]offer.SavedOffer, error) {
	query := `
		SELECT s.user_id, s.offer_id, s.created_at, ` + prefixed("o", offerColumns) + `
		FROM saved_offers s
		JOIN offers o ON o.id = s.offer_id AND o.deleted_at IS NULL
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved offers: %w", err)
	}
	defer rows.Close()

	saved := []offer.SavedOffer{}
	for rows.Next() {
		var s offer.SavedOffer
		var o offer.Offer
		err := rows.Scan(
			&s.UserID, &s.OfferID, &s.CreatedAt,
			&o.ID, &o.MerchantID, &o.CategoryID, &o.TitleEn, &o.TitleAr, &o.DescriptionEn, &o.DescriptionAr, &o.Slug,
			&o.OriginalPrice, &o.DiscountedPrice, &o.DiscountPercentage, &o.ImageURL, &o.City, &o.StartsAt, &o.EndsAt,
			&o.Status, &o.IsFeatured, &o.ViewCount, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved offer: %w", err)
		}
		s.Offer = &o
		saved = append(saved, s)
	}
	return saved, rows.Err()
}

// internal/repository/postgres/category_repo.go
package postgres

import (
	"context"
	"fmt"

	"adscreen-service/internal/domain/offer"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryRepository struct {
	db *pgxpool.Pool
}

func NewCategoryRepository(db *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, name_en, name_ar, slug, icon, is_active, created_at, updated_at`

func scanCategory(row pgx.Row) (*offer.Category, error) {
	var c offer.Category
	if err := row.Scan(&c.ID, &c.NameEn, &c.NameAr, &c.Slug, &c.Icon, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *offer.Category) error {
	query := `
		INSERT INTO categories (name_en, name_ar, slug, icon, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, c.NameEn, c.NameAr, c.Slug, c.Icon, c.IsActive).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapError(err, "failed to create category")
}

func (r *CategoryRepository) Update(ctx context.Context, c *offer.Category) error {
	query := `
		UPDATE categories SET name_en = $2, name_ar = $3, icon = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, c.ID, c.NameEn, c.NameAr, c.Icon, c.IsActive).Scan(&c.UpdatedAt)
	return mapError(err, "failed to update category")
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*offer.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "failed to find category")
	}
	return c, nil
}

func (r *CategoryRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1)`, slug).Scan(&exists)
	return exists, mapError(err, "failed to check category slug")
}

func (r *CategoryRepository) List(ctx context.Context, includeInactive bool) ([]offer.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE is_active OR $1 ORDER BY name_en`
	rows, err := r.db.Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []offer.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

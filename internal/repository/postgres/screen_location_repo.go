// internal/repository/postgres/screen_location_repo.go
package postgres

import (
	"context"
	"fmt"

	"adscreen-service/internal/domain/screen"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScreenLocationRepository struct {
	db *pgxpool.Pool
}

func NewScreenLocationRepository(db *pgxpool.Pool) *ScreenLocationRepository {
	return &ScreenLocationRepository{db: db}
}

const locationColumns = `
	id, name_en, name_ar, address_en, address_ar, city_en, city_ar, neighborhood_en, neighborhood_ar,
	latitude, longitude, opens_at, closes_at, screen_count, screen_type, screen_size,
	daily_price, rating, image_url, is_active, created_at, updated_at`

func scanLocation(row pgx.Row) (*screen.Location, error) {
	var l screen.Location
	err := row.Scan(
		&l.ID, &l.NameEn, &l.NameAr, &l.AddressEn, &l.AddressAr, &l.CityEn, &l.CityAr, &l.NeighborhoodEn, &l.NeighborhoodAr,
		&l.Latitude, &l.Longitude, &l.OpensAt, &l.ClosesAt, &l.ScreenCount, &l.ScreenType, &l.ScreenSize,
		&l.DailyPrice, &l.Rating, &l.ImageURL, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ScreenLocationRepository) Create(ctx context.Context, l *screen.Location) error {
	query := `
		INSERT INTO screen_locations (
			name_en, name_ar, address_en, address_ar, city_en, city_ar, neighborhood_en, neighborhood_ar,
			latitude, longitude, opens_at, closes_at, screen_count, screen_type, screen_size,
			daily_price, image_url, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, rating, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		l.NameEn, l.NameAr, l.AddressEn, l.AddressAr, l.CityEn, l.CityAr, l.NeighborhoodEn, l.NeighborhoodAr,
		l.Latitude, l.Longitude, l.OpensAt, l.ClosesAt, l.ScreenCount, l.ScreenType, l.ScreenSize,
		l.DailyPrice, l.ImageURL, l.IsActive,
	).Scan(&l.ID, &l.Rating, &l.CreatedAt, &l.UpdatedAt)
	return mapError(err, "failed to create screen location")
}

func (r *ScreenLocationRepository) Update(ctx context.Context, l *screen.Location) error {
	query := `
		UPDATE screen_locations SET
			name_en = $2, name_ar = $3, address_en = $4, address_ar = $5, city_en = $6, city_ar = $7,
			neighborhood_en = $8, neighborhood_ar = $9, latitude = $10, longitude = $11,
			opens_at = $12, closes_at = $13, screen_count = $14, screen_type = $15, screen_size = $16,
			daily_price = $17, image_url = $18, is_active = $19, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		l.ID, l.NameEn, l.NameAr, l.AddressEn, l.AddressAr, l.CityEn, l.CityAr,
		l.NeighborhoodEn, l.NeighborhoodAr, l.Latitude, l.Longitude,
		l.OpensAt, l.ClosesAt, l.ScreenCount, l.ScreenType, l.ScreenSize,
		l.DailyPrice, l.ImageURL, l.IsActive,
	).Scan(&l.UpdatedAt)
	return mapError(err, "failed to update screen location")
}

func (r *ScreenLocationRepository) FindByID(ctx context.Context, id int64) (*screen.Location, error) {
	l, err := scanLocation(r.db.QueryRow(ctx, `SELECT `+locationColumns+` FROM screen_locations WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "failed to find screen location")
	}
	return l, nil
}

// LockTx takes a row lock on the location. Approvals for the same location
// serialize on this lock.
func (r *ScreenLocationRepository) LockTx(ctx context.Context, tx pgx.Tx, id int64) (*screen.Location, error) {
	l, err := scanLocation(tx.QueryRow(ctx, `SELECT `+locationColumns+` FROM screen_locations WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError(err, "failed to lock screen location")
	}
	return l, nil
}

// List applies the SQL-expressible filters. Geo filtering happens in the service.
func (r *ScreenLocationRepository) List(ctx context.Context, filters *screen.LocationFilters) ([]screen.Location, error) {
	var w where
	if !filters.IncludeInactive {
		w.raw("is_active")
	}
	if filters.City != "" {
		w.add("(LOWER(city_en) = LOWER($%[1]d) OR city_ar = $%[1]d)", filters.City)
	}
	if filters.MinPrice != nil {
		w.add("daily_price >= $%d", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		w.add("daily_price <= $%d", *filters.MaxPrice)
	}
	if filters.MinRating != nil {
		w.add("rating >= $%d", *filters.MinRating)
	}
	if filters.ScreenType != "" {
		w.add("screen_type = $%d", filters.ScreenType)
	}

	query := fmt.Sprintf(`SELECT %s FROM screen_locations WHERE %s ORDER BY rating DESC, id`, locationColumns, w.clause())
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list screen locations: %w", err)
	}
	defer rows.Close()

	locations := []screen.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan screen location: %w", err)
		}
		locations = append(locations, *l)
	}
	return locations, rows.Err()
}

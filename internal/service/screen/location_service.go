// internal/service/screen/location_service.go
package screen

import (
	"context"
	"fmt"
	"strings"

	"adscreen-service/internal/domain/screen"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/money"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

type LocationStore interface {
	Create(ctx context.Context, l *screen.Location) error
	Update(ctx context.Context, l *screen.Location) error
	FindByID(ctx context.Context, id int64) (*screen.Location, error)
	List(ctx context.Context, filters *screen.LocationFilters) ([]screen.Location, error)
}

type PricingOptionStore interface {
	Create(ctx context.Context, p *screen.PricingOption) error
	Update(ctx context.Context, p *screen.PricingOption) error
	Deactivate(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*screen.PricingOption, error)
	ListByLocation(ctx context.Context, locationID int64, includeInactive bool) ([]screen.PricingOption, error)
}

type LocationService struct {
	locations LocationStore
	options   PricingOptionStore
	cache     LocationCache
	logger    *zap.Logger
}

// NewLocationService builds the service. cache may be nil.
func NewLocationService(locations LocationStore, options PricingOptionStore, cache LocationCache, logger *zap.Logger) *LocationService {
	return &LocationService{
		locations: locations,
		options:   options,
		cache:     cache,
		logger:    logger,
	}
}

// ========== Locations ==========

func (s *LocationService) CreateLocation(ctx context.Context, req *screen.CreateLocationRequest) (*screen.Location, error) {
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	l := &screen.Location{
		NameEn:         strings.TrimSpace(req.NameEn),
		NameAr:         strings.TrimSpace(req.NameAr),
		AddressEn:      optional(req.AddressEn),
		AddressAr:      optional(req.AddressAr),
		CityEn:         strings.TrimSpace(req.CityEn),
		CityAr:         strings.TrimSpace(req.CityAr),
		NeighborhoodEn: optional(req.NeighborhoodEn),
		NeighborhoodAr: optional(req.NeighborhoodAr),
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		OpensAt:        optional(req.OpensAt),
		ClosesAt:       optional(req.ClosesAt),
		ScreenCount:    req.ScreenCount,
		ScreenType:     req.ScreenType,
		ScreenSize:     optional(req.ScreenSize),
		DailyPrice:     money.Round(req.DailyPrice),
		ImageURL:       optional(req.ImageURL),
		IsActive:       true,
	}
	if err := s.locations.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create screen location: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info("screen location created", zap.Int64("location_id", l.ID), zap.String("city", l.CityEn))
	return l, nil
}

func (s *LocationService) UpdateLocation(ctx context.Context, id int64, req *screen.UpdateLocationRequest) (*screen.Location, error) {
	l, err := s.locations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.NameEn != nil {
		l.NameEn = strings.TrimSpace(*req.NameEn)
	}
	if req.NameAr != nil {
		l.NameAr = strings.TrimSpace(*req.NameAr)
	}
	if req.AddressEn != nil {
		l.AddressEn = optional(*req.AddressEn)
	}
	if req.AddressAr != nil {
		l.AddressAr = optional(*req.AddressAr)
	}
	if req.CityEn != nil {
		l.CityEn = strings.TrimSpace(*req.CityEn)
	}
	if req.CityAr != nil {
		l.CityAr = strings.TrimSpace(*req.CityAr)
	}
	if req.NeighborhoodEn != nil {
		l.NeighborhoodEn = optional(*req.NeighborhoodEn)
	}
	if req.NeighborhoodAr != nil {
		l.NeighborhoodAr = optional(*req.NeighborhoodAr)
	}
	if req.Latitude != nil {
		l.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		l.Longitude = req.Longitude
	}
	if req.OpensAt != nil {
		l.OpensAt = optional(*req.OpensAt)
	}
	if req.ClosesAt != nil {
		l.ClosesAt = optional(*req.ClosesAt)
	}
	if req.ScreenCount != nil {
		l.ScreenCount = *req.ScreenCount
	}
	if req.ScreenType != nil {
		l.ScreenType = *req.ScreenType
	}
	if req.ScreenSize != nil {
		l.ScreenSize = optional(*req.ScreenSize)
	}
	if req.DailyPrice != nil {
		l.DailyPrice = money.Round(*req.DailyPrice)
	}
	if req.ImageURL != nil {
		l.ImageURL = optional(*req.ImageURL)
	}
	if req.IsActive != nil {
		l.IsActive = *req.IsActive
	}

	if err := validateCoordinates(l.Latitude, l.Longitude); err != nil {
		return nil, err
	}
	if err := s.locations.Update(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to update screen location: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info("screen location updated", zap.Int64("location_id", l.ID))
	return l, nil
}

// DeactivateLocation hides the location from the public list. Existing
// bookings keep referencing it.
func (s *LocationService) DeactivateLocation(ctx context.Context, id int64) error {
	inactive := false
	_, err := s.UpdateLocation(ctx, id, &screen.UpdateLocationRequest{IsActive: &inactive})
	return err
}

// GetLocation returns a location with its pricing options. Inactive
// locations are only returned when includeInactive is set.
func (s *LocationService) GetLocation(ctx context.Context, id int64, includeInactive bool) (*screen.Location, error) {
	l, err := s.locations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.IsActive && !includeInactive {
		return nil, xerrors.ErrNotFound
	}

	options, err := s.options.ListByLocation(ctx, id, includeInactive)
	if err != nil {
		return nil, err
	}
	l.PricingOptions = options
	return l, nil
}

// ListLocations serves the public list. The base query is cached; the near
// filter runs on top of it.
func (s *LocationService) ListLocations(ctx context.Context, filters *screen.LocationFilters) ([]screen.Location, error) {
	if filters.MinPrice != nil && filters.MaxPrice != nil && filters.MaxPrice.LessThan(*filters.MinPrice) {
		return nil, xerrors.NewValidationError("max_price", i18n.FieldInvalid)
	}

	var near *nearFilter
	if filters.Near != "" {
		origin, err := parseNear(filters.Near)
		if err != nil {
			return nil, xerrors.NewValidationError("near", i18n.FieldInvalid)
		}
		near = &nearFilter{origin: origin, radiusKm: filters.RadiusKm}
	}

	locations, err := s.cachedList(ctx, filters)
	if err != nil {
		return nil, err
	}

	if near != nil {
		locations = withinRadius(locations, near.origin, near.radiusKm)
	}
	return locations, nil
}

func (s *LocationService) cachedList(ctx context.Context, filters *screen.LocationFilters) ([]screen.Location, error) {
	key := cacheKey(filters)
	if s.cache != nil && !filters.IncludeInactive {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("location cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	locations, err := s.locations.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && !filters.IncludeInactive {
		if err := s.cache.Set(ctx, key, locations); err != nil {
			s.logger.Warn("location cache write failed", zap.Error(err))
		}
	}
	return locations, nil
}

func (s *LocationService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("location cache invalidation failed", zap.Error(err))
	}
}

// ========== Pricing options ==========

func (s *LocationService) CreatePricingOption(ctx context.Context, locationID int64, req *screen.CreatePricingOptionRequest) (*screen.PricingOption, error) {
	if _, err := s.locations.FindByID(ctx, locationID); err != nil {
		return nil, err
	}
	if err := validateBounds(req.MinDuration, req.MaxDuration); err != nil {
		return nil, err
	}

	p := &screen.PricingOption{
		LocationID:  locationID,
		LabelEn:     strings.TrimSpace(req.LabelEn),
		LabelAr:     strings.TrimSpace(req.LabelAr),
		Unit:        req.Unit,
		Price:       money.Round(req.Price),
		MinDuration: req.MinDuration,
		MaxDuration: req.MaxDuration,
		IsActive:    true,
	}
	if err := s.options.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create pricing option: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info("pricing option created",
		zap.Int64("location_id", locationID),
		zap.Int64("option_id", p.ID))
	return p, nil
}

func (s *LocationService) UpdatePricingOption(ctx context.Context, locationID, optionID int64, req *screen.UpdatePricingOptionRequest) (*screen.PricingOption, error) {
	p, err := s.locationOption(ctx, locationID, optionID)
	if err != nil {
		return nil, err
	}

	if req.LabelEn != nil {
		p.LabelEn = strings.TrimSpace(*req.LabelEn)
	}
	if req.LabelAr != nil {
		p.LabelAr = strings.TrimSpace(*req.LabelAr)
	}
	if req.Price != nil {
		p.Price = money.Round(*req.Price)
	}
	if req.MinDuration != nil {
		p.MinDuration = req.MinDuration
	}
	if req.MaxDuration != nil {
		p.MaxDuration = req.MaxDuration
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := validateBounds(p.MinDuration, p.MaxDuration); err != nil {
		return nil, err
	}
	if err := s.options.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update pricing option: %w", err)
	}

	s.invalidate(ctx)
	return p, nil
}

// DeletePricingOption deactivates the option; bookings that used it keep the reference.
func (s *LocationService) DeletePricingOption(ctx context.Context, locationID, optionID int64) error {
	if _, err := s.locationOption(ctx, locationID, optionID); err != nil {
		return err
	}
	if err := s.options.Deactivate(ctx, optionID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *LocationService) locationOption(ctx context.Context, locationID, optionID int64) (*screen.PricingOption, error) {
	p, err := s.options.FindByID(ctx, optionID)
	if err != nil {
		return nil, err
	}
	if p.LocationID != locationID {
		return nil, xerrors.ErrNotFound
	}
	return p, nil
}

type nearFilter struct {
	origin   orb.Point
	radiusKm float64
}

func validateBounds(lo, hi *int) error {
	if lo != nil && hi != nil && *hi < *lo {
		return xerrors.NewValidationError("max_duration", i18n.FieldDurationBounds)
	}
	return nil
}

func validateCoordinates(lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		if lat == nil {
			return xerrors.NewValidationError("latitude", i18n.FieldRequired)
		}
		return xerrors.NewValidationError("longitude", i18n.FieldRequired)
	}
	return nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

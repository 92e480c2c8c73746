// internal/service/offer/offers.go
package offer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"adscreen-service/internal/domain/auth"
	"adscreen-service/internal/domain/offer"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/money"
	"adscreen-service/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OfferStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, o *offer.Offer) error
	CountActiveByMerchantTx(ctx context.Context, tx pgx.Tx, merchantID int64) (int, error)
	Update(ctx context.Context, o *offer.Offer) error
	SoftDelete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*offer.Offer, error)
	FindBySlug(ctx context.Context, slug string) (*offer.Offer, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	IncrementViews(ctx context.Context, id int64) error
	List(ctx context.Context, filters *offer.OfferListFilters) ([]offer.Offer, int64, error)
	ExpireEnded(ctx context.Context, now time.Time) (int64, error)
	Save(ctx context.Context, userID, offerID int64) error
	Unsave(ctx context.Context, userID, offerID int64) error
	ListSaved(ctx context.Context, userID int64) ([]offer.SavedOffer, error)
}

type CategoryStore interface {
	Create(ctx context.Context, c *offer.Category) error
	Update(ctx context.Context, c *offer.Category) error
	FindByID(ctx context.Context, id int64) (*offer.Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, includeInactive bool) ([]offer.Category, error)
}

type MerchantLocker interface {
	FindByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*auth.User, error)
}

type OfferService struct {
	tx         postgres.TxRunner
	offerRepo  OfferStore
	categories CategoryStore
	merchants  MerchantLocker
	analyses   AnalysisStore
	analyzer   Analyzer
	logger     *zap.Logger
	now        func() time.Time
}

func NewOfferService(
	tx postgres.TxRunner,
	offerRepo OfferStore,
	categories CategoryStore,
	merchants MerchantLocker,
	analyses AnalysisStore,
	analyzer Analyzer,
	logger *zap.Logger,
) *OfferService {
	return &OfferService{
		tx:         tx,
		offerRepo:  offerRepo,
		categories: categories,
		merchants:  merchants,
		analyses:   analyses,
		analyzer:   analyzer,
		logger:     logger,
		now:        time.Now,
	}
}

// ========== Offers ==========

// CreateOffer creates an offer for the merchant. The merchant row is locked
// while counting so concurrent creates cannot overshoot the offer limit.
func (s *OfferService) CreateOffer(ctx context.Context, merchantID int64, req *offer.CreateOfferRequest) (*offer.Offer, error) {
	if err := validatePrices(req.OriginalPrice, req.DiscountedPrice); err != nil {
		return nil, err
	}
	if err := validateWindow(req.StartsAt, req.EndsAt); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	slug, err := UniqueSlug(ctx, s.offerRepo.SlugExists, "offer", req.TitleEn, req.TitleAr)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = offer.OfferStatusActive
	}

	o := &offer.Offer{
		MerchantID:         merchantID,
		CategoryID:         req.CategoryID,
		TitleEn:            strings.TrimSpace(req.TitleEn),
		TitleAr:            strings.TrimSpace(req.TitleAr),
		DescriptionEn:      optional(req.DescriptionEn),
		DescriptionAr:      optional(req.DescriptionAr),
		Slug:               slug,
		OriginalPrice:      money.Round(req.OriginalPrice),
		DiscountedPrice:    money.Round(req.DiscountedPrice),
		DiscountPercentage: offer.DiscountPercent(req.OriginalPrice, req.DiscountedPrice),
		ImageURL:           optional(req.ImageURL),
		City:               optional(req.City),
		StartsAt:           req.StartsAt,
		EndsAt:             req.EndsAt,
		Status:             status,
	}

	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		merchant, err := s.merchants.FindByIDForUpdateTx(ctx, tx, merchantID)
		if err != nil {
			return err
		}

		count, err := s.offerRepo.CountActiveByMerchantTx(ctx, tx, merchantID)
		if err != nil {
			return err
		}
		if count >= merchant.OfferLimit {
			return fmt.Errorf("merchant %d has %d of %d offers: %w", merchantID, count, merchant.OfferLimit, xerrors.ErrQuotaExceeded)
		}

		return s.offerRepo.CreateTx(ctx, tx, o)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("offer created",
		zap.Int64("offer_id", o.ID),
		zap.Int64("merchant_id", merchantID),
		zap.String("slug", o.Slug))

	return o, nil
}

// GetOffer returns a public offer and counts the view. Non-public offers are
// only visible to their owner and admins.
func (s *OfferService) GetOffer(ctx context.Context, viewer *auth.Principal, id int64) (*offer.Offer, error) {
	o, err := s.offerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, viewer, o)
}

func (s *OfferService) GetOfferBySlug(ctx context.Context, viewer *auth.Principal, slug string) (*offer.Offer, error) {
	o, err := s.offerRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.present(ctx, viewer, o)
}

func (s *OfferService) present(ctx context.Context, viewer *auth.Principal, o *offer.Offer) (*offer.Offer, error) {
	if o.Status != offer.OfferStatusActive {
		if viewer == nil || !viewer.CanAccess(o.MerchantID) {
			return nil, xerrors.ErrNotFound
		}
		return o, nil
	}

	if err := s.offerRepo.IncrementViews(ctx, o.ID); err != nil {
		s.logger.Warn("failed to increment offer views", zap.Int64("offer_id", o.ID), zap.Error(err))
	} else {
		o.ViewCount++
	}
	return o, nil
}

// ListOffers is the public marketplace listing; only active offers are shown.
func (s *OfferService) ListOffers(ctx context.Context, filters *offer.OfferListFilters) (*offer.OfferListResponse, error) {
	active := offer.OfferStatusActive
	filters.Status = &active
	filters.MerchantID = nil
	return s.list(ctx, filters)
}

// ListMerchantOffers lists the merchant's own offers in any status.
func (s *OfferService) ListMerchantOffers(ctx context.Context, merchantID int64, filters *offer.OfferListFilters) (*offer.OfferListResponse, error) {
	filters.MerchantID = &merchantID
	return s.list(ctx, filters)
}

func (s *OfferService) list(ctx context.Context, filters *offer.OfferListFilters) (*offer.OfferListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}
	offers, total, err := s.offerRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	return &offer.OfferListResponse{
		Offers:     offers,
		Total:      total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: postgres.TotalPages(total, filters.PageSize),
	}, nil
}

// UpdateOffer applies the non-nil fields. Only admins may feature offers.
func (s *OfferService) UpdateOffer(ctx context.Context, actor auth.Principal, id int64, req *offer.UpdateOfferRequest) (*offer.Offer, error) {
	o, err := s.ownedOffer(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		o.CategoryID = req.CategoryID
	}
	if req.TitleEn != nil {
		o.TitleEn = strings.TrimSpace(*req.TitleEn)
	}
	if req.TitleAr != nil {
		o.TitleAr = strings.TrimSpace(*req.TitleAr)
	}
	if req.DescriptionEn != nil {
		o.DescriptionEn = optional(*req.DescriptionEn)
	}
	if req.DescriptionAr != nil {
		o.DescriptionAr = optional(*req.DescriptionAr)
	}
	if req.OriginalPrice != nil {
		o.OriginalPrice = money.Round(*req.OriginalPrice)
	}
	if req.DiscountedPrice != nil {
		o.DiscountedPrice = money.Round(*req.DiscountedPrice)
	}
	if req.ImageURL != nil {
		o.ImageURL = optional(*req.ImageURL)
	}
	if req.City != nil {
		o.City = optional(*req.City)
	}
	if req.StartsAt != nil {
		o.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		o.EndsAt = req.EndsAt
	}
	if req.Status != nil {
		o.Status = *req.Status
	}
	if req.IsFeatured != nil {
		if !actor.IsAdmin() {
			return nil, xerrors.ErrForbidden
		}
		o.IsFeatured = *req.IsFeatured
	}

	if err := validatePrices(o.OriginalPrice, o.DiscountedPrice); err != nil {
		return nil, err
	}
	if err := validateWindow(o.StartsAt, o.EndsAt); err != nil {
		return nil, err
	}
	o.DiscountPercentage = offer.DiscountPercent(o.OriginalPrice, o.DiscountedPrice)

	if err := s.offerRepo.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	s.logger.Info("offer updated", zap.Int64("offer_id", o.ID), zap.Int64("actor_id", actor.UserID))
	return o, nil
}

// DeleteOffer soft deletes; the slot is freed for the merchant's quota.
func (s *OfferService) DeleteOffer(ctx context.Context, actor auth.Principal, id int64) error {
	if _, err := s.ownedOffer(ctx, actor, id); err != nil {
		return err
	}
	if err := s.offerRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("offer deleted", zap.Int64("offer_id", id), zap.Int64("actor_id", actor.UserID))
	return nil
}

func (s *OfferService) ownedOffer(ctx context.Context, actor auth.Principal, id int64) (*offer.Offer, error) {
	o, err := s.offerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(o.MerchantID) {
		return nil, xerrors.ErrNotFound
	}
	return o, nil
}

// ExpireEnded is run by the scheduler.
func (s *OfferService) ExpireEnded(ctx context.Context) (int, error) {
	n, err := s.offerRepo.ExpireEnded(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("offers expired", zap.Int64("count", n))
	}
	return int(n), nil
}

// ========== Saved offers ==========

func (s *OfferService) SaveOffer(ctx context.Context, userID, offerID int64) error {
	o, err := s.offerRepo.FindByID(ctx, offerID)
	if err != nil {
		return err
	}
	if o.Status != offer.OfferStatusActive {
		return xerrors.ErrNotFound
	}
	return s.offerRepo.Save(ctx, userID, offerID)
}

func (s *OfferService) UnsaveOffer(ctx context.Context, userID, offerID int64) error {
	return s.offerRepo.Unsave(ctx, userID, offerID)
}

func (s *OfferService) ListSaved(ctx context.Context, userID int64) ([]offer.SavedOffer, error) {
	return s.offerRepo.ListSaved(ctx, userID)
}

// ========== Categories ==========

func (s *OfferService) CreateCategory(ctx context.Context, req *offer.CreateCategoryRequest) (*offer.Category, error) {
	slug, err := UniqueSlug(ctx, s.categories.SlugExists, "category", req.NameEn, req.NameAr)
	if err != nil {
		return nil, err
	}

	c := &offer.Category{
		NameEn:   strings.TrimSpace(req.NameEn),
		NameAr:   strings.TrimSpace(req.NameAr),
		Slug:     slug,
		Icon:     optional(req.Icon),
		IsActive: true,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("category created", zap.Int64("category_id", c.ID), zap.String("slug", c.Slug))
	return c, nil
}

func (s *OfferService) UpdateCategory(ctx context.Context, id int64, req *offer.UpdateCategoryRequest) (*offer.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.NameEn != nil {
		c.NameEn = strings.TrimSpace(*req.NameEn)
	}
	if req.NameAr != nil {
		c.NameAr = strings.TrimSpace(*req.NameAr)
	}
	if req.Icon != nil {
		c.Icon = optional(*req.Icon)
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return c, nil
}

func (s *OfferService) ListCategories(ctx context.Context, includeInactive bool) ([]offer.Category, error) {
	return s.categories.List(ctx, includeInactive)
}

func (s *OfferService) checkCategory(ctx context.Context, id int64) error {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return xerrors.NewValidationError("category_id", i18n.FieldInvalid)
		}
		return err
	}
	if !c.IsActive {
		return xerrors.NewValidationError("category_id", i18n.FieldInvalid)
	}
	return nil
}

func validatePrices(original, discounted decimal.Decimal) error {
	if !original.IsPositive() {
		return xerrors.NewValidationError("original_price", i18n.FieldMin)
	}
	if discounted.IsNegative() || discounted.GreaterThan(original) {
		return xerrors.NewValidationError("discounted_price", i18n.FieldInvalid)
	}
	return nil
}

func validateWindow(startsAt, endsAt *time.Time) error {
	if startsAt != nil && endsAt != nil && endsAt.Before(*startsAt) {
		return xerrors.NewValidationError("ends_at", i18n.FieldDateOrder)
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

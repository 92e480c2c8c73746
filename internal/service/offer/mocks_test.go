package offer

import (
	"context"
	"time"

	"adscreen-service/internal/domain/auth"
	"adscreen-service/internal/domain/offer"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type mockOffers struct{ mock.Mock }

func (m *mockOffers) CreateTx(ctx context.Context, tx pgx.Tx, o *offer.Offer) error {
	return m.Called(ctx, tx, o).Error(0)
}

func (m *mockOffers) CountActiveByMerchantTx(ctx context.Context, tx pgx.Tx, merchantID int64) (int, error) {
	args := m.Called(ctx, tx, merchantID)
	return args.Int(0), args.Error(1)
}

func (m *mockOffers) Update(ctx context.Context, o *offer.Offer) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOffers) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOffers) FindByID(ctx context.Context, id int64) (*offer.Offer, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*offer.Offer)
	return o, args.Error(1)
}

func (m *mockOffers) FindBySlug(ctx context.Context, slug string) (*offer.Offer, error) {
	args := m.Called(ctx, slug)
	o, _ := args.Get(0).(*offer.Offer)
	return o, args.Error(1)
}

func (m *mockOffers) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *mockOffers) IncrementViews(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOffers) List(ctx context.Context, filters *offer.OfferListFilters) ([]offer.Offer, int64, error) {
	args := m.Called(ctx, filters)
	os, _ := args.Get(0).([]offer.Offer)
	return os, args.Get(1).(int64), args.Error(2)
}

func (m *mockOffers) ExpireEnded(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOffers) Save(ctx context.Context, userID, offerID int64) error {
	return m.Called(ctx, userID, offerID).Error(0)
}

func (m *mockOffers) Unsave(ctx context.Context, userID, offerID int64) error {
	return m.Called(ctx, userID, offerID).Error(0)
}

func (m *mockOffers) ListSaved(ctx context.Context, userID int64) ([]offer.SavedOffer, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).([]offer.SavedOffer)
	return s, args.Error(1)
}

type mockCategories struct{ mock.Mock }

func (m *mockCategories) Create(ctx context.Context, c *offer.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCategories) Update(ctx context.Context, c *offer.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCategories) FindByID(ctx context.Context, id int64) (*offer.Category, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*offer.Category)
	return c, args.Error(1)
}

func (m *mockCategories) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *mockCategories) List(ctx context.Context, includeInactive bool) ([]offer.Category, error) {
	args := m.Called(ctx, includeInactive)
	c, _ := args.Get(0).([]offer.Category)
	return c, args.Error(1)
}

type mockMerchants struct{ mock.Mock }

func (m *mockMerchants) FindByIDForUpdateTx(ctx context.Context, tx pgx.Tx, id int64) (*auth.User, error) {
	args := m.Called(ctx, tx, id)
	u, _ := args.Get(0).(*auth.User)
	return u, args.Error(1)
}

type mockAnalyses struct{ mock.Mock }

func (m *mockAnalyses) Create(ctx context.Context, a *offer.Analysis) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAnalyses) Finish(ctx context.Context, a *offer.Analysis) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAnalyses) ListByOffer(ctx context.Context, offerID int64) ([]offer.Analysis, error) {
	args := m.Called(ctx, offerID)
	a, _ := args.Get(0).([]offer.Analysis)
	return a, args.Error(1)
}

type mockAnalyzer struct{ mock.Mock }

func (m *mockAnalyzer) Analyze(ctx context.Context, o *offer.Offer) (*offer.AnalysisResult, error) {
	args := m.Called(ctx, o)
	r, _ := args.Get(0).(*offer.AnalysisResult)
	return r, args.Error(1)
}

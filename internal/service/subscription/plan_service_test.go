package subscription

import (
	"context"
	"testing"

	"adscreen-service/internal/domain/subscription"
	xerrors "adscreen-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreatePlan(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with empty features", func(t *testing.T) {
		repo := &mockPlans{}
		svc := NewPlanService(repo, zap.NewNop())

		repo.On("ExistsByName", ctx, "gold").Return(false, nil)
		repo.On("Create", ctx, mock.MatchedBy(func(p *subscription.Plan) bool {
			return p.Name == "gold" && p.Features != nil && p.IsActive && p.Currency == "SAR"
		})).Return(nil)

		plan, err := svc.CreatePlan(ctx, &subscription.CreatePlanRequest{
			Name:          "gold",
			DisplayNameEn: "Gold",
			DisplayNameAr: "ذهبي",
			Price:         decimal.RequireFromString("99.999"),
			OfferQuota:    20,
		})
		require.NoError(t, err)
		assert.Equal(t, "100.00", plan.Price.StringFixed(2))
		repo.AssertExpectations(t)
	})

	t.Run("rejects non slug names", func(t *testing.T) {
		repo := &mockPlans{}
		svc := NewPlanService(repo, zap.NewNop())

		_, err := svc.CreatePlan(ctx, &subscription.CreatePlanRequest{Name: "Gold Plan"})
		assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	})

	t.Run("duplicate name", func(t *testing.T) {
		repo := &mockPlans{}
		svc := NewPlanService(repo, zap.NewNop())

		repo.On("ExistsByName", ctx, "gold").Return(true, nil)

		_, err := svc.CreatePlan(ctx, &subscription.CreatePlanRequest{Name: "gold"})
		assert.ErrorIs(t, err, xerrors.ErrConflict)
	})
}

func TestUpdatePlan_AppliesPartialFields(t *testing.T) {
	ctx := context.Background()
	repo := &mockPlans{}
	svc := NewPlanService(repo, zap.NewNop())

	repo.On("FindByID", ctx, int64(2)).Return(proPlan(), nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	quota := 80
	inactive := false
	plan, err := svc.UpdatePlan(ctx, 2, &subscription.UpdatePlanRequest{OfferQuota: &quota, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, 80, plan.OfferQuota)
	assert.False(t, plan.IsActive)
	assert.Equal(t, "Pro", plan.DisplayNameEn)
}

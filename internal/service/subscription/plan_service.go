// internal/service/subscription/plan_service.go
package subscription

import (
	"context"
	"fmt"
	"strings"

	"adscreen-service/internal/domain/subscription"
	xerrors "adscreen-service/internal/pkg/errors"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/money"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

type PlanRepository interface {
	Create(ctx context.Context, p *subscription.Plan) error
	Update(ctx context.Context, p *subscription.Plan) error
	FindByID(ctx context.Context, id int64) (*subscription.Plan, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context, includeInactive bool) ([]subscription.Plan, error)
}

type PlanService struct {
	planRepo PlanRepository
	logger   *zap.Logger
}

func NewPlanService(planRepo PlanRepository, logger *zap.Logger) *PlanService {
	return &PlanService{
		planRepo: planRepo,
		logger:   logger,
	}
}

// CreatePlan creates a new subscription plan. Name is the stable plan code
// stored on merchants and must be a lowercase slug.
func (s *PlanService) CreatePlan(ctx context.Context, req *subscription.CreatePlanRequest) (*subscription.Plan, error) {
	name := strings.TrimSpace(req.Name)
	if !slug.IsSlug(name) {
		return nil, xerrors.NewValidationError("name", i18n.FieldInvalid)
	}

	exists, err := s.planRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check plan name: %w", err)
	}
	if exists {
		return nil, &xerrors.ConflictError{MessageID: i18n.MsgConflict, Details: map[string]string{"name": name}}
	}

	features := req.Features
	if features == nil {
		features = []string{}
	}

	plan := &subscription.Plan{
		Name:          name,
		DisplayNameEn: req.DisplayNameEn,
		DisplayNameAr: req.DisplayNameAr,
		Price:         money.Round(req.Price),
		Currency:      money.Currency,
		OfferQuota:    req.OfferQuota,
		ScreenQuota:   req.ScreenQuota,
		Features:      features,
		IsActive:      true,
		SortOrder:     req.SortOrder,
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		s.logger.Error("failed to create plan", zap.Error(err))
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	s.logger.Info("subscription plan created",
		zap.Int64("plan_id", plan.ID),
		zap.String("name", plan.Name),
	)

	return plan, nil
}

// UpdatePlan applies the non-nil fields of req.
func (s *PlanService) UpdatePlan(ctx context.Context, id int64, req *subscription.UpdatePlanRequest) (*subscription.Plan, error) {
	plan, err := s.planRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DisplayNameEn != nil {
		plan.DisplayNameEn = *req.DisplayNameEn
	}
	if req.DisplayNameAr != nil {
		plan.DisplayNameAr = *req.DisplayNameAr
	}
	if req.Price != nil {
		plan.Price = money.Round(*req.Price)
	}
	if req.OfferQuota != nil {
		plan.OfferQuota = *req.OfferQuota
	}
	if req.ScreenQuota != nil {
		plan.ScreenQuota = *req.ScreenQuota
	}
	if req.Features != nil {
		plan.Features = req.Features
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		plan.SortOrder = *req.SortOrder
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	s.logger.Info("subscription plan updated", zap.Int64("plan_id", plan.ID))
	return plan, nil
}

// GetPlan retrieves a subscription plan by ID
func (s *PlanService) GetPlan(ctx context.Context, id int64) (*subscription.Plan, error) {
	return s.planRepo.FindByID(ctx, id)
}

// ListPlans returns active plans; admins may include retired ones.
func (s *PlanService) ListPlans(ctx context.Context, includeInactive bool) ([]subscription.Plan, error) {
	plans, err := s.planRepo.List(ctx, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

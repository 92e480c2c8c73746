// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"net/http"

	"adscreen-service/internal/domain/subscription"
	"adscreen-service/internal/middleware"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/request"
	"adscreen-service/internal/pkg/response"
	service "adscreen-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	planService         *service.PlanService
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(planService *service.PlanService, subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		planService:         planService,
		subscriptionService: subscriptionService,
	}
}

// ========== Plans ==========

func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.planService.ListPlans(c.Request.Context(), false)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, plans)
}

func (h *SubscriptionHandler) AdminListPlans(c *gin.Context) {
	plans, err := h.planService.ListPlans(c.Request.Context(), true)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, plans)
}

func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	var req subscription.CreatePlanRequest
	if !request.BindJSON(c, &req) {
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, i18n.MsgCreated, plan)
}

func (h *SubscriptionHandler) UpdatePlan(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	var req subscription.UpdatePlanRequest
	if !request.BindJSON(c, &req) {
		return
	}

	plan, err := h.planService.UpdatePlan(c.Request.Context(), id, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgUpdated, plan)
}

// ========== Merchant ==========

// Subscribe activates a free plan or returns the invoice and checkout details for a paid one.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var req subscription.SubscribeRequest
	if !request.BindJSON(c, &req) {
		return
	}

	result, err := h.subscriptionService.Subscribe(c.Request.Context(), p.UserID, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	if result.Subscription != nil {
		response.Success(c, http.StatusOK, i18n.MsgSubscriptionActive, result)
		return
	}
	response.Success(c, http.StatusCreated, i18n.MsgSubscriptionPending, result)
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	sub, err := h.subscriptionService.GetActive(c.Request.Context(), p.UserID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, sub)
}

func (h *SubscriptionHandler) History(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	subs, err := h.subscriptionService.History(c.Request.Context(), p.UserID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, subs)
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	if err := h.subscriptionService.Cancel(c.Request.Context(), p.UserID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgSubscriptionCancel, nil)
}

// ========== Admin ==========

// AdminActivate assigns a plan to a merchant without an invoice.
func (h *SubscriptionHandler) AdminActivate(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	merchantID, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	var req subscription.SubscribeRequest
	if !request.BindJSON(c, &req) {
		return
	}

	sub, err := h.subscriptionService.AdminActivate(c.Request.Context(), p.UserID, merchantID, &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgSubscriptionActive, sub)
}

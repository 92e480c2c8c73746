// internal/handlers/payment/payment_handler.go
package payment

import (
	"context"
	"encoding/json"
	"net/http"

	"adscreen-service/internal/domain/payment"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/response"
	"adscreen-service/internal/pkg/validation"
	service "adscreen-service/internal/service/payment"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

type CallbackProcessor interface {
	HandleCallback(ctx context.Context, req *payment.CallbackRequest) (*service.CallbackResult, error)
}

type PaymentHandler struct {
	paymentService CallbackProcessor
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService CallbackProcessor, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// MoyasarCallback is called by the gateway. It carries no session; the body's
// secret token authenticates it.
func (h *PaymentHandler) MoyasarCallback(c *gin.Context) {
	// Gateway payloads grow new fields over time, so unknown fields are tolerated here.
	var req payment.CallbackRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		response.HandleError(c, validation.FromBindError(err))
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		response.HandleError(c, validation.FromBindError(err))
		return
	}

	result, err := h.paymentService.HandleCallback(c.Request.Context(), &req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	h.logger.Info("payment callback processed",
		zap.String("event_id", req.ID),
		zap.String("payment_id", req.Data.ID),
		zap.String("outcome", result.Outcome))
	response.Success(c, http.StatusOK, i18n.MsgPaymentProcessed, result)
}

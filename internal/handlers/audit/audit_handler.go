// internal/handlers/audit/audit_handler.go
package audit

import (
	"net/http"

	"adscreen-service/internal/domain/audit"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/request"
	"adscreen-service/internal/pkg/response"
	service "adscreen-service/internal/service/audit"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService *service.AuditService
}

func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) ListEntries(c *gin.Context) {
	var filters audit.EntryFilters
	if !request.BindQuery(c, &filters) {
		return
	}

	result, err := h.auditService.List(c.Request.Context(), &filters)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, result)
}

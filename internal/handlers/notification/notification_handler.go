// internal/handlers/notification/notification_handler.go
package notification

import (
	"net/http"

	"adscreen-service/internal/domain/notification"
	"adscreen-service/internal/middleware"
	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/request"
	"adscreen-service/internal/pkg/response"
	service "adscreen-service/internal/service/notification"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetNotifications retrieves paginated notifications for the current user
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	var filters notification.NotificationListFilters
	if !request.BindQuery(c, &filters) {
		return
	}

	result, err := h.notificationService.GetUserNotifications(c.Request.Context(), p.UserID, &filters)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, result)
}

func (h *NotificationHandler) GetSummary(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	summary, err := h.notificationService.GetSummary(c.Request.Context(), p.UserID)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, summary)
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(c.Request.Context(), id, p.UserID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgUpdated, nil)
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)

	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), p.UserID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgUpdated, nil)
}

func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	p := middleware.MustGetPrincipal(c)
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), id, p.UserID); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, i18n.MsgDeleted, nil)
}

// internal/service/notification/ws_handler.go
package notification

import (
	"context"
	"fmt"

	wstypes "adscreen-service/internal/domain/websocket"
	ws "adscreen-service/internal/websocket"
)

// WSHandler lets clients mark notifications read over the socket.
type WSHandler struct {
	service *NotificationService
}

func NewWSHandler(service *NotificationService) *WSHandler {
	return &WSHandler{service: service}
}

func (h *WSHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{
		wstypes.EventTypeNotificationRead,
		wstypes.EventTypeNotificationReadAll,
	}
}

func (h *WSHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	switch msg.Type {
	case wstypes.EventTypeNotificationRead:
		var req wstypes.NotificationReadRequest
		if err := ws.DecodeData(msg.Data, &req); err != nil || req.NotificationID <= 0 {
			return fmt.Errorf("invalid notification id")
		}
		return h.service.MarkAsRead(ctx, req.NotificationID, client.UserID())

	case wstypes.EventTypeNotificationReadAll:
		return h.service.MarkAllAsRead(ctx, client.UserID())
	}
	return nil
}

// internal/handlers/websocket/websocket.go
package websocket

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"adscreen-service/internal/pkg/i18n"
	"adscreen-service/internal/pkg/response"
	ws "adscreen-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WebSocketHandler struct {
	hub        *ws.Hub
	upgrader   websocket.Upgrader
	cookieName string
	logger     *zap.Logger
}

// NewWebSocketHandler only upgrades requests whose Origin is in allowedOrigins.
// Requests without an Origin header (non-browser clients) are accepted.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, cookieName string, logger *zap.Logger) *WebSocketHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}

	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
		cookieName: cookieName,
		logger:     logger,
	}
}

// HandleConnection authenticates with the session cookie before upgrading.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	token := h.extractToken(c)
	if token == "" {
		response.Unauthorized(c)
		return
	}

	auth, err := h.hub.AuthenticateClient(c.Request.Context(), token)
	if err != nil {
		h.logger.Warn("WebSocket authentication failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		if errors.Is(err, ws.ErrSessionExpired) {
			response.Error(c, http.StatusUnauthorized, i18n.MsgSessionExpired, err)
			return
		}
		response.Error(c, http.StatusUnauthorized, i18n.MsgUnauthorized, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		return
	}

	client := ws.NewClient(h.hub, conn, auth)
	h.hub.Register <- client

	h.logger.Info("WebSocket client connected",
		zap.Int64("user_id", auth.UserID),
		zap.String("session_id", auth.SessionID),
		zap.String("role", auth.Role),
	)

	go client.WritePump()
	go client.ReadPump()
}

// extractToken reads the session cookie, then a Bearer header, then ?token=.
func (h *WebSocketHandler) extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(h.cookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return c.Query("token")
}

// GetStats returns WebSocket connection statistics (admin only)
func (h *WebSocketHandler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"total_connections": h.hub.TotalClients(),
		"timestamp":         time.Now(),
	}
	response.Success(c, http.StatusOK, i18n.MsgOK, stats)
}

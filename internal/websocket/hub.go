// internal/websocket/hub.go
package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"

	wstypes "adscreen-service/internal/domain/websocket"
	"adscreen-service/internal/pkg/jwt"
	"adscreen-service/internal/pkg/session"

	"go.uber.org/zap"
)

type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

type SessionLookup interface {
	GetSession(ctx context.Context, userID int64, jti string) (*session.SessionData, error)
}

type Hub struct {
	// Registered clients by user ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	handlerRegistry *HandlerRegistry

	verifier TokenVerifier
	sessions SessionLookup
	logger   *zap.Logger
}

type BroadcastMessage struct {
	UserIDs []int64
	Message *wstypes.WSMessage
}

func NewHub(verifier TokenVerifier, sessions SessionLookup, logger *zap.Logger) *Hub {
	return &Hub{
		clients:         make(map[int64]map[*Client]bool),
		Register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan *BroadcastMessage, 256),
		handlerRegistry: NewHandlerRegistry(),
		verifier:        verifier,
		sessions:        sessions,
		logger:          logger,
	}
}

// AuthenticateClient validates the session token and that its server side
// session is still alive.
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := h.verifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	sess, err := h.sessions.GetSession(ctx, claims.UserID, claims.ID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	return &ClientAuth{
		UserID:    claims.UserID,
		SessionID: claims.ID,
		Role:      claims.Role,
		Email:     sess.Email,
	}, nil
}

// RegisterHandler registers a message handler
func (h *Hub) RegisterHandler(handler MessageHandler) {
	h.handlerRegistry.Register(handler)
}

// HandleClientMessage routes a client event to its registered handler.
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) error {
	return h.handlerRegistry.Dispatch(ctx, client, msg)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Debug("websocket client connected",
		zap.Int64("user_id", client.userID),
		zap.String("session_id", client.sessionID),
		zap.Int("total", h.totalClients()))

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"user_id": client.userID,
		"role":    client.role,
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, client.userID)
			}

			h.logger.Debug("websocket client disconnected",
				zap.Int64("user_id", client.userID),
				zap.Int("total", h.totalClients()))
		}
	}
}

// BroadcastMessage delivers to the listed users, or everyone when UserIDs is nil.
func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.UserIDs == nil {
		for _, clients := range h.clients {
			for client := range clients {
				client.SendMessage(msg.Message)
			}
		}
		return
	}

	for _, userID := range msg.UserIDs {
		for client := range h.clients[userID] {
			client.SendMessage(msg.Message)
		}
	}
}

func (h *Hub) GetConnectedClients(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

// Public methods for broadcasting. They never block the caller; a full
// queue drops the push since the notification is already persisted.

func (h *Hub) BroadcastNotification(userID int64, n *wstypes.NotificationData) {
	h.enqueue(&BroadcastMessage{
		UserIDs: []int64{userID},
		Message: wstypes.NewMessage(wstypes.EventTypeNotification, n),
	})
}

func (h *Hub) BroadcastNotificationCount(userID int64, count int64) {
	h.enqueue(&BroadcastMessage{
		UserIDs: []int64{userID},
		Message: wstypes.NewMessage(wstypes.EventTypeNotificationCount, map[string]interface{}{
			"unread_count": count,
		}),
	})
}

func (h *Hub) enqueue(msg *BroadcastMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping message",
			zap.String("type", string(msg.Message.Type)))
	}
}

// DisconnectSession closes the sockets opened with one session, used on logout.
func (h *Hub) DisconnectSession(userID int64, sessionID, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := wstypes.NewMessage(wstypes.EventTypeDisconnected, map[string]interface{}{"reason": reason})
	closed := 0
	for client := range h.clients[userID] {
		if client.sessionID != sessionID {
			continue
		}
		client.SendMessage(msg)
		client.Close()
		delete(h.clients[userID], client)
		closed++
	}
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}

	if closed > 0 {
		h.logger.Info("websocket session disconnected",
			zap.Int64("user_id", userID),
			zap.Int("connections", closed),
			zap.String("reason", reason))
	}
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
	h.clients = make(map[int64]map[*Client]bool)
}

package websocket

import (
	"context"
	"errors"
	"testing"

	wstypes "adscreen-service/internal/domain/websocket"
	"adscreen-service/internal/pkg/jwt"
	"adscreen-service/internal/pkg/session"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubVerifier struct {
	claims *jwt.Claims
	err    error
}

func (v stubVerifier) Verify(string) (*jwt.Claims, error) { return v.claims, v.err }

type stubSessions struct {
	data *session.SessionData
	err  error
}

func (s stubSessions) GetSession(context.Context, int64, string) (*session.SessionData, error) {
	return s.data, s.err
}

func claims() *jwt.Claims {
	return &jwt.Claims{UserID: 3, Role: "business", RegisteredClaims: gojwt.RegisteredClaims{ID: "01JTI"}}
}

func TestAuthenticateClient(t *testing.T) {
	hub := NewHub(stubVerifier{claims: claims()}, stubSessions{data: &session.SessionData{Email: "m@example.com"}}, zap.NewNop())

	auth, err := hub.AuthenticateClient(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, int64(3), auth.UserID)
	assert.Equal(t, "01JTI", auth.SessionID)
	assert.Equal(t, "business", auth.Role)
	assert.Equal(t, "m@example.com", auth.Email)
}

func TestAuthenticateClient_Rejects(t *testing.T) {
	ctx := context.Background()

	t.Run("empty token", func(t *testing.T) {
		hub := NewHub(stubVerifier{}, stubSessions{}, zap.NewNop())
		_, err := hub.AuthenticateClient(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("bad signature", func(t *testing.T) {
		hub := NewHub(stubVerifier{err: errors.New("bad sig")}, stubSessions{}, zap.NewNop())
		_, err := hub.AuthenticateClient(ctx, "token")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("logged out", func(t *testing.T) {
		hub := NewHub(stubVerifier{claims: claims()}, stubSessions{err: session.ErrNotFound}, zap.NewNop())
		_, err := hub.AuthenticateClient(ctx, "token")
		assert.ErrorIs(t, err, ErrSessionExpired)
	})
}

func TestBroadcast_DropsWhenQueueFull(t *testing.T) {
	hub := NewHub(stubVerifier{}, stubSessions{}, zap.NewNop())

	for i := 0; i < cap(hub.broadcast)+10; i++ {
		hub.BroadcastNotificationCount(3, int64(i))
	}
	assert.Equal(t, cap(hub.broadcast), len(hub.broadcast))
}

func TestDisconnectSession(t *testing.T) {
	hub := NewHub(stubVerifier{}, stubSessions{}, zap.NewNop())
	phone := NewClient(hub, nil, &ClientAuth{UserID: 3, SessionID: "a"})
	tablet := NewClient(hub, nil, &ClientAuth{UserID: 3, SessionID: "a"})
	laptop := NewClient(hub, nil, &ClientAuth{UserID: 3, SessionID: "b"})
	hub.clients[3] = map[*Client]bool{phone: true, tablet: true, laptop: true}

	hub.DisconnectSession(3, "a", "logout")

	assert.Equal(t, 1, hub.GetConnectedClients(3))
	assert.Error(t, phone.ctx.Err())
	assert.Error(t, tablet.ctx.Err())
	assert.NoError(t, laptop.ctx.Err())
	assert.Len(t, phone.send, 1)

	hub.DisconnectSession(3, "b", "logout")
	assert.Equal(t, 0, hub.TotalClients())
	_, ok := hub.clients[3]
	assert.False(t, ok)
}

func TestHandlerRegistry(t *testing.T) {
	hub := NewHub(stubVerifier{}, stubSessions{}, zap.NewNop())
	h := &countingHandler{}
	hub.RegisterHandler(h)

	ctx := context.Background()
	require.NoError(t, hub.HandleClientMessage(ctx, nil, &wstypes.WSMessage{Type: wstypes.EventTypeNotificationRead}))
	assert.Equal(t, 1, h.calls)

	err := hub.HandleClientMessage(ctx, nil, &wstypes.WSMessage{Type: "unknown"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
	assert.Equal(t, 1, h.calls)
}

type countingHandler struct{ calls int }

func (h *countingHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{wstypes.EventTypeNotificationRead}
}

func (h *countingHandler) HandleMessage(context.Context, *Client, *wstypes.WSMessage) error {
	h.calls++
	return nil
}

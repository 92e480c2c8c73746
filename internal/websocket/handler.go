// internal/websocket/handler.go
package websocket

import (
	"context"
	"fmt"
	"sync"

	wstypes "adscreen-service/internal/domain/websocket"
)

// MessageHandler serves the client events one module understands.
type MessageHandler interface {
	HandleMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) error
	SupportedEvents() []wstypes.EventType
}

// HandlerRegistry routes inbound client events. The last handler registered
// for an event wins.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[wstypes.EventType]MessageHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[wstypes.EventType]MessageHandler)}
}

func (r *HandlerRegistry) Register(handler MessageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, event := range handler.SupportedEvents() {
		r.handlers[event] = handler
	}
}

// Dispatch hands msg to its handler. Unknown events return ErrUnknownEvent.
func (r *HandlerRegistry) Dispatch(ctx context.Context, client *Client, msg *wstypes.WSMessage) error {
	r.mu.RLock()
	handler, ok := r.handlers[msg.Type]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, msg.Type)
	}
	return handler.HandleMessage(ctx, client, msg)
}

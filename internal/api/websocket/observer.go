package websocket

import (
	"github.com/ramonehamilton/deckkeeper/internal/events"
)

// WebSocketObserver forwards every dispatched event to the hub's clients.
type WebSocketObserver struct {
	hub *Hub
}

// NewWebSocketObserver creates an observer for the hub.
func NewWebSocketObserver(hub *Hub) *WebSocketObserver {
	return &WebSocketObserver{hub: hub}
}

// OnEvent broadcasts the event payload under its type.
func (o *WebSocketObserver) OnEvent(event events.Event) error {
	if o.hub == nil {
		return nil
	}
	o.hub.Broadcast(event.Type, event.Data)
	return nil
}

// GetName returns the observer's name.
func (o *WebSocketObserver) GetName() string {
	return "WebSocketObserver"
}

// ShouldHandle accepts every event type.
func (o *WebSocketObserver) ShouldHandle(string) bool {
	return true
}

var _ events.Observer = (*WebSocketObserver)(nil)

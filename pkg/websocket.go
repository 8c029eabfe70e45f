// websocket.go
package loadstate

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler pushes every broadcast status update to connected
// clients as JSON.
type WebSocketHandler struct {
	RedisSubscriber *Broadcaster
	Logger          *zap.Logger
	Upgrader        websocket.Upgrader
}

func NewWebSocketHandler(broadcaster *Broadcaster, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		RedisSubscriber: broadcaster,
		Logger:          logger,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *WebSocketHandler) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		h.Logger.Error("Failed to upgrade to WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()

	pubsub := h.RedisSubscriber.RedisClient.Subscribe(ctx, UpdatesChannel)
	defer pubsub.Close()

	msgChan := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgChan:
			if !ok {
				return
			}

			var rec StatusRecord
			if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
				h.Logger.Error("Failed to unmarshal status update", zap.Error(err))
				continue
			}

			if err := conn.WriteJSON(rec); err != nil {
				h.Logger.Error("Failed to write JSON to WebSocket", zap.Error(err))
				return
			}
		}
	}
}

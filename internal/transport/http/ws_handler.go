package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"mindmaze-hunt/internal/domain"
)

const wsWriteWait = 10 * time.Second

type WSHandler struct {
	service  HuntService
	upgrader websocket.Upgrader
}

func NewWSHandler(service HuntService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeLeaderboard upgrades to a websocket and pushes a leaderboard snapshot
// on connect and after every award. Inbound messages are ignored.
func (h *WSHandler) ServeLeaderboard(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.service.Subscribe(r.Context())
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorResponse]{Type: "error", Payload: errorResponse{Error: "server_error", Message: "leaderboard unavailable"}})
		return
	}
	defer cancel()

	// The read loop only exists to notice the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case lb, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(outboundMessage[[]domain.LeaderboardEntry]{Type: "leaderboard", Payload: lb}); err != nil {
				slog.Debug("ws write error", "error", err)
				return
			}
		case <-closed:
			return
		}
	}
}

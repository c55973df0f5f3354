package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"cctvmap/pkg/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// StreamHandler pushes view snapshots to websocket clients.
type StreamHandler struct {
	view     *session.View
	upgrader websocket.Upgrader
}

func NewStreamHandler(view *session.View) *StreamHandler {
	return &StreamHandler{
		view: view,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Handle handles GET /api/view/ws. The current snapshot is sent on connect,
// then every change. Client messages are ignored.
func (h *StreamHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger := slog.With("component", "stream", "client", uuid.NewString())
	logger.Info("View stream client connected", "remote", r.RemoteAddr)
	defer logger.Info("View stream client disconnected")

	updates, cancel := h.view.Subscribe()
	defer cancel()

	// Reader: only needed to process control frames and notice the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(s session.Snapshot) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(s); err != nil {
			logger.Debug("Failed to write snapshot", "error", err)
			return false
		}
		return true
	}

	if !send(h.view.Snapshot()) {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case s, ok := <-updates:
			if !ok || !send(s) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket keeps a socket open for the session user. The server only
// writes to it; a "changed" event means the client should reload its boards.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	logger := log.WithFields(log.Fields{"user": ws.User.Username, "ip": clientIP(r)})

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	h.Hub.Register(ws.User.ID, conn)
	logger.Debug("websocket connected")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			logger.WithError(err).Debug("websocket closed")
			h.Hub.Unregister(ws.User.ID, conn)
			conn.Close()
			return
		}
	}
}

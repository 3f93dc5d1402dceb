package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// WriteWait bounds how long a single socket write may take.
const WriteWait = 10 * time.Second

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub keeps the open websocket connections of every user and tells them when their data changed.
// The per-connection mutex serializes writes, which a websocket connection does not allow concurrently.
type Hub struct {
	connections map[uuid.UUID]map[Conn]*sync.Mutex
	mutex       sync.Mutex
	writeWait   time.Duration
	logger      log.FieldLogger
}

func NewHub(logger log.FieldLogger) *Hub {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Hub{
		connections: make(map[uuid.UUID]map[Conn]*sync.Mutex),
		writeWait:   WriteWait,
		logger:      logger,
	}
}

func (h *Hub) Register(userID uuid.UUID, conn Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.connections[userID] == nil {
		h.connections[userID] = make(map[Conn]*sync.Mutex)
	}
	h.connections[userID][conn] = &sync.Mutex{}
}

func (h *Hub) Unregister(userID uuid.UUID, conn Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	conns, exists := h.connections[userID]
	if !exists {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.connections, userID)
	}
}

// Connections reports how many sockets the user has open.
func (h *Hub) Connections(userID uuid.UUID) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.connections[userID])
}

// Observer returns a bus observer that notifies the user's sockets.
func (h *Hub) Observer(userID uuid.UUID) Observer {
	return func() { h.BroadcastChanged(userID) }
}

// BroadcastChanged sends a "changed" event to every connection of the user.
// Writes happen outside the hub lock and give up after writeWait; connections
// that fail to receive the event are dropped.
func (h *Hub) BroadcastChanged(userID uuid.UUID) {
	h.mutex.Lock()
	targets := make(map[Conn]*sync.Mutex, len(h.connections[userID]))
	for conn, writeMu := range h.connections[userID] {
		targets[conn] = writeMu
	}
	h.mutex.Unlock()
	if len(targets) == 0 {
		return
	}

	message, err := json.Marshal(map[string]any{
		"event":   "changed",
		"user_id": userID,
	})
	if err != nil {
		h.logger.WithError(err).Error("marshal change event")
		return
	}

	for conn, writeMu := range targets {
		if err := h.write(conn, writeMu, message); err != nil {
			h.logger.WithError(err).WithField("user", userID).Warn("dropping websocket connection")
			h.Unregister(userID, conn)
			conn.Close()
		}
	}
}

func (h *Hub) write(conn Conn, writeMu *sync.Mutex, message []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := conn.SetWriteDeadline(time.Now().Add(h.writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, message)
}

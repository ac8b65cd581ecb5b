package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Broadcaster fans server events out to connected websocket clients.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[string]*websocket.Conn
	logger  zerolog.Logger
	seq     int64
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]*websocket.Conn),
		logger:  logger,
	}
}

// Add registers a client connection under the given id.
func (b *Broadcaster) Add(id string, conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[id] = conn
	b.logger.Debug().Str("clientId", id).Int("clients", len(b.clients)).Msg("Event client connected")
}

// Remove unregisters and closes a client connection.
func (b *Broadcaster) Remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if conn, ok := b.clients[id]; ok {
		conn.Close()
		delete(b.clients, id)
		b.logger.Debug().Str("clientId", id).Int("clients", len(b.clients)).Msg("Event client disconnected")
	}
}

// Count returns the number of connected clients.
func (b *Broadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Broadcast sends an event to every connected client. Clients whose
// writes fail are dropped.
func (b *Broadcaster) Broadcast(event string, data interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	message := EventMessage{
		Type:      "event",
		Event:     event,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
		Seq:       b.seq,
	}

	payload, err := json.Marshal(message)
	if err != nil {
		b.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal event")
		return
	}

	for id, conn := range b.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			b.logger.Warn().Err(err).Str("clientId", id).Msg("Dropping event client after write failure")
			conn.Close()
			delete(b.clients, id)
		}
	}
}

// CloseAll disconnects every client.
func (b *Broadcaster) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, conn := range b.clients {
		conn.Close()
		delete(b.clients, id)
	}
}

// handleEvents upgrades the connection and streams server events until
// the client goes away. Inbound messages are discarded.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to upgrade events connection")
		return
	}

	clientID, _ := gonanoid.New()
	s.broadcaster.Add(clientID, conn)

	go func() {
		defer s.broadcaster.Remove(clientID)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

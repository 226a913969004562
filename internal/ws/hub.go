package ws

import (
	"encoding/json"
	"sync"

	"vapestore-pos/pkg/logger"

	"github.com/gofiber/contrib/websocket"
)

// broadcastBuffer bounds how many events may queue while the hub is busy
const broadcastBuffer = 256

// Client is a live connection; satisfied by *websocket.Conn
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub fans events out to every connected dashboard
type Hub struct {
	Clients    map[Client]bool
	Register   chan Client
	Unregister chan Client
	Broadcast  chan []byte
	mutex      sync.Mutex
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		Clients:    make(map[Client]bool),
		Register:   make(chan Client),
		Unregister: make(chan Client),
		Broadcast:  make(chan []byte, broadcastBuffer),
		log:        log.WithComponent("ws"),
	}
}

// Run serves register, unregister and broadcast until done is closed
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			h.log.Debugw("ws client connected", "clients", h.ClientCount())

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Publish queues an event for broadcast. It never blocks: when the buffer is
// full the event is dropped and logged.
func (h *Hub) Publish(event any) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Warnw("ws event not serializable", "error", err)
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		h.log.Warnw("ws broadcast buffer full, event dropped")
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

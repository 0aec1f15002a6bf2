// Package bridge connects browser front ends to a session over websockets.
// The browser does speech recognition and synthesis; the bridge carries
// transcripts in and prompts, state and notifications out.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ErrQueueFull is returned when a message could not be queued.
var ErrQueueFull = errors.New("broadcast queue full")

// Message defines the structure of data exchanged via WebSocket
type Message struct {
	Type    string          `json:"type"`
	SheetID string          `json:"sheet_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients map[*Client]bool

	// Outbound messages for every client.
	broadcast chan []byte

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	connected atomic.Int32
	log       *logrus.Entry
}

func NewHub(log *logrus.Entry) *Hub {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.WithField("component", "hub"),
	}
}

// Connected is the number of registered clients.
func (h *Hub) Connected() int { return int(h.connected.Load()) }

// Run serves registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return ctx.Err()

		case client := <-h.register:
			h.clients[client] = true
			h.connected.Add(1)
			h.log.WithField("remote", client.remote).Info("client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.log.WithField("remote", client.remote).Info("client unregistered")
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client.
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) attach(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.connected.Add(-1)
}

// Broadcast queues msg for every client. It never blocks; when the queue
// is full the message is dropped and ErrQueueFull returned.
func (h *Hub) Broadcast(msg *Message) error {
	select {
	case h.broadcast <- msgToBytes(msg):
		return nil
	default:
		h.log.WithField("type", msg.Type).Warn("broadcast queue full, message dropped")
		return ErrQueueFull
	}
}

// Send builds a message with a JSON payload and broadcasts it.
func (h *Hub) Send(typ, sheetID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).WithField("type", typ).Error("encode payload")
		return err
	}
	return h.Broadcast(&Message{Type: typ, SheetID: sheetID, Payload: raw})
}

func msgToBytes(msg *Message) []byte {
	b, _ := json.Marshal(msg)
	return b
}

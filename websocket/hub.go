package websocket

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Hub maintains the set of active clients and tears their sessions down
type Hub struct {
	// Registered clients
	clients map[*Client]struct{}

	// Register requests from the handler
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Count requests, answered on the given channel
	count chan chan int

	done chan struct{}
	log  *logrus.Entry
}

// NewHub creates a new hub instance
func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves register and unregister requests until ctx is cancelled,
// then closes the session of every remaining client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.session.Close()
			}
		case reply := <-h.count:
			reply <- len(h.clients)
		case <-ctx.Done():
			for client := range h.clients {
				client.session.Close()
			}
			h.log.WithField("clients", len(h.clients)).Info("Hub stopped")
			clear(h.clients)
			return
		}
	}
}

// Register adds the client. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.session.Close()
	}
}

// Count returns the number of registered clients, or 0 once the hub has stopped.
func (h *Hub) Count() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

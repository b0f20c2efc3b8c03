package websocket

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/CUknot/messenger_backend/chat"
	"github.com/CUknot/messenger_backend/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// Authenticator resolves a bearer token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Handler upgrades /ws requests and starts a chat session per connection.
type Handler struct {
	hub         *Hub
	auth        Authenticator
	registry    *chat.Registry
	resolver    *chat.Resolver
	broadcaster *chat.Broadcaster
	sendBuffer  int
	log         *logrus.Entry
}

func NewHandler(hub *Hub, auth Authenticator, registry *chat.Registry, resolver *chat.Resolver, broadcaster *chat.Broadcaster, sendBuffer int, log *logrus.Entry) *Handler {
	return &Handler{
		hub:         hub,
		auth:        auth,
		registry:    registry,
		resolver:    resolver,
		broadcaster: broadcaster,
		sendBuffer:  sendBuffer,
		log:         log,
	}
}

// bearerToken reads the token from the token query parameter or the Authorization header.
func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// HandleConnection handles websocket connections.
// A missing or invalid token still gets a connection, whose session ignores every event.
func (h *Handler) HandleConnection(c *gin.Context) {
	var user *models.User
	if token := bearerToken(c.Request); token != "" {
		u, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			h.log.WithError(err).Debug("Websocket token rejected")
		} else {
			user = u
		}
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("Upgrade failed")
		return
	}

	client := newClient(h.hub, conn, h.sendBuffer, h.log)
	client.session = chat.NewSession(client, user, h.registry, h.resolver, h.broadcaster, h.log)
	if !h.hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	client.session.Open()

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

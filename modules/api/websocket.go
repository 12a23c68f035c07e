package api

import (
	"encoding/json"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	domain "github.com/vishu1803/Collaborative-task-manager/domain/user"
	"github.com/vishu1803/Collaborative-task-manager/modules/presence"
)

// Client-facing socket events outside the presence and task sets.
const (
	EventAuthenticated = "authenticated"
	EventPong          = "pong"
	EventError         = "error"
)

// clientMessage is a frame sent by the browser.
type clientMessage struct {
	Event string `json:"event"`
}

// SenderFactory wraps a socket in a presence.Sender.
type SenderFactory func(w presence.FrameWriter) presence.Sender

// socketHandler serves /ws connections.
type socketHandler struct {
	registry  *presence.Registry
	newSender SenderFactory
	logger    types.Logger
}

// Handle runs for the lifetime of one authenticated socket. All writes go
// through the connection's sender so frames keep their order.
func (h *socketHandler) Handle(c *websocket.Conn) {
	u, ok := c.Locals(UserContextKey).(*domain.User)
	if !ok || u == nil {
		_ = c.Close()
		return
	}

	sender := h.newSender(c)
	conn := presence.Connection{
		ID:     presence.NewConnectionID(),
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
	}

	sender.Send(presence.Envelope{Event: EventAuthenticated, Data: fiber.Map{
		"userId":    u.ID,
		"user":      u.Summary(),
		"timestamp": time.Now().UTC(),
	}})
	h.registry.AddConnection(conn, sender)
	h.sendOnlineSnapshot(sender)

	// Close waits for the writer, so nothing touches c after Handle returns
	// and the websocket package recycles it.
	defer func() {
		h.registry.RemoveConnection(conn.ID)
		_ = sender.Close()
	}()

	h.logger.Info("WebSocket connected", "user_id", u.ID, "connection_id", conn.ID)

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket error", "user_id", u.ID, "error", err)
			}
			break
		}

		var in clientMessage
		if err := json.Unmarshal(msg, &in); err != nil {
			sender.Send(presence.Envelope{Event: EventError, Data: fiber.Map{"message": "Invalid message format"}})
			continue
		}

		switch in.Event {
		case "ping":
			sender.Send(presence.Envelope{Event: EventPong, Data: fiber.Map{"timestamp": time.Now().UTC()}})
		case "presence:list":
			h.sendOnlineSnapshot(sender)
		default:
			sender.Send(presence.Envelope{Event: EventError, Data: fiber.Map{"message": "Unknown event: " + in.Event}})
		}
	}

	h.logger.Info("WebSocket disconnected", "user_id", u.ID, "connection_id", conn.ID)
}

func (h *socketHandler) sendOnlineSnapshot(s presence.Sender) {
	users := h.registry.OnlineUsers()
	s.Send(presence.Envelope{Event: presence.EventUserOnline, Data: fiber.Map{
		"users": users,
		"count": len(users),
	}})
}

// upgradeOnly rejects plain HTTP requests to the socket endpoint.
func upgradeOnly(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/betcleverde/betclever-landing-hub/internal/auth"
	"github.com/betcleverde/betclever-landing-hub/internal/realtime"
	"github.com/betcleverde/betclever-landing-hub/internal/support"
)

type WSHandlers struct {
	jwt     *auth.JWTManager
	authSvc *auth.Service
	hub     *realtime.Hub
	admins  *support.AdminSessions
	inboxes *support.Registry
}

func NewWSHandlers(jwt *auth.JWTManager, authSvc *auth.Service, hub *realtime.Hub, admins *support.AdminSessions, inboxes *support.Registry) *WSHandlers {
	return &WSHandlers{jwt: jwt, authSvc: authSvc, hub: hub, admins: admins, inboxes: inboxes}
}

// Upgrade authenticates via query token (websocket clients cannot set
// headers) and re-checks privilege before the handshake completes.
func (h *WSHandlers) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	claims, err := h.jwt.Parse(c.Query("token"))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}
	isAdmin, err := h.authSvc.IsAdmin(c.Context(), claims.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "privilege check failed"})
	}
	c.Locals("user_id", claims.UserID)
	c.Locals("email", claims.Email)
	c.Locals("is_admin", isAdmin)
	return c.Next()
}

// Serve holds one stream subscription for the lifetime of the connection:
// admins attach to their session aggregator, users to their own inbox. The
// subscription is torn down with the socket, and results arriving after
// teardown are discarded by the unsubscribed listener.
func (h *WSHandlers) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("user_id").(string)
		email, _ := conn.Locals("email").(string)
		isAdmin, _ := conn.Locals("is_admin").(bool)

		client := realtime.NewClient(userID, isAdmin, conn)
		h.hub.Add(client)

		var unsub func()
		if isAdmin {
			agg := h.admins.Acquire(userID)
			unsub = agg.Subscribe(support.ListenerFunc(func(ev support.Event) {
				client.Send(ev)
			}))
			defer h.admins.Release(userID)
		} else {
			in := h.inboxes.Acquire(userID, email)
			unsub = in.Subscribe(support.ListenerFunc(func(ev support.Event) {
				client.Send(ev)
			}))
			defer h.inboxes.Release(userID)
		}

		go client.WritePump()
		client.ReadPump()

		unsub()
		client.Close()
		h.hub.Remove(client)
	})
}

package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/betcleverde/betclever-landing-hub/internal/support"
)

type SupportHandlers struct {
	admins  *support.AdminSessions
	inboxes *support.Registry
}

func NewSupportHandlers(admins *support.AdminSessions, inboxes *support.Registry) *SupportHandlers {
	return &SupportHandlers{admins: admins, inboxes: inboxes}
}

// --- end-user side ---

func (h *SupportHandlers) GetOwnMessages(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	email, _ := c.Locals("email").(string)
	in := h.inboxes.Acquire(userID, email)
	defer h.inboxes.Release(userID)

	msgs, err := in.LoadOwn(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs, "unread": in.UnreadCount()})
}

type sendReq struct {
	Content string `json:"content"`
}

func (h *SupportHandlers) Send(c *fiber.Ctx) error {
	var req sendReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	userID, _ := c.Locals("user_id").(string)
	email, _ := c.Locals("email").(string)
	in := h.inboxes.Acquire(userID, email)
	defer h.inboxes.Release(userID)

	m, err := in.Send(c.Context(), req.Content)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": m})
}

type panelReq struct {
	Open bool `json:"open"`
}

// Panel mirrors the chat widget's open state; opening counts as reading.
func (h *SupportHandlers) Panel(c *fiber.Ctx) error {
	var req panelReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	userID, _ := c.Locals("user_id").(string)
	email, _ := c.Locals("email").(string)
	in := h.inboxes.Acquire(userID, email)
	defer h.inboxes.Release(userID)

	if req.Open {
		in.OpenPanel()
	} else {
		in.ClosePanel()
	}
	return c.JSON(fiber.Map{"unread": in.UnreadCount()})
}

// --- admin side ---

func (h *SupportHandlers) ListConversations(c *fiber.Ctx) error {
	adminID, _ := c.Locals("user_id").(string)
	agg := h.admins.Acquire(adminID)
	defer h.admins.Release(adminID)

	groups, err := agg.LoadAll(c.Context())
	if err != nil {
		return fail(c, err)
	}
	recent := []string{}
	for k := range agg.RecentSet() {
		recent = append(recent, k)
	}
	return c.JSON(fiber.Map{
		"conversations": groups,
		"order":         agg.Order(),
		"recent":        recent,
		"selected":      agg.Selected(),
	})
}

type selectReq struct {
	UserID string `json:"user_id"`
}

func (h *SupportHandlers) Select(c *fiber.Ctx) error {
	var req selectReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	adminID, _ := c.Locals("user_id").(string)
	agg := h.admins.Acquire(adminID)
	defer h.admins.Release(adminID)

	agg.Select(req.UserID)
	return c.JSON(fiber.Map{"selected": req.UserID})
}

type replyReq struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

func (h *SupportHandlers) Reply(c *fiber.Ctx) error {
	var req replyReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	adminID, _ := c.Locals("user_id").(string)
	adminEmail, _ := c.Locals("email").(string)
	agg := h.admins.Acquire(adminID)
	defer h.admins.Release(adminID)

	m, err := agg.SendReply(c.Context(), req.UserID, req.Content, adminEmail)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": m})
}

// DeleteConversation is irreversible, so the client must send confirm=true
// after its warning dialog.
func (h *SupportHandlers) DeleteConversation(c *fiber.Ctx) error {
	if c.Query("confirm") != "true" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "confirmation required"})
	}
	adminID, _ := c.Locals("user_id").(string)
	agg := h.admins.Acquire(adminID)
	defer h.admins.Release(adminID)

	if err := agg.DeleteConversation(c.Context(), c.Params("user_id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

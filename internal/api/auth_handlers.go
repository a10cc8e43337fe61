package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/betcleverde/betclever-landing-hub/internal/auth"
)

type AuthHandlers struct {
	svc *auth.Service
}

func NewAuthHandlers(svc *auth.Service) *AuthHandlers {
	return &AuthHandlers{svc: svc}
}

type signUpReq struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func (h *AuthHandlers) SignUp(c *fiber.Ctx) error {
	var req signUpReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	u, err := h.svc.SignUp(c.Context(), req.Email, req.Password, req.PasswordConfirm)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u})
}

type signInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandlers) SignIn(c *fiber.Ctx) error {
	var req signInReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	tokens, u, err := h.svc.SignIn(c.Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"tokens": tokens, "user": u})
}

func (h *AuthHandlers) SignOut(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if err := h.svc.SignOut(c.Context(), userID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandlers) Refresh(c *fiber.Ctx) error {
	var req refreshReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	tokens, err := h.svc.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"tokens": tokens})
}

// Me returns the identity plus a fresh privilege check.
func (h *AuthHandlers) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	email, _ := c.Locals("email").(string)
	isAdmin, err := h.svc.IsAdmin(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"id": userID, "email": email, "is_admin": isAdmin})
}

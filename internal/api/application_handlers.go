package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/betcleverde/betclever-landing-hub/internal/application"
	"github.com/betcleverde/betclever-landing-hub/internal/auth"
)

type ApplicationHandlers struct {
	svc   *application.Service
	users *auth.Service
}

func NewApplicationHandlers(svc *application.Service, users *auth.Service) *ApplicationHandlers {
	return &ApplicationHandlers{svc: svc, users: users}
}

// GetOwn returns the user's application (null while in the draft state)
// together with the per-field editability map for the wizard.
func (h *ApplicationHandlers) GetOwn(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	app, err := h.svc.GetByUser(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	editable := map[string]bool{}
	for _, f := range application.FieldNames {
		editable[f] = application.FieldEditable(app, f)
	}
	return c.JSON(fiber.Map{"application": app, "editable_fields": editable})
}

func (h *ApplicationHandlers) Submit(c *fiber.Ctx) error {
	var in application.SubmitInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	userID, _ := c.Locals("user_id").(string)
	app, err := h.svc.Submit(c.Context(), userID, in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"application": app})
}

func (h *ApplicationHandlers) List(c *fiber.Ctx) error {
	apps, err := h.svc.List(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"applications": apps})
}

type reviewReq struct {
	Feedback       string   `json:"feedback"`
	UnlockedFields []string `json:"unlocked_fields"`
}

func (h *ApplicationHandlers) Approve(c *fiber.Ctx) error {
	var req reviewReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	app, err := h.svc.Approve(c.Context(), c.Params("id"), req.Feedback)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"application": app})
}

func (h *ApplicationHandlers) RequestChanges(c *fiber.Ctx) error {
	var req reviewReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	app, err := h.svc.RequestChanges(c.Context(), c.Params("id"), req.Feedback, req.UnlockedFields)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"application": app})
}

func (h *ApplicationHandlers) Delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.Context(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// ListUsers joins every account with its application status for the admin
// user table.
func (h *ApplicationHandlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.Context())
	if err != nil {
		return fail(c, err)
	}
	apps, err := h.svc.List(c.Context())
	if err != nil {
		return fail(c, err)
	}
	statusByUser := map[string]string{}
	for _, a := range apps {
		statusByUser[a.UserID] = a.Status
	}

	type row struct {
		ID                string `json:"id"`
		Email             string `json:"email"`
		ApplicationStatus string `json:"application_status,omitempty"`
	}
	rows := make([]row, 0, len(users))
	for _, u := range users {
		rows = append(rows, row{ID: u.ID, Email: u.Email, ApplicationStatus: statusByUser[u.ID]})
	}
	return c.JSON(fiber.Map{"users": rows})
}

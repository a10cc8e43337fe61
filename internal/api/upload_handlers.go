package api

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/betcleverde/betclever-landing-hub/internal/storage"
)

type UploadHandlers struct {
	svc *storage.Service
}

func NewUploadHandlers(svc *storage.Service) *UploadHandlers {
	return &UploadHandlers{svc: svc}
}

// Upload takes one multipart file for a named document slot and returns the
// public URL the wizard stores on the application.
func (h *UploadHandlers) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable file"})
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unreadable file"})
	}

	userID, _ := c.Locals("user_id").(string)
	url, err := h.svc.UploadDocument(c.Context(), userID, c.Params("slot"), fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}

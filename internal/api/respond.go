package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/betcleverde/betclever-landing-hub/internal/apperr"
)

// fail maps an operation-boundary error onto a status code and a
// notification-shaped JSON body. Nothing here crashes the view; every store
// failure ends up as a toast on the client.
func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrAuth):
		status = fiber.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, apperr.ErrRateLimited):
		status = fiber.StatusTooManyRequests
	case errors.Is(err, apperr.ErrFetch), errors.Is(err, apperr.ErrSend),
		errors.Is(err, apperr.ErrDelete), errors.Is(err, apperr.ErrUpload):
		status = fiber.StatusBadGateway
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

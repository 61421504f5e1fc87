package response

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"propshare-backend/internal/pkg/apperr"
)

// Body is the standardized JSON envelope for every endpoint.
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// OK sends 200 with the standard envelope.
func OK(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Body{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends 201 with the standard envelope.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Body{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Fail sends a non-2xx envelope with success=false.
func Fail(c *fiber.Ctx, message string, statusCode int) error {
	return c.Status(statusCode).JSON(Body{
		Success: false,
		Message: message,
	})
}

// Unauthorized sends 401 in the standard shape (used by auth middleware).
func Unauthorized(c *fiber.Ctx, message string) error {
	return Fail(c, message, fiber.StatusUnauthorized)
}

// FromError renders a service error. Domain errors keep their message and
// mapped status; anything else is logged and hidden behind a generic 500.
func FromError(c *fiber.Ctx, err error) error {
	if apperr.KindOf(err) != apperr.KindUnknown {
		return Fail(c, err.Error(), apperr.HTTPStatus(err))
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled service error")
	return Fail(c, "Internal Server Error", fiber.StatusInternalServerError)
}

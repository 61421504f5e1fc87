package holdings

import (
	holdsvc "propshare-backend/internal/application/holdings"
	"propshare-backend/internal/middleware"
	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *holdsvc.Service
}

// List GET /api/v1/holdings (own holdings, properties populated)
func (h *Handlers) List(c *fiber.Ctx) error {
	u := middleware.GetAuthUser(c)
	if u == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(u.UserID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	views, err := h.Service.ListForUser(c.Context(), userID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Holdings retrieved", views)
}

// Get GET /api/v1/holdings/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	holdingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Fail(c, "Invalid UUID format for holding id", fiber.StatusBadRequest)
	}
	u := middleware.GetAuthUser(c)
	if u == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(u.UserID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	view, err := h.Service.Get(c.Context(), holdingID, userID, u.Role)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Holding retrieved", view)
}

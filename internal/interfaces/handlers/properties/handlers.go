package properties

import (
	propsvc "propshare-backend/internal/application/properties"
	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *propsvc.Service
}

// List GET /api/v1/properties
func (h *Handlers) List(c *fiber.Ctx) error {
	properties, err := h.Service.List(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Properties retrieved", properties)
}

// Get GET /api/v1/properties/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	propertyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Fail(c, "Invalid UUID format for property id", fiber.StatusBadRequest)
	}
	property, err := h.Service.Get(c.Context(), propertyID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Property retrieved", property)
}

// AdminCreate POST /api/v1/admin/properties
func (h *Handlers) AdminCreate(c *fiber.Ctx) error {
	var body struct {
		Title       string          `json:"title"`
		Address     string          `json:"address"`
		City        string          `json:"city"`
		Country     string          `json:"country"`
		Description string          `json:"description"`
		TotalValue  decimal.Decimal `json:"totalValue"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Fail(c, "Missing required fields", fiber.StatusBadRequest)
	}
	property, err := h.Service.Create(c.Context(), propsvc.CreateInput{
		Title:       body.Title,
		Address:     body.Address,
		City:        body.City,
		Country:     body.Country,
		Description: body.Description,
		TotalValue:  body.TotalValue,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Property created", property)
}

// AdminUpdate PATCH /api/v1/admin/properties/:id
func (h *Handlers) AdminUpdate(c *fiber.Ctx) error {
	propertyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Fail(c, "Invalid UUID format for property id", fiber.StatusBadRequest)
	}
	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Fail(c, "Missing required fields", fiber.StatusBadRequest)
	}
	property, err := h.Service.Update(c.Context(), propertyID, propsvc.UpdateInput{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Property updated", property)
}

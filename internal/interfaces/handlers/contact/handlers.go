package contact

import (
	contactsvc "propshare-backend/internal/application/contact"
	"propshare-backend/internal/middleware"
	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *contactsvc.Service
}

// Create POST /api/v1/contact-owner
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body struct {
		HoldingID         string `json:"holdingId"`
		Subject           string `json:"subject"`
		Message           string `json:"message"`
		ContactPreference string `json:"contactPreference"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Fail(c, "Missing required fields", fiber.StatusBadRequest)
	}
	if body.HoldingID == "" {
		return response.Fail(c, "holdingId is required", fiber.StatusBadRequest)
	}
	holdingID, err := uuid.Parse(body.HoldingID)
	if err != nil {
		return response.Fail(c, "Invalid UUID format for holdingId", fiber.StatusBadRequest)
	}
	sender, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	msg, err := h.Service.Create(c.Context(), contactsvc.CreateInput{
		UserID:            sender,
		HoldingID:         holdingID,
		Subject:           body.Subject,
		Body:              body.Message,
		ContactPreference: body.ContactPreference,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Message sent", msg)
}

// ListOwn GET /api/v1/contact-owner?status= (self-scoped)
func (h *Handlers) ListOwn(c *fiber.Ctx) error {
	sender, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	messages, err := h.Service.ListForUser(c.Context(), sender, c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Messages retrieved", messages)
}

// AdminList GET /api/v1/admin/contact-owner?status= (messages + counts)
func (h *Handlers) AdminList(c *fiber.Ctx) error {
	listing, err := h.Service.ListForAdmin(c.Context(), c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Messages retrieved", listing)
}

// AdminRead POST /api/v1/admin/contact-owner/:id/read
func (h *Handlers) AdminRead(c *fiber.Ctx) error {
	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Fail(c, "Invalid UUID format for message id", fiber.StatusBadRequest)
	}
	msg, err := h.Service.MarkRead(c.Context(), messageID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Message marked as read", msg)
}

// AdminRespond POST /api/v1/admin/contact-owner/:id/respond
func (h *Handlers) AdminRespond(c *fiber.Ctx) error {
	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Fail(c, "Invalid UUID format for message id", fiber.StatusBadRequest)
	}
	var body struct {
		Message    string  `json:"message"`
		Status     string  `json:"status"`
		AdminNotes *string `json:"adminNotes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Fail(c, "Missing required fields", fiber.StatusBadRequest)
	}
	admin, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	msg, err := h.Service.Respond(c.Context(), contactsvc.RespondInput{
		MessageID: messageID,
		AdminID:   admin,
		Message:   body.Message,
		NewStatus: body.Status,
		Notes:     body.AdminNotes,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Response recorded", msg)
}

// AdminUpdateStatus POST /api/v1/admin/contact-owner/:id/status
func (h *Handlers) AdminUpdateStatus(c *fiber.Ctx) error {
	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Fail(c, "Invalid UUID format for message id", fiber.StatusBadRequest)
	}
	var body struct {
		Status     string  `json:"status"`
		AdminNotes *string `json:"adminNotes"`
	}
	if err := c.BodyParser(&body); err != nil || body.Status == "" {
		return response.Fail(c, "status is required", fiber.StatusBadRequest)
	}

	msg, err := h.Service.UpdateStatus(c.Context(), messageID, body.Status, body.AdminNotes)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Status updated", msg)
}

func actorID(c *fiber.Ctx) (uuid.UUID, error) {
	u := middleware.GetAuthUser(c)
	if u == nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return uuid.Parse(u.UserID)
}

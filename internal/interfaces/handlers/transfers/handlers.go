package transfers

import (
	transfersvc "propshare-backend/internal/application/transfers"
	"propshare-backend/internal/middleware"
	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *transfersvc.Service
}

// Create POST /api/v1/transfer-requests
func (h *Handlers) Create(c *fiber.Ctx) error {
	var body struct {
		HoldingID string          `json:"holdingId"`
		BuyerID   string          `json:"buyerId"`
		SalePrice decimal.Decimal `json:"salePrice"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Fail(c, "Missing required fields", fiber.StatusBadRequest)
	}
	if body.HoldingID == "" || body.BuyerID == "" {
		return response.Fail(c, "holdingId and buyerId are required", fiber.StatusBadRequest)
	}
	holdingID, err := uuid.Parse(body.HoldingID)
	if err != nil {
		return response.Fail(c, "Invalid UUID format for holdingId", fiber.StatusBadRequest)
	}
	buyerID, err := uuid.Parse(body.BuyerID)
	if err != nil {
		return response.Fail(c, "Invalid UUID format for buyerId", fiber.StatusBadRequest)
	}
	seller, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	req, err := h.Service.Create(c.Context(), transfersvc.CreateInput{
		SellerID:  seller,
		BuyerID:   buyerID,
		HoldingID: holdingID,
		SalePrice: body.SalePrice,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Transfer request created", req)
}

// ListSent GET /api/v1/transfer-requests
func (h *Handlers) ListSent(c *fiber.Ctx) error {
	seller, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	requests, err := h.Service.ListSent(c.Context(), seller)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Transfer requests retrieved", requests)
}

// ListReceived GET /api/v1/transfer-requests/received (buyer view)
func (h *Handlers) ListReceived(c *fiber.Ctx) error {
	buyer, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	requests, err := h.Service.ListReceived(c.Context(), buyer)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Transfer requests retrieved", requests)
}

// Respond POST /api/v1/transfer-requests/:id/respond
func (h *Handlers) Respond(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Fail(c, "Invalid UUID format for request id", fiber.StatusBadRequest)
	}
	var body struct {
		Response string `json:"response"`
	}
	if err := c.BodyParser(&body); err != nil || body.Response == "" {
		return response.Fail(c, "response is required", fiber.StatusBadRequest)
	}
	buyer, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	req, err := h.Service.BuyerRespond(c.Context(), requestID, buyer, body.Response)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Response recorded", req)
}

// Cancel POST /api/v1/transfer-requests/:id/cancel
func (h *Handlers) Cancel(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Fail(c, "Invalid UUID format for request id", fiber.StatusBadRequest)
	}
	seller, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	req, err := h.Service.Cancel(c.Context(), requestID, seller)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Transfer request cancelled", req)
}

// AdminList GET /api/v1/admin/transfer-requests?status=
func (h *Handlers) AdminList(c *fiber.Ctx) error {
	requests, err := h.Service.List(c.Context(), c.Query("status"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Transfer requests retrieved", requests)
}

// AdminApprove POST /api/v1/admin/transfer-requests/:id/approve
func (h *Handlers) AdminApprove(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Fail(c, "Invalid UUID format for request id", fiber.StatusBadRequest)
	}
	var body struct {
		AdminNotes *string `json:"adminNotes"`
	}
	_ = c.BodyParser(&body)
	admin, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	req, err := h.Service.AdminApprove(c.Context(), requestID, admin, body.AdminNotes)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Transfer approved and completed", req)
}

// AdminReject POST /api/v1/admin/transfer-requests/:id/reject
func (h *Handlers) AdminReject(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Fail(c, "Invalid UUID format for request id", fiber.StatusBadRequest)
	}
	var body struct {
		AdminNotes *string `json:"adminNotes"`
	}
	_ = c.BodyParser(&body)
	admin, err := actorID(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	req, err := h.Service.AdminReject(c.Context(), requestID, admin, body.AdminNotes)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Transfer rejected", req)
}

// AdminListEvents GET /api/v1/admin/transfer-requests/:id/events
func (h *Handlers) AdminListEvents(c *fiber.Ctx) error {
	requestID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Fail(c, "Invalid UUID format for request id", fiber.StatusBadRequest)
	}
	events, err := h.Service.ListEvents(c.Context(), requestID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Transfer events retrieved", events)
}

func actorID(c *fiber.Ctx) (uuid.UUID, error) {
	u := middleware.GetAuthUser(c)
	if u == nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return uuid.Parse(u.UserID)
}

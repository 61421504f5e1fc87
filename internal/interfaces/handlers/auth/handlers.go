package auth

import (
	authsvc "propshare-backend/internal/application/auth"
	"propshare-backend/internal/middleware"
	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *authsvc.Service
}

// Register POST /api/v1/auth/register
func (h *Handlers) Register(c *fiber.Ctx) error {
	var body authsvc.RegisterInput
	if err := c.BodyParser(&body); err != nil {
		return response.Fail(c, "Missing required fields", fiber.StatusBadRequest)
	}
	user, err := h.Service.Register(c.Context(), body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Account created", user)
}

// Login POST /api/v1/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Fail(c, "Email and password are required", fiber.StatusBadRequest)
	}
	result, err := h.Service.Login(c.Context(), body.Email, body.Password)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Logged in", result)
}

// Me GET /api/v1/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	u := middleware.GetAuthUser(c)
	if u == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	user, err := h.Service.Me(c.Context(), u.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "User retrieved", user)
}

// RequestReset POST /api/v1/auth/request-reset
func (h *Handlers) RequestReset(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" {
		return response.Fail(c, "Email is required", fiber.StatusBadRequest)
	}
	if err := h.Service.RequestPasswordReset(c.Context(), body.Email); err != nil {
		return response.FromError(c, err)
	}
	// Same response whether or not the account exists.
	return response.OK(c, "If the account exists, a reset code has been sent", nil)
}

// ResetPassword POST /api/v1/auth/reset-password
func (h *Handlers) ResetPassword(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Code     string `json:"code"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" || body.Code == "" {
		return response.Fail(c, "Email and code are required", fiber.StatusBadRequest)
	}
	if err := h.Service.ResetPassword(c.Context(), body.Email, body.Code, body.Password); err != nil {
		return response.FromError(c, err)
	}
	return response.OK(c, "Password updated", nil)
}

package health

import (
	"context"

	healthsvc "propshare-backend/internal/application/health"
	"propshare-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Rdb            *redis.Client
	DB             healthsvc.DBPinger
	HealthAdminKey string
}

// JSON GET /health/json
func (h *Handlers) JSON(c *fiber.Ctx) error {
	result := healthsvc.Collect(c.Context(), h.Rdb, h.DB)
	return c.JSON(result)
}

// Reset GET /health/reset?key= clears the traffic counters (admin key gated).
func (h *Handlers) Reset(c *fiber.Ctx) error {
	if h.HealthAdminKey == "" || c.Query("key") != h.HealthAdminKey {
		return c.SendStatus(fiber.StatusForbidden)
	}
	if h.Rdb != nil {
		ctx := context.Background()
		h.Rdb.Del(ctx,
			middleware.KeyReqTotal,
			middleware.KeyReqErrors,
			middleware.KeyResTime,
			middleware.KeyResCount,
			middleware.KeyStartTime,
			middleware.KeyLastReq,
		)
	}
	return c.JSON(fiber.Map{"reset": true})
}

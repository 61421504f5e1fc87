package middleware

import (
	"propshare-backend/internal/pkg/constants"
	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthorizePermission checks the caller's role against PermissionRoles.
// Unconfigured permission -> 500 "Permission configuration error"; role not
// allowed -> 403.
func AuthorizePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := GetAuthUser(c)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		roles, ok := constants.PermissionRoles[permission]
		if !ok || len(roles) == 0 {
			return response.Fail(c, "Permission configuration error", fiber.StatusInternalServerError)
		}
		if !constants.AllowedRole(permission, user.Role) {
			return response.Fail(c, "User is Forbidden from performing this action", fiber.StatusForbidden)
		}
		return c.Next()
	}
}

package middleware

import (
	"strings"
	"time"

	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const authUserLocal = "auth_user"

// AuthUser is the caller identity extracted from a verified bearer token.
type AuthUser struct {
	UserID string
	Role   string
}

// Claims is the JWT payload issued at login.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 bearer token for a user.
func SignToken(secret, userID, role string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RequireAuth verifies the Authorization bearer token and puts the caller
// identity in Locals. Returns 401 in the standard envelope on failure.
func RequireAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return response.Unauthorized(c, "Unauthorized")
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.UserID == "" {
			return response.Unauthorized(c, "Unauthorized")
		}

		c.Locals(authUserLocal, &AuthUser{UserID: claims.UserID, Role: claims.Role})
		return c.Next()
	}
}

// GetAuthUser returns the verified caller from Locals (nil if unauthenticated).
func GetAuthUser(c *fiber.Ctx) *AuthUser {
	u, _ := c.Locals(authUserLocal).(*AuthUser)
	return u
}

// SetAuthUser injects a caller identity directly; used by handler tests.
func SetAuthUser(c *fiber.Ctx, u *AuthUser) {
	c.Locals(authUserLocal, u)
}

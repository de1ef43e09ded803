package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"padyai-portal/internal/config"
	"padyai-portal/internal/pkg/jwt"
	"padyai-portal/internal/pkg/response"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := extractToken(c)
		if accessToken == "" {
			return response.Denied(c, fiber.StatusUnauthorized, "Access token required", LoginRedirect(c))
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Denied(c, fiber.StatusUnauthorized, "Access token expired", LoginRedirect(c))
			}
			return response.Denied(c, fiber.StatusUnauthorized, "Invalid access token", LoginRedirect(c))
		}

		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("userType", claims.UserType)

		return c.Next()
	}
}

// OptionalAuth sets user info if a valid token is present but never
// rejects the request
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if accessToken := extractToken(c); accessToken != "" {
			if claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret); err == nil {
				c.Locals("userID", claims.UserID)
				c.Locals("email", claims.Email)
				c.Locals("userType", claims.UserType)
			}
		}

		return c.Next()
	}
}

// extractToken reads the access token from the cookie first, then the
// Authorization header
func extractToken(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}

	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

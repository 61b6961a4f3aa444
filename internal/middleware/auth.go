// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"strconv"
	"strings"

	"silenceboost/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	tokenString := ""
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}

	// WebSocket upgrades cannot send headers; accept a token query parameter.
	if tokenString == "" {
		tokenString = c.Query("token")
	}

	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization required",
		})
	}

	userID, ok := ParseUserID(tokenString)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	c.Locals("userID", userID)
	return c.Next()
}

// ParseUserID validates a JWT and extracts the user ID from its subject claim.
func ParseUserID(tokenString string) (uint, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	// User ID travels in the "sub" claim (RFC 7519).
	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}

	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userIDVal), true
}

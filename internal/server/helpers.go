// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"silenceboost/internal/middleware"
	"silenceboost/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "entryId" -> "entry ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// statusForError maps application error codes onto HTTP status codes.
func statusForError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeStoreUnavailable:
		return fiber.StatusServiceUnavailable
	case models.CodeInternal:
		return fiber.StatusInternalServerError
	default:
		// Validation, phase, duplicate vote and friends are all caller errors.
		return fiber.StatusBadRequest
	}
}

// fail writes the error response with the status derived from its code.
func fail(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusForError(err), err)
}

// currentUserID returns the authenticated user's ID from locals.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// optionalUserID resolves the caller's identity when a token is present but
// never fails the request. Anonymous callers get zero.
func optionalUserID(c *fiber.Ctx) uint {
	if uid := currentUserID(c); uid != 0 {
		return uid
	}
	authHeader := c.Get("Authorization")
	tokenString := ""
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		return 0
	}
	uid, ok := middleware.ParseUserID(tokenString)
	if !ok {
		return 0
	}
	return uid
}

func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("is_admin").First(&user, userID).Error; err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// AdminRequired gates a route to admin users. Must run after AuthRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := currentUserID(c)
		if userID == 0 {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		isAdmin, err := s.isAdminByUserID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}
		if !isAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

package server

import (
	"silenceboost/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.Context(), currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// SetActiveBadge handles PUT /api/users/me/badge
// @Summary Choose the badge shown on the profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{badge_id=string} true "Badge selection; empty string clears it"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me/badge [put]
func (s *Server) SetActiveBadge(c *fiber.Ctx) error {
	var req struct {
		BadgeID string `json:"badge_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	user, err := s.userService.SetActiveBadge(c.Context(), currentUserID(c), req.BadgeID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}

// GetFollowableAccounts handles GET /api/users/followable
func (s *Server) GetFollowableAccounts(c *fiber.Ctx) error {
	users, err := s.userService.FollowableAccounts(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}

// FollowUser handles POST /api/users/:id/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.userService.Follow(c.Context(), currentUserID(c), targetID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"following": true})
}

// UnfollowUser handles DELETE /api/users/:id/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.userService.Unfollow(c.Context(), currentUserID(c), targetID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"following": false})
}

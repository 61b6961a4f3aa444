package server

import (
	"silenceboost/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed
// @Summary Get the personalized feed
// @Description Returns a page of posts. Authenticated callers without a category filter get interest-weighted ranking.
// @Tags feed
// @Produce json
// @Param category query string false "Filter by category"
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size"
// @Success 200 {array} models.Post
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	posts, err := s.feedService.GetFeed(c.Context(), service.FeedInput{
		UserID:   optionalUserID(c),
		Category: c.Query("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(posts)
}

// Discover handles GET /api/discover
// @Summary Discover hidden gems
// @Description Returns low-engagement posts so new creators get surfaced.
// @Tags feed
// @Produce json
// @Success 200 {array} models.Post
// @Router /discover [get]
func (s *Server) Discover(c *fiber.Ctx) error {
	posts, err := s.feedService.Discover(c.Context(), optionalUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(posts)
}

// SearchPosts handles GET /api/posts/search
// @Summary Search posts
// @Tags posts
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/search [get]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	posts, err := s.postService.SearchPosts(c.Context(), c.Query("q"), p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(posts)
}

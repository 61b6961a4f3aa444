package server

import (
	"silenceboost/internal/models"
	"silenceboost/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Param request body object{content=string,image_url=string,categories=[]string} true "Post payload"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content    string   `json:"content"`
		ImageURL   string   `json:"image_url"`
		Categories []string `json:"categories"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:     currentUserID(c),
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		Categories: req.Categories,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a single post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.Context(), postID, optionalUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)
	posts, err := s.postService.ListByUser(c.Context(), userID, p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(posts)
}

// ToggleLike handles POST /api/posts/:id/like
// @Summary Toggle a like on a post
// @Description Likes the post, or removes the caller's existing like. A landing like feeds interest weights.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.ToggleLike(c.Context(), service.ToggleLikeInput{
		UserID: currentUserID(c),
		PostID: postID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(post)
}

// CreateReply handles POST /api/posts/:id/replies
// @Summary Reply to a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{content=string} true "Reply payload"
// @Success 201 {object} models.Reply
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{id}/replies [post]
func (s *Server) CreateReply(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	reply, err := s.postService.CreateReply(c.Context(), service.CreateReplyInput{
		UserID:  currentUserID(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

// GetReplies handles GET /api/posts/:id/replies
func (s *Server) GetReplies(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)
	replies, err := s.postService.ListReplies(c.Context(), postID, p.Limit, p.Offset)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(replies)
}

// SharePost handles POST /api/posts/:id/share
func (s *Server) SharePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.SharePost(c.Context(), postID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"shared": true})
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.Context(), currentUserID(c), postID); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

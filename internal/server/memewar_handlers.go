package server

import (
	"silenceboost/internal/models"
	"silenceboost/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetActiveWar handles GET /api/memewar/active
// @Summary Get the currently running meme war
// @Tags memewar
// @Produce json
// @Success 200 {object} models.War
// @Failure 404 {object} models.ErrorResponse
// @Router /memewar/active [get]
func (s *Server) GetActiveWar(c *fiber.Ctx) error {
	w, err := s.warService.ActiveWar(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(w)
}

// GetWarEntries handles GET /api/memewar/:warId/entries
// @Summary List battle entries of a war
// @Tags memewar
// @Produce json
// @Param warId path int true "War ID"
// @Success 200 {array} models.Entry
// @Failure 404 {object} models.ErrorResponse
// @Router /memewar/{warId}/entries [get]
func (s *Server) GetWarEntries(c *fiber.Ctx) error {
	warID, err := s.parseID(c, "warId")
	if err != nil {
		return nil
	}
	entries, err := s.warService.ListEntries(c.Context(), warID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(entries)
}

// SubmitEntry handles POST /api/memewar/:warId/entries
// @Summary Submit a challenge meme
// @Tags memewar
// @Accept json
// @Produce json
// @Param warId path int true "War ID"
// @Param request body object{meme=string,image_url=string} true "Entry payload"
// @Success 201 {object} models.Entry
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /memewar/{warId}/entries [post]
func (s *Server) SubmitEntry(c *fiber.Ctx) error {
	warID, err := s.parseID(c, "warId")
	if err != nil {
		return nil
	}
	var req struct {
		Meme     string `json:"meme"`
		ImageURL string `json:"image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.warService.SubmitEntry(c.Context(), service.SubmitEntryInput{
		WarID:        warID,
		ChallengerID: currentUserID(c),
		Meme:         req.Meme,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// RespondToEntry handles POST /api/memewar/entries/:entryId/respond
// @Summary Answer a challenge with a counter-meme
// @Tags memewar
// @Accept json
// @Produce json
// @Param entryId path int true "Entry ID"
// @Param request body object{meme=string,image_url=string} true "Response payload"
// @Success 200 {object} models.Entry
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /memewar/entries/{entryId}/respond [post]
func (s *Server) RespondToEntry(c *fiber.Ctx) error {
	entryID, err := s.parseID(c, "entryId")
	if err != nil {
		return nil
	}
	var req struct {
		Meme     string `json:"meme"`
		ImageURL string `json:"image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.warService.Respond(c.Context(), service.RespondInput{
		EntryID:     entryID,
		ResponderID: currentUserID(c),
		Meme:        req.Meme,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(entry)
}

// VoteOnEntry handles POST /api/memewar/entries/:entryId/vote
// @Summary Vote on a battle
// @Description One vote per user per battle, only while the war is in the voting phase.
// @Tags memewar
// @Accept json
// @Produce json
// @Param entryId path int true "Entry ID"
// @Param request body object{target=string} true "Vote target: challenger or responder"
// @Success 200 {object} models.Entry
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /memewar/entries/{entryId}/vote [post]
func (s *Server) VoteOnEntry(c *fiber.Ctx) error {
	entryID, err := s.parseID(c, "entryId")
	if err != nil {
		return nil
	}
	var req struct {
		Target string `json:"target"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.warService.Vote(c.Context(), service.VoteInput{
		EntryID: entryID,
		VoterID: currentUserID(c),
		Target:  models.VoteTarget(req.Target),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(entry)
}

// GetWinners handles GET /api/memewar/winners
// @Summary List recently ended wars and their winners
// @Tags memewar
// @Produce json
// @Success 200 {array} models.War
// @Router /memewar/winners [get]
func (s *Server) GetWinners(c *fiber.Ctx) error {
	wars, err := s.warService.Winners(c.Context(), c.QueryInt("limit", 10))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(wars)
}

// GetLeaderboard handles GET /api/memewar/leaderboard
// @Summary Get the global war leaderboard
// @Tags memewar
// @Produce json
// @Success 200 {array} models.User
// @Router /memewar/leaderboard [get]
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	users, err := s.userService.Leaderboard(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(users)
}

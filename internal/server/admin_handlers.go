package server

import (
	"github.com/gofiber/fiber/v2"
)

// StartWar handles POST /api/admin/memewar/start
// @Summary Start a new meme war
// @Description Opens the submission phase. Defaults to a two-day window when no body is sent.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body object{submission_days=int} false "Submission window in days"
// @Success 201 {object} models.War
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/memewar/start [post]
func (s *Server) StartWar(c *fiber.Ctx) error {
	var req struct {
		SubmissionDays int `json:"submission_days"`
	}
	// Body is optional; a missing or malformed one falls back to defaults.
	_ = c.BodyParser(&req)

	w, err := s.warService.StartWar(c.Context(), req.SubmissionDays)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(w)
}

// StartVoting handles POST /api/admin/memewar/:warId/voting
// @Summary Advance a war to the voting phase
// @Description Closes submissions. Defaults to a two-day voting window when no body is sent.
// @Tags admin
// @Accept json
// @Produce json
// @Param warId path int true "War ID"
// @Param request body object{voting_days=int} false "Voting window in days"
// @Success 200 {object} models.War
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/memewar/{warId}/voting [post]
func (s *Server) StartVoting(c *fiber.Ctx) error {
	warID, err := s.parseID(c, "warId")
	if err != nil {
		return nil
	}
	var req struct {
		VotingDays int `json:"voting_days"`
	}
	_ = c.BodyParser(&req)

	w, err := s.warService.StartVoting(c.Context(), warID, req.VotingDays)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(w)
}

// EndWar handles POST /api/admin/memewar/:warId/end
// @Summary End a war and resolve all battles
// @Description Resolves every battle, credits winners, recomputes the leaderboard and notifies participants.
// @Tags admin
// @Produce json
// @Param warId path int true "War ID"
// @Success 200 {object} models.War
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /admin/memewar/{warId}/end [post]
func (s *Server) EndWar(c *fiber.Ctx) error {
	warID, err := s.parseID(c, "warId")
	if err != nil {
		return nil
	}
	w, err := s.warService.EndWar(c.Context(), warID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(w)
}

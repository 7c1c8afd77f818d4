package server

import (
	"glimpse/internal/models"
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/users/:username/follow
// @Summary Follow a user
// @Description Add a follow edge toward the named user
// @Tags follows
// @Produce json
// @Param username path string true "Target username"
// @Success 200 {object} models.Envelope
// @Failure 422 {object} models.Envelope
// @Security BearerAuth
// @Router /users/{username}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	state, err := s.followService.Follow(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondMessage(c, fiber.StatusOK, "Followed successfully", state)
}

// UnfollowUser handles POST /api/users/:username/unfollow and the
// DELETE /api/users/:username/follow alias.
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	state, err := s.followService.Unfollow(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondMessage(c, fiber.StatusOK, "Unfollowed successfully", state)
}

// ToggleFollow handles POST /api/users/:username/toggle-follow. Unlike the
// explicit follow/unfollow routes it never fails on the current edge state.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	state, err := s.followService.ToggleFollow(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, state)
}

// GetFollowStatus handles GET /api/users/:username/follow-status
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	status, err := s.followService.Status(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, status)
}

// ListFollows handles GET /api/users/:username/followers?type=followers|following
// and the /follows alias.
func (s *Server) ListFollows(c *fiber.Ctx) error {
	page := parsePagination(c, 15)

	summaries, total, err := s.followService.List(c.UserContext(), service.ListFollowsInput{
		Username:      c.Params("username"),
		Type:          c.Query("type", "followers"),
		Limit:         page.Limit(),
		Offset:        page.Offset(),
		CurrentUserID: currentUserID(c),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, pageOf(summaries, page, total))
}

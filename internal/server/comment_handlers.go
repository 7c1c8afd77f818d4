package server

import (
	"glimpse/internal/models"
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment handles POST /api/posts/:id/comment
// @Summary Comment on a post
// @Description Add a comment, optionally as a reply to a top-level comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{body=string,parent_id=int} true "Comment"
// @Success 201 {object} models.Envelope
// @Failure 422 {object} models.Envelope
// @Security BearerAuth
// @Router /posts/{id}/comment [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Body     string `json:"body" form:"body"`
		ParentID *uint  `json:"parent_id" form:"parent_id"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   currentUserID(c),
		PostID:   postID,
		Body:     req.Body,
		ParentID: req.ParentID,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondMessage(c, fiber.StatusCreated, "Comment added successfully", comment)
}

// GetComments handles GET /api/posts/:id/comments. Top-level comments only,
// newest first, each carrying its direct replies.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	page := parsePagination(c, 5)

	comments, total, err := s.commentService.ListPostComments(
		c.UserContext(), postID, page.Limit(), page.Offset())
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, pageOf(comments, page, total))
}

// DeleteComment handles DELETE /api/comments/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), currentUserID(c), commentID); err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondMessage(c, fiber.StatusOK, "Comment deleted successfully", nil)
}

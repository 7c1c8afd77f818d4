package server

import (
	"io"

	"glimpse/internal/middleware"
	"glimpse/internal/models"
	"glimpse/internal/service"
	"glimpse/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts (multipart)
// @Summary Create a post
// @Description Upload an image with an optional caption
// @Tags posts
// @Accept mpfd
// @Produce json
// @Param image formData file true "Post image"
// @Param caption formData string false "Caption"
// @Success 201 {object} models.Envelope
// @Failure 422 {object} models.Envelope
// @Security BearerAuth
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c,
			models.NewFieldError("image", "An image file is required"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c,
			models.NewFieldError("image", "Unable to read uploaded file"))
	}
	content, err := io.ReadAll(src)
	_ = src.Close()
	if err != nil {
		return models.RespondWithError(c,
			models.NewFieldError("image", "Unable to read uploaded file"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:      currentUserID(c),
		Caption:     c.FormValue("caption"),
		ContentType: file.Header.Get("Content-Type"),
		Image:       content,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	middleware.UploadedImageBytes.WithLabelValues(storage.BucketPosts).Add(float64(len(content)))

	return models.RespondMessage(c, fiber.StatusCreated, "Post created successfully", post)
}

// GetFeed handles GET /api/feed
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := parsePagination(c, 10)

	posts, total, err := s.postService.Feed(c.UserContext(), currentUserID(c), page.Limit(), page.Offset())
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, pageOf(posts, page, total))
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, post)
}

// GetUserPosts handles GET /api/users/:username/posts. The page is wrapped
// together with the author's profile summary.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 10)

	user, posts, total, err := s.postService.GetUserPosts(
		c.UserContext(), c.Params("username"), page.Limit(), page.Offset(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"user":  user.Summary(),
		"posts": pageOf(posts, page, total),
	})
}

// UpdatePost handles PUT /api/posts/:id (caption only)
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Caption string `json:"caption" form:"caption"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		UserID:  currentUserID(c),
		PostID:  postID,
		Caption: req.Caption,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondMessage(c, fiber.StatusOK, "Post updated successfully", post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), postID); err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondMessage(c, fiber.StatusOK, "Post deleted successfully", nil)
}

// LikePost handles POST /api/posts/:id/like
// This endpoint toggles the like status - if already liked, it unlikes; if not liked, it likes
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleLike(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	message := "Post unliked"
	if result.Liked {
		message = "Post liked"
	}
	return models.RespondMessage(c, fiber.StatusOK, message, result)
}

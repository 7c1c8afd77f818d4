package server

import (
	"io"

	"glimpse/internal/models"
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profile
// @Summary Own profile
// @Description Return the caller's profile with follower counts
// @Tags profile
// @Produce json
// @Success 200 {object} models.Envelope
// @Security BearerAuth
// @Router /profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, user)
}

// GetPublicProfile handles GET /api/profile/:username
func (s *Server) GetPublicProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetPublicProfile(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, profile)
}

// UpdateProfile handles PUT /api/profile. Only the fields present in the body
// are touched; each is validated for format and uniqueness.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		Name     *string `json:"name" form:"name"`
		Username *string `json:"username" form:"username"`
		Email    *string `json:"email" form:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondMessage(c, fiber.StatusOK, "Profile updated successfully", user)
}

// ChangePassword handles PUT /api/profile/password
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password" form:"current_password"`
		NewPassword     string `json:"new_password" form:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	err := s.userService.ChangePassword(c.UserContext(), service.ChangePasswordInput{
		UserID:          currentUserID(c),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondMessage(c, fiber.StatusOK, "Password changed successfully", nil)
}

// UploadProfilePicture handles POST /api/profile/picture (multipart).
func (s *Server) UploadProfilePicture(c *fiber.Ctx) error {
	file, err := c.FormFile("profile_picture")
	if err != nil {
		return models.RespondWithError(c,
			models.NewFieldError("profile_picture", "A profile picture file is required"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c,
			models.NewFieldError("profile_picture", "Unable to read uploaded file"))
	}
	content, err := io.ReadAll(src)
	_ = src.Close()
	if err != nil {
		return models.RespondWithError(c,
			models.NewFieldError("profile_picture", "Unable to read uploaded file"))
	}

	user, err := s.userService.UploadProfilePicture(
		c.UserContext(), currentUserID(c), file.Header.Get("Content-Type"), content)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondMessage(c, fiber.StatusOK, "Profile picture updated successfully", user)
}

// RemoveProfilePicture handles DELETE /api/profile/picture
func (s *Server) RemoveProfilePicture(c *fiber.Ctx) error {
	user, err := s.userService.RemoveProfilePicture(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondMessage(c, fiber.StatusOK, "Profile picture removed successfully", user)
}

package server

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"glimpse/internal/cache"
	"glimpse/internal/models"
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "glimpse-api"
	tokenAudience = "glimpse-client"
	tokenLifetime = time.Hour * 24 * 7
)

// Register handles POST /api/register
// @Summary Register a new account
// @Description Create a user account and return a bearer token
// @Tags auth
// @Accept mpfd
// @Produce json
// @Param name formData string true "Display name"
// @Param username formData string true "Username"
// @Param email formData string true "Email address"
// @Param password formData string true "Password"
// @Param password_confirmation formData string false "Password confirmation"
// @Param profile_picture formData file false "Profile picture"
// @Success 201 {object} models.Envelope
// @Failure 422 {object} models.Envelope
// @Router /register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Name                 string `json:"name" form:"name"`
		Username             string `json:"username" form:"username"`
		Email                string `json:"email" form:"email"`
		Password             string `json:"password" form:"password"`
		PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	in := service.RegisterInput{
		Name:                 req.Name,
		Username:             req.Username,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	}

	// The profile picture is optional at registration time.
	if file, err := c.FormFile("profile_picture"); err == nil && file != nil {
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
		in.Picture = content
		in.PictureContentType = file.Header.Get("Content-Type")
	}

	user, err := s.userService.Register(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return models.RespondMessage(c, fiber.StatusCreated, "Account created successfully", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/login
// @Summary Log in
// @Description Authenticate by email or username and return a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{login=string,password=string} true "Login credentials"
// @Success 200 {object} models.Envelope
// @Failure 401 {object} models.Envelope
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Login    string `json:"login" form:"login"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Login, req.Password)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	return models.RespondMessage(c, fiber.StatusOK, "Logged in successfully", fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /api/logout. The token's JTI is blacklisted in Redis
// until the token would have expired on its own.
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	exp, _ := c.Locals("tokenExp").(int64)

	if jti != "" && s.redis != nil {
		ttl := time.Until(time.Unix(exp, 0))
		if ttl > 0 {
			if err := s.redis.Set(c.Context(), cache.JTIKey(jti), "revoked", ttl).Err(); err != nil {
				return models.RespondWithError(c, models.NewInternalError(err))
			}
		}
	}

	return models.RespondMessage(c, fiber.StatusOK, "Logged out successfully", nil)
}

// GetCurrentUser handles GET /api/user
func (s *Server) GetCurrentUser(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, user)
}

// generateToken creates a JWT token for the given user ID and username
func (s *Server) generateToken(userID uint, username string) (string, error) {
	// Validate secret exists
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10), // Subject (user ID as string)
		"username": username,                               // Username (cached in token)
		"iss":      tokenIssuer,                            // Issuer
		"aud":      tokenAudience,                          // Audience
		"exp":      now.Add(tokenLifetime).Unix(),          // Expiration (7 days)
		"iat":      now.Unix(),                             // Issued at
		"nbf":      now.Unix(),                             // Not before
		"jti":      s.generateJTI(),                        // JWT ID (unique identifier)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}

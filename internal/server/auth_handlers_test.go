package server

import (
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	_, app := newTestServer(t)

	t.Run("creates an account and returns a token", func(t *testing.T) {
		resp, env := doJSON(t, app, fiber.MethodPost, "/api/register", "", fiber.Map{
			"name":     "Alice",
			"username": "alice",
			"email":    "alice@example.com",
			"password": "password123",
		})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.True(t, env.Success)
		assert.Equal(t, "Account created successfully", env.Message)

		var data struct {
			Token string `json:"token"`
			User  struct {
				Username string `json:"username"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.NotEmpty(t, data.Token)
		assert.Equal(t, "alice", data.User.Username)
	})

	t.Run("rejects a duplicate username", func(t *testing.T) {
		resp, env := doJSON(t, app, fiber.MethodPost, "/api/register", "", fiber.Map{
			"name":     "Alice Again",
			"username": "alice",
			"email":    "alice2@example.com",
			"password": "password123",
		})
		require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		assert.False(t, env.Success)
		assert.Contains(t, env.Errors, "username")
	})

	t.Run("collects every invalid field", func(t *testing.T) {
		resp, env := doJSON(t, app, fiber.MethodPost, "/api/register", "", fiber.Map{
			"username": "a!",
			"email":    "nope",
			"password": "short",
		})
		require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, env.Errors, "name")
		assert.Contains(t, env.Errors, "username")
		assert.Contains(t, env.Errors, "email")
		assert.Contains(t, env.Errors, "password")
	})
}

func TestLogin(t *testing.T) {
	_, app := newTestServer(t)
	registerUser(t, app, "alice")

	t.Run("by username", func(t *testing.T) {
		resp, env := doJSON(t, app, fiber.MethodPost, "/api/login", "", fiber.Map{
			"login":    "alice",
			"password": "password123",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Logged in successfully", env.Message)
	})

	t.Run("by email", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/api/login", "", fiber.Map{
			"login":    "alice@example.com",
			"password": "password123",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, env := doJSON(t, app, fiber.MethodPost, "/api/login", "", fiber.Map{
			"login":    "alice",
			"password": "wrongpassword",
		})
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.False(t, env.Success)
		assert.Contains(t, env.Errors, "login")
	})

	t.Run("unknown account reads the same as a wrong password", func(t *testing.T) {
		resp, env := doJSON(t, app, fiber.MethodPost, "/api/login", "", fiber.Map{
			"login":    "mallory",
			"password": "password123",
		})
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, env.Errors, "login")
	})
}

func TestAuthRequired(t *testing.T) {
	s, app := newTestServer(t)
	token := registerUser(t, app, "alice")

	t.Run("valid token", func(t *testing.T) {
		resp, env := doJSON(t, app, fiber.MethodGet, "/api/user", token, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var user struct {
			Username string `json:"username"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &user))
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("missing header", func(t *testing.T) {
		resp, env := doJSON(t, app, fiber.MethodGet, "/api/user", "", nil)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.False(t, env.Success)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, "/api/user", "not.a.token", nil)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		otherCfg := *s.config
		otherCfg.JWTSecret = "a-different-secret-entirely-here"
		other := &Server{config: &otherCfg}

		forged, err := other.generateToken(1, "alice")
		require.NoError(t, err)

		resp, _ := doJSON(t, app, fiber.MethodGet, "/api/user", forged, nil)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogout_RevokesToken(t *testing.T) {
	s, app := newTestServer(t)

	mr := miniredis.RunT(t)
	s.redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = s.redis.Close() })

	token := registerUser(t, app, "alice")

	// The token works before logout.
	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/user", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, env := doJSON(t, app, fiber.MethodPost, "/api/logout", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged out successfully", env.Message)

	// The blacklisted JTI rejects the same token afterwards.
	resp, env = doJSON(t, app, fiber.MethodGet, "/api/user", token, nil)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token has been revoked", env.Message)
}

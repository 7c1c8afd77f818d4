package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProductionConfig() *Config {
	return &Config{
		JWTSecret:  strings.Repeat("s", 32),
		Port:       "8375",
		BaseURL:    "https://glimpse.example.com",
		DBDriver:   "postgres",
		DBPassword: "a-strong-password",
		DBSSLMode:  "require",
		Env:        "production",
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid production config", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, validProductionConfig().Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		t.Parallel()
		cfg := validProductionConfig()
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		t.Parallel()
		cfg := validProductionConfig()
		cfg.JWTSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Parallel()
		cfg := validProductionConfig()
		cfg.DBDriver = "mysql"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production rejects the default jwt secret", func(t *testing.T) {
		t.Parallel()
		cfg := validProductionConfig()
		cfg.JWTSecret = "your-secret-key-change-in-production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production rejects a short jwt secret", func(t *testing.T) {
		t.Parallel()
		cfg := validProductionConfig()
		cfg.JWTSecret = "too-short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production rejects sqlite", func(t *testing.T) {
		t.Parallel()
		cfg := validProductionConfig()
		cfg.DBDriver = "sqlite"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production rejects a weak db password", func(t *testing.T) {
		t.Parallel()
		cfg := validProductionConfig()
		cfg.DBPassword = "password"
		assert.Error(t, cfg.Validate())
	})

	t.Run("development tolerates sqlite and a short secret", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{
			JWTSecret: "dev-secret",
			Port:      "8375",
			DBDriver:  "sqlite",
			Env:       "development",
		}
		require.NoError(t, cfg.Validate())
	})
}

func TestPublicURL(t *testing.T) {
	t.Parallel()

	cfg := &Config{BaseURL: "http://localhost:8375/"}

	assert.Equal(t, "http://localhost:8375/img/posts/a.jpg", cfg.PublicURL("img/posts/a.jpg"))
	assert.Equal(t, "http://localhost:8375/img/posts/a.jpg", cfg.PublicURL("/img/posts/a.jpg"))
	assert.Equal(t, "", cfg.PublicURL(""))

	// Absolute URLs pass through untouched.
	assert.Equal(t, "https://cdn.example.com/a.jpg", cfg.PublicURL("https://cdn.example.com/a.jpg"))
}

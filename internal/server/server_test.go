package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"glimpse/internal/config"
	"glimpse/internal/database"
	"glimpse/internal/featureflags"
	"glimpse/internal/models"
	"glimpse/internal/repository"
	"glimpse/internal/service"
	"glimpse/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// envelope mirrors models.Envelope with Data left as raw JSON for per-test decoding.
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

// newTestServer wires a Server onto a throwaway sqlite database and local
// store. Redis is nil unless a test injects one; prometheus stays unregistered
// so tests do not collide in the default registry.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.Models()...))

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret: "test-secret-key-long-enough-for-tests",
		Port:      "8375",
		BaseURL:   "http://localhost:8375",
		DBDriver:  "sqlite",
		Env:       "test",
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	imageURL := func(storedPath string) string {
		if storedPath == "" {
			return ""
		}
		return cfg.PublicURL("img/" + storedPath)
	}
	images := service.NewImageService()

	s := &Server{
		config:         cfg,
		db:             db,
		store:          store,
		featureFlags:   featureflags.NewManager("webp_avatars=on"),
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		followRepo:     followRepo,
		userService:    service.NewUserService(userRepo, followRepo, images, store, imageURL),
		postService:    service.NewPostService(postRepo, userRepo, images, store, imageURL),
		commentService: service.NewCommentService(commentRepo, postRepo, imageURL),
		followService:  service.NewFollowService(followRepo, userRepo, imageURL),
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 4 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, err)
		},
	})
	s.SetupRoutes(app)
	return s, app
}

func doJSON(t *testing.T, app *fiber.App, method, url, token string, body any) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// doMultipart sends a multipart request with text fields plus one file part.
func doMultipart(t *testing.T, app *fiber.App, method, url, token string, fields map[string]string, fileField, filename string, fileData []byte) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(fileData)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp, decodeEnvelope(t, resp)
}

// registerUser creates an account through the API and returns its bearer token.
func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp, env := doJSON(t, app, fiber.MethodPost, "/api/register", "", fiber.Map{
		"name":     "User " + username,
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

// createTestPost uploads a post through the API and returns its ID.
func createTestPost(t *testing.T, app *fiber.App, token, caption string) uint {
	t.Helper()
	resp, env := doMultipart(t, app, fiber.MethodPost, "/api/posts/", token,
		map[string]string{"caption": caption}, "image", "photo.png", testPNG(t))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var post struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &post))
	require.NotZero(t, post.ID)
	return post.ID
}

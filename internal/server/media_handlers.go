package server

import (
	"net/http"
	"path/filepath"
	"strings"

	"glimpse/internal/models"
	"glimpse/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// ServeImage handles GET /img/:bucket/:filename. Profile requests that accept
// WebP get the .webp variant when one exists alongside the original.
func (s *Server) ServeImage(c *fiber.Ctx) error {
	bucket := c.Params("bucket")
	filename := c.Params("filename")

	if !storage.ValidBucket(bucket) || !storage.ValidFilename(filename) {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid image path"))
	}

	if bucket == storage.BucketProfile && strings.Contains(c.Get("Accept"), "image/webp") {
		variant := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".webp"
		if s.store.Exists(bucket, variant) {
			filename = variant
		}
	}

	data, err := s.store.Open(bucket, filename)
	if err != nil {
		return models.RespondWithError(c,
			models.NewNotFoundError("Image", filename))
	}

	c.Set(fiber.HeaderContentType, http.DetectContentType(data))
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(data)
}

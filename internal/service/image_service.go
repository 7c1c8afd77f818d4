package service

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"mime"
	"net/http"
	"strings"

	"glimpse/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// MaxImageUploadBytes caps uploaded post and profile images (2048 KB).
	MaxImageUploadBytes = 2048 * 1024
	// AvatarMaxSize is the bounding box profile pictures are downscaled into.
	AvatarMaxSize = 512
	JPEGQuality   = 82
	WebPQuality   = 70
)

// ValidatedImage is an upload that passed type, size, and decode checks.
type ValidatedImage struct {
	Data    []byte
	Ext     string
	Decoded image.Image
}

// ImageService validates uploads and prepares avatar variants.
type ImageService struct {
	maxUploadBytes int64
}

// NewImageService returns a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{maxUploadBytes: MaxImageUploadBytes}
}

// Validate checks an uploaded image: non-empty, within the size cap, an
// allowed MIME type, and actually decodable as that type.
func (s *ImageService) Validate(contentType string, content []byte) (*ValidatedImage, error) {
	if len(content) == 0 {
		return nil, models.NewFieldError("image", "An image file is required")
	}
	if int64(len(content)) > s.maxUploadBytes {
		return nil, models.NewFieldError("image", fmt.Sprintf("The image may not be greater than %d kilobytes", s.maxUploadBytes/1024))
	}

	detectedType := http.DetectContentType(content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewFieldError("image", "The image must be a file of type: jpeg, png, jpg, gif, webp")
	}

	decoded, format, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewFieldError("image", "The image is not a valid image file")
	}
	if !isSupportedDecodedFormat(format) {
		return nil, models.NewFieldError("image", "Unsupported image format")
	}

	if provided := normalizeContentType(contentType); strings.HasPrefix(provided, "image/") &&
		!isMatchingContentType(provided, decodedFormatToMime(format)) {
		return nil, models.NewFieldError("image", "Image content type mismatch")
	}

	return &ValidatedImage{
		Data:    content,
		Ext:     formatToExt(format),
		Decoded: decoded,
	}, nil
}

// NormalizeAvatar downscales the image into the avatar bounding box and
// encodes a JPEG master plus a WebP variant.
func (s *ImageService) NormalizeAvatar(img image.Image) (jpegData, webpData []byte, err error) {
	scaled := resizeToFit(img, AvatarMaxSize, AvatarMaxSize)

	jpegData, err = encodeJPEG(scaled, JPEGQuality)
	if err != nil {
		return nil, nil, models.NewInternalError(err)
	}
	webpData, err = encodeWebP(scaled, WebPQuality)
	if err != nil {
		return nil, nil, models.NewInternalError(err)
	}
	return jpegData, webpData, nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func formatToExt(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "jpg"
	case "png":
		return "png"
	case "gif":
		return "gif"
	case "webp":
		return "webp"
	default:
		return "bin"
	}
}

package server

import (
	"errors"
	"strings"

	"glimpse/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const maxPerPage = 100

// Pagination holds parsed page/per_page query parameters.
type Pagination struct {
	Page    int
	PerPage int
}

// Limit returns the page size for repository queries.
func (p Pagination) Limit() int {
	return p.PerPage
}

// Offset returns the row offset for repository queries.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// parsePagination extracts page and per_page query parameters with the given
// default page size.
func parsePagination(c *fiber.Ctx, defaultPerPage int) Pagination {
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}

	perPage := c.QueryInt("per_page", defaultPerPage)
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	return Pagination{
		Page:    page,
		PerPage: perPage,
	}
}

// pageOf assembles a paginated list payload.
func pageOf(items interface{}, p Pagination, total int64) models.Page {
	return models.Page{
		Items:   items,
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   total,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		return strings.ToLower(param[:len(param)-2]) + " ID"
	}
	return param
}

// currentUserID reads the authenticated user ID set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals("userID").(uint)
	return userID
}

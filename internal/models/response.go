package models

import (
	"github.com/gofiber/fiber/v2"
)

// Envelope is the JSON shape every endpoint responds with.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Page wraps a list payload with its pagination info.
type Page struct {
	Items   interface{} `json:"items"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
	Total   int64       `json:"total"`
}

// Respond writes a success envelope with the given status.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Data:    data,
	})
}

// RespondMessage writes a success envelope carrying a message and optional data.
func RespondMessage(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

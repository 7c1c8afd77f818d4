// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxCaptionLength caps post captions.
	MaxCaptionLength = 1000
	// MaxCommentLength caps comment bodies.
	MaxCommentLength = 1000
	// MaxNameLength caps display names.
	MaxNameLength = 255
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

var reservedUsernames = map[string]struct{}{
	"admin":    {},
	"api":      {},
	"img":      {},
	"profile":  {},
	"users":    {},
	"posts":    {},
	"feed":     {},
	"login":    {},
	"logout":   {},
	"register": {},
	"swagger":  {},
	"metrics":  {},
	"health":   {},
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}

	if len(username) > 30 {
		return fmt.Errorf("username must not exceed 30 characters")
	}

	// Only allow alphanumeric, underscores, and hyphens
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}

	// Cannot start or end with underscore/hyphen
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}

	if _, exists := reservedUsernames[strings.ToLower(username)]; exists {
		return fmt.Errorf("username is reserved")
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	return nil
}

// ValidatePassword checks if a password meets requirements. The 72-byte cap
// matches the bcrypt input limit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	if len(password) > 72 {
		return fmt.Errorf("password must not exceed 72 characters")
	}

	return nil
}

// ValidateName checks a display name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("name must not exceed %d characters", MaxNameLength)
	}

	return nil
}

// ValidateCaption checks an optional post caption.
func ValidateCaption(caption string) error {
	if len(caption) > MaxCaptionLength {
		return fmt.Errorf("caption must not exceed %d characters", MaxCaptionLength)
	}

	return nil
}

// ValidateCommentBody checks a comment body.
func ValidateCommentBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment body is required")
	}

	if len(body) > MaxCommentLength {
		return fmt.Errorf("comment body must not exceed %d characters", MaxCommentLength)
	}

	return nil
}

// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"glimpse/internal/cache"
	"glimpse/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	// Only the raw row is cached; derived counts stay live.
	err := cache.CacheAside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if field := uniqueConstraintField(err); field != "" {
			return models.NewFieldError(field, "The "+field+" has already been taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// uniqueConstraintField maps a unique constraint violation to the offending
// column, or "" when the error is not a unique violation.
// PostgreSQL reports SQLSTATE 23505; SQLite reports "UNIQUE constraint failed".
func uniqueConstraintField(err error) string {
	if err == nil {
		return ""
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return uniqueColumn(strings.ToLower(pgErr.ConstraintName + " " + pgErr.Detail))
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "duplicate key") &&
		!strings.Contains(msg, "unique constraint") &&
		!strings.Contains(msg, "23505") {
		return ""
	}
	return uniqueColumn(msg)
}

func uniqueColumn(msg string) string {
	switch {
	case strings.Contains(msg, "username"):
		return "username"
	case strings.Contains(msg, "email"):
		return "email"
	default:
		return "username"
	}
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if field := uniqueConstraintField(err); field != "" {
			return models.NewFieldError(field, "The "+field+" has already been taken")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

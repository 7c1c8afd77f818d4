package models

import (
	"time"
)

// Post represents an image post in the Glimpse application.
type Post struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	User      User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	ImagePath string `gorm:"not null" json:"-"`
	Caption   string `gorm:"size:1000" json:"caption"`
	// ImageURL is derived from ImagePath and the configured base URL
	ImageURL string `gorm:"-" json:"image_url"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"->" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

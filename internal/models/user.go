// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered account in the Glimpse application.
type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Name           string `gorm:"not null" json:"name"`
	Username       string `gorm:"uniqueIndex;not null" json:"username"`
	Email          string `gorm:"uniqueIndex;not null" json:"email"`
	Password       string `gorm:"not null" json:"-"`
	ProfilePicture string `json:"-"`
	// ProfilePictureURL is derived from ProfilePicture and the configured base URL
	ProfilePictureURL string `gorm:"-" json:"profile_picture_url,omitempty"`
	// FollowersCount and FollowingCount are live edge counts; never persisted
	FollowersCount int64 `gorm:"-" json:"followers_count"`
	FollowingCount int64 `gorm:"-" json:"following_count"`
	// IsFollowing/IsFollowedBy are relative to the requesting user
	IsFollowing  *bool     `gorm:"-" json:"is_following,omitempty"`
	IsFollowedBy *bool     `gorm:"-" json:"is_followed_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Posts        []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// UserSummary is the public projection of a user used in follower listings
// and embedded author fields.
type UserSummary struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	Username          string `json:"username"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	IsFollowing       *bool  `json:"is_following,omitempty"`
	IsFollowedBy      *bool  `json:"is_followed_by,omitempty"`
}

// Summary projects the public fields of a user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:                u.ID,
		Name:              u.Name,
		Username:          u.Username,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

// PublicProfile is what other accounts see of a user. Email and other
// private fields never appear here.
type PublicProfile struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Username          string    `json:"username"`
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	FollowersCount    int64     `json:"followers_count"`
	FollowingCount    int64     `json:"following_count"`
	IsFollowing       *bool     `json:"is_following,omitempty"`
	IsFollowedBy      *bool     `json:"is_followed_by,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// PublicProfile projects the publicly visible fields of a user.
func (u *User) PublicProfile() PublicProfile {
	return PublicProfile{
		ID:                u.ID,
		Name:              u.Name,
		Username:          u.Username,
		ProfilePictureURL: u.ProfilePictureURL,
		FollowersCount:    u.FollowersCount,
		FollowingCount:    u.FollowingCount,
		IsFollowing:       u.IsFollowing,
		IsFollowedBy:      u.IsFollowedBy,
		CreatedAt:         u.CreatedAt,
	}
}

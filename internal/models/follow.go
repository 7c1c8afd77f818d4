package models

import (
	"time"
)

// Follow is a directed edge in the social graph: FollowerID follows UserID.
// The pair is unique; both sides cascade when the referenced user is removed.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follower_user" json:"follower_id"`
	Follower   User      `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_follower_user;index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName keeps the historical table name for the follow graph.
func (Follow) TableName() string {
	return "followers"
}

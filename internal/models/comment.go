package models

import (
	"time"
)

// Comment represents a comment on a post. A nil ParentID marks a top-level
// comment; replies reference their parent through ParentID.
type Comment struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Body     string `gorm:"type:text;not null" json:"body"`
	UserID   uint   `gorm:"not null;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	PostID   uint   `gorm:"not null;index" json:"post_id"`
	Post     Post   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	ParentID *uint  `gorm:"index" json:"parent_id,omitempty"`
	// Replies holds the direct children of a top-level comment on the read path
	Replies []Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
	// RepliesCount is not persisted; computed at query time
	RepliesCount int       `gorm:"->" json:"replies_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

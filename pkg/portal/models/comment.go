package models

import (
	"time"

	"gorm.io/gorm"
)

// TargetKind is the closed set of things that can be commented on or liked.
// Currently only posts; validated at the boundary rather than stored as a
// free-form string.
type TargetKind string

const (
	TargetPost TargetKind = "post"
)

// Valid reports whether k names a known target kind.
func (k TargetKind) Valid() bool {
	return k == TargetPost
}

// Comment attaches to a (kind, id) target and is deleted with its parent.
type Comment struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	TargetKind TargetKind     `gorm:"type:varchar(20);not null;index:idx_comment_target" json:"target_kind"`
	TargetID   uint           `gorm:"not null;index:idx_comment_target" json:"target_id"`
	AuthorID   uint           `gorm:"not null" json:"author_id"`
	Body       string         `gorm:"type:text;not null" json:"body"`

	// Relationships
	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// Like is keyed by (kind, target, user) so a user can like a target once.
type Like struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	TargetKind TargetKind     `gorm:"type:varchar(20);not null;uniqueIndex:idx_like_target_user" json:"target_kind"`
	TargetID   uint           `gorm:"not null;uniqueIndex:idx_like_target_user" json:"target_id"`
	UserID     uint           `gorm:"not null;uniqueIndex:idx_like_target_user" json:"user_id"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

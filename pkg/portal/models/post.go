package models

import (
	"time"

	"github.com/alumnihub/alumnihub/pkg/portal/moderation"
	"gorm.io/gorm"
)

// Post is a member-authored rich-text post. Content is the editor's opaque
// block-list payload and is never interpreted server-side. The attached group
// set is authoritative only once the post is approved; pending and rejected
// posts are visible to their author and to admins only.
type Post struct {
	ID           uint              `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"`
	Title        string            `json:"title"`
	Content      string            `gorm:"type:text;not null" json:"content"`
	AuthorID     uint              `gorm:"not null;index" json:"author_id"`
	Status       moderation.Status `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ReviewedByID *uint             `json:"reviewed_by_id,omitempty"`
	ReviewedAt   *time.Time        `json:"reviewed_at,omitempty"`
	RejectReason string            `json:"reject_reason,omitempty"`

	// Relationships
	Author     User    `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ReviewedBy *User   `gorm:"foreignKey:ReviewedByID" json:"reviewed_by,omitempty"`
	Groups     []Group `gorm:"many2many:post_groups;" json:"groups,omitempty"`
}

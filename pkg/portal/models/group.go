package models

import (
	"time"

	"gorm.io/gorm"
)

// GroupType is an optional classification label for groups, e.g. "Batch"
// or "Department". It cannot be deleted while any group references it.
type GroupType struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Label       string         `gorm:"uniqueIndex;not null" json:"label"`
	Description string         `json:"description"`
}

// Group is the sole visibility-scoping unit: content is visible to a viewer
// iff the viewer shares at least one group with it (admins bypass the filter).
type Group struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"uniqueIndex;not null" json:"name"`
	Description string         `json:"description"`
	GroupTypeID *uint          `gorm:"index" json:"group_type_id,omitempty"`

	// Relationships
	GroupType *GroupType        `gorm:"foreignKey:GroupTypeID" json:"group_type,omitempty"`
	Members   []GroupMembership `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Event represents a portal event. Its group set defines default visibility
// and is the inheritance source for child albums (a one-time copy at album
// creation, not a live reference).
type Event struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	StartDate   time.Time      `gorm:"not null" json:"start_date"`
	EndDate     *time.Time     `json:"end_date,omitempty"`
	StartTime   string         `json:"start_time,omitempty"` // "HH:MM", optional
	EndTime     string         `json:"end_time,omitempty"`
	CreatedByID uint           `gorm:"not null" json:"created_by_id"`

	// Relationships
	CreatedBy User    `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
	Groups    []Group `gorm:"many2many:event_groups;" json:"groups,omitempty"`
	Albums    []Album `gorm:"foreignKey:EventID" json:"albums,omitempty"`
}

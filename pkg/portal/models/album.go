package models

import (
	"time"

	"gorm.io/gorm"
)

// MediaType distinguishes the two supported media kinds.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Album is a photo/video album, usually created under an event. Its group set
// is initialized from the parent event at creation time and independently
// editable afterward.
type Album struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	EventID     *uint          `gorm:"index" json:"event_id,omitempty"`

	// Relationships
	Event  *Event  `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Groups []Group `gorm:"many2many:album_groups;" json:"groups,omitempty"`
	Media  []Media `gorm:"foreignKey:AlbumID" json:"media,omitempty"`
}

// Media is a single item in an album, exclusively owned by it. The URL is an
// opaque locator; upload handling lives outside this service.
type Media struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	AlbumID   uint           `gorm:"not null;index" json:"album_id"`
	URL       string         `gorm:"not null" json:"url"`
	Type      MediaType      `gorm:"type:varchar(20);not null" json:"type"`
	Caption   string         `json:"caption"`
	Position  int            `gorm:"not null;default:0" json:"position"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// SystemRole represents a user's system-wide role
type SystemRole string

const (
	SystemRoleAdmin SystemRole = "admin"
	SystemRoleUser  SystemRole = "user"
)

// UserStatus represents a user's account approval state.
// New registrations start pending and only transition via explicit admin action.
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
	UserStatusRejected UserStatus = "rejected"
)

// User represents a portal member. The phone number is the unique contact
// handle used to log in; email is optional.
type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Phone        string         `gorm:"uniqueIndex;not null" json:"phone"`
	Email        string         `json:"email,omitempty"`
	Name         string         `gorm:"not null" json:"name"`
	PasswordHash string         `json:"-"`
	Status       UserStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	SystemRole   SystemRole     `gorm:"type:varchar(20);default:'user'" json:"system_role"`

	// Relationships
	GroupMemberships []GroupMembership `gorm:"foreignKey:UserID" json:"group_memberships,omitempty"`
	Posts            []Post            `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

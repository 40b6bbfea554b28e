package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/beautypos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// User is a member of the shop staff
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Email       string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	FirstName   string         `gorm:"size:255;not null" json:"firstName"`
	LastName    string         `gorm:"size:255;not null" json:"lastName"`
	Role        enum.Role      `gorm:"size:20;not null" json:"role"`
	IsActive    bool           `gorm:"not null" json:"isActive"`
	LastLoginAt *time.Time     `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool {
	return u.Role == enum.RoleAdmin
}

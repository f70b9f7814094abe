package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// UserRole represents the authorization role of a user
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// Valid reports whether the role is one of the known values
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleUser
}

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"column:email;unique;not null;size:100;index" json:"email"`
	Password  string    `gorm:"column:password;not null;size:100" json:"-"`
	Roles     UserRole  `gorm:"column:roles;type:varchar(20);not null;default:'user'" json:"roles"`
	EntityID  *uint     `gorm:"column:entity_id" json:"entityId"`
	Entity    *Entity   `gorm:"foreignKey:EntityID" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate validates the row before it is inserted
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if len(u.Email) < 3 || len(u.Email) > 100 {
		return errors.New("email must be between 3 and 100 characters")
	}
	if !u.Roles.Valid() {
		return errors.New("roles must be admin or user")
	}
	return nil
}

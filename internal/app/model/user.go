package model

import (
	"time"

	"gorm.io/gorm"
)

type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
)

type User struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Email           string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash    string         `gorm:"not null" json:"-"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at"`
	Status          UserStatus     `gorm:"type:varchar(20);default:'active'" json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Verified reports whether the user has proven control of their email address
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}

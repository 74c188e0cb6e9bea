package model

import (
	"time"
)

// PasswordReset stores the bcrypt hash of an emailed reset secret. Only the
// most recently created record per email is redeemable; older records are
// deleted when a new one is issued.
type PasswordReset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;index" json:"email"`
	Token     string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (PasswordReset) TableName() string {
	return "password_resets"
}

package models

import "gorm.io/gorm"

// User represents a journal owner. Every trade is scoped to exactly one
// user; the core only ever sees the resolved ID.
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
}

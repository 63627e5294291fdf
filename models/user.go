package models

import "time"

type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"unique;not null" json:"email"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Profile      *Profile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Orders       []Order   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"orders,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile holds the optional skincare details a user fills in after signup.
// Created lazily the first time the user opens the profile editor.
type Profile struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   string `gorm:"uniqueIndex;not null" json:"user_id"`
	SkinType string `json:"skin_type"`
	Age      *int   `json:"age,omitempty"`
	About    string `json:"about"`
}

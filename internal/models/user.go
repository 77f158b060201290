package models

import "time"

// User is a staff account. Attenders referenced by enquiries are resolved to
// users by name when follow-up reminders are dispatched.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:255;not null;index" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"size:255;not null" json:"-"`
	Role         string     `gorm:"size:32;not null" json:"role"`
	OTP          string     `gorm:"size:255" json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
	OTPVerified  bool       `gorm:"default:false" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

package models

import "time"

// Session is a server-side login session. The signed token travels in an
// HTTP-only cookie; the row here lets logout revoke it before expiry.
type Session struct {
	BaseModel
	UserID    string    `gorm:"size:36;index;not null" json:"userId"`
	Token     string    `gorm:"size:512;uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`
}

// OTP holds a pending email-verification code. One row per email; repeat
// registrations overwrite the code and push the expiry forward.
type OTP struct {
	BaseModel
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Code      string    `gorm:"size:6;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

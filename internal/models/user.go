package models

import (
	"time"
)

// User represents a CRM user. The record is owned by the auth/CRM
// subsystem; the chat core only ever reads it.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ExternalUID    string    `gorm:"uniqueIndex" json:"external_uid"` // subject id at the identity provider
	DisplayName    string    `json:"display_name"`
	Email          string    `gorm:"uniqueIndex" json:"email"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	Preference     string    `json:"preference,omitempty"`
	LastLogin      time.Time `json:"last_login,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

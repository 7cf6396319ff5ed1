package models

import (
	"time"
)

// Contact is a CRM contact owned by a single user. The chat core reads
// contacts to ground the assistant; it never writes them.
type Contact struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `json:"name"`
	Email           string     `gorm:"index:idx_contacts_email_owner,unique,priority:1" json:"email"`
	Phone           string     `json:"phone,omitempty"`
	CompanyID       *uint      `gorm:"index" json:"company_id,omitempty"`
	Company         *Company   `json:"company,omitempty"`
	Tags            []Tag      `gorm:"many2many:contact_tags" json:"tags,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedByID     uint       `gorm:"index:idx_contacts_email_owner,unique,priority:2" json:"created_by"`
	LastInteraction *time.Time `json:"last_interaction,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Company is the employer a contact can be attached to.
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry,omitempty"`
	Website   string    `json:"website,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag is a user-defined label applied to contacts.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import (
	"time"
)

// Activity actions recorded by the CRM.
const (
	ActionContactCreated = "contact_created"
	ActionContactUpdated = "contact_updated"
	ActionContactDeleted = "contact_deleted"
	ActionBulkImport     = "bulk_import"
	ActionBulkDelete     = "bulk_delete"
	ActionUserLogin      = "user_login"
)

// Activity is one entry in a user's CRM audit trail.
type Activity struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index:idx_activities_user_ts,priority:1" json:"user_id"`
	Action     string    `json:"action"`
	EntityType string    `gorm:"index" json:"entity_type,omitempty"`
	EntityID   uint      `json:"entity_id,omitempty"`
	EntityName string    `json:"entity_name,omitempty"`
	Details    string    `gorm:"type:text" json:"details,omitempty"` // JSON blob
	Timestamp  time.Time `gorm:"index:idx_activities_user_ts,priority:2,sort:desc" json:"timestamp"`
}

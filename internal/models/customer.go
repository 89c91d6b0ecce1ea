package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Customer struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Name             string         `json:"name"`
	Email            string         `json:"email" gorm:"uniqueIndex;not null"`
	Phone            string         `json:"phone"`
	HubspotContactID string         `json:"hubspot_contact_id" gorm:"size:64;index"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// NormalizeEmail trims and lowercases an email for the unique lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

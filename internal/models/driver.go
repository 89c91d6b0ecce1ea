package models

import (
	"time"

	"gorm.io/gorm"
)

// Driver availability is not stored: a driver is available exactly when they
// have zero orders outside {delivered, canceled}. See
// OrderRepository.CountActiveByDriver.
type Driver struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    *uint          `json:"user_id" gorm:"index"`
	Name      string         `json:"name" gorm:"not null"`
	Phone     string         `json:"phone"`
	Vehicle   string         `json:"vehicle"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"unique;not null"`
	Email        string         `json:"email" gorm:"unique;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Role         string         `json:"role" gorm:"default:'customer'"` // customer, dispatcher, driver, admin
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

type UserRole string

const (
	RoleCustomer   UserRole = "customer"
	RoleDispatcher UserRole = "dispatcher"
	RoleDriver     UserRole = "driver"
	RoleAdmin      UserRole = "admin"
)

func IsValidRole(role string) bool {
	switch UserRole(role) {
	case RoleCustomer, RoleDispatcher, RoleDriver, RoleAdmin:
		return true
	}
	return false
}

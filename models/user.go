package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleBorrower = "borrower"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// User account statuses
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Email         string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PhotoURL      string         `gorm:"size:500" json:"photoURL"`
	Role          string         `gorm:"size:20;default:'borrower'" json:"role"` // borrower, manager, admin
	Status        string         `gorm:"size:20;default:'active'" json:"status"` // active, suspended
	SuspendReason string         `gorm:"size:500" json:"suspendReason,omitempty"`
	FirebaseUID   string         `gorm:"uniqueIndex;size:128;not null" json:"-"`
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// IsSuspended reports whether the account is blocked from authenticated access.
func (u *User) IsSuspended() bool {
	return u.Status == StatusSuspended
}

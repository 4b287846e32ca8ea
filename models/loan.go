package models

import (
	"time"

	"gorm.io/gorm"
)

type Loan struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	Title             string         `gorm:"size:255;not null" json:"title"`
	Description       string         `gorm:"type:text;not null" json:"description"`
	Category          string         `gorm:"size:100;not null" json:"category"`
	Interest          float64        `gorm:"not null" json:"interest"`
	MaxLimit          float64        `gorm:"not null" json:"maxLimit"`
	RequiredDocuments []string       `gorm:"serializer:json" json:"requiredDocuments"`
	EMIPlans          []string       `gorm:"serializer:json" json:"emiPlans"`
	Images            []string       `gorm:"serializer:json" json:"images"`
	ShowOnHome        bool           `gorm:"default:false" json:"showOnHome"`
	CreatedByID       uint           `gorm:"not null;index" json:"createdById"`
	CreatedBy         *User          `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	CreatedByEmail    string         `gorm:"size:255;not null" json:"createdByEmail"`
}

// TableName overrides the table name
func (Loan) TableName() string {
	return "loans"
}

// OwnedBy reports whether the loan offer was created by the given user.
func (l *Loan) OwnedBy(u *User) bool {
	return l.CreatedByID == u.ID
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Publish status values for Product.PubStatus.
const (
	PubStatusDraft     = "draft"
	PubStatusPublished = "published"
)

type Product struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	Name         string    `gorm:"type:varchar(50);not null" json:"name"`
	Description  string    `gorm:"type:varchar(300)" json:"description,omitempty"`
	SellingPrice int64     `json:"selling_price"` // minor currency units
	ActualPrice  int64     `json:"actual_price"`
	Sizes        string    `gorm:"type:varchar(300)" json:"sizes,omitempty"`
	Colors       string    `json:"colors,omitempty"`
	Slug         string    `gorm:"uniqueIndex;not null" json:"slug"`
	PubStatus    string    `gorm:"not null;default:'draft'" json:"pub_status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	UserID uint `gorm:"index" json:"user_id"`

	Categories []Category `gorm:"many2many:product_categories" json:"categories,omitempty"`
	Tags       []Tag      `gorm:"many2many:product_tags" json:"tags,omitempty"`
}

type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`
}

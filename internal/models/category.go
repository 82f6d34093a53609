package models

import "time"

// Category is a node in the catalog tree. ParentID is nil for top-level
// categories.
type Category struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(50);not null" json:"name"`
	Description string     `gorm:"type:varchar(200)" json:"description,omitempty"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	ParentID    *uint      `gorm:"index" json:"parent_id,omitempty"`
	Children    []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

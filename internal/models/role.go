package models

import (
	"github.com/bitnshop/bitnshop/internal/authz"
)

// Role is a capability label grantable to users. Rows are seeded from
// the fixed authz enumeration when the table is empty; the application
// never invents roles at runtime.
type Role struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        authz.RoleName `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Slug        string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:varchar(100)" json:"description,omitempty"`
}

// Display returns the human-readable label for the role.
func (r Role) Display() string {
	return r.Name.Display()
}

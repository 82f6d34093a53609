package models

import (
	"time"

	"github.com/bitnshop/bitnshop/internal/authz"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Slug         string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // Never expose password hash in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Role assignment is many-to-many; the join rows belong to the user,
	// the Role records are shared.
	Roles   []Role   `gorm:"many2many:user_roles" json:"roles"`
	Profile *Profile `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Address *Address `gorm:"constraint:OnDelete:CASCADE" json:"address,omitempty"`
}

// RoleNames returns the names of all roles assigned to the user.
func (u *User) RoleNames() []authz.RoleName {
	names := make([]authz.RoleName, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Name)
	}
	return names
}

// Principal converts the user into an authorization principal.
func (u *User) Principal() *authz.Principal {
	return &authz.Principal{ID: u.ID, Roles: u.RoleNames()}
}

type Profile struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;index" json:"-"`
	Firstname string `gorm:"type:varchar(200)" json:"firstname,omitempty"`
	Lastname  string `gorm:"type:varchar(200)" json:"lastname,omitempty"`
	Phone     string `gorm:"type:varchar(120)" json:"phone,omitempty"`
}

type Address struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  uint   `gorm:"not null;index" json:"-"`
	Country string `gorm:"type:varchar(50)" json:"country,omitempty"`
	State   string `gorm:"type:varchar(50)" json:"state,omitempty"`
}

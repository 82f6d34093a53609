package testutil

import (
	"testing"

	"github.com/bitnshop/bitnshop/internal/authz"
	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/bitnshop/bitnshop/internal/slug"
	"github.com/bitnshop/bitnshop/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateTestUser inserts a user with the given roles and a hashed
// password. Roles must already be seeded (SetupTestDatabase does this).
func CreateTestUser(t *testing.T, db *gorm.DB, username, email, password string, roleNames ...authz.RoleName) *models.User {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	var roles []models.Role
	if len(roleNames) > 0 {
		if err := db.Where("name IN ?", roleNames).Find(&roles).Error; err != nil {
			t.Fatalf("Failed to load roles: %v", err)
		}
		if len(roles) != len(roleNames) {
			t.Fatalf("Expected %d roles, found %d", len(roleNames), len(roles))
		}
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		Slug:         slug.Make(username),
		PasswordHash: hashedPassword,
		Roles:        roles,
		Profile:      &models.Profile{},
		Address:      &models.Address{},
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// DefaultCustomer returns a plain storefront account.
func DefaultCustomer(t *testing.T, db *gorm.DB) *models.User {
	return CreateTestUser(t, db, "customer", "customer@example.com", "Customer123", authz.RoleCustomer)
}

// DefaultAdmin returns an account with the admin role.
func DefaultAdmin(t *testing.T, db *gorm.DB) *models.User {
	return CreateTestUser(t, db, "admin", "admin@example.com", "Admin123456", authz.RoleAdmin)
}

// CreateTestCategory inserts a category with a slug derived from its name.
func CreateTestCategory(t *testing.T, db *gorm.DB, name string, parentID *uint) *models.Category {
	category := &models.Category{
		Name:     name,
		Slug:     slug.Make(name),
		ParentID: parentID,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return category
}

// CreateTestProduct inserts a published product owned by userID.
func CreateTestProduct(t *testing.T, db *gorm.DB, name string, userID uint, categories ...models.Category) *models.Product {
	product := &models.Product{
		UUID:         uuid.New(),
		Name:         name,
		Slug:         slug.Make(name),
		SellingPrice: 1999,
		ActualPrice:  2499,
		PubStatus:    models.PubStatusPublished,
		UserID:       userID,
		Categories:   categories,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return product
}

// CreateTestNavItem inserts one menu entry.
func CreateTestNavItem(t *testing.T, db *gorm.DB, label, url string, position int) *models.NavItem {
	item := &models.NavItem{
		Label:    label,
		URL:      url,
		Position: position,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to create test nav item: %v", err)
	}
	return item
}

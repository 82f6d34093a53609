package database

import (
	"log"

	"github.com/bitnshop/bitnshop/internal/authz"
	"github.com/bitnshop/bitnshop/internal/config"
	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/bitnshop/bitnshop/internal/slug"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}

	log.Println("Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Address{},
		&models.Role{},
		&models.Category{},
		&models.Product{},
		&models.Tag{},
		&models.NavItem{},
	)
	if err != nil {
		log.Fatal("Migration failed:", err)
	}

	log.Println("Database migration completed")
}

// SeedRoles inserts the fixed role enumeration when the roles table is
// empty. Roles are created once at bootstrap and rarely touched after.
func SeedRoles(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Role{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	roles := make([]models.Role, 0, len(authz.AllRoleNames()))
	for _, name := range authz.AllRoleNames() {
		roles = append(roles, models.Role{
			Name:        name,
			Slug:        slug.Make(name.Display()),
			Description: name.Display() + " role",
		})
	}

	return db.Create(&roles).Error
}

// SeedNavItems inserts the default storefront navigation when the table
// is empty.
func SeedNavItems(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.NavItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	items := []models.NavItem{
		{Label: "Home", URL: "/", Position: 1},
		{Label: "Shop", URL: "/products", Position: 2},
		{Label: "Categories", URL: "/categories", Position: 3},
		{Label: "About", URL: "/about", Position: 4},
		{Label: "Contact", URL: "/contact", Position: 5},
	}

	return db.Create(&items).Error
}

package main

import (
	"log"
	"os"

	"github.com/bitnshop/bitnshop/internal/authz"
	"github.com/bitnshop/bitnshop/internal/config"
	"github.com/bitnshop/bitnshop/internal/database"
	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/bitnshop/bitnshop/internal/slug"
	"github.com/bitnshop/bitnshop/internal/utils"
)

// Bootstraps the first super-admin account. Safe to run repeatedly;
// an existing account with the same email is left untouched.
func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	if err := database.SeedRoles(database.DB); err != nil {
		log.Fatal("Failed to seed roles:", err)
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD")
	}

	var existing models.User
	result := database.DB.Where("email = ?", adminEmail).First(&existing)
	if result.Error == nil {
		log.Println("Super admin already exists:", existing.Username)
		log.Println("  Email:", existing.Email)
		return
	}

	var superAdminRole models.Role
	if err := database.DB.Where("name = ?", authz.RoleSuperAdmin).First(&superAdminRole).Error; err != nil {
		log.Fatal("Super admin role not found:", err)
	}

	passwordHash, err := utils.HashPassword(adminPassword)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin := models.User{
		Username:     adminUsername,
		Email:        adminEmail,
		Slug:         slug.Make(adminUsername),
		PasswordHash: passwordHash,
		Roles:        []models.Role{superAdminRole},
		Profile:      &models.Profile{},
		Address:      &models.Address{},
	}

	if err := database.DB.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create super admin:", err)
	}

	log.Println("Super admin created successfully!")
	log.Println("  Username:", admin.Username)
	log.Println("  Email:", admin.Email)
}

package repository

import (
	"errors"

	"github.com/bitnshop/bitnshop/internal/models"
	"gorm.io/gorm"
)

type NavRepository struct {
	db *gorm.DB
}

func NewNavRepository(db *gorm.DB) *NavRepository {
	return &NavRepository{db: db}
}

// ListNavItems returns the navigation bar in display order.
func (r *NavRepository) ListNavItems() ([]models.NavItem, error) {
	var items []models.NavItem
	if err := r.db.Order("position ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *NavRepository) GetNavItemByID(id uint) (*models.NavItem, error) {
	var item models.NavItem
	err := r.db.Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &item, nil
}

func (r *NavRepository) CreateNavItem(item *models.NavItem) error {
	return r.db.Create(item).Error
}

func (r *NavRepository) UpdateNavItem(item *models.NavItem) error {
	return r.db.Save(item).Error
}

func (r *NavRepository) DeleteNavItem(item *models.NavItem) error {
	return r.db.Delete(item).Error
}

package repository

import (
	"errors"

	"github.com/bitnshop/bitnshop/internal/models"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) CreateCategory(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *CategoryRepository) UpdateCategory(category *models.Category) error {
	return r.db.Save(category).Error
}

func (r *CategoryRepository) GetCategoryByID(id uint) (*models.Category, error) {
	var category models.Category
	err := r.db.Preload("Children").Where("id = ?", id).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &category, nil
}

func (r *CategoryRepository) GetCategoryBySlug(slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.Preload("Children").Where("slug = ?", slug).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &category, nil
}

// ListCategories returns all categories, or only the children of
// parentID when it is non-nil.
func (r *CategoryRepository) ListCategories(parentID *uint) ([]models.Category, error) {
	query := r.db.Order("id DESC")
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	}

	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) GetCategoriesByIDs(ids []uint) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// DeleteCategory removes the category after detaching its children
// (they become top-level rather than being destroyed with the parent).
func (r *CategoryRepository) DeleteCategory(category *models.Category) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Category{}).
			Where("parent_id = ?", category.ID).
			Update("parent_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
}

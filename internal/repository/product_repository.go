package repository

import (
	"errors"

	"github.com/bitnshop/bitnshop/internal/models"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) CreateProduct(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *ProductRepository) UpdateProduct(product *models.Product) error {
	return r.db.Save(product).Error
}

func (r *ProductRepository) GetProductByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Categories").Preload("Tags").
		Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &product, nil
}

func (r *ProductRepository) GetProductBySlug(slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Categories").Preload("Tags").
		Where("slug = ?", slug).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &product, nil
}

// ListProducts returns one page of products, newest first. When
// publishedOnly is set, drafts are excluded (storefront view).
func (r *ProductRepository) ListProducts(page, perPage int, publishedOnly bool) ([]*models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if publishedOnly {
		query = query.Where("pub_status = ?", models.PubStatusPublished)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []*models.Product
	err := query.Preload("Categories").Preload("Tags").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ReplaceCategories swaps the product's category assignments.
func (r *ProductRepository) ReplaceCategories(product *models.Product, categories []models.Category) error {
	return r.db.Model(product).Association("Categories").Replace(categories)
}

// ReplaceTags swaps the product's tag assignments.
func (r *ProductRepository) ReplaceTags(product *models.Product, tags []models.Tag) error {
	return r.db.Model(product).Association("Tags").Replace(tags)
}

// DeleteProduct removes the product and its category/tag join rows.
// Category and Tag records are shared and stay untouched.
func (r *ProductRepository) DeleteProduct(product *models.Product) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(product).Association("Categories").Clear(); err != nil {
			return err
		}
		if err := tx.Model(product).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(product).Error
	})
}

// GetOrCreateTag fetches a tag by name, creating it (with the supplied
// slug) when missing.
func (r *ProductRepository) GetOrCreateTag(name, slug string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.Where("name = ?", name).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tag = models.Tag{Name: name, Slug: slug}
	if err := r.db.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/bitnshop/bitnshop/internal/slug"
	"gorm.io/gorm"
)

// SlugStore implements slug.Store on top of the entity tables, one
// lookup-by-field query per check.
type SlugStore struct {
	db *gorm.DB
}

func NewSlugStore(db *gorm.DB) *SlugStore {
	return &SlugStore{db: db}
}

func (s *SlugStore) SlugTaken(ctx context.Context, entity slug.EntityType, candidate string, excludeID uint) (bool, error) {
	model, err := modelFor(entity)
	if err != nil {
		return false, err
	}

	query := s.db.WithContext(ctx).Model(model).Where("slug = ?", candidate)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func modelFor(entity slug.EntityType) (interface{}, error) {
	switch entity {
	case slug.EntityProduct:
		return &models.Product{}, nil
	case slug.EntityCategory:
		return &models.Category{}, nil
	case slug.EntityTag:
		return &models.Tag{}, nil
	case slug.EntityRole:
		return &models.Role{}, nil
	case slug.EntityUser:
		return &models.User{}, nil
	default:
		return nil, fmt.Errorf("unknown slug entity type %q", entity)
	}
}

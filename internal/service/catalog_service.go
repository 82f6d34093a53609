package service

import (
	"context"
	"errors"

	"github.com/bitnshop/bitnshop/internal/audit"
	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/bitnshop/bitnshop/internal/repository"
	"github.com/bitnshop/bitnshop/internal/slug"
	"github.com/bitnshop/bitnshop/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidPubStatus = errors.New("invalid publish status")
)

// CatalogService owns products, categories and tags. Every create and
// rename path runs through the slug generator so catalog URLs stay
// unique and stable.
type CatalogService struct {
	productRepo  *repository.ProductRepository
	categoryRepo *repository.CategoryRepository
	slugGen      *slug.Generator
	trail        *audit.Trail
}

func NewCatalogService(
	productRepo *repository.ProductRepository,
	categoryRepo *repository.CategoryRepository,
	slugGen *slug.Generator,
	trail *audit.Trail,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		slugGen:      slugGen,
		trail:        trail,
	}
}

type ProductInput struct {
	Name         string
	Description  string
	SellingPrice int64
	ActualPrice  int64
	Sizes        string
	Colors       string
	PubStatus    string
	CategoryIDs  []uint
	Tags         []string
}

func (in ProductInput) validate() error {
	if in.Name == "" {
		return errors.New("product name is required")
	}
	switch in.PubStatus {
	case "", models.PubStatusDraft, models.PubStatusPublished:
		return nil
	default:
		return ErrInvalidPubStatus
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, actorID uint, input ProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	productSlug, err := s.slugGen.Generate(ctx, input.Name, slug.EntityProduct, nil)
	if err != nil {
		logger.Log.Error("Failed to generate product slug",
			zap.String("name", input.Name),
			zap.Error(err),
		)
		return nil, err
	}

	pubStatus := input.PubStatus
	if pubStatus == "" {
		pubStatus = models.PubStatusDraft
	}

	product := &models.Product{
		UUID:         uuid.New(),
		Name:         input.Name,
		Description:  input.Description,
		SellingPrice: input.SellingPrice,
		ActualPrice:  input.ActualPrice,
		Sizes:        input.Sizes,
		Colors:       input.Colors,
		Slug:         productSlug,
		PubStatus:    pubStatus,
		UserID:       actorID,
	}

	if err := s.productRepo.CreateProduct(product); err != nil {
		logger.Log.Error("Failed to create product",
			zap.String("name", input.Name),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.assignCategoriesAndTags(ctx, product, input); err != nil {
		return nil, err
	}

	s.record(audit.Entry{
		Action:  audit.ActionProductCreated,
		ActorID: actorID,
		Subject: "product:" + product.Slug,
	})

	logger.Log.Info("Product created",
		zap.Uint("actor_id", actorID),
		zap.Uint("product_id", product.ID),
		zap.String("slug", product.Slug),
	)

	return product, nil
}

// UpdateProduct applies the input to an existing product. The slug is
// recomputed only when the name changed; updating prices or stock never
// perturbs a published URL.
func (s *CatalogService) UpdateProduct(ctx context.Context, actorID, productID uint, input ProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetProductByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	existing := &slug.Existing{ID: product.ID, Name: product.Name, Slug: product.Slug}
	newSlug, err := s.slugGen.Generate(ctx, input.Name, slug.EntityProduct, existing)
	if err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.SellingPrice = input.SellingPrice
	product.ActualPrice = input.ActualPrice
	product.Sizes = input.Sizes
	product.Colors = input.Colors
	product.Slug = newSlug
	if input.PubStatus != "" {
		product.PubStatus = input.PubStatus
	}

	if err := s.productRepo.UpdateProduct(product); err != nil {
		logger.Log.Error("Failed to update product",
			zap.Uint("product_id", productID),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.assignCategoriesAndTags(ctx, product, input); err != nil {
		return nil, err
	}

	s.record(audit.Entry{
		Action:  audit.ActionProductUpdated,
		ActorID: actorID,
		Subject: "product:" + product.Slug,
	})

	return product, nil
}

func (s *CatalogService) DeleteProduct(actorID, productID uint) error {
	product, err := s.productRepo.GetProductByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}

	if err := s.productRepo.DeleteProduct(product); err != nil {
		logger.Log.Error("Failed to delete product",
			zap.Uint("product_id", productID),
			zap.Error(err),
		)
		return err
	}

	s.record(audit.Entry{
		Action:  audit.ActionProductDeleted,
		ActorID: actorID,
		Subject: "product:" + product.Slug,
	})

	logger.Log.Info("Product deleted",
		zap.Uint("actor_id", actorID),
		zap.Uint("product_id", productID),
	)

	return nil
}

func (s *CatalogService) GetProductBySlug(productSlug string) (*models.Product, error) {
	product, err := s.productRepo.GetProductBySlug(productSlug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *CatalogService) ListProducts(page, perPage int, publishedOnly bool) ([]*models.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	return s.productRepo.ListProducts(page, perPage, publishedOnly)
}

type CategoryInput struct {
	Name        string
	Description string
	ParentID    *uint
}

func (s *CatalogService) CreateCategory(ctx context.Context, actorID uint, input CategoryInput) (*models.Category, error) {
	if input.Name == "" {
		return nil, errors.New("category name is required")
	}

	categorySlug, err := s.slugGen.Generate(ctx, input.Name, slug.EntityCategory, nil)
	if err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        input.Name,
		Description: input.Description,
		Slug:        categorySlug,
		ParentID:    input.ParentID,
	}

	if err := s.categoryRepo.CreateCategory(category); err != nil {
		logger.Log.Error("Failed to create category",
			zap.String("name", input.Name),
			zap.Error(err),
		)
		return nil, err
	}

	s.record(audit.Entry{
		Action:  audit.ActionCategorySaved,
		ActorID: actorID,
		Subject: "category:" + category.Slug,
	})

	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, actorID, categoryID uint, input CategoryInput) (*models.Category, error) {
	if input.Name == "" {
		return nil, errors.New("category name is required")
	}

	category, err := s.categoryRepo.GetCategoryByID(categoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	existing := &slug.Existing{ID: category.ID, Name: category.Name, Slug: category.Slug}
	newSlug, err := s.slugGen.Generate(ctx, input.Name, slug.EntityCategory, existing)
	if err != nil {
		return nil, err
	}

	category.Name = input.Name
	category.Description = input.Description
	category.Slug = newSlug
	category.ParentID = input.ParentID

	if err := s.categoryRepo.UpdateCategory(category); err != nil {
		return nil, err
	}

	s.record(audit.Entry{
		Action:  audit.ActionCategorySaved,
		ActorID: actorID,
		Subject: "category:" + category.Slug,
	})

	return category, nil
}

func (s *CatalogService) DeleteCategory(actorID, categoryID uint) error {
	category, err := s.categoryRepo.GetCategoryByID(categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}

	if err := s.categoryRepo.DeleteCategory(category); err != nil {
		return err
	}

	s.record(audit.Entry{
		Action:  audit.ActionCategoryDeleted,
		ActorID: actorID,
		Subject: "category:" + category.Slug,
	})

	return nil
}

func (s *CatalogService) GetCategoryBySlug(categorySlug string) (*models.Category, error) {
	category, err := s.categoryRepo.GetCategoryBySlug(categorySlug)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *CatalogService) ListCategories(parentID *uint) ([]models.Category, error) {
	return s.categoryRepo.ListCategories(parentID)
}

// assignCategoriesAndTags replaces the product's associations with the
// sets named in the input. Tags are created on first use.
func (s *CatalogService) assignCategoriesAndTags(ctx context.Context, product *models.Product, input ProductInput) error {
	if input.CategoryIDs != nil {
		categories, err := s.categoryRepo.GetCategoriesByIDs(input.CategoryIDs)
		if err != nil {
			return err
		}
		if len(categories) != len(input.CategoryIDs) {
			return ErrCategoryNotFound
		}
		if err := s.productRepo.ReplaceCategories(product, categories); err != nil {
			return err
		}
		product.Categories = categories
	}

	if input.Tags != nil {
		tags := make([]models.Tag, 0, len(input.Tags))
		for _, name := range input.Tags {
			if name == "" {
				continue
			}
			tagSlug, err := s.slugGen.Generate(ctx, name, slug.EntityTag, nil)
			if err != nil {
				return err
			}
			tag, err := s.productRepo.GetOrCreateTag(name, tagSlug)
			if err != nil {
				return err
			}
			tags = append(tags, *tag)
		}
		if err := s.productRepo.ReplaceTags(product, tags); err != nil {
			return err
		}
		product.Tags = tags
	}

	return nil
}

func (s *CatalogService) record(entry audit.Entry) {
	if s.trail == nil {
		return
	}
	if err := s.trail.Record(entry); err != nil {
		logger.Log.Warn("Failed to record audit entry",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

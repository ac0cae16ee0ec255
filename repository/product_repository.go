package repository

import (
	"context"

	"catalog-service/apperrors"
	"catalog-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product, categoryIDs []uint) error
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	FindByWebID(ctx context.Context, webID string) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) ([]models.Product, error)
	FindAll(ctx context.Context, filter models.ProductFilter, page, limit int) ([]models.Product, int64, error)
	Update(ctx context.Context, product *models.Product, categoryIDs []uint) error
	Delete(ctx context.Context, id uint) error
	CountInventory(ctx context.Context, id uint) (int64, error)
}

// GormProductRepository implements ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

// Create inserts the product and its category links in one transaction.
func (r *GormProductRepository) Create(ctx context.Context, product *models.Product, categoryIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return translate(err)
		}
		return replaceCategories(tx, product.ID, categoryIDs)
	})
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("categories.name") }).
		First(&product, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *GormProductRepository) FindByWebID(ctx context.Context, webID string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Where("web_id = ?", webID).
		First(&product).Error
	if err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindBySlug returns every product with the slug; slugs are not unique.
func (r *GormProductRepository) FindBySlug(ctx context.Context, slug string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Where("slug = ?", slug).Order("id").Find(&products).Error
	return products, translate(err)
}

// FindAll retrieves paginated products. A category filter matches products
// linked to any of the given category ids.
func (r *GormProductRepository) FindAll(ctx context.Context, filter models.ProductFilter, page, limit int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if len(filter.CategoryIDs) > 0 {
		linked := r.db.Model(&models.ProductCategory{}).
			Select("product_id").
			Where("category_id IN ?", filter.CategoryIDs)
		query = query.Where("id IN (?)", linked)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR web_id LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Categories").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return nil, 0, translate(err)
	}
	return products, total, nil
}

// Update saves the product columns and replaces its category links when
// categoryIDs is non-nil.
func (r *GormProductRepository) Update(ctx context.Context, product *models.Product, categoryIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(product).Error; err != nil {
			return translate(err)
		}
		if categoryIDs == nil {
			return nil
		}
		return replaceCategories(tx, product.ID, categoryIDs)
	})
}

func (r *GormProductRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductCategory{}).Error; err != nil {
			return translate(err)
		}
		result := tx.Delete(&models.Product{}, id)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormProductRepository) CountInventory(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &models.ProductInventory{}, "product_id", id)
}

func replaceCategories(tx *gorm.DB, productID uint, categoryIDs []uint) error {
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductCategory{}).Error; err != nil {
		return translate(err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]models.ProductCategory, 0, len(categoryIDs))
	seen := make(map[uint]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		links = append(links, models.ProductCategory{ProductID: productID, CategoryID: id})
	}
	return translate(tx.Create(&links).Error)
}

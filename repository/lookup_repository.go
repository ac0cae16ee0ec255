package repository

import (
	"context"

	"catalog-service/models"

	"gorm.io/gorm"
)

type ProductTypeRepository interface {
	Store[models.ProductType]
	CountInventory(ctx context.Context, id uint) (int64, error)
}

type BrandRepository interface {
	Store[models.Brand]
	CountInventory(ctx context.Context, id uint) (int64, error)
}

type AttributeRepository interface {
	Store[models.ProductAttribute]
	CountValues(ctx context.Context, id uint) (int64, error)
}

type AttributeValueRepository interface {
	Store[models.ProductAttributeValue]
	FindByAttribute(ctx context.Context, attributeID uint) ([]models.ProductAttributeValue, error)
	CountLinks(ctx context.Context, id uint) (int64, error)
}

type GormProductTypeRepository struct {
	gormStore[models.ProductType]
}

func NewGormProductTypeRepository(db *gorm.DB) ProductTypeRepository {
	return &GormProductTypeRepository{gormStore: newGormStore[models.ProductType](db, "name")}
}

func (r *GormProductTypeRepository) CountInventory(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &models.ProductInventory{}, "product_type_id", id)
}

type GormBrandRepository struct {
	gormStore[models.Brand]
}

func NewGormBrandRepository(db *gorm.DB) BrandRepository {
	return &GormBrandRepository{gormStore: newGormStore[models.Brand](db, "name")}
}

func (r *GormBrandRepository) CountInventory(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &models.ProductInventory{}, "brand_id", id)
}

type GormAttributeRepository struct {
	gormStore[models.ProductAttribute]
}

func NewGormAttributeRepository(db *gorm.DB) AttributeRepository {
	return &GormAttributeRepository{gormStore: newGormStore[models.ProductAttribute](db, "name")}
}

func (r *GormAttributeRepository) CountValues(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &models.ProductAttributeValue{}, "product_attribute_id", id)
}

type GormAttributeValueRepository struct {
	gormStore[models.ProductAttributeValue]
}

func NewGormAttributeValueRepository(db *gorm.DB) AttributeValueRepository {
	return &GormAttributeValueRepository{
		gormStore: newGormStore[models.ProductAttributeValue](db, "product_attribute_id, attribute_value", "ProductAttribute"),
	}
}

func (r *GormAttributeValueRepository) FindByAttribute(ctx context.Context, attributeID uint) ([]models.ProductAttributeValue, error) {
	var values []models.ProductAttributeValue
	err := r.db.WithContext(ctx).
		Preload("ProductAttribute").
		Where("product_attribute_id = ?", attributeID).
		Order("attribute_value").
		Find(&values).Error
	return values, translate(err)
}

// CountLinks counts inventory rows carrying the value.
func (r *GormAttributeValueRepository) CountLinks(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &models.ProductAttributeValues{}, "attribute_value_id", id)
}

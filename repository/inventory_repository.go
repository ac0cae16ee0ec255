package repository

import (
	"context"
	"time"

	"catalog-service/apperrors"
	"catalog-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryDependents counts the rows that protect an inventory row.
type InventoryDependents struct {
	Media           int64
	Stock           int64
	AttributeValues int64
}

func (d InventoryDependents) Total() int64 {
	return d.Media + d.Stock + d.AttributeValues
}

type InventoryRepository interface {
	Store[models.ProductInventory]
	FindBySKU(ctx context.Context, sku string) (*models.ProductInventory, error)
	FindByUPC(ctx context.Context, upc string) (*models.ProductInventory, error)
	FindByProduct(ctx context.Context, productID uint) ([]models.ProductInventory, error)
	AttachValue(ctx context.Context, inventoryID, valueID uint) error
	DetachValue(ctx context.Context, inventoryID, valueID uint) error
	CountDependents(ctx context.Context, id uint) (InventoryDependents, error)
}

var inventoryPreloads = []string{
	"ProductType",
	"Product",
	"Brand",
	"Attributes.AttributeValue.ProductAttribute",
	"Media",
	"Stock",
}

type GormInventoryRepository struct {
	gormStore[models.ProductInventory]
}

func NewGormInventoryRepository(db *gorm.DB) InventoryRepository {
	return &GormInventoryRepository{
		gormStore: newGormStore[models.ProductInventory](db, "created_at DESC", inventoryPreloads...),
	}
}

func (r *GormInventoryRepository) FindBySKU(ctx context.Context, sku string) (*models.ProductInventory, error) {
	return r.findOne(ctx, "sku = ?", sku)
}

func (r *GormInventoryRepository) FindByUPC(ctx context.Context, upc string) (*models.ProductInventory, error) {
	return r.findOne(ctx, "upc = ?", upc)
}

func (r *GormInventoryRepository) findOne(ctx context.Context, where string, arg interface{}) (*models.ProductInventory, error) {
	var inv models.ProductInventory
	if err := r.query(ctx).Where(where, arg).First(&inv).Error; err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (r *GormInventoryRepository) FindByProduct(ctx context.Context, productID uint) ([]models.ProductInventory, error) {
	var items []models.ProductInventory
	err := r.db.WithContext(ctx).
		Preload("Brand").
		Preload("ProductType").
		Where("product_id = ?", productID).
		Order("sku").
		Find(&items).Error
	return items, translate(err)
}

// AttachValue links an attribute value; the pair is unique.
func (r *GormInventoryRepository) AttachValue(ctx context.Context, inventoryID, valueID uint) error {
	link := models.ProductAttributeValues{AttributeValueID: valueID, ProductInventoryID: inventoryID}
	return translate(r.db.WithContext(ctx).Create(&link).Error)
}

func (r *GormInventoryRepository) DetachValue(ctx context.Context, inventoryID, valueID uint) error {
	result := r.db.WithContext(ctx).
		Where("product_inventory_id = ? AND attribute_value_id = ?", inventoryID, valueID).
		Delete(&models.ProductAttributeValues{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}

func (r *GormInventoryRepository) CountDependents(ctx context.Context, id uint) (InventoryDependents, error) {
	var d InventoryDependents
	var err error
	if d.Media, err = count(ctx, r.db, &models.Media{}, "product_inventory_id", id); err != nil {
		return d, err
	}
	if d.Stock, err = count(ctx, r.db, &models.Stock{}, "product_inventory_id", id); err != nil {
		return d, err
	}
	if d.AttributeValues, err = count(ctx, r.db, &models.ProductAttributeValues{}, "product_inventory_id", id); err != nil {
		return d, err
	}
	return d, nil
}

type MediaRepository interface {
	Store[models.Media]
	FindByInventory(ctx context.Context, inventoryID uint) ([]models.Media, error)
}

type GormMediaRepository struct {
	gormStore[models.Media]
}

func NewGormMediaRepository(db *gorm.DB) MediaRepository {
	return &GormMediaRepository{gormStore: newGormStore[models.Media](db, "created_at DESC")}
}

// FindByInventory returns the feature image first.
func (r *GormMediaRepository) FindByInventory(ctx context.Context, inventoryID uint) ([]models.Media, error) {
	var media []models.Media
	err := r.db.WithContext(ctx).
		Where("product_inventory_id = ?", inventoryID).
		Order("is_feature DESC, id").
		Find(&media).Error
	return media, translate(err)
}

type StockRepository interface {
	FindAll(ctx context.Context, page, limit int) ([]models.Stock, int64, error)
	FindByInventory(ctx context.Context, inventoryID uint) (*models.Stock, error)
	Upsert(ctx context.Context, stock *models.Stock) error
	MarkChecked(ctx context.Context, inventoryID uint, at time.Time) error
	Delete(ctx context.Context, inventoryID uint) error
}

type GormStockRepository struct {
	db *gorm.DB
}

func NewGormStockRepository(db *gorm.DB) StockRepository {
	return &GormStockRepository{db: db}
}

func (r *GormStockRepository) FindAll(ctx context.Context, page, limit int) ([]models.Stock, int64, error) {
	var items []models.Stock
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Stock{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	err := r.db.WithContext(ctx).
		Offset((page - 1) * limit).
		Limit(limit).
		Order("product_inventory_id").
		Find(&items).Error
	return items, total, translate(err)
}

func (r *GormStockRepository) FindByInventory(ctx context.Context, inventoryID uint) (*models.Stock, error) {
	var stock models.Stock
	if err := r.db.WithContext(ctx).Where("product_inventory_id = ?", inventoryID).First(&stock).Error; err != nil {
		return nil, translate(err)
	}
	return &stock, nil
}

// Upsert creates the stock row or overwrites its counters.
func (r *GormStockRepository) Upsert(ctx context.Context, stock *models.Stock) error {
	return translate(r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_inventory_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"units", "units_sold", "last_checked"}),
		}).
		Create(stock).Error)
}

func (r *GormStockRepository) MarkChecked(ctx context.Context, inventoryID uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Stock{}).
		Where("product_inventory_id = ?", inventoryID).
		Update("last_checked", at)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}

func (r *GormStockRepository) Delete(ctx context.Context, inventoryID uint) error {
	result := r.db.WithContext(ctx).Where("product_inventory_id = ?", inventoryID).Delete(&models.Stock{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}

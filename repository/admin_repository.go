package repository

import (
	"context"
	"time"

	"catalog-service/apperrors"
	"catalog-service/models"

	"gorm.io/gorm"
)

type AdminRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	FindByID(ctx context.Context, id uint) (*models.AdminUser, error)
	FindByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

type GormAdminRepository struct {
	db *gorm.DB
}

func NewGormAdminRepository(db *gorm.DB) AdminRepository {
	return &GormAdminRepository{db: db}
}

func (r *GormAdminRepository) Create(ctx context.Context, user *models.AdminUser) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *GormAdminRepository) FindByID(ctx context.Context, id uint) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormAdminRepository) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormAdminRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.AdminUser{}).Where("id = ?", id).Update("last_login", at)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrRecordNotFound
	}
	return nil
}

// StatsRepository counts rows for the admin index.
type StatsRepository interface {
	Counts(ctx context.Context) ([]models.ModelCount, error)
}

type GormStatsRepository struct {
	db *gorm.DB
}

func NewGormStatsRepository(db *gorm.DB) StatsRepository {
	return &GormStatsRepository{db: db}
}

// registeredModels lists the admin sections in display order.
var registeredModels = []struct {
	name     string
	endpoint string
	model    interface{}
}{
	{"Categories", "categories", &models.Category{}},
	{"Products", "products", &models.Product{}},
	{"Product types", "product-types", &models.ProductType{}},
	{"Brands", "brands", &models.Brand{}},
	{"Product attributes", "attributes", &models.ProductAttribute{}},
	{"Product attribute values", "attribute-values", &models.ProductAttributeValue{}},
	{"Product inventory", "inventory", &models.ProductInventory{}},
	{"Media", "media", &models.Media{}},
	{"Stock", "stock", &models.Stock{}},
}

func (r *GormStatsRepository) Counts(ctx context.Context) ([]models.ModelCount, error) {
	out := make([]models.ModelCount, 0, len(registeredModels))
	for _, m := range registeredModels {
		var n int64
		if err := r.db.WithContext(ctx).Model(m.model).Count(&n).Error; err != nil {
			return nil, translate(err)
		}
		out = append(out, models.ModelCount{Name: m.name, Endpoint: m.endpoint, Count: n})
	}
	return out, nil
}

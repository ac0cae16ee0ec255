package repository

import (
	"context"

	"catalog-service/apperrors"
	"catalog-service/models"
	"catalog-service/tree"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	Store[models.Category]
	FindAllOrdered(ctx context.Context) ([]models.Category, error)
	FindChildren(ctx context.Context, id uint) ([]models.Category, error)
	FindDescendants(ctx context.Context, c *models.Category) ([]models.Category, error)
	FindAncestors(ctx context.Context, c *models.Category) ([]models.Category, error)
	CountChildren(ctx context.Context, id uint) (int64, error)
	SaveTree(ctx context.Context, nodes []tree.Node) error
	// Transaction runs fn in one transaction holding the tree lock, so
	// concurrent writers renumber the forest one at a time.
	Transaction(ctx context.Context, fn func(repo CategoryRepository) error) error
}

// GormCategoryRepository implements CategoryRepository using GORM.
type GormCategoryRepository struct {
	gormStore[models.Category]
}

func NewGormCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{gormStore: newGormStore[models.Category](db, "tree_id, lft")}
}

// FindAllOrdered returns every category in tree preorder.
func (r *GormCategoryRepository) FindAllOrdered(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("tree_id, lft").Find(&categories).Error
	return categories, translate(err)
}

func (r *GormCategoryRepository) FindChildren(ctx context.Context, id uint) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Where("parent_id = ?", id).Order("lft").Find(&categories).Error
	return categories, translate(err)
}

// FindDescendants selects the rows nested inside c's interval.
func (r *GormCategoryRepository) FindDescendants(ctx context.Context, c *models.Category) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("tree_id = ? AND lft > ? AND rght < ?", c.TreeID, c.Lft, c.Rght).
		Order("lft").
		Find(&categories).Error
	return categories, translate(err)
}

// FindAncestors selects the rows whose interval contains c, root first.
func (r *GormCategoryRepository) FindAncestors(ctx context.Context, c *models.Category) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("tree_id = ? AND lft < ? AND rght > ?", c.TreeID, c.Lft, c.Rght).
		Order("lft").
		Find(&categories).Error
	return categories, translate(err)
}

func (r *GormCategoryRepository) CountChildren(ctx context.Context, id uint) (int64, error) {
	return count(ctx, r.db, &models.Category{}, "parent_id", id)
}

// SaveTree writes the nested-set columns of the given nodes.
func (r *GormCategoryRepository) SaveTree(ctx context.Context, nodes []tree.Node) error {
	db := r.db.WithContext(ctx)
	for _, n := range nodes {
		err := db.Model(&models.Category{}).
			Where("id = ?", n.ID).
			UpdateColumns(map[string]interface{}{
				"tree_id": n.TreeID,
				"lft":     n.Lft,
				"rght":    n.Rght,
				"level":   n.Level,
			}).Error
		if err != nil {
			return translate(err)
		}
	}
	return nil
}

// Delete removes the category and its product links. Children are
// protected by the parent foreign key.
func (r *GormCategoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", id).Delete(&models.ProductCategory{}).Error; err != nil {
			return translate(err)
		}
		result := tx.Delete(&models.Category{}, id)
		if result.Error != nil {
			return translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormCategoryRepository) Transaction(ctx context.Context, fn func(repo CategoryRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTree(tx); err != nil {
			return err
		}
		return fn(NewGormCategoryRepository(tx))
	})
}

// categoryTreeLockKey identifies the category tree among advisory locks.
const categoryTreeLockKey = 0x63617467

// lockTree blocks until no other transaction is rewriting the tree. Row
// locks alone do not stop a concurrent insert of a new root, so postgres
// takes a transaction-scoped advisory lock and mysql next-key locks the
// whole table. sqlite already serializes writers.
func lockTree(tx *gorm.DB) error {
	switch tx.Dialector.Name() {
	case "postgres":
		return translate(tx.Exec("SELECT pg_advisory_xact_lock(?)", categoryTreeLockKey).Error)
	case "mysql":
		var ids []uint
		return translate(tx.Model(&models.Category{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Pluck("id", &ids).Error)
	}
	return nil
}

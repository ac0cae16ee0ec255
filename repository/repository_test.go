package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"catalog-service/apperrors"
	"catalog-service/models"
	"catalog-service/repository"
	"catalog-service/tree"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })
	return gormDB, mock
}

func TestCategoryCreate_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCategoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "categories"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	c := &models.Category{Name: "shoes", Slug: "shoes", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, uint(7), c.ID)
}

func TestCategoryFindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCategoryRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories"`)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	c, err := repo.FindByID(context.Background(), 42)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)
}

func TestCategoryFindDescendants(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCategoryRepository(gormDB)

	rows := sqlmock.NewRows([]string{"id", "name", "slug", "is_active", "parent_id", "lft", "rght", "tree_id", "level"}).
		AddRow(2, "men", "men", true, 1, 2, 5, 1, 1).
		AddRow(3, "shoes", "shoes", true, 2, 3, 4, 1, 2)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories" WHERE tree_id = $1 AND lft > $2 AND rght < $3 ORDER BY lft`)).
		WithArgs(1, 1, 6).
		WillReturnRows(rows)

	got, err := repo.FindDescendants(context.Background(), &models.Category{ID: 1, TreeID: 1, Lft: 1, Rght: 6})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "shoes", got[1].Name)
	assert.Equal(t, 2, got[1].Level)
}

func TestCategorySaveTree(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCategoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "categories" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SaveTree(context.Background(), []tree.Node{{ID: 1, TreeID: 1, Lft: 1, Rght: 2}})
	assert.NoError(t, err)
}

func TestCategoryTransaction_TakesTreeLock(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCategoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1)`)).
		WithArgs(0x63617467).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "categories" ORDER BY tree_id, lft`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "tree_id", "lft", "rght", "level"}).AddRow(1, "men", 1, 1, 2, 0))
	mock.ExpectCommit()

	err := repo.Transaction(context.Background(), func(tx repository.CategoryRepository) error {
		got, err := tx.FindAllOrdered(context.Background())
		assert.Len(t, got, 1)
		return err
	})
	require.NoError(t, err)
}

func TestCategoryTransaction_LockFailureRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCategoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1)`)).
		WillReturnError(errors.New("canceling statement due to lock timeout"))
	mock.ExpectRollback()

	called := false
	err := repo.Transaction(context.Background(), func(repository.CategoryRepository) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestCategoryDelete_RemovesProductLinks(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCategoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "product_categories"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "categories"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Delete(context.Background(), 5))
}

func TestCategoryDelete_NotFoundRollsBack(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCategoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "product_categories"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "categories"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 5)
	assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)
}

func TestCategoryDelete_ForeignKeyIsProtected(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormCategoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "product_categories"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "categories"`)).
		WillReturnError(errors.New(`update or delete on table "categories" violates foreign key constraint "fk_categories_children"`))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrProtected)
}

func TestProductCreate_WritesCategoryLinks(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProductRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "product_categories"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "product_categories"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	p := &models.Product{WebID: "b03", Slug: "widstar", Name: "widstar", Description: "d", IsActive: true, UpdatedAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), p, []uint{1, 2, 2}))
	assert.Equal(t, uint(11), p.ID)
}

func TestProductCreate_DuplicateWebID(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProductRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "products"`)).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_products_web_id"`))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Product{WebID: "b03"}, []uint{1})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestProductFindAll_CountsBeforePaging(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormProductRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	active := true
	_, total, err := repo.FindAll(context.Background(), models.ProductFilter{CategoryIDs: []uint{1, 2}, IsActive: &active}, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestInventoryAttachValue_Duplicate(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormInventoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "product_attribute_values"`)).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "idx_attribute_value_inventory"`))
	mock.ExpectRollback()

	err := repo.AttachValue(context.Background(), 1, 2)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestInventoryDetachValue_NotLinked(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormInventoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "product_attribute_values"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.DetachValue(context.Background(), 1, 2)
	assert.ErrorIs(t, err, apperrors.ErrRecordNotFound)
}

func TestInventoryCreate(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormInventoryRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "product_inventory"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	inv := &models.ProductInventory{
		SKU: "7633969397", UPC: "100000000001", ProductTypeID: 1, ProductID: 1, IsActive: true,
		RetailPrice: decimal.RequireFromString("97.00"),
		StorePrice:  decimal.RequireFromString("92.00"),
		SalePrice:   decimal.RequireFromString("46.00"),
		Weight:      987,
	}
	require.NoError(t, repo.Create(context.Background(), inv))
	assert.Equal(t, uint(3), inv.ID)
}

func TestInventoryCountDependents(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormInventoryRepository(gormDB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "media"`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "stock"`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "product_attribute_values"`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	d, err := repo.CountDependents(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(3), d.Total())
}

func TestStockUpsert(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormStockRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "stock" .* ON CONFLICT \("product_inventory_id"\) DO UPDATE SET`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := repo.Upsert(context.Background(), &models.Stock{ProductInventoryID: 4, Units: 10, UnitsSold: 2})
	assert.NoError(t, err)
}

func TestAdminFindByUsername(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormAdminRepository(gormDB)

	rows := sqlmock.NewRows([]string{"id", "username", "password", "is_superuser", "is_staff", "is_active"}).
		AddRow(1, "admin", "$2a$10$hash", true, true, true)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "admin_users" WHERE username = $1`)).
		WillReturnRows(rows)

	u, err := repo.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.True(t, u.IsSuperuser)
}

func TestStatsCounts(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormStatsRepository(gormDB)

	for i := 0; i < 9; i++ {
		mock.ExpectQuery(`SELECT count\(\*\) FROM`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(i))
	}

	counts, err := repo.Counts(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 9)
	assert.Equal(t, "Categories", counts[0].Name)
	assert.Equal(t, int64(8), counts[8].Count)
}

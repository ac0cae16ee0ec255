package controllers_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"catalog-service/apperrors"
	"catalog-service/models"
	"catalog-service/services"
)

// fakeCRUD answers every call with the configured entity, items or error and
// remembers the last id and request it saw.
type fakeCRUD[T any, R any] struct {
	entity  *T
	items   []T
	err     *services.ServiceError
	lastID  uint
	lastReq *R
	page    int
	limit   int
}

func (f *fakeCRUD[T, R]) Create(_ context.Context, req *R) (*T, *services.ServiceError) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.entity, nil
}

func (f *fakeCRUD[T, R]) Update(_ context.Context, id uint, req *R) (*T, *services.ServiceError) {
	f.lastID, f.lastReq = id, req
	if f.err != nil {
		return nil, f.err
	}
	return f.entity, nil
}

func (f *fakeCRUD[T, R]) Delete(_ context.Context, id uint) *services.ServiceError {
	f.lastID = id
	return f.err
}

func (f *fakeCRUD[T, R]) Get(_ context.Context, id uint) (*T, *services.ServiceError) {
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.entity, nil
}

func (f *fakeCRUD[T, R]) List(_ context.Context, page, limit int) ([]T, int64, *services.ServiceError) {
	f.page, f.limit = page, limit
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.items, int64(len(f.items)), nil
}

type fakeValueService struct {
	*fakeCRUD[models.ProductAttributeValue, models.AttributeValueRequest]
	byAttribute uint
}

func (f *fakeValueService) ListByAttribute(_ context.Context, attributeID uint) ([]models.ProductAttributeValue, *services.ServiceError) {
	f.byAttribute = attributeID
	return f.items, nil
}

type fakeInventoryService struct {
	*fakeCRUD[models.ProductInventory, models.InventoryRequest]
	byProduct uint
	valueID   uint
	stock     *models.Stock
	stockErr  *services.ServiceError
	stockReq  *models.StockRequest
	checked   uint
}

func newFakeInventoryService() *fakeInventoryService {
	return &fakeInventoryService{fakeCRUD: &fakeCRUD[models.ProductInventory, models.InventoryRequest]{}}
}

func (f *fakeInventoryService) ListByProduct(_ context.Context, productID uint) ([]models.ProductInventory, *services.ServiceError) {
	f.byProduct = productID
	return f.items, nil
}

func (f *fakeInventoryService) AttachValue(_ context.Context, id, valueID uint) (*models.ProductInventory, *services.ServiceError) {
	f.lastID, f.valueID = id, valueID
	if f.err != nil {
		return nil, f.err
	}
	return f.entity, nil
}

func (f *fakeInventoryService) DetachValue(_ context.Context, id, valueID uint) *services.ServiceError {
	f.lastID, f.valueID = id, valueID
	return f.err
}

func (f *fakeInventoryService) ListStock(context.Context, int, int) ([]models.Stock, int64, *services.ServiceError) {
	if f.stock == nil {
		return []models.Stock{}, 0, nil
	}
	return []models.Stock{*f.stock}, 1, nil
}

func (f *fakeInventoryService) GetStock(_ context.Context, id uint) (*models.Stock, *services.ServiceError) {
	f.lastID = id
	if f.stockErr != nil {
		return nil, f.stockErr
	}
	return f.stock, nil
}

func (f *fakeInventoryService) SetStock(_ context.Context, id uint, req *models.StockRequest) (*models.Stock, *services.ServiceError) {
	f.lastID, f.stockReq = id, req
	if f.stockErr != nil {
		return nil, f.stockErr
	}
	return f.stock, nil
}

func (f *fakeInventoryService) MarkStockChecked(_ context.Context, id uint) (*models.Stock, *services.ServiceError) {
	f.checked = id
	return f.stock, f.stockErr
}

func (f *fakeInventoryService) DeleteStock(_ context.Context, id uint) *services.ServiceError {
	f.lastID = id
	return f.stockErr
}

type fakeMediaService struct {
	*fakeCRUD[models.Media, models.MediaRequest]
	byInventory uint
	presigned   *models.PresignRequest
	presignErr  *services.ServiceError
}

func newFakeMediaService() *fakeMediaService {
	return &fakeMediaService{fakeCRUD: &fakeCRUD[models.Media, models.MediaRequest]{}}
}

func (f *fakeMediaService) ListByInventory(_ context.Context, inventoryID uint) ([]models.Media, *services.ServiceError) {
	f.byInventory = inventoryID
	return f.items, nil
}

func (f *fakeMediaService) Presign(_ context.Context, req *models.PresignRequest) (*models.PresignResponse, *services.ServiceError) {
	f.presigned = req
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	return &models.PresignResponse{
		UploadURL: "https://bucket.example/upload",
		Key:       "inventory/1/photo.png",
		Headers:   map[string]string{"Content-Type": req.ContentType},
		ExpiresIn: 900,
	}, nil
}

type fakeCategoryService struct {
	category    *models.Category
	categories  []models.Category
	nodes       []*models.CategoryNode
	err         *services.ServiceError
	lastID      uint
	includeSelf bool
	lastReq     *models.CategoryRequest
}

func (f *fakeCategoryService) CreateCategory(_ context.Context, req *models.CategoryRequest) (*models.Category, *services.ServiceError) {
	f.lastReq = req
	return f.category, f.err
}

func (f *fakeCategoryService) UpdateCategory(_ context.Context, id uint, req *models.CategoryRequest) (*models.Category, *services.ServiceError) {
	f.lastID, f.lastReq = id, req
	return f.category, f.err
}

func (f *fakeCategoryService) DeleteCategory(_ context.Context, id uint) *services.ServiceError {
	f.lastID = id
	return f.err
}

func (f *fakeCategoryService) GetCategory(_ context.Context, id uint) (*models.Category, *services.ServiceError) {
	f.lastID = id
	return f.category, f.err
}

func (f *fakeCategoryService) ListCategories(context.Context, int, int) ([]models.Category, int64, *services.ServiceError) {
	return f.categories, int64(len(f.categories)), f.err
}

func (f *fakeCategoryService) Tree(context.Context) ([]*models.CategoryNode, *services.ServiceError) {
	return f.nodes, f.err
}

func (f *fakeCategoryService) Descendants(_ context.Context, id uint, includeSelf bool) ([]models.Category, *services.ServiceError) {
	f.lastID, f.includeSelf = id, includeSelf
	return f.categories, f.err
}

func (f *fakeCategoryService) Ancestors(_ context.Context, id uint, includeSelf bool) ([]models.Category, *services.ServiceError) {
	f.lastID, f.includeSelf = id, includeSelf
	return f.categories, f.err
}

func (f *fakeCategoryService) RebuildTree(context.Context) error { return nil }

type fakeProductService struct {
	product  *models.Product
	products []models.Product
	err      *services.ServiceError
	filter   services.ProductListFilter
	webID    string
	lastReq  *models.ProductRequest
}

func (f *fakeProductService) CreateProduct(_ context.Context, req *models.ProductRequest) (*models.Product, *services.ServiceError) {
	f.lastReq = req
	return f.product, f.err
}

func (f *fakeProductService) UpdateProduct(_ context.Context, _ uint, req *models.ProductRequest) (*models.Product, *services.ServiceError) {
	f.lastReq = req
	return f.product, f.err
}

func (f *fakeProductService) DeleteProduct(context.Context, uint) *services.ServiceError {
	return f.err
}

func (f *fakeProductService) GetProduct(context.Context, uint) (*models.Product, *services.ServiceError) {
	return f.product, f.err
}

func (f *fakeProductService) GetProductByWebID(_ context.Context, webID string) (*models.Product, *services.ServiceError) {
	f.webID = webID
	return f.product, f.err
}

func (f *fakeProductService) ListProducts(_ context.Context, filter services.ProductListFilter, _, _ int) ([]models.Product, int64, *services.ServiceError) {
	f.filter = filter
	return f.products, int64(len(f.products)), f.err
}

type fakeDashboardService struct{}

func (fakeDashboardService) ModelCounts(context.Context) ([]models.ModelCount, *services.ServiceError) {
	return []models.ModelCount{
		{Name: "Categories", Endpoint: "categories", Count: 2},
		{Name: "Products", Endpoint: "products", Count: 1},
	}, nil
}

// memAdminRepo keeps admin users in memory for the login flow.
type memAdminRepo struct {
	mu    sync.Mutex
	users map[uint]*models.AdminUser
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{users: make(map[uint]*models.AdminUser)}
}

func (r *memAdminRepo) Create(_ context.Context, user *models.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return apperrors.ErrDuplicate
		}
	}
	user.ID = uint(len(r.users) + 1)
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memAdminRepo) FindByID(_ context.Context, id uint) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, apperrors.ErrRecordNotFound
}

func (r *memAdminRepo) FindByUsername(_ context.Context, username string) (*models.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrRecordNotFound
}

func (r *memAdminRepo) TouchLastLogin(_ context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("missing user")
	}
	u.LastLogin = &at
	return nil
}

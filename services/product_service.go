package services

import (
	"context"
	"time"

	"catalog-service/cache"
	"catalog-service/models"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/validation"

	"go.uber.org/zap"
)

// ProductService defines the interface for product business logic.
type ProductService interface {
	CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, *ServiceError)
	UpdateProduct(ctx context.Context, id uint, req *models.ProductRequest) (*models.Product, *ServiceError)
	DeleteProduct(ctx context.Context, id uint) *ServiceError
	GetProduct(ctx context.Context, id uint) (*models.Product, *ServiceError)
	GetProductByWebID(ctx context.Context, webID string) (*models.Product, *ServiceError)
	ListProducts(ctx context.Context, filter ProductListFilter, page, limit int) ([]models.Product, int64, *ServiceError)
}

// ProductListFilter is the caller-facing filter. CategoryID matches the
// category and everything beneath it.
type ProductListFilter struct {
	CategoryID *uint
	IsActive   *bool
	Search     string
}

type productServiceImpl struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	cache      cache.Store
	metrics    aws_pkg.Recorder
	logger     *zap.Logger
	now        func() time.Time
}

func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	store cache.Store,
	metrics aws_pkg.Recorder,
	logger *zap.Logger,
) ProductService {
	if store == nil {
		store = cache.Noop{}
	}
	return &productServiceImpl{
		repo:       repo,
		categories: categories,
		cache:      store,
		metrics:    metrics,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req *models.ProductRequest) (*models.Product, *ServiceError) {
	if svcErr := s.validate(ctx, req); svcErr != nil {
		return nil, svcErr
	}

	product := &models.Product{
		WebID:       req.WebID,
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    boolOr(req.IsActive, true),
		UpdatedAt:   s.updatedAt(req),
	}
	if err := s.repo.Create(ctx, product, req.CategoryIDs); err != nil {
		return nil, fromRepo(s.logger, err, "Product with this web id", "Failed to create product")
	}

	recordCount(ctx, s.metrics, aws_pkg.MetricProductsCreated)
	s.logger.Info("Product created", zap.Uint("id", product.ID), zap.String("web_id", product.WebID))
	return s.GetProduct(ctx, product.ID)
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, id uint, req *models.ProductRequest) (*models.Product, *ServiceError) {
	if svcErr := s.validate(ctx, req); svcErr != nil {
		return nil, svcErr
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo(s.logger, err, "Product", "Failed to fetch product")
	}

	product.WebID = req.WebID
	product.Slug = req.Slug
	product.Name = req.Name
	product.Description = req.Description
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.UpdatedAt = s.updatedAt(req)
	product.Categories = nil

	if err := s.repo.Update(ctx, product, req.CategoryIDs); err != nil {
		return nil, fromRepo(s.logger, err, "Product with this web id", "Failed to update product")
	}

	s.cache.InvalidateProduct(ctx, id)
	s.logger.Info("Product updated", zap.Uint("id", id))
	return s.GetProduct(ctx, id)
}

// DeleteProduct refuses while inventory rows reference the product.
func (s *productServiceImpl) DeleteProduct(ctx context.Context, id uint) *ServiceError {
	n, err := s.repo.CountInventory(ctx, id)
	if err != nil {
		return fromRepo(s.logger, err, "Product", "Failed to delete product")
	}
	if n > 0 {
		return conflict("Product has inventory items and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fromRepo(s.logger, err, "Product", "Failed to delete product")
	}

	s.cache.InvalidateProduct(ctx, id)
	s.logger.Info("Product deleted", zap.Uint("id", id))
	return nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, id uint) (*models.Product, *ServiceError) {
	cached, version, ok := s.cache.GetProduct(ctx, id)
	if ok {
		return cached, nil
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepo(s.logger, err, "Product", "Failed to fetch product")
	}
	s.cache.SetProductAsync(version, product)
	return product, nil
}

func (s *productServiceImpl) GetProductByWebID(ctx context.Context, webID string) (*models.Product, *ServiceError) {
	product, err := s.repo.FindByWebID(ctx, webID)
	if err != nil {
		return nil, fromRepo(s.logger, err, "Product", "Failed to fetch product")
	}
	return product, nil
}

func (s *productServiceImpl) ListProducts(ctx context.Context, filter ProductListFilter, page, limit int) ([]models.Product, int64, *ServiceError) {
	repoFilter := models.ProductFilter{IsActive: filter.IsActive, Search: filter.Search}

	if filter.CategoryID != nil {
		category, err := s.categories.FindByID(ctx, *filter.CategoryID)
		if err != nil {
			return nil, 0, fromRepo(s.logger, err, "Category", "Failed to list products")
		}
		descendants, err := s.categories.FindDescendants(ctx, category)
		if err != nil {
			return nil, 0, fromRepo(s.logger, err, "Category", "Failed to list products")
		}
		repoFilter.CategoryIDs = append(repoFilter.CategoryIDs, category.ID)
		for _, d := range descendants {
			repoFilter.CategoryIDs = append(repoFilter.CategoryIDs, d.ID)
		}
	}

	products, total, err := s.repo.FindAll(ctx, repoFilter, page, limit)
	if err != nil {
		return nil, 0, fromRepo(s.logger, err, "Product", "Failed to list products")
	}
	return products, total, nil
}

// validate checks the payload and that every category exists.
func (s *productServiceImpl) validate(ctx context.Context, req *models.ProductRequest) *ServiceError {
	if err := validation.Struct(req); err != nil {
		return badRequest(err.Error())
	}
	for _, id := range req.CategoryIDs {
		if _, err := s.categories.FindByID(ctx, id); err != nil {
			return badRequest("Category not found")
		}
	}
	return nil
}

func (s *productServiceImpl) updatedAt(req *models.ProductRequest) time.Time {
	if req.UpdatedAt != nil {
		return req.UpdatedAt.UTC()
	}
	return s.now()
}

// recordCount emits a business metric without blocking the request.
func recordCount(ctx context.Context, metrics aws_pkg.Recorder, name string) {
	if metrics == nil || !metrics.IsEnabled() {
		return
	}
	go func() {
		mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = metrics.RecordCount(mctx, name, map[string]string{"Service": "catalog-service"})
	}()
}

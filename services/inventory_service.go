package services

import (
	"context"
	"time"

	"catalog-service/models"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/repository"
	"catalog-service/validation"

	"go.uber.org/zap"
)

// InventoryService manages sellable variants together with their attribute
// links and stock.
type InventoryService interface {
	CRUDService[models.ProductInventory, models.InventoryRequest]
	ListByProduct(ctx context.Context, productID uint) ([]models.ProductInventory, *ServiceError)
	AttachValue(ctx context.Context, id, valueID uint) (*models.ProductInventory, *ServiceError)
	DetachValue(ctx context.Context, id, valueID uint) *ServiceError
	ListStock(ctx context.Context, page, limit int) ([]models.Stock, int64, *ServiceError)
	GetStock(ctx context.Context, id uint) (*models.Stock, *ServiceError)
	SetStock(ctx context.Context, id uint, req *models.StockRequest) (*models.Stock, *ServiceError)
	MarkStockChecked(ctx context.Context, id uint) (*models.Stock, *ServiceError)
	DeleteStock(ctx context.Context, id uint) *ServiceError
}

// InventoryDeps bundles the repositories the inventory service reads.
type InventoryDeps struct {
	Inventory    repository.InventoryRepository
	Products     repository.ProductRepository
	ProductTypes repository.ProductTypeRepository
	Brands       repository.BrandRepository
	Values       repository.AttributeValueRepository
	Stock        repository.StockRepository
}

type inventoryServiceImpl struct {
	*crudService[models.ProductInventory, models.InventoryRequest]
	deps InventoryDeps
	now  func() time.Time
}

func NewInventoryService(deps InventoryDeps, metrics aws_pkg.Recorder, logger *zap.Logger) InventoryService {
	s := &inventoryServiceImpl{
		deps: deps,
		now:  func() time.Time { return time.Now().UTC() },
	}
	s.crudService = &crudService[models.ProductInventory, models.InventoryRequest]{
		repo:    deps.Inventory,
		subject: "Inventory item",
		logger:  logger,
		apply:   applyInventory,
		check:   s.checkRefs,
		guard: func(ctx context.Context, id uint) *ServiceError {
			d, err := deps.Inventory.CountDependents(ctx, id)
			if err != nil {
				return fromRepo(logger, err, "Inventory item", "Failed to check references")
			}
			if d.Total() > 0 {
				return conflict("Inventory item has dependent records and cannot be deleted")
			}
			return nil
		},
		afterWrite: func(ctx context.Context, _ *models.ProductInventory, created bool) {
			if created {
				recordCount(ctx, metrics, aws_pkg.MetricInventoryCreated)
			}
		},
	}
	return s
}

// Create reloads the row so the response carries its relations.
func (s *inventoryServiceImpl) Create(ctx context.Context, req *models.InventoryRequest) (*models.ProductInventory, *ServiceError) {
	inv, svcErr := s.crudService.Create(ctx, req)
	if svcErr != nil {
		return nil, svcErr
	}
	return s.Get(ctx, inv.ID)
}

func (s *inventoryServiceImpl) Update(ctx context.Context, id uint, req *models.InventoryRequest) (*models.ProductInventory, *ServiceError) {
	if _, svcErr := s.crudService.Update(ctx, id, req); svcErr != nil {
		return nil, svcErr
	}
	return s.Get(ctx, id)
}

func (s *inventoryServiceImpl) ListByProduct(ctx context.Context, productID uint) ([]models.ProductInventory, *ServiceError) {
	items, err := s.deps.Inventory.FindByProduct(ctx, productID)
	if err != nil {
		return nil, fromRepo(s.logger, err, "Inventory item", "Failed to list inventory items")
	}
	return items, nil
}

func (s *inventoryServiceImpl) AttachValue(ctx context.Context, id, valueID uint) (*models.ProductInventory, *ServiceError) {
	if _, svcErr := s.Get(ctx, id); svcErr != nil {
		return nil, svcErr
	}
	if _, err := s.deps.Values.FindByID(ctx, valueID); err != nil {
		return nil, fromRepo(s.logger, err, "Product attribute value", "Failed to fetch product attribute value")
	}
	if err := s.deps.Inventory.AttachValue(ctx, id, valueID); err != nil {
		return nil, fromRepo(s.logger, err, "Attribute value link", "Failed to link attribute value")
	}
	s.logger.Info("Attribute value linked", zap.Uint("inventory_id", id), zap.Uint("value_id", valueID))
	return s.Get(ctx, id)
}

func (s *inventoryServiceImpl) DetachValue(ctx context.Context, id, valueID uint) *ServiceError {
	if err := s.deps.Inventory.DetachValue(ctx, id, valueID); err != nil {
		return fromRepo(s.logger, err, "Attribute value link", "Failed to unlink attribute value")
	}
	s.logger.Info("Attribute value unlinked", zap.Uint("inventory_id", id), zap.Uint("value_id", valueID))
	return nil
}

func (s *inventoryServiceImpl) ListStock(ctx context.Context, page, limit int) ([]models.Stock, int64, *ServiceError) {
	items, total, err := s.deps.Stock.FindAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fromRepo(s.logger, err, "Stock", "Failed to list stock")
	}
	return items, total, nil
}

func (s *inventoryServiceImpl) GetStock(ctx context.Context, id uint) (*models.Stock, *ServiceError) {
	stock, err := s.deps.Stock.FindByInventory(ctx, id)
	if err != nil {
		return nil, fromRepo(s.logger, err, "Stock", "Failed to fetch stock")
	}
	return stock, nil
}

// SetStock creates or overwrites the stock row. Omitted units_sold keeps the
// stored value.
func (s *inventoryServiceImpl) SetStock(ctx context.Context, id uint, req *models.StockRequest) (*models.Stock, *ServiceError) {
	if err := validation.Struct(req); err != nil {
		return nil, badRequest(err.Error())
	}
	if _, svcErr := s.crudService.Get(ctx, id); svcErr != nil {
		return nil, svcErr
	}

	stock := &models.Stock{ProductInventoryID: id, Units: *req.Units, LastChecked: req.LastChecked}
	if existing, err := s.deps.Stock.FindByInventory(ctx, id); err == nil {
		stock.UnitsSold = existing.UnitsSold
		if stock.LastChecked == nil {
			stock.LastChecked = existing.LastChecked
		}
	}
	if req.UnitsSold != nil {
		stock.UnitsSold = *req.UnitsSold
	}

	if err := s.deps.Stock.Upsert(ctx, stock); err != nil {
		return nil, fromRepo(s.logger, err, "Stock", "Failed to save stock")
	}
	s.logger.Info("Stock saved", zap.Uint("inventory_id", id), zap.Int("units", stock.Units))
	return s.GetStock(ctx, id)
}

func (s *inventoryServiceImpl) MarkStockChecked(ctx context.Context, id uint) (*models.Stock, *ServiceError) {
	if err := s.deps.Stock.MarkChecked(ctx, id, s.now()); err != nil {
		return nil, fromRepo(s.logger, err, "Stock", "Failed to update stock")
	}
	return s.GetStock(ctx, id)
}

func (s *inventoryServiceImpl) DeleteStock(ctx context.Context, id uint) *ServiceError {
	if err := s.deps.Stock.Delete(ctx, id); err != nil {
		return fromRepo(s.logger, err, "Stock", "Failed to delete stock")
	}
	s.logger.Info("Stock deleted", zap.Uint("inventory_id", id))
	return nil
}

// checkRefs enforces the price format and that referenced rows exist.
func (s *inventoryServiceImpl) checkRefs(ctx context.Context, req *models.InventoryRequest) *ServiceError {
	if err := validation.Price("retail_price", *req.RetailPrice); err != nil {
		return badRequest(err.Error())
	}
	if err := validation.Price("store_price", *req.StorePrice); err != nil {
		return badRequest(err.Error())
	}
	if err := validation.Price("sale_price", *req.SalePrice); err != nil {
		return badRequest(err.Error())
	}
	if *req.Weight < 0 {
		return badRequest("weight must not be negative")
	}

	if _, err := s.deps.Products.FindByID(ctx, req.ProductID); err != nil {
		return badRequest("Product not found")
	}
	if _, err := s.deps.ProductTypes.FindByID(ctx, req.ProductTypeID); err != nil {
		return badRequest("Product type not found")
	}
	if req.BrandID != nil {
		if _, err := s.deps.Brands.FindByID(ctx, *req.BrandID); err != nil {
			return badRequest("Brand not found")
		}
	}
	return nil
}

func applyInventory(req *models.InventoryRequest, inv *models.ProductInventory) {
	if inv.ID == 0 {
		inv.IsActive = boolOr(req.IsActive, true)
	} else if req.IsActive != nil {
		inv.IsActive = *req.IsActive
	}
	inv.SKU = req.SKU
	inv.UPC = req.UPC
	inv.ProductTypeID = req.ProductTypeID
	inv.ProductID = req.ProductID
	inv.BrandID = req.BrandID
	inv.RetailPrice = *req.RetailPrice
	inv.StorePrice = *req.StorePrice
	inv.SalePrice = *req.SalePrice
	inv.Weight = *req.Weight

	inv.ProductType = nil
	inv.Product = nil
	inv.Brand = nil
	inv.Attributes = nil
	inv.Media = nil
	inv.Stock = nil
}

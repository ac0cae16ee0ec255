package services

import (
	"context"

	"catalog-service/models"
	"catalog-service/repository"

	"go.uber.org/zap"
)

type (
	ProductTypeService = CRUDService[models.ProductType, models.NameRequest]
	BrandService       = CRUDService[models.Brand, models.NameRequest]
	AttributeService   = CRUDService[models.ProductAttribute, models.AttributeRequest]
)

// AttributeValueService manages the values an attribute can take.
type AttributeValueService interface {
	CRUDService[models.ProductAttributeValue, models.AttributeValueRequest]
	ListByAttribute(ctx context.Context, attributeID uint) ([]models.ProductAttributeValue, *ServiceError)
}

// NewProductTypeService refuses to delete a type that inventory rows use.
func NewProductTypeService(repo repository.ProductTypeRepository, logger *zap.Logger) ProductTypeService {
	return &crudService[models.ProductType, models.NameRequest]{
		repo:    repo,
		subject: "Product type",
		logger:  logger,
		apply: func(req *models.NameRequest, t *models.ProductType) {
			t.Name = req.Name
		},
		guard: protectedBy(logger, repo.CountInventory, "Product type is used by inventory items and cannot be deleted"),
	}
}

func NewBrandService(repo repository.BrandRepository, logger *zap.Logger) BrandService {
	return &crudService[models.Brand, models.NameRequest]{
		repo:    repo,
		subject: "Brand",
		logger:  logger,
		apply: func(req *models.NameRequest, b *models.Brand) {
			b.Name = req.Name
		},
		guard: protectedBy(logger, repo.CountInventory, "Brand is used by inventory items and cannot be deleted"),
	}
}

func NewAttributeService(repo repository.AttributeRepository, logger *zap.Logger) AttributeService {
	return &crudService[models.ProductAttribute, models.AttributeRequest]{
		repo:    repo,
		subject: "Product attribute",
		logger:  logger,
		apply: func(req *models.AttributeRequest, a *models.ProductAttribute) {
			a.Name = req.Name
			a.Description = req.Description
		},
		guard: protectedBy(logger, repo.CountValues, "Product attribute has values and cannot be deleted"),
	}
}

type attributeValueServiceImpl struct {
	*crudService[models.ProductAttributeValue, models.AttributeValueRequest]
	values repository.AttributeValueRepository
}

func NewAttributeValueService(
	repo repository.AttributeValueRepository,
	attributes repository.AttributeRepository,
	logger *zap.Logger,
) AttributeValueService {
	base := &crudService[models.ProductAttributeValue, models.AttributeValueRequest]{
		repo:    repo,
		subject: "Product attribute value",
		logger:  logger,
		apply: func(req *models.AttributeValueRequest, v *models.ProductAttributeValue) {
			v.ProductAttributeID = req.ProductAttributeID
			v.AttributeValue = req.AttributeValue
			v.ProductAttribute = nil
		},
		check: func(ctx context.Context, req *models.AttributeValueRequest) *ServiceError {
			if _, err := attributes.FindByID(ctx, req.ProductAttributeID); err != nil {
				return badRequest("Product attribute not found")
			}
			return nil
		},
		guard: protectedBy(logger, repo.CountLinks, "Product attribute value is used by inventory items and cannot be deleted"),
	}
	return &attributeValueServiceImpl{crudService: base, values: repo}
}

func (s *attributeValueServiceImpl) ListByAttribute(ctx context.Context, attributeID uint) ([]models.ProductAttributeValue, *ServiceError) {
	values, err := s.values.FindByAttribute(ctx, attributeID)
	if err != nil {
		return nil, fromRepo(s.logger, err, "Product attribute value", "Failed to list product attribute values")
	}
	return values, nil
}

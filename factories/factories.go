// Package factories builds catalog rows for tests. Names are sequenced so
// repeated calls never collide on unique columns; everything else comes from
// a seeded faker and is reproducible.
package factories

import (
	"fmt"
	"sync"
	"time"

	"catalog-service/models"
	"catalog-service/services"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

type Factory struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
	seq   int
}

// New returns a factory whose faker is seeded with seed.
func New(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

func (f *Factory) next() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.seq
	f.seq++
	return n
}

// Category builds an active category named cat_slug_<n>.
func (f *Factory) Category(parentID *uint) *models.Category {
	n := f.next()
	return &models.Category{
		Name:     fmt.Sprintf("cat_slug_%d", n),
		Slug:     f.faker.Lexify("cat_slug_??????"),
		IsActive: true,
		ParentID: parentID,
	}
}

func (f *Factory) CategoryRequest(parentID *uint) *models.CategoryRequest {
	c := f.Category(parentID)
	return &models.CategoryRequest{Name: c.Name, Slug: c.Slug, ParentID: parentID}
}

func (f *Factory) Product() *models.Product {
	n := f.next()
	return &models.Product{
		WebID:       fmt.Sprintf("%d%s", n, f.faker.Numerify("#######")),
		Slug:        f.faker.Lexify("product_slug_??????"),
		Name:        fmt.Sprintf("%s %s %d", f.faker.Adjective(), f.faker.Noun(), n),
		Description: f.faker.Paragraph(1, 2, 12, " "),
		IsActive:    true,
		UpdatedAt:   time.Now().UTC(),
	}
}

func (f *Factory) ProductRequest(categoryIDs ...uint) *models.ProductRequest {
	p := f.Product()
	return &models.ProductRequest{
		WebID:       p.WebID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		CategoryIDs: categoryIDs,
	}
}

func (f *Factory) ProductType() *models.ProductType {
	return &models.ProductType{Name: fmt.Sprintf("type_%d", f.next())}
}

func (f *Factory) Brand() *models.Brand {
	return &models.Brand{Name: fmt.Sprintf("%s_%d", f.faker.Company(), f.next())}
}

func (f *Factory) Attribute() *models.ProductAttribute {
	return &models.ProductAttribute{
		Name:        fmt.Sprintf("attribute_%d", f.next()),
		Description: f.faker.Sentence(6),
	}
}

func (f *Factory) AttributeValue(attributeID uint) *models.ProductAttributeValue {
	return &models.ProductAttributeValue{
		ProductAttributeID: attributeID,
		AttributeValue:     f.faker.Color(),
	}
}

// Inventory builds a variant whose prices satisfy the decimal(5,2) rule and
// whose sale price never exceeds the store price.
func (f *Factory) Inventory(productID, productTypeID uint, brandID *uint) *models.ProductInventory {
	n := f.next()
	retail := f.price(50, 999)
	store := retail.Mul(decimal.RequireFromString("0.95")).Round(2)
	sale := store.Mul(decimal.RequireFromString("0.5")).Round(2)
	return &models.ProductInventory{
		SKU:           fmt.Sprintf("%d%s", n, f.faker.Numerify("#########")),
		UPC:           fmt.Sprintf("%03d%s", n%1000, f.faker.Numerify("#########")),
		ProductTypeID: productTypeID,
		ProductID:     productID,
		BrandID:       brandID,
		IsActive:      true,
		RetailPrice:   retail,
		StorePrice:    store,
		SalePrice:     sale,
		Weight:        f.faker.Float64Range(100, 2000),
	}
}

func (f *Factory) InventoryRequest(productID, productTypeID uint, brandID *uint) *models.InventoryRequest {
	inv := f.Inventory(productID, productTypeID, brandID)
	return &models.InventoryRequest{
		SKU:           inv.SKU,
		UPC:           inv.UPC,
		ProductTypeID: productTypeID,
		ProductID:     productID,
		BrandID:       brandID,
		RetailPrice:   &inv.RetailPrice,
		StorePrice:    &inv.StorePrice,
		SalePrice:     &inv.SalePrice,
		Weight:        &inv.Weight,
	}
}

func (f *Factory) Media(inventoryID uint, feature bool) *models.Media {
	return &models.Media{
		ProductInventoryID: inventoryID,
		Image:              models.DefaultImagePath,
		AltText:            f.faker.Sentence(4),
		IsFeature:          feature,
	}
}

func (f *Factory) Stock(inventoryID uint) *models.Stock {
	units := f.faker.Number(0, 500)
	return &models.Stock{
		ProductInventoryID: inventoryID,
		Units:              units,
		UnitsSold:          f.faker.Number(0, units),
	}
}

// AdminUser builds an active staff superuser with a bcrypt password.
func (f *Factory) AdminUser(username, password string) (*models.AdminUser, error) {
	hash, err := services.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &models.AdminUser{
		Username:    username,
		Email:       f.faker.Email(),
		Password:    hash,
		IsSuperuser: true,
		IsStaff:     true,
		IsActive:    true,
	}, nil
}

func (f *Factory) price(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(f.faker.Float64Range(min, max)).Round(2)
}

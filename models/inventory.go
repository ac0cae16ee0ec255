package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductInventory is a sellable variant (SKU) of a product.
type ProductInventory struct {
	ID            uint                     `gorm:"primaryKey" json:"id"`
	SKU           string                   `gorm:"column:sku;type:varchar(20);uniqueIndex;not null" json:"sku"`
	UPC           string                   `gorm:"column:upc;type:varchar(12);uniqueIndex;not null" json:"upc"`
	ProductTypeID uint                     `gorm:"not null;index" json:"product_type_id"`
	ProductType   *ProductType             `gorm:"constraint:OnDelete:RESTRICT" json:"product_type,omitempty"`
	ProductID     uint                     `gorm:"not null;index" json:"product_id"`
	Product       *Product                 `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	BrandID       *uint                    `gorm:"index" json:"brand_id"`
	Brand         *Brand                   `gorm:"constraint:OnDelete:RESTRICT" json:"brand,omitempty"`
	Attributes    []ProductAttributeValues `gorm:"foreignKey:ProductInventoryID" json:"attribute_values,omitempty"`
	IsActive      bool                     `gorm:"not null" json:"is_active"`
	RetailPrice   decimal.Decimal          `gorm:"type:decimal(5,2);not null" json:"retail_price"`
	StorePrice    decimal.Decimal          `gorm:"type:decimal(5,2);not null" json:"store_price"`
	SalePrice     decimal.Decimal          `gorm:"type:decimal(5,2);not null" json:"sale_price"`
	Weight        float64                  `gorm:"not null" json:"weight"`
	CreatedAt     time.Time                `gorm:"autoCreateTime;<-:create" json:"created_at"`
	UpdatedAt     time.Time                `gorm:"autoUpdateTime" json:"updated_at"`

	Media []Media `gorm:"foreignKey:ProductInventoryID" json:"media,omitempty"`
	Stock *Stock  `gorm:"foreignKey:ProductInventoryID" json:"stock,omitempty"`
}

func (ProductInventory) TableName() string { return "product_inventory" }

func (i ProductInventory) String() string { return i.SKU }

// ProductAttributeValues links an attribute value to an inventory row.
// Each pair may exist once.
type ProductAttributeValues struct {
	ID                 uint                   `gorm:"primaryKey" json:"id"`
	AttributeValueID   uint                   `gorm:"not null;uniqueIndex:idx_attribute_value_inventory" json:"attribute_value_id"`
	AttributeValue     *ProductAttributeValue `gorm:"foreignKey:AttributeValueID;constraint:OnDelete:RESTRICT" json:"attribute_value,omitempty"`
	ProductInventoryID uint                   `gorm:"not null;uniqueIndex:idx_attribute_value_inventory;index" json:"product_inventory_id"`
	ProductInventory   *ProductInventory      `gorm:"foreignKey:ProductInventoryID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (ProductAttributeValues) TableName() string { return "product_attribute_values" }

// InventoryRequest is the payload for creating or updating an inventory row.
type InventoryRequest struct {
	SKU           string           `json:"sku" binding:"required,max=20"`
	UPC           string           `json:"upc" binding:"required,max=12"`
	ProductTypeID uint             `json:"product_type_id" binding:"required"`
	ProductID     uint             `json:"product_id" binding:"required"`
	BrandID       *uint            `json:"brand_id"`
	IsActive      *bool            `json:"is_active"`
	RetailPrice   *decimal.Decimal `json:"retail_price" binding:"required"`
	StorePrice    *decimal.Decimal `json:"store_price" binding:"required"`
	SalePrice     *decimal.Decimal `json:"sale_price" binding:"required"`
	Weight        *float64         `json:"weight" binding:"required"`
}

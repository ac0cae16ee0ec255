package models

import "time"

// Product is the catalog-level item. Sellable variants live in ProductInventory.
type Product struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WebID       string     `gorm:"column:web_id;type:varchar(50);uniqueIndex;not null" json:"web_id"`
	Slug        string     `gorm:"type:varchar(255);not null;index" json:"slug"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Categories  []Category `gorm:"many2many:product_categories" json:"categories,omitempty"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;<-:create" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime:false;not null" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p Product) String() string { return p.Name }

// ProductCategory is the product/category join row.
type ProductCategory struct {
	ProductID  uint `gorm:"primaryKey;autoIncrement:false"`
	CategoryID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

func (ProductCategory) TableName() string { return "product_categories" }

// ProductRequest is the payload for creating or updating a product.
type ProductRequest struct {
	WebID       string     `json:"web_id" binding:"required,max=50"`
	Slug        string     `json:"slug" binding:"required,max=255,slug"`
	Name        string     `json:"name" binding:"required,max=255"`
	Description string     `json:"description" binding:"required"`
	CategoryIDs []uint     `json:"category_ids" binding:"required,min=1"`
	IsActive    *bool      `json:"is_active"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	CategoryIDs []uint
	IsActive    *bool
	Search      string
}

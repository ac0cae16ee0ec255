package models

import "time"

const DefaultImagePath = "images/default.png"

// Media is an image attached to an inventory row.
type Media struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	ProductInventoryID uint              `gorm:"not null;index" json:"product_inventory_id"`
	ProductInventory   *ProductInventory `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	Image              string            `gorm:"type:varchar(255);not null" json:"image"`
	AltText            string            `gorm:"type:varchar(255);not null" json:"alt_text"`
	IsFeature          bool              `gorm:"not null" json:"is_feature"`
	CreatedAt          time.Time         `gorm:"autoCreateTime;<-:create" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Media) TableName() string { return "media" }

// Stock holds unit counts for exactly one inventory row.
type Stock struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	ProductInventoryID uint              `gorm:"not null;uniqueIndex" json:"product_inventory_id"`
	ProductInventory   *ProductInventory `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	LastChecked        *time.Time        `json:"last_checked"`
	Units              int               `gorm:"not null;default:0" json:"units"`
	UnitsSold          int               `gorm:"not null;default:0" json:"units_sold"`
}

func (Stock) TableName() string { return "stock" }

type MediaRequest struct {
	ProductInventoryID uint   `json:"product_inventory_id" binding:"required"`
	Image              string `json:"image" binding:"max=255"`
	AltText            string `json:"alt_text" binding:"required,max=255"`
	IsFeature          bool   `json:"is_feature"`
}

// PresignRequest asks for an upload URL for a new inventory image.
type PresignRequest struct {
	ProductInventoryID uint   `json:"product_inventory_id" binding:"required"`
	Filename           string `json:"filename" binding:"required,max=200"`
	ContentType        string `json:"content_type" binding:"required"`
	ExpiresIn          int64  `json:"expires_in"`
}

type PresignResponse struct {
	UploadURL string            `json:"upload_url"`
	Key       string            `json:"key"`
	Headers   map[string]string `json:"headers"`
	ExpiresIn int64             `json:"expires_in"`
}

type StockRequest struct {
	Units       *int       `json:"units" binding:"required,gte=0"`
	UnitsSold   *int       `json:"units_sold" binding:"omitempty,gte=0"`
	LastChecked *time.Time `json:"last_checked"`
}

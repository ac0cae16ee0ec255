package models

// ProductType groups inventory variants, e.g. "shoe" or "t-shirt".
type ProductType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
}

func (ProductType) TableName() string { return "product_types" }

func (t ProductType) String() string { return t.Name }

type Brand struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
}

func (Brand) TableName() string { return "brands" }

func (b Brand) String() string { return b.Name }

// ProductAttribute names a variant dimension such as colour or size.
type ProductAttribute struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text;not null" json:"description"`
}

func (ProductAttribute) TableName() string { return "product_attributes" }

func (a ProductAttribute) String() string { return a.Name }

type ProductAttributeValue struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	ProductAttributeID uint              `gorm:"not null;index" json:"product_attribute_id"`
	ProductAttribute   *ProductAttribute `gorm:"constraint:OnDelete:RESTRICT" json:"product_attribute,omitempty"`
	AttributeValue     string            `gorm:"type:varchar(255);not null" json:"attribute_value"`
}

func (ProductAttributeValue) TableName() string { return "product_attribute_value" }

func (v ProductAttributeValue) String() string {
	if v.ProductAttribute != nil {
		return v.ProductAttribute.Name + " : " + v.AttributeValue
	}
	return v.AttributeValue
}

// NameRequest is the payload for product types and brands.
type NameRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type AttributeRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
}

type AttributeValueRequest struct {
	ProductAttributeID uint   `json:"product_attribute_id" binding:"required"`
	AttributeValue     string `json:"attribute_value" binding:"required,max=255"`
}

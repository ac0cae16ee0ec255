// Package fixtures loads catalog data dumped in the loaddata layout: a JSON
// array of {"model": "<app>.<model>", "pk": n, "fields": {...}} records.
package fixtures

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"catalog-service/models"

	"github.com/shopspring/decimal"
)

// Record is one entry of a fixture file.
type Record struct {
	Model  string          `json:"model"`
	PK     uint            `json:"pk"`
	Fields json.RawMessage `json:"fields"`
}

// Row is a decoded record ready to be written. Links holds the category
// memberships of a product.
type Row struct {
	Table string
	Value interface{}
	Links []models.ProductCategory
}

// Decode reads every record of a fixture file.
func Decode(r io.Reader) ([]Record, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return records, nil
}

type decoder func(pk uint, raw json.RawMessage) (Row, error)

var decoders = map[string]decoder{
	"auth.user":                        decodeUser,
	"inventory.category":               decodeCategory,
	"inventory.product":                decodeProduct,
	"inventory.producttype":            decodeProductType,
	"inventory.brand":                  decodeBrand,
	"inventory.productattribute":       decodeAttribute,
	"inventory.productattributevalue":  decodeAttributeValue,
	"inventory.productinventory":       decodeInventory,
	"inventory.productattributevalues": decodeInventoryValue,
	"inventory.media":                  decodeMedia,
	"inventory.stock":                  decodeStock,
}

// Row converts the record into its model. Unknown labels are an error.
func (rec Record) Row() (Row, error) {
	decode, ok := decoders[rec.Model]
	if !ok {
		return Row{}, fmt.Errorf("unknown fixture model %q (pk %d)", rec.Model, rec.PK)
	}
	if rec.PK == 0 {
		return Row{}, fmt.Errorf("fixture %s has no pk", rec.Model)
	}
	row, err := decode(rec.PK, rec.Fields)
	if err != nil {
		return Row{}, fmt.Errorf("fixture %s pk %d: %w", rec.Model, rec.PK, err)
	}
	return row, nil
}

func unmarshal(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing fields")
	}
	return json.Unmarshal(raw, v)
}

func decodeUser(pk uint, raw json.RawMessage) (Row, error) {
	var f struct {
		Username    string     `json:"username"`
		Email       string     `json:"email"`
		Password    string     `json:"password"`
		IsSuperuser bool       `json:"is_superuser"`
		IsStaff     bool       `json:"is_staff"`
		IsActive    *bool      `json:"is_active"`
		LastLogin   *time.Time `json:"last_login"`
		DateJoined  *time.Time `json:"date_joined"`
	}
	if err := unmarshal(raw, &f); err != nil {
		return Row{}, err
	}
	if f.Username == "" || f.Password == "" {
		return Row{}, fmt.Errorf("username and password are required")
	}
	user := &models.AdminUser{
		ID:          pk,
		Username:    f.Username,
		Email:       f.Email,
		Password:    f.Password,
		IsSuperuser: f.IsSuperuser,
		IsStaff:     f.IsStaff,
		IsActive:    f.IsActive == nil || *f.IsActive,
		LastLogin:   f.LastLogin,
	}
	if f.DateJoined != nil {
		user.DateJoined = *f.DateJoined
	}
	return Row{Table: user.TableName(), Value: user}, nil
}

func decodeCategory(pk uint, raw json.RawMessage) (Row, error) {
	var f struct {
		Name     string `json:"name"`
		Slug     string `json:"slug"`
		IsActive *bool  `json:"is_active"`
		Parent   *uint  `json:"parent"`
	}
	if err := unmarshal(raw, &f); err != nil {
		return Row{}, err
	}
	c := &models.Category{
		ID:       pk,
		Name:     f.Name,
		Slug:     f.Slug,
		IsActive: f.IsActive == nil || *f.IsActive,
		ParentID: f.Parent,
	}
	return Row{Table: c.TableName(), Value: c}, nil
}

func decodeProduct(pk uint, raw json.RawMessage) (Row, error) {
	var f struct {
		WebID       string     `json:"web_id"`
		Slug        string     `json:"slug"`
		Name        string     `json:"name"`
		Description string     `json:"description"`
		Category    []uint     `json:"category"`
		IsActive    *bool      `json:"is_active"`
		CreatedAt   *time.Time `json:"created_at"`
		UpdatedAt   *time.Time `json:"updated_at"`
	}
	if err := unmarshal(raw, &f); err != nil {
		return Row{}, err
	}
	p := &models.Product{
		ID:          pk,
		WebID:       f.WebID,
		Slug:        f.Slug,
		Name:        f.Name,
		Description: f.Description,
		IsActive:    f.IsActive == nil || *f.IsActive,
		UpdatedAt:   time.Now().UTC(),
	}
	if f.CreatedAt != nil {
		p.CreatedAt = *f.CreatedAt
	}
	if f.UpdatedAt != nil {
		p.UpdatedAt = *f.UpdatedAt
	}
	links := make([]models.ProductCategory, 0, len(f.Category))
	for _, id := range f.Category {
		links = append(links, models.ProductCategory{ProductID: pk, CategoryID: id})
	}
	return Row{Table: p.TableName(), Value: p, Links: links}, nil
}

func decodeProductType(pk uint, raw json.RawMessage) (Row, error) {
	var f struct {
		Name string `json:"name"`
	}
	if err := unmarshal(raw, &f); err != nil {
		return Row{}, err
	}
	t := &models.ProductType{ID: pk, Name: f.Name}
	return Row{Table: t.TableName(), Value: t}, nil
}

func decodeBrand(pk uint, raw json.RawMessage) (Row, error) {
	var f struct {
		Name string `json:"name"`
	}
	if err := unmarshal(raw, &f); err != nil {
		return Row{}, err
	}
	b := &models.Brand{ID: pk, Name: f.Name}
	return Row{Table: b.TableName(), Value: b}, nil
}

func decodeAttribute(pk uint, raw json.RawMessage) (Row, error) {
	var f struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := unmarshal(raw, &f); err != nil {
		return Row{}, err
	}
	a := &models.ProductAttribute{ID: pk, Name: f.Name, Description: f.Description}
	return Row{Table: a.TableName(), Value: a}, nil
}

func decodeAttributeValue(pk uint, raw json.RawMessage) (Row, error) {
	var f struct {
		ProductAttribute uint   `json:"product_attribute"`
		AttributeValue   string `json:"attribute_value"`
	}
	if err := unmarshal(raw, &f); err != nil {
		return Row{}, err
	}
	v := &models.ProductAttributeValue{ID: pk, ProductAttributeID: f.ProductAttribute, AttributeValue: f.AttributeValue}
	return Row{Table: v.TableName(), Value: v}, nil
}

func decodeInventory(pk uint, raw json.RawMessage) (Row, error) {
	var f struct {
		SKU         string          `json:"sku"`
		UPC         string          `json:"upc"`
		ProductType uint            `json:"product_type"`
		Product     uint            `json:"product"`
		Brand       *uint           `json:"brand"`
		IsActive    *bool           `json:"is_active"`
		RetailPrice decimal.Decimal `json:"retail_price"`
		StorePrice  decimal.Decimal `json:"store_price"`
		SalePrice   decimal.Decimal `json:"sale_price"`
		Weight      float64         `json:"weight"`
		CreatedAt   *time.Time      `json:"created_at"`
	}
	if err := unmarshal(raw, &f); err != nil {
		return Row{}, err
	}
	inv := &models.ProductInventory{
		ID:            pk,
		SKU:           f.SKU,
		UPC:           f.UPC,
		ProductTypeID: f.ProductType,
		ProductID:     f.Product,
		BrandID:       f.Brand,
		IsActive:      f.IsActive == nil || *f.IsActive,
		RetailPrice:   f.RetailPrice,
		StorePrice:    f.StorePrice,
		SalePrice:     f.SalePrice,
		Weight:        f.Weight,
	}
	if f.CreatedAt != nil {
		inv.CreatedAt = *f.CreatedAt
	}
	return Row{Table: inv.TableName(), Value: inv}, nil
}

func decodeInventoryValue(pk uint, raw json.RawMessage) (Row, error) {
	var f struct {
		AttributeValues  uint `json:"attributevalues"`
		ProductInventory uint `json:"productinventory"`
	}
	if err := unmarshal(raw, &f); err != nil {
		return Row{}, err
	}
	link := &models.ProductAttributeValues{ID: pk, AttributeValueID: f.AttributeValues, ProductInventoryID: f.ProductInventory}
	return Row{Table: link.TableName(), Value: link}, nil
}

func decodeMedia(pk uint, raw json.RawMessage) (Row, error) {
	var f struct {
		ProductInventory uint   `json:"product_inventory"`
		Image            string `json:"image"`
		AltText          string `json:"alt_text"`
		IsFeature        bool   `json:"is_feature"`
	}
	if err := unmarshal(raw, &f); err != nil {
		return Row{}, err
	}
	if f.Image == "" {
		f.Image = models.DefaultImagePath
	}
	m := &models.Media{ID: pk, ProductInventoryID: f.ProductInventory, Image: f.Image, AltText: f.AltText, IsFeature: f.IsFeature}
	return Row{Table: m.TableName(), Value: m}, nil
}

func decodeStock(pk uint, raw json.RawMessage) (Row, error) {
	var f struct {
		ProductInventory uint       `json:"product_inventory"`
		LastChecked      *time.Time `json:"last_checked"`
		Units            int        `json:"units"`
		UnitsSold        int        `json:"units_sold"`
	}
	if err := unmarshal(raw, &f); err != nil {
		return Row{}, err
	}
	s := &models.Stock{ID: pk, ProductInventoryID: f.ProductInventory, LastChecked: f.LastChecked, Units: f.Units, UnitsSold: f.UnitsSold}
	return Row{Table: s.TableName(), Value: s}, nil
}

package services_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"catalog-service/apperrors"
	"catalog-service/models"
	"catalog-service/repository"
	"catalog-service/tree"
)

// memStore is an in-memory repository.Store keyed by the entity's ID.
type memStore[T any] struct {
	mu    sync.Mutex
	items map[uint]T
	next  uint
	id    func(*T) *uint
	// unique returns a key that must not repeat across rows; empty means none.
	unique func(*T) string
}

func newMemStore[T any](id func(*T) *uint) *memStore[T] {
	return &memStore[T]{items: make(map[uint]T), id: id}
}

func (s *memStore[T]) Create(_ context.Context, entity *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.duplicate(entity) {
		return apperrors.ErrDuplicate
	}
	s.next++
	*s.id(entity) = s.next
	s.items[s.next] = *entity
	return nil
}

func (s *memStore[T]) FindByID(_ context.Context, id uint) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entity, ok := s.items[id]
	if !ok {
		return nil, apperrors.ErrRecordNotFound
	}
	return &entity, nil
}

func (s *memStore[T]) FindAll(_ context.Context, page, limit int) ([]T, int64, error) {
	all := s.all()
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (s *memStore[T]) Update(_ context.Context, entity *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := *s.id(entity)
	if _, ok := s.items[id]; !ok {
		return apperrors.ErrRecordNotFound
	}
	if s.duplicate(entity) {
		return apperrors.ErrDuplicate
	}
	s.items[id] = *entity
	return nil
}

func (s *memStore[T]) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return apperrors.ErrRecordNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *memStore[T]) all() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.items[id])
	}
	return out
}

func (s *memStore[T]) duplicate(entity *T) bool {
	if s.unique == nil {
		return false
	}
	key := s.unique(entity)
	for id, other := range s.items {
		if id != *s.id(entity) && s.unique(&other) == key {
			return true
		}
	}
	return false
}

// --- categories ---

type memCategoryRepo struct {
	*memStore[models.Category]
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{memStore: newMemStore(func(c *models.Category) *uint { return &c.ID })}
}

func (r *memCategoryRepo) FindAllOrdered(context.Context) ([]models.Category, error) {
	all := r.all()
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].TreeID != all[j].TreeID {
			return all[i].TreeID < all[j].TreeID
		}
		return all[i].Lft < all[j].Lft
	})
	return all, nil
}

func (r *memCategoryRepo) FindChildren(_ context.Context, id uint) ([]models.Category, error) {
	var out []models.Category
	for _, c := range r.all() {
		if c.ParentID != nil && *c.ParentID == id {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) FindDescendants(ctx context.Context, c *models.Category) ([]models.Category, error) {
	all, _ := r.FindAllOrdered(ctx)
	var out []models.Category
	for _, o := range all {
		if o.TreeID == c.TreeID && o.Lft > c.Lft && o.Rght < c.Rght {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) FindAncestors(ctx context.Context, c *models.Category) ([]models.Category, error) {
	all, _ := r.FindAllOrdered(ctx)
	var out []models.Category
	for _, o := range all {
		if o.TreeID == c.TreeID && o.Lft < c.Lft && o.Rght > c.Rght {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memCategoryRepo) CountChildren(ctx context.Context, id uint) (int64, error) {
	children, _ := r.FindChildren(ctx, id)
	return int64(len(children)), nil
}

func (r *memCategoryRepo) SaveTree(_ context.Context, nodes []tree.Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range nodes {
		c, ok := r.items[n.ID]
		if !ok {
			return apperrors.ErrRecordNotFound
		}
		c.TreeID, c.Lft, c.Rght, c.Level = n.TreeID, n.Lft, n.Rght, n.Level
		r.items[n.ID] = c
	}
	return nil
}

func (r *memCategoryRepo) Transaction(_ context.Context, fn func(repo repository.CategoryRepository) error) error {
	return fn(r)
}

// racingCategoryRepo runs afterRead once, right after the first
// FindAllOrdered returns, standing in for a write that commits mid-request.
type racingCategoryRepo struct {
	*memCategoryRepo
	afterRead func()
}

func (r *racingCategoryRepo) FindAllOrdered(ctx context.Context) ([]models.Category, error) {
	all, err := r.memCategoryRepo.FindAllOrdered(ctx)
	if r.afterRead != nil {
		hook := r.afterRead
		r.afterRead = nil
		hook()
	}
	return all, err
}

// --- cache ---

// memCache is a synchronous, versioned cache.Store.
type memCache struct {
	mu          sync.Mutex
	version     int64
	trees       map[int64][]*models.CategoryNode
	products    map[string]models.Product
	productHits int
}

func newMemCache() *memCache {
	return &memCache{version: 1, trees: map[int64][]*models.CategoryNode{}, products: map[string]models.Product{}}
}

func productCacheKey(version int64, id uint) string { return fmt.Sprintf("%d:%d", version, id) }

func (m *memCache) GetCategoryTree(context.Context) ([]*models.CategoryNode, int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	nodes, ok := m.trees[m.version]
	return nodes, m.version, ok
}

func (m *memCache) SetCategoryTreeAsync(version int64, nodes []*models.CategoryNode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if version > 0 {
		m.trees[version] = nodes
	}
}

func (m *memCache) InvalidateCategories(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version++
}

func (m *memCache) GetProduct(_ context.Context, id uint) (*models.Product, int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productCacheKey(m.version, id)]
	if !ok {
		return nil, m.version, false
	}
	m.productHits++
	return &p, m.version, true
}

func (m *memCache) SetProductAsync(version int64, product *models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if version > 0 && product != nil {
		m.products[productCacheKey(version, product.ID)] = *product
	}
}

func (m *memCache) InvalidateProduct(_ context.Context, id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, productCacheKey(m.version, id))
}

// --- products ---

type memProductRepo struct {
	*memStore[models.Product]
	links     map[uint][]uint
	inventory map[uint]int64
	// categories, when set, fills in linked category rows on reads.
	categories *memCategoryRepo
}

func newMemProductRepo() *memProductRepo {
	s := newMemStore(func(p *models.Product) *uint { return &p.ID })
	s.unique = func(p *models.Product) string { return p.WebID }
	return &memProductRepo{memStore: s, links: map[uint][]uint{}, inventory: map[uint]int64{}}
}

func (r *memProductRepo) Create(ctx context.Context, p *models.Product, categoryIDs []uint) error {
	if err := r.memStore.Create(ctx, p); err != nil {
		return err
	}
	r.links[p.ID] = append([]uint(nil), categoryIDs...)
	return nil
}

func (r *memProductRepo) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	p, err := r.memStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Categories = nil
	for _, cid := range r.links[id] {
		c := models.Category{ID: cid}
		if r.categories != nil {
			if found, err := r.categories.FindByID(ctx, cid); err == nil {
				c = *found
			}
		}
		p.Categories = append(p.Categories, c)
	}
	return p, nil
}

func (r *memProductRepo) FindByWebID(_ context.Context, webID string) (*models.Product, error) {
	for _, p := range r.all() {
		if p.WebID == webID {
			return &p, nil
		}
	}
	return nil, apperrors.ErrRecordNotFound
}

func (r *memProductRepo) FindBySlug(_ context.Context, slug string) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.all() {
		if p.Slug == slug {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindAll(_ context.Context, f models.ProductFilter, page, limit int) ([]models.Product, int64, error) {
	var out []models.Product
	for _, p := range r.all() {
		if f.IsActive != nil && p.IsActive != *f.IsActive {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		if len(f.CategoryIDs) > 0 && !overlaps(r.links[p.ID], f.CategoryIDs) {
			continue
		}
		out = append(out, p)
	}
	total := int64(len(out))
	start := (page - 1) * limit
	if start > len(out) {
		start = len(out)
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *memProductRepo) Update(ctx context.Context, p *models.Product, categoryIDs []uint) error {
	if err := r.memStore.Update(ctx, p); err != nil {
		return err
	}
	if categoryIDs != nil {
		r.links[p.ID] = append([]uint(nil), categoryIDs...)
	}
	return nil
}

func (r *memProductRepo) Delete(ctx context.Context, id uint) error {
	delete(r.links, id)
	return r.memStore.Delete(ctx, id)
}

func (r *memProductRepo) CountInventory(_ context.Context, id uint) (int64, error) {
	return r.inventory[id], nil
}

func overlaps(a, b []uint) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// --- lookups ---

type memProductTypeRepo struct {
	*memStore[models.ProductType]
	used map[uint]int64
}

func newMemProductTypeRepo() *memProductTypeRepo {
	s := newMemStore(func(t *models.ProductType) *uint { return &t.ID })
	s.unique = func(t *models.ProductType) string { return t.Name }
	return &memProductTypeRepo{memStore: s, used: map[uint]int64{}}
}

func (r *memProductTypeRepo) CountInventory(_ context.Context, id uint) (int64, error) {
	return r.used[id], nil
}

type memBrandRepo struct {
	*memStore[models.Brand]
	used map[uint]int64
}

func newMemBrandRepo() *memBrandRepo {
	s := newMemStore(func(b *models.Brand) *uint { return &b.ID })
	s.unique = func(b *models.Brand) string { return b.Name }
	return &memBrandRepo{memStore: s, used: map[uint]int64{}}
}

func (r *memBrandRepo) CountInventory(_ context.Context, id uint) (int64, error) {
	return r.used[id], nil
}

type memAttributeRepo struct {
	*memStore[models.ProductAttribute]
	values *memAttributeValueRepo
}

func newMemAttributeRepo() *memAttributeRepo {
	s := newMemStore(func(a *models.ProductAttribute) *uint { return &a.ID })
	s.unique = func(a *models.ProductAttribute) string { return a.Name }
	return &memAttributeRepo{memStore: s}
}

func (r *memAttributeRepo) CountValues(ctx context.Context, id uint) (int64, error) {
	if r.values == nil {
		return 0, nil
	}
	values, _ := r.values.FindByAttribute(ctx, id)
	return int64(len(values)), nil
}

type memAttributeValueRepo struct {
	*memStore[models.ProductAttributeValue]
	links map[uint]int64
}

func newMemAttributeValueRepo() *memAttributeValueRepo {
	return &memAttributeValueRepo{
		memStore: newMemStore(func(v *models.ProductAttributeValue) *uint { return &v.ID }),
		links:    map[uint]int64{},
	}
}

func (r *memAttributeValueRepo) FindByAttribute(_ context.Context, attributeID uint) ([]models.ProductAttributeValue, error) {
	var out []models.ProductAttributeValue
	for _, v := range r.all() {
		if v.ProductAttributeID == attributeID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memAttributeValueRepo) CountLinks(_ context.Context, id uint) (int64, error) {
	return r.links[id], nil
}

// --- inventory, media and stock ---

type memInventoryRepo struct {
	*memStore[models.ProductInventory]
	values     map[uint][]uint
	dependents map[uint]repository.InventoryDependents
}

func newMemInventoryRepo() *memInventoryRepo {
	s := newMemStore(func(i *models.ProductInventory) *uint { return &i.ID })
	s.unique = func(i *models.ProductInventory) string { return i.SKU }
	return &memInventoryRepo{memStore: s, values: map[uint][]uint{}, dependents: map[uint]repository.InventoryDependents{}}
}

func (r *memInventoryRepo) FindByID(ctx context.Context, id uint) (*models.ProductInventory, error) {
	inv, err := r.memStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Attributes = nil
	for _, v := range r.values[id] {
		inv.Attributes = append(inv.Attributes, models.ProductAttributeValues{AttributeValueID: v, ProductInventoryID: id})
	}
	return inv, nil
}

func (r *memInventoryRepo) FindBySKU(_ context.Context, sku string) (*models.ProductInventory, error) {
	for _, i := range r.all() {
		if i.SKU == sku {
			return &i, nil
		}
	}
	return nil, apperrors.ErrRecordNotFound
}

func (r *memInventoryRepo) FindByUPC(_ context.Context, upc string) (*models.ProductInventory, error) {
	for _, i := range r.all() {
		if i.UPC == upc {
			return &i, nil
		}
	}
	return nil, apperrors.ErrRecordNotFound
}

func (r *memInventoryRepo) FindByProduct(_ context.Context, productID uint) ([]models.ProductInventory, error) {
	var out []models.ProductInventory
	for _, i := range r.all() {
		if i.ProductID == productID {
			out = append(out, i)
		}
	}
	return out, nil
}

func (r *memInventoryRepo) AttachValue(_ context.Context, inventoryID, valueID uint) error {
	for _, v := range r.values[inventoryID] {
		if v == valueID {
			return apperrors.ErrDuplicate
		}
	}
	r.values[inventoryID] = append(r.values[inventoryID], valueID)
	return nil
}

func (r *memInventoryRepo) DetachValue(_ context.Context, inventoryID, valueID uint) error {
	values := r.values[inventoryID]
	for i, v := range values {
		if v == valueID {
			r.values[inventoryID] = append(values[:i], values[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrRecordNotFound
}

func (r *memInventoryRepo) CountDependents(_ context.Context, id uint) (repository.InventoryDependents, error) {
	d := r.dependents[id]
	d.AttributeValues += int64(len(r.values[id]))
	return d, nil
}

type memMediaRepo struct {
	*memStore[models.Media]
}

func newMemMediaRepo() *memMediaRepo {
	return &memMediaRepo{memStore: newMemStore(func(m *models.Media) *uint { return &m.ID })}
}

func (r *memMediaRepo) FindByInventory(_ context.Context, inventoryID uint) ([]models.Media, error) {
	var out []models.Media
	for _, m := range r.all() {
		if m.ProductInventoryID == inventoryID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsFeature && !out[j].IsFeature })
	return out, nil
}

type memStockRepo struct {
	mu    sync.Mutex
	items map[uint]models.Stock
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{items: map[uint]models.Stock{}}
}

func (r *memStockRepo) FindAll(_ context.Context, page, limit int) ([]models.Stock, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Stock, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductInventoryID < out[j].ProductInventoryID })
	total := int64(len(out))
	start := (page - 1) * limit
	if start > len(out) {
		start = len(out)
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *memStockRepo) FindByInventory(_ context.Context, inventoryID uint) (*models.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[inventoryID]
	if !ok {
		return nil, apperrors.ErrRecordNotFound
	}
	return &s, nil
}

func (r *memStockRepo) Upsert(_ context.Context, stock *models.Stock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.items[stock.ProductInventoryID]; ok {
		stock.ID = existing.ID
	} else {
		stock.ID = uint(len(r.items) + 1)
	}
	r.items[stock.ProductInventoryID] = *stock
	return nil
}

func (r *memStockRepo) MarkChecked(_ context.Context, inventoryID uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[inventoryID]
	if !ok {
		return apperrors.ErrRecordNotFound
	}
	s.LastChecked = &at
	r.items[inventoryID] = s
	return nil
}

func (r *memStockRepo) Delete(_ context.Context, inventoryID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[inventoryID]; !ok {
		return apperrors.ErrRecordNotFound
	}
	delete(r.items, inventoryID)
	return nil
}

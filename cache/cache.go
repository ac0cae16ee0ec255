package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"catalog-service/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	CategoryVersionKey = "catalog:categories:version"
	CategoryTreePrefix = "catalog:categories:v:"
	ProductCachePrefix = "catalog:product:"

	DefaultTTL = 10 * time.Minute
)

// Store caches read-mostly catalog views. Misses and backend failures are
// indistinguishable to callers; the database stays authoritative.
//
// Every entry lives under the catalog version. Getters report the version
// they looked under and setters take it back, so a value built from a read
// that raced with InvalidateCategories lands under a key nobody reads. A
// version of 0 means none could be read and the setter does nothing.
type Store interface {
	GetCategoryTree(ctx context.Context) ([]*models.CategoryNode, int64, bool)
	SetCategoryTreeAsync(version int64, nodes []*models.CategoryNode)
	InvalidateCategories(ctx context.Context)
	GetProduct(ctx context.Context, id uint) (*models.Product, int64, bool)
	SetProductAsync(version int64, product *models.Product)
	InvalidateProduct(ctx context.Context, id uint)
}

// Manager implements Store on Redis. A category write bumps the version, so
// cached trees and product details, which embed their categories, are
// orphaned at once and simply expire.
type Manager struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewManager(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{redis: client, ttl: ttl, logger: logger}
}

// NewClient parses a redis:// URL and pings the server.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func (m *Manager) GetCategoryTree(ctx context.Context) ([]*models.CategoryNode, int64, bool) {
	version, err := m.getCategoryVersion(ctx)
	if err != nil {
		return nil, 0, false
	}

	raw, err := m.redis.Get(ctx, treeKey(version)).Bytes()
	if err != nil {
		return nil, version, false
	}

	var nodes []*models.CategoryNode
	if err := json.Unmarshal(raw, &nodes); err != nil {
		m.logger.Warn("Failed to unmarshal cached category tree", zap.Error(err))
		return nil, version, false
	}
	return nodes, version, true
}

func (m *Manager) SetCategoryTreeAsync(version int64, nodes []*models.CategoryNode) {
	if version <= 0 {
		return
	}
	payload, err := json.Marshal(nodes)
	if err != nil {
		m.logger.Warn("Failed to marshal category tree for cache", zap.Error(err))
		return
	}
	m.setAsync(treeKey(version), payload, zap.Int64("version", version))
}

// InvalidateCategories bumps the catalog version, dropping cached trees and
// product details together.
func (m *Manager) InvalidateCategories(ctx context.Context) {
	version, err := m.redis.Incr(ctx, CategoryVersionKey).Result()
	if err != nil {
		m.logger.Error("Failed to invalidate category cache", zap.Error(err))
		return
	}
	m.logger.Debug("Category cache invalidated", zap.Int64("new_version", version))
}

func (m *Manager) GetProduct(ctx context.Context, id uint) (*models.Product, int64, bool) {
	version, err := m.getCategoryVersion(ctx)
	if err != nil {
		return nil, 0, false
	}
	raw, err := m.redis.Get(ctx, productKey(version, id)).Bytes()
	if err != nil {
		return nil, version, false
	}
	var p models.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		m.logger.Warn("Failed to unmarshal cached product", zap.Error(err), zap.Uint("product_id", id))
		return nil, version, false
	}
	return &p, version, true
}

func (m *Manager) SetProductAsync(version int64, product *models.Product) {
	if product == nil || version <= 0 {
		return
	}
	payload, err := json.Marshal(product)
	if err != nil {
		m.logger.Warn("Failed to marshal product for cache", zap.Error(err), zap.Uint("product_id", product.ID))
		return
	}
	m.setAsync(productKey(version, product.ID), payload, zap.Uint("product_id", product.ID))
}

// InvalidateProduct drops the product's entry under the current version.
func (m *Manager) InvalidateProduct(ctx context.Context, id uint) {
	version, err := m.getCategoryVersion(ctx)
	if err != nil {
		m.logger.Warn("Failed to delete product cache", zap.Error(err), zap.Uint("product_id", id))
		return
	}
	if err := m.redis.Del(ctx, productKey(version, id)).Err(); err != nil {
		m.logger.Warn("Failed to delete product cache", zap.Error(err), zap.Uint("product_id", id))
	}
}

func (m *Manager) setAsync(key string, payload []byte, field zap.Field) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.redis.Set(ctx, key, payload, m.ttl).Err(); err != nil {
			m.logger.Warn("Failed to write cache entry", zap.Error(err), zap.String("key", key), field)
		}
	}()
}

// getCategoryVersion returns the current tree version, creating it on first use.
func (m *Manager) getCategoryVersion(ctx context.Context) (int64, error) {
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		ver, err := m.redis.Get(ctx, CategoryVersionKey).Int64()
		if err == nil && ver > 0 {
			return ver, nil
		}
		if errors.Is(err, redis.Nil) {
			if err := m.redis.SetNX(ctx, CategoryVersionKey, 1, 0).Err(); err == nil {
				continue
			}
		}
		if i < maxRetries-1 {
			time.Sleep(50 * time.Millisecond)
		}
	}
	return 0, fmt.Errorf("failed to get cache version after %d retries", maxRetries)
}

func treeKey(version int64) string {
	return CategoryTreePrefix + strconv.FormatInt(version, 10) + ":tree"
}

func productKey(version int64, id uint) string {
	return ProductCachePrefix + "v" + strconv.FormatInt(version, 10) + ":" + strconv.FormatUint(uint64(id), 10)
}

// Noop is used when no Redis is configured.
type Noop struct{}

func (Noop) GetCategoryTree(context.Context) ([]*models.CategoryNode, int64, bool) {
	return nil, 0, false
}
func (Noop) SetCategoryTreeAsync(int64, []*models.CategoryNode) {}
func (Noop) InvalidateCategories(context.Context) {}
func (Noop) GetProduct(context.Context, uint) (*models.Product, int64, bool) { return nil, 0, false }
func (Noop) SetProductAsync(int64, *models.Product) {}
func (Noop) InvalidateProduct(context.Context, uint) {}

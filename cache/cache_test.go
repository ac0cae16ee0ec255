package cache_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"catalog-service/cache"
	"catalog-service/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// unreachableClient returns a client whose every command fails fast.
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:       "127.0.0.1:0",
		MaxRetries: -1,
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return nil, errors.New("redis unavailable")
		},
	})
}

func TestManager_DegradesToMiss(t *testing.T) {
	m := cache.NewManager(unreachableClient(), time.Minute, zap.NewNop())
	ctx := context.Background()

	_, version, ok := m.GetCategoryTree(ctx)
	assert.False(t, ok)
	assert.Zero(t, version)

	_, version, ok = m.GetProduct(ctx, 1)
	assert.False(t, ok)
	assert.Zero(t, version)

	assert.NotPanics(t, func() {
		m.InvalidateCategories(ctx)
		m.InvalidateProduct(ctx, 1)
		m.SetProductAsync(1, &models.Product{ID: 1, Name: "shoe"})
		m.SetCategoryTreeAsync(1, []*models.CategoryNode{{ID: 1, Name: "root"}})
	})
}

func TestNoop(t *testing.T) {
	var s cache.Store = cache.Noop{}
	_, _, ok := s.GetCategoryTree(context.Background())
	assert.False(t, ok)
	_, _, ok = s.GetProduct(context.Background(), 7)
	assert.False(t, ok)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := cache.NewClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}

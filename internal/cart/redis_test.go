package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/obarros/lojinha/internal/store"
)

func setupRedisStorage(t *testing.T) *RedisStorage {
	t.Helper()
	c := context.Background()

	container, err := testRedis.Run(c, "redis:7.4.1-alpine3.20")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(c); err != nil {
			t.Logf("failed terminating redis container with error: %s", err)
		}
	})

	connStr, err := container.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	options, err := redis.ParseURL(connStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	client := redis.NewClient(options)
	t.Cleanup(func() { client.Close() })

	return NewRedisStorage(client)
}

func TestRedisStorageRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	c := context.Background()
	storage := setupRedisStorage(t)

	_, ok, err := storage.Load(c, "missing")
	assert.NoError(t, err)
	assert.False(t, ok)

	product := store.Product{
		ID:    uuid.New(),
		Name:  "caneca",
		Price: decimal.RequireFromString("29.90"),
	}
	manager := NewManager(c, storage, "user")
	manager.AddToCart(c, product)
	manager.AddToCart(c, product)

	restored := NewManager(c, storage, "user")

	assert.Len(t, restored.Items(), 1)
	assert.EqualValues(t, 2, restored.Quantity(product.ID))
	assert.True(t, restored.Subtotal().Equal(decimal.RequireFromString("59.80")))
}

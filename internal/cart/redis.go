package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps carts in the shared cache so they survive
// process restarts and are visible to every instance.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func cartKey(key string) string {
	return fmt.Sprintf("carts:%s", key)
}

func (s *RedisStorage) Load(c context.Context, key string) ([]byte, bool, error) {
	saved, err := s.client.Get(c, cartKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed getting cart from cache with error=%w", err)
	}
	return saved, true, nil
}

func (s *RedisStorage) Save(c context.Context, key string, value []byte) error {
	if err := s.client.Set(c, cartKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed setting cart in cache with error=%w", err)
	}
	return nil
}

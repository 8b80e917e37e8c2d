package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"returns-desk/config"
	"returns-desk/internal/domain/entity"
	"returns-desk/internal/domain/port"
)

const (
	itemKeyPrefix = "item:"
	categoriesKey = "categories"
)

// RedisCache кэш карточек товаров и списка категорий.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisCache(cfg *config.RedisConfig, log *zap.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
		log:    log,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetItem возвращает карточку из кэша, (nil, nil) при промахе.
func (c *RedisCache) GetItem(ctx context.Context, itemNumber string) (*entity.ItemDetails, error) {
	var item entity.ItemDetails
	found, err := c.get(ctx, itemKeyPrefix+itemNumber, &item)
	if err != nil || !found {
		return nil, err
	}
	return &item, nil
}

func (c *RedisCache) SetItem(ctx context.Context, item *entity.ItemDetails) error {
	return c.set(ctx, itemKeyPrefix+item.ItemNumber, item)
}

// InvalidateItem удаляет карточку после изменения модели решений.
func (c *RedisCache) InvalidateItem(ctx context.Context, itemNumber string) error {
	return c.client.Del(ctx, itemKeyPrefix+itemNumber).Err()
}

func (c *RedisCache) GetCategories(ctx context.Context) ([]string, error) {
	var categories []string
	found, err := c.get(ctx, categoriesKey, &categories)
	if err != nil || !found {
		return nil, err
	}
	return categories, nil
}

func (c *RedisCache) SetCategories(ctx context.Context, categories []string) error {
	return c.set(ctx, categoriesKey, categories)
}

func (c *RedisCache) get(ctx context.Context, key string, out any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // промах
		}
		return false, err
	}

	if err := json.Unmarshal(data, out); err != nil {
		c.log.Error("failed to unmarshal cached value",
			zap.String("key", key), zap.Error(err))
		return false, err
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Проверка реализации интерфейса
var _ port.ItemCache = (*RedisCache)(nil)

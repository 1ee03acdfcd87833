// Package cache содержит кеш токена доступа PayPal на базе Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "paypal:access_token:"

// TokenKey возвращает ключ токена для пары адрес API + идентификатор клиента.
func TokenKey(baseURL, clientID string) string {
	sum := sha256.Sum256([]byte(baseURL + "\x00" + clientID))
	return tokenKeyPrefix + hex.EncodeToString(sum[:8])
}

// RedisTokenCache хранит токен доступа PayPal в Redis.
type RedisTokenCache struct {
	client *redis.Client
	key    string
}

// NewRedisTokenCache создаёт кеш поверх подключения к Redis по указанному адресу.
// key обычно получают из TokenKey.
func NewRedisTokenCache(addr, key string) *RedisTokenCache {
	return NewRedisTokenCacheFromClient(redis.NewClient(&redis.Options{Addr: addr}), key)
}

// NewRedisTokenCacheFromClient создаёт кеш поверх готового клиента Redis.
func NewRedisTokenCacheFromClient(client *redis.Client, key string) *RedisTokenCache {
	return &RedisTokenCache{client: client, key: key}
}

// Ping проверяет доступность Redis.
func (c *RedisTokenCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close закрывает подключение к Redis.
func (c *RedisTokenCache) Close() error {
	return c.client.Close()
}

// Get возвращает закешированный токен; ok == false, если токена нет.
func (c *RedisTokenCache) Get(ctx context.Context) (string, bool, error) {
	token, err := c.client.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get token: %w", err)
	}
	return token, true, nil
}

// Set сохраняет токен на время ttl.
func (c *RedisTokenCache) Set(ctx context.Context, token string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key, token, ttl).Err(); err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	return nil
}

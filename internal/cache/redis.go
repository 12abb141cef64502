// Package cache is a Redis read-through cache for data the client fetches
// often and that changes rarely: eligibility sets and the product list.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
)

const keyPrefix = "storefront:"

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient creates a Redis client and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Redis implements the store's SizeCache and ProductCache.
type Redis struct {
	client      *redis.Client
	sizesTTL    time.Duration
	productsTTL time.Duration
}

// New creates a Redis cache.
func New(client *redis.Client, sizesTTL, productsTTL time.Duration) *Redis {
	return &Redis{
		client:      client,
		sizesTTL:    sizesTTL,
		productsTTL: productsTTL,
	}
}

func sizesKey(userID, productID string) string {
	return keyPrefix + "sizes:" + userID + ":" + productID
}

const productsKey = keyPrefix + "products"

// GetSizes returns the cached eligibility set of (userID, productID).
func (r *Redis) GetSizes(ctx context.Context, userID, productID string) ([]string, bool, error) {
	var sizes []string
	ok, err := r.get(ctx, sizesKey(userID, productID), &sizes)
	if err != nil {
		return nil, false, fmt.Errorf("get sizes: %w", err)
	}
	return sizes, ok, nil
}

// SetSizes caches the eligibility set of (userID, productID).
func (r *Redis) SetSizes(ctx context.Context, userID, productID string, sizes []string) error {
	if sizes == nil {
		sizes = []string{}
	}
	if err := r.set(ctx, sizesKey(userID, productID), sizes, r.sizesTTL); err != nil {
		return fmt.Errorf("set sizes: %w", err)
	}
	return nil
}

// ForgetSizes drops the cached eligibility set of (userID, productID).
func (r *Redis) ForgetSizes(ctx context.Context, userID, productID string) error {
	if err := r.client.Del(ctx, sizesKey(userID, productID)).Err(); err != nil {
		return fmt.Errorf("redis del sizes: %w", err)
	}
	return nil
}

// GetProducts returns the cached product list.
func (r *Redis) GetProducts(ctx context.Context) ([]domain.Product, bool, error) {
	var products []domain.Product
	ok, err := r.get(ctx, productsKey, &products)
	if err != nil {
		return nil, false, fmt.Errorf("get products: %w", err)
	}
	return products, ok, nil
}

// SetProducts caches the product list.
func (r *Redis) SetProducts(ctx context.Context, products []domain.Product) error {
	if err := r.set(ctx, productsKey, products, r.productsTTL); err != nil {
		return fmt.Errorf("set products: %w", err)
	}
	return nil
}

// ForgetProducts drops the cached product list.
func (r *Redis) ForgetProducts(ctx context.Context) error {
	if err := r.client.Del(ctx, productsKey).Err(); err != nil {
		return fmt.Errorf("redis del products: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (r *Redis) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

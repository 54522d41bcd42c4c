package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snapdish/backend/internal/model"
)

const (
	userKeyPrefix = "snapdish:user:"
	scanKeyPrefix = "snapdish:scan:"
)

// RedisStore persists the two maps as JSON values in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisClient creates a Redis client from discrete settings, or from a
// Redis URL when one is provided (for production deployments).
func NewRedisClient(host, port, password string, db int, url string) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	}

	if url != "" {
		parsedOpts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opts = parsedOpts
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Store] Successfully connected to Redis at %s", opts.Addr)
	return client, nil
}

// NewRedisStore wraps a connected client as a Store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// LoadUsers scans all user keys and decodes their JSON values.
func (r *RedisStore) LoadUsers(ctx context.Context) (map[string]*model.UserRecord, error) {
	out := make(map[string]*model.UserRecord)
	err := r.forEachKey(ctx, userKeyPrefix, func(key string, data []byte) error {
		var user model.UserRecord
		if err := json.Unmarshal(data, &user); err != nil {
			return fmt.Errorf("failed to unmarshal user record %s: %w", key, err)
		}
		out[user.DeviceID] = &user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadScans scans all scan keys and decodes their JSON values.
func (r *RedisStore) LoadScans(ctx context.Context) (map[string]*model.Scan, error) {
	out := make(map[string]*model.Scan)
	err := r.forEachKey(ctx, scanKeyPrefix, func(key string, data []byte) error {
		var payload struct {
			model.Scan
			ImageBase64 string `json:"imageBase64"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal scan %s: %w", key, err)
		}
		scan := payload.Scan
		scan.ImageBase64 = payload.ImageBase64
		out[scan.ID] = &scan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveUser stores a user record as JSON under its device key.
func (r *RedisStore) SaveUser(ctx context.Context, user *model.UserRecord) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user record: %w", err)
	}
	if err := r.client.Set(ctx, userKeyPrefix+user.DeviceID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save user record to Redis: %w", err)
	}
	return nil
}

// SaveScan stores a scan as JSON under its scan key. ImageBase64 is part of
// the scan record and rides along in the JSON value.
func (r *RedisStore) SaveScan(ctx context.Context, scan *model.Scan) error {
	payload := struct {
		model.Scan
		ImageBase64 string `json:"imageBase64"`
	}{Scan: *scan, ImageBase64: scan.ImageBase64}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal scan: %w", err)
	}
	if err := r.client.Set(ctx, scanKeyPrefix+scan.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save scan to Redis: %w", err)
	}
	return nil
}

// DeleteScan removes a scan key; unknown ids are a no-op.
func (r *RedisStore) DeleteScan(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, scanKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete scan from Redis: %w", err)
	}
	return nil
}

func (r *RedisStore) forEachKey(ctx context.Context, prefix string, fn func(key string, data []byte) error) error {
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		data, err := r.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read %s from Redis: %w", key, err)
		}
		if err := fn(key, data); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan Redis keys: %w", err)
	}
	return nil
}

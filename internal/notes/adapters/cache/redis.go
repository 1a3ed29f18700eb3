// Package cache содержит реализацию кеша избранных заметок на Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notespace/internal/config"
	"notespace/internal/notes/domain/entities"
	"notespace/internal/notes/ports/cache"
	"notespace/pkg/logger"
)

const (
	keyPrefix     = "favorites:"
	versionSuffix = ":version"

	LogStaleFavorites = "favorites list changed while loading, skipping cache fill"

	ErrorFailedToConnect = "failed to connect to redis"
	ErrorFailedToGet     = "failed to get value from redis"
	ErrorFailedToSet     = "failed to set value in redis"
	ErrorFailedToDelete  = "failed to delete value from redis"
	ErrorFailedToDecode  = "failed to decode cached favorites"
	ErrorFailedToClose   = "failed to close redis connection"
)

var errStaleVersion = errors.New("favorites version changed")

// FavoritesCache реализует cache.FavoritesCache поверх Redis.
type FavoritesCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ cache.FavoritesCache = (*FavoritesCache)(nil)

// Connect создает клиент Redis по конфигурации и проверяет соединение.
func Connect(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetAddress(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", ErrorFailedToConnect, err)
	}

	return client, nil
}

// NewFavoritesCache создает кеш поверх готового клиента.
func NewFavoritesCache(client redis.UniversalClient, ttl time.Duration) *FavoritesCache {
	return &FavoritesCache{client: client, ttl: ttl}
}

func key(userID string) string {
	return keyPrefix + userID
}

func versionKey(userID string) string {
	return keyPrefix + userID + versionSuffix
}

// version читает поколение записи пользователя; отсутствующий ключ - поколение 0.
func version(ctx context.Context, cmd redis.Cmdable, userID string) (int64, error) {
	v, err := cmd.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Get возвращает закешированные избранные заметки и поколение записи.
// Поврежденная запись удаляется и считается промахом.
func (c *FavoritesCache) Get(ctx context.Context, userID string) ([]*entities.Note, int64, bool, error) {
	log := logger.Log(ctx).With(zap.String("method", "FavoritesCache.Get"), zap.String("userID", userID))

	ver, err := version(ctx, c.client, userID)
	if err != nil {
		log.Error(ctx, ErrorFailedToGet, zap.Error(err))
		return nil, 0, false, fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}

	raw, err := c.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ver, false, nil
		}
		log.Error(ctx, ErrorFailedToGet, zap.Error(err))
		return nil, 0, false, fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}

	var notes []*entities.Note
	if err := json.Unmarshal(raw, &notes); err != nil {
		log.Warn(ctx, ErrorFailedToDecode, zap.Error(err))
		_ = c.client.Del(ctx, key(userID)).Err()
		return nil, ver, false, nil
	}

	return notes, ver, true, nil
}

// Set сохраняет список избранного с TTL, если поколение все еще равно ver.
// Устаревший список молча отбрасывается.
func (c *FavoritesCache) Set(ctx context.Context, userID string, ver int64, notes []*entities.Note) error {
	log := logger.Log(ctx).With(zap.String("method", "FavoritesCache.Set"), zap.String("userID", userID))

	if notes == nil {
		notes = []*entities.Note{}
	}
	raw, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := version(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current != ver {
			return errStaleVersion
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(userID), raw, c.ttl)
			return nil
		})
		return err
	}, versionKey(userID))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errStaleVersion), errors.Is(err, redis.TxFailedErr):
		log.Debug(ctx, LogStaleFavorites, zap.Int64("version", ver))
		return nil
	default:
		log.Error(ctx, ErrorFailedToSet, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}
}

// Invalidate удаляет запись пользователя и сдвигает ее поколение.
func (c *FavoritesCache) Invalidate(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", "FavoritesCache.Invalidate"), zap.String("userID", userID))

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(userID))
		pipe.Del(ctx, key(userID))
		return nil
	})
	if err != nil {
		log.Error(ctx, ErrorFailedToDelete, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToDelete, err)
	}

	return nil
}

// Ping проверяет доступность Redis.
func (c *FavoritesCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close закрывает соединение с Redis.
func (c *FavoritesCache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToClose, err)
	}
	return nil
}

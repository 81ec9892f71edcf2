package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"guild-economy-api/internal/model"
	"guild-economy-api/pkg/logger"
)

const (
	// maxTxRetries bounds optimistic retries when a watched guild key changes mid-update.
	maxTxRetries = 64

	retryBackoff    = time.Millisecond
	maxRetryBackoff = 50 * time.Millisecond
)

// RedisGuildRepository stores guild documents as Redis strings keyed
// economy-<guildID>. Writers in this process are serialized per guild, and
// WATCH/MULTI catches writers from other processes.
type RedisGuildRepository struct {
	client    *redis.Client
	keyPrefix string
	ns        keyspace
	locks     sync.Map // guild id -> *sync.Mutex
	log       *logrus.Entry
}

// RedisConfig holds connection settings for the Redis repository.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// NewRedisGuildRepository connects to Redis and verifies the connection.
func NewRedisGuildRepository(cfg RedisConfig, log logrus.FieldLogger) (*RedisGuildRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	repo := NewRedisGuildRepositoryFromClient(client, cfg.KeyPrefix, log)
	repo.log.Infof("Connected - DB:%d, prefix:%s", cfg.DB, repo.keyPrefix)
	return repo, nil
}

// NewRedisGuildRepositoryFromClient wraps an existing client.
func NewRedisGuildRepositoryFromClient(client *redis.Client, keyPrefix string, log logrus.FieldLogger) *RedisGuildRepository {
	if keyPrefix == "" {
		keyPrefix = "economy"
	}
	return &RedisGuildRepository{
		client:    client,
		keyPrefix: keyPrefix,
		ns:        keyspace(keyPrefix),
		log:       logger.Component(log, "RedisGuildRepository"),
	}
}

func (r *RedisGuildRepository) guildKey(guildID string) string {
	return r.ns.key(guildID)
}

func (r *RedisGuildRepository) indexKey() string {
	return r.keyPrefix + ":guilds"
}

func (r *RedisGuildRepository) guildLock(guildID string) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(guildID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// backoff returns a jittered delay that grows with the attempt number.
func backoff(attempt int) time.Duration {
	d := time.Duration(attempt+1) * retryBackoff
	if d > maxRetryBackoff {
		d = maxRetryBackoff
	}
	return d/2 + rand.N(d/2+1)
}

// Load returns the stored document, or nil if none exists.
func (r *RedisGuildRepository) Load(ctx context.Context, guildID string) (*model.GuildRecord, error) {
	data, err := r.client.Get(ctx, r.guildKey(guildID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load guild %s: %w", guildID, err)
	}
	return decodeGuild(data)
}

// Save writes the document and indexes the guild id.
func (r *RedisGuildRepository) Save(ctx context.Context, guildID string, rec *model.GuildRecord) error {
	data, err := encodeGuild(rec)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.guildKey(guildID), data, 0)
	pipe.SAdd(ctx, r.indexKey(), guildID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save guild %s: %w", guildID, err)
	}
	return nil
}

// Update applies fn inside a WATCH on the guild key, retrying on conflicts.
func (r *RedisGuildRepository) Update(ctx context.Context, guildID string, fn UpdateFunc) error {
	key := r.guildKey(guildID)

	txf := func(tx *redis.Tx) error {
		rec := model.NewGuildRecord()
		data, err := tx.Get(ctx, key).Bytes()
		exists := err == nil
		switch {
		case err == redis.Nil:
		case err != nil:
			return fmt.Errorf("failed to load guild %s: %w", guildID, err)
		default:
			if rec, err = decodeGuild(data); err != nil {
				return err
			}
		}

		save, err := apply(rec, fn)
		if err != nil {
			return err
		}
		if !save && exists {
			return nil
		}

		encoded, err := encodeGuild(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			pipe.SAdd(ctx, r.indexKey(), guildID)
			return nil
		})
		return err
	}

	mu := r.guildLock(guildID)
	mu.Lock()
	defer mu.Unlock()

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		r.log.Debugf("Retrying update of %s (attempt %d)", guildID, attempt+1)

		timer := time.NewTimer(backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("failed to update guild %s: %w", guildID, ErrConflict)
}

// ListGuildIDs returns indexed guild ids in sorted order.
func (r *RedisGuildRepository) ListGuildIDs(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// GetStats returns the indexed guild count.
func (r *RedisGuildRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	count, err := r.client.SCard(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"backend":      "redis",
		"total_guilds": count,
		"key_prefix":   r.keyPrefix,
	}, nil
}

// Close closes the Redis client.
func (r *RedisGuildRepository) Close() error {
	return r.client.Close()
}

// Ensure RedisGuildRepository implements GuildRepository
var _ GuildRepository = (*RedisGuildRepository)(nil)

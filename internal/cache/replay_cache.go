// Package cache provides a Redis-backed cache for batch-replay results and
// oracle artifacts, grounded on the teacher's go-redis/v9 cache service
// shape: JSON-marshaled values behind a thin Set/Get/Delete/Exists API,
// with SetWithRetry absorbing the odd transient connection blip.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lneuendorf/cfbsim/internal/apitypes"
)

const (
	batchResultPrefix = "replay:batch:"
	oracleArtifactPrefix = "replay:oracle:"

	defaultBatchResultTTL = 24 * time.Hour
	defaultArtifactTTL    = 7 * 24 * time.Hour
)

// ReplayCache caches completed batch results and loaded oracle artifacts
// so that a repeated identical matchup request, or a server restart mid
// deploy, doesn't force a full Monte Carlo re-run or artifact reload.
type ReplayCache struct {
	client *redis.Client
	logger *logrus.Logger
}

var _ apitypes.CacheProvider = (*ReplayCache)(nil)

// NewReplayCache connects to Redis at redisURL and returns a ready cache.
func NewReplayCache(redisURL string, logger *logrus.Logger) (*ReplayCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &ReplayCache{client: client, logger: logger}, nil
}

// Set marshals value to JSON and stores it under key with the given
// expiration. A zero expiration means the key never expires.
func (c *ReplayCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get fetches key and unmarshals it into dest. Returns redis.Nil
// if the key is absent; callers should fall through to recomputation.
func (c *ReplayCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes key.
func (c *ReplayCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Exists reports whether key is present.
func (c *ReplayCache) Exists(ctx context.Context, key string) bool {
	n, err := c.client.Exists(ctx, key).Result()
	return err == nil && n > 0
}

// SetWithRetry retries a Set once after a short backoff, absorbing the
// occasional transient Redis connection blip rather than failing a batch
// that otherwise completed successfully.
func (c *ReplayCache) SetWithRetry(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	err := c.Set(ctx, key, value, expiration)
	if err == nil {
		return nil
	}

	c.logger.WithError(err).WithField("key", key).Warn("cache set failed, retrying once")
	time.Sleep(200 * time.Millisecond)
	return c.Set(ctx, key, value, expiration)
}

// BatchResultKey builds the cache key for a batch's result, keyed by the
// request's deterministic hash so identical matchup+iteration requests
// can be served from cache without re-running the simulation.
func BatchResultKey(requestHash string) string {
	return batchResultPrefix + requestHash
}

// SetBatchResult caches a completed batch's result under its request hash.
func (c *ReplayCache) SetBatchResult(ctx context.Context, requestHash string, result *apitypes.ReplayBatchResult) error {
	return c.SetWithRetry(ctx, BatchResultKey(requestHash), result, defaultBatchResultTTL)
}

// GetBatchResult returns a previously cached batch result, if any.
func (c *ReplayCache) GetBatchResult(ctx context.Context, requestHash string) (*apitypes.ReplayBatchResult, error) {
	var result apitypes.ReplayBatchResult
	if err := c.Get(ctx, BatchResultKey(requestHash), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// OracleArtifactKey builds the cache key for a named oracle artifact
// (e.g. a trained classifier or PMF table), versioned by its content hash
// so a redeployed artifact with the same name invalidates cleanly.
func OracleArtifactKey(name, contentHash string) string {
	return oracleArtifactPrefix + name + ":" + contentHash
}

// SetOracleArtifact caches a serialized oracle artifact blob.
func (c *ReplayCache) SetOracleArtifact(ctx context.Context, name, contentHash string, blob []byte) error {
	return c.client.Set(ctx, OracleArtifactKey(name, contentHash), blob, defaultArtifactTTL).Err()
}

// GetOracleArtifact fetches a previously cached oracle artifact blob.
func (c *ReplayCache) GetOracleArtifact(ctx context.Context, name, contentHash string) ([]byte, error) {
	return c.client.Get(ctx, OracleArtifactKey(name, contentHash)).Bytes()
}

// Close releases the underlying Redis connection pool.
func (c *ReplayCache) Close() error {
	return c.client.Close()
}

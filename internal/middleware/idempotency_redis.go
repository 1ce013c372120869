package middleware

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GoNotify/notigate/internal/pkg/logger"
)

const (
	idemKeyPrefix  = "notigate:idem:"
	idemProcessing = "processing"

	// 进行中的锁单独限时, 进程崩溃后不至于按完整 TTL 挡住重试
	idemProcessingTTL = 2 * time.Minute
)

// RedisIdempotencyStore shares idempotency state across replicas.
// 值编码: "processing" 或 "<status>|<base64 body>"
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

func (s *RedisIdempotencyStore) GetOrLock(ctx context.Context, key string) (*IdempotencyRecord, bool) {
	rkey := idemKeyPrefix + key

	locked, err := s.client.SetNX(ctx, rkey, idemProcessing, idemProcessingTTL).Result()
	if err != nil {
		// Redis 不可用时放行, 幂等保护降级而不是拒绝请求
		logger.Warn("idempotency store unavailable, proceeding unlocked", "error", err)
		return nil, false
	}
	if locked {
		return nil, false
	}

	val, err := s.client.Get(ctx, rkey).Result()
	if err != nil {
		logger.Warn("idempotency lookup failed, proceeding unlocked", "error", err)
		return nil, false
	}
	if val == idemProcessing {
		return &IdempotencyRecord{Processing: true}, true
	}

	rec, err := decodeIdempotencyValue(val)
	if err != nil {
		logger.Warn("corrupt idempotency record, proceeding unlocked", "key", key, "error", err)
		return nil, false
	}
	return rec, true
}

func (s *RedisIdempotencyStore) Save(ctx context.Context, key string, status int, body []byte) {
	val := strconv.Itoa(status) + "|" + base64.StdEncoding.EncodeToString(body)
	if err := s.client.Set(ctx, idemKeyPrefix+key, val, s.ttl).Err(); err != nil {
		logger.Warn("failed to save idempotency record", "key", key, "error", err)
	}
}

func (s *RedisIdempotencyStore) Unlock(ctx context.Context, key string) {
	if err := s.client.Del(ctx, idemKeyPrefix+key).Err(); err != nil {
		logger.Warn("failed to unlock idempotency key", "key", key, "error", err)
	}
}

func decodeIdempotencyValue(val string) (*IdempotencyRecord, error) {
	statusStr, encoded, found := strings.Cut(val, "|")
	if !found {
		return nil, fmt.Errorf("missing separator")
	}
	status, err := strconv.Atoi(statusStr)
	if err != nil {
		return nil, fmt.Errorf("bad status: %w", err)
	}
	body, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("bad body: %w", err)
	}
	return &IdempotencyRecord{Status: status, Body: body}, nil
}

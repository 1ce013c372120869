package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GoNotify/notigate/internal/pkg/apperrors"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"

type IdempotencyRecord struct {
	Status     int
	Body       []byte
	CreatedAt  time.Time
	Processing bool // 正在处理中, 用于防止并发重复发信
}

type IdempotencyStore interface {
	// GetOrLock returns (record, true) if the key exists; (nil, false) when the
	// caller acquired the lock and owns the first execution.
	GetOrLock(ctx context.Context, key string) (*IdempotencyRecord, bool)
	Save(ctx context.Context, key string, status int, body []byte)
	Unlock(ctx context.Context, key string)
}

// MemoryIdempotencyStore 单实例部署用; 多副本部署请配置 Redis
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]*IdempotencyRecord
}

func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryIdempotencyStore{
		ttl:     ttl,
		records: make(map[string]*IdempotencyRecord),
	}
}

func (s *MemoryIdempotencyStore) GetOrLock(_ context.Context, key string) (*IdempotencyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[key]; ok {
		ttl := s.ttl
		if rec.Processing {
			// 处理中的锁单独限时, panic 后不会永久挡住重试
			ttl = idemProcessingTTL
		}
		// 过期记录当作不存在, 惰性回收
		if time.Since(rec.CreatedAt) > ttl {
			delete(s.records, key)
		} else {
			return rec, true
		}
	}

	s.records[key] = &IdempotencyRecord{
		Processing: true,
		CreatedAt:  time.Now(),
	}
	return nil, false
}

func (s *MemoryIdempotencyStore) Save(_ context.Context, key string, status int, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = &IdempotencyRecord{
		Status:    status,
		Body:      body,
		CreatedAt: time.Now(),
	}
}

func (s *MemoryIdempotencyStore) Unlock(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
}

// Idempotency replays the first response for repeated sends carrying the same
// X-Idempotency-Key. 客户端超时重试不会导致重复发信
func Idempotency(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		idemKey := c.GetHeader(HeaderIdempotencyKey)
		if idemKey == "" {
			c.Next()
			return
		}

		fullKey := c.Request.Method + ":" + c.Request.URL.Path + ":" + idemKey

		record, hit := store.GetOrLock(c.Request.Context(), fullKey)
		if hit {
			if record.Processing {
				// 并发重复请求
				c.Error(apperrors.New(apperrors.ErrDuplicate, "request in progress", nil))
				c.Abort()
				return
			}
			// 已处理完成, 重放缓存的响应
			c.Data(record.Status, "application/json; charset=utf-8", record.Body)
			c.Abort()
			return
		}

		w := &replayWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		// 出错或 5xx 解锁不缓存, 允许客户端重试;
		// 错误信封由外层中间件写出, w.body 里看不到
		if len(c.Errors) > 0 || c.Writer.Status() >= 500 {
			store.Unlock(c.Request.Context(), fullKey)
			return
		}
		store.Save(c.Request.Context(), fullKey, c.Writer.Status(), w.body)
	}
}

type replayWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *replayWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}

func (w *replayWriter) WriteString(s string) (int, error) {
	w.body = append(w.body, s...)
	return w.ResponseWriter.WriteString(s)
}

package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cep360-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idempotencyLockTTL  = 30 * time.Second
	idempotencyCacheTTL = 24 * time.Hour

	ctxIdempotencyCacheKey = "idempotency_cache_key"
	ctxIdempotencyLockKey  = "idempotency_lock_key"
)

// Idempotency replays the cached response of a POST carrying an
// Idempotency-Key header, and rejects a duplicate while the first request is
// still in flight. Handlers finish the protocol with CompleteIdempotent.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		userID := c.GetString("user_id")
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"
		ctx := c.Request.Context()

		if val, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached json.RawMessage
			if json.Unmarshal([]byte(val), &cached) == nil {
				c.Header("Idempotent-Replayed", "true")
				response.Success(c, http.StatusOK, cached, nil)
				c.Abort()
				return
			}
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			zap.L().Named("middleware.idempotency").Warn("idempotency lock unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Error(c, http.StatusConflict, "PROCESSING", "The same request is still being processed", nil)
			c.Abort()
			return
		}

		c.Set(ctxIdempotencyCacheKey, cacheKey)
		c.Set(ctxIdempotencyLockKey, lockKey)

		c.Next()
	}
}

// CompleteIdempotent caches resp for replay when the request succeeded and
// always releases the in-flight lock.
func CompleteIdempotent(c *gin.Context, rdb *redis.Client, resp any, succeeded bool) {
	if rdb == nil {
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())

	if succeeded {
		if ck := c.GetString(ctxIdempotencyCacheKey); ck != "" {
			if payload, err := json.Marshal(resp); err == nil {
				_ = rdb.Set(ctx, ck, payload, idempotencyCacheTTL).Err()
			}
		}
	}
	if lk := c.GetString(ctxIdempotencyLockKey); lk != "" {
		_ = rdb.Del(ctx, lk).Err()
	}
}

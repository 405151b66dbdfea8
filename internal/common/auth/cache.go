package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"grant-portal/internal/common/logger"
	"grant-portal/internal/common/metrics"
	"grant-portal/internal/models"
)

const cacheKeyPrefix = "auth:user:"

// CachedVerifier memoizes successful verifications in Redis, keyed by a hash
// of the token. Cache failures fall through to the wrapped verifier.
type CachedVerifier struct {
	next   Verifier
	rdb    redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedVerifier(next Verifier, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedVerifier {
	return &CachedVerifier{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "auth-cache"}),
	}
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedVerifier) Verify(ctx context.Context, token string) (*models.AuthUser, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	key := cacheKey(token)

	raw, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var user models.AuthUser
		if jsonErr := json.Unmarshal([]byte(raw), &user); jsonErr == nil && user.ID != "" {
			metrics.AuthCacheLookups.WithLabelValues("hit").Inc()
			return &user, nil
		}
		c.logger.Warn("discarding corrupt cache entry", nil)
	case errors.Is(err, redis.Nil):
		metrics.AuthCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.AuthCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("auth cache read failed", map[string]interface{}{"error": err})
	}

	user, err := c.next.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	ttl := c.ttl
	if !user.ExpiresAt.IsZero() {
		if remaining := time.Until(user.ExpiresAt); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		return user, nil
	}

	payload, err := json.Marshal(user)
	if err == nil {
		err = c.rdb.Set(ctx, key, payload, ttl).Err()
	}
	if err != nil {
		c.logger.Warn("auth cache write failed", map[string]interface{}{"error": err})
	}
	return user, nil
}

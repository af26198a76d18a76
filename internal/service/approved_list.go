package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const approvedGenerationTTL = 24 * time.Hour

// approvedList caches one kind's public approved listing under a generation
// token. A transition rotates the token, so a list read from the store before
// the rotation is written under a key no later reader looks up.
type approvedList struct {
	cache  listCache
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

func newApprovedList(cache listCache, key string, ttl time.Duration, logger *zap.Logger) *approvedList {
	if cache == nil {
		return nil
	}
	return &approvedList{cache: cache, key: key, ttl: ttl, logger: logger}
}

func (l *approvedList) generationKey() string {
	return l.key + ":generation"
}

// current resolves the key holding the list for the live generation.
func (l *approvedList) current(ctx context.Context) string {
	var generation string
	if hit, err := l.cache.Get(ctx, l.generationKey(), &generation); err != nil || !hit || generation == "" {
		generation = "0"
	}
	return l.key + ":" + generation
}

// load fills dest from cache. The returned key is where a freshly read list
// belongs; it is empty when caching is off.
func (l *approvedList) load(ctx context.Context, dest interface{}) (key string, hit bool) {
	if l == nil {
		return "", false
	}
	key = l.current(ctx)
	hit, err := l.cache.Get(ctx, key, dest)
	return key, err == nil && hit
}

func (l *approvedList) store(ctx context.Context, key string, items interface{}) {
	if l == nil || key == "" {
		return
	}
	_ = l.cache.Set(ctx, key, items, l.ttl)
}

// rotate retires every list cached so far. When the new token cannot be
// written the cached lists are dropped instead.
func (l *approvedList) rotate(ctx context.Context) {
	if l == nil {
		return
	}
	if err := l.cache.Set(ctx, l.generationKey(), uuid.NewString(), approvedGenerationTTL); err == nil {
		return
	}
	if err := l.cache.Invalidate(ctx, l.key+":*"); err != nil {
		l.logger.Warn("approved list invalidation failed", zap.String("key", l.key), zap.Error(err))
	}
}

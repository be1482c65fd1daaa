package optimize

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bluele/gcache"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DefaultCacheSize = 256

type Cache interface {
	Get(ctx context.Context, key string) (*Result, bool)
	Set(ctx context.Context, key string, result *Result) error
}

type MemoryCacheOptions struct {
	Size int
	// TTL of zero keeps entries until they are evicted by size
	TTL   time.Duration
	Clock gcache.Clock
}

type MemoryCache struct {
	cache gcache.Cache
}

func NewMemoryCache(options MemoryCacheOptions) *MemoryCache {
	if options.Size <= 0 {
		options.Size = DefaultCacheSize
	}

	builder := gcache.New(options.Size).LRU()
	if options.Clock != nil {
		builder = builder.Clock(options.Clock)
	}
	if options.TTL > 0 {
		builder = builder.Expiration(options.TTL)
	}

	return &MemoryCache{cache: builder.Build()}
}

func (m *MemoryCache) Get(ctx context.Context, key string) (*Result, bool) {
	value, err := m.cache.Get(key)
	if err != nil {
		return nil, false
	}

	result, ok := value.(*Result)
	if !ok {
		return nil, false
	}
	return result.clone(), true
}

func (m *MemoryCache) Set(ctx context.Context, key string, result *Result) error {
	return m.cache.Set(key, result.clone())
}

func (m *MemoryCache) Len() int {
	return m.cache.Len(false)
}

// RedisCache shares optimization results between processes
type RedisCache struct {
	Cache *cache.Cache[string]
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	var options []store.Option
	if ttl > 0 {
		options = append(options, store.WithExpiration(ttl))
	}

	redisStore := redisstore.NewRedis(client, options...)

	return &RedisCache{
		Cache: cache.New[string](redisStore),
	}
}

func redisKey(key string) string {
	return "haulwatch:optimize:" + key
}

func (r *RedisCache) Get(ctx context.Context, key string) (*Result, bool) {
	value, err := r.Cache.Get(ctx, redisKey(key))
	if err != nil {
		return nil, false
	}

	var result *Result
	if err := json.Unmarshal([]byte(value), &result); err != nil || result == nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to decode cached optimization")
		return nil, false
	}

	return result, true
}

func (r *RedisCache) Set(ctx context.Context, key string, result *Result) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return r.Cache.Set(ctx, redisKey(key), string(resultJSON))
}

package optimize

import (
	"github.com/travigo/haulwatch/pkg/config"
	"github.com/travigo/haulwatch/pkg/redis_client"
)

// NewCache picks the cache backend from config. The redis backend expects redis_client to be connected.
func NewCache(cfg config.CacheConfig) Cache {
	if cfg.Backend == "redis" && redis_client.Client != nil {
		return NewRedisCache(redis_client.Client, cfg.TTL.Duration)
	}

	return NewMemoryCache(MemoryCacheOptions{
		Size: cfg.Size,
		TTL:  cfg.TTL.Duration,
	})
}

func NewClientFromConfig(cfg *config.Config) *Client {
	return NewClient(
		NewServiceClient(cfg.Optimizer.BaseURL, cfg.Optimizer.Timeout.Duration),
		NewCache(cfg.Cache),
	)
}

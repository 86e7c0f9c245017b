package flags

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/lifeos/lifeos/pkg/apis/cache"
	"github.com/lifeos/lifeos/pkg/cache/compressed"
	"github.com/lifeos/lifeos/pkg/cache/redis"
)

// CacheFlags holds caching configuration information for LifeOS.
type CacheFlags struct {
	RedisURL         string
	EnableCompressed bool
}

func NewCacheFlags() *CacheFlags {
	return &CacheFlags{}
}

func (f *CacheFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.RedisURL,
		"redis-url",
		os.Getenv("REDIS_URL"),
		"Redis URL for caching")
	fs.BoolVar(&f.EnableCompressed,
		"cache-compression",
		f.EnableCompressed,
		"Compress cached values")
}

func (f *CacheFlags) GetCacheClient() (cache.Cache, error) {
	if f.RedisURL == "" {
		return nil, nil
	}

	c, err := redis.NewRedisCache(f.RedisURL)
	if err != nil {
		return nil, err
	}
	if f.EnableCompressed {
		return compressed.NewCompressedCache(c)
	}

	return c, nil
}

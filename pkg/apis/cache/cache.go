package cache

import "time"

// Cache is a byte-oriented cache with per-key expiry. The weekly summary
// endpoint uses it to avoid re-running the model for every page load.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, content []byte, duration time.Duration) error
}

package config // package config loads application configuration from environment variables

import "time" // time parses the Redis TTL

// CacheConfig defines settings for the prediction cache. When Enabled is
// false no cache is consulted. LRUSize bounds the in-process tier; TTL and
// Prefix apply to the Redis tier, which is only used when a Redis address is
// configured.
type CacheConfig struct {
	Enabled bool          // consult the cache at all
	LRUSize int           // entries kept in process
	TTL     time.Duration // lifetime of Redis entries
	Prefix  string        // namespace for Redis keys
	Redis   RedisConfig   // shared tier connection settings
}

// LoadCacheConfig reads CACHE_* and REDIS_* variables.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled: envBool("CACHE_ENABLED", false),                      // disabled unless asked for
		LRUSize: atoi(getenv("CACHE_LRU_SIZE", "1024"), 1024),         // in-process capacity
		TTL:     parseDur(getenv("CACHE_TTL", "10m"), 10*time.Minute), // Redis entry lifetime
		Prefix:  getenv("CACHE_PREFIX", "iris"),                       // key namespace
		Redis:   LoadRedisConfig(),                                    // REDIS_* variables
	}
	if cfg.LRUSize < 1 { // the LRU constructor rejects non-positive sizes
		cfg.LRUSize = 1
	}
	return cfg
}

package config // package config loads application configuration from environment variables

// Redis backs the shared tier of the prediction cache. If the server is not
// configured or cannot be reached at startup, NewRedisClient returns nil and
// callers fall back to the in-process tier.

import (
	"context"    // context bounds the startup ping
	"crypto/tls" // crypto/tls configures encrypted connections
	"strings"    // strings compares the TLS flag
	"time"       // time sets the ping timeout

	"github.com/redis/go-redis/v9" // go-redis is the Redis client
)

// RedisConfig is read from:
//
//	REDIS_ADDR – host:port
//	REDIS_HOST and REDIS_PORT – take precedence over REDIS_ADDR when both are set
//	REDIS_PASSWORD – optional password
//	REDIS_DB – database number (default 0)
//	REDIS_TLS – enable TLS when "true" or "1"
type RedisConfig struct {
	Addr     string // host:port; empty disables the shared tier
	Password string // optional password
	DB       int    // database number
	TLS      bool   // dial with TLS 1.2 or newer
}

// LoadRedisConfig reads REDIS_* variables. Addr stays empty when none is set.
func LoadRedisConfig() RedisConfig {
	addr := getenv("REDIS_ADDR", "")                                 // single-variable form
	host, port := getenv("REDIS_HOST", ""), getenv("REDIS_PORT", "") // split form
	if host != "" && port != "" {                                    // the split form wins when complete
		addr = host + ":" + port
	}
	tlsEnv := getenv("REDIS_TLS", "")
	return RedisConfig{
		Addr:     addr,
		Password: getenv("REDIS_PASSWORD", ""),
		DB:       atoi(getenv("REDIS_DB", "0"), 0),
		TLS:      strings.EqualFold(tlsEnv, "true") || tlsEnv == "1",
	}
}

// NewRedisClient connects and pings with a short timeout. It returns nil when
// no address is configured or the server does not answer.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	if cfg.Addr == "" { // nothing configured; stay process-local
		return nil
	}
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil { // unreachable at startup
		_ = client.Close() // release the pool before falling back
		return nil
	}
	return client
}

package config

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig locates the Redis instance shared by the rate limiter and
// the slots cache.  Both degrade without it: the limiter keeps
// in-process buckets and the cache is skipped.
type RedisConfig struct {
	Disabled bool
	Addr     string
	Password string
	DB       int
	TLS      bool
}

// LoadRedisConfig reads REDIS_*.  REDIS_HOST and REDIS_PORT together win
// over REDIS_ADDR.
func LoadRedisConfig() RedisConfig {
	cfg := RedisConfig{
		Disabled: envBool("REDIS_DISABLED", false),
		Addr:     envStr("REDIS_ADDR", "localhost:6379"),
		Password: envStr("REDIS_PASSWORD", ""),
		DB:       envInt("REDIS_DB", 0),
		TLS:      envBool("REDIS_TLS", false),
	}
	if host, port := envStr("REDIS_HOST", ""), envStr("REDIS_PORT", ""); host != "" && port != "" {
		cfg.Addr = host + ":" + port
	}
	return cfg
}

// Connect dials and pings Redis.  It returns nil when Redis is disabled
// or does not answer within two seconds.
func (c RedisConfig) Connect(ctx context.Context, log zerolog.Logger) *redis.Client {
	if c.Disabled {
		log.Info().Msg("redis disabled")
		return nil
	}
	opts := &redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB}
	if c.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", c.Addr).Msg("redis unavailable; rate limiting is per process and the slots cache is off")
		_ = client.Close()
		return nil
	}
	log.Info().Str("addr", c.Addr).Msg("redis connected")
	return client
}

package config

import "time"

// Rate-limit key strategies.  The key decides who shares a bucket.
const (
	KeyByIP        = "ip"
	KeyByUser      = "user"
	KeyByIPAndUser = "ip_user"
	KeyByEndpoint  = "ip_user_route"
)

// RateLimitConfig drives the token bucket in front of the write endpoints
// (booking, cancellation and customer upsert).  With Redis the bucket is
// shared by every instance; without it each process keeps its own.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int           // burst size
	RefillTokens   int           // tokens added per RefillInterval
	RefillInterval time.Duration
	TTL            time.Duration // idle buckets expire after this
	KeyStrategy    string
	Prefix         string
	Debug          bool // expose the bucket key in X-RateLimit-Key
}

// LoadRateLimitConfig reads RATE_LIMIT_*.  The defaults allow a burst of
// 20 writes and one more every three seconds.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 20),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 3*time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", KeyByEndpoint),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rr:rl"),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	return cfg.normalize()
}

// normalize clamps nonsensical values.  A bucket must outlive several
// refill intervals or it would reset to full between requests.
func (c RateLimitConfig) normalize() RateLimitConfig {
	c.Capacity = max(c.Capacity, 1)
	c.RefillTokens = max(c.RefillTokens, 1)
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	c.TTL = max(c.TTL, 5*c.RefillInterval)
	return c
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Upstream site
	TipsURL      string
	LoginURL     string
	SiteEmail    string
	SitePassword string

	// Extraction
	MaxTips      int
	DefaultStake float64 // pounds; 0 means no default stake is applied

	// Cache
	CacheTTL     time.Duration
	MemcacheAddr string
	BlockTime    time.Duration

	// Refresh worker
	RefreshInterval time.Duration

	// HTTP server
	Port int

	// Redis publisher
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	maxTips, _ := strconv.Atoi(getEnv("MAX_TIPS", "50"))
	defaultStake, _ := strconv.ParseFloat(getEnv("DEFAULT_STAKE", "0"), 64)
	cacheTTL, _ := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "300"))
	blockTime, _ := strconv.Atoi(getEnv("FETCH_BLOCK_SECONDS", "60"))
	refreshInterval, _ := strconv.Atoi(getEnv("REFRESH_INTERVAL_SECONDS", "300"))
	port, _ := strconv.Atoi(getEnv("PORT", "3000"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "500"))

	return &Config{
		TipsURL:              getEnv("TIPS_URL", "https://tipstrr.com/tipster/freguli/results"),
		LoginURL:             getEnv("LOGIN_URL", "https://tipstrr.com/login"),
		SiteEmail:            getEnv("SITE_EMAIL", ""),
		SitePassword:         getEnv("SITE_PASSWORD", ""),
		MaxTips:              maxTips,
		DefaultStake:         defaultStake,
		CacheTTL:             time.Duration(cacheTTL) * time.Second,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		BlockTime:            time.Duration(blockTime) * time.Second,
		RefreshInterval:      time.Duration(refreshInterval) * time.Second,
		Port:                 port,
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "tips"),
		RedisStreamMaxLength: redisStreamMaxLength,
		Environment:          getEnv("TIPSCRAPER_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for values the services cannot run with
func (c *Config) Validate() error {
	if c.TipsURL == "" {
		return fmt.Errorf("TIPS_URL must not be empty")
	}
	if c.MaxTips <= 0 {
		return fmt.Errorf("MAX_TIPS must be positive, got %d", c.MaxTips)
	}
	if c.DefaultStake < 0 {
		return fmt.Errorf("DEFAULT_STAKE must not be negative, got %f", c.DefaultStake)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL_SECONDS must be positive")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

package fetcher

import (
	"fmt"
	"time"

	"amazetimes/pkg/config"
)

// Config controls page downloads.
type Config struct {
	// Enabled turns page reading off entirely; feed text is used as is.
	Enabled bool
	// Timeout bounds one page request, redirects included.
	Timeout time.Duration
	// MaxBodySize is enforced while reading, not from Content-Length.
	MaxBodySize  int64
	MaxRedirects int
	// DenyPrivateIPs rejects hosts resolving to loopback, private or
	// link-local addresses, on the first request and on every redirect.
	DenyPrivateIPs bool
}

// DefaultConfig returns production settings.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		Timeout:        10 * time.Second,
		MaxBodySize:    10 << 20,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

// Validate rejects settings that would disable the safety limits.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxBodySize < 1<<10 || c.MaxBodySize > 100<<20 {
		return fmt.Errorf("max body size must be between 1KB and 100MB, got %d", c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}

// LoadConfigFromEnv reads PAGE_FETCH_* variables over the defaults.
//
//	PAGE_FETCH_ENABLED=false
//	PAGE_FETCH_TIMEOUT=15s
//	PAGE_FETCH_MAX_BODY_SIZE=5242880
//	PAGE_FETCH_MAX_REDIRECTS=3
//	PAGE_FETCH_DENY_PRIVATE_IPS=true
func LoadConfigFromEnv() (Config, error) {
	def := DefaultConfig()
	cfg := Config{
		Enabled:        config.GetEnvBool("PAGE_FETCH_ENABLED", def.Enabled),
		Timeout:        config.GetEnvDuration("PAGE_FETCH_TIMEOUT", def.Timeout),
		MaxBodySize:    int64(config.GetEnvPositiveInt("PAGE_FETCH_MAX_BODY_SIZE", int(def.MaxBodySize))),
		MaxRedirects:   config.GetEnvInt("PAGE_FETCH_MAX_REDIRECTS", def.MaxRedirects),
		DenyPrivateIPs: config.GetEnvBool("PAGE_FETCH_DENY_PRIVATE_IPS", def.DenyPrivateIPs),
	}
	if err := cfg.Validate(); err != nil {
		return def, fmt.Errorf("page fetch config: %w", err)
	}
	return cfg, nil
}

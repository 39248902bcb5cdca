package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SecurityConfig holds the admin login policy and the HTTP trust settings.
type SecurityConfig struct {
	Auth struct {
		MinPasswordLength int      `yaml:"min_password_length"`
		WeakPasswords     []string `yaml:"weak_passwords"`
	} `yaml:"auth"`
	JWT struct {
		// SecretEnv names the variable holding the signing secret.
		SecretEnv   string `yaml:"secret_env"`
		ExpiryHours int    `yaml:"expiry_hours"`
	} `yaml:"jwt"`
	Login struct {
		// One attempt is refilled per Interval, up to Burst, per client IP.
		Interval time.Duration `yaml:"interval"`
		Burst    int           `yaml:"burst"`
	} `yaml:"login"`
	CORSOrigins    []string `yaml:"cors_origins"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// DefaultSecurity returns the policy used without a file.
func DefaultSecurity() *SecurityConfig {
	c := &SecurityConfig{}
	c.Auth.MinPasswordLength = 12
	c.Auth.WeakPasswords = []string{"password", "password123", "admin", "admin123", "changeme", "letmein", "qwerty123"}
	c.JWT.SecretEnv = "JWT_SECRET"
	c.JWT.ExpiryHours = 12
	c.Login.Interval = 12 * time.Second
	c.Login.Burst = 5
	return c
}

// LoadSecurityConfig reads path over the defaults. An empty path returns the defaults.
func LoadSecurityConfig(path string) (*SecurityConfig, error) {
	cfg := DefaultSecurity()
	if path == "" {
		return cfg, nil
	}

	// #nosec G304 -- path is provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read security config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse security config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("security config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *SecurityConfig) Validate() error {
	if c.Auth.MinPasswordLength < 8 {
		return errors.New("auth.min_password_length must be at least 8")
	}
	if c.JWT.SecretEnv == "" {
		return errors.New("jwt.secret_env is required")
	}
	if c.JWT.ExpiryHours <= 0 || c.JWT.ExpiryHours > 24*30 {
		return fmt.Errorf("jwt.expiry_hours must be between 1 and 720, got %d", c.JWT.ExpiryHours)
	}
	if c.Login.Interval <= 0 || c.Login.Burst <= 0 {
		return errors.New("login.interval and login.burst must be positive")
	}
	return nil
}

// TokenTTL is the session lifetime.
func (c *SecurityConfig) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpiryHours) * time.Hour
}

// CheckAdminPassword rejects a configured admin password that is short or
// on the weak list. It is applied at startup, not per login.
func (c *SecurityConfig) CheckAdminPassword(pw string) error {
	if len(pw) < c.Auth.MinPasswordLength {
		return fmt.Errorf("admin password must be at least %d characters", c.Auth.MinPasswordLength)
	}
	if slices.Contains(c.Auth.WeakPasswords, strings.ToLower(pw)) {
		return errors.New("admin password is on the weak password list")
	}
	return nil
}

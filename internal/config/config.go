package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort string

	BackendURL     string
	BackendTimeout time.Duration

	StaticDir    string
	CookieSecure bool

	// TokenVerifyKey enables HS256 signature checks in the route guard.
	TokenVerifyKey string

	RedisAddr     string
	RedisPassword string
	ListCacheTTL  time.Duration

	DatabaseDSN string

	SessionCheckInterval time.Duration
}

func Load() Config {

	cfg := Config{

		AppPort: getenv("APP_PORT", "8080"),

		BackendURL:     os.Getenv("BACKEND_URL"),
		BackendTimeout: duration("BACKEND_TIMEOUT", 15*time.Second),

		StaticDir:    getenv("STATIC_DIR", "./web"),
		CookieSecure: boolean("COOKIE_SECURE", true),

		TokenVerifyKey: os.Getenv("TOKEN_VERIFY_KEY"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		ListCacheTTL:  duration("LIST_CACHE_TTL", 30*time.Second),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		SessionCheckInterval: duration("SESSION_CHECK_INTERVAL", 60*time.Second),
	}

	return cfg

}

// Validate reports configuration the console cannot start without.
func (c Config) Validate() error {
	var errs []error

	if c.BackendURL == "" {
		errs = append(errs, errors.New("BACKEND_URL is required"))
	} else if u, err := url.Parse(c.BackendURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("BACKEND_URL must be an absolute URL"))
	}

	if c.AppPort == "" {
		errs = append(errs, errors.New("APP_PORT is required"))
	}
	if c.ListCacheTTL <= 0 {
		errs = append(errs, errors.New("LIST_CACHE_TTL must be positive"))
	}
	if c.SessionCheckInterval <= 0 {
		errs = append(errs, errors.New("SESSION_CHECK_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func boolean(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

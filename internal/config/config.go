package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreDriverFile  = "file"
	StoreDriverRedis = "redis"
)

// Sync drivers select how events reach sibling processes.
const (
	SyncDriverStore = "store"
	SyncDriverNATS  = "nats"
	SyncDriverNone  = "none"
)

// Backends select where interactions are persisted.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Database drivers for the remote backend.
const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"
)

// maxActivityCapacity matches the largest page the remote activity feed serves.
const maxActivityCapacity = 100

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	LogLevel         string
	StoreDriver      string
	StoreDir         string
	RedisURL         string
	SyncDriver       string
	SyncNamespace    string
	NATSURL          string
	NATSSubject      string
	Backend          string
	DatabaseDriver   string
	DatabaseURL      string
	ActivityCapacity int
	PersistActivity  bool
	GalleryCacheTTL  time.Duration
	UnsplashKey      string
	UnsplashBaseURL  string
	UnsplashPerPage  int
	StreamKeepalive  time.Duration
	RateLimitMax     int
	RateLimitWindow  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("FOTOOWL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Fotoowl Gallery API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("store.driver", StoreDriverFile)
	v.SetDefault("sync.driver", SyncDriverStore)
	v.SetDefault("sync.namespace", "gallery-")
	v.SetDefault("nats.subject", "fotoowl.events")
	v.SetDefault("backend", BackendLocal)
	v.SetDefault("database.driver", DatabaseDriverPostgres)
	v.SetDefault("activity.capacity", 50)
	v.SetDefault("activity.persist", true)
	v.SetDefault("gallery.cache_ttl", "5m")
	v.SetDefault("unsplash.base_url", "https://api.unsplash.com")
	v.SetDefault("unsplash.per_page", 12)
	v.SetDefault("stream.keepalive", "30s")
	v.SetDefault("ratelimit.max", 30)
	v.SetDefault("ratelimit.window", "1m")
}

func fromViper(v *viper.Viper) (Config, error) {
	setDefaults(v)

	cacheTTL, err := parseDuration(v, "gallery.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	keepalive, err := parseDuration(v, "stream.keepalive")
	if err != nil {
		return Config{}, err
	}
	window, err := parseDuration(v, "ratelimit.window")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		LogLevel:         strings.ToLower(v.GetString("log.level")),
		StoreDriver:      strings.ToLower(v.GetString("store.driver")),
		StoreDir:         v.GetString("store.dir"),
		RedisURL:         v.GetString("redis.url"),
		SyncDriver:       strings.ToLower(v.GetString("sync.driver")),
		SyncNamespace:    v.GetString("sync.namespace"),
		NATSURL:          v.GetString("nats.url"),
		NATSSubject:      v.GetString("nats.subject"),
		Backend:          strings.ToLower(v.GetString("backend")),
		DatabaseDriver:   strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:      v.GetString("database.url"),
		ActivityCapacity: v.GetInt("activity.capacity"),
		PersistActivity:  v.GetBool("activity.persist"),
		GalleryCacheTTL:  cacheTTL,
		UnsplashKey:      v.GetString("unsplash.access_key"),
		UnsplashBaseURL:  v.GetString("unsplash.base_url"),
		UnsplashPerPage:  v.GetInt("unsplash.per_page"),
		StreamKeepalive:  keepalive,
		RateLimitMax:     v.GetInt("ratelimit.max"),
		RateLimitWindow:  window,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverFile:
	case StoreDriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis url must be provided for the redis store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	switch c.SyncDriver {
	case SyncDriverStore, SyncDriverNone:
	case SyncDriverNATS:
		if c.NATSURL == "" {
			return fmt.Errorf("nats url must be provided for nats sync")
		}
	default:
		return fmt.Errorf("unknown sync driver %q", c.SyncDriver)
	}

	switch c.Backend {
	case BackendLocal:
	case BackendRemote:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database url must be provided for the remote backend")
		}
		if c.DatabaseDriver != DatabaseDriverPostgres && c.DatabaseDriver != DatabaseDriverSQLite {
			return fmt.Errorf("unknown database driver %q", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.ActivityCapacity <= 0 || c.ActivityCapacity > maxActivityCapacity {
		return fmt.Errorf("activity capacity must be between 1 and %d", maxActivityCapacity)
	}
	if c.UnsplashPerPage <= 0 {
		return fmt.Errorf("unsplash per page must be positive")
	}
	if c.RateLimitMax <= 0 {
		return fmt.Errorf("rate limit max must be positive")
	}

	return nil
}

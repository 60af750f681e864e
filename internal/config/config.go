package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig   `envPrefix:"SERVER_"`
	Database  DatabaseConfig `envPrefix:"POSTGRES_"`
	JWT       JWTConfig      `envPrefix:"JWT_"`
	Session   SessionConfig  `envPrefix:"SESSION_"`
	Storage   StorageConfig  `envPrefix:"STORAGE_"`
	S3        S3Config
	Worker    WorkerConfig    `envPrefix:"WORKER_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Profile   ProfileConfig   `envPrefix:"PROFILE_"`
	Booking   BookingConfig   `envPrefix:"BOOKING_"`
	Analytics AnalyticsConfig `envPrefix:"ANALYTICS_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	Admin     AdminConfig     `envPrefix:"ADMIN_"`
}

type ServerConfig struct {
	Host      string `env:"HOST" envDefault:"localhost"`
	Port      int    `env:"PORT" envDefault:"8080"`
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
}

type DatabaseConfig struct {
	Host          string `env:"HOST" envDefault:"localhost"`
	Port          int    `env:"PORT" envDefault:"5432"`
	User          string `env:"USER" envDefault:"postgres"`
	Password      string `env:"PASSWORD"`
	Name          string `env:"DB" envDefault:"dooh"`
	SSLMode       string `env:"SSLMODE" envDefault:"disable"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
}

// DSN is the keyword/value form used by the gorm postgres driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// URL is the postgres:// form used by golang-migrate and pgxpool.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

type JWTConfig struct {
	Secret string `env:"SECRET" envDefault:"your-secret-key"`
}

type SessionConfig struct {
	TTL time.Duration `env:"TTL" envDefault:"24h"`
}

type StorageConfig struct {
	Provider  string `env:"PROVIDER" envDefault:"local"` // local, s3
	BasePath  string `env:"BASE_PATH" envDefault:"./storage"`
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080/uploads"`
}

type S3Config struct {
	BucketName string `env:"S3_BUCKET_NAME"`
	Endpoint   string `env:"S3_ENDPOINT"`
	Region     string `env:"S3_REGION"`
	AccessKey  string `env:"S3_ACCESS_KEY"`
	SecretKey  string `env:"S3_SECRET_KEY"`
}

type WorkerConfig struct {
	Concurrency int `env:"CONCURRENCY" envDefault:"5"`
}

type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD"`
	Username string `env:"USERNAME"`
	DB       int    `env:"DB" envDefault:"0"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ProfileConfig controls how signup metadata is reconciled with stored profiles.
// RoleSync is "always" (metadata role wins on every session) or "first_only"
// (metadata only seeds the profile at creation).
type ProfileConfig struct {
	RoleSync string `env:"ROLE_SYNC" envDefault:"always"`
}

type BookingConfig struct {
	RateWindow time.Duration `env:"RATE_WINDOW" envDefault:"1m"`
	RateMax    int           `env:"RATE_MAX" envDefault:"30"`
}

type AnalyticsConfig struct {
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"15m"`
	RefreshCron string        `env:"REFRESH_CRON" envDefault:"*/15 * * * *"`
}

type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
}

type AdminConfig struct {
	Email        string `env:"EMAIL"`
	Password     string `env:"PASSWORD"`
	BusinessName string `env:"BUSINESS_NAME" envDefault:"Marketplace Admin"`
}

var (
	config *Config
	once   sync.Once
)

// GetConfig returns the singleton config instance
func GetConfig() *Config {
	once.Do(func() {
		cfg, err := Load()
		if err != nil {
			cfg = LoadTestConfig()
		}
		config = cfg
	})
	return config
}

// Load reads configuration from environment variables. Unset variables fall
// back to their envDefault values.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	switch cfg.Profile.RoleSync {
	case "always", "first_only":
	default:
		return nil, fmt.Errorf("invalid PROFILE_ROLE_SYNC %q: want always or first_only", cfg.Profile.RoleSync)
	}
	switch cfg.Storage.Provider {
	case "local", "s3", "r2":
	default:
		return nil, fmt.Errorf("invalid STORAGE_PROVIDER %q", cfg.Storage.Provider)
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

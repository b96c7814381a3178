package config

import (
	"sync"

	"github.com/andresuchdata/replenish/backend-go/internal/replenishment"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Cache         CacheConfig
	Storage       StorageConfig
	Replenishment ReplenishmentConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled         bool
	RedisURL        string
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	RedisDB         int
	AlertTTLSeconds int
}

// StorageConfig points at an S3-compatible bucket used for snapshot imports
// and draft order exports.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Enabled reports whether enough settings are present to reach the bucket.
func (c StorageConfig) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

type ReplenishmentConfig struct {
	UrgentWithinDays int
	SoonWithinDays   int
	WorkerCount      int
	ExportDir        string
	ExportPrefix     string
}

// Policy converts the configured urgency tiers into an engine policy.
func (c ReplenishmentConfig) Policy() replenishment.Policy {
	return replenishment.Policy{
		UrgentWithinDays: c.UrgentWithinDays,
		SoonWithinDays:   c.SoonWithinDays,
	}
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance = fromViper(viper.GetViper())
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "replenish")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_ALERT_TTL_SECONDS", 60)
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("REPLENISH_URGENT_WITHIN_DAYS", 3)
	v.SetDefault("REPLENISH_SOON_WITHIN_DAYS", 7)
	v.SetDefault("REPLENISH_WORKER_COUNT", 4)
	v.SetDefault("REPLENISH_EXPORT_DIR", "./data/exports")
	v.SetDefault("REPLENISH_EXPORT_PREFIX", "purchase_order_drafts/")
}

func fromViper(v *viper.Viper) *Config {
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:         v.GetBool("CACHE_ENABLED"),
			RedisURL:        v.GetString("REDIS_URL"),
			RedisHost:       v.GetString("REDIS_HOST"),
			RedisPort:       v.GetString("REDIS_PORT"),
			RedisPassword:   v.GetString("REDIS_PASSWORD"),
			RedisDB:         v.GetInt("REDIS_DB"),
			AlertTTLSeconds: v.GetInt("CACHE_ALERT_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
		},
		Replenishment: ReplenishmentConfig{
			UrgentWithinDays: v.GetInt("REPLENISH_URGENT_WITHIN_DAYS"),
			SoonWithinDays:   v.GetInt("REPLENISH_SOON_WITHIN_DAYS"),
			WorkerCount:      v.GetInt("REPLENISH_WORKER_COUNT"),
			ExportDir:        v.GetString("REPLENISH_EXPORT_DIR"),
			ExportPrefix:     v.GetString("REPLENISH_EXPORT_PREFIX"),
		},
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings of the service.
type Config struct {
	AppPort        string
	Database       DatabaseConfig
	JWTSecret      string
	TokenTTL       time.Duration
	RabbitMQURL    string
	Storage        StorageConfig
	UploadMaxBytes int
	LoginRate      RateConfig
}

// DatabaseConfig selects the GORM dialector and its DSN.
type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

// StorageConfig selects the blob store backend for uploaded documents.
type StorageConfig struct {
	Backend  string // "local", "minio" or "gcs"
	LocalDir string
	Minio    MinioConfig
	GCS      GCSConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

// RateConfig allows Requests per Window.
type RateConfig struct {
	Requests int
	Window   time.Duration
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "socios.db?_foreign_keys=on")
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("STORAGE_LOCAL_DIR", "static")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("UPLOAD_MAX_BYTES", 16*1024*1024)
	v.SetDefault("LOGIN_RATE_REQUESTS", 5)
	v.SetDefault("LOGIN_RATE_WINDOW", time.Minute)
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort: v.GetString("APP_PORT"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		JWTSecret:   strings.TrimSpace(v.GetString("JWT_SECRET")),
		TokenTTL:    v.GetDuration("TOKEN_TTL"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		Storage: StorageConfig{
			Backend:  strings.ToLower(v.GetString("STORAGE_BACKEND")),
			LocalDir: v.GetString("STORAGE_LOCAL_DIR"),
			Minio: MinioConfig{
				Endpoint:  v.GetString("MINIO_ENDPOINT"),
				AccessKey: v.GetString("MINIO_ACCESS_KEY"),
				SecretKey: v.GetString("MINIO_SECRET_KEY"),
				Bucket:    v.GetString("MINIO_BUCKET"),
				UseSSL:    v.GetBool("MINIO_USE_SSL"),
			},
			GCS: GCSConfig{
				Bucket:          v.GetString("GCS_BUCKET"),
				ProjectID:       v.GetString("GCS_PROJECT_ID"),
				CredentialsFile: v.GetString("GCS_CREDENTIALS_FILE"),
			},
		},
		UploadMaxBytes: v.GetInt("UPLOAD_MAX_BYTES"),
		LoginRate: RateConfig{
			Requests: v.GetInt("LOGIN_RATE_REQUESTS"),
			Window:   v.GetDuration("LOGIN_RATE_WINDOW"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	switch c.Storage.Backend {
	case "local", "minio", "gcs":
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.LoginRate.Requests <= 0 || c.LoginRate.Window <= 0 {
		return errors.New("LOGIN_RATE_REQUESTS and LOGIN_RATE_WINDOW must be positive")
	}
	return nil
}

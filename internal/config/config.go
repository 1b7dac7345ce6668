package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config aggregates runtime configuration for the FileCrypt API.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	MinIO    MinIOConfig
	Crypto   CryptoConfig
	Upload   UploadConfig
	Metrics  MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int           `validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `validate:"gt=0"`
	WriteTimeout time.Duration `validate:"gt=0"`
	IdleTimeout  time.Duration `validate:"gt=0"`
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects the metadata and blob backends.
type StorageConfig struct {
	MetadataBackend string `validate:"oneof=badger postgres"`
	BlobBackend     string `validate:"oneof=local minio"`
	DataDir         string `validate:"required"`
	BadgerDir       string `validate:"required"`
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// CryptoConfig names the key source. Key takes precedence over Passphrase.
type CryptoConfig struct {
	Key        string `validate:"required_without=Passphrase"`
	Passphrase string `validate:"required_without=Key"`
	Salt       string
	Iterations int `validate:"min=1000"`
}

// UploadConfig bounds what the upload endpoint accepts.
type UploadConfig struct {
	MaxFileSize       int64 `validate:"gt=0"`
	AllowedExtensions []string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string `validate:"startswith=/"`
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	dataDir := getString("FILECRYPT_DATA_DIR", "./uploads")

	cfg := Config{
		Server: ServerConfig{
			Host:         getString("FILECRYPT_API_HOST", "0.0.0.0"),
			Port:         getInt("FILECRYPT_API_PORT", 5000),
			ReadTimeout:  getDuration("FILECRYPT_API_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("FILECRYPT_API_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getDuration("FILECRYPT_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Storage: StorageConfig{
			MetadataBackend: strings.ToLower(getString("FILECRYPT_METADATA_BACKEND", "badger")),
			BlobBackend:     strings.ToLower(getString("FILECRYPT_BLOB_BACKEND", "local")),
			DataDir:         dataDir,
			BadgerDir:       getString("FILECRYPT_BADGER_DIR", dataDir+"/catalog"),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "filecrypt"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "filecrypt"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "filecrypt"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "filecrypt"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Crypto: CryptoConfig{
			Key:        getString("FILECRYPT_KEY", ""),
			Passphrase: getString("FILECRYPT_PASSPHRASE", ""),
			Salt:       getString("FILECRYPT_KEY_SALT", ""),
			Iterations: getInt("FILECRYPT_KEY_ITERATIONS", 100_000),
		},
		Upload: UploadConfig{
			MaxFileSize:       getInt64("FILECRYPT_MAX_FILE_SIZE", 50*1024*1024),
			AllowedExtensions: getList("FILECRYPT_ALLOWED_EXTENSIONS"),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("FILECRYPT_METRICS_PATH", "/metrics"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getList(key string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		item = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(item), "."))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

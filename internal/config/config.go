package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Payment  PaymentConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Logging  LoggingConfig
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	FrontendURL     string
	Environment     string
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// For SQLite
	Path string
}

// AuthConfig contains authentication configuration
type AuthConfig struct {
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	BCryptCost         int
	AdminEmails        []string
}

// PaymentConfig contains payment gateway credentials
type PaymentConfig struct {
	KeyID     string
	KeySecret string
	APIURL    string
	Currency  string
	Timeout   time.Duration
}

// Configured reports whether both gateway credentials are present
func (p PaymentConfig) Configured() bool {
	return p.KeyID != "" && p.KeySecret != ""
}

// ArtifactPath is a storage object path with its fallback
type ArtifactPath struct {
	Primary  string
	Fallback string
}

// StorageConfig contains blob storage configuration for installer downloads
type StorageConfig struct {
	Provider           string // s3, gcs or none
	Bucket             string
	Region             string
	Endpoint           string
	AccessKeyID        string
	SecretAccessKey    string
	GCSCredentialsFile string
	LinkTTL            time.Duration

	FreeArtifact     ArtifactPath
	PersonalArtifact ArtifactPath
	ProArtifact      ArtifactPath
}

// WorkerConfig contains maintenance worker configuration
type WorkerConfig struct {
	Enabled  bool
	Schedule string
	OrderTTL time.Duration
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string
	Format     string // json or console
	OutputPath string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),
			Environment:     getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "qsecurex"),
			User:            getEnv("DB_USER", ""),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			Path:            getEnv("DB_PATH", "./qsecurex.db"),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", "supersecretkey"),
			AccessTokenExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshTokenExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
			BCryptCost:         getEnvAsInt("BCRYPT_COST", 12),
			AdminEmails:        getEnvAsSlice("ADMIN_EMAILS", nil),
		},
		Payment: PaymentConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
			APIURL:    getEnv("RAZORPAY_API_URL", "https://api.razorpay.com/v1"),
			Currency:  getEnv("PAYMENT_CURRENCY", "INR"),
			Timeout:   getEnvAsDuration("PAYMENT_TIMEOUT", 30*time.Second),
		},
		Storage: StorageConfig{
			Provider:           getEnv("STORAGE_PROVIDER", "none"),
			Bucket:             getEnv("STORAGE_BUCKET", ""),
			Region:             getEnv("STORAGE_REGION", "us-east-1"),
			Endpoint:           getEnv("STORAGE_ENDPOINT", ""),
			AccessKeyID:        getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:    getEnv("AWS_SECRET_ACCESS_KEY", ""),
			GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
			LinkTTL:            getEnvAsDuration("DOWNLOAD_LINK_TTL", 4*time.Hour),
			FreeArtifact: ArtifactPath{
				Primary:  getEnv("DOWNLOAD_FREE_FILE_PATH", "Apps/QSecureX_Storage/QSecureX.dmg"),
				Fallback: getEnv("DOWNLOAD_FREE_FILE_PATH_FALLBACK", "QSecureX.dmg"),
			},
			PersonalArtifact: ArtifactPath{
				Primary:  getEnv("DOWNLOAD_PERSONAL_FILE_PATH", "Apps/QSecureX_Storage/QSecureX.dmg"),
				Fallback: getEnv("DOWNLOAD_PERSONAL_FILE_PATH_FALLBACK", "QSecureX.dmg"),
			},
			ProArtifact: ArtifactPath{
				Primary:  getEnv("DOWNLOAD_PRO_FILE_PATH", "Apps/QSecureX_Storage/QSecureX-Installer.dmg"),
				Fallback: getEnv("DOWNLOAD_PRO_FILE_PATH_FALLBACK", "QSecureX-Installer.dmg"),
			},
		},
		Worker: WorkerConfig{
			Enabled:  getEnvAsBool("WORKER_ENABLED", true),
			Schedule: getEnv("WORKER_SCHEDULE", "@every 15m"),
			OrderTTL: getEnvAsDuration("ORDER_TTL", 24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "supersecretkey" {
		return fmt.Errorf("JWT_SECRET must be set and should not use default value in production")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	switch c.Storage.Provider {
	case "none":
	case "s3", "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("STORAGE_BUCKET is required for storage provider %s", c.Storage.Provider)
		}
	default:
		return fmt.Errorf("unsupported storage provider: %s", c.Storage.Provider)
	}

	if c.Worker.OrderTTL <= 0 {
		return fmt.Errorf("ORDER_TTL must be positive")
	}

	return nil
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS
func (a AuthConfig) IsAdminEmail(email string) bool {
	for _, e := range a.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

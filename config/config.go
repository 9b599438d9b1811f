package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	App      AppConfig
	Advisory AdvisoryConfig
	Upload   UploadConfig
	Firebase FirebaseConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	// DSN is used by the pgx pool. When empty the discrete fields below are used.
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Enabled  bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	ServiceName string
}

// AdvisoryConfig selects the advisory backend used by the AI panels.
type AdvisoryConfig struct {
	Mode         string // mock | remote
	BaseURL      string
	APIKey       string
	MockDelay    time.Duration
	RateLimitRPS float64
	Burst        int
	PanelTTL     time.Duration
}

type UploadConfig struct {
	CloudName    string
	UploadPreset string
	Endpoint     string
	MaxBytes     int64
}

type FirebaseConfig struct {
	CredentialsPath string
}

type JobsConfig struct {
	PanelSweepSpec string
}

const (
	AdvisoryModeMock   = "mock"
	AdvisoryModeRemote = "remote"

	defaultCloudName    = "rwa-academy"
	defaultUploadPreset = "rwa_unsigned"
)

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "rwa_wizard"),
			Enabled:  getEnvAsBool("DB_ENABLED", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			ServiceName: getEnv("SERVICE_NAME", "rwa-wizard"),
		},
		Advisory: AdvisoryConfig{
			Mode:         getEnv("ADVISORY_MODE", AdvisoryModeMock),
			BaseURL:      getEnv("ADVISORY_BASE_URL", ""),
			APIKey:       getEnv("ADVISORY_API_KEY", ""),
			MockDelay:    getEnvAsDuration("ADVISORY_MOCK_DELAY", 1500*time.Millisecond),
			RateLimitRPS: getEnvAsFloat("ADVISORY_RATE_LIMIT_RPS", 2),
			Burst:        getEnvAsInt("ADVISORY_BURST", 4),
			PanelTTL:     getEnvAsDuration("ADVISORY_PANEL_TTL", 30*time.Minute),
		},
		Upload: UploadConfig{
			CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", defaultCloudName),
			UploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", defaultUploadPreset),
			Endpoint:     getEnv("CLOUDINARY_ENDPOINT", "https://api.cloudinary.com/v1_1"),
			MaxBytes:     int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10<<20)),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Jobs: JobsConfig{
			PanelSweepSpec: getEnv("PANEL_SWEEP_CRON", "0 */5 * * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Enabled && c.Database.DSN == "" && c.Database.Host == "" {
		return fmt.Errorf("DB_HOST or DB_DSN is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	switch c.Advisory.Mode {
	case AdvisoryModeMock:
	case AdvisoryModeRemote:
		if c.Advisory.BaseURL == "" {
			return fmt.Errorf("ADVISORY_BASE_URL is required when ADVISORY_MODE=remote")
		}
	default:
		return fmt.Errorf("unknown ADVISORY_MODE %q", c.Advisory.Mode)
	}

	return nil
}

// PostgresDSN returns the key/value DSN understood by both pgx and lib/pq.
func (d DatabaseConfig) PostgresDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name,
	)
}

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
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
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
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
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
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
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
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Web      WebConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	Upload   UploadConfig
	Worker   WorkerConfig
	Log      LogConfig

	envFileErr error
}

type ServerConfig struct {
	WebPort string
	APIPort string
	Env     string
}

// WebConfig drives the browser-facing frontend and its dispatcher.
type WebConfig struct {
	ReviewAPIURL    string
	RequestTimeout  time.Duration
	SessionTTL      time.Duration
	RefreshInterval time.Duration
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type GeminiConfig struct {
	APIKey         string
	Model          string
	Timeout        time.Duration
	MaxPromptChars int
}

type UploadConfig struct {
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency       int
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	envFileErr := godotenv.Load()

	return &Config{
		envFileErr: envFileErr,
		Server: ServerConfig{
			WebPort: getEnv("WEB_PORT", "3000"),
			APIPort: getEnv("API_PORT", "8000"),
			Env:     getEnv("ENV", "development"),
		},
		Web: WebConfig{
			ReviewAPIURL:    strings.TrimRight(getEnv("REVIEW_API_URL", "http://127.0.0.1:8000"), "/"),
			RequestTimeout:  getEnvAsDuration("REVIEW_REQUEST_TIMEOUT", "90s"),
			SessionTTL:      getEnvAsDuration("SESSION_TTL", "30m"),
			RefreshInterval: getEnvAsDuration("PAGE_REFRESH_INTERVAL", "2s"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_reviewer"),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout:        getEnvAsDuration("GEMINI_TIMEOUT", "60s"),
			MaxPromptChars: getEnvAsInt("MAX_PROMPT_CHARS", 30000),
		},
		Upload: UploadConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvAsInt("WORKER_CONCURRENCY", 4),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 5),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", "4s"),
			RetryMaxDelay:     getEnvAsDuration("RETRY_MAX_DELAY", "10s"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}
}

// EnvFileError is the error from loading .env, nil when the file was read.
// Load runs before the logger exists, so callers report it.
func (c *Config) EnvFileError() error {
	return c.envFileErr
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// ReviewEndpoint is the fixed URL the frontend posts resumes to.
func (c *Config) ReviewEndpoint() string {
	return c.Web.ReviewAPIURL + "/review-resume/"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

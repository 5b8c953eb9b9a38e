package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Identity     IdentityConfig
	Billing      BillingConfig
	Storage      StorageConfig
	Advisor      AdvisorConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// IdentityConfig selects and configures the identity provider.
// Mode "remote" validates tokens against the managed auth endpoint;
// mode "local" issues and validates HS256 tokens against the local
// users table (development only).
type IdentityConfig struct {
	Mode                  string
	ProviderURL           string
	ProviderKey           string
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// BillingConfig points at the payments processor.
type BillingConfig struct {
	APIBaseURL      string
	SecretKey       string
	PortalReturnURL string
	SuccessURL      string
	CancelURL       string
}

// StorageConfig points at the managed object storage.
type StorageConfig struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
}

// AdvisorConfig configures the hosted LLM.
type AdvisorConfig struct {
	APIKey          string
	ChatModel       string
	EmbedModel      string
	MaxOutputTokens int
	Temperature     float64
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	temperature, err := strconv.ParseFloat(getEnv("ADVISOR_TEMPERATURE", "0.4"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADVISOR_TEMPERATURE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "guidance-backoffice"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Identity: IdentityConfig{
			Mode:                  getEnv("IDENTITY_MODE", "remote"),
			ProviderURL:           os.Getenv("IDENTITY_PROVIDER_URL"),
			ProviderKey:           os.Getenv("IDENTITY_PROVIDER_KEY"),
			JWTSecret:             getEnv("IDENTITY_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("IDENTITY_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("IDENTITY_BCRYPT_COST", 12),
		},
		Billing: BillingConfig{
			APIBaseURL:      os.Getenv("BILLING_API_BASE_URL"),
			SecretKey:       os.Getenv("BILLING_SECRET_KEY"),
			PortalReturnURL: getEnv("BILLING_PORTAL_RETURN_URL", "https://app.example.com/account"),
			SuccessURL:      getEnv("BILLING_SUCCESS_URL", "https://app.example.com/checkout/success"),
			CancelURL:       getEnv("BILLING_CANCEL_URL", "https://app.example.com/checkout/cancel"),
		},
		Storage: StorageConfig{
			BaseURL:    os.Getenv("STORAGE_BASE_URL"),
			ServiceKey: os.Getenv("STORAGE_SERVICE_KEY"),
			Bucket:     getEnv("STORAGE_BUCKET", "ticket-attachments"),
		},
		Advisor: AdvisorConfig{
			APIKey:          os.Getenv("ADVISOR_API_KEY"),
			ChatModel:       getEnv("ADVISOR_CHAT_MODEL", "gemini-2.0-flash"),
			EmbedModel:      getEnv("ADVISOR_EMBED_MODEL", "gemini-embedding-001"),
			MaxOutputTokens: getEnvAsInt("ADVISOR_MAX_OUTPUT_TOKENS", 1024),
			Temperature:     temperature,
		},
		Notification: NotificationConfig{
			EmailFrom:  os.Getenv("NOTIFY_EMAIL_FROM"),
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

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
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	OTP      OTPConfig
	Session  SessionConfig
	SMTP     SMTPConfig
	Registry RegistryConfig
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

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// OTPConfig defines ticket lifetimes for the OTP-gated credential flows.
type OTPConfig struct {
	RegisterTTLMinutes      int
	LoginTTLMinutes         int
	ResetTTLMinutes         int
	ResetVerifiedTTLMinutes int
}

// SessionConfig controls the browser session store.
type SessionConfig struct {
	CookieName     string
	TTLMinutes     int
	CookieSecure   bool
	CookieHTTPOnly bool
}

// SMTPConfig holds outbound mail settings. An empty Host disables real sends.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// RegistryConfig configures the upstream patient-registry API.
type RegistryConfig struct {
	BaseURL        string
	Username       string
	Password       string
	TimeoutSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "finance-tracker"),
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
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		OTP: OTPConfig{
			RegisterTTLMinutes:      getEnvAsInt("OTP_REGISTER_TTL_MINUTES", 10),
			LoginTTLMinutes:         getEnvAsInt("OTP_LOGIN_TTL_MINUTES", 10),
			ResetTTLMinutes:         getEnvAsInt("OTP_RESET_TTL_MINUTES", 10),
			ResetVerifiedTTLMinutes: getEnvAsInt("OTP_RESET_VERIFIED_TTL_MINUTES", 5),
		},
		Session: SessionConfig{
			CookieName:     getEnv("SESSION_COOKIE_NAME", "ft_session"),
			TTLMinutes:     getEnvAsInt("SESSION_TTL_MINUTES", 120),
			CookieSecure:   getEnvAsBool("SESSION_COOKIE_SECURE", false),
			CookieHTTPOnly: getEnvAsBool("SESSION_COOKIE_HTTPONLY", true),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "noreply@example.com"),
		},
		Registry: RegistryConfig{
			BaseURL:        getEnv("PATIENT_REGISTRY_URL", "https://mockapi.pkuwsb.id/api"),
			Username:       getEnv("PATIENT_REGISTRY_USERNAME", "admin"),
			Password:       getEnv("PATIENT_REGISTRY_PASSWORD", "secret"),
			TimeoutSeconds: getEnvAsInt("PATIENT_REGISTRY_TIMEOUT_SECONDS", 30),
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

// RegisterTTL returns the registration OTP ticket lifetime.
func (o OTPConfig) RegisterTTL() time.Duration {
	return time.Duration(o.RegisterTTLMinutes) * time.Minute
}

// LoginTTL returns the login OTP ticket lifetime.
func (o OTPConfig) LoginTTL() time.Duration {
	return time.Duration(o.LoginTTLMinutes) * time.Minute
}

// ResetTTL returns the password-reset OTP ticket lifetime.
func (o OTPConfig) ResetTTL() time.Duration {
	return time.Duration(o.ResetTTLMinutes) * time.Minute
}

// ResetVerifiedTTL returns the stage-two password-reset ticket lifetime.
func (o OTPConfig) ResetVerifiedTTL() time.Duration {
	return time.Duration(o.ResetVerifiedTTLMinutes) * time.Minute
}

// TTL returns the session lifetime in Redis.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

// Timeout returns the upstream request timeout.
func (r RegistryConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
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

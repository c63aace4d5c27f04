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
	Database  DatabaseConfig
	Server    ServerConfig
	App       AppConfig
	Solana    SolanaConfig
	Payment   PaymentConfig
	Redis     RedisConfig
	Log       LogConfig
	Archive   ArchiveConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver   string
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For. Empty means the socket
	// address is the client IP.
	TrustedProxies  []string
	ShutdownTimeout time.Duration
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret         string
	JWTTTL            time.Duration
	LoginWindow       time.Duration
	MaxQuestionLength int
	CodeIssueAttempts int
}

// SolanaConfig holds Solana RPC settings
type SolanaConfig struct {
	Network string
	RPCURL  string
}

// PaymentConfig controls on-chain payment verification
type PaymentConfig struct {
	Verify bool
}

// RedisConfig holds Redis settings. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// ArchiveConfig controls the archival job. A zero RepliedAfter disables it.
type ArchiveConfig struct {
	RepliedAfter time.Duration
	Interval     time.Duration
}

// RateLimitConfig limits code redemption per client IP
type RateLimitConfig struct {
	RedeemPerMinute int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var errs []string
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	jwtTTL, err := getEnvDuration("JWT_TTL", 24*time.Hour)
	collect(err)
	loginWindow, err := getEnvDuration("LOGIN_WINDOW", 5*time.Minute)
	collect(err)
	shutdownTimeout, err := getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	collect(err)
	maxQuestionLength, err := getEnvInt("MAX_QUESTION_LENGTH", 2000)
	collect(err)
	codeAttempts, err := getEnvInt("CODE_ISSUE_ATTEMPTS", 5)
	collect(err)
	verify, err := getEnvBool("PAYMENT_VERIFY", true)
	collect(err)
	redisDB, err := getEnvInt("REDIS_DB", 0)
	collect(err)
	archiveAfter, err := getEnvDuration("ARCHIVE_REPLIED_AFTER", 0)
	collect(err)
	archiveInterval, err := getEnvDuration("ARCHIVE_INTERVAL", time.Hour)
	collect(err)
	redeemPerMinute, err := getEnvInt("REDEEM_RATE_PER_MINUTE", 30)
	collect(err)

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	config := &Config{
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "onlyanon"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
			TrustedProxies:  splitList(getEnv("TRUSTED_PROXIES", "")),
			ShutdownTimeout: shutdownTimeout,
		},
		App: AppConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			JWTTTL:            jwtTTL,
			LoginWindow:       loginWindow,
			MaxQuestionLength: maxQuestionLength,
			CodeIssueAttempts: codeAttempts,
		},
		Solana: SolanaConfig{
			Network: getEnv("SOLANA_NETWORK", "devnet"),
			RPCURL:  getEnv("SOLANA_RPC_URL", ""),
		},
		Payment: PaymentConfig{
			Verify: verify,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Archive: ArchiveConfig{
			RepliedAfter: archiveAfter,
			Interval:     archiveInterval,
		},
		RateLimit: RateLimitConfig{
			RedeemPerMinute: redeemPerMinute,
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required fields and value ranges
func (c *Config) Validate() error {
	if c.App.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.App.MaxQuestionLength <= 0 {
		return fmt.Errorf("MAX_QUESTION_LENGTH must be positive")
	}
	if c.App.CodeIssueAttempts <= 0 {
		return fmt.Errorf("CODE_ISSUE_ATTEMPTS must be positive")
	}
	if c.RateLimit.RedeemPerMinute <= 0 {
		return fmt.Errorf("REDEEM_RATE_PER_MINUTE must be positive")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Archive.RepliedAfter > 0 && c.Archive.Interval <= 0 {
		return fmt.Errorf("ARCHIVE_INTERVAL must be positive when archiving is enabled")
	}
	return nil
}

// GetDSN returns the database connection string.
// DATABASE_URL wins when set; for sqlite DB_NAME is the file path.
func (c *Config) GetDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	if c.Database.Driver == "sqlite" {
		return c.Database.DBName
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

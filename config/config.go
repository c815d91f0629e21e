package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API      APIConfig
	Telegram TelegramConfig
	HTTP     HTTPConfig
	DB       DBConfig
	AMQP     AMQPConfig
	Pricing  PricingConfig
	Display  DisplayConfig
	Log      LogConfig
}

// APIConfig points at the billing backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type TelegramConfig struct {
	Token      string
	AdminToken string // menu management bot
	AdminID    int64  // only this user may use the admin bot when set
}

type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
	SessionIdleTTL time.Duration
	MaxSessions    int
	AdminKey       string // menu and settings routes are mounted only when set
}

// DBConfig is optional: with an empty Host the terminal keeps preferences in memory.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func (c DBConfig) Enabled() bool { return c.Host != "" }

type AMQPConfig struct {
	URL      string
	Exchange string
}

type PricingConfig struct {
	FallbackPolicy            string // "placeholder" or "zero"
	TaxRateFallback           string
	ServiceChargeRateFallback string
}

type DisplayConfig struct {
	Currency      string
	DefaultLocale string
	NoticeTTL     time.Duration
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	maxSessions, err := strconv.Atoi(getEnv("MAX_SESSIONS", "1000"))
	if err != nil || maxSessions <= 0 {
		maxSessions = 1000
	}
	adminID, _ := strconv.ParseInt(getEnv("ADMIN_ID", "0"), 10, 64)

	return &Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
			Timeout: getDuration("API_TIMEOUT", 15*time.Second),
		},
		Telegram: TelegramConfig{
			Token:      getEnv("TOKEN", ""),
			AdminToken: getEnv("ADMIN_TOKEN", ""),
			AdminID:    adminID,
		},
		HTTP: HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", ""),
			AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
			SessionIdleTTL: getDuration("SESSION_IDLE_TTL", 30*time.Minute),
			MaxSessions:    maxSessions,
			AdminKey:       getEnv("ADMIN_API_KEY", ""),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "pos"),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "pos_events"),
		},
		Pricing: PricingConfig{
			FallbackPolicy:            getEnv("RATE_FALLBACK_POLICY", "placeholder"),
			TaxRateFallback:           getEnv("TAX_RATE_FALLBACK", "10"),
			ServiceChargeRateFallback: getEnv("SERVICE_CHARGE_RATE_FALLBACK", "5"),
		},
		Display: DisplayConfig{
			Currency:      getEnv("CURRENCY_SYMBOL", "₹"),
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
			NoticeTTL:     getDuration("NOTICE_TTL", 3*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

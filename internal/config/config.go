package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port            string
	UpstreamTimeout time.Duration

	// Food-delivery backend (restaurants, menu, orders, payments, auth)
	BackendURL        string
	BackendHealthPath string

	// Empty DSN keeps shopper state in memory only.
	DatabaseDSN   string
	RunMigrations bool

	// Empty URL disables event publishing.
	RabbitMQURL string

	CORSAllowOrigins []string

	ToastTTL       time.Duration
	ShopperIdleTTL time.Duration

	DefaultDeliveryFee decimal.Decimal
	PlatformFee        decimal.Decimal
	TaxRate            decimal.Decimal
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:            getenv("PORT", "8080"),
		UpstreamTimeout: parseDuration(getenv("UPSTREAM_TIMEOUT", "10s"), 10*time.Second),

		BackendURL:        getenv("BACKEND_URL", "http://food-delivery-backend:8080/api"),
		BackendHealthPath: getenv("BACKEND_HEALTH_PATH", "/actuator/health"),

		DatabaseDSN:   os.Getenv("DATABASE_DSN"),
		RunMigrations: envBool("RUN_MIGRATIONS", true),

		RabbitMQURL: os.Getenv("RABBITMQ_URL"),

		CORSAllowOrigins: splitCSV(getenv("CORS_ALLOW_ORIGINS", "*")),

		ToastTTL:       parseDuration(getenv("TOAST_TTL", "3s"), 3*time.Second),
		ShopperIdleTTL: parseDuration(getenv("SHOPPER_IDLE_TTL", "30m"), 30*time.Minute),

		DefaultDeliveryFee: parseDecimal(getenv("DEFAULT_DELIVERY_FEE", "30"), decimal.NewFromInt(30)),
		PlatformFee:        parseDecimal(getenv("PLATFORM_FEE", "5"), decimal.NewFromInt(5)),
		TaxRate:            parseDecimal(getenv("TAX_RATE", "0.05"), decimal.RequireFromString("0.05")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func parseDecimal(v string, def decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return d
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

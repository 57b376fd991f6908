package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret string
	JWTIssuer string

	// AdminAPITokenHash is the bcrypt hash of the shared token guarding
	// policy administration routes.
	AdminAPITokenHash string

	// NATS
	NATSURL           string
	NATSClientName    string
	NATSMaxReconnects int
	NATSReconnectWait time.Duration

	// Policy resolution cache
	PolicyCacheTTL time.Duration

	// Rate limiting, in limiter format e.g. "100-M"
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "payment-platform")
	viper.SetDefault("ADMIN_API_TOKEN_HASH", "")
	viper.SetDefault("NATS_URL", "nats://localhost:4222")
	viper.SetDefault("NATS_CLIENT_NAME", "pp-backend")
	viper.SetDefault("NATS_MAX_RECONNECTS", 10)
	viper.SetDefault("NATS_RECONNECT_WAIT", "2s")
	viper.SetDefault("POLICY_CACHE_TTL", "30s")
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.AdminAPITokenHash = viper.GetString("ADMIN_API_TOKEN_HASH")
	if cfg.AdminAPITokenHash == "" {
		log.Println("Warning: ADMIN_API_TOKEN_HASH not set. Policy administration routes will reject all requests.")
	}

	cfg.NATSURL = viper.GetString("NATS_URL")
	cfg.NATSClientName = viper.GetString("NATS_CLIENT_NAME")
	cfg.NATSMaxReconnects = viper.GetInt("NATS_MAX_RECONNECTS")

	natsReconnectWaitStr := viper.GetString("NATS_RECONNECT_WAIT")
	natsReconnectWait, err := time.ParseDuration(natsReconnectWaitStr)
	if err != nil {
		natsReconnectWait = 2 * time.Second
		log.Printf("Warning: Invalid value for NATS_RECONNECT_WAIT ('%s'). Defaulting to %s.\n", natsReconnectWaitStr, natsReconnectWait.String())
	}
	cfg.NATSReconnectWait = natsReconnectWait

	cacheTTLStr := viper.GetString("POLICY_CACHE_TTL")
	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil {
		cacheTTL = 30 * time.Second
		log.Printf("Warning: Invalid value for POLICY_CACHE_TTL ('%s'). Defaulting to %s.\n", cacheTTLStr, cacheTTL.String())
	}
	cfg.PolicyCacheTTL = cacheTTL

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}

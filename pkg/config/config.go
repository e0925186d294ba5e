package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Quote provider
	QuoteAPIURL  string
	QuoteAPIKey  string
	QuoteTimeout time.Duration

	// Cash every new account starts with.
	StartingCash decimal.Decimal
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "stockfolio-backend")
	viper.SetDefault("QUOTE_API_URL", "")
	viper.SetDefault("QUOTE_API_KEY", "")
	viper.SetDefault("QUOTE_TIMEOUT", "5s")
	viper.SetDefault("STARTING_CASH", "10000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set. Falling back to the in-memory ledger store.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.QuoteAPIURL = viper.GetString("QUOTE_API_URL")
	if cfg.QuoteAPIURL == "" {
		log.Println("Warning: QUOTE_API_URL environment variable not set. Falling back to the built-in static quote table.")
	}
	cfg.QuoteAPIKey = viper.GetString("QUOTE_API_KEY")

	quoteTimeoutStr := viper.GetString("QUOTE_TIMEOUT")
	quoteTimeout, err := time.ParseDuration(quoteTimeoutStr)
	if err != nil {
		quoteTimeout = 5 * time.Second
		log.Printf("Warning: Invalid value for QUOTE_TIMEOUT ('%s'). Defaulting to %s.\n", quoteTimeoutStr, quoteTimeout.String())
	}
	cfg.QuoteTimeout = quoteTimeout

	startingCashStr := viper.GetString("STARTING_CASH")
	startingCash, err := decimal.NewFromString(startingCashStr)
	if err != nil || startingCash.IsNegative() {
		startingCash = decimal.NewFromInt(10000)
		log.Printf("Warning: Invalid value for STARTING_CASH ('%s'). Defaulting to %s.\n", startingCashStr, startingCash.String())
	}
	cfg.StartingCash = startingCash

	return cfg, nil
}

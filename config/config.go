package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable the service reads from the environment.
type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	DBPath string `envconfig:"DB_PATH" default:"quickbites.db"`

	// Two independent secrets so a leaked refresh secret cannot forge access tokens.
	JWTAccessSecret  string        `envconfig:"JWT_ACCESS_SECRET" default:"quickbites_access_secret_dev"`
	JWTRefreshSecret string        `envconfig:"JWT_REFRESH_SECRET" default:"quickbites_refresh_secret_dev"`
	AccessTokenTTL   time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL  time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"168h"`

	// Empty RedisURL runs the service on the in-memory cache.
	RedisURL string `envconfig:"REDIS_URL" default:""`

	SessionTTL           time.Duration `envconfig:"SESSION_TTL" default:"168h"`
	VerificationTokenTTL time.Duration `envconfig:"VERIFICATION_TOKEN_TTL" default:"24h"`
	ResetTokenTTL        time.Duration `envconfig:"RESET_TOKEN_TTL" default:"1h"`

	TaxRate   float64 `envconfig:"TAX_RATE" default:"0.05"`
	AppURL    string  `envconfig:"APP_URL" default:"http://localhost:3000"`
	FromEmail string  `envconfig:"FROM_EMAIL" default:"no-reply@quickbites.dev"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

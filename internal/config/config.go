package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all configuration for the status service
type Config struct {
	// HTTP
	Port      string `validate:"required"`
	StaticDir string

	// Timetable store: SQLite by default, Postgres when DATABASE_URL is set
	DatabasePath string `validate:"required"`
	DatabaseURL  string

	// Target service
	FeedURL  string `validate:"required,url"`
	RouteID  string `validate:"required"`
	Timezone string `validate:"required"`

	// Reward
	SecretKeyword string

	// Proximity gate: "strict" rejects callers beyond the radius with a 404,
	// "advisory" proceeds and only withholds the reward
	ProximityMode     string  `validate:"oneof=strict advisory"`
	MinDistanceMeters float64 `validate:"gt=0"`

	// Arrival matching
	AcceptableDelay time.Duration `validate:"gt=0"`
	RevealWindow    time.Duration `validate:"gt=0"`
	ArrivalGrace    time.Duration `validate:"gte=0"`
	Lookahead       time.Duration `validate:"gt=0"`
	SightingWindow  time.Duration `validate:"gt=0"`

	// Tokens
	TokenTTL       time.Duration `validate:"gt=0"`
	SweepInterval  time.Duration `validate:"gt=0"`
	TokenSingleUse bool

	// Upstream feed
	FeedTimeout time.Duration `validate:"gt=0"`
}

// ProximityStrict reports whether callers beyond the acceptance radius
// should be rejected outright.
func (c *Config) ProximityStrict() bool {
	return c.ProximityMode == "strict"
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		StaticDir: getEnv("STATIC_DIR", ""),

		DatabasePath: getEnv("SQLITE_DATABASE", "data/gtfs.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		FeedURL:  getEnv("GTFS_RT_URL", "https://gtfsrt.api.translink.com.au/api/realtime/SEQ/TripUpdates"),
		RouteID:  getEnv("TARGET_ROUTE_ID", "61-4158"),
		Timezone: getEnv("TIMEZONE", "Australia/Brisbane"),

		SecretKeyword: getEnv("SECRET_KEYWORD", ""),

		ProximityMode:     getEnv("PROXIMITY_MODE", "strict"),
		MinDistanceMeters: getEnvFloat("MIN_DISTANCE", 100),

		AcceptableDelay: time.Duration(getEnvInt("ACCEPTABLE_DELAY", 60)) * time.Second,
		RevealWindow:    time.Duration(getEnvInt("REVEAL_WINDOW", 60)) * time.Second,
		ArrivalGrace:    time.Duration(getEnvInt("ARRIVAL_GRACE", 60)) * time.Second,
		Lookahead:       time.Duration(getEnvInt("LOOKAHEAD_MINUTES", 30)) * time.Minute,
		SightingWindow:  time.Duration(getEnvInt("SIGHTING_WINDOW", 600)) * time.Second,

		TokenTTL:       time.Duration(getEnvInt("TOKEN_EXPIRY_SECONDS", 15*60)) * time.Second,
		SweepInterval:  time.Duration(getEnvInt("TOKEN_SWEEP_SECONDS", 60)) * time.Second,
		TokenSingleUse: getEnvBool("TOKEN_SINGLE_USE", false),

		FeedTimeout: time.Duration(getEnvInt("FEED_TIMEOUT_SECONDS", 15)) * time.Second,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

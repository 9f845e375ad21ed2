package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Quote     QuoteConfig     `mapstructure:"quote"`
	Geocoder  GeocoderConfig  `mapstructure:"geocoder"`
	Session   SessionConfig   `mapstructure:"session"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CatalogConfig holds catalog file configuration
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// QuoteConfig holds quote engine configuration
type QuoteConfig struct {
	DefaultRadiusKm  float64 `mapstructure:"default_radius_km"`
	MinRadiusKm      float64 `mapstructure:"min_radius_km"`
	MaxRadiusKm      float64 `mapstructure:"max_radius_km"`
	TopN             int     `mapstructure:"top_n"`
	DefaultLatitude  float64 `mapstructure:"default_latitude"`
	DefaultLongitude float64 `mapstructure:"default_longitude"`
}

// GeocoderConfig holds Nominatim client configuration
type GeocoderConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRetries        int           `mapstructure:"max_retries"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	FallbackSuffixes  []string      `mapstructure:"fallback_suffixes"`
}

// SessionConfig holds session lifecycle configuration
type SessionConfig struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RateLimitConfig holds per-client HTTP rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// .env is optional
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("QUOTE_SERVICE")

	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")

	v.BindEnv("catalog.path", "CATALOG_PATH")

	v.BindEnv("geocoder.base_url", "NOMINATIM_URL")
	v.BindEnv("geocoder.user_agent", "NOMINATIM_USER_AGENT")

	v.BindEnv("logging.level", "LOG_LEVEL")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Catalog defaults
	v.SetDefault("catalog.path", "./data/catalog.xlsx")

	// Quote defaults: Lima city center as the starting location
	v.SetDefault("quote.default_radius_km", 3.0)
	v.SetDefault("quote.min_radius_km", 1.0)
	v.SetDefault("quote.max_radius_km", 15.0)
	v.SetDefault("quote.top_n", 3)
	v.SetDefault("quote.default_latitude", -12.0675)
	v.SetDefault("quote.default_longitude", -77.0333)

	// Geocoder defaults
	v.SetDefault("geocoder.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocoder.user_agent", "ferredex-quote-service/1.0")
	v.SetDefault("geocoder.timeout", 10*time.Second)
	v.SetDefault("geocoder.max_retries", 2)
	v.SetDefault("geocoder.requests_per_second", 1.0)
	v.SetDefault("geocoder.fallback_suffixes", []string{"Lima, Perú", "Perú"})

	// Session defaults
	v.SetDefault("session.idle_ttl", 30*time.Minute)
	v.SetDefault("session.sweep_interval", 5*time.Minute)

	// Rate limit defaults
	v.SetDefault("rate_limit.requests_per_second", 5.0)
	v.SetDefault("rate_limit.burst", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)
}

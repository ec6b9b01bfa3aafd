package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/jengzang/mobility-metrics-go/internal/models"
	"github.com/spf13/viper"
)

// Config is the application configuration
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string // empty disables authentication
	LogLevel  string
	Workers   int
	RateLimit int // requests per minute per client
	CacheSize int // cached global metrics rows

	// Defaults applied to submitted pipeline parameters
	Defaults models.Params
}

// New returns a viper instance with every default and environment binding
// registered
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("port", ":8080")
	v.SetDefault("db_path", "./data/mobility.db")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("rate_limit", 60)
	v.SetDefault("cache_size", 128)

	v.SetDefault("params.distance_threshold", 50.0)
	v.SetDefault("params.time_threshold", 20.0)
	v.SetDefault("params.radius_threshold", 10.0)
	v.SetDefault("params.contact_time_threshold", 20.0)
	v.SetDefault("params.quadrant_parts", 10)
	v.SetDefault("params.is_geographical_coordinates", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the configuration from the environment and, when path is not
// empty, from a config file
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from the settings of v
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:      v.GetString("port"),
		DBPath:    v.GetString("db_path"),
		JWTSecret: v.GetString("jwt_secret"),
		LogLevel:  strings.ToLower(v.GetString("log_level")),
		Workers:   v.GetInt("workers"),
		RateLimit: v.GetInt("rate_limit"),
		CacheSize: v.GetInt("cache_size"),
		Defaults: models.Params{
			DistanceThreshold:         v.GetFloat64("params.distance_threshold"),
			TimeThreshold:             v.GetFloat64("params.time_threshold"),
			RadiusThreshold:           v.GetFloat64("params.radius_threshold"),
			ContactTimeThreshold:      v.GetFloat64("params.contact_time_threshold"),
			QuadrantParts:             v.GetInt("params.quadrant_parts"),
			IsGeographicalCoordinates: v.GetBool("params.is_geographical_coordinates"),
		},
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("cache_size must be positive, got %d", cfg.CacheSize)
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate_limit must not be negative, got %d", cfg.RateLimit)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}

	return cfg, nil
}

// AuthEnabled reports whether write routes require a token
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

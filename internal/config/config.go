// Package config loads the application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Provider ProviderConfig `yaml:"provider" mapstructure:"provider"`
	Routing  RoutingConfig  `yaml:"routing" mapstructure:"routing"`
	Hazard   HazardConfig   `yaml:"hazard" mapstructure:"hazard"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ProviderConfig configures the routing provider client.
type ProviderConfig struct {
	Key              string  `yaml:"key" mapstructure:"key"`
	BaseURL          string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit        float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	GeocodeCacheSize int     `yaml:"geocode_cache_size" mapstructure:"geocode_cache_size"`
}

// RoutingConfig configures route fetching and ranking.
type RoutingConfig struct {
	Profile          string   `yaml:"profile" mapstructure:"profile"`
	Avoid            []string `yaml:"avoid" mapstructure:"avoid"`
	SafetyPriority   float64  `yaml:"safety_priority" mapstructure:"safety_priority"`
	TimeBucket       string   `yaml:"time_bucket" mapstructure:"time_bucket"`
	MaxLegDistanceM  float64  `yaml:"max_leg_distance_m" mapstructure:"max_leg_distance_m"`
	Alternatives     bool     `yaml:"alternatives" mapstructure:"alternatives"`
	AlternativeCount int      `yaml:"alternative_count" mapstructure:"alternative_count"`
	WeightFactor     float64  `yaml:"weight_factor" mapstructure:"weight_factor"`
	LegConcurrency   int      `yaml:"leg_concurrency" mapstructure:"leg_concurrency"`
}

// HazardConfig selects and configures the hazard data source.
type HazardConfig struct {
	Source      string `yaml:"source" mapstructure:"source"` // synthetic, sqlite, postgres
	Seed        uint64 `yaml:"seed" mapstructure:"seed"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the configuration for the given command mode. Modes:
// "route" and "serve" need a provider key and sane routing knobs; "hazards"
// only needs a hazard store.
func (c *Config) Validate(mode string) error {
	var problems []string

	routing := func() {
		if c.Provider.Key == "" {
			problems = append(problems, "provider.key is required")
		}
		if c.Routing.SafetyPriority < 0 || c.Routing.SafetyPriority > 10 {
			problems = append(problems, "routing.safety_priority must be between 0 and 10")
		}
		if c.Routing.MaxLegDistanceM <= 0 {
			problems = append(problems, "routing.max_leg_distance_m must be > 0")
		}
		if c.Hazard.Source == "sqlite" && c.Hazard.SQLitePath == "" {
			problems = append(problems, "hazard.sqlite_path is required for the sqlite source")
		}
		if c.Hazard.Source == "postgres" && c.Hazard.DatabaseURL == "" {
			problems = append(problems, "hazard.database_url is required for the postgres source")
		}
	}

	switch mode {
	case "route":
		routing()
	case "serve":
		routing()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "hazards":
		if c.Hazard.SQLitePath == "" {
			problems = append(problems, "hazard.sqlite_path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SAFEROUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("provider.base_url", "https://api.openrouteservice.org")
	v.SetDefault("provider.rate_limit", 5)
	v.SetDefault("provider.geocode_cache_size", 256)
	v.SetDefault("routing.profile", "driving")
	v.SetDefault("routing.avoid", []string{})
	v.SetDefault("routing.safety_priority", 5)
	v.SetDefault("routing.time_bucket", "current")
	v.SetDefault("routing.max_leg_distance_m", 5_000_000)
	v.SetDefault("routing.alternatives", true)
	v.SetDefault("routing.alternative_count", 3)
	v.SetDefault("routing.weight_factor", 1.6)
	v.SetDefault("routing.leg_concurrency", 4)
	v.SetDefault("hazard.source", "synthetic")
	v.SetDefault("hazard.seed", 1)
	v.SetDefault("hazard.sqlite_path", "hazards.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/krili-app/krili/internal/core/domain"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Geo       GeoConfig       `mapstructure:"geo"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

// RoutingConfig configures the external routing provider. An empty APIKey is a
// valid configuration meaning "road routing disabled, always use straight-line
// fallback".
type RoutingConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// GeoConfig configures proximity search and route enrichment.
type GeoConfig struct {
	// RegionBounds is the plausibility box for routed paths: a routed path
	// whose endpoints fall outside it is treated as malformed.
	RegionMinLat float64 `mapstructure:"region_min_lat"`
	RegionMaxLat float64 `mapstructure:"region_max_lat"`
	RegionMinLon float64 `mapstructure:"region_min_lon"`
	RegionMaxLon float64 `mapstructure:"region_max_lon"`

	DefaultRadiusKm float64 `mapstructure:"default_radius_km"`
	BatchSize       int     `mapstructure:"batch_size"`
	BatchDelayMs    int     `mapstructure:"batch_delay_ms"`
}

// RegionBounds returns the configured plausibility box as a domain value.
func (g GeoConfig) RegionBounds() domain.Bounds {
	return domain.Bounds{
		MinLat: g.RegionMinLat,
		MaxLat: g.RegionMaxLat,
		MinLon: g.RegionMinLon,
		MaxLon: g.RegionMaxLon,
	}
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "krili")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "krili")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("routing.api_key", "")
	v.SetDefault("routing.base_url", "https://api.openrouteservice.org")
	v.SetDefault("routing.timeout_seconds", 5)
	// Tunisia deployment region; override per deployment.
	v.SetDefault("geo.region_min_lat", 30.0)
	v.SetDefault("geo.region_max_lat", 38.0)
	v.SetDefault("geo.region_min_lon", 7.0)
	v.SetDefault("geo.region_max_lon", 12.0)
	v.SetDefault("geo.default_radius_km", 15.0)
	v.SetDefault("geo.batch_size", 2)
	v.SetDefault("geo.batch_delay_ms", 1000)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: KRILI_ROUTING_API_KEY → routing.api_key
	v.SetEnvPrefix("KRILI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Geo.RegionMinLat >= c.Geo.RegionMaxLat {
		errs = append(errs, "geo.region_min_lat must be below geo.region_max_lat")
	}
	if c.Geo.RegionMinLon >= c.Geo.RegionMaxLon {
		errs = append(errs, "geo.region_min_lon must be below geo.region_max_lon")
	}
	if c.Geo.DefaultRadiusKm <= 0 {
		errs = append(errs, "geo.default_radius_km must be positive")
	}
	if c.Geo.BatchSize <= 0 {
		errs = append(errs, "geo.batch_size must be positive")
	}
	if c.Geo.BatchDelayMs < 0 {
		errs = append(errs, "geo.batch_delay_ms must not be negative")
	}
	if c.Routing.TimeoutSeconds <= 0 {
		errs = append(errs, "routing.timeout_seconds must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

package config

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/segyhp/gym-membership/pkg/utils"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Alerts    AlertsConfig    `mapstructure:",squash"`
	Auth      AuthConfig      `mapstructure:",squash"`
	RateLimit RateLimitConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Telemetry TelemetryConfig `mapstructure:",squash"`
	Cache     CacheConfig     `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port              string        `mapstructure:"SERVER_PORT"`
	Host              string        `mapstructure:"SERVER_HOST"`
	Env               string        `mapstructure:"ENV"`
	ReadTimeout       time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout      time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
	CORSAllowedOrigin string        `mapstructure:"CORS_ALLOWED_ORIGIN"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
	AutoMigrate     bool          `mapstructure:"DATABASE_AUTO_MIGRATE"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	Enabled   bool          `mapstructure:"SCHEDULER_ENABLED"`
	Timezone  string        `mapstructure:"SCHEDULER_TIMEZONE"`
	SweepTime string        `mapstructure:"SWEEP_TIME"`
	LockTTL   time.Duration `mapstructure:"SWEEP_LOCK_TTL"`
}

type AlertsConfig struct {
	DaysBefore int    `mapstructure:"ALERT_DAYS_BEFORE"`
	Locale     string `mapstructure:"ALERT_LOCALE"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTExpiry time.Duration `mapstructure:"JWT_EXPIRY"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	Burst int     `mapstructure:"RATE_LIMIT_BURST"`
	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For header is believed
	TrustedProxies []string `mapstructure:"RATE_LIMIT_TRUSTED_PROXIES"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type TelemetryConfig struct {
	Endpoint    string `mapstructure:"OTEL_EXPORTER_ENDPOINT"`
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

type CacheConfig struct {
	DashboardTTL time.Duration `mapstructure:"DASHBOARD_CACHE_TTL"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":                "8080",
	"SERVER_HOST":                "0.0.0.0",
	"ENV":                        "development",
	"SERVER_READ_TIMEOUT":        "15s",
	"SERVER_WRITE_TIMEOUT":       "15s",
	"CORS_ALLOWED_ORIGIN":        "http://localhost:3000",
	"DATABASE_URL":               "",
	"DATABASE_MAX_OPEN_CONNS":    25,
	"DATABASE_MAX_IDLE_CONNS":    5,
	"DATABASE_CONN_MAX_LIFETIME": "5m",
	"DATABASE_AUTO_MIGRATE":      true,
	"REDIS_HOST":                 "localhost",
	"REDIS_PORT":                 "6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"SCHEDULER_ENABLED":          true,
	"SCHEDULER_TIMEZONE":         "America/Bogota",
	"SWEEP_TIME":                 "09:00",
	"SWEEP_LOCK_TTL":             "10m",
	"ALERT_DAYS_BEFORE":          5,
	"ALERT_LOCALE":               "es",
	"JWT_SECRET":                 "",
	"JWT_EXPIRY":                 "168h",
	"RATE_LIMIT_RPS":             5.0,
	"RATE_LIMIT_BURST":           100,
	"RATE_LIMIT_TRUSTED_PROXIES": "",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "json",
	"OTEL_EXPORTER_ENDPOINT":     "",
	"OTEL_SERVICE_NAME":          "gym-membership",
	"DASHBOARD_CACHE_TTL":        "30s",
	"HEALTH_CHECK_TIMEOUT":       "5s",
}

// Load reads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load(".env", "./deployments/.env")

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Read from environment variables
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Alerts.DaysBefore < 0 {
		return fmt.Errorf("ALERT_DAYS_BEFORE must not be negative")
	}

	switch c.Alerts.Locale {
	case "es", "en":
	default:
		return fmt.Errorf("ALERT_LOCALE must be one of es, en")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid IANA zone: %w", err)
	}

	if _, _, err := parseClock(c.Scheduler.SweepTime); err != nil {
		return fmt.Errorf("SWEEP_TIME must be HH:MM: %w", err)
	}

	if c.IsProduction() && c.Server.CORSAllowedOrigin == "*" {
		return fmt.Errorf("CORS_ALLOWED_ORIGIN must name an origin in production")
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be greater than 0")
	}

	if _, err := utils.ParsePrefixes(c.RateLimit.TrustedProxies); err != nil {
		return fmt.Errorf("RATE_LIMIT_TRUSTED_PROXIES: %w", err)
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Location returns the scheduler time zone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SweepCronSpec returns the six-field cron expression for the daily sweep
func (c *Config) SweepCronSpec() string {
	hour, minute, _ := parseClock(c.Scheduler.SweepTime)
	return fmt.Sprintf("0 %d %d * * *", minute, hour)
}

// TrustedProxies returns the parsed RATE_LIMIT_TRUSTED_PROXIES; Validate has already
// rejected malformed entries
func (c *Config) TrustedProxies() []netip.Prefix {
	prefixes, _ := utils.ParsePrefixes(c.RateLimit.TrustedProxies)
	return prefixes
}

// RedisAddr returns host:port for the redis client
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}

func parseClock(value string) (int, int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour, minute, nil
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Access    AccessConfig    `mapstructure:"access"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	Env          string `mapstructure:"env"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	CORSOrigins  string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	CacheTTL string `mapstructure:"cache_ttl"`
}

type SchedulerConfig struct {
	OverdueSpec  string `mapstructure:"overdue_spec"`
	ReminderSpec string `mapstructure:"reminder_spec"`
	ReminderDays int    `mapstructure:"reminder_days"`
	Timezone     string `mapstructure:"timezone"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BusinessConfig struct {
	DefaultPageSize int    `mapstructure:"default_page_size"`
	MaxPageSize     int    `mapstructure:"max_page_size"`
	Currency        string `mapstructure:"currency"`
}

type StorageConfig struct {
	Root              string `mapstructure:"root"`
	MaxUploadBytes    int64  `mapstructure:"max_upload_bytes"`
	AllowedExtensions string `mapstructure:"allowed_extensions"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type AccessConfig struct {
	// DefaultAllow grants callers without a privileged role access to every student.
	DefaultAllow bool `mapstructure:"default_allow"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"timeout"`
}

// envBindings maps nested keys to the flat environment variable names.
var envBindings = map[string]string{
	"server.port":                "SERVER_PORT",
	"server.host":                "SERVER_HOST",
	"server.env":                 "ENV",
	"server.read_timeout":        "SERVER_READ_TIMEOUT",
	"server.write_timeout":       "SERVER_WRITE_TIMEOUT",
	"server.cors_origins":        "CORS_ALLOWED_ORIGINS",
	"database.url":               "DATABASE_URL",
	"database.host":              "DATABASE_HOST",
	"database.port":              "DATABASE_PORT",
	"database.name":              "DATABASE_NAME",
	"database.user":              "DATABASE_USER",
	"database.password":          "DATABASE_PASSWORD",
	"database.sslmode":           "DATABASE_SSLMODE",
	"database.max_open_conns":    "DATABASE_MAX_OPEN_CONNS",
	"database.max_idle_conns":    "DATABASE_MAX_IDLE_CONNS",
	"database.conn_max_lifetime": "DATABASE_CONN_MAX_LIFETIME",
	"database.auto_migrate":      "DATABASE_AUTO_MIGRATE",
	"redis.enabled":              "REDIS_ENABLED",
	"redis.host":                 "REDIS_HOST",
	"redis.port":                 "REDIS_PORT",
	"redis.password":             "REDIS_PASSWORD",
	"redis.db":                   "REDIS_DB",
	"redis.cache_ttl":            "REDIS_CACHE_TTL",
	"scheduler.overdue_spec":     "SCHEDULER_OVERDUE_SPEC",
	"scheduler.reminder_spec":    "SCHEDULER_REMINDER_SPEC",
	"scheduler.reminder_days":    "SCHEDULER_REMINDER_DAYS",
	"scheduler.timezone":         "SCHEDULER_TIMEZONE",
	"logging.level":              "LOG_LEVEL",
	"logging.format":             "LOG_FORMAT",
	"business.default_page_size": "DEFAULT_PAGE_SIZE",
	"business.max_page_size":     "MAX_PAGE_SIZE",
	"business.currency":          "CURRENCY",
	"storage.root":               "STORAGE_ROOT",
	"storage.max_upload_bytes":   "STORAGE_MAX_UPLOAD_BYTES",
	"storage.allowed_extensions": "STORAGE_ALLOWED_EXTENSIONS",
	"auth.jwt_secret":            "JWT_SECRET",
	"auth.issuer":                "JWT_ISSUER",
	"access.default_allow":       "ACCESS_DEFAULT_ALLOW",
	"health.timeout":             "HEALTH_CHECK_TIMEOUT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.cors_origins", "*")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "school_portal")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "5m")
	v.SetDefault("scheduler.overdue_spec", "0 0 0 * * *")
	v.SetDefault("scheduler.reminder_spec", "0 0 9 * * *")
	v.SetDefault("scheduler.reminder_days", 3)
	v.SetDefault("scheduler.timezone", "Europe/Istanbul")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("business.default_page_size", 20)
	v.SetDefault("business.max_page_size", 100)
	v.SetDefault("business.currency", "TRY")
	v.SetDefault("storage.root", "./uploads")
	v.SetDefault("storage.max_upload_bytes", 10<<20)
	v.SetDefault("storage.allowed_extensions", ".pdf,.jpg,.jpeg,.png,.doc,.docx")
	v.SetDefault("auth.issuer", "school-portal")
	v.SetDefault("access.default_allow", true)
	v.SetDefault("health.timeout", "5s")
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist; real environment wins
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("unable to bind %s: %w", env, err)
		}
	}
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./deployments")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" && (c.Database.Host == "" || c.Database.Name == "") {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST and DATABASE_NAME are required")
	}

	durations := map[string]string{
		"SERVER_READ_TIMEOUT":        c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":       c.Server.WriteTimeout,
		"DATABASE_CONN_MAX_LIFETIME": c.Database.ConnMaxLifetime,
		"REDIS_CACHE_TTL":            c.Redis.CacheTTL,
		"HEALTH_CHECK_TIMEOUT":       c.Health.Timeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", name, err)
		}
	}

	if c.Business.DefaultPageSize <= 0 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be greater than 0")
	}

	if c.Business.MaxPageSize < c.Business.DefaultPageSize {
		return fmt.Errorf("MAX_PAGE_SIZE must not be less than DEFAULT_PAGE_SIZE")
	}

	if c.Scheduler.ReminderDays < 0 {
		return fmt.Errorf("SCHEDULER_REMINDER_DAYS must not be negative")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	if _, err := cronParser.Parse(c.Scheduler.OverdueSpec); err != nil {
		return fmt.Errorf("SCHEDULER_OVERDUE_SPEC must be a valid cron spec: %w", err)
	}

	if _, err := cronParser.Parse(c.Scheduler.ReminderSpec); err != nil {
		return fmt.Errorf("SCHEDULER_REMINDER_SPEC must be a valid cron spec: %w", err)
	}

	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_BYTES must be greater than 0")
	}

	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// DSN returns DATABASE_URL, or a postgres URL assembled from the parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

// Addr returns the redis host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

// GetSchedulerLocation returns the scheduler timezone, UTC if it does not load
func (c *Config) GetSchedulerLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetCacheTTL returns the cache TTL as duration
func (c *Config) GetCacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Redis.CacheTTL)
	return ttl
}

// GetConnMaxLifetime returns the pool connection lifetime as duration
func (c *Config) GetConnMaxLifetime() time.Duration {
	d, _ := time.ParseDuration(c.Database.ConnMaxLifetime)
	return d
}

// GetReadTimeout returns the HTTP read timeout as duration
func (c *Config) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadTimeout)
	return d
}

// GetWriteTimeout returns the HTTP write timeout as duration
func (c *Config) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.WriteTimeout)
	return d
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}

// GetAllowedExtensions returns the lower-cased upload extensions, each with a leading dot
func (c *Config) GetAllowedExtensions() []string {
	var exts []string
	for _, ext := range strings.Split(c.Storage.AllowedExtensions, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

// GetCORSOrigins returns the allowed CORS origins
func (c *Config) GetCORSOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.Server.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

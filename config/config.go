// Package config handles loading and validation of application configuration
// from environment variables and optional YAML files.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	"github.com/NomadCrew/nomad-crew-planner/logger"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// StorageBackend selects the TripStore implementation.
type StorageBackend string

const (
	StorageMemory   StorageBackend = "memory"
	StorageRedis    StorageBackend = "redis"
	StoragePostgres StorageBackend = "postgres"
	StorageS3       StorageBackend = "s3"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
	// TrustedProxies is a list of CIDR ranges or IPs of trusted reverse proxies.
	// If empty, X-Forwarded-For headers are ignored entirely.
	TrustedProxies []string `mapstructure:"TRUSTED_PROXIES" yaml:"trusted_proxies"`
	// Timezone is used to group the timeline by day when a request does not
	// name one.
	Timezone string `mapstructure:"TIMEZONE" yaml:"timezone"`
}

// StorageConfig picks where trips are persisted.
type StorageConfig struct {
	Backend StorageBackend `mapstructure:"BACKEND" yaml:"backend"`
}

// DatabaseConfig holds PostgreSQL database connection details.
type DatabaseConfig struct {
	Host          string `mapstructure:"HOST" yaml:"host"`
	Port          int    `mapstructure:"PORT" yaml:"port"`
	User          string `mapstructure:"USER" yaml:"user"`
	Password      string `mapstructure:"PASSWORD" yaml:"password"`
	Name          string `mapstructure:"NAME" yaml:"name"`
	SSLMode       string `mapstructure:"SSL_MODE" yaml:"ssl_mode"`
	MaxOpenConns  int    `mapstructure:"MAX_OPEN_CONNS" yaml:"max_open_conns"`
	MaxIdleConns  int    `mapstructure:"MAX_IDLE_CONNS" yaml:"max_idle_conns"`
	ConnMaxLife   string `mapstructure:"CONN_MAX_LIFE" yaml:"conn_max_life"`
	Table         string `mapstructure:"TABLE" yaml:"table"`
	RunMigrations bool   `mapstructure:"RUN_MIGRATIONS" yaml:"run_migrations"`
}

// URL returns a postgres:// connection URL suitable for golang-migrate and other
// URL-based database tools.
func (c *DatabaseConfig) URL() string {
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Name,
		sslmode,
	)
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
	HashKey      string `mapstructure:"HASH_KEY" yaml:"hash_key"`
}

// S3Config holds the bucket used by the s3 storage backend.
type S3Config struct {
	Bucket          string `mapstructure:"BUCKET" yaml:"bucket"`
	Prefix          string `mapstructure:"PREFIX" yaml:"prefix"`
	Region          string `mapstructure:"REGION" yaml:"region"`
	Endpoint        string `mapstructure:"ENDPOINT" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"SECRET_ACCESS_KEY" yaml:"secret_access_key"`
	UsePathStyle    bool   `mapstructure:"USE_PATH_STYLE" yaml:"use_path_style"`
}

// PlacesConfig configures the structured place search.
type PlacesConfig struct {
	APIKey         string `mapstructure:"API_KEY" yaml:"api_key"`
	BaseURL        string `mapstructure:"BASE_URL" yaml:"base_url"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	MaxResults     int    `mapstructure:"MAX_RESULTS" yaml:"max_results"`
	PhotoMaxWidth  int    `mapstructure:"PHOTO_MAX_WIDTH" yaml:"photo_max_width"`
	LanguageCode   string `mapstructure:"LANGUAGE_CODE" yaml:"language_code"`
}

// GeminiConfig configures the extraction and AI suggestion service.
type GeminiConfig struct {
	APIKey          string `mapstructure:"API_KEY" yaml:"api_key"`
	BaseURL         string `mapstructure:"BASE_URL" yaml:"base_url"`
	Model           string `mapstructure:"MODEL" yaml:"model"`
	TimeoutSeconds  int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	UseSearchTool   bool   `mapstructure:"USE_SEARCH_TOOL" yaml:"use_search_tool"`
	SuggestionCount int    `mapstructure:"SUGGESTION_COUNT" yaml:"suggestion_count"`
}

// ExternalServices holds API keys and URLs for external services.
type ExternalServices struct {
	PexelsAPIKey string `mapstructure:"PEXELS_API_KEY" yaml:"pexels_api_key"`
}

// PersistenceConfig holds configuration for the write-behind saver.
type PersistenceConfig struct {
	// MaxWorkers is the number of concurrent writers
	MaxWorkers int `mapstructure:"MAX_WORKERS" yaml:"max_workers"`
	// QueueSize is the maximum number of pending writes
	QueueSize int `mapstructure:"QUEUE_SIZE" yaml:"queue_size"`
	// WriteTimeoutSeconds bounds a single store call
	WriteTimeoutSeconds int `mapstructure:"WRITE_TIMEOUT_SECONDS" yaml:"write_timeout_seconds"`
	// ShutdownTimeoutSeconds is the max time to wait for pending writes during shutdown
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" yaml:"shutdown_timeout_seconds"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server           ServerConfig      `mapstructure:"SERVER" yaml:"server"`
	Storage          StorageConfig     `mapstructure:"STORAGE" yaml:"storage"`
	Database         DatabaseConfig    `mapstructure:"DATABASE" yaml:"database"`
	Redis            RedisConfig       `mapstructure:"REDIS" yaml:"redis"`
	S3               S3Config          `mapstructure:"S3" yaml:"s3"`
	Places           PlacesConfig      `mapstructure:"PLACES" yaml:"places"`
	Gemini           GeminiConfig      `mapstructure:"GEMINI" yaml:"gemini"`
	ExternalServices ExternalServices  `mapstructure:"EXTERNAL_SERVICES" yaml:"external_services"`
	Persistence      PersistenceConfig `mapstructure:"PERSISTENCE" yaml:"persistence"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER.TRUSTED_PROXIES", []string{})
	v.SetDefault("SERVER.VERSION", "dev")
	v.SetDefault("SERVER.TIMEZONE", "UTC")
	v.SetDefault("STORAGE.BACKEND", StorageMemory)
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "")
	v.SetDefault("DATABASE.NAME", "planner")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.MAX_OPEN_CONNS", 5)
	v.SetDefault("DATABASE.MAX_IDLE_CONNS", 2)
	v.SetDefault("DATABASE.CONN_MAX_LIFE", "1h")
	v.SetDefault("DATABASE.TABLE", "trips")
	v.SetDefault("DATABASE.RUN_MIGRATIONS", true)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("REDIS.HASH_KEY", "trips")
	v.SetDefault("S3.PREFIX", "trips")
	v.SetDefault("S3.REGION", "auto")
	v.SetDefault("PLACES.BASE_URL", "https://places.googleapis.com")
	v.SetDefault("PLACES.TIMEOUT_SECONDS", 10)
	v.SetDefault("PLACES.MAX_RESULTS", 4)
	v.SetDefault("PLACES.PHOTO_MAX_WIDTH", 400)
	v.SetDefault("PLACES.LANGUAGE_CODE", "en")
	v.SetDefault("GEMINI.BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("GEMINI.MODEL", "gemini-3-flash-preview")
	v.SetDefault("GEMINI.TIMEOUT_SECONDS", 30)
	v.SetDefault("GEMINI.USE_SEARCH_TOOL", true)
	v.SetDefault("GEMINI.SUGGESTION_COUNT", 5)
	v.SetDefault("PERSISTENCE.MAX_WORKERS", 4)
	v.SetDefault("PERSISTENCE.QUEUE_SIZE", 256)
	v.SetDefault("PERSISTENCE.WRITE_TIMEOUT_SECONDS", 10)
	v.SetDefault("PERSISTENCE.SHUTDOWN_TIMEOUT_SECONDS", 30)
	v.SetDefault("LOG_LEVEL", "info")
}

var envBindings = [][2]string{
	// Server config
	{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
	{"SERVER.PORT", "PORT"},
	{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
	{"SERVER.TRUSTED_PROXIES", "TRUSTED_PROXIES"},
	{"SERVER.VERSION", "APP_VERSION"},
	{"SERVER.TIMEZONE", "TIMEZONE"},
	// Storage
	{"STORAGE.BACKEND", "STORAGE_BACKEND"},
	// Database config
	{"DATABASE.HOST", "DB_HOST"},
	{"DATABASE.PORT", "DB_PORT"},
	{"DATABASE.USER", "DB_USER"},
	{"DATABASE.PASSWORD", "DB_PASSWORD"},
	{"DATABASE.NAME", "DB_NAME"},
	{"DATABASE.SSL_MODE", "DB_SSL_MODE"},
	{"DATABASE.TABLE", "DB_TABLE"},
	{"DATABASE.RUN_MIGRATIONS", "DB_RUN_MIGRATIONS"},
	// Redis config
	{"REDIS.ADDRESS", "REDIS_ADDRESS"},
	{"REDIS.PASSWORD", "REDIS_PASSWORD"},
	{"REDIS.DB", "REDIS_DB"},
	{"REDIS.USE_TLS", "REDIS_USE_TLS"},
	{"REDIS.HASH_KEY", "REDIS_HASH_KEY"},
	// S3 config
	{"S3.BUCKET", "S3_BUCKET"},
	{"S3.PREFIX", "S3_PREFIX"},
	{"S3.REGION", "S3_REGION"},
	{"S3.ENDPOINT", "S3_ENDPOINT"},
	{"S3.ACCESS_KEY_ID", "S3_ACCESS_KEY_ID"},
	{"S3.SECRET_ACCESS_KEY", "S3_SECRET_ACCESS_KEY"},
	{"S3.USE_PATH_STYLE", "S3_USE_PATH_STYLE"},
	// Places
	{"PLACES.API_KEY", "GOOGLE_PLACES_API_KEY"},
	{"PLACES.BASE_URL", "PLACES_BASE_URL"},
	{"PLACES.TIMEOUT_SECONDS", "PLACES_TIMEOUT_SECONDS"},
	{"PLACES.MAX_RESULTS", "PLACES_MAX_RESULTS"},
	// Gemini
	{"GEMINI.API_KEY", "GEMINI_API_KEY"},
	{"GEMINI.BASE_URL", "GEMINI_BASE_URL"},
	{"GEMINI.MODEL", "GEMINI_MODEL"},
	{"GEMINI.TIMEOUT_SECONDS", "GEMINI_TIMEOUT_SECONDS"},
	{"GEMINI.USE_SEARCH_TOOL", "GEMINI_USE_SEARCH_TOOL"},
	// External services
	{"EXTERNAL_SERVICES.PEXELS_API_KEY", "PEXELS_API_KEY"},
	// Persistence
	{"PERSISTENCE.MAX_WORKERS", "PERSISTENCE_MAX_WORKERS"},
	{"PERSISTENCE.QUEUE_SIZE", "PERSISTENCE_QUEUE_SIZE"},
	{"PERSISTENCE.WRITE_TIMEOUT_SECONDS", "PERSISTENCE_WRITE_TIMEOUT_SECONDS"},
	{"PERSISTENCE.SHUTDOWN_TIMEOUT_SECONDS", "PERSISTENCE_SHUTDOWN_TIMEOUT_SECONDS"},
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, binds environment variables to config struct fields,
// unmarshals the configuration, and validates it.
func LoadConfig() (*Config, error) {
	return load("")
}

// LoadConfigFromFile reads a YAML file and lets environment variables
// override it.
func LoadConfigFromFile(path string) (*Config, error) {
	return load(path)
}

func load(path string) (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	log.Infow("Configuration loaded",
		"environment", v.GetString("SERVER.ENVIRONMENT"),
		"server_port", v.GetString("SERVER.PORT"),
		"storage_backend", v.GetString("STORAGE.BACKEND"),
		"allowed_origins", v.GetStringSlice("SERVER.ALLOWED_ORIGINS"),
		"places_key", logger.MaskAPIKey(v.GetString("PLACES.API_KEY")),
		"gemini_key", logger.MaskAPIKey(v.GetString("GEMINI.API_KEY")),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	switch cfg.Storage.Backend {
	case StorageMemory:
		if cfg.IsProduction() {
			log.Warn("Using in-memory trip storage in production; trips are lost on restart")
		}
	case StorageRedis:
		if cfg.Redis.Address == "" {
			return fmt.Errorf("redis address is required for the redis storage backend")
		}
		if cfg.Redis.Password == "" && cfg.Redis.UseTLS {
			log.Warn("Redis password is not set, but TLS is enabled. Ensure this is correct for your Redis provider.")
		}
	case StoragePostgres:
		if cfg.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if cfg.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if cfg.Database.Name == "" {
			return fmt.Errorf("database name is required")
		}
		if cfg.Database.Password == "" {
			log.Warn("Database password is not set. Ensure this is intended (e.g., using trusted auth).")
		}
	case StorageS3:
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("s3 bucket is required for the s3 storage backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Places.TimeoutSeconds <= 0 {
		return fmt.Errorf("places timeout must be positive")
	}
	if cfg.Places.MaxResults <= 0 {
		return fmt.Errorf("places max results must be positive")
	}
	if cfg.Places.APIKey == "" {
		log.Warn("Places API key not set, place search will be unavailable")
	}
	if cfg.Gemini.TimeoutSeconds <= 0 {
		return fmt.Errorf("gemini timeout must be positive")
	}
	if cfg.Gemini.APIKey == "" {
		log.Warn("Gemini API key not set, extraction and AI suggestions will be unavailable")
	}

	if cfg.Persistence.MaxWorkers <= 0 {
		return fmt.Errorf("persistence max workers must be positive")
	}
	if cfg.Persistence.QueueSize <= 0 {
		return fmt.Errorf("persistence queue size must be positive")
	}
	if cfg.Persistence.WriteTimeoutSeconds <= 0 {
		return fmt.Errorf("persistence write timeout must be positive")
	}
	if cfg.Persistence.ShutdownTimeoutSeconds <= 0 {
		return fmt.Errorf("persistence shutdown timeout must be positive")
	}

	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

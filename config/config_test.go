package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	os.Unsetenv("STORAGE_BACKEND")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Server.Environment)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, 10, cfg.Places.TimeoutSeconds)
	assert.Equal(t, 4, cfg.Places.MaxResults)
	assert.Equal(t, 400, cfg.Places.PhotoMaxWidth)
	assert.Equal(t, "gemini-3-flash-preview", cfg.Gemini.Model)
	assert.Equal(t, "trips", cfg.Database.Table)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDRESS", "cache:6379")
	t.Setenv("GOOGLE_PLACES_API_KEY", "places-key-123456")
	t.Setenv("PLACES_TIMEOUT_SECONDS", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Address)
	assert.Equal(t, "places-key-123456", cfg.Places.APIKey)
	assert.Equal(t, 3, cfg.Places.TimeoutSeconds)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "7000"
storage:
  backend: s3
s3:
  bucket: planner-trips
  prefix: dev
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, StorageS3, cfg.Storage.Backend)
	assert.Equal(t, "planner-trips", cfg.S3.Bucket)
	assert.Equal(t, "dev", cfg.S3.Prefix)

	_, err = LoadConfigFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func validConfig() *Config {
	return &Config{
		Server:      ServerConfig{Port: "8080", AllowedOrigins: []string{"*"}},
		Storage:     StorageConfig{Backend: StorageMemory},
		Places:      PlacesConfig{TimeoutSeconds: 10, MaxResults: 4},
		Gemini:      GeminiConfig{TimeoutSeconds: 30},
		Persistence: PersistenceConfig{MaxWorkers: 1, QueueSize: 1, WriteTimeoutSeconds: 1, ShutdownTimeoutSeconds: 1},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "server port"},
		{name: "bad origin", mutate: func(c *Config) { c.Server.AllowedOrigins = []string{"not a url"} }, wantErr: "invalid allowed origin"},
		{name: "unknown backend", mutate: func(c *Config) { c.Storage.Backend = "floppy" }, wantErr: "unknown storage backend"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Storage.Backend = StorageS3 }, wantErr: "s3 bucket"},
		{name: "redis without address", mutate: func(c *Config) { c.Storage.Backend = StorageRedis }, wantErr: "redis address"},
		{
			name: "postgres without host",
			mutate: func(c *Config) {
				c.Storage.Backend = StoragePostgres
				c.Database = DatabaseConfig{User: "u", Name: "n"}
			},
			wantErr: "database host",
		},
		{name: "zero places timeout", mutate: func(c *Config) { c.Places.TimeoutSeconds = 0 }, wantErr: "places timeout"},
		{name: "zero workers", mutate: func(c *Config) { c.Persistence.MaxWorkers = 0 }, wantErr: "max workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfigURL(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "planner", Password: "p@ss", Name: "trips"}
	assert.Equal(t, "postgres://planner:p%40ss@db:5432/trips?sslmode=disable", c.URL())
}

func TestConfigurePostgresPool(t *testing.T) {
	t.Setenv("K_SERVICE", "")
	t.Setenv("SERVER_ENVIRONMENT", "development")

	cfg := &DatabaseConfig{
		Host:         "db.internal",
		Port:         5432,
		User:         "planner",
		Password:     "secret",
		Name:         "planner",
		SSLMode:      "require",
		MaxOpenConns: 20,
		MaxIdleConns: 30,
		ConnMaxLife:  "30m",
	}

	pool, err := ConfigurePostgresPool(cfg)
	require.NoError(t, err)
	assert.NotNil(t, pool.ConnConfig.TLSConfig)
	assert.Equal(t, "planner", pool.ConnConfig.User)
	assert.Equal(t, int32(20), pool.MaxConns)
	assert.Equal(t, int32(20), pool.MinConns)
	assert.Equal(t, 30*time.Minute, pool.MaxConnLifetime)
}

func TestConfigurePostgresPool_Serverless(t *testing.T) {
	t.Setenv("K_SERVICE", "planner")

	pool, err := ConfigurePostgresPool(&DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Name: "n",
		MaxOpenConns: 50, MaxIdleConns: 20, ConnMaxLife: "1h",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(10), pool.MaxConns)
	assert.Equal(t, int32(5), pool.MinConns)
	assert.Equal(t, 5*time.Minute, pool.MaxConnLifetime)
}

func TestConfigureRedisOptions(t *testing.T) {
	opts := ConfigureRedisOptions(&RedisConfig{Address: "cache:6379", DB: 2, UseTLS: true, PoolSize: 3})
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.NotNil(t, opts.TLSConfig)

	plain := ConfigureRedisOptions(&RedisConfig{Address: "cache:6379"})
	assert.Nil(t, plain.TLSConfig)
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"YES", true},
		{"on", true},
		{"1", true},
		{"2", true},
		{"0", false},
		{"false", false},
		{"F", false},
		{"off", false},
		{"nope", false},
	}
	for _, tt := range tests {
		t.Setenv("PLANNER_TEST_FLAG", tt.value)
		assert.Equal(t, tt.expected, getBoolEnv("PLANNER_TEST_FLAG", !tt.expected), tt.value)
	}

	os.Unsetenv("PLANNER_TEST_FLAG_MISSING")
	assert.True(t, getBoolEnv("PLANNER_TEST_FLAG_MISSING", true))
}

func TestGetFeatureFlags(t *testing.T) {
	t.Setenv("ENABLE_AI_SUGGESTIONS", "false")
	flags := GetFeatureFlags()
	assert.False(t, flags.EnableAISuggestions)
}

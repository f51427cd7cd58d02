package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/NomadCrew/nomad-crew-planner/logger"
)

// ConfigurePostgresPool builds a pgxpool.Config from DatabaseConfig. TLS is
// enabled whenever the SSL mode requires it.
func ConfigurePostgresPool(cfg *DatabaseConfig) (*pgxpool.Config, error) {
	log := logger.GetLogger()

	connStr := cfg.URL()
	log.Infow("Connecting to database",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Name,
		"sslmode", cfg.SSLMode,
		"connection_string", logger.MaskConnectionString(connStr))

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	if cfg.SSLMode == "require" || cfg.SSLMode == "verify-full" {
		poolConfig.ConnConfig.TLSConfig = &tls.Config{
			ServerName: cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
	}

	connMaxLife, err := time.ParseDuration(cfg.ConnMaxLife)
	if err != nil {
		log.Warnw("Invalid connection max lifetime, using default 5m", "value", cfg.ConnMaxLife, "error", err)
		connMaxLife = 5 * time.Minute
	}

	maxOpenConns := cfg.MaxOpenConns
	maxIdleConns := cfg.MaxIdleConns
	if isRunningInServerless() {
		if maxOpenConns > 10 {
			maxOpenConns = 10
		}
		if maxIdleConns > 5 {
			maxIdleConns = 5
		}
		if connMaxLife > 5*time.Minute {
			connMaxLife = 5 * time.Minute
		}
		log.Info("Using optimized connection pool settings for serverless environment")
	}
	if maxOpenConns <= 0 {
		maxOpenConns = 1
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	poolConfig.MaxConns = int32(math.Min(float64(maxOpenConns), float64(math.MaxInt32)))
	poolConfig.MinConns = int32(math.Max(0, math.Min(float64(maxIdleConns), float64(math.MaxInt32))))
	poolConfig.MaxConnLifetime = connMaxLife
	poolConfig.HealthCheckPeriod = 30 * time.Second
	poolConfig.ConnConfig.ConnectTimeout = 5 * time.Second

	log.Infow("Configured database connection pool",
		"max_conns", poolConfig.MaxConns,
		"min_conns", poolConfig.MinConns,
		"max_conn_lifetime", connMaxLife.String())

	return poolConfig, nil
}

// isRunningInServerless checks for Cloud Run style environment variables.
func isRunningInServerless() bool {
	if os.Getenv("K_SERVICE") != "" {
		return true
	}
	return os.Getenv("SERVER_ENVIRONMENT") == "production"
}

// ConfigureRedisOptions builds redis.Options from RedisConfig.
func ConfigureRedisOptions(cfg *RedisConfig) *redis.Options {
	log := logger.GetLogger()

	opts := &redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		ConnMaxLifetime: time.Hour,
		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 2 * time.Second,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	}

	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	log.Infow("Configuring Redis connection",
		"address", cfg.Address,
		"db", cfg.DB,
		"pool_size", cfg.PoolSize,
		"use_tls", cfg.UseTLS)

	return opts
}

// PingRedis retries a ping a few times so the server can start alongside
// Redis in compose setups.
func PingRedis(ctx context.Context, client redis.UniversalClient, attempts int, delay time.Duration) error {
	log := logger.GetLogger()
	var err error
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			if i > 0 {
				log.Infow("Successfully connected to Redis after retries", "attempt", i+1)
			}
			return nil
		}
		if i < attempts-1 {
			log.Warnw("Failed to ping Redis, retrying...", "error", err, "attempt", i+1, "max_attempts", attempts)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("failed to ping Redis after %d attempts: %w", attempts, err)
}

// Package backend opens the TripStore selected by configuration.
package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/NomadCrew/nomad-crew-planner/config"
	"github.com/NomadCrew/nomad-crew-planner/db"
	"github.com/NomadCrew/nomad-crew-planner/internal/store"
	"github.com/NomadCrew/nomad-crew-planner/internal/store/memory"
	"github.com/NomadCrew/nomad-crew-planner/internal/store/postgres"
	"github.com/NomadCrew/nomad-crew-planner/internal/store/redisstore"
	"github.com/NomadCrew/nomad-crew-planner/internal/store/s3store"
	"github.com/NomadCrew/nomad-crew-planner/logger"
)

// Open builds the configured store and runs its Init. The caller owns the
// returned store and must Close it.
func Open(ctx context.Context, cfg *config.Config) (store.TripStore, error) {
	log := logger.GetLogger().Named("store")

	var s store.TripStore
	switch cfg.Storage.Backend {
	case config.StorageMemory, "":
		s = memory.NewTripStore()
	case config.StorageRedis:
		client := redis.NewClient(config.ConfigureRedisOptions(&cfg.Redis))
		if err := config.PingRedis(ctx, client, 3, 2*time.Second); err != nil {
			_ = client.Close()
			return nil, err
		}
		s = redisstore.NewTripStore(client, cfg.Redis.HashKey)
	case config.StoragePostgres:
		if cfg.Database.RunMigrations {
			if err := db.RunMigrations(cfg.Database.URL()); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		poolConfig, err := config.ConfigurePostgresPool(&cfg.Database)
		if err != nil {
			return nil, err
		}
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		s = postgres.NewTripStore(pool, cfg.Database.Table)
	case config.StorageS3:
		client, err := s3store.NewClient(ctx, s3store.ClientOptions{
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		s = s3store.NewTripStore(client, cfg.S3.Bucket, cfg.S3.Prefix)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if err := s.Init(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("init %s store: %w", cfg.Storage.Backend, err)
	}

	log.Infow("Trip store opened", "backend", cfg.Storage.Backend)
	return s, nil
}

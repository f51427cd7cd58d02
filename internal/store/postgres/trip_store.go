package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/NomadCrew/nomad-crew-planner/internal/store"
	"github.com/NomadCrew/nomad-crew-planner/logger"
	"github.com/NomadCrew/nomad-crew-planner/types"
)

// DefaultTable is created by the bundled migrations.
const DefaultTable = "trips"

// Pool is the subset of pgxpool.Pool the store needs.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// TripStore keeps each trip as a JSONB document.
type TripStore struct {
	pool  Pool
	table string
}

func NewTripStore(pool Pool, table string) *TripStore {
	if table == "" {
		table = DefaultTable
	}
	return &TripStore{pool: pool, table: pq.QuoteIdentifier(table)}
}

func (s *TripStore) Init(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres trip store init: %w", err)
	}
	logger.GetLogger().Infow("Postgres trip store ready", "table", s.table)
	return nil
}

func (s *TripStore) GetAll(ctx context.Context) ([]*types.Trip, error) {
	query := fmt.Sprintf(`SELECT document FROM %s ORDER BY id`, s.table)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	trips := make([]*types.Trip, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trip, err := store.Decode(doc)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trips: %w", err)
	}
	return trips, nil
}

func (s *TripStore) Get(ctx context.Context, id string) (*types.Trip, error) {
	query := fmt.Sprintf(`SELECT document FROM %s WHERE id = $1`, s.table)

	var doc []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trip %s: %w", id, err)
	}
	return store.Decode(doc)
}

func (s *TripStore) Save(ctx context.Context, trip *types.Trip) (string, error) {
	id := store.EnsureID(trip)
	doc, err := store.Encode(trip)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = now()`, s.table)

	if _, err := s.pool.Exec(ctx, query, id, doc); err != nil {
		return "", fmt.Errorf("save trip %s: %w", id, err)
	}
	return id, nil
}

func (s *TripStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table)
	if _, err := s.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete trip %s: %w", id, err)
	}
	return nil
}

func (s *TripStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *TripStore) Close() error {
	s.pool.Close()
	return nil
}

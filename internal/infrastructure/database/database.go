package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mealcal/core/internal/infrastructure/config"
)

const (
	connectAttempts = 5
	connectBackoff  = 500 * time.Millisecond
)

// ErrSchemaMissing means the calendar tables are absent. Run `mealcal migrate up`.
var ErrSchemaMissing = errors.New("database schema is not migrated")

// requiredTables must exist before the API can serve calendar requests
var requiredTables = []string{"users", "categories", "recipes", "calendar_events", "event_status", "ingredient_checklist"}

// DB is the shared Postgres pool
type DB struct {
	DB *sqlx.DB
}

// PoolStats is the connection pool snapshot reported by the detailed health check
type PoolStats struct {
	MaxOpen      int    `json:"max_open_connections"`
	Open         int    `json:"open_connections"`
	InUse        int    `json:"in_use"`
	Idle         int    `json:"idle"`
	WaitCount    int64  `json:"wait_count"`
	WaitDuration string `json:"wait_duration"`
}

// New opens the pool and waits for Postgres to accept connections.
// It retries with a doubling backoff so the API can start alongside the database.
func New(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	wait := connectBackoff
	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return &DB{DB: db}, nil
		}
		if attempt == connectAttempts {
			break
		}

		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
			wait *= 2
		}
	}

	db.Close()
	return nil, fmt.Errorf("failed to ping database after %d attempts: %w", connectAttempts, err)
}

// Wrap adopts an already opened connection
func Wrap(db *sqlx.DB) *DB {
	return &DB{DB: db}
}

// Close releases the pool
func (db *DB) Close() error {
	if db.DB != nil {
		return db.DB.Close()
	}
	return nil
}

// Ping checks that Postgres answers within five seconds
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// SchemaReady reports ErrSchemaMissing when any calendar table is absent
func (db *DB) SchemaReady(ctx context.Context) error {
	query := `SELECT COUNT(*) FROM unnest($1::text[]) AS t(name) WHERE to_regclass('public.' || t.name) IS NULL`

	var missing int
	if err := db.DB.GetContext(ctx, &missing, query, pq.Array(requiredTables)); err != nil {
		return fmt.Errorf("check schema: %w", err)
	}
	if missing > 0 {
		return fmt.Errorf("%w: %d tables missing", ErrSchemaMissing, missing)
	}
	return nil
}

// Stats snapshots the pool
func (db *DB) Stats() PoolStats {
	stats := db.DB.Stats()
	return PoolStats{
		MaxOpen:      stats.MaxOpenConnections,
		Open:         stats.OpenConnections,
		InUse:        stats.InUse,
		Idle:         stats.Idle,
		WaitCount:    stats.WaitCount,
		WaitDuration: stats.WaitDuration.String(),
	}
}

// InTx begins a transaction on db, runs fn and commits.
// Any error or panic from fn rolls the transaction back.
func InTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("failed to rollback transaction: %v (original error: %w)", rollbackErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createPostgresTable = `CREATE TABLE IF NOT EXISTS kv (
	key   BYTEA PRIMARY KEY,
	value BYTEA NOT NULL
)`

// PostgresStore keeps records in a single Postgres table, for deployments
// where the bot's state lives next to other services.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to connStr (a postgres:// URL), checks the connection
// and makes sure the kv table exists.
func OpenPostgres(ctx context.Context, connStr string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	if _, err := pool.Exec(ctx, createPostgresTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM kv WHERE key=$1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Put(ctx context.Context, key, value []byte) error {
	q := `INSERT INTO kv (key, value) VALUES ($1, $2)
	      ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := s.pool.Exec(ctx, q, key, value); err != nil {
		return fmt.Errorf("failed to put %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key []byte) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM kv WHERE key=$1`, key); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Scan relies on BYTEA comparing bytewise, which matches the ordering every
// other backend uses.
func (s *PostgresStore) Scan(ctx context.Context, start, end []byte, fn ScanFunc) error {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM kv WHERE key >= $1 AND key < $2 ORDER BY key`, start, end)
	if err != nil {
		return fmt.Errorf("failed to scan range: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("failed to read row: %w", err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

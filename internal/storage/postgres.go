package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type PostgresStore struct {
	pool DBPool
}

func NewPostgresStore(pool DBPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, sessionID, key string) (json.RawMessage, error) {
	var value []byte
	row := s.pool.QueryRow(ctx, `SELECT value FROM local_storage WHERE session_id=$1 AND key=$2`, sessionID, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Put(ctx context.Context, sessionID string, values map[string]json.RawMessage) error {
	if len(values) == 0 {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	// stable order keeps row locks consistent across writers
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		_, err := tx.Exec(ctx, `
			INSERT INTO local_storage(session_id, key, value)
			VALUES($1, $2, $3)
			ON CONFLICT (session_id, key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()
		`, sessionID, k, string(values[k]))
		if err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("put %s: %w", k, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM local_storage WHERE session_id=$1 AND key = ANY($2)`, sessionID, keys)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

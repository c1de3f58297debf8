// Package persistence implements the repository ports on PostgreSQL via
// pgx. Write paths take an explicit transaction handle so a whole workflow
// operation commits atomically with its outbox enqueue.
package persistence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgc-hq/sgc/pkg/repo"
)

// PgStore opens one transaction per workflow operation.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) InTx(ctx context.Context, fn func(ctx context.Context, tx repo.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}

package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Cleaner purges published outbox rows past their retention window.
type Cleaner struct {
	pool       *pgxpool.Pool
	table      pgx.Identifier
	opts       CleanerOptions
	tableLabel string
}

func NewCleaner(pool *pgxpool.Pool, table pgx.Identifier, opts CleanerOptions) (*Cleaner, error) {
	if pool == nil {
		return nil, invalidConfig("pool is required")
	}
	if len(table) == 0 {
		return nil, invalidConfig("table is required")
	}
	opts.setDefaults()
	if opts.Logger == nil {
		opts.Logger = logrusNop()
	}
	return &Cleaner{
		pool:       pool,
		table:      table,
		opts:       opts,
		tableLabel: TableLabel(table),
	}, nil
}

func (c *Cleaner) Run(ctx context.Context) error {
	if ctx == nil {
		return invalidConfig("ctx is required")
	}
	if !c.opts.Enabled {
		return nil
	}

	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := c.cleanOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			c.opts.Logger.WithError(err).WithField("table", c.tableLabel).Warn("outbox: cleaner tick failed")
		}
	}
}

func (c *Cleaner) cleanOnce(ctx context.Context) error {
	cutoff := time.Now().Add(-c.opts.Retention)

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := fmt.Sprintf(`DELETE FROM %s WHERE published_at IS NOT NULL AND published_at < $1`, c.table.Sanitize())
	if _, err := tx.Exec(ctx, q, cutoff); err != nil {
		return fmt.Errorf("outbox cleaner delete published: %w", err)
	}

	return tx.Commit(ctx)
}

package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
)

// EngineReads serves the authorization engine's lookups straight off the
// pool. Authorization runs outside workflow transactions, so no tx handle
// is threaded through.
type EngineReads struct {
	pool *pgxpool.Pool
}

func NewEngineReads(pool *pgxpool.Pool) *EngineReads {
	return &EngineReads{pool: pool}
}

func (r *EngineReads) Find(ctx context.Context, id int64) (*subprocess.Subprocess, error) {
	return SubprocessRepository{}.Find(ctx, r.pool, id)
}

func (r *EngineReads) FindByProcessAndUnit(ctx context.Context, processID, unitID int64) (*subprocess.Subprocess, error) {
	return scanSubprocess(r.pool.QueryRow(ctx,
		`SELECT `+subprocessColumns+`
		   FROM subprocesses sp
		   JOIN processes p ON p.id = sp.process_id
		  WHERE sp.process_id = $1 AND sp.unit_id = $2`, processID, unitID))
}

func (r *EngineReads) LatestMovement(ctx context.Context, subprocessID int64) (*subprocess.Movement, error) {
	return MovementRepository{}.Latest(ctx, r.pool, subprocessID)
}

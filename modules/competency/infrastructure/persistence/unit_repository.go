package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgc-hq/sgc/modules/competency/domain/org"
)

// UnitDirectory loads the unit forest and serves it with a short-lived
// cache. Units change through the external directory sync, not through this
// application, so a small staleness window is acceptable.
type UnitDirectory struct {
	pool *pgxpool.Pool
	ttl  time.Duration

	mu       sync.Mutex
	cached   *org.Hierarchy
	cachedAt time.Time
}

func NewUnitDirectory(pool *pgxpool.Pool, ttl time.Duration) *UnitDirectory {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &UnitDirectory{pool: pool, ttl: ttl}
}

func (d *UnitDirectory) Hierarchy(ctx context.Context) (*org.Hierarchy, error) {
	d.mu.Lock()
	if d.cached != nil && time.Since(d.cachedAt) < d.ttl {
		h := d.cached
		d.mu.Unlock()
		return h, nil
	}
	d.mu.Unlock()

	units, err := d.loadUnits(ctx)
	if err != nil {
		return nil, err
	}
	h := org.NewHierarchy(units)

	d.mu.Lock()
	d.cached = h
	d.cachedAt = time.Now()
	d.mu.Unlock()
	return h, nil
}

// Invalidate drops the cache, forcing a reload on the next call.
func (d *UnitDirectory) Invalidate() {
	d.mu.Lock()
	d.cached = nil
	d.mu.Unlock()
}

func (d *UnitDirectory) loadUnits(ctx context.Context) ([]org.Unit, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, acronym, name, type, parent_id, active, responsible_id
		   FROM units
		  WHERE active`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []org.Unit
	for rows.Next() {
		var u org.Unit
		if err := rows.Scan(&u.ID, &u.Acronym, &u.Name, &u.Type, &u.ParentID, &u.Active, &u.ResponsibleID); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

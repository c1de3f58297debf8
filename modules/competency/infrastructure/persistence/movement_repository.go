package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/pkg/repo"
)

type MovementRepository struct{}

func NewMovementRepository() *MovementRepository {
	return &MovementRepository{}
}

func (MovementRepository) Append(ctx context.Context, tx repo.Tx, m *subprocess.Movement) error {
	return tx.QueryRow(ctx,
		`INSERT INTO movements (subprocess_id, origin_unit_id, dest_unit_id, at, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		m.SubprocessID, m.OriginUnitID, m.DestUnitID, m.At, m.Description,
	).Scan(&m.ID)
}

func (MovementRepository) Latest(ctx context.Context, tx repo.Tx, subprocessID int64) (*subprocess.Movement, error) {
	return scanMovement(tx.QueryRow(ctx,
		`SELECT id, subprocess_id, origin_unit_id, dest_unit_id, at, description
		   FROM movements
		  WHERE subprocess_id = $1
		  ORDER BY at DESC, id DESC
		  LIMIT 1`, subprocessID))
}

// History returns the full audit trail, newest first.
func (MovementRepository) History(ctx context.Context, tx repo.Tx, subprocessID int64) ([]subprocess.Movement, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, subprocess_id, origin_unit_id, dest_unit_id, at, description
		   FROM movements
		  WHERE subprocess_id = $1
		  ORDER BY at DESC, id DESC`, subprocessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []subprocess.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func scanMovement(row pgx.Row) (*subprocess.Movement, error) {
	var m subprocess.Movement
	err := row.Scan(&m.ID, &m.SubprocessID, &m.OriginUnitID, &m.DestUnitID, &m.At, &m.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

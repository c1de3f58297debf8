package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/pkg/repo"
)

const subprocessColumns = `
	sp.id, sp.process_id, sp.unit_id, sp.situation, sp.map_id,
	sp.stage_one_deadline, sp.stage_two_deadline,
	sp.stage_one_done_at, sp.stage_two_done_at,
	p.id, p.description, p.type, p.status, p.deadline`

type SubprocessRepository struct{}

func NewSubprocessRepository() *SubprocessRepository {
	return &SubprocessRepository{}
}

func scanSubprocess(row pgx.Row) (*subprocess.Subprocess, error) {
	var sp subprocess.Subprocess
	var p subprocess.Process
	err := row.Scan(
		&sp.ID, &sp.ProcessID, &sp.UnitID, &sp.Situation, &sp.MapID,
		&sp.StageOneDeadline, &sp.StageTwoDeadline,
		&sp.StageOneDoneAt, &sp.StageTwoDoneAt,
		&p.ID, &p.Description, &p.Type, &p.Status, &p.Deadline,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sp.Process = &p
	return &sp, nil
}

func (SubprocessRepository) Find(ctx context.Context, tx repo.Tx, id int64) (*subprocess.Subprocess, error) {
	return scanSubprocess(tx.QueryRow(ctx,
		`SELECT `+subprocessColumns+`
		   FROM subprocesses sp
		   JOIN processes p ON p.id = sp.process_id
		  WHERE sp.id = $1`, id))
}

func (SubprocessRepository) FindByProcess(ctx context.Context, tx repo.Tx, processID int64) ([]*subprocess.Subprocess, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+subprocessColumns+`
		   FROM subprocesses sp
		   JOIN processes p ON p.id = sp.process_id
		  WHERE sp.process_id = $1
		  ORDER BY sp.id`, processID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*subprocess.Subprocess
	for rows.Next() {
		sp, err := scanSubprocess(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

func (SubprocessRepository) Create(ctx context.Context, tx repo.Tx, sp *subprocess.Subprocess) error {
	return tx.QueryRow(ctx,
		`INSERT INTO subprocesses
		        (process_id, unit_id, situation, map_id,
		         stage_one_deadline, stage_two_deadline)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		sp.ProcessID, sp.UnitID, sp.Situation, sp.MapID,
		sp.StageOneDeadline, sp.StageTwoDeadline,
	).Scan(&sp.ID)
}

func (SubprocessRepository) Update(ctx context.Context, tx repo.Tx, sp *subprocess.Subprocess) error {
	_, err := tx.Exec(ctx,
		`UPDATE subprocesses
		    SET situation = $2, map_id = $3,
		        stage_one_deadline = $4, stage_two_deadline = $5,
		        stage_one_done_at = $6, stage_two_done_at = $7
		  WHERE id = $1`,
		sp.ID, sp.Situation, sp.MapID,
		sp.StageOneDeadline, sp.StageTwoDeadline,
		sp.StageOneDoneAt, sp.StageTwoDoneAt,
	)
	return err
}

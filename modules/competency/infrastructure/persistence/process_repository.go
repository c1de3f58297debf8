package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/pkg/repo"
)

type ProcessRepository struct{}

func NewProcessRepository() *ProcessRepository {
	return &ProcessRepository{}
}

func (ProcessRepository) Find(ctx context.Context, tx repo.Tx, id int64) (*subprocess.Process, error) {
	row := tx.QueryRow(ctx,
		`SELECT id, description, type, status, deadline
		   FROM processes
		  WHERE id = $1`, id)

	var p subprocess.Process
	err := row.Scan(&p.ID, &p.Description, &p.Type, &p.Status, &p.Deadline)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (ProcessRepository) Create(ctx context.Context, tx repo.Tx, p *subprocess.Process) error {
	return tx.QueryRow(ctx,
		`INSERT INTO processes (description, type, status, deadline)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		p.Description, p.Type, p.Status, p.Deadline,
	).Scan(&p.ID)
}

func (ProcessRepository) Update(ctx context.Context, tx repo.Tx, p *subprocess.Process) error {
	_, err := tx.Exec(ctx,
		`UPDATE processes
		    SET description = $2, type = $3, status = $4, deadline = $5
		  WHERE id = $1`,
		p.ID, p.Description, p.Type, p.Status, p.Deadline,
	)
	return err
}

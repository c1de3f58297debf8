package workflow

import (
	"context"

	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/pkg/repo"
)

// Store opens one transaction per workflow operation. Every read and write
// of that operation runs on the same tx, including the outbox enqueue.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx repo.Tx) error) error
}

type ProcessRepository interface {
	Find(ctx context.Context, tx repo.Tx, id int64) (*subprocess.Process, error)
	Create(ctx context.Context, tx repo.Tx, p *subprocess.Process) error
	Update(ctx context.Context, tx repo.Tx, p *subprocess.Process) error
}

type SubprocessRepository interface {
	// Find loads the subprocess together with its owning process.
	Find(ctx context.Context, tx repo.Tx, id int64) (*subprocess.Subprocess, error)
	FindByProcess(ctx context.Context, tx repo.Tx, processID int64) ([]*subprocess.Subprocess, error)
	Create(ctx context.Context, tx repo.Tx, sp *subprocess.Subprocess) error
	Update(ctx context.Context, tx repo.Tx, sp *subprocess.Subprocess) error
}

type MovementRepository interface {
	Append(ctx context.Context, tx repo.Tx, m *subprocess.Movement) error
	// Latest returns the most recent movement, or nil when none exists.
	Latest(ctx context.Context, tx repo.Tx, subprocessID int64) (*subprocess.Movement, error)
}

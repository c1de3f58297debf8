package workflow

import (
	"context"
	"time"

	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/modules/competency/domain/transition"
	"github.com/sgc-hq/sgc/modules/competency/services/access"
	"github.com/sgc-hq/sgc/pkg/repo"
)

// CreateProcessInput is shared by the three process factories.
type CreateProcessInput struct {
	Description string
	UnitIDs     []int64
	Deadline    *time.Time
}

// CreateForMapping starts a mapping process: one subprocess per eligible
// unit, each with an initial movement and a started event.
func (s *Service) CreateForMapping(ctx context.Context, subject *access.Subject, in CreateProcessInput) (*subprocess.Process, error) {
	return s.createProcess(ctx, subject, in, subprocess.ProcessMapping, subprocess.SituationNotStarted)
}

// CreateForRevision starts a revision of already homologated maps.
func (s *Service) CreateForRevision(ctx context.Context, subject *access.Subject, in CreateProcessInput) (*subprocess.Process, error) {
	return s.createProcess(ctx, subject, in, subprocess.ProcessRevision, subprocess.SituationNotStarted)
}

// CreateForDiagnostic starts a diagnostic; units begin their
// self-assessment immediately.
func (s *Service) CreateForDiagnostic(ctx context.Context, subject *access.Subject, in CreateProcessInput) (*subprocess.Process, error) {
	return s.createProcess(ctx, subject, in, subprocess.ProcessDiagnostic, subprocess.SituationSelfAssessmentInProgress)
}

func (s *Service) createProcess(ctx context.Context, subject *access.Subject, in CreateProcessInput, pt subprocess.ProcessType, initial subprocess.Situation) (*subprocess.Process, error) {
	if !s.engine.CanExecuteProcess(subject, nil, access.ActionCreateSubprocess) {
		return nil, ErrForbidden.WithDetails("criar processo %s", pt)
	}
	if in.Description == "" {
		return nil, ErrValidation.WithDetails("descrição obrigatória")
	}
	if len(in.UnitIDs) == 0 {
		return nil, ErrValidation.WithDetails("processo sem unidades participantes")
	}

	h, err := s.units.Hierarchy(ctx)
	if err != nil {
		return nil, err
	}
	for _, unitID := range in.UnitIDs {
		unit, ok := h.Unit(unitID)
		if !ok {
			return nil, ErrValidation.WithDetails("unidade %d desconhecida", unitID)
		}
		if !unit.Type.EligibleForMapping() {
			return nil, ErrValidation.WithDetails("unidade %s (%s) não participa de processos", unit.Acronym, unit.Type)
		}
	}

	proc := &subprocess.Process{
		Description: in.Description,
		Type:        pt,
		Status:      subprocess.ProcessInProgress,
		Deadline:    in.Deadline,
	}

	err = s.store.InTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		if err := s.processes.Create(ctx, tx, proc); err != nil {
			return err
		}
		startedAt := s.now()
		for _, unitID := range in.UnitIDs {
			sp := &subprocess.Subprocess{
				ProcessID:        proc.ID,
				UnitID:           unitID,
				Situation:        initial,
				StageOneDeadline: in.Deadline,
				Process:          proc,
			}
			if err := s.subprocesses.Create(ctx, tx, sp); err != nil {
				return err
			}
			if err := s.movements.Append(ctx, tx, &subprocess.Movement{
				SubprocessID: sp.ID,
				OriginUnitID: &unitID,
				DestUnitID:   &unitID,
				At:           startedAt,
				Description:  transition.ProcessStarted.Description(),
			}); err != nil {
				return err
			}
			if err := s.publish(ctx, tx, subject, sp, transition.ProcessStarted, initial, "", startedAt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return proc, nil
}

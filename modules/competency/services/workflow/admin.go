package workflow

import (
	"context"
	"time"

	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/modules/competency/domain/transition"
	"github.com/sgc-hq/sgc/modules/competency/services/access"
	"github.com/sgc-hq/sgc/pkg/repo"
)

// ReopenCadastro rolls a mapping subprocess back to the authoring state.
// Only registers that were at least submitted can be reopened; the unit and
// its whole superior chain are alerted downstream.
func (s *Service) ReopenCadastro(ctx context.Context, subject *access.Subject, subprocessID int64, reason string) (*subprocess.Subprocess, error) {
	if reason == "" {
		return nil, ErrValidation.WithDetails("reabertura exige justificativa")
	}
	return s.transition(ctx, subject, subprocessID, step{
		action: access.ActionReopenCadastro,
		kind:   transition.CadastroReopened,
		from: []subprocess.Situation{
			subprocess.SituationCadastroSubmitted,
			subprocess.SituationCadastroHomologated,
		},
		to:     subprocess.SituationCadastroInProgress,
		route:  routeToOwningUnit,
		reason: reason,
	})
}

// ReopenRevision is the revision-cycle counterpart of ReopenCadastro.
func (s *Service) ReopenRevision(ctx context.Context, subject *access.Subject, subprocessID int64, reason string) (*subprocess.Subprocess, error) {
	if reason == "" {
		return nil, ErrValidation.WithDetails("reabertura exige justificativa")
	}
	return s.transition(ctx, subject, subprocessID, step{
		action: access.ActionReopenRevision,
		kind:   transition.RevisionCadastroReopened,
		from: []subprocess.Situation{
			subprocess.SituationRevisionCadastroSubmitted,
			subprocess.SituationRevisionCadastroHomologated,
		},
		to:     subprocess.SituationRevisionCadastroInProgress,
		route:  routeToOwningUnit,
		reason: reason,
	})
}

// ChangeDeadline moves the deadline of whichever stage the subprocess is
// currently in. The unit is alerted and mailed.
func (s *Service) ChangeDeadline(ctx context.Context, subject *access.Subject, subprocessID int64, deadline time.Time) (*subprocess.Subprocess, error) {
	if deadline.Before(s.now()) {
		return nil, ErrValidation.WithDetails("data limite no passado: %s", deadline.Format("2006-01-02"))
	}
	sp, err := s.load(ctx, subprocessID)
	if err != nil {
		return nil, err
	}
	mutate := func(sp *subprocess.Subprocess) { sp.StageOneDeadline = &deadline }
	if sp.Situation.Stage() == 2 {
		mutate = func(sp *subprocess.Subprocess) { sp.StageTwoDeadline = &deadline }
	}
	return s.transition(ctx, subject, subprocessID, step{
		action: access.ActionChangeDeadline,
		kind:   transition.DeadlineChanged,
		from:   subprocess.All(),
		route:  routeNone,
		mutate: mutate,
	})
}

// SendReminder nudges the unit about an approaching deadline. The situation
// does not change; the reminder is visible in the audit trail.
func (s *Service) SendReminder(ctx context.Context, subject *access.Subject, subprocessID int64) (*subprocess.Subprocess, error) {
	return s.transition(ctx, subject, subprocessID, step{
		action: access.ActionSendReminder,
		kind:   transition.DeadlineReminder,
		from:   subprocess.All(),
		route:  routeInPlace,
	})
}

// FinalizeProcess marks a whole process as finished once every subprocess
// reached a homologated or concluded state.
func (s *Service) FinalizeProcess(ctx context.Context, subject *access.Subject, processID int64) (*subprocess.Process, error) {
	var out *subprocess.Process
	err := s.store.InTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		proc, err := s.processes.Find(ctx, tx, processID)
		if err != nil {
			return err
		}
		if proc == nil {
			return ErrNotFound.WithDetails("processo %d", processID)
		}
		if !s.engine.CanExecuteProcess(subject, proc, access.ActionEditSubprocess) {
			return ErrForbidden.WithDetails("finalizar processo %d", processID)
		}
		if proc.Status == subprocess.ProcessFinalized {
			return ErrConflict.WithDetails("processo %d já finalizado", processID)
		}

		sps, err := s.subprocesses.FindByProcess(ctx, tx, processID)
		if err != nil {
			return err
		}
		for _, sp := range sps {
			if !finalSituation(sp.Situation) {
				return ErrConflict.WithDetails("subprocesso %d em %s", sp.ID, sp.Situation)
			}
		}

		proc.Status = subprocess.ProcessFinalized
		if err := s.processes.Update(ctx, tx, proc); err != nil {
			return err
		}
		out = proc
		return nil
	})
	return out, err
}

func finalSituation(s subprocess.Situation) bool {
	switch s {
	case subprocess.SituationMapHomologated,
		subprocess.SituationRevisionMapHomologated,
		subprocess.SituationSelfAssessmentConcluded:
		return true
	}
	return false
}

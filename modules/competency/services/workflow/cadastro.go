package workflow

import (
	"context"

	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/modules/competency/domain/transition"
	"github.com/sgc-hq/sgc/modules/competency/services/access"
)

// SubmitCadastro hands the activity register to the immediate superior and
// closes the unit's stage-one work. During a revision process the revision
// variants of action, situation and transition kind apply.
func (s *Service) SubmitCadastro(ctx context.Context, subject *access.Subject, subprocessID int64) (*subprocess.Subprocess, error) {
	sp, err := s.load(ctx, subprocessID)
	if err != nil {
		return nil, err
	}
	st := step{
		action:        access.ActionSubmitCadastro,
		kind:          transition.CadastroSubmitted,
		from:          []subprocess.Situation{subprocess.SituationCadastroInProgress},
		to:            subprocess.SituationCadastroSubmitted,
		route:         routeToSuperior,
		stampStageOne: true,
	}
	if revision(sp) {
		st.action = access.ActionSubmitRevisionCadastro
		st.kind = transition.RevisionCadastroSubmitted
		st.from = []subprocess.Situation{subprocess.SituationRevisionCadastroInProgress}
		st.to = subprocess.SituationRevisionCadastroSubmitted
	}
	return s.transition(ctx, subject, subprocessID, st)
}

// ReturnCadastro sends the register back for rework with a justification.
func (s *Service) ReturnCadastro(ctx context.Context, subject *access.Subject, subprocessID int64, reason string) (*subprocess.Subprocess, error) {
	if reason == "" {
		return nil, ErrValidation.WithDetails("devolução exige justificativa")
	}
	sp, err := s.load(ctx, subprocessID)
	if err != nil {
		return nil, err
	}
	st := step{
		action: access.ActionReturnCadastro,
		kind:   transition.CadastroReturned,
		from:   []subprocess.Situation{subprocess.SituationCadastroSubmitted},
		to:     subprocess.SituationCadastroInProgress,
		route:  routeToOwningUnit,
		reason: reason,
	}
	if revision(sp) {
		st.action = access.ActionReturnRevisionCadastro
		st.kind = transition.RevisionCadastroReturned
		st.from = []subprocess.Situation{subprocess.SituationRevisionCadastroSubmitted}
		st.to = subprocess.SituationRevisionCadastroInProgress
	}
	return s.transition(ctx, subject, subprocessID, st)
}

// AcceptCadastro passes the register one level up without changing the
// situation; only the location moves.
func (s *Service) AcceptCadastro(ctx context.Context, subject *access.Subject, subprocessID int64) (*subprocess.Subprocess, error) {
	sp, err := s.load(ctx, subprocessID)
	if err != nil {
		return nil, err
	}
	st := step{
		action: access.ActionAcceptCadastro,
		kind:   transition.CadastroAccepted,
		from:   []subprocess.Situation{subprocess.SituationCadastroSubmitted},
		route:  routeToSuperior,
	}
	if revision(sp) {
		st.action = access.ActionAcceptRevisionCadastro
		st.kind = transition.RevisionCadastroAccepted
		st.from = []subprocess.Situation{subprocess.SituationRevisionCadastroSubmitted}
	}
	return s.transition(ctx, subject, subprocessID, st)
}

// HomologateCadastro finishes the register review at the admin unit.
func (s *Service) HomologateCadastro(ctx context.Context, subject *access.Subject, subprocessID int64) (*subprocess.Subprocess, error) {
	sp, err := s.load(ctx, subprocessID)
	if err != nil {
		return nil, err
	}
	st := step{
		action: access.ActionHomologateCadastro,
		kind:   transition.CadastroHomologated,
		from:   []subprocess.Situation{subprocess.SituationCadastroSubmitted},
		to:     subprocess.SituationCadastroHomologated,
		route:  routeActorUnit,
	}
	if revision(sp) {
		st.action = access.ActionHomologateRevisionCadastro
		st.kind = transition.RevisionCadastroHomologated
		st.from = []subprocess.Situation{subprocess.SituationRevisionCadastroSubmitted}
		st.to = subprocess.SituationRevisionCadastroHomologated
	}
	return s.transition(ctx, subject, subprocessID, st)
}

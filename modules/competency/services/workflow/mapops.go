package workflow

import (
	"context"

	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/modules/competency/domain/transition"
	"github.com/sgc-hq/sgc/modules/competency/services/access"
)

// CreateMap attaches a freshly drafted competency map to a mapping
// subprocess. Revision processes adjust the existing map instead.
func (s *Service) CreateMap(ctx context.Context, subject *access.Subject, subprocessID, mapID int64) (*subprocess.Subprocess, error) {
	if mapID <= 0 {
		return nil, ErrValidation.WithDetails("mapa inválido: %d", mapID)
	}
	sp, err := s.load(ctx, subprocessID)
	if err != nil {
		return nil, err
	}
	if revision(sp) {
		return nil, ErrConflict.WithDetails("processo de revisão ajusta o mapa existente")
	}
	return s.transition(ctx, subject, subprocessID, step{
		action: access.ActionEditMap,
		kind:   transition.MapCreated,
		from:   []subprocess.Situation{subprocess.SituationCadastroHomologated},
		to:     subprocess.SituationMapCreated,
		route:  routeActorUnit,
		mutate: func(sp *subprocess.Subprocess) { sp.MapID = &mapID },
	})
}

// AdjustMap reworks the existing map after a revision's register changes.
func (s *Service) AdjustMap(ctx context.Context, subject *access.Subject, subprocessID int64) (*subprocess.Subprocess, error) {
	return s.transition(ctx, subject, subprocessID, step{
		action: access.ActionAdjustMap,
		kind:   transition.MapAdjusted,
		from: []subprocess.Situation{
			subprocess.SituationRevisionCadastroHomologated,
			subprocess.SituationRevisionMapAdjusted,
		},
		to:    subprocess.SituationRevisionMapAdjusted,
		route: routeActorUnit,
	})
}

// SubmitMap releases the map to the unit for validation.
func (s *Service) SubmitMap(ctx context.Context, subject *access.Subject, subprocessID int64) (*subprocess.Subprocess, error) {
	sp, err := s.load(ctx, subprocessID)
	if err != nil {
		return nil, err
	}
	st := step{
		action: access.ActionSubmitMap,
		kind:   transition.MapSubmitted,
		from: []subprocess.Situation{
			subprocess.SituationMapCreated,
			subprocess.SituationMapWithSuggestions,
		},
		to:    subprocess.SituationMapSubmitted,
		route: routeToOwningUnit,
	}
	if revision(sp) {
		st.from = []subprocess.Situation{
			subprocess.SituationRevisionMapAdjusted,
			subprocess.SituationRevisionMapWithSuggestions,
		}
		st.to = subprocess.SituationRevisionMapSubmitted
	}
	return s.transition(ctx, subject, subprocessID, st)
}

// PresentSuggestions records the unit's change requests on the map.
func (s *Service) PresentSuggestions(ctx context.Context, subject *access.Subject, subprocessID int64, suggestions string) (*subprocess.Subprocess, error) {
	if suggestions == "" {
		return nil, ErrValidation.WithDetails("sugestões não podem ser vazias")
	}
	sp, err := s.load(ctx, subprocessID)
	if err != nil {
		return nil, err
	}
	st := step{
		action: access.ActionPresentSuggestions,
		kind:   transition.MapSuggestionsPresented,
		from:   []subprocess.Situation{subprocess.SituationMapSubmitted},
		to:     subprocess.SituationMapWithSuggestions,
		route:  routeToSuperior,
		reason: suggestions,
	}
	if revision(sp) {
		st.from = []subprocess.Situation{subprocess.SituationRevisionMapSubmitted}
		st.to = subprocess.SituationRevisionMapWithSuggestions
	}
	return s.transition(ctx, subject, subprocessID, st)
}

// ValidateMap is the unit's sign-off; the map moves up the chain and the
// stage-two end date is stamped.
func (s *Service) ValidateMap(ctx context.Context, subject *access.Subject, subprocessID int64) (*subprocess.Subprocess, error) {
	sp, err := s.load(ctx, subprocessID)
	if err != nil {
		return nil, err
	}
	st := step{
		action:        access.ActionValidateMap,
		kind:          transition.MapValidated,
		from:          []subprocess.Situation{subprocess.SituationMapSubmitted},
		to:            subprocess.SituationMapValidated,
		route:         routeToSuperior,
		stampStageTwo: true,
	}
	if revision(sp) {
		st.from = []subprocess.Situation{subprocess.SituationRevisionMapSubmitted}
		st.to = subprocess.SituationRevisionMapValidated
	}
	return s.transition(ctx, subject, subprocessID, st)
}

// ReturnMapValidation reopens validation at the unit.
func (s *Service) ReturnMapValidation(ctx context.Context, subject *access.Subject, subprocessID int64, reason string) (*subprocess.Subprocess, error) {
	if reason == "" {
		return nil, ErrValidation.WithDetails("devolução exige justificativa")
	}
	sp, err := s.load(ctx, subprocessID)
	if err != nil {
		return nil, err
	}
	st := step{
		action: access.ActionReturnMap,
		kind:   transition.MapValidationReturned,
		from: []subprocess.Situation{
			subprocess.SituationMapWithSuggestions,
			subprocess.SituationMapValidated,
		},
		to:     subprocess.SituationMapSubmitted,
		route:  routeToOwningUnit,
		reason: reason,
	}
	if revision(sp) {
		st.from = []subprocess.Situation{
			subprocess.SituationRevisionMapWithSuggestions,
			subprocess.SituationRevisionMapValidated,
		}
		st.to = subprocess.SituationRevisionMapSubmitted
	}
	return s.transition(ctx, subject, subprocessID, st)
}

// AcceptMapValidation passes the validated map (or its suggestions) one
// level up, keeping the situation.
func (s *Service) AcceptMapValidation(ctx context.Context, subject *access.Subject, subprocessID int64) (*subprocess.Subprocess, error) {
	sp, err := s.load(ctx, subprocessID)
	if err != nil {
		return nil, err
	}
	st := step{
		action: access.ActionAcceptMap,
		kind:   transition.MapValidationAccepted,
		from: []subprocess.Situation{
			subprocess.SituationMapWithSuggestions,
			subprocess.SituationMapValidated,
		},
		route: routeToSuperior,
	}
	if revision(sp) {
		st.from = []subprocess.Situation{
			subprocess.SituationRevisionMapWithSuggestions,
			subprocess.SituationRevisionMapValidated,
		}
	}
	return s.transition(ctx, subject, subprocessID, st)
}

// HomologateMap closes the map cycle at the admin unit.
func (s *Service) HomologateMap(ctx context.Context, subject *access.Subject, subprocessID int64) (*subprocess.Subprocess, error) {
	sp, err := s.load(ctx, subprocessID)
	if err != nil {
		return nil, err
	}
	st := step{
		action: access.ActionHomologateMap,
		kind:   transition.MapHomologated,
		from: []subprocess.Situation{
			subprocess.SituationMapWithSuggestions,
			subprocess.SituationMapValidated,
		},
		to:            subprocess.SituationMapHomologated,
		route:         routeActorUnit,
		stampStageTwo: true,
	}
	if revision(sp) {
		st.from = []subprocess.Situation{
			subprocess.SituationRevisionMapWithSuggestions,
			subprocess.SituationRevisionMapValidated,
		}
		st.to = subprocess.SituationRevisionMapHomologated
	}
	return s.transition(ctx, subject, subprocessID, st)
}

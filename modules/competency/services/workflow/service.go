// Package workflow orchestrates the subprocess state machine: factories that
// spawn subprocesses when a process starts, and the guarded transitions the
// units and the admin team drive until homologation. Every operation is one
// transaction: authorization, situation re-validation, state change, movement
// append and outbox enqueue commit or roll back together.
package workflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/sgc-hq/sgc/modules/competency/domain/events"
	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/modules/competency/domain/transition"
	"github.com/sgc-hq/sgc/modules/competency/services/access"
	"github.com/sgc-hq/sgc/pkg/outbox"
	"github.com/sgc-hq/sgc/pkg/repo"
)

type Service struct {
	store        Store
	processes    ProcessRepository
	subprocesses SubprocessRepository
	movements    MovementRepository
	units        access.HierarchyProvider
	engine       *access.Engine
	publisher    outbox.Publisher
	outboxTable  pgx.Identifier
	log          *logrus.Logger
	now          func() time.Time
}

type Options struct {
	Store        Store
	Processes    ProcessRepository
	Subprocesses SubprocessRepository
	Movements    MovementRepository
	Units        access.HierarchyProvider
	Engine       *access.Engine
	Publisher    outbox.Publisher
	OutboxTable  pgx.Identifier
	Log          *logrus.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewService(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	table := opts.OutboxTable
	if len(table) == 0 {
		table = pgx.Identifier{"competency_outbox"}
	}
	return &Service{
		store:        opts.Store,
		processes:    opts.Processes,
		subprocesses: opts.Subprocesses,
		movements:    opts.Movements,
		units:        opts.Units,
		engine:       opts.Engine,
		publisher:    opts.Publisher,
		outboxTable:  table,
		log:          opts.Log,
		now:          now,
	}
}

// route names where a transition moves the subprocess to.
type route int

const (
	// routeNone records no movement.
	routeNone route = iota
	// routeToSuperior hands the subprocess to the immediate superior of its
	// current location; units directly under the root stay put.
	routeToSuperior
	// routeToOwningUnit sends the subprocess back to the unit it belongs to.
	routeToOwningUnit
	// routeInPlace records an audit movement without changing location.
	routeInPlace
	// routeActorUnit records the movement within the acting subject's unit.
	routeActorUnit
)

// step describes one transition of the state machine. from lists the
// situations the transition may fire in; an empty `to` keeps the situation.
type step struct {
	action        access.Action
	kind          transition.Kind
	from          []subprocess.Situation
	to            subprocess.Situation
	route         route
	stampStageOne bool
	stampStageTwo bool
	reason        string
	// mutate applies extra changes before the update is written.
	mutate func(*subprocess.Subprocess)
}

// transition is the shared engine behind every workflow operation.
func (s *Service) transition(ctx context.Context, subject *access.Subject, subprocessID int64, st step) (*subprocess.Subprocess, error) {
	var out *subprocess.Subprocess
	err := s.store.InTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		sp, err := s.subprocesses.Find(ctx, tx, subprocessID)
		if err != nil {
			return err
		}
		if sp == nil {
			return ErrNotFound.WithDetails("subprocesso %d", subprocessID)
		}

		if !s.engine.CanExecute(ctx, subject, st.action, sp) {
			return ErrForbidden.WithDetails("%s em subprocesso %d", st.action, subprocessID)
		}

		// The permission check already constrains the situation; this second
		// check closes the window against a concurrent transition between
		// page load and submit.
		if !situationAllowed(sp.Situation, st.from) {
			return ErrConflict.WithDetails("subprocesso %d em %s", subprocessID, sp.Situation)
		}

		from := sp.Situation
		if st.to != "" {
			sp.Situation = st.to
		}
		nowAt := s.now()
		if st.stampStageOne {
			sp.StageOneDoneAt = &nowAt
		}
		if st.stampStageTwo {
			sp.StageTwoDoneAt = &nowAt
		}
		if st.mutate != nil {
			st.mutate(sp)
		}
		if err := s.subprocesses.Update(ctx, tx, sp); err != nil {
			return err
		}

		if err := s.recordMovement(ctx, tx, subject, sp, st, nowAt); err != nil {
			return err
		}
		if err := s.publish(ctx, tx, subject, sp, st.kind, from, st.reason, nowAt); err != nil {
			return err
		}

		if s.log != nil {
			s.log.WithFields(logrus.Fields{
				"subprocess": sp.ID,
				"kind":       st.kind,
				"from":       from,
				"to":         sp.Situation,
				"actor":      subject.ID,
			}).Info("subprocess transition")
		}
		out = sp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func situationAllowed(current subprocess.Situation, allowed []subprocess.Situation) bool {
	for _, s := range allowed {
		if s == current {
			return true
		}
	}
	return false
}

func (s *Service) recordMovement(ctx context.Context, tx repo.Tx, subject *access.Subject, sp *subprocess.Subprocess, st step, at time.Time) error {
	if st.route == routeNone {
		return nil
	}

	origin, err := s.currentLocation(ctx, tx, sp)
	if err != nil {
		return err
	}

	var dest int64
	switch st.route {
	case routeToSuperior:
		h, err := s.units.Hierarchy(ctx)
		if err != nil {
			return err
		}
		dest = origin
		if parent, ok := h.Parent(origin); ok {
			dest = parent.ID
		}
	case routeToOwningUnit:
		dest = sp.UnitID
	case routeInPlace:
		dest = origin
	case routeActorUnit:
		origin = subject.UnitID
		dest = subject.UnitID
	}

	return s.movements.Append(ctx, tx, &subprocess.Movement{
		SubprocessID: sp.ID,
		OriginUnitID: &origin,
		DestUnitID:   &dest,
		At:           at,
		Description:  st.kind.Description(),
	})
}

func (s *Service) currentLocation(ctx context.Context, tx repo.Tx, sp *subprocess.Subprocess) (int64, error) {
	m, err := s.movements.Latest(ctx, tx, sp.ID)
	if err != nil {
		return 0, err
	}
	if m != nil && m.DestUnitID != nil {
		return *m.DestUnitID, nil
	}
	return sp.UnitID, nil
}

func (s *Service) publish(ctx context.Context, tx repo.Tx, subject *access.Subject, sp *subprocess.Subprocess, kind transition.Kind, from subprocess.Situation, reason string, at time.Time) error {
	evt := events.TransitionEventV1{
		EventID:      uuid.New(),
		SubprocessID: sp.ID,
		ProcessID:    sp.ProcessID,
		Kind:         string(kind),
		FromStatus:   string(from),
		ToStatus:     string(sp.Situation),
		ActorID:      subject.ID,
		ActingUnitID: sp.UnitID,
		Reason:       reason,
		OccurredAt:   at,
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	_, err = s.publisher.Enqueue(ctx, tx, s.outboxTable, outbox.Message{
		Topic:   events.TopicTransitionV1,
		EventID: evt.EventID,
		Payload: payload,
	})
	return err
}

// revision reports whether the subprocess belongs to a revision process.
func revision(sp *subprocess.Subprocess) bool {
	return sp != nil && sp.Process != nil && sp.Process.Type == subprocess.ProcessRevision
}

// load fetches the subprocess outside any transition, for read paths.
func (s *Service) load(ctx context.Context, id int64) (*subprocess.Subprocess, error) {
	var out *subprocess.Subprocess
	err := s.store.InTx(ctx, func(ctx context.Context, tx repo.Tx) error {
		sp, err := s.subprocesses.Find(ctx, tx, id)
		if err != nil {
			return err
		}
		if sp == nil {
			return ErrNotFound.WithDetails("subprocesso %d", id)
		}
		out = sp
		return nil
	})
	return out, err
}

// Get returns the subprocess for display. Authorization is the route
// guard's job; see middleware.RequireAction.
func (s *Service) Get(ctx context.Context, subprocessID int64) (*subprocess.Subprocess, error) {
	return s.load(ctx, subprocessID)
}

// Permissions resolves the UI flag set for one subprocess.
func (s *Service) Permissions(ctx context.Context, subject *access.Subject, subprocessID int64) (access.PermissionFlags, error) {
	sp, err := s.load(ctx, subprocessID)
	if err != nil {
		return access.PermissionFlags{}, err
	}
	return s.engine.UIPermissions(ctx, subject, sp), nil
}

package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/sgc-hq/sgc/modules/competency/domain/events"
	"github.com/sgc-hq/sgc/modules/competency/domain/org"
	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
	"github.com/sgc-hq/sgc/modules/competency/domain/transition"
	"github.com/sgc-hq/sgc/modules/competency/services/access"
	"github.com/sgc-hq/sgc/pkg/outbox"
	"github.com/sgc-hq/sgc/pkg/repo"
)

func ptr(v int64) *int64 { return &v }

// store is an in-memory stand-in for the pgx repositories, the outbox
// publisher and the directory. InTx snapshots state and restores it on
// error, mimicking a rollback.
type store struct {
	procs    map[int64]*subprocess.Process
	sps      map[int64]*subprocess.Subprocess
	movs     []subprocess.Movement
	enqueued []outbox.Message

	nextProc, nextSp, nextMov int64

	enqueueErr error
}

func newStore() *store {
	return &store{
		procs: make(map[int64]*subprocess.Process),
		sps:   make(map[int64]*subprocess.Subprocess),
	}
}

func (s *store) InTx(ctx context.Context, fn func(ctx context.Context, tx repo.Tx) error) error {
	procs := make(map[int64]*subprocess.Process, len(s.procs))
	for id, p := range s.procs {
		cp := *p
		procs[id] = &cp
	}
	sps := make(map[int64]*subprocess.Subprocess, len(s.sps))
	for id, sp := range s.sps {
		cp := *sp
		sps[id] = &cp
	}
	movs := make([]subprocess.Movement, len(s.movs))
	copy(movs, s.movs)
	queued := len(s.enqueued)

	if err := fn(ctx, nil); err != nil {
		s.procs, s.sps, s.movs = procs, sps, movs
		s.enqueued = s.enqueued[:queued]
		return err
	}
	return nil
}

type processRepo struct{ s *store }

func (r processRepo) Find(_ context.Context, _ repo.Tx, id int64) (*subprocess.Process, error) {
	return r.s.procs[id], nil
}

func (r processRepo) Create(_ context.Context, _ repo.Tx, p *subprocess.Process) error {
	r.s.nextProc++
	p.ID = r.s.nextProc
	cp := *p
	r.s.procs[p.ID] = &cp
	return nil
}

func (r processRepo) Update(_ context.Context, _ repo.Tx, p *subprocess.Process) error {
	cp := *p
	r.s.procs[p.ID] = &cp
	return nil
}

type subprocessRepo struct{ s *store }

func (r subprocessRepo) Find(_ context.Context, _ repo.Tx, id int64) (*subprocess.Subprocess, error) {
	sp, ok := r.s.sps[id]
	if !ok {
		return nil, nil
	}
	cp := *sp
	if proc, ok := r.s.procs[sp.ProcessID]; ok {
		cp.Process = proc
	}
	return &cp, nil
}

func (r subprocessRepo) FindByProcess(_ context.Context, _ repo.Tx, processID int64) ([]*subprocess.Subprocess, error) {
	var out []*subprocess.Subprocess
	for _, sp := range r.s.sps {
		if sp.ProcessID == processID {
			cp := *sp
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r subprocessRepo) Create(_ context.Context, _ repo.Tx, sp *subprocess.Subprocess) error {
	r.s.nextSp++
	sp.ID = r.s.nextSp
	cp := *sp
	r.s.sps[sp.ID] = &cp
	return nil
}

func (r subprocessRepo) Update(_ context.Context, _ repo.Tx, sp *subprocess.Subprocess) error {
	cp := *sp
	r.s.sps[sp.ID] = &cp
	return nil
}

type movementRepo struct{ s *store }

func (r movementRepo) Append(_ context.Context, _ repo.Tx, m *subprocess.Movement) error {
	r.s.nextMov++
	m.ID = r.s.nextMov
	r.s.movs = append(r.s.movs, *m)
	return nil
}

func (r movementRepo) Latest(_ context.Context, _ repo.Tx, subprocessID int64) (*subprocess.Movement, error) {
	return r.s.latest(subprocessID), nil
}

func (s *store) latest(subprocessID int64) *subprocess.Movement {
	var out *subprocess.Movement
	for i := range s.movs {
		m := s.movs[i]
		if m.SubprocessID != subprocessID {
			continue
		}
		if out == nil || m.At.After(out.At) || (m.At.Equal(out.At) && m.ID > out.ID) {
			out = &m
		}
	}
	return out
}

// Adapters for the access engine (no tx on its read paths).

type engineReads struct{ s *store }

func (e engineReads) Find(ctx context.Context, id int64) (*subprocess.Subprocess, error) {
	sp, err := subprocessRepo{e.s}.Find(ctx, nil, id)
	if err != nil || sp == nil {
		return nil, errors.New("not found")
	}
	return sp, nil
}

func (e engineReads) FindByProcessAndUnit(_ context.Context, processID, unitID int64) (*subprocess.Subprocess, error) {
	for _, sp := range e.s.sps {
		if sp.ProcessID == processID && sp.UnitID == unitID {
			cp := *sp
			return &cp, nil
		}
	}
	return nil, errors.New("not found")
}

func (e engineReads) LatestMovement(_ context.Context, subprocessID int64) (*subprocess.Movement, error) {
	return e.s.latest(subprocessID), nil
}

// Unit forest: SEDOC(1) root ── SGP(2) ── COSIS(3) ── SESEL(4, resp "ana");
// SEDOC ── ASCOM(5); SGP is intermediate and therefore ineligible.
type directory struct{}

func (directory) Hierarchy(_ context.Context) (*org.Hierarchy, error) {
	return org.NewHierarchy([]org.Unit{
		{ID: 1, Acronym: "SEDOC", Type: org.UnitTypeRoot, Active: true, ResponsibleID: "root"},
		{ID: 2, Acronym: "SGP", Type: org.UnitTypeIntermediate, ParentID: ptr(1), Active: true, ResponsibleID: "maria"},
		{ID: 3, Acronym: "COSIS", Type: org.UnitTypeInteroperational, ParentID: ptr(2), Active: true, ResponsibleID: "joao"},
		{ID: 4, Acronym: "SESEL", Type: org.UnitTypeOperational, ParentID: ptr(3), Active: true, ResponsibleID: "ana"},
		{ID: 5, Acronym: "ASCOM", Type: org.UnitTypeOperational, ParentID: ptr(1), Active: true, ResponsibleID: "rui"},
	}), nil
}

func (s *store) Enqueue(_ context.Context, _ repo.Tx, _ pgx.Identifier, msg outbox.Message) (int64, error) {
	if s.enqueueErr != nil {
		return 0, s.enqueueErr
	}
	s.enqueued = append(s.enqueued, msg)
	return int64(len(s.enqueued)), nil
}

func newService(s *store) *Service {
	reads := engineReads{s}
	engine := access.NewEngine(reads, reads, directory{}, nil)
	return NewService(Options{
		Store:        s,
		Processes:    processRepo{s},
		Subprocesses: subprocessRepo{s},
		Movements:    movementRepo{s},
		Units:        directory{},
		Engine:       engine,
		Publisher:    s,
		Now:          func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func (s *store) seed(id int64, unitID int64, situation subprocess.Situation, pt subprocess.ProcessType) *subprocess.Subprocess {
	procID := id + 1000
	s.procs[procID] = &subprocess.Process{ID: procID, Description: "Processo", Type: pt, Status: subprocess.ProcessInProgress}
	sp := &subprocess.Subprocess{ID: id, ProcessID: procID, UnitID: unitID, Situation: situation}
	s.sps[id] = sp
	if id > s.nextSp {
		s.nextSp = id
	}
	return sp
}

func (s *store) moveTo(subprocessID, unitID int64) {
	s.nextMov++
	s.movs = append(s.movs, subprocess.Movement{
		ID: s.nextMov, SubprocessID: subprocessID, DestUnitID: ptr(unitID), At: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
	})
}

func supervisor() *access.Subject {
	return &access.Subject{ID: "ana", Role: org.RoleSupervisor, UnitID: 4}
}

func admin() *access.Subject {
	return &access.Subject{ID: "root", Role: org.RoleAdmin, UnitID: 1}
}

func TestSubmitCadastro(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroInProgress, subprocess.ProcessMapping)
	svc := newService(s)

	sp, err := svc.SubmitCadastro(context.Background(), supervisor(), 1)
	require.NoError(t, err)
	require.Equal(t, subprocess.SituationCadastroSubmitted, sp.Situation)
	require.NotNil(t, sp.StageOneDoneAt)

	m := s.latest(1)
	require.NotNil(t, m)
	require.Equal(t, int64(4), *m.OriginUnitID)
	require.Equal(t, int64(3), *m.DestUnitID)
	require.Equal(t, transition.CadastroSubmitted.Description(), m.Description)

	require.Len(t, s.enqueued, 1)
	require.Equal(t, events.TopicTransitionV1, s.enqueued[0].Topic)
}

func TestSubmitCadastro_RevisionVariant(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationRevisionCadastroInProgress, subprocess.ProcessRevision)
	svc := newService(s)

	sp, err := svc.SubmitCadastro(context.Background(), supervisor(), 1)
	require.NoError(t, err)
	require.Equal(t, subprocess.SituationRevisionCadastroSubmitted, sp.Situation)
	require.Contains(t, string(s.enqueued[0].Payload), string(transition.RevisionCadastroSubmitted))
}

func TestSubmitCadastro_Denied(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroInProgress, subprocess.ProcessMapping)
	svc := newService(s)

	staff := &access.Subject{ID: "zoe", Role: org.RoleStaff, UnitID: 4}
	_, err := svc.SubmitCadastro(context.Background(), staff, 1)
	require.ErrorIs(t, err, ErrForbidden)
	require.Empty(t, s.enqueued)
	require.Equal(t, subprocess.SituationCadastroInProgress, s.sps[1].Situation)
}

func TestSubmitCadastro_UnknownSubprocess(t *testing.T) {
	s := newStore()
	svc := newService(s)

	_, err := svc.SubmitCadastro(context.Background(), supervisor(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReturnCadastro(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroSubmitted, subprocess.ProcessMapping)
	s.moveTo(1, 3)
	svc := newService(s)

	manager := &access.Subject{ID: "joao", Role: org.RoleManager, UnitID: 3}
	sp, err := svc.ReturnCadastro(context.Background(), manager, 1, "atividades incompletas")
	require.NoError(t, err)
	require.Equal(t, subprocess.SituationCadastroInProgress, sp.Situation)

	m := s.latest(1)
	require.Equal(t, int64(4), *m.DestUnitID)

	var evt events.TransitionEventV1
	require.NoError(t, json.Unmarshal(s.enqueued[0].Payload, &evt))
	require.Equal(t, "atividades incompletas", evt.Reason)
	require.Equal(t, string(subprocess.SituationCadastroSubmitted), evt.FromStatus)
	require.Equal(t, string(subprocess.SituationCadastroInProgress), evt.ToStatus)
}

func TestReturnCadastro_RequiresReason(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroSubmitted, subprocess.ProcessMapping)
	svc := newService(s)

	_, err := svc.ReturnCadastro(context.Background(), admin(), 1, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestAcceptCadastro_MovesUpKeepsSituation(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroSubmitted, subprocess.ProcessMapping)
	s.moveTo(1, 3)
	svc := newService(s)

	manager := &access.Subject{ID: "joao", Role: org.RoleManager, UnitID: 3}
	sp, err := svc.AcceptCadastro(context.Background(), manager, 1)
	require.NoError(t, err)
	require.Equal(t, subprocess.SituationCadastroSubmitted, sp.Situation)

	m := s.latest(1)
	require.Equal(t, int64(3), *m.OriginUnitID)
	require.Equal(t, int64(2), *m.DestUnitID)
}

func TestHomologateCadastro(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroSubmitted, subprocess.ProcessMapping)
	s.moveTo(1, 1)
	svc := newService(s)

	sp, err := svc.HomologateCadastro(context.Background(), admin(), 1)
	require.NoError(t, err)
	require.Equal(t, subprocess.SituationCadastroHomologated, sp.Situation)

	m := s.latest(1)
	require.Equal(t, int64(1), *m.OriginUnitID)
	require.Equal(t, int64(1), *m.DestUnitID)
}

func TestHomologateCadastro_DeniedAwayFromAdminUnit(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroSubmitted, subprocess.ProcessMapping)
	svc := newService(s)

	_, err := svc.HomologateCadastro(context.Background(), admin(), 1)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateMap(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroHomologated, subprocess.ProcessMapping)
	s.moveTo(1, 1)
	svc := newService(s)

	sp, err := svc.CreateMap(context.Background(), admin(), 1, 77)
	require.NoError(t, err)
	require.Equal(t, subprocess.SituationMapCreated, sp.Situation)
	require.NotNil(t, sp.MapID)
	require.Equal(t, int64(77), *sp.MapID)
}

func TestCreateMap_RevisionRejected(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationRevisionCadastroHomologated, subprocess.ProcessRevision)
	svc := newService(s)

	_, err := svc.CreateMap(context.Background(), admin(), 1, 77)
	require.ErrorIs(t, err, ErrConflict)
}

func TestSubmitMap_GoesToOwningUnit(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationMapCreated, subprocess.ProcessMapping)
	s.moveTo(1, 1)
	svc := newService(s)

	sp, err := svc.SubmitMap(context.Background(), admin(), 1)
	require.NoError(t, err)
	require.Equal(t, subprocess.SituationMapSubmitted, sp.Situation)

	m := s.latest(1)
	require.Equal(t, int64(4), *m.DestUnitID)
}

func TestValidateMap_StampsStageTwo(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationMapSubmitted, subprocess.ProcessMapping)
	s.moveTo(1, 4)
	svc := newService(s)

	sp, err := svc.ValidateMap(context.Background(), supervisor(), 1)
	require.NoError(t, err)
	require.Equal(t, subprocess.SituationMapValidated, sp.Situation)
	require.NotNil(t, sp.StageTwoDoneAt)

	m := s.latest(1)
	require.Equal(t, int64(3), *m.DestUnitID)
}

func TestPresentSuggestions(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationMapSubmitted, subprocess.ProcessMapping)
	s.moveTo(1, 4)
	svc := newService(s)

	sp, err := svc.PresentSuggestions(context.Background(), supervisor(), 1, "faltou competência X")
	require.NoError(t, err)
	require.Equal(t, subprocess.SituationMapWithSuggestions, sp.Situation)

	_, err = svc.PresentSuggestions(context.Background(), supervisor(), 1, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestReopenCadastro_MinimumSituationGuard(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroInProgress, subprocess.ProcessMapping)
	svc := newService(s)

	_, err := svc.ReopenCadastro(context.Background(), admin(), 1, "erro operacional")
	require.ErrorIs(t, err, ErrConflict)
}

func TestReopenCadastro(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroHomologated, subprocess.ProcessMapping)
	svc := newService(s)

	sp, err := svc.ReopenCadastro(context.Background(), admin(), 1, "erro operacional")
	require.NoError(t, err)
	require.Equal(t, subprocess.SituationCadastroInProgress, sp.Situation)

	m := s.latest(1)
	require.Equal(t, int64(4), *m.DestUnitID)
}

func TestChangeDeadline_StageSelection(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroInProgress, subprocess.ProcessMapping)
	s.seed(2, 5, subprocess.SituationMapSubmitted, subprocess.ProcessMapping)
	svc := newService(s)
	deadline := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	sp, err := svc.ChangeDeadline(context.Background(), admin(), 1, deadline)
	require.NoError(t, err)
	require.NotNil(t, sp.StageOneDeadline)
	require.Nil(t, sp.StageTwoDeadline)

	sp, err = svc.ChangeDeadline(context.Background(), admin(), 2, deadline)
	require.NoError(t, err)
	require.Nil(t, sp.StageOneDeadline)
	require.NotNil(t, sp.StageTwoDeadline)
}

func TestChangeDeadline_RejectsPast(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroInProgress, subprocess.ProcessMapping)
	svc := newService(s)

	_, err := svc.ChangeDeadline(context.Background(), admin(), 1, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, ErrValidation)
}

func TestSendReminder(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroInProgress, subprocess.ProcessMapping)
	svc := newService(s)

	sp, err := svc.SendReminder(context.Background(), admin(), 1)
	require.NoError(t, err)
	require.Equal(t, subprocess.SituationCadastroInProgress, sp.Situation)

	m := s.latest(1)
	require.Equal(t, transition.DeadlineReminder.Description(), m.Description)
	require.Len(t, s.enqueued, 1)
}

func TestTransition_EnqueueFailureRollsBack(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroInProgress, subprocess.ProcessMapping)
	s.enqueueErr = errors.New("outbox unavailable")
	svc := newService(s)

	_, err := svc.SubmitCadastro(context.Background(), supervisor(), 1)
	require.Error(t, err)
	require.Equal(t, subprocess.SituationCadastroInProgress, s.sps[1].Situation)
	require.Empty(t, s.movs)
}

func TestCreateForMapping(t *testing.T) {
	s := newStore()
	svc := newService(s)

	proc, err := svc.CreateForMapping(context.Background(), admin(), CreateProcessInput{
		Description: "Mapeamento 2026",
		UnitIDs:     []int64{4, 5},
	})
	require.NoError(t, err)
	require.NotZero(t, proc.ID)
	require.Equal(t, subprocess.ProcessInProgress, proc.Status)

	require.Len(t, s.sps, 2)
	for _, sp := range s.sps {
		require.Equal(t, subprocess.SituationNotStarted, sp.Situation)
	}
	require.Len(t, s.movs, 2)
	require.Equal(t, transition.ProcessStarted.Description(), s.movs[0].Description)
	require.Len(t, s.enqueued, 2)
}

func TestCreateForMapping_IneligibleUnit(t *testing.T) {
	s := newStore()
	svc := newService(s)

	_, err := svc.CreateForMapping(context.Background(), admin(), CreateProcessInput{
		Description: "Mapeamento 2026",
		UnitIDs:     []int64{2},
	})
	require.ErrorIs(t, err, ErrValidation)
	require.Empty(t, s.procs)
}

func TestCreateForMapping_NonAdminDenied(t *testing.T) {
	s := newStore()
	svc := newService(s)

	_, err := svc.CreateForMapping(context.Background(), supervisor(), CreateProcessInput{
		Description: "Mapeamento 2026",
		UnitIDs:     []int64{4},
	})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestCreateForDiagnostic_StartsSelfAssessment(t *testing.T) {
	s := newStore()
	svc := newService(s)

	_, err := svc.CreateForDiagnostic(context.Background(), admin(), CreateProcessInput{
		Description: "Diagnóstico 2026",
		UnitIDs:     []int64{4},
	})
	require.NoError(t, err)
	for _, sp := range s.sps {
		require.Equal(t, subprocess.SituationSelfAssessmentInProgress, sp.Situation)
	}
}

func TestCompleteSelfAssessment(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationSelfAssessmentInProgress, subprocess.ProcessDiagnostic)
	svc := newService(s)

	sp, err := svc.CompleteSelfAssessment(context.Background(), supervisor(), 1)
	require.NoError(t, err)
	require.Equal(t, subprocess.SituationSelfAssessmentConcluded, sp.Situation)
	require.NotNil(t, sp.StageOneDoneAt)
}

func TestFinalizeProcess(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationMapHomologated, subprocess.ProcessMapping)
	procID := s.sps[1].ProcessID
	svc := newService(s)

	proc, err := svc.FinalizeProcess(context.Background(), admin(), procID)
	require.NoError(t, err)
	require.Equal(t, subprocess.ProcessFinalized, proc.Status)

	_, err = svc.FinalizeProcess(context.Background(), admin(), procID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestFinalizeProcess_PendingSubprocessBlocks(t *testing.T) {
	s := newStore()
	sp := s.seed(1, 4, subprocess.SituationMapValidated, subprocess.ProcessMapping)
	svc := newService(s)

	_, err := svc.FinalizeProcess(context.Background(), admin(), sp.ProcessID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestPermissions(t *testing.T) {
	s := newStore()
	s.seed(1, 4, subprocess.SituationCadastroInProgress, subprocess.ProcessMapping)
	svc := newService(s)

	flags, err := svc.Permissions(context.Background(), supervisor(), 1)
	require.NoError(t, err)
	require.True(t, flags.CanEditCadastro)
	require.False(t, flags.CanHomologateCadastro)
}

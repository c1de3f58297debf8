package subprocess

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type movementStub struct {
	movement *Movement
	err      error
	calls    int
}

func (s *movementStub) LatestMovement(_ context.Context, _ int64) (*Movement, error) {
	s.calls++
	return s.movement, s.err
}

func i64(v int64) *int64 { return &v }

func TestCurrentLocation_NoMovements_OwningUnit(t *testing.T) {
	l := NewLocator(&movementStub{})
	sp := &Subprocess{ID: 1, UnitID: 10}

	got, err := l.CurrentLocation(context.Background(), sp)
	require.NoError(t, err)
	require.Equal(t, int64(10), got)
}

func TestCurrentLocation_LatestMovementDestination(t *testing.T) {
	stub := &movementStub{movement: &Movement{
		ID: 7, SubprocessID: 1, OriginUnitID: i64(10), DestUnitID: i64(20), At: time.Now(),
	}}
	l := NewLocator(stub)
	sp := &Subprocess{ID: 1, UnitID: 10}

	got, err := l.CurrentLocation(context.Background(), sp)
	require.NoError(t, err)
	require.Equal(t, int64(20), got)
}

func TestCurrentLocation_NilDestination_FallsBackToOwningUnit(t *testing.T) {
	stub := &movementStub{movement: &Movement{ID: 7, SubprocessID: 1, At: time.Now()}}
	l := NewLocator(stub)
	sp := &Subprocess{ID: 1, UnitID: 10}

	got, err := l.CurrentLocation(context.Background(), sp)
	require.NoError(t, err)
	require.Equal(t, int64(10), got)
}

func TestCurrentLocation_MemoizesWithinOnePass(t *testing.T) {
	stub := &movementStub{movement: &Movement{ID: 7, SubprocessID: 1, DestUnitID: i64(20), At: time.Now()}}
	l := NewLocator(stub)
	sp := &Subprocess{ID: 1, UnitID: 10}

	_, err := l.CurrentLocation(context.Background(), sp)
	require.NoError(t, err)
	_, err = l.CurrentLocation(context.Background(), sp)
	require.NoError(t, err)
	require.Equal(t, 1, stub.calls)
}

func TestCurrentLocation_InvalidateForcesRefetch(t *testing.T) {
	stub := &movementStub{movement: &Movement{ID: 7, SubprocessID: 1, DestUnitID: i64(20), At: time.Now()}}
	l := NewLocator(stub)
	sp := &Subprocess{ID: 1, UnitID: 10}

	_, err := l.CurrentLocation(context.Background(), sp)
	require.NoError(t, err)

	stub.movement = &Movement{ID: 8, SubprocessID: 1, DestUnitID: i64(30), At: time.Now()}
	l.Invalidate(sp.ID)

	got, err := l.CurrentLocation(context.Background(), sp)
	require.NoError(t, err)
	require.Equal(t, int64(30), got)
	require.Equal(t, 2, stub.calls)
}

func TestCurrentLocation_LookupError(t *testing.T) {
	l := NewLocator(&movementStub{err: errors.New("boom")})
	sp := &Subprocess{ID: 1, UnitID: 10}

	_, err := l.CurrentLocation(context.Background(), sp)
	require.Error(t, err)
}

func TestSituationStage(t *testing.T) {
	require.Equal(t, 1, SituationCadastroInProgress.Stage())
	require.Equal(t, 1, SituationRevisionCadastroSubmitted.Stage())
	require.Equal(t, 1, SituationNotStarted.Stage())
	require.Equal(t, 2, SituationMapCreated.Stage())
	require.Equal(t, 2, SituationRevisionMapAdjusted.Stage())
	require.Equal(t, 2, SituationSelfAssessmentInProgress.Stage())
}

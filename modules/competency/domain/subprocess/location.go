package subprocess

import "context"

// MovementFinder is the persistence lookup the locator needs: the most
// recent movement for a subprocess (latest timestamp, ties broken by
// highest id), or nil when none exists.
type MovementFinder interface {
	LatestMovement(ctx context.Context, subprocessID int64) (*Movement, error)
}

// Locator derives a subprocess's current location: the destination of its
// latest movement, falling back to the owning unit. Write actions are
// authorized against this location, not the owning unit, because it tracks
// where the subprocess sits in the approval chain.
//
// A Locator memoizes per subprocess id and must be scoped to a single
// authorization pass or unit of work; it is not safe for concurrent use and
// must never be persisted as ground truth.
type Locator struct {
	movements MovementFinder
	memo      map[int64]int64
}

func NewLocator(movements MovementFinder) *Locator {
	return &Locator{movements: movements, memo: make(map[int64]int64)}
}

// CurrentLocation returns the unit currently holding sp for action.
func (l *Locator) CurrentLocation(ctx context.Context, sp *Subprocess) (int64, error) {
	if unitID, ok := l.memo[sp.ID]; ok {
		return unitID, nil
	}

	m, err := l.movements.LatestMovement(ctx, sp.ID)
	if err != nil {
		return 0, err
	}

	unitID := sp.UnitID
	if m != nil && m.DestUnitID != nil {
		unitID = *m.DestUnitID
	}
	l.memo[sp.ID] = unitID
	return unitID, nil
}

// Invalidate drops the memoized location, required after appending a
// movement within the same unit of work.
func (l *Locator) Invalidate(subprocessID int64) {
	delete(l.memo, subprocessID)
}

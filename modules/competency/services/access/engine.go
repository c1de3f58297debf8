package access

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sgc-hq/sgc/modules/competency/domain/org"
	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
)

// Subject is the acting user, passed explicitly to every entry point.
// Ambient resolution happens at the HTTP boundary, never here.
type Subject struct {
	ID     string
	Role   org.Role
	UnitID int64
}

// SubprocessFinder resolves subprocesses for the by-id entry points.
// Implementations must load the owning Process alongside.
type SubprocessFinder interface {
	Find(ctx context.Context, id int64) (*subprocess.Subprocess, error)
	FindByProcessAndUnit(ctx context.Context, processID, unitID int64) (*subprocess.Subprocess, error)
}

// HierarchyProvider supplies the loaded unit forest for one evaluation.
type HierarchyProvider interface {
	Hierarchy(ctx context.Context) (*org.Hierarchy, error)
}

// Engine decides, for a (subject, action, subprocess) triple, whether the
// action is permitted. It fuses three dimensions: active role, lifecycle
// situation and hierarchy position.
//
// Denial is total: a missing subject, subprocess or unit, an unknown action
// name, or a failed lookup all resolve to false. The checks are safe to
// call speculatively, e.g. to decide whether to render a button.
type Engine struct {
	subprocesses SubprocessFinder
	movements    subprocess.MovementFinder
	units        HierarchyProvider
	log          *logrus.Logger
}

func NewEngine(
	subprocesses SubprocessFinder,
	movements subprocess.MovementFinder,
	units HierarchyProvider,
	log *logrus.Logger,
) *Engine {
	return &Engine{
		subprocesses: subprocesses,
		movements:    movements,
		units:        units,
		log:          log,
	}
}

// CanExecute evaluates one action against an already-loaded subprocess.
func (e *Engine) CanExecute(ctx context.Context, subject *Subject, action Action, sp *subprocess.Subprocess) bool {
	if subject == nil || sp == nil {
		return false
	}
	return e.evaluate(ctx, subject, action, sp, subprocess.NewLocator(e.movements))
}

// CanExecuteByID resolves the subprocess by id. Missing ids deny.
func (e *Engine) CanExecuteByID(ctx context.Context, subject *Subject, subprocessID int64, action Action) bool {
	if subject == nil {
		return false
	}
	sp, err := e.subprocesses.Find(ctx, subprocessID)
	if err != nil || sp == nil {
		return false
	}
	return e.CanExecute(ctx, subject, action, sp)
}

// CanExecuteBulk grants only when every id individually authorizes.
// An empty input is vacuously true.
func (e *Engine) CanExecuteBulk(ctx context.Context, subject *Subject, subprocessIDs []int64, action Action) bool {
	if subject == nil {
		return false
	}
	loc := subprocess.NewLocator(e.movements)
	for _, id := range subprocessIDs {
		sp, err := e.subprocesses.Find(ctx, id)
		if err != nil || sp == nil {
			return false
		}
		if !e.evaluate(ctx, subject, action, sp, loc) {
			return false
		}
	}
	return true
}

// CanView is shorthand for the subprocess view action.
func (e *Engine) CanView(ctx context.Context, subject *Subject, subprocessID int64) bool {
	return e.CanExecuteByID(ctx, subject, subprocessID, ActionViewSubprocess)
}

// CanViewProcessUnit resolves the subprocess by (process, unit acronym).
func (e *Engine) CanViewProcessUnit(ctx context.Context, subject *Subject, processID int64, unitAcronym string) bool {
	if subject == nil || unitAcronym == "" {
		return false
	}
	h, err := e.units.Hierarchy(ctx)
	if err != nil {
		return false
	}
	unit, ok := h.UnitByAcronym(unitAcronym)
	if !ok {
		return false
	}
	sp, err := e.subprocesses.FindByProcessAndUnit(ctx, processID, unit.ID)
	if err != nil || sp == nil {
		return false
	}
	return e.CanExecute(ctx, subject, ActionViewSubprocess, sp)
}

func (e *Engine) evaluate(ctx context.Context, subject *Subject, action Action, sp *subprocess.Subprocess, loc *subprocess.Locator) bool {
	if action == ActionVerifyImpacts {
		return e.canVerifyImpacts(ctx, subject, sp, loc)
	}

	r, ok := rules[action]
	if !ok {
		return false
	}

	if _, ok := r.roles[subject.Role]; !ok {
		return false
	}

	// Finalized processes are organization-wide historical record: any
	// allowed role may consult them for import, regardless of situation
	// or hierarchy.
	if action == ActionConsultForImport && sp.Process != nil && sp.Process.Status == subprocess.ProcessFinalized {
		return true
	}

	if _, ok := r.situations[sp.Situation]; !ok {
		return false
	}

	// Administrators read everything; writes still follow the location rule.
	if subject.Role == org.RoleAdmin && !IsWrite(action) {
		return true
	}

	checkUnit := sp.UnitID
	if IsWrite(action) {
		unitID, err := loc.CurrentLocation(ctx, sp)
		if err != nil {
			e.debugDeny(subject, action, sp, "location lookup failed")
			return false
		}
		checkUnit = unitID
	}

	allowed := e.checkHierarchy(ctx, subject, checkUnit, r.hierarchy)
	if !allowed {
		e.debugDeny(subject, action, sp, "hierarchy requirement not met")
	}
	return allowed
}

// canVerifyImpacts governs impact checking during revision processes. Its
// hierarchy semantics differ per role, so it does not fit a single table row.
func (e *Engine) canVerifyImpacts(ctx context.Context, subject *Subject, sp *subprocess.Subprocess, loc *subprocess.Locator) bool {
	if sp.Process == nil || sp.Process.Type != subprocess.ProcessRevision {
		return false
	}

	switch subject.Role {
	case org.RoleAdmin:
		_, ok := impactSituationsAdmin[sp.Situation]
		return ok
	case org.RoleManager:
		if sp.Situation != subprocess.SituationRevisionCadastroSubmitted {
			return false
		}
		location, err := loc.CurrentLocation(ctx, sp)
		if err != nil {
			return false
		}
		h, err := e.units.Hierarchy(ctx)
		if err != nil {
			return false
		}
		return h.IsSameOrDescendant(location, subject.UnitID)
	case org.RoleSupervisor:
		if _, ok := impactSituationsSupervisor[sp.Situation]; !ok {
			return false
		}
		location, err := loc.CurrentLocation(ctx, sp)
		if err != nil {
			return false
		}
		return subject.UnitID == location
	default:
		return false
	}
}

func (e *Engine) checkHierarchy(ctx context.Context, subject *Subject, unitID int64, requirement HierarchyRequirement) bool {
	if requirement == HierarchyNone {
		return true
	}
	if requirement == HierarchySameUnit {
		return subject.UnitID == unitID
	}

	h, err := e.units.Hierarchy(ctx)
	if err != nil {
		return false
	}
	switch requirement {
	case HierarchySameOrDescendant:
		return h.IsSameOrDescendant(unitID, subject.UnitID)
	case HierarchyImmediateSuperior:
		return h.IsImmediateSuperior(subject.UnitID, unitID)
	case HierarchyTitularOfUnit:
		return h.IsResponsibleFor(unitID, subject.ID)
	default:
		return false
	}
}

func (e *Engine) debugDeny(subject *Subject, action Action, sp *subprocess.Subprocess, reason string) {
	if e.log == nil {
		return
	}
	e.log.WithFields(logrus.Fields{
		"action":      action,
		"subject":     subject.ID,
		"role":        subject.Role,
		"active_unit": subject.UnitID,
		"subprocess":  sp.ID,
		"situation":   sp.Situation,
	}).Debug("access denied: " + reason)
}

package access

import (
	"github.com/sgc-hq/sgc/modules/competency/domain/org"
	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
)

// HierarchyRequirement is the relational predicate an action must satisfy
// between the subject's active unit and the subprocess's resolved unit.
type HierarchyRequirement int

const (
	HierarchyNone HierarchyRequirement = iota
	HierarchySameUnit
	HierarchySameOrDescendant
	HierarchyImmediateSuperior
	HierarchyTitularOfUnit
)

// rule is one immutable row of the permission table.
type rule struct {
	roles      map[org.Role]struct{}
	situations map[subprocess.Situation]struct{}
	hierarchy  HierarchyRequirement
}

func roleSet(rs ...org.Role) map[org.Role]struct{} {
	out := make(map[org.Role]struct{}, len(rs))
	for _, r := range rs {
		out[r] = struct{}{}
	}
	return out
}

func situationSet(ss ...subprocess.Situation) map[subprocess.Situation]struct{} {
	out := make(map[subprocess.Situation]struct{}, len(ss))
	for _, s := range ss {
		out[s] = struct{}{}
	}
	return out
}

var (
	anySituation = situationSet(subprocess.All()...)
	allRoles     = roleSet(org.RoleAdmin, org.RoleManager, org.RoleSupervisor, org.RoleStaff)
	adminOnly    = roleSet(org.RoleAdmin)
)

// rules is the static permission table. Evaluation is one generic pass over
// the looked-up row (engine.go); no per-action bespoke code.
var rules = map[Action]rule{
	// CRUD and administration
	ActionListSubprocesses: {adminOnly, anySituation, HierarchyNone},
	ActionViewSubprocess:   {allRoles, anySituation, HierarchySameOrDescendant},
	ActionConsultForImport: {roleSet(org.RoleAdmin, org.RoleManager, org.RoleSupervisor), anySituation, HierarchyNone},
	ActionCreateSubprocess: {adminOnly, anySituation, HierarchyNone},
	ActionEditSubprocess:   {adminOnly, anySituation, HierarchyNone},
	ActionDeleteSubprocess: {adminOnly, anySituation, HierarchyNone},
	ActionChangeDeadline:   {adminOnly, anySituation, HierarchyNone},
	ActionReopenCadastro:   {adminOnly, anySituation, HierarchyNone},
	ActionReopenRevision:   {adminOnly, anySituation, HierarchyNone},
	ActionSendReminder:     {adminOnly, anySituation, HierarchyNone},

	// Cadastro; the generic rows also serve the revision cycle.
	ActionEditCadastro: {
		roleSet(org.RoleSupervisor),
		situationSet(subprocess.SituationNotStarted, subprocess.SituationCadastroInProgress, subprocess.SituationRevisionCadastroInProgress),
		HierarchySameUnit,
	},
	ActionSubmitCadastro: {
		roleSet(org.RoleSupervisor),
		situationSet(subprocess.SituationCadastroInProgress),
		HierarchyTitularOfUnit,
	},
	ActionReturnCadastro: {
		roleSet(org.RoleAdmin, org.RoleManager),
		situationSet(subprocess.SituationCadastroSubmitted, subprocess.SituationRevisionCadastroSubmitted),
		HierarchySameUnit,
	},
	ActionAcceptCadastro: {
		roleSet(org.RoleManager),
		situationSet(subprocess.SituationCadastroSubmitted, subprocess.SituationRevisionCadastroSubmitted),
		HierarchySameUnit,
	},
	ActionHomologateCadastro: {
		adminOnly,
		situationSet(subprocess.SituationCadastroSubmitted, subprocess.SituationRevisionCadastroSubmitted),
		HierarchySameUnit,
	},
	ActionImportActivities: {
		roleSet(org.RoleSupervisor),
		situationSet(subprocess.SituationNotStarted, subprocess.SituationCadastroInProgress, subprocess.SituationRevisionCadastroInProgress),
		HierarchySameUnit,
	},

	// Cadastro revision (revision-specific rows)
	ActionEditRevisionCadastro: {
		roleSet(org.RoleSupervisor),
		situationSet(subprocess.SituationNotStarted, subprocess.SituationRevisionCadastroInProgress),
		HierarchySameUnit,
	},
	ActionSubmitRevisionCadastro: {
		roleSet(org.RoleSupervisor),
		situationSet(subprocess.SituationRevisionCadastroInProgress),
		HierarchyTitularOfUnit,
	},
	ActionReturnRevisionCadastro: {
		roleSet(org.RoleAdmin, org.RoleManager),
		situationSet(subprocess.SituationRevisionCadastroSubmitted),
		HierarchySameUnit,
	},
	ActionAcceptRevisionCadastro: {
		roleSet(org.RoleManager),
		situationSet(subprocess.SituationRevisionCadastroSubmitted),
		HierarchySameUnit,
	},
	ActionHomologateRevisionCadastro: {
		adminOnly,
		situationSet(subprocess.SituationRevisionCadastroSubmitted),
		HierarchySameUnit,
	},

	// Map
	ActionViewMap: {allRoles, anySituation, HierarchySameOrDescendant},
	ActionEditMap: {
		adminOnly,
		situationSet(
			subprocess.SituationNotStarted,
			subprocess.SituationCadastroInProgress,
			subprocess.SituationCadastroHomologated,
			subprocess.SituationMapCreated,
			subprocess.SituationMapWithSuggestions,
			subprocess.SituationRevisionCadastroInProgress,
			subprocess.SituationRevisionCadastroHomologated,
			subprocess.SituationRevisionMapAdjusted,
			subprocess.SituationRevisionMapWithSuggestions,
			subprocess.SituationSelfAssessmentInProgress,
		),
		HierarchySameUnit,
	},
	ActionSubmitMap: {
		adminOnly,
		situationSet(
			subprocess.SituationCadastroHomologated,
			subprocess.SituationMapCreated,
			subprocess.SituationMapWithSuggestions,
			subprocess.SituationRevisionCadastroHomologated,
			subprocess.SituationRevisionMapAdjusted,
			subprocess.SituationRevisionMapWithSuggestions,
		),
		HierarchySameUnit,
	},
	ActionPresentSuggestions: {
		roleSet(org.RoleSupervisor),
		situationSet(subprocess.SituationMapSubmitted, subprocess.SituationRevisionMapSubmitted),
		HierarchySameUnit,
	},
	ActionValidateMap: {
		roleSet(org.RoleSupervisor),
		situationSet(subprocess.SituationMapSubmitted, subprocess.SituationRevisionMapSubmitted),
		HierarchySameUnit,
	},
	ActionReturnMap: {
		roleSet(org.RoleAdmin, org.RoleManager),
		situationSet(subprocess.SituationMapWithSuggestions, subprocess.SituationMapValidated, subprocess.SituationRevisionMapWithSuggestions, subprocess.SituationRevisionMapValidated),
		HierarchySameUnit,
	},
	ActionAcceptMap: {
		roleSet(org.RoleManager),
		situationSet(subprocess.SituationMapWithSuggestions, subprocess.SituationMapValidated, subprocess.SituationRevisionMapWithSuggestions, subprocess.SituationRevisionMapValidated),
		HierarchySameUnit,
	},
	ActionHomologateMap: {
		adminOnly,
		situationSet(subprocess.SituationMapWithSuggestions, subprocess.SituationMapValidated, subprocess.SituationRevisionMapWithSuggestions, subprocess.SituationRevisionMapValidated),
		HierarchySameUnit,
	},
	ActionAdjustMap: {
		adminOnly,
		situationSet(subprocess.SituationRevisionCadastroHomologated, subprocess.SituationRevisionMapAdjusted),
		HierarchySameUnit,
	},

	// Diagnostics
	ActionPerformSelfAssessment: {
		roleSet(org.RoleAdmin, org.RoleManager, org.RoleSupervisor),
		situationSet(subprocess.SituationSelfAssessmentInProgress),
		HierarchySameUnit,
	},
	ActionViewDiagnostic: {allRoles, anySituation, HierarchySameOrDescendant},
}

// Situations where impact verification is possible, per role. The rule's
// hierarchy semantics differ per role, so it stays out of the generic table.
var (
	impactSituationsAdmin = situationSet(
		subprocess.SituationRevisionCadastroSubmitted,
		subprocess.SituationRevisionCadastroHomologated,
		subprocess.SituationRevisionMapAdjusted,
	)
	impactSituationsSupervisor = situationSet(
		subprocess.SituationNotStarted,
		subprocess.SituationRevisionCadastroInProgress,
	)
)

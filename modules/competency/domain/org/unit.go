package org

// Role is the profile a user operates under. A person may hold several,
// but exactly one is active per session.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "GESTOR"
	RoleSupervisor Role = "CHEFE"
	RoleStaff      Role = "SERVIDOR"
)

// UnitType classifies a unit's position in the competency workflow.
// Operational-like units author their own cadastro; intermediate units
// only oversee subordinates.
type UnitType string

const (
	UnitTypeOperational      UnitType = "OPERACIONAL"
	UnitTypeIntermediate     UnitType = "INTERMEDIARIA"
	UnitTypeInteroperational UnitType = "INTEROPERACIONAL"
	UnitTypeNoTeam           UnitType = "SEM_EQUIPE"
	UnitTypeRoot             UnitType = "RAIZ"
)

// EligibleForMapping reports whether units of this type get their own
// subprocess when a process starts.
func (t UnitType) EligibleForMapping() bool {
	return t == UnitTypeOperational || t == UnitTypeInteroperational || t == UnitTypeRoot
}

// Oversees reports whether units of this type supervise subordinate units.
func (t UnitType) Oversees() bool {
	return t == UnitTypeIntermediate || t == UnitTypeInteroperational
}

// Unit is one node of the organizational forest. Units are created and
// retired by the external directory sync; this core only reads them.
type Unit struct {
	ID      int64
	Acronym string
	Name    string
	Type    UnitType
	// ParentID is nil for roots.
	ParentID *int64
	Active   bool
	// ResponsibleID is the current titular, or a temporary delegate the
	// directory has already resolved into this field.
	ResponsibleID string
}

package subprocess

import "time"

// ProcessType distinguishes the three workflow campaigns.
type ProcessType string

const (
	ProcessMapping    ProcessType = "MAPEAMENTO"
	ProcessRevision   ProcessType = "REVISAO"
	ProcessDiagnostic ProcessType = "DIAGNOSTICO"
)

type ProcessStatus string

const (
	ProcessCreated    ProcessStatus = "CRIADO"
	ProcessInProgress ProcessStatus = "EM_ANDAMENTO"
	ProcessFinalized  ProcessStatus = "FINALIZADO"
)

// Process is the top-level campaign that spawns one subprocess per
// participating unit.
type Process struct {
	ID          int64
	Description string
	Type        ProcessType
	Status      ProcessStatus
	Deadline    *time.Time
}

// Situation is the named lifecycle state of a subprocess. Wire values match
// the organizational directory and the frontend contract.
type Situation string

const (
	SituationNotStarted Situation = "NAO_INICIADO"

	SituationCadastroInProgress  Situation = "MAPEAMENTO_CADASTRO_EM_ANDAMENTO"
	SituationCadastroSubmitted   Situation = "MAPEAMENTO_CADASTRO_DISPONIBILIZADO"
	SituationCadastroHomologated Situation = "MAPEAMENTO_CADASTRO_HOMOLOGADO"

	SituationMapCreated         Situation = "MAPEAMENTO_MAPA_CRIADO"
	SituationMapSubmitted       Situation = "MAPEAMENTO_MAPA_DISPONIBILIZADO"
	SituationMapWithSuggestions Situation = "MAPEAMENTO_MAPA_COM_SUGESTOES"
	SituationMapValidated       Situation = "MAPEAMENTO_MAPA_VALIDADO"
	SituationMapHomologated     Situation = "MAPEAMENTO_MAPA_HOMOLOGADO"

	SituationRevisionCadastroInProgress  Situation = "REVISAO_CADASTRO_EM_ANDAMENTO"
	SituationRevisionCadastroSubmitted   Situation = "REVISAO_CADASTRO_DISPONIBILIZADA"
	SituationRevisionCadastroHomologated Situation = "REVISAO_CADASTRO_HOMOLOGADA"

	SituationRevisionMapAdjusted        Situation = "REVISAO_MAPA_AJUSTADO"
	SituationRevisionMapSubmitted       Situation = "REVISAO_MAPA_DISPONIBILIZADO"
	SituationRevisionMapWithSuggestions Situation = "REVISAO_MAPA_COM_SUGESTOES"
	SituationRevisionMapValidated       Situation = "REVISAO_MAPA_VALIDADO"
	SituationRevisionMapHomologated     Situation = "REVISAO_MAPA_HOMOLOGADO"

	SituationSelfAssessmentInProgress Situation = "DIAGNOSTICO_AUTOAVALIACAO_EM_ANDAMENTO"
	SituationSelfAssessmentConcluded  Situation = "DIAGNOSTICO_AUTOAVALIACAO_CONCLUIDA"
)

// All lists every situation, used by rules that allow any state.
func All() []Situation {
	return []Situation{
		SituationNotStarted,
		SituationCadastroInProgress,
		SituationCadastroSubmitted,
		SituationCadastroHomologated,
		SituationMapCreated,
		SituationMapSubmitted,
		SituationMapWithSuggestions,
		SituationMapValidated,
		SituationMapHomologated,
		SituationRevisionCadastroInProgress,
		SituationRevisionCadastroSubmitted,
		SituationRevisionCadastroHomologated,
		SituationRevisionMapAdjusted,
		SituationRevisionMapSubmitted,
		SituationRevisionMapWithSuggestions,
		SituationRevisionMapValidated,
		SituationRevisionMapHomologated,
		SituationSelfAssessmentInProgress,
		SituationSelfAssessmentConcluded,
	}
}

// Stage reports which deadline stage the situation belongs to: 1 while the
// unit is authoring its cadastro, 2 once the work moved to the map.
func (s Situation) Stage() int {
	switch s {
	case SituationNotStarted,
		SituationCadastroInProgress, SituationCadastroSubmitted, SituationCadastroHomologated,
		SituationRevisionCadastroInProgress, SituationRevisionCadastroSubmitted, SituationRevisionCadastroHomologated:
		return 1
	default:
		return 2
	}
}

// Subprocess is one unit's participation in a process. Movements are kept
// out of the struct; the current location is derived on demand via Locator.
type Subprocess struct {
	ID        int64
	ProcessID int64
	// UnitID is the owning unit; distinct from the derived current location.
	UnitID    int64
	Situation Situation
	MapID     *int64

	StageOneDeadline *time.Time
	StageTwoDeadline *time.Time
	StageOneDoneAt   *time.Time
	StageTwoDoneAt   *time.Time

	// Process is the owning aggregate, loaded alongside the subprocess.
	Process *Process
}

// Movement is an immutable audit record of a subprocess hand-off.
// Appended only, never mutated.
type Movement struct {
	ID           int64
	SubprocessID int64
	OriginUnitID *int64
	DestUnitID   *int64
	At           time.Time
	Description  string
}

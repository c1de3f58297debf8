// Package transition holds the static catalog of workflow transition kinds.
// Each entry carries the audit-trail text and drives which notifications the
// transition triggers downstream.
package transition

import "fmt"

type Kind string

const (
	ProcessStarted Kind = "PROCESSO_INICIADO"

	CadastroSubmitted   Kind = "CADASTRO_DISPONIBILIZADO"
	CadastroReturned    Kind = "CADASTRO_DEVOLVIDO"
	CadastroAccepted    Kind = "CADASTRO_ACEITO"
	CadastroHomologated Kind = "CADASTRO_HOMOLOGADO"
	CadastroReopened    Kind = "CADASTRO_REABERTO"

	RevisionCadastroSubmitted   Kind = "REVISAO_CADASTRO_DISPONIBILIZADA"
	RevisionCadastroReturned    Kind = "REVISAO_CADASTRO_DEVOLVIDA"
	RevisionCadastroAccepted    Kind = "REVISAO_CADASTRO_ACEITA"
	RevisionCadastroHomologated Kind = "REVISAO_CADASTRO_HOMOLOGADA"
	RevisionCadastroReopened    Kind = "REVISAO_CADASTRO_REABERTA"

	MapCreated              Kind = "MAPA_CRIADO"
	MapSubmitted            Kind = "MAPA_DISPONIBILIZADO"
	MapSuggestionsPresented Kind = "MAPA_SUGESTOES_APRESENTADAS"
	MapValidated            Kind = "MAPA_VALIDADO"
	MapValidationReturned   Kind = "MAPA_VALIDACAO_DEVOLVIDA"
	MapValidationAccepted   Kind = "MAPA_VALIDACAO_ACEITA"
	MapHomologated          Kind = "MAPA_HOMOLOGADO"
	MapAdjusted             Kind = "MAPA_AJUSTADO"

	SelfAssessmentConcluded Kind = "AUTOAVALIACAO_CONCLUIDA"
	DeadlineChanged         Kind = "DATA_LIMITE_ALTERADA"
	DeadlineReminder        Kind = "LEMBRETE_PRAZO"
)

// Descriptor is the immutable metadata of one transition kind.
type Descriptor struct {
	// Description goes into the movement's audit-trail text and email
	// subjects ("SGC: <description>").
	Description string
	// AlertTemplate carries exactly one %s placeholder for the acting
	// unit's acronym. Empty means the transition raises no alert;
	// homologations end a review cycle and intentionally stay silent.
	AlertTemplate string
	// EmailTemplate is the identifier of the outbound mail template.
	// Empty means no email.
	EmailTemplate string
	// NotifyAncestors extends delivery to the whole superior chain.
	NotifyAncestors bool
}

var catalog = map[Kind]Descriptor{
	ProcessStarted: {
		Description:   "Processo iniciado",
		AlertTemplate: "Início do processo na unidade %s",
		EmailTemplate: "processo-iniciado",
	},

	CadastroSubmitted: {
		Description:     "Cadastro de atividades disponibilizado",
		AlertTemplate:   "Cadastro de atividades disponibilizado pela unidade %s",
		EmailTemplate:   "cadastro-disponibilizado",
		NotifyAncestors: true,
	},
	CadastroReturned: {
		Description:   "Cadastro de atividades devolvido para ajustes",
		AlertTemplate: "Cadastro de atividades devolvido para a unidade %s",
		EmailTemplate: "cadastro-devolvido",
	},
	CadastroAccepted: {
		Description:   "Cadastro de atividades aceito",
		AlertTemplate: "Cadastro de atividades aceito pela unidade %s",
		EmailTemplate: "cadastro-aceito",
	},
	CadastroHomologated: {
		Description: "Cadastro de atividades homologado",
	},
	CadastroReopened: {
		Description:     "Cadastro de atividades reaberto",
		AlertTemplate:   "Cadastro de atividades da unidade %s reaberto",
		EmailTemplate:   "cadastro-reaberto",
		NotifyAncestors: true,
	},

	RevisionCadastroSubmitted: {
		Description:     "Revisão do cadastro de atividades disponibilizada",
		AlertTemplate:   "Revisão do cadastro disponibilizada pela unidade %s",
		EmailTemplate:   "revisao-cadastro-disponibilizada",
		NotifyAncestors: true,
	},
	RevisionCadastroReturned: {
		Description:   "Revisão do cadastro devolvida para ajustes",
		AlertTemplate: "Revisão do cadastro devolvida para a unidade %s",
		EmailTemplate: "revisao-cadastro-devolvida",
	},
	RevisionCadastroAccepted: {
		Description:   "Revisão do cadastro aceita",
		AlertTemplate: "Revisão do cadastro aceita pela unidade %s",
		EmailTemplate: "revisao-cadastro-aceita",
	},
	RevisionCadastroHomologated: {
		Description: "Revisão do cadastro homologada",
	},
	RevisionCadastroReopened: {
		Description:     "Revisão do cadastro reaberta",
		AlertTemplate:   "Revisão do cadastro da unidade %s reaberta",
		EmailTemplate:   "revisao-cadastro-reaberta",
		NotifyAncestors: true,
	},

	MapCreated: {
		Description: "Mapa de competências criado",
	},
	MapSubmitted: {
		Description:     "Mapa de competências disponibilizado",
		AlertTemplate:   "Mapa de competências disponibilizado para validação da unidade %s",
		EmailTemplate:   "mapa-disponibilizado",
		NotifyAncestors: true,
	},
	MapSuggestionsPresented: {
		Description:   "Sugestões apresentadas para o mapa de competências",
		AlertTemplate: "Sugestões apresentadas pela unidade %s",
		EmailTemplate: "mapa-sugestoes",
	},
	MapValidated: {
		Description:   "Mapa de competências validado",
		AlertTemplate: "Mapa de competências validado pela unidade %s",
		EmailTemplate: "mapa-validado",
	},
	MapValidationReturned: {
		Description:   "Validação do mapa devolvida para ajustes",
		AlertTemplate: "Validação do mapa devolvida para a unidade %s",
		EmailTemplate: "mapa-validacao-devolvida",
	},
	MapValidationAccepted: {
		Description:   "Validação do mapa aceita",
		AlertTemplate: "Validação do mapa aceita pela unidade %s",
		EmailTemplate: "mapa-validacao-aceita",
	},
	MapHomologated: {
		Description: "Mapa de competências homologado",
	},
	MapAdjusted: {
		Description:   "Mapa de competências ajustado",
		AlertTemplate: "Mapa de competências da unidade %s ajustado",
	},

	SelfAssessmentConcluded: {
		Description:   "Autoavaliação concluída",
		AlertTemplate: "Autoavaliação concluída pela unidade %s",
	},
	DeadlineChanged: {
		Description:   "Data limite alterada",
		AlertTemplate: "Data limite alterada para a unidade %s",
		EmailTemplate: "data-limite-alterada",
	},
	DeadlineReminder: {
		Description:   "Lembrete de prazo enviado",
		AlertTemplate: "Lembrete de prazo para a unidade %s",
		EmailTemplate: "lembrete-prazo",
	},
}

// Get returns the descriptor for kind. Unknown kinds report false.
func Get(kind Kind) (Descriptor, bool) {
	d, ok := catalog[kind]
	return d, ok
}

// Description returns the audit-trail text, or "" for unknown kinds.
func (k Kind) Description() string {
	return catalog[k].Description
}

func GeneratesAlert(kind Kind) bool {
	return catalog[kind].AlertTemplate != ""
}

func SendsEmail(kind Kind) bool {
	return catalog[kind].EmailTemplate != ""
}

func NotifiesAncestors(kind Kind) bool {
	return catalog[kind].NotifyAncestors
}

// FormatAlert substitutes the acting unit's acronym into the alert template.
// Returns "" for kinds without an alert.
func FormatAlert(kind Kind, unitAcronym string) string {
	d := catalog[kind]
	if d.AlertTemplate == "" {
		return ""
	}
	return fmt.Sprintf(d.AlertTemplate, unitAcronym)
}

// Kinds lists every catalog entry.
func Kinds() []Kind {
	out := make([]Kind, 0, len(catalog))
	for k := range catalog {
		out = append(out, k)
	}
	return out
}

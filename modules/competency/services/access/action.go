package access

// Action identifies one operation subject to authorization. Wire names are
// stable and may arrive from untrusted route parameters; unknown names
// always resolve to deny.
type Action string

const (
	// CRUD and administration
	ActionListSubprocesses   Action = "LISTAR_SUBPROCESSOS"
	ActionViewSubprocess     Action = "VISUALIZAR_SUBPROCESSO"
	ActionConsultForImport   Action = "CONSULTAR_PARA_IMPORTACAO"
	ActionCreateSubprocess   Action = "CRIAR_SUBPROCESSO"
	ActionEditSubprocess     Action = "EDITAR_SUBPROCESSO"
	ActionDeleteSubprocess   Action = "EXCLUIR_SUBPROCESSO"
	ActionChangeDeadline     Action = "ALTERAR_DATA_LIMITE"
	ActionReopenCadastro     Action = "REABRIR_CADASTRO"
	ActionReopenRevision     Action = "REABRIR_REVISAO"
	ActionSendReminder       Action = "ENVIAR_LEMBRETE_PROCESSO"

	// Cadastro (shared rows also cover the revision cycle)
	ActionEditCadastro       Action = "EDITAR_CADASTRO"
	ActionSubmitCadastro     Action = "DISPONIBILIZAR_CADASTRO"
	ActionReturnCadastro     Action = "DEVOLVER_CADASTRO"
	ActionAcceptCadastro     Action = "ACEITAR_CADASTRO"
	ActionHomologateCadastro Action = "HOMOLOGAR_CADASTRO"
	ActionImportActivities   Action = "IMPORTAR_ATIVIDADES"

	// Cadastro revision (revision-specific rows)
	ActionEditRevisionCadastro       Action = "EDITAR_REVISAO_CADASTRO"
	ActionSubmitRevisionCadastro     Action = "DISPONIBILIZAR_REVISAO_CADASTRO"
	ActionReturnRevisionCadastro     Action = "DEVOLVER_REVISAO_CADASTRO"
	ActionAcceptRevisionCadastro     Action = "ACEITAR_REVISAO_CADASTRO"
	ActionHomologateRevisionCadastro Action = "HOMOLOGAR_REVISAO_CADASTRO"

	// Map
	ActionViewMap            Action = "VISUALIZAR_MAPA"
	ActionEditMap            Action = "EDITAR_MAPA"
	ActionSubmitMap          Action = "DISPONIBILIZAR_MAPA"
	ActionPresentSuggestions Action = "APRESENTAR_SUGESTOES"
	ActionValidateMap        Action = "VALIDAR_MAPA"
	ActionReturnMap          Action = "DEVOLVER_MAPA"
	ActionAcceptMap          Action = "ACEITAR_MAPA"
	ActionHomologateMap      Action = "HOMOLOGAR_MAPA"
	ActionAdjustMap          Action = "AJUSTAR_MAPA"

	// Diagnostics
	ActionPerformSelfAssessment Action = "REALIZAR_AUTOAVALIACAO"
	ActionViewDiagnostic        Action = "VISUALIZAR_DIAGNOSTICO"

	// Revision impact checking; evaluated by a dedicated rule, not the table.
	ActionVerifyImpacts Action = "VERIFICAR_IMPACTOS"

	// Process-level actions (no subprocess target)
	ActionViewProcess            Action = "VISUALIZAR_PROCESSO"
	ActionBulkHomologateCadastro Action = "HOMOLOGAR_CADASTRO_EM_BLOCO"
	ActionBulkHomologateMap      Action = "HOMOLOGAR_MAPA_EM_BLOCO"
	ActionBulkAcceptCadastro     Action = "ACEITAR_CADASTRO_EM_BLOCO"
	ActionBulkSubmitMap          Action = "DISPONIBILIZAR_MAPA_EM_BLOCO"
)

// writeActions mutate subprocess state; their hierarchy requirement is
// checked against the current location instead of the owning unit, and they
// never benefit from the ADMIN read bypass.
var writeActions = map[Action]struct{}{
	ActionEditCadastro:       {},
	ActionSubmitCadastro:     {},
	ActionReturnCadastro:     {},
	ActionAcceptCadastro:     {},
	ActionHomologateCadastro: {},

	ActionEditRevisionCadastro:       {},
	ActionSubmitRevisionCadastro:     {},
	ActionReturnRevisionCadastro:     {},
	ActionAcceptRevisionCadastro:     {},
	ActionHomologateRevisionCadastro: {},

	ActionEditMap:            {},
	ActionSubmitMap:          {},
	ActionPresentSuggestions: {},
	ActionValidateMap:        {},
	ActionReturnMap:          {},
	ActionAcceptMap:          {},
	ActionHomologateMap:      {},
	ActionAdjustMap:          {},

	ActionPerformSelfAssessment: {},
	ActionImportActivities:      {},
}

// IsWrite reports whether the action belongs to the fixed write set.
func IsWrite(action Action) bool {
	_, ok := writeActions[action]
	return ok
}

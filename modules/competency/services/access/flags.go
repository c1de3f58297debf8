package access

import (
	"context"

	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
)

// PermissionFlags is the flat structure the UI consumes to enable or hide
// controls. JSON field names follow the established frontend contract.
type PermissionFlags struct {
	CanEditCadastro       bool `json:"podeEditarCadastro"`
	CanSubmitCadastro     bool `json:"podeDisponibilizarCadastro"`
	CanReturnCadastro     bool `json:"podeDevolverCadastro"`
	CanAcceptCadastro     bool `json:"podeAceitarCadastro"`
	CanHomologateCadastro bool `json:"podeHomologarCadastro"`

	CanEditMap            bool `json:"podeEditarMapa"`
	CanSubmitMap          bool `json:"podeDisponibilizarMapa"`
	CanValidateMap        bool `json:"podeValidarMapa"`
	CanPresentSuggestions bool `json:"podeApresentarSugestoes"`
	CanReturnMap          bool `json:"podeDevolverMapa"`
	CanAcceptMap          bool `json:"podeAceitarMapa"`
	CanHomologateMap      bool `json:"podeHomologarMapa"`
	CanAdjustMap          bool `json:"podeAjustarMapa"`

	CanViewImpacts    bool `json:"podeVisualizarImpacto"`
	CanChangeDeadline bool `json:"podeAlterarDataLimite"`
	CanReopenCadastro bool `json:"podeReabrirCadastro"`
	CanReopenRevision bool `json:"podeReabrirRevisao"`
	CanSendReminder   bool `json:"podeEnviarLembrete"`
}

// UIPermissions evaluates every UI-relevant action at once. The cadastro
// pairs OR the plain and revision variants because the UI presents one
// unified control regardless of which cycle the process is in. All
// evaluations share one location memo, scoped to this call.
func (e *Engine) UIPermissions(ctx context.Context, subject *Subject, sp *subprocess.Subprocess) PermissionFlags {
	if subject == nil || sp == nil {
		return PermissionFlags{}
	}

	loc := subprocess.NewLocator(e.movements)
	can := func(action Action) bool {
		return e.evaluate(ctx, subject, action, sp, loc)
	}

	return PermissionFlags{
		CanEditCadastro:       can(ActionEditCadastro) || can(ActionEditRevisionCadastro),
		CanSubmitCadastro:     can(ActionSubmitCadastro) || can(ActionSubmitRevisionCadastro),
		CanReturnCadastro:     can(ActionReturnCadastro) || can(ActionReturnRevisionCadastro),
		CanAcceptCadastro:     can(ActionAcceptCadastro) || can(ActionAcceptRevisionCadastro),
		CanHomologateCadastro: can(ActionHomologateCadastro) || can(ActionHomologateRevisionCadastro),

		CanEditMap:            can(ActionEditMap),
		CanSubmitMap:          can(ActionSubmitMap),
		CanValidateMap:        can(ActionValidateMap),
		CanPresentSuggestions: can(ActionPresentSuggestions),
		CanReturnMap:          can(ActionReturnMap),
		CanAcceptMap:          can(ActionAcceptMap),
		CanHomologateMap:      can(ActionHomologateMap),
		CanAdjustMap:          can(ActionAdjustMap),

		CanViewImpacts:    can(ActionVerifyImpacts),
		CanChangeDeadline: can(ActionChangeDeadline),
		CanReopenCadastro: can(ActionReopenCadastro),
		CanReopenRevision: can(ActionReopenRevision),
		CanSendReminder:   can(ActionSendReminder),
	}
}

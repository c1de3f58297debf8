package workflow

import "github.com/sgc-hq/sgc/pkg/serrors"

var (
	ErrNotFound   = serrors.NewError("workflow.not_found", "subprocesso não encontrado", "")
	ErrForbidden  = serrors.NewError("workflow.forbidden", "ação não permitida para o perfil ativo", "")
	ErrConflict   = serrors.NewError("workflow.conflict", "situação do subprocesso não permite a ação", "")
	ErrValidation = serrors.NewError("workflow.validation", "dados inválidos para a operação", "")
)

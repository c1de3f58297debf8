package access

import (
	"github.com/sgc-hq/sgc/modules/competency/domain/org"
	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
)

// processBulkActions are the batch operations managers and supervisors may
// trigger from the process screen; each individual target still goes
// through CanExecuteBulk.
var processBulkActions = map[Action]struct{}{
	ActionViewProcess:            {},
	ActionBulkHomologateCadastro: {},
	ActionBulkHomologateMap:      {},
	ActionBulkAcceptCadastro:     {},
	ActionBulkSubmitMap:          {},
}

// CanExecuteProcess governs process-level actions. Finalized processes are
// read-only history: only viewing remains.
func (e *Engine) CanExecuteProcess(subject *Subject, proc *subprocess.Process, action Action) bool {
	if subject == nil {
		return false
	}
	if proc != nil && proc.Status == subprocess.ProcessFinalized {
		return action == ActionViewProcess
	}

	switch subject.Role {
	case org.RoleAdmin:
		return true
	case org.RoleManager, org.RoleSupervisor:
		_, ok := processBulkActions[action]
		return ok
	default:
		return false
	}
}

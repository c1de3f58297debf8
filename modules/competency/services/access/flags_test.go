package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sgc-hq/sgc/modules/competency/domain/org"
	"github.com/sgc-hq/sgc/modules/competency/domain/subprocess"
)

func TestUIPermissions_NilInputsYieldZero(t *testing.T) {
	f := newFixture()
	sp := f.addSubprocess(1, 4, subprocess.SituationCadastroInProgress, mappingProcess())

	require.Equal(t, PermissionFlags{}, f.engine().UIPermissions(context.Background(), nil, sp))
	require.Equal(t, PermissionFlags{}, f.engine().UIPermissions(context.Background(), supervisor(4), nil))
}

func TestUIPermissions_SupervisorDuringCadastro(t *testing.T) {
	f := newFixture()
	sp := f.addSubprocess(1, 4, subprocess.SituationCadastroInProgress, mappingProcess())

	flags := f.engine().UIPermissions(context.Background(), supervisor(4), sp)

	require.True(t, flags.CanEditCadastro)
	require.True(t, flags.CanSubmitCadastro)
	require.False(t, flags.CanReturnCadastro)
	require.False(t, flags.CanAcceptCadastro)
	require.False(t, flags.CanHomologateCadastro)
	require.False(t, flags.CanEditMap)
	require.False(t, flags.CanChangeDeadline)
	require.False(t, flags.CanSendReminder)
}

func TestUIPermissions_CadastroFlagsCoverRevisionCycle(t *testing.T) {
	f := newFixture()
	sp := f.addSubprocess(1, 4, subprocess.SituationRevisionCadastroSubmitted, revisionProcess())

	flags := f.engine().UIPermissions(context.Background(), manager(4), sp)

	// The plain and revision rows both feed the single UI flag.
	require.True(t, flags.CanAcceptCadastro)
	require.True(t, flags.CanReturnCadastro)
	require.False(t, flags.CanEditCadastro)
	require.True(t, flags.CanViewImpacts)
}

func TestUIPermissions_AdminAdministrativeFlags(t *testing.T) {
	f := newFixture()
	sp := f.addSubprocess(1, 4, subprocess.SituationCadastroSubmitted, mappingProcess())

	flags := f.engine().UIPermissions(context.Background(), admin(), sp)

	require.True(t, flags.CanChangeDeadline)
	require.True(t, flags.CanReopenCadastro)
	require.True(t, flags.CanReopenRevision)
	require.True(t, flags.CanSendReminder)
	// Homologation is a write: the subprocess sits at unit 4, not unit 1.
	require.False(t, flags.CanHomologateCadastro)
}

func TestCanExecuteProcess_FinalizedIsViewOnly(t *testing.T) {
	f := newFixture()
	proc := &subprocess.Process{ID: 1, Status: subprocess.ProcessFinalized}
	e := f.engine()

	require.True(t, e.CanExecuteProcess(admin(), proc, ActionViewProcess))
	require.False(t, e.CanExecuteProcess(admin(), proc, ActionBulkHomologateCadastro))
	require.True(t, e.CanExecuteProcess(manager(2), proc, ActionViewProcess))
	require.False(t, e.CanExecuteProcess(manager(2), proc, ActionBulkAcceptCadastro))
}

func TestCanExecuteProcess_RoleMatrix(t *testing.T) {
	f := newFixture()
	proc := &subprocess.Process{ID: 1, Status: subprocess.ProcessInProgress}
	e := f.engine()

	require.True(t, e.CanExecuteProcess(admin(), proc, ActionDeleteSubprocess))

	for _, action := range []Action{
		ActionViewProcess,
		ActionBulkHomologateCadastro,
		ActionBulkHomologateMap,
		ActionBulkAcceptCadastro,
		ActionBulkSubmitMap,
	} {
		require.True(t, e.CanExecuteProcess(manager(2), proc, action), "manager %s", action)
		require.True(t, e.CanExecuteProcess(supervisor(4), proc, action), "supervisor %s", action)
	}
	require.False(t, e.CanExecuteProcess(manager(2), proc, ActionDeleteSubprocess))

	staff := &Subject{ID: "zoe", Role: org.RoleStaff, UnitID: 4}
	require.False(t, e.CanExecuteProcess(staff, proc, ActionViewProcess))
	require.False(t, e.CanExecuteProcess(nil, proc, ActionViewProcess))
}

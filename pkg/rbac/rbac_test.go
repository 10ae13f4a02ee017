package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownRole(t *testing.T) {
	for _, role := range []string{RoleGov, RoleProducer, RoleAuditor, RoleBank, RoleUser} {
		assert.True(t, KnownRole(role), role)
	}
	assert.False(t, KnownRole("admin"))
	assert.False(t, KnownRole(""))
}

func TestRolePermissionMatrix(t *testing.T) {
	// gov owns the program lifecycle and release decisions
	assert.True(t, HasPermission(RoleGov, PermissionCreateProgram))
	assert.True(t, HasPermission(RoleGov, PermissionApproveProject))
	assert.True(t, HasPermission(RoleGov, PermissionTriggerRelease))
	assert.True(t, HasPermission(RoleGov, PermissionClawback))
	assert.False(t, HasPermission(RoleGov, PermissionSubmitAttestation))
	assert.False(t, HasPermission(RoleGov, PermissionBankApprove))

	// producers only apply
	assert.True(t, HasPermission(RoleProducer, PermissionApplyProject))
	assert.False(t, HasPermission(RoleProducer, PermissionCreateProgram))

	// auditors attest, nothing else
	assert.True(t, HasPermission(RoleAuditor, PermissionSubmitAttestation))
	assert.False(t, HasPermission(RoleAuditor, PermissionTriggerRelease))

	// bank settles queued disbursements
	assert.True(t, HasPermission(RoleBank, PermissionBankApprove))
	assert.False(t, HasPermission(RoleBank, PermissionApproveProject))

	// default role has no write permissions at all
	for _, perm := range []string{
		PermissionCreateProgram, PermissionApplyProject,
		PermissionSubmitAttestation, PermissionBankApprove,
	} {
		assert.False(t, HasPermission(RoleUser, perm), perm)
	}
}

func TestCheckPermission(t *testing.T) {
	require.NoError(t, CheckPermission(RoleGov, PermissionCreateProgram))

	err := CheckPermission(RoleProducer, PermissionCreateProgram)
	require.Error(t, err)

	var denied *PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, RoleProducer, denied.Role)
	assert.Equal(t, PermissionCreateProgram, denied.Permission)
}

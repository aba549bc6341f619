// AngelaMos | 2026
// guards_test.go

package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/commerce-api/internal/core"
)

func TestMutationGuardChainOrder(t *testing.T) {
	require.Len(t, MutationGuards, 3)
	assert.Equal(t, "protected-role", MutationGuards[0].Name)
	assert.Equal(t, "self-mutation", MutationGuards[1].Name)
	assert.Equal(t, "peer-tier", MutationGuards[2].Name)
}

func TestProtectedRoleGuardWinsOverSelf(t *testing.T) {
	// the target is both protected and the caller itself; the
	// protected-role rejection must be the one reported
	admin := Subject{ID: "u1", RoleName: RoleAdmin}

	err := CheckPermissionMutation(admin, admin)

	require.Error(t, err)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(
		t,
		"permissions of a protected role cannot be modified",
		appErr.Message,
	)
}

func TestSelfMutationGuard(t *testing.T) {
	caller := Subject{ID: "u1", RoleName: RoleAdmin}
	target := Subject{ID: "u1", RoleName: RoleCustomer}

	err := CheckPermissionMutation(caller, target)

	require.Error(t, err)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "cannot modify your own permissions", appErr.Message)
}

func TestPeerTierGuard(t *testing.T) {
	caller := Subject{ID: "u1", RoleName: RoleCustomer}
	target := Subject{ID: "u2", RoleName: "SUPPORT"}

	err := CheckPermissionMutation(caller, target)

	require.Error(t, err)
	appErr, ok := core.AsAppError(err)
	require.True(t, ok)
	assert.Equal(
		t,
		"cannot modify permissions of a peer role",
		appErr.Message,
	)
}

func TestMutationAllowedDownTier(t *testing.T) {
	caller := Subject{ID: "u1", RoleName: RoleAdmin}
	target := Subject{ID: "u2", RoleName: RoleCustomer}

	assert.NoError(t, CheckPermissionMutation(caller, target))
}

func TestEveryGuardRejectionIsForbidden(t *testing.T) {
	cases := []struct {
		name   string
		caller Subject
		target Subject
	}{
		{
			"protected target",
			Subject{ID: "u1", RoleName: RoleAdmin},
			Subject{ID: "u2", RoleName: RoleManager},
		},
		{
			"self",
			Subject{ID: "u1", RoleName: RoleAdmin},
			Subject{ID: "u1", RoleName: RoleCustomer},
		},
		{
			"peer",
			Subject{ID: "u1", RoleName: RoleCustomer},
			Subject{ID: "u2", RoleName: RoleDeliveryAgent},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckPermissionMutation(tc.caller, tc.target)
			assert.ErrorIs(t, err, core.ErrForbidden)
		})
	}
}

func TestRoleReassignmentGuard(t *testing.T) {
	admin := Subject{ID: "u1", RoleName: RoleAdmin}
	manager := Subject{ID: "u2", RoleName: RoleManager}
	customer := Subject{ID: "u3", RoleName: RoleCustomer}

	// admin outranks manager
	assert.NoError(t, CheckRoleReassignment(admin, manager))

	// manager cannot move a fellow manager off a protected role
	peer := Subject{ID: "u4", RoleName: RoleManager}
	err := CheckRoleReassignment(manager, peer)
	assert.ErrorIs(t, err, core.ErrForbidden)

	// nobody outranks admin
	err = CheckRoleReassignment(admin, Subject{ID: "u5", RoleName: RoleAdmin})
	assert.ErrorIs(t, err, core.ErrForbidden)

	// unprotected targets move freely
	assert.NoError(t, CheckRoleReassignment(manager, customer))
}

// AngelaMos | 2026
// matrix_test.go

package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/commerce-api/internal/authz"
)

func TestMatrixForAdminGrantsEverything(t *testing.T) {
	matrix, ok := MatrixFor(authz.RoleAdmin)
	require.True(t, ok)
	require.Len(t, matrix, len(authz.Capabilities))

	for _, capability := range authz.Capabilities {
		flags, present := matrix[capability]
		require.True(t, present, capability)
		assert.Equal(t, Flags{Create: true, Read: true, Update: true, Delete: true}, flags, capability)
	}
}

func TestMatrixForCustomer(t *testing.T) {
	matrix, ok := MatrixFor(authz.RoleCustomer)
	require.True(t, ok)
	assert.Len(t, matrix, 13)

	// customers own their cart and reviews outright
	assert.Equal(t, Flags{Create: true, Read: true, Update: true, Delete: true}, matrix[authz.CapCart])
	assert.Equal(t, Flags{Create: true, Read: true, Update: true, Delete: true}, matrix[authz.CapReview])

	// orders can be placed and seen but never edited or cancelled here
	assert.Equal(t, Flags{Create: true, Read: true}, matrix[authz.CapOrder])

	// no grant at all on back-office capabilities
	_, present := matrix[authz.CapRole]
	assert.False(t, present)
	_, present = matrix[authz.CapReport]
	assert.False(t, present)
}

func TestMatrixForManagerOrderFlags(t *testing.T) {
	matrix, ok := MatrixFor(authz.RoleManager)
	require.True(t, ok)

	assert.Equal(t, Flags{Read: true, Update: true}, matrix[authz.CapOrder])
	assert.Equal(t, Flags{Read: true}, matrix[authz.CapOrderItem])
	assert.Equal(t, Flags{Read: true, Delete: true}, matrix[authz.CapReview])
}

func TestMatrixForCustomRole(t *testing.T) {
	_, ok := MatrixFor("SUPPORT")
	assert.False(t, ok)

	_, ok = MatrixFor("")
	assert.False(t, ok)
}

func TestEveryMatrixEntryIsACatalogCapability(t *testing.T) {
	for _, role := range []string{
		authz.RoleAdmin,
		authz.RoleManager,
		authz.RoleDeliveryAgent,
		authz.RoleCustomer,
	} {
		matrix, ok := MatrixFor(role)
		require.True(t, ok, role)
		for capability := range matrix {
			assert.True(t, authz.IsCapability(capability), "%s grants unknown capability %s", role, capability)
		}
	}
}

// AngelaMos | 2026
// matrix.go

package permission

import (
	"github.com/carterperez-dev/commerce-api/internal/authz"
)

// Flags is the CRUD grant for one capability within a role's matrix.
type Flags struct {
	Create bool
	Read   bool
	Update bool
	Delete bool
}

var (
	full     = Flags{Create: true, Read: true, Update: true, Delete: true}
	readOnly = Flags{Read: true}
)

// roleMatrices maps a predefined role name to its exact capability
// matrix. Reassigning an actor to one of these roles rewrites the
// actor's permission rows to match the matrix precisely; role names
// absent here are custom roles and leave permissions untouched.
var roleMatrices = map[string]map[string]Flags{
	authz.RoleAdmin: adminMatrix(),

	authz.RoleManager: {
		authz.CapProduct:      full,
		authz.CapCategory:     full,
		authz.CapSubCategory:  full,
		authz.CapTag:          full,
		authz.CapBrand:        full,
		authz.CapCoupon:       full,
		authz.CapShipping:     full,
		authz.CapTax:          full,
		authz.CapOrder:        {Read: true, Update: true},
		authz.CapOrderItem:    readOnly,
		authz.CapReview:       {Read: true, Delete: true},
		authz.CapReport:       {Create: true, Read: true},
		authz.CapUser:         readOnly,
		authz.CapNotification: {Create: true, Read: true},
	},

	authz.RoleDeliveryAgent: {
		authz.CapOrder:        {Read: true, Update: true},
		authz.CapOrderItem:    readOnly,
		authz.CapShipping:     readOnly,
		authz.CapNotification: readOnly,
	},

	authz.RoleCustomer: {
		authz.CapProduct:     readOnly,
		authz.CapCategory:    readOnly,
		authz.CapSubCategory: readOnly,
		authz.CapTag:         readOnly,
		authz.CapBrand:       readOnly,
		authz.CapCoupon:      readOnly,
		authz.CapShipping:    readOnly,
		authz.CapCart:        full,
		authz.CapOrder:       {Create: true, Read: true},
		authz.CapOrderItem:   readOnly,
		authz.CapReview:      full,
		authz.CapPayment:     {Create: true, Read: true},
		authz.CapUser:        {Read: true, Update: true},
	},
}

func adminMatrix() map[string]Flags {
	m := make(map[string]Flags, len(authz.Capabilities))
	for _, cap := range authz.Capabilities {
		m[cap] = full
	}
	return m
}

// MatrixFor returns a role's predefined capability matrix. The second
// return is false for custom roles.
func MatrixFor(roleName string) (map[string]Flags, bool) {
	m, ok := roleMatrices[roleName]
	return m, ok
}

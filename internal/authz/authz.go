// AngelaMos | 2026
// authz.go

package authz

import (
	"github.com/carterperez-dev/commerce-api/internal/session"
)

// Capability names form a fixed catalog. Permission rows reference
// these names; anything else is rejected at the validation boundary.
const (
	CapProduct      = "Product"
	CapCategory     = "Category"
	CapSubCategory  = "SubCategory"
	CapTag          = "Tag"
	CapBrand        = "Brand"
	CapCoupon       = "Coupon"
	CapShipping     = "Shipping"
	CapTax          = "Tax"
	CapOrder        = "Order"
	CapOrderItem    = "OrderItem"
	CapCart         = "Cart"
	CapReview       = "Review"
	CapPayment      = "Payment"
	CapUser         = "User"
	CapRole         = "Role"
	CapPermission   = "Permission"
	CapNotification = "Notification"
	CapReport       = "Report"
)

var Capabilities = []string{
	CapProduct, CapCategory, CapSubCategory, CapTag, CapBrand,
	CapCoupon, CapShipping, CapTax, CapOrder, CapOrderItem,
	CapCart, CapReview, CapPayment, CapUser, CapRole,
	CapPermission, CapNotification, CapReport,
}

func IsCapability(name string) bool {
	for _, c := range Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// Action is one of the four CRUD-style flags on a permission row.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Role names with built-in meaning. ADMIN and MANAGER are protected:
// they cannot be deleted, and their permission rows are never mutated
// through the ad-hoc permission path.
const (
	RoleAdmin         = "ADMIN"
	RoleManager       = "MANAGER"
	RoleDeliveryAgent = "DELIVERY_AGENT"
	RoleCustomer      = "CUSTOMER"
)

func IsProtectedRole(name string) bool {
	return name == RoleAdmin || name == RoleManager
}

// Tier orders roles by privilege. Custom roles sit at the base tier.
func Tier(roleName string) int {
	switch roleName {
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	default:
		return 1
	}
}

// HasCapability reports whether the permission set grants the action
// on the named capability. Absent capability means no grant.
func HasCapability(
	perms []session.Permission,
	capability string,
	action Action,
) bool {
	for _, p := range perms {
		if p.Capability != capability {
			continue
		}
		switch action {
		case ActionCreate:
			return p.CanCreate
		case ActionRead:
			return p.CanRead
		case ActionUpdate:
			return p.CanUpdate
		case ActionDelete:
			return p.CanDelete
		}
	}
	return false
}

// AngelaMos | 2026
// guards.go

package authz

import (
	"github.com/carterperez-dev/commerce-api/internal/core"
)

// Subject identifies one side of a permission-mutation attempt.
type Subject struct {
	ID       string
	RoleName string
}

// Guard is one relationship rule checked before a permission mutation,
// independent of any capability flags the caller holds. The first guard
// that matches short-circuits with its own rejection.
type Guard struct {
	Name  string
	Check func(caller, target Subject) *core.AppError
}

// MutationGuards is the ordered chain applied to every attempt to
// mutate another actor's permission rows.
var MutationGuards = []Guard{
	{
		Name: "protected-role",
		Check: func(_, target Subject) *core.AppError {
			if IsProtectedRole(target.RoleName) {
				return core.ForbiddenError(
					"permissions of a protected role cannot be modified",
				)
			}
			return nil
		},
	},
	{
		Name: "self-mutation",
		Check: func(caller, target Subject) *core.AppError {
			if caller.ID == target.ID {
				return core.ForbiddenError(
					"cannot modify your own permissions",
				)
			}
			return nil
		},
	},
	{
		Name: "peer-tier",
		Check: func(caller, target Subject) *core.AppError {
			if Tier(caller.RoleName) == Tier(target.RoleName) {
				return core.ForbiddenError(
					"cannot modify permissions of a peer role",
				)
			}
			return nil
		},
	},
}

// CheckPermissionMutation runs the guard chain in order and returns
// the first rejection, or nil when every guard passes.
func CheckPermissionMutation(caller, target Subject) error {
	for _, g := range MutationGuards {
		if err := g.Check(caller, target); err != nil {
			return err
		}
	}
	return nil
}

// CheckRoleReassignment gates moving target off its current role.
// Protected roles cannot be reassigned away from by a caller of
// equal or lesser privilege.
func CheckRoleReassignment(caller, target Subject) error {
	if IsProtectedRole(target.RoleName) &&
		Tier(caller.RoleName) <= Tier(target.RoleName) {
		return core.ForbiddenError(
			"cannot reassign an actor away from a protected role",
		)
	}
	return nil
}

// AngelaMos | 2026
// guard.go

package guard

import (
	"fmt"
)

// Decision is the outcome of a single authorization predicate. A denied
// decision carries the reason surfaced to the caller.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

func Denyf(format string, args ...any) Decision {
	return Decision{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// Guard is a deferred predicate. Chain evaluates guards lazily so that
// predicates backed by database lookups only run when everything before
// them has passed.
type Guard func() Decision

// Chain evaluates guards in order and stops at the first deny.
func Chain(guards ...Guard) Decision {
	for _, g := range guards {
		if d := g(); !d.Allowed {
			return d
		}
	}
	return Allow()
}

// RoleIs checks membership of a role in an allowed set.
func RoleIs(role string, allowed ...string) Decision {
	for _, a := range allowed {
		if role == a {
			return Allow()
		}
	}
	return Deny("insufficient role")
}

// OwnsShop checks that the caller is the shop's owning manager.
func OwnsShop(callerID, shopManagerID int64) Decision {
	if callerID == shopManagerID {
		return Allow()
	}
	return Deny("shop does not belong to the caller")
}

// AllReportTo checks that every requested analyst currently reports to the
// caller. managers maps analyst id to that analyst's manager id, as resolved
// from the database; an id missing from the map is denied the same way a
// non-subordinate is.
func AllReportTo(
	callerID int64,
	requested []int64,
	managers map[int64]int64,
) Decision {
	for _, id := range requested {
		managerID, ok := managers[id]
		if !ok || managerID != callerID {
			return Denyf("analyst %d does not report to the caller", id)
		}
	}
	return Allow()
}

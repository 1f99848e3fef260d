// AngelaMos | 2026
// operation.go

package shop

import (
	"fmt"
)

// StaffOperation enumerates the staff mutations a shop owner can request.
// Dispatch on it is always an exhaustive switch.
type StaffOperation int

const (
	StaffOperationUnknown StaffOperation = iota
	StaffOperationAdd
	StaffOperationRemove
)

func (op StaffOperation) String() string {
	switch op {
	case StaffOperationAdd:
		return "add"
	case StaffOperationRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// ParseStaffOperation maps the operation query parameter onto the
// enumeration. Anything but the two recognized tags is an error.
func ParseStaffOperation(tag string) (StaffOperation, error) {
	switch tag {
	case "add":
		return StaffOperationAdd, nil
	case "remove":
		return StaffOperationRemove, nil
	default:
		return StaffOperationUnknown, fmt.Errorf(
			"unrecognized staff operation %q",
			tag,
		)
	}
}

// AngelaMos | 2026
// operation_test.go

package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStaffOperation(t *testing.T) {
	op, err := ParseStaffOperation("add")
	assert.NoError(t, err)
	assert.Equal(t, StaffOperationAdd, op)

	op, err = ParseStaffOperation("remove")
	assert.NoError(t, err)
	assert.Equal(t, StaffOperationRemove, op)
}

func TestParseStaffOperationRejectsUnknownTags(t *testing.T) {
	for _, tag := range []string{"", "ADD", "delete", "add ", "promote"} {
		op, err := ParseStaffOperation(tag)
		assert.Error(t, err, "tag %q", tag)
		assert.Equal(t, StaffOperationUnknown, op)
	}
}

func TestStaffOperationString(t *testing.T) {
	assert.Equal(t, "add", StaffOperationAdd.String())
	assert.Equal(t, "remove", StaffOperationRemove.String())
	assert.Equal(t, "unknown", StaffOperationUnknown.String())
}

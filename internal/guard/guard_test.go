// AngelaMos | 2026
// guard_test.go

package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChainShortCircuits(t *testing.T) {
	evaluated := []string{}

	d := Chain(
		func() Decision {
			evaluated = append(evaluated, "first")
			return Allow()
		},
		func() Decision {
			evaluated = append(evaluated, "second")
			return Deny("second says no")
		},
		func() Decision {
			evaluated = append(evaluated, "third")
			return Allow()
		},
	)

	assert.False(t, d.Allowed)
	assert.Equal(t, "second says no", d.Reason)
	assert.Equal(t, []string{"first", "second"}, evaluated)
}

func TestChainAllPass(t *testing.T) {
	d := Chain(
		func() Decision { return Allow() },
		func() Decision { return Allow() },
	)

	assert.True(t, d.Allowed)
	assert.Empty(t, d.Reason)
}

func TestChainEmpty(t *testing.T) {
	assert.True(t, Chain().Allowed)
}

func TestRoleIs(t *testing.T) {
	assert.True(t, RoleIs("manager", "manager", "root").Allowed)
	assert.False(t, RoleIs("analyst", "manager", "root").Allowed)
}

func TestOwnsShop(t *testing.T) {
	assert.True(t, OwnsShop(7, 7).Allowed)

	d := OwnsShop(7, 8)
	assert.False(t, d.Allowed)
	assert.Equal(t, "shop does not belong to the caller", d.Reason)
}

func TestAllReportTo(t *testing.T) {
	managers := map[int64]int64{10: 1, 11: 1, 12: 2}

	assert.True(t, AllReportTo(1, []int64{10, 11}, managers).Allowed)

	d := AllReportTo(1, []int64{10, 12}, managers)
	assert.False(t, d.Allowed)
	assert.Equal(t, "analyst 12 does not report to the caller", d.Reason)
}

func TestAllReportToUnknownAnalyst(t *testing.T) {
	d := AllReportTo(1, []int64{99}, map[int64]int64{})
	assert.False(t, d.Allowed)
	assert.Equal(t, "analyst 99 does not report to the caller", d.Reason)
}

package emi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthly(t *testing.T) {
	// 100000 at 12% over 12 months is the textbook 8884.88
	assert.InDelta(t, 8884.88, Monthly(100000, 12, 12), 0.01)

	// zero rate is a straight split
	assert.Equal(t, 2500.0, Monthly(30000, 0, 12))

	// degenerate inputs
	assert.Equal(t, 0.0, Monthly(0, 12, 12))
	assert.Equal(t, 0.0, Monthly(100000, 12, 0))
}

func TestSchedulePrincipalSumsExactly(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		principal float64
		rate      float64
		months    int
	}{
		{100000, 12, 12},
		{50000, 9.5, 24},
		{75000, 0, 10},
		{333333, 14.25, 36},
	} {
		schedule := Schedule(tc.principal, tc.rate, tc.months, start)
		require.Len(t, schedule, tc.months)

		var principalSum float64
		for _, in := range schedule {
			principalSum += in.Principal
		}
		assert.InDelta(t, tc.principal, principalSum, 0.001,
			"principal components must sum to the loan principal")

		// final balance cleared
		assert.InDelta(t, 0, schedule[tc.months-1].Balance, 0.001)
	}
}

func TestScheduleDueDates(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	schedule := Schedule(12000, 10, 3, start)
	require.Len(t, schedule, 3)

	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), schedule[0].DueDate)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), schedule[2].DueDate)
	assert.Equal(t, 1, schedule[0].Sequence)
	assert.Equal(t, 3, schedule[2].Sequence)
}

func TestScheduleFixedAmounts(t *testing.T) {
	schedule := Schedule(100000, 12, 12, time.Now())
	fixed := Monthly(100000, 12, 12)

	// all but the last installment carry the fixed amount
	for _, in := range schedule[:len(schedule)-1] {
		assert.Equal(t, fixed, in.Amount)
	}

	// the last differs only by the rounding remainder
	last := schedule[len(schedule)-1]
	assert.InDelta(t, fixed, last.Amount, 1.0)

	assert.Greater(t, TotalPayable(schedule), 100000.0)
}

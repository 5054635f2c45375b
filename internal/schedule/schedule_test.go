package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		exprs []string
	}{
		{"not a cron", []string{"not a cron"}},
		{"empty expression", []string{""}},
		{"six fields", []string{"0 0 8 * * *"}},
		{"non-numeric fields", []string{"x y z w v"}},
		{"february 30th", []string{"0 0 30 2 *"}},
		{"april 31st", []string{"0 0 31 4 *"}},
		{"one bad among good", []string{"0 8 * * *", "bogus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Parse(tt.exprs)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidExpression)
			assert.Nil(t, set)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorIs(t, err, ErrNoSchedules)
}

func TestNext_EarliestAcrossSchedules(t *testing.T) {
	set, err := Parse([]string{"0 8 * * *", "0 9 * * 0"})
	require.NoError(t, err)

	// 2024-01-06 is a Saturday.
	now := time.Date(2024, 1, 6, 7, 0, 0, 0, time.UTC)
	next, err := set.Next(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC), next)
}

func TestNext_AfterDailyFirePicksSunday(t *testing.T) {
	set, err := Parse([]string{"0 8 * * *", "0 9 * * 0"})
	require.NoError(t, err)

	// Saturday 10:00: the daily 08:00 on Sunday beats the weekly 09:00 on Sunday.
	now := time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC)
	next, err := set.Next(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC), next)
}

func TestNext_StrictlyAfterNow(t *testing.T) {
	set, err := Parse([]string{"0 8 * * *"})
	require.NoError(t, err)

	now := time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC)
	next, err := set.Next(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC), next)
}

func TestNext_RecomputedFromNow(t *testing.T) {
	set, err := Parse([]string{"*/15 * * * *"})
	require.NoError(t, err)

	// A long pause does not replay missed fires.
	now := time.Date(2024, 3, 1, 12, 7, 0, 0, time.UTC)
	next, err := set.Next(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 15, 0, 0, time.UTC), next)
}

func TestExpressions_Copy(t *testing.T) {
	set, err := Parse([]string{"0 8 * * *"})
	require.NoError(t, err)

	exprs := set.Expressions()
	exprs[0] = "changed"
	assert.Equal(t, []string{"0 8 * * *"}, set.Expressions())
}

func TestParse_AcceptsMonthEnd(t *testing.T) {
	set, err := Parse([]string{"0 0 31 * *"})
	require.NoError(t, err)
	assert.Equal(t, []string{"0 0 31 * *"}, set.Expressions())
}

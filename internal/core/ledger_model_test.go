package core_test

import (
	"testing"
	"time"

	"fieldstock/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 7, core.ClampQuantity(10, -3))
	assert.Equal(t, 0, core.ClampQuantity(10, -10))
	assert.Equal(t, 0, core.ClampQuantity(3, -10))
	assert.Equal(t, 15, core.ClampQuantity(10, 5))
	assert.Equal(t, 5, core.ClampQuantity(0, 5))
}

func TestClampQuantity_NeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		previous := rapid.IntRange(0, 1_000_000).Draw(t, "previous")
		delta := rapid.IntRange(-1_000_000, 1_000_000).Draw(t, "delta")

		got := core.ClampQuantity(previous, delta)

		if got < 0 {
			t.Fatalf("ClampQuantity(%d, %d) = %d, want >= 0", previous, delta, got)
		}
		want := previous + delta
		if want < 0 {
			want = 0
		}
		if got != want {
			t.Fatalf("ClampQuantity(%d, %d) = %d, want %d", previous, delta, got, want)
		}
	})
}

func TestNormalizeDate(t *testing.T) {
	got, err := core.NormalizeDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), got)

	// Empty means today (midnight UTC).
	got, err = core.NormalizeDate("")
	require.NoError(t, err)
	now := time.Now().UTC()
	assert.Equal(t, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{"15-03-2026", "2026/03/15", "March 15, 2026", "2026-13-01", "yesterday"} {
		_, err := core.NormalizeDate(bad)
		require.Error(t, err, "input %q", bad)
		assert.True(t, core.IsValidation(err), "input %q", bad)
	}
}

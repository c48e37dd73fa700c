package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/JIATech/SIGVIP-sub002/pkg/domain-errors"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Run("parses valid times", func(t *testing.T) {
		cases := map[string]TimeOfDay{
			"00:00": 0,
			"07:00": 7 * 60,
			"10:30": 10*60 + 30,
			"16:00": 16 * 60,
			"23:59": 23*60 + 59,
		}
		for raw, want := range cases {
			got, err := ParseTimeOfDay(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, want, got, raw)
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, raw := range []string{"", "7:00", "25:00", "12:60", "noon", "12.30"} {
			_, err := ParseTimeOfDay(raw)
			require.Error(t, err, raw)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), raw)
		}
	})

	t.Run("round-trips through String", func(t *testing.T) {
		tod, err := ParseTimeOfDay("09:45")
		require.NoError(t, err)
		assert.Equal(t, "09:45", tod.String())
	})
}

func TestSlotValidate(t *testing.T) {
	t.Run("accepts ordered slot", func(t *testing.T) {
		slot := Slot{Start: 10 * 60, End: 10*60 + 30}
		require.NoError(t, slot.Validate())
	})

	t.Run("rejects reversed slot", func(t *testing.T) {
		slot := Slot{Start: 11 * 60, End: 10 * 60}
		err := slot.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects empty slot", func(t *testing.T) {
		slot := Slot{Start: 10 * 60, End: 10 * 60}
		require.Error(t, slot.Validate())
	})
}

func TestSlotOverlaps(t *testing.T) {
	base := Slot{Start: 10 * 60, End: 11 * 60}

	cases := []struct {
		name  string
		other Slot
		want  bool
	}{
		{"identical", Slot{Start: 10 * 60, End: 11 * 60}, true},
		{"contained", Slot{Start: 10*60 + 15, End: 10*60 + 45}, true},
		{"overlaps start", Slot{Start: 9*60 + 30, End: 10*60 + 30}, true},
		{"overlaps end", Slot{Start: 10*60 + 30, End: 11*60 + 30}, true},
		{"touches end", Slot{Start: 11 * 60, End: 12 * 60}, false},
		{"touches start", Slot{Start: 9 * 60, End: 10 * 60}, false},
		{"disjoint", Slot{Start: 14 * 60, End: 15 * 60}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestDateOf(t *testing.T) {
	t.Run("truncates to midnight UTC", func(t *testing.T) {
		instant := time.Date(2024, 6, 10, 15, 42, 7, 123, time.UTC)
		assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), DateOf(instant))
	})

	t.Run("normalizes non-UTC instants", func(t *testing.T) {
		zone := time.FixedZone("ART", -3*60*60)
		instant := time.Date(2024, 6, 10, 22, 0, 0, 0, zone) // 01:00 UTC on the 11th
		assert.Equal(t, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), DateOf(instant))
	})
}

func TestVisitingRules(t *testing.T) {
	allWeek := []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
	open, _ := ParseTimeOfDay("07:00")
	closeAt, _ := ParseTimeOfDay("16:00")

	rules, err := NewVisitingRules(allWeek, open, closeAt)
	require.NoError(t, err)

	monday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	t.Run("slot inside window on allowed day", func(t *testing.T) {
		ok, err := rules.Contains(monday, Slot{Start: 10 * 60, End: 10*60 + 30})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("slot after closing", func(t *testing.T) {
		ok, err := rules.Contains(monday, Slot{Start: 17 * 60, End: 17*60 + 30})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("slot straddling the close boundary", func(t *testing.T) {
		ok, err := rules.Contains(monday, Slot{Start: 15*60 + 45, End: 16*60 + 15})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("slot ending exactly at close is allowed", func(t *testing.T) {
		ok, err := rules.Contains(monday, Slot{Start: 15 * 60, End: 16 * 60})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("disallowed weekday", func(t *testing.T) {
		weekdaysOnly, err := NewVisitingRules(
			[]time.Weekday{time.Monday, time.Wednesday}, open, closeAt)
		require.NoError(t, err)

		sunday := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
		ok, err := weekdaysOnly.Contains(sunday, Slot{Start: 10 * 60, End: 11 * 60})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed slot is an error not a rejection", func(t *testing.T) {
		_, err := rules.Contains(monday, Slot{Start: 11 * 60, End: 10 * 60})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects empty day set", func(t *testing.T) {
		_, err := NewVisitingRules(nil, open, closeAt)
		require.Error(t, err)
	})

	t.Run("rejects reversed window", func(t *testing.T) {
		_, err := NewVisitingRules(allWeek, closeAt, open)
		require.Error(t, err)
	})

	t.Run("DayList is ordered and complete", func(t *testing.T) {
		subset, err := NewVisitingRules(
			[]time.Weekday{time.Saturday, time.Monday, time.Sunday}, open, closeAt)
		require.NoError(t, err)
		assert.Equal(t, []time.Weekday{time.Sunday, time.Monday, time.Saturday}, subset.DayList())
	})
}

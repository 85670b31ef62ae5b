package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddOneMonth(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"mid-month", date(2025, time.January, 15), date(2025, time.February, 15)},
		{"clamp to non-leap february", date(2025, time.January, 31), date(2025, time.February, 28)},
		{"clamp to leap february", date(2024, time.January, 31), date(2024, time.February, 29)},
		{"clamp 31 to 30", date(2025, time.March, 31), date(2025, time.April, 30)},
		{"year rollover", date(2024, time.December, 31), date(2025, time.January, 31)},
		{"first of month", date(2025, time.June, 1), date(2025, time.July, 1)},
		{"clamped result does not restore the day", date(2025, time.February, 28), date(2025, time.March, 28)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AddOneMonth(tc.in))
		})
	}
}

func TestAddOneMonthProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		year := rapid.IntRange(1970, 2100).Draw(t, "year")
		month := time.Month(rapid.IntRange(1, 12).Draw(t, "month"))
		day := rapid.IntRange(1, DaysIn(year, month)).Draw(t, "day")
		in := date(year, month, day)

		out := AddOneMonth(in)

		// Always strictly in the future, by at most 31 days.
		if !out.After(in) {
			t.Fatalf("AddOneMonth(%v) = %v is not after the input", in, out)
		}
		if diff := out.Sub(in); diff > 31*24*time.Hour {
			t.Fatalf("AddOneMonth(%v) = %v jumped %v", in, out, diff)
		}

		// Month advances by exactly one, modulo year rollover.
		wantMonth := month%12 + 1
		if out.Month() != wantMonth {
			t.Fatalf("AddOneMonth(%v) landed in %v, want %v", in, out.Month(), wantMonth)
		}

		// Day is preserved when the target month is long enough,
		// otherwise clamped to its last day.
		last := DaysIn(out.Year(), out.Month())
		if day <= last && out.Day() != day {
			t.Fatalf("AddOneMonth(%v) changed day to %d", in, out.Day())
		}
		if day > last && out.Day() != last {
			t.Fatalf("AddOneMonth(%v) = %v, want clamp to %d", in, out, last)
		}
	})
}

func TestSameDay(t *testing.T) {
	noon := time.Date(2025, time.March, 10, 12, 30, 0, 0, time.UTC)
	assert.True(t, SameDay(noon, date(2025, time.March, 10)))
	assert.False(t, SameDay(noon, date(2025, time.March, 11)))
}

func TestAddDays(t *testing.T) {
	assert.Equal(t, date(2025, time.February, 25), AddDays(date(2025, time.February, 28), -3))
	assert.Equal(t, date(2025, time.March, 2), AddDays(date(2025, time.February, 28), 2))
}

func TestMidnight(t *testing.T) {
	in := time.Date(2025, time.March, 10, 23, 59, 59, 1, time.UTC)
	assert.Equal(t, date(2025, time.March, 10), Midnight(in))
}

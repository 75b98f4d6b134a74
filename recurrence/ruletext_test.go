package recurrence

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRule_String(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want string
	}{
		{
			name: "timezone transition rule",
			rule: Rule{
				Frequency: Yearly,
				ByMonth:   []int{10},
				ByDay:     []WeekdayNum{{Weekday: time.Sunday, Ordinal: -1}},
			},
			want: "FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU",
		},
		{
			name: "fourth sunday keeps its digit",
			rule: Rule{
				Frequency: Yearly,
				ByMonth:   []int{3},
				ByDay:     []WeekdayNum{{Weekday: time.Sunday, Ordinal: 4}},
			},
			want: "FREQ=YEARLY;BYMONTH=3;BYDAY=4SU",
		},
		{
			name: "interval and count",
			rule: Rule{Frequency: Weekly, Interval: 2, Count: mo.Some(10)},
			want: "FREQ=WEEKLY;INTERVAL=2;COUNT=10",
		},
		{
			name: "until in UTC",
			rule: Rule{Frequency: Daily, Until: mo.Some(time.Date(2024, 6, 30, 21, 59, 59, 0, time.UTC))},
			want: "FREQ=DAILY;UNTIL=20240630T215959Z",
		},
		{
			name: "set position",
			rule: Rule{
				Frequency: Monthly,
				ByDay:     []WeekdayNum{{Weekday: time.Monday}, {Weekday: time.Friday}},
				BySetPos:  []int{-1},
			},
			want: "FREQ=MONTHLY;BYDAY=MO,FR;BYSETPOS=-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.String())
		})
	}
}

func TestParseRule_RoundTrip(t *testing.T) {
	inputs := []string{
		"FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU",
		"FREQ=YEARLY;BYMONTH=3;BYDAY=4SU",
		"FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE,FR;COUNT=10",
		"FREQ=MONTHLY;BYMONTHDAY=1,15,-1",
		"FREQ=DAILY;BYHOUR=9,17;UNTIL=20251231T000000Z",
		"FREQ=YEARLY;BYDAY=MO;BYWEEKNO=20",
		"FREQ=MINUTELY;BYSECOND=0,30",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			rule, err := ParseRule(input)
			require.NoError(t, err)
			assert.Equal(t, input, rule.String())
		})
	}
}

func TestParseRule_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unsupported frequency", "FREQ=SECONDLY"},
		{"missing frequency", "BYMONTH=3"},
		{"non-numeric ordinal", "FREQ=WEEKLY;BYDAY=XSU"},
		{"invalid weekday code", "FREQ=WEEKLY;BYDAY=1XX"},
		{"unknown part", "FREQ=DAILY;BYFOO=1"},
		{"non-numeric month", "FREQ=YEARLY;BYMONTH=oct"},
		{"bare token", "FREQ=DAILY;NONSENSE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := ParseRule(tt.input)
			assert.Error(t, err)
			assert.Nil(t, rule)
		})
	}
}

func TestParseRule_LastIsNotFourth(t *testing.T) {
	last, err := ParseRule("FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU")
	require.NoError(t, err)
	fourth, err := ParseRule("FREQ=YEARLY;BYMONTH=10;BYDAY=4SU")
	require.NoError(t, err)
	assert.Equal(t, -1, last.ByDay[0].Ordinal)
	assert.Equal(t, 4, fourth.ByDay[0].Ordinal)
	assert.NotEqual(t, last.String(), fourth.String())
}

package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriod_EffectiveEnd(t *testing.T) {
	start := mustUTC(2024, time.May, 1, 12, 0)

	assert.Equal(t, start, NewPeriod(start).EffectiveEnd(), "instantaneous period ends at its start")
	assert.Equal(t, mustUTC(2024, time.May, 1, 14, 0),
		NewPeriodWithEnd(start, mustUTC(2024, time.May, 1, 14, 0)).EffectiveEnd())
	assert.Equal(t, mustUTC(2024, time.May, 1, 13, 0),
		NewPeriodWithDuration(start, time.Hour).EffectiveEnd())
}

func TestPeriod_Equal(t *testing.T) {
	start := mustUTC(2024, time.May, 1, 12, 0)
	end := mustUTC(2024, time.May, 1, 13, 0)

	// End-form and duration-form describing the same span are equal.
	assert.True(t, NewPeriodWithEnd(start, end).Equal(NewPeriodWithDuration(start, time.Hour)))
	assert.False(t, NewPeriod(start).Equal(NewPeriodWithDuration(start, time.Hour)))
	assert.False(t, NewPeriod(start).Equal(NewPeriod(end)))
}

func TestPeriodList_EqualIsPositional(t *testing.T) {
	a := NewPeriod(mustUTC(2024, time.January, 1, 0, 0))
	b := NewPeriod(mustUTC(2024, time.June, 1, 0, 0))

	assert.True(t, PeriodList{Periods: []Period{a, b}}.Equal(PeriodList{Periods: []Period{a, b}}))
	assert.False(t, PeriodList{Periods: []Period{a, b}}.Equal(PeriodList{Periods: []Period{b, a}}),
		"same elements in different order are not equal")
	assert.False(t, PeriodList{Periods: []Period{a}}.Equal(PeriodList{Periods: []Period{a, b}}))
	assert.False(t, PeriodList{TZID: "Europe/Paris", Periods: []Period{a}}.Equal(PeriodList{Periods: []Period{a}}))
}

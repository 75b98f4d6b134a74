package recurrence

import (
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventComponent(props map[string]string) *ical.Component {
	comp := &ical.Component{Name: ical.CompEvent, Props: make(ical.Props)}
	for name, value := range props {
		prop := ical.NewProp(name)
		prop.Value = value
		comp.Props.Add(prop)
	}
	return comp
}

func TestFromComponent(t *testing.T) {
	comp := eventComponent(map[string]string{
		ical.PropUID:             "event-1",
		ical.PropDateTimeStart:   "20240101T090000Z",
		ical.PropDateTimeEnd:     "20240101T100000Z",
		ical.PropRecurrenceRule:  "FREQ=WEEKLY;BYDAY=MO",
		ical.PropExceptionDates:  "20240108T090000Z",
		ical.PropRecurrenceDates: "20240120T090000Z",
	})

	rec, err := FromComponent(comp)
	require.NoError(t, err)
	assert.Equal(t, "event-1", rec.UID)
	assert.Equal(t, time.Hour, rec.Duration())
	require.NotNil(t, rec.Rule)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO", rec.Rule.String())
	require.Len(t, rec.ExDates, 1)
	assert.True(t, rec.ExDates[0].Equal(mustUTC(2024, time.January, 8, 9, 0)))
	require.Len(t, rec.RDates, 1)
	assert.True(t, rec.RDates[0].Equal(mustUTC(2024, time.January, 20, 9, 0)))
}

func TestFromComponent_MissingStart(t *testing.T) {
	_, err := FromComponent(eventComponent(map[string]string{ical.PropUID: "no-start"}))
	assert.Error(t, err)
}

func TestFromComponent_LocalRDate(t *testing.T) {
	rec, err := FromComponent(eventComponent(map[string]string{
		ical.PropDateTimeStart:   "20240101T090000Z",
		ical.PropRecurrenceDates: "20240110T090000",
	}))
	require.NoError(t, err)
	require.Len(t, rec.RDates, 1)
	assert.True(t, rec.RDates[0].Equal(mustUTC(2024, time.January, 10, 9, 0)))
}

func TestFromComponent_BadRDate(t *testing.T) {
	_, err := FromComponent(eventComponent(map[string]string{
		ical.PropDateTimeStart:   "20240101T090000Z",
		ical.PropRecurrenceDates: "not-a-date",
	}))
	assert.Error(t, err)
}

func TestFromComponent_BadRule(t *testing.T) {
	_, err := FromComponent(eventComponent(map[string]string{
		ical.PropDateTimeStart:  "20240101T090000Z",
		ical.PropRecurrenceRule: "FREQ=NEVER",
	}))
	assert.Error(t, err)
}

func TestFromComponent_GeneratesUID(t *testing.T) {
	rec, err := FromComponent(eventComponent(map[string]string{
		ical.PropDateTimeStart: "20240101T090000Z",
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, rec.UID)
}

func TestNewRecurring(t *testing.T) {
	start := mustUTC(2024, time.March, 1, 8, 0)
	rec := NewRecurring(start, start.Add(30*time.Minute), &Rule{Frequency: Daily})
	assert.NotEmpty(t, rec.UID)
	assert.Equal(t, 30*time.Minute, rec.Duration())
}

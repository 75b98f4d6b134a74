package zoneinfo

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cyp0633/librecur/vtimezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intervalAt(intervals []vtimezone.ZoneInterval, t time.Time) (vtimezone.ZoneInterval, bool) {
	for _, iv := range intervals {
		if iv.Start != nil && t.Before(*iv.Start) {
			continue
		}
		if iv.End != nil && !t.Before(*iv.End) {
			continue
		}
		return iv, true
	}
	return vtimezone.ZoneInterval{}, false
}

func TestSource_Intervals_NewYork(t *testing.T) {
	src := New()
	from := time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	intervals, err := src.Intervals("America/New_York", from, to)
	require.NoError(t, err)
	require.NotEmpty(t, intervals)

	// The leading interval began before the queried range.
	assert.Nil(t, intervals[0].Start)
	assert.Equal(t, "EST", intervals[0].Name)
	assert.Equal(t, -5*time.Hour, intervals[0].WallOffset)
	assert.False(t, intervals[0].IsDaylight())

	summer, ok := intervalAt(intervals, time.Date(2022, time.July, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "EDT", summer.Name)
	assert.Equal(t, -4*time.Hour, summer.WallOffset)
	assert.Equal(t, time.Hour, summer.Savings)
	// 2:00 local on the second Sunday of March 2022.
	require.NotNil(t, summer.Start)
	assert.Equal(t, time.Date(2022, time.March, 13, 7, 0, 0, 0, time.UTC), summer.Start.UTC())
	require.NotNil(t, summer.End)
	assert.Equal(t, time.Date(2022, time.November, 6, 6, 0, 0, 0, time.UTC), summer.End.UTC())

	winter, ok := intervalAt(intervals, time.Date(2022, time.December, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "EST", winter.Name)
	assert.Equal(t, time.Duration(0), winter.Savings)

	// Consecutive intervals share their boundary instants.
	for i := 1; i < len(intervals); i++ {
		require.NotNil(t, intervals[i-1].End)
		require.NotNil(t, intervals[i].Start)
		assert.True(t, intervals[i-1].End.Equal(*intervals[i].Start), "gap before interval %d", i)
	}
}

func TestSource_Intervals_FixedZone(t *testing.T) {
	src := New()
	intervals, err := src.Intervals("UTC",
		time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, intervals, 1)
	assert.Nil(t, intervals[0].Start)
	assert.Nil(t, intervals[0].End)
	assert.Equal(t, time.Duration(0), intervals[0].WallOffset)
	assert.False(t, intervals[0].IsDaylight())
}

func TestSource_Intervals_UnknownZone(t *testing.T) {
	_, err := New().Intervals("Not/AZone", time.Now().AddDate(-1, 0, 0), time.Now())
	assert.Error(t, err)
}

func TestSource_MaxOffset(t *testing.T) {
	src := New()

	off, err := src.MaxOffset("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, -4*time.Hour, off)

	off, err = src.MaxOffset("UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), off)

	_, err = src.MaxOffset("Not/AZone")
	assert.Error(t, err)
}

func TestCompileFromZoneinfo(t *testing.T) {
	c := vtimezone.NewCompiler(New(), nil)

	blocks, err := c.Compile("America/New_York", time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC), false)
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	std := blocks[0]
	assert.Equal(t, vtimezone.Standard, std.Kind)
	assert.Equal(t, "EST", std.Name)
	assert.Equal(t, -4*time.Hour, std.OffsetFrom)
	assert.Equal(t, -5*time.Hour, std.OffsetTo)
	require.Len(t, std.Rules, 1)
	assert.Equal(t, "FREQ=YEARLY;BYMONTH=11;BYDAY=1SU", std.Rules[0].String())

	dl := blocks[1]
	assert.Equal(t, vtimezone.Daylight, dl.Kind)
	assert.Equal(t, "EDT", dl.Name)
	assert.Equal(t, -5*time.Hour, dl.OffsetFrom)
	assert.Equal(t, -4*time.Hour, dl.OffsetTo)
	require.Len(t, dl.Rules, 1)
	assert.Equal(t, "FREQ=YEARLY;BYMONTH=3;BYDAY=2SU", dl.Rules[0].String())
}

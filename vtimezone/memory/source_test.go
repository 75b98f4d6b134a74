package memory

import (
	"testing"
	"time"

	"github.com/cyp0633/librecur/vtimezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(name string, start, end time.Time, wall time.Duration) vtimezone.ZoneInterval {
	return vtimezone.ZoneInterval{Name: name, Start: &start, End: &end, WallOffset: wall}
}

func TestSource_Intervals(t *testing.T) {
	src := New()
	src.SetZone("Test/Zone", []vtimezone.ZoneInterval{
		span("A", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), time.Hour),
		span("B", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 2*time.Hour),
		span("C", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), time.Hour),
	})

	t.Run("returns only overlapping intervals", func(t *testing.T) {
		got, err := src.Intervals("Test/Zone",
			time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "B", got[0].Name)
		assert.Equal(t, "C", got[1].Name)
	})

	t.Run("unknown zone fails", func(t *testing.T) {
		_, err := src.Intervals("Nope", time.Time{}, time.Now())
		assert.Error(t, err)
	})
}

func TestSource_MaxOffset(t *testing.T) {
	src := New()
	src.SetZone("Test/Zone", []vtimezone.ZoneInterval{
		span("A", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), -time.Hour),
		span("B", time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), -2*time.Hour),
	})

	off, err := src.MaxOffset("Test/Zone")
	require.NoError(t, err)
	assert.Equal(t, -time.Hour, off)

	_, err = src.MaxOffset("Nope")
	assert.Error(t, err)
}

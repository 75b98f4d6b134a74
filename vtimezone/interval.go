package vtimezone

import (
	"fmt"
	"time"
)

// ErrorType classifies compiler failures.
type ErrorType string

const (
	ErrInvalidTimezone ErrorType = "invalid_timezone"
	ErrInternal        ErrorType = "internal"
)

// Error represents a timezone compilation error.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ZoneInterval is a maximal span in which a zone's UTC offset and DST
// savings are constant. A nil Start means the interval extends into the
// unbounded past; a nil End means the zone never transitions again.
type ZoneInterval struct {
	Name       string
	Start      *time.Time
	End        *time.Time
	WallOffset time.Duration
	Savings    time.Duration
}

// IsDaylight reports whether the interval applies a daylight saving.
func (zi ZoneInterval) IsDaylight() bool {
	return zi.Savings != 0
}

// LocalStart is the interval's start expressed as the civil date-time in
// effect once the interval begins: the start instant shifted by the wall
// offset, with its fields read in UTC. Zero when Start is unbounded.
func (zi ZoneInterval) LocalStart() time.Time {
	if zi.Start == nil {
		return time.Time{}
	}
	return zi.Start.UTC().Add(zi.WallOffset)
}

// Source supplies ordered constant-offset intervals for a timezone. The
// returned intervals are non-overlapping, sorted by start and cover the
// full queried range; the leading interval may have a nil Start.
// Implementations must be safe for concurrent reads.
type Source interface {
	Intervals(tzID string, from, to time.Time) ([]ZoneInterval, error)

	// MaxOffset returns the zone's maximum wall offset, used to synthesize
	// a block for zones that never transition inside the queried range.
	MaxOffset(tzID string) (time.Duration, error)
}

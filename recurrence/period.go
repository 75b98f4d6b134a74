package recurrence

import (
	"time"

	"github.com/samber/mo"
)

// Period is a span of time anchored at Start. It carries either an explicit
// End or a Duration, never both; a period with neither is instantaneous.
type Period struct {
	Start    time.Time
	End      mo.Option[time.Time]
	Duration mo.Option[time.Duration]
}

// NewPeriod returns an instantaneous period.
func NewPeriod(start time.Time) Period {
	return Period{Start: start}
}

// NewPeriodWithEnd returns a period bounded by an explicit end instant.
func NewPeriodWithEnd(start, end time.Time) Period {
	return Period{Start: start, End: mo.Some(end)}
}

// NewPeriodWithDuration returns a period bounded by a duration from Start.
func NewPeriodWithDuration(start time.Time, d time.Duration) Period {
	return Period{Start: start, Duration: mo.Some(d)}
}

// EffectiveEnd resolves the period's end: the explicit End if set, else
// Start plus Duration, else Start itself.
func (p Period) EffectiveEnd() time.Time {
	if end, ok := p.End.Get(); ok {
		return end
	}
	if d, ok := p.Duration.Get(); ok {
		return p.Start.Add(d)
	}
	return p.Start
}

// Equal compares two periods by start instant and effective end.
func (p Period) Equal(o Period) bool {
	return p.Start.Equal(o.Start) && p.EffectiveEnd().Equal(o.EffectiveEnd())
}

// PeriodList is an ordered sequence of periods, optionally tagged with the
// timezone identifier its local date-times refer to.
type PeriodList struct {
	TZID    string
	Periods []Period
}

// Equal is positional: two lists are equal iff they have the same length
// and pairwise-equal elements in the same order.
func (l PeriodList) Equal(o PeriodList) bool {
	if l.TZID != o.TZID || len(l.Periods) != len(o.Periods) {
		return false
	}
	for i := range l.Periods {
		if !l.Periods[i].Equal(o.Periods[i]) {
			return false
		}
	}
	return true
}

// Occurrence is one concrete materialization of a recurring entity.
type Occurrence struct {
	Source *Recurring
	Period Period
}

// Equal compares by source identity and period.
func (o Occurrence) Equal(other Occurrence) bool {
	return o.Source == other.Source && o.Period.Equal(other.Period)
}

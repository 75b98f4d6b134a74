// Package zoneinfo adapts the IANA timezone database shipped with Go into
// a vtimezone.Source. time.Location does not expose its transition table,
// so transitions are recovered by probing: day-granularity scanning with a
// bisection down to the exact second.
package zoneinfo

import (
	"fmt"
	"time"

	"github.com/cyp0633/librecur/vtimezone"
)

// defaultLookahead is how far past the queried range the probe searches for
// the next transition. A zone that still alternates transitions at least
// yearly, so finding nothing within the lookahead means the final interval
// extends indefinitely.
const defaultLookahead = 2 * 365 * 24 * time.Hour

// Source resolves zone intervals through time.LoadLocation.
type Source struct {
	lookahead time.Duration
}

// New creates a source with the default lookahead.
func New() *Source {
	return &Source{lookahead: defaultLookahead}
}

type zoneSample struct {
	name   string
	offset time.Duration
	dst    bool
}

func sampleAt(t time.Time, loc *time.Location) zoneSample {
	local := t.In(loc)
	name, offset := local.Zone()
	return zoneSample{name: name, offset: time.Duration(offset) * time.Second, dst: local.IsDST()}
}

// Intervals probes the location over [from, to] and returns the covering
// intervals. The leading interval has a nil Start (its true beginning lies
// before the queried range); a nil End on the final interval means no
// further transition was found within the lookahead.
func (s *Source) Intervals(tzID string, from, to time.Time) ([]vtimezone.ZoneInterval, error) {
	loc, err := time.LoadLocation(tzID)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", tzID, err)
	}
	if to.Before(from) {
		return nil, nil
	}

	transitions := probeTransitions(loc, from, to.Add(s.lookahead))

	type span struct {
		start  *time.Time
		end    *time.Time
		sample zoneSample
	}
	spans := []span{{sample: sampleAt(from, loc)}}
	for _, tr := range transitions {
		spans[len(spans)-1].end = &tr
		spans = append(spans, span{start: &tr, sample: sampleAt(tr, loc)})
	}
	// Spans opening inside the lookahead exist only to close their
	// predecessor.
	for len(spans) > 0 {
		last := spans[len(spans)-1]
		if last.start == nil || !last.start.After(to) {
			break
		}
		spans = spans[:len(spans)-1]
	}

	samples := make([]zoneSample, len(spans))
	for i, sp := range spans {
		samples[i] = sp.sample
	}
	out := make([]vtimezone.ZoneInterval, 0, len(spans))
	for i, sp := range spans {
		savings := time.Duration(0)
		if sp.sample.dst {
			savings = sp.sample.offset - standardOffset(samples, i)
		}
		out = append(out, vtimezone.ZoneInterval{
			Name:       sp.sample.name,
			Start:      sp.start,
			End:        sp.end,
			WallOffset: sp.sample.offset,
			Savings:    savings,
		})
	}
	return out, nil
}

// standardOffset finds the wall offset of the nearest non-DST span,
// preferring earlier spans. Falls back to one hour below the DST offset
// when the whole probed range is in daylight saving.
func standardOffset(samples []zoneSample, i int) time.Duration {
	for j := i - 1; j >= 0; j-- {
		if !samples[j].dst {
			return samples[j].offset
		}
	}
	for j := i + 1; j < len(samples); j++ {
		if !samples[j].dst {
			return samples[j].offset
		}
	}
	return samples[i].offset - time.Hour
}

// probeTransitions finds every instant in (from, until] where the zone's
// name, offset or DST flag changes. Daily steps locate a change, bisection
// pins it to the second.
func probeTransitions(loc *time.Location, from, until time.Time) []time.Time {
	var out []time.Time
	cur := sampleAt(from, loc)
	t := from
	for t.Before(until) {
		next := t.Add(24 * time.Hour)
		if next.After(until) {
			next = until
		}
		if s := sampleAt(next, loc); s != cur {
			tr := bisectTransition(loc, t, next)
			out = append(out, tr)
			cur = sampleAt(tr, loc)
			t = tr
			continue
		}
		t = next
	}
	return out
}

// bisectTransition narrows (lo, hi] down to the first instant of the new
// zone, to one-second precision.
func bisectTransition(loc *time.Location, lo, hi time.Time) time.Time {
	before := sampleAt(lo, loc)
	for hi.Sub(lo) > time.Second {
		mid := lo.Add(hi.Sub(lo) / 2).Truncate(time.Second)
		if !mid.After(lo) {
			mid = lo.Add(time.Second)
		}
		if sampleAt(mid, loc) == before {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}

// MaxOffset samples a decade of history plus one year ahead and returns the
// largest wall offset seen.
func (s *Source) MaxOffset(tzID string) (time.Duration, error) {
	loc, err := time.LoadLocation(tzID)
	if err != nil {
		return 0, fmt.Errorf("unknown timezone %q: %w", tzID, err)
	}
	now := time.Now()
	max := sampleAt(now.AddDate(-10, 0, 0), loc).offset
	for t := now.AddDate(-10, 0, 0); t.Before(now.AddDate(1, 0, 0)); t = t.AddDate(0, 1, 0) {
		if off := sampleAt(t, loc).offset; off > max {
			max = off
		}
	}
	return max, nil
}

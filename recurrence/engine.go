package recurrence

import (
	"log/slog"
	"sort"
	"time"
)

// DefaultMaxPeriods bounds how many base periods a single expansion walks.
// Periods wholly before the window are skipped without being walked, so the
// cap matters only for windows spanning more periods than this (or COUNT
// rules whose count reaches that far); hitting it logs a warning.
const DefaultMaxPeriods = 1000

// Engine expands recurrence rules into concrete occurrences. It holds no
// mutable state: repeated invocation with identical inputs yields identical
// results, and an Engine may be shared across goroutines.
type Engine struct {
	logger     *slog.Logger
	maxPeriods int
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return NewEngineWithLogger(nil)
}

// NewEngineWithLogger creates an engine that traces expansion at debug
// level. A nil logger falls back to slog.Default().
func NewEngineWithLogger(logger *slog.Logger) *Engine {
	return NewEngineWithConfig(EngineConfig{Logger: logger})
}

// EngineConfig customizes engine construction. Zero values select defaults.
type EngineConfig struct {
	Logger     *slog.Logger
	MaxPeriods int
}

// NewEngineWithConfig creates an engine with explicit settings.
func NewEngineWithConfig(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	max := cfg.MaxPeriods
	if max <= 0 {
		max = DefaultMaxPeriods
	}
	return &Engine{logger: logger, maxPeriods: max}
}

// ExpandRule returns the start instants the rule produces inside the window,
// ascending and deduplicated. The window is normalized into the anchor's
// location and its start is clamped to the anchor: a recurrence never
// produces occurrences before its own definition start. An occurrence is
// inside the window iff its effective end is strictly after windowStart and
// its start is at or before windowEnd; includeAnchor additionally reports
// the untransformed anchor even when no rule part would regenerate it.
func (e *Engine) ExpandRule(r *Rule, anchor, windowStart, windowEnd time.Time, includeAnchor bool) []time.Time {
	return e.expand(r, anchor, windowStart, windowEnd, 0, includeAnchor)
}

func (e *Engine) expand(r *Rule, anchor, windowStart, windowEnd time.Time, duration time.Duration, includeAnchor bool) []time.Time {
	if windowEnd.Before(windowStart) {
		return nil
	}
	loc := anchor.Location()
	ws := windowStart.In(loc)
	we := windowEnd.In(loc)
	if ws.Before(anchor) {
		ws = anchor
	}

	inWindow := func(c time.Time) bool {
		return c.Add(duration).After(ws) && !c.After(we)
	}

	seen := make(map[int64]struct{})
	var out []time.Time
	emit := func(c time.Time) {
		if _, dup := seen[c.UnixNano()]; dup {
			return
		}
		seen[c.UnixNano()] = struct{}{}
		out = append(out, c)
	}

	if r != nil {
		row := Directives(r)
		// A later Expand slot replaces the day-of-month, so short months
		// must not skip the whole period.
		clampDay := (row[PartMonthDay] == Expand && len(r.ByMonthDay) > 0) ||
			(row[PartDay] == Expand && len(r.ByDay) > 0) ||
			(row[PartYearDay] == Expand && len(r.ByYearDay) > 0) ||
			(row[PartWeekNo] == Expand && len(r.ByWeekNo) > 0)

		until, hasUntil := r.Until.Get()
		bound := we
		if hasUntil && until.Before(bound) {
			bound = until.In(loc)
		}
		remaining := -1
		if n, ok := r.Count.Get(); ok {
			remaining = n
		}

		start := 0
		if remaining < 0 {
			// COUNT walks every occurrence from the anchor; without it the
			// window alone bounds the result, so whole periods before the
			// window need not be walked.
			start = skipPeriods(anchor, ws, r.Frequency, r.interval())
		}

	periods:
		for k, walked := start, 0; ; k, walked = k+1, walked+1 {
			if walked >= e.maxPeriods {
				e.logger.Warn("recurrence expansion hit the period cap before the window end",
					"max_periods", e.maxPeriods, "frequency", r.Frequency)
				break
			}
			base, ok := advance(anchor, r.Frequency, k*r.interval(), clampDay)
			if !ok {
				continue
			}
			if periodFloor(base, r.Frequency).After(bound) {
				break
			}
			cands := e.applyParts(r, row, base)
			sortTimes(cands)
			if len(r.BySetPos) > 0 {
				cands = selectSetPos(cands, r.BySetPos)
			}
			for _, c := range cands {
				if c.Before(anchor) {
					continue
				}
				if hasUntil && c.After(until) {
					continue
				}
				if _, dup := seen[c.UnixNano()]; dup {
					continue
				}
				if remaining == 0 {
					break periods
				}
				if remaining > 0 {
					remaining--
				}
				// Counted against COUNT even when outside the window:
				// COUNT bounds the recurrence itself, not the query.
				if inWindow(c) {
					emit(c)
				} else {
					seen[c.UnixNano()] = struct{}{}
				}
			}
		}
	}

	if includeAnchor && inWindow(anchor) {
		emit(anchor)
	}

	sortTimes(out)
	return out
}

// applyParts runs the directive row over one base period, in the fixed
// BYMONTH..BYSECOND slot order. Empty rule parts leave the candidate set
// untouched regardless of directive.
func (e *Engine) applyParts(r *Rule, row DirectiveRow, base time.Time) []time.Time {
	cands := []time.Time{base}
	for part := PartMonth; part < PartSetPos; part++ {
		if row[part] == NotApplicable {
			continue
		}
		expand := row[part] == Expand
		switch part {
		case PartMonth:
			if len(r.ByMonth) == 0 {
				continue
			}
			if expand {
				cands = expandMonths(cands, r.ByMonth)
			} else {
				cands = limitMonths(cands, r.ByMonth)
			}
		case PartWeekNo:
			if len(r.ByWeekNo) == 0 {
				continue
			}
			if expand {
				cands = expandWeekNumbers(cands, r.ByWeekNo)
			}
		case PartYearDay:
			if len(r.ByYearDay) == 0 {
				continue
			}
			if expand {
				cands = expandYearDays(cands, r.ByYearDay)
			} else {
				cands = limitYearDays(cands, r.ByYearDay)
			}
		case PartMonthDay:
			if len(r.ByMonthDay) == 0 {
				continue
			}
			if expand {
				cands = expandMonthDays(cands, r.ByMonthDay)
			} else {
				cands = limitMonthDays(cands, r.ByMonthDay)
			}
		case PartDay:
			if len(r.ByDay) == 0 {
				continue
			}
			if expand {
				cands = expandDays(cands, r)
			} else {
				cands = limitDays(cands, r.ByDay)
			}
		case PartHour:
			if len(r.ByHour) == 0 {
				continue
			}
			if expand {
				cands = expandField(cands, r.ByHour, setHour)
			} else {
				cands = limitField(cands, r.ByHour, time.Time.Hour)
			}
		case PartMinute:
			if len(r.ByMinute) == 0 {
				continue
			}
			if expand {
				cands = expandField(cands, r.ByMinute, setMinute)
			} else {
				cands = limitField(cands, r.ByMinute, time.Time.Minute)
			}
		case PartSecond:
			if len(r.BySecond) == 0 {
				continue
			}
			if expand {
				cands = expandField(cands, r.BySecond, setSecond)
			} else {
				cands = limitField(cands, r.BySecond, time.Time.Second)
			}
		}
	}
	return dedupeTimes(cands)
}

// selectSetPos keeps the 1-based (or negative, from-the-end) positions of
// an already-sorted per-period candidate group.
func selectSetPos(cands []time.Time, positions []int) []time.Time {
	var out []time.Time
	for _, p := range positions {
		idx := p - 1
		if p < 0 {
			idx = len(cands) + p
		}
		if idx >= 0 && idx < len(cands) {
			out = append(out, cands[idx])
		}
	}
	sortTimes(out)
	return dedupeTimes(out)
}

func sortTimes(ts []time.Time) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
}

// dedupeTimes removes duplicates from a sorted slice.
func dedupeTimes(ts []time.Time) []time.Time {
	if len(ts) < 2 {
		return ts
	}
	out := ts[:1]
	for _, t := range ts[1:] {
		if !t.Equal(out[len(out)-1]) {
			out = append(out, t)
		}
	}
	return out
}

// OccurrencesInWindow expands a recurring entity into the window, applying
// its rule, additional recurrence dates and exception dates. The result is
// a set: duplicate periods collapse. Occurrences carry the entity's anchor
// duration.
func (e *Engine) OccurrencesInWindow(rec *Recurring, windowStart, windowEnd time.Time, includeAnchor bool) []Occurrence {
	if rec == nil || windowEnd.Before(windowStart) {
		return nil
	}
	duration := rec.Duration()
	starts := e.expand(rec.Rule, rec.Start, windowStart, windowEnd, duration, includeAnchor)

	loc := rec.Start.Location()
	ws := windowStart.In(loc)
	we := windowEnd.In(loc)
	if ws.Before(rec.Start) {
		ws = rec.Start
	}
	for _, rd := range rec.RDates {
		rd = rd.In(loc)
		if rd.Add(duration).After(ws) && !rd.After(we) {
			starts = append(starts, rd)
		}
	}
	sortTimes(starts)
	starts = dedupeTimes(starts)

	var out []Occurrence
	for _, s := range starts {
		if isExcluded(s, rec.ExDates) {
			continue
		}
		p := NewPeriod(s)
		if duration > 0 {
			p = NewPeriodWithDuration(s, duration)
		}
		out = append(out, Occurrence{Source: rec, Period: p})
	}
	e.logger.Debug("expanded recurring entity",
		"uid", rec.UID, "occurrences", len(out),
		"window_start", windowStart, "window_end", windowEnd)
	return out
}

// isExcluded checks a start instant against the exception dates. Date-only
// exceptions (midnight UTC) exclude every occurrence on that calendar day.
func isExcluded(t time.Time, exdates []time.Time) bool {
	for _, ex := range exdates {
		if t.Equal(ex) {
			return true
		}
		if ex.Hour() == 0 && ex.Minute() == 0 && ex.Second() == 0 && ex.Location() == time.UTC {
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			if day.Equal(ex) {
				return true
			}
		}
	}
	return false
}

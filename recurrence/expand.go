package recurrence

import "time"

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if isLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

func daysInYear(year int) int {
	if isLeapYear(year) {
		return 366
	}
	return 365
}

// advance moves the anchor forward n base periods. When the target month is
// too short for the anchor's day-of-month the period is skipped (ok=false)
// unless clampDay is set, in which case the day collapses to 1 — used when a
// later Expand slot will replace the day anyway.
func advance(anchor time.Time, freq Frequency, n int, clampDay bool) (time.Time, bool) {
	switch freq {
	case Minutely:
		return anchor.Add(time.Duration(n) * time.Minute), true
	case Hourly:
		return anchor.Add(time.Duration(n) * time.Hour), true
	case Daily:
		return anchor.AddDate(0, 0, n), true
	case Weekly:
		return anchor.AddDate(0, 0, 7*n), true
	case Monthly:
		months := int(anchor.Month()) - 1 + n
		year := anchor.Year() + months/12
		months %= 12
		if months < 0 {
			months += 12
			year--
		}
		month := time.Month(months + 1)
		day := anchor.Day()
		if day > daysInMonth(year, month) {
			if !clampDay {
				return time.Time{}, false
			}
			day = 1
		}
		return time.Date(year, month, day, anchor.Hour(), anchor.Minute(), anchor.Second(), 0, anchor.Location()), true
	case Yearly:
		year := anchor.Year() + n
		day := anchor.Day()
		if day > daysInMonth(year, anchor.Month()) {
			if !clampDay {
				return time.Time{}, false
			}
			day = 1
		}
		return time.Date(year, anchor.Month(), day, anchor.Hour(), anchor.Minute(), anchor.Second(), 0, anchor.Location()), true
	}
	return time.Time{}, false
}

// periodFloor returns the first instant of the base period containing t.
// Expansion inside a period can reach back before the period's base
// date-time (a yearly rule with BYMONTH earlier than the anchor's month),
// so iteration bounds compare against the floor, not the base.
func periodFloor(t time.Time, freq Frequency) time.Time {
	switch freq {
	case Minutely:
		return t.Truncate(time.Minute)
	case Hourly:
		return t.Truncate(time.Hour)
	case Daily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case Weekly:
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return midnight.AddDate(0, 0, -mondayOffset(t.Weekday()))
	case Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case Yearly:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	}
	return t
}

// mondayOffset is the number of days from the most recent Monday (week
// start per RFC 5545 default WKST=MO).
func mondayOffset(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// skipPeriods estimates how many whole base periods lie strictly before
// windowStart. The elapsed time is divided by the longest possible period
// length (civil days can span 25 hours across a transition, months up to
// 31 days), so the estimate never jumps past a period that could still
// reach the window.
func skipPeriods(anchor, windowStart time.Time, freq Frequency, interval int) int {
	elapsed := windowStart.Sub(anchor)
	if elapsed <= 0 {
		return 0
	}
	var longest time.Duration
	switch freq {
	case Minutely:
		longest = time.Minute
	case Hourly:
		longest = time.Hour
	case Daily:
		longest = 25 * time.Hour
	case Weekly:
		longest = 7*24*time.Hour + time.Hour
	case Monthly:
		longest = 31*24*time.Hour + time.Hour
	case Yearly:
		longest = 366*24*time.Hour + time.Hour
	default:
		return 0
	}
	n := int(elapsed/(longest*time.Duration(interval))) - 1
	if n < 0 {
		return 0
	}
	return n
}

func expandMonths(cands []time.Time, months []int) []time.Time {
	var out []time.Time
	for _, c := range cands {
		for _, m := range months {
			month := time.Month(m)
			if c.Day() > daysInMonth(c.Year(), month) {
				continue
			}
			out = append(out, time.Date(c.Year(), month, c.Day(), c.Hour(), c.Minute(), c.Second(), 0, c.Location()))
		}
	}
	return out
}

func limitMonths(cands []time.Time, months []int) []time.Time {
	var out []time.Time
	for _, c := range cands {
		for _, m := range months {
			if int(c.Month()) == m {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// isoWeekMonday returns the Monday starting ISO week wk of the given year.
// Negative wk counts from the last ISO week of the year.
func isoWeekMonday(year, wk int) (time.Time, bool) {
	weeks := isoWeeksInYear(year)
	if wk < 0 {
		wk = weeks + wk + 1
	}
	if wk < 1 || wk > weeks {
		return time.Time{}, false
	}
	// January 4 is always inside ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	week1 := jan4.AddDate(0, 0, -mondayOffset(jan4.Weekday()))
	return week1.AddDate(0, 0, 7*(wk-1)), true
}

func isoWeeksInYear(year int) int {
	// December 28 is always inside the last ISO week of its year.
	_, wk := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return wk
}

func expandWeekNumbers(cands []time.Time, weeks []int) []time.Time {
	var out []time.Time
	for _, c := range cands {
		for _, wk := range weeks {
			monday, ok := isoWeekMonday(c.Year(), wk)
			if !ok {
				continue
			}
			d := monday.AddDate(0, 0, mondayOffset(c.Weekday()))
			out = append(out, time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, c.Location()))
		}
	}
	return out
}

func expandYearDays(cands []time.Time, yearDays []int) []time.Time {
	var out []time.Time
	for _, c := range cands {
		total := daysInYear(c.Year())
		for _, yd := range yearDays {
			day := yd
			if day < 0 {
				day = total + day + 1
			}
			if day < 1 || day > total {
				continue
			}
			d := time.Date(c.Year(), time.January, 1, c.Hour(), c.Minute(), c.Second(), 0, c.Location()).AddDate(0, 0, day-1)
			out = append(out, d)
		}
	}
	return out
}

func limitYearDays(cands []time.Time, yearDays []int) []time.Time {
	var out []time.Time
	for _, c := range cands {
		total := daysInYear(c.Year())
		for _, yd := range yearDays {
			day := yd
			if day < 0 {
				day = total + day + 1
			}
			if c.YearDay() == day {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func expandMonthDays(cands []time.Time, monthDays []int) []time.Time {
	var out []time.Time
	for _, c := range cands {
		dim := daysInMonth(c.Year(), c.Month())
		for _, md := range monthDays {
			day := md
			if day < 0 {
				day = dim + day + 1
			}
			if day < 1 || day > dim {
				continue
			}
			out = append(out, time.Date(c.Year(), c.Month(), day, c.Hour(), c.Minute(), c.Second(), 0, c.Location()))
		}
	}
	return out
}

func limitMonthDays(cands []time.Time, monthDays []int) []time.Time {
	var out []time.Time
	for _, c := range cands {
		dim := daysInMonth(c.Year(), c.Month())
		for _, md := range monthDays {
			day := md
			if day < 0 {
				day = dim + day + 1
			}
			if c.Day() == day {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// expandDays generates weekday candidates. The containing period depends on
// the rule: the ISO week for WEEKLY rules and YEARLY rules with BYWEEKNO,
// the month for MONTHLY rules and YEARLY rules with BYMONTH, otherwise the
// whole year.
func expandDays(cands []time.Time, r *Rule) []time.Time {
	var out []time.Time
	for _, c := range cands {
		switch {
		case r.Frequency == Weekly || (r.Frequency == Yearly && len(r.ByWeekNo) > 0):
			monday := c.AddDate(0, 0, -mondayOffset(c.Weekday()))
			for _, wd := range r.ByDay {
				out = append(out, monday.AddDate(0, 0, mondayOffset(wd.Weekday)))
			}
		case r.Frequency == Monthly || len(r.ByMonth) > 0:
			out = append(out, weekdaysInMonth(c, r.ByDay)...)
		default:
			out = append(out, weekdaysInYear(c, r.ByDay)...)
		}
	}
	return out
}

func weekdaysInMonth(c time.Time, byDay []WeekdayNum) []time.Time {
	dim := daysInMonth(c.Year(), c.Month())
	var out []time.Time
	for _, wd := range byDay {
		var matches []time.Time
		for day := 1; day <= dim; day++ {
			d := time.Date(c.Year(), c.Month(), day, c.Hour(), c.Minute(), c.Second(), 0, c.Location())
			if d.Weekday() == wd.Weekday {
				matches = append(matches, d)
			}
		}
		out = append(out, selectOrdinal(matches, wd.Ordinal)...)
	}
	return out
}

func weekdaysInYear(c time.Time, byDay []WeekdayNum) []time.Time {
	var out []time.Time
	for _, wd := range byDay {
		var matches []time.Time
		d := time.Date(c.Year(), time.January, 1, c.Hour(), c.Minute(), c.Second(), 0, c.Location())
		d = d.AddDate(0, 0, (7+int(wd.Weekday)-int(d.Weekday()))%7)
		for d.Year() == c.Year() {
			matches = append(matches, d)
			d = d.AddDate(0, 0, 7)
		}
		out = append(out, selectOrdinal(matches, wd.Ordinal)...)
	}
	return out
}

func selectOrdinal(matches []time.Time, ordinal int) []time.Time {
	switch {
	case ordinal == 0:
		return matches
	case ordinal > 0:
		if ordinal <= len(matches) {
			return matches[ordinal-1 : ordinal]
		}
	default:
		if -ordinal <= len(matches) {
			i := len(matches) + ordinal
			return matches[i : i+1]
		}
	}
	return nil
}

func limitDays(cands []time.Time, byDay []WeekdayNum) []time.Time {
	var out []time.Time
	for _, c := range cands {
		for _, wd := range byDay {
			if c.Weekday() != wd.Weekday {
				continue
			}
			if wd.Ordinal != 0 && !ordinalMatchesMonth(c, wd.Ordinal) {
				continue
			}
			out = append(out, c)
			break
		}
	}
	return out
}

// ordinalMatchesMonth reports whether c is the ordinal-th occurrence of its
// weekday within its month (negative ordinals count from the month's end).
func ordinalMatchesMonth(c time.Time, ordinal int) bool {
	if ordinal > 0 {
		return (c.Day()-1)/7+1 == ordinal
	}
	fromEnd := (daysInMonth(c.Year(), c.Month())-c.Day())/7 + 1
	return fromEnd == -ordinal
}

func expandField(cands []time.Time, values []int, set func(time.Time, int) time.Time) []time.Time {
	var out []time.Time
	for _, c := range cands {
		for _, v := range values {
			out = append(out, set(c, v))
		}
	}
	return out
}

func limitField(cands []time.Time, values []int, get func(time.Time) int) []time.Time {
	var out []time.Time
	for _, c := range cands {
		for _, v := range values {
			if get(c) == v {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func setHour(c time.Time, h int) time.Time {
	return time.Date(c.Year(), c.Month(), c.Day(), h, c.Minute(), c.Second(), 0, c.Location())
}

func setMinute(c time.Time, m int) time.Time {
	return time.Date(c.Year(), c.Month(), c.Day(), c.Hour(), m, c.Second(), 0, c.Location())
}

func setSecond(c time.Time, s int) time.Time {
	return time.Date(c.Year(), c.Month(), c.Day(), c.Hour(), c.Minute(), s, 0, c.Location())
}

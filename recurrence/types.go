package recurrence

import (
	"fmt"
	"time"

	"github.com/samber/mo"
)

// Frequency is the base repetition unit of a recurrence rule.
type Frequency int

const (
	Minutely Frequency = iota
	Hourly
	Daily
	Weekly
	Monthly
	Yearly
)

var frequencyNames = map[Frequency]string{
	Minutely: "MINUTELY",
	Hourly:   "HOURLY",
	Daily:    "DAILY",
	Weekly:   "WEEKLY",
	Monthly:  "MONTHLY",
	Yearly:   "YEARLY",
}

func (f Frequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FREQUENCY(%d)", int(f))
}

// WeekdayNum is a BYDAY entry: a weekday plus an optional ordinal.
// Ordinal 0 means "every such weekday", a positive n means "the nth such
// weekday in the period" and -1 means "the last such weekday in the period".
type WeekdayNum struct {
	Weekday time.Weekday
	Ordinal int
}

var weekdayCodes = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

func (w WeekdayNum) String() string {
	code := weekdayCodes[w.Weekday]
	if w.Ordinal == 0 {
		return code
	}
	return fmt.Sprintf("%d%s", w.Ordinal, code)
}

// Rule is a structurally valid recurrence definition. The engine does not
// re-validate value ranges; callers that build rules from untrusted text go
// through ParseRule, which does.
type Rule struct {
	Frequency Frequency
	Interval  int // 0 is treated as 1

	ByMonth    []int        // 1..12
	ByWeekNo   []int        // 1..53 or -53..-1
	ByYearDay  []int        // 1..366 or -366..-1
	ByMonthDay []int        // 1..31 or -31..-1
	ByDay      []WeekdayNum
	ByHour     []int // 0..23
	ByMinute   []int // 0..59
	BySecond   []int // 0..59
	BySetPos   []int // 1-based, negative counts from the end

	Count mo.Option[int]
	Until mo.Option[time.Time]
}

// interval returns the effective repetition interval.
func (r *Rule) interval() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}

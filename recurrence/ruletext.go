package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"
)

const untilLayout = "20060102T150405Z"

// String serializes the rule in RRULE property-value form, e.g.
// "FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU". Ordinal weekdays keep their sign and
// digits, so "last Sunday" is -1SU, distinct from 4SU.
func (r *Rule) String() string {
	parts := []string{"FREQ=" + r.Frequency.String()}
	if r.Interval > 1 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(r.Interval))
	}
	if s := joinInts(r.ByMonth); s != "" {
		parts = append(parts, "BYMONTH="+s)
	}
	if len(r.ByDay) > 0 {
		tokens := make([]string, len(r.ByDay))
		for i, wd := range r.ByDay {
			tokens[i] = wd.String()
		}
		parts = append(parts, "BYDAY="+strings.Join(tokens, ","))
	}
	if s := joinInts(r.ByMonthDay); s != "" {
		parts = append(parts, "BYMONTHDAY="+s)
	}
	if s := joinInts(r.ByYearDay); s != "" {
		parts = append(parts, "BYYEARDAY="+s)
	}
	if s := joinInts(r.ByWeekNo); s != "" {
		parts = append(parts, "BYWEEKNO="+s)
	}
	if s := joinInts(r.ByHour); s != "" {
		parts = append(parts, "BYHOUR="+s)
	}
	if s := joinInts(r.ByMinute); s != "" {
		parts = append(parts, "BYMINUTE="+s)
	}
	if s := joinInts(r.BySecond); s != "" {
		parts = append(parts, "BYSECOND="+s)
	}
	if s := joinInts(r.BySetPos); s != "" {
		parts = append(parts, "BYSETPOS="+s)
	}
	if n, ok := r.Count.Get(); ok {
		parts = append(parts, "COUNT="+strconv.Itoa(n))
	}
	if u, ok := r.Until.Get(); ok {
		parts = append(parts, "UNTIL="+u.UTC().Format(untilLayout))
	}
	return strings.Join(parts, ";")
}

// ParseRule parses an RRULE property value. Malformed input is a
// recoverable error; the returned rule is nil in that case.
func ParseRule(s string) (*Rule, error) {
	r := &Rule{}
	sawFreq := false
	for _, part := range strings.Split(strings.TrimSuffix(s, ";"), ";") {
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return nil, fmt.Errorf("malformed rule part %q", part)
		}
		var err error
		switch strings.ToUpper(key) {
		case "FREQ":
			r.Frequency, err = parseFrequency(value)
			sawFreq = err == nil
		case "INTERVAL":
			r.Interval, err = strconv.Atoi(value)
		case "BYMONTH":
			r.ByMonth, err = splitInts(value)
		case "BYDAY":
			r.ByDay, err = parseWeekdayList(value)
		case "BYMONTHDAY":
			r.ByMonthDay, err = splitInts(value)
		case "BYYEARDAY":
			r.ByYearDay, err = splitInts(value)
		case "BYWEEKNO":
			r.ByWeekNo, err = splitInts(value)
		case "BYHOUR":
			r.ByHour, err = splitInts(value)
		case "BYMINUTE":
			r.ByMinute, err = splitInts(value)
		case "BYSECOND":
			r.BySecond, err = splitInts(value)
		case "BYSETPOS":
			r.BySetPos, err = splitInts(value)
		case "COUNT":
			var n int
			if n, err = strconv.Atoi(value); err == nil {
				r.Count = mo.Some(n)
			}
		case "UNTIL":
			var u time.Time
			if u, err = time.Parse(untilLayout, value); err == nil {
				r.Until = mo.Some(u)
			}
		default:
			return nil, fmt.Errorf("unsupported rule part %q", key)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", strings.ToUpper(key), value, err)
		}
	}
	if !sawFreq {
		return nil, fmt.Errorf("rule %q has no FREQ part", s)
	}
	return r, nil
}

func parseFrequency(s string) (Frequency, error) {
	for f, name := range frequencyNames {
		if name == strings.ToUpper(s) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unsupported frequency %q", s)
}

func parseWeekdayList(s string) ([]WeekdayNum, error) {
	var out []WeekdayNum
	for _, token := range strings.Split(s, ",") {
		wd, err := parseWeekdayNum(token)
		if err != nil {
			return nil, err
		}
		out = append(out, wd)
	}
	return out, nil
}

func parseWeekdayNum(token string) (WeekdayNum, error) {
	if len(token) < 2 {
		return WeekdayNum{}, fmt.Errorf("weekday token %q too short", token)
	}
	code := token[len(token)-2:]
	prefix := token[:len(token)-2]
	var day time.Weekday
	found := false
	for wd, c := range weekdayCodes {
		if c == code {
			day, found = wd, true
			break
		}
	}
	if !found {
		return WeekdayNum{}, fmt.Errorf("invalid weekday code %q", code)
	}
	ordinal := 0
	if prefix != "" {
		n, err := strconv.Atoi(prefix)
		if err != nil {
			return WeekdayNum{}, fmt.Errorf("non-numeric weekday ordinal %q: %w", prefix, err)
		}
		ordinal = n
	}
	return WeekdayNum{Weekday: day, Ordinal: ordinal}, nil
}

func joinInts(vs []int) string {
	if len(vs) == 0 {
		return ""
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

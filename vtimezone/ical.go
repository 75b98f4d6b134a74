package vtimezone

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/emersion/go-ical"
)

const localDateTimeLayout = "20060102T150405"

// EncodeVTimeZone renders compiled blocks as a VTIMEZONE component: one
// STANDARD/DAYLIGHT child per block, each carrying DTSTART, TZOFFSETFROM,
// TZOFFSETTO, TZNAME and either RRULE or RDATE lines.
func EncodeVTimeZone(tzID string, blocks []InfoBlock) *ical.Component {
	comp := &ical.Component{Name: ical.CompTimezone, Props: make(ical.Props)}
	comp.Props.SetText(ical.PropTimezoneID, tzID)
	for _, b := range blocks {
		comp.Children = append(comp.Children, encodeBlock(b))
	}
	return comp
}

func encodeBlock(b InfoBlock) *ical.Component {
	name := ical.CompTimezoneStandard
	if b.Kind == Daylight {
		name = ical.CompTimezoneDaylight
	}
	comp := &ical.Component{Name: name, Props: make(ical.Props)}
	setValue(comp.Props, ical.PropDateTimeStart, b.Start.Format(localDateTimeLayout))
	setValue(comp.Props, ical.PropTimezoneOffsetFrom, FormatUTCOffset(b.OffsetFrom))
	setValue(comp.Props, ical.PropTimezoneOffsetTo, FormatUTCOffset(b.OffsetTo))
	comp.Props.SetText(ical.PropTimezoneName, b.Name)
	for _, r := range b.Rules {
		prop := ical.NewProp(ical.PropRecurrenceRule)
		prop.Value = r.String()
		comp.Props.Add(prop)
	}
	for _, list := range b.Dates {
		prop := ical.NewProp(ical.PropRecurrenceDates)
		prop.Value = formatPeriodList(list)
		comp.Props.Add(prop)
	}
	return comp
}

// setValue stores a raw property value, leaving the property's default
// value type alone (SetText would tag DTSTART and the offsets VALUE=TEXT).
func setValue(props ical.Props, name, value string) {
	prop := ical.NewProp(name)
	prop.Value = value
	props.Set(prop)
}

// DecodeVTimeZone parses a VTIMEZONE component back into info blocks.
func DecodeVTimeZone(comp *ical.Component) (string, []InfoBlock, error) {
	if comp.Name != ical.CompTimezone {
		return "", nil, fmt.Errorf("expected %s component, got %s", ical.CompTimezone, comp.Name)
	}
	tzID, err := comp.Props.Text(ical.PropTimezoneID)
	if err != nil {
		return "", nil, fmt.Errorf("component has no TZID: %w", err)
	}
	var blocks []InfoBlock
	for _, child := range comp.Children {
		var kind Kind
		switch child.Name {
		case ical.CompTimezoneStandard:
			kind = Standard
		case ical.CompTimezoneDaylight:
			kind = Daylight
		default:
			continue
		}
		block, err := decodeBlock(child, kind, tzID)
		if err != nil {
			return "", nil, err
		}
		blocks = append(blocks, block)
	}
	return tzID, blocks, nil
}

func decodeBlock(comp *ical.Component, kind Kind, tzID string) (InfoBlock, error) {
	block := InfoBlock{Kind: kind}
	start := comp.Props.Get(ical.PropDateTimeStart)
	if start == nil {
		return InfoBlock{}, fmt.Errorf("%s block has no DTSTART", kind)
	}
	var err error
	if block.Start, err = time.Parse(localDateTimeLayout, start.Value); err != nil {
		return InfoBlock{}, fmt.Errorf("invalid DTSTART %q: %w", start.Value, err)
	}
	from := comp.Props.Get(ical.PropTimezoneOffsetFrom)
	if from == nil {
		return InfoBlock{}, fmt.Errorf("%s block has no TZOFFSETFROM", kind)
	}
	if block.OffsetFrom, err = ParseUTCOffset(from.Value); err != nil {
		return InfoBlock{}, err
	}
	to := comp.Props.Get(ical.PropTimezoneOffsetTo)
	if to == nil {
		return InfoBlock{}, fmt.Errorf("%s block has no TZOFFSETTO", kind)
	}
	if block.OffsetTo, err = ParseUTCOffset(to.Value); err != nil {
		return InfoBlock{}, err
	}
	if nameProp := comp.Props.Get(ical.PropTimezoneName); nameProp != nil {
		block.Name = nameProp.Value
	}

	for _, prop := range comp.Props[ical.PropRecurrenceRule] {
		rule, err := recurrence.ParseRule(prop.Value)
		if err != nil {
			return InfoBlock{}, fmt.Errorf("invalid RRULE in %s block: %w", kind, err)
		}
		block.Rules = append(block.Rules, *rule)
	}
	for _, prop := range comp.Props[ical.PropRecurrenceDates] {
		list, err := parsePeriodList(prop.Value, tzID)
		if err != nil {
			return InfoBlock{}, fmt.Errorf("invalid RDATE in %s block: %w", kind, err)
		}
		block.Dates = append(block.Dates, list)
	}
	return block, nil
}

// FormatUTCOffset renders a duration as an iCalendar UTC offset, e.g.
// "+0100" or "-0930".
func FormatUTCOffset(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	return fmt.Sprintf("%s%02d%02d", sign, h, m)
}

// ParseUTCOffset parses "+hhmm" / "-hhmm" (with optional trailing seconds).
func ParseUTCOffset(s string) (time.Duration, error) {
	if len(s) != 5 && len(s) != 7 {
		return 0, fmt.Errorf("invalid UTC offset %q", s)
	}
	sign := time.Duration(1)
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return 0, fmt.Errorf("invalid UTC offset %q", s)
	}
	h, err1 := strconv.Atoi(s[1:3])
	m, err2 := strconv.Atoi(s[3:5])
	sec := 0
	var err3 error
	if len(s) == 7 {
		sec, err3 = strconv.Atoi(s[5:7])
	}
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, fmt.Errorf("invalid UTC offset %q", s)
	}
	return sign * (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second), nil
}

// formatPeriodList renders a period list as an RDATE value. Instantaneous
// periods use the DATE-TIME form; bounded periods use the PERIOD form with
// an explicit end or duration.
func formatPeriodList(list recurrence.PeriodList) string {
	parts := make([]string, len(list.Periods))
	for i, p := range list.Periods {
		start := p.Start.Format(localDateTimeLayout)
		if end, ok := p.End.Get(); ok {
			parts[i] = start + "/" + end.Format(localDateTimeLayout)
		} else if d, ok := p.Duration.Get(); ok {
			parts[i] = start + "/" + formatDuration(d)
		} else {
			parts[i] = start
		}
	}
	return strings.Join(parts, ",")
}

func parsePeriodList(value, tzID string) (recurrence.PeriodList, error) {
	list := recurrence.PeriodList{TZID: tzID}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		startText, rest, bounded := strings.Cut(part, "/")
		start, err := time.Parse(localDateTimeLayout, startText)
		if err != nil {
			return recurrence.PeriodList{}, fmt.Errorf("invalid period start %q: %w", startText, err)
		}
		switch {
		case !bounded:
			list.Periods = append(list.Periods, recurrence.NewPeriod(start))
		case strings.HasPrefix(rest, "P"):
			d, err := parseDuration(rest)
			if err != nil {
				return recurrence.PeriodList{}, err
			}
			list.Periods = append(list.Periods, recurrence.NewPeriodWithDuration(start, d))
		default:
			end, err := time.Parse(localDateTimeLayout, rest)
			if err != nil {
				return recurrence.PeriodList{}, fmt.Errorf("invalid period end %q: %w", rest, err)
			}
			list.Periods = append(list.Periods, recurrence.NewPeriodWithEnd(start, end))
		}
	}
	return list, nil
}

// formatDuration renders a duration in iCalendar form, e.g. "PT1H" or
// "P1DT30M". Only day/hour/minute/second precision is needed here.
func formatDuration(d time.Duration) string {
	var sb strings.Builder
	if d < 0 {
		sb.WriteByte('-')
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	s := d % time.Minute / time.Second
	sb.WriteByte('P')
	if days > 0 {
		fmt.Fprintf(&sb, "%dD", days)
	}
	if h > 0 || m > 0 || s > 0 || days == 0 {
		sb.WriteByte('T')
		if h > 0 {
			fmt.Fprintf(&sb, "%dH", h)
		}
		if m > 0 {
			fmt.Fprintf(&sb, "%dM", m)
		}
		if s > 0 || (h == 0 && m == 0) {
			fmt.Fprintf(&sb, "%dS", s)
		}
	}
	return sb.String()
}

// parseDuration parses the iCalendar duration subset produced by
// formatDuration.
func parseDuration(s string) (time.Duration, error) {
	orig := s
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "+")
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("invalid duration %q", orig)
	}
	s = s[1:]
	var d time.Duration
	inTime := false
	num := 0
	hasNum := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
			hasNum = true
		case r == 'T':
			inTime = true
		case r == 'W' && hasNum:
			d += time.Duration(num) * 7 * 24 * time.Hour
			num, hasNum = 0, false
		case r == 'D' && hasNum:
			d += time.Duration(num) * 24 * time.Hour
			num, hasNum = 0, false
		case r == 'H' && hasNum && inTime:
			d += time.Duration(num) * time.Hour
			num, hasNum = 0, false
		case r == 'M' && hasNum && inTime:
			d += time.Duration(num) * time.Minute
			num, hasNum = 0, false
		case r == 'S' && hasNum && inTime:
			d += time.Duration(num) * time.Second
			num, hasNum = 0, false
		default:
			return 0, fmt.Errorf("invalid duration %q", orig)
		}
	}
	if hasNum {
		return 0, fmt.Errorf("invalid duration %q", orig)
	}
	if neg {
		d = -d
	}
	return d, nil
}

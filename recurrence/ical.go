package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

// Recurring is a recurring entity: an anchor span plus the definition of
// how it repeats. It is the Source every expanded Occurrence points back to.
type Recurring struct {
	UID     string
	Start   time.Time // anchor start
	End     time.Time // anchor end; equal to Start for instantaneous entities
	Rule    *Rule     // nil for entities recurring only via RDates
	RDates  []time.Time
	ExDates []time.Time
}

// NewRecurring builds a recurring entity with a generated UID.
func NewRecurring(start, end time.Time, rule *Rule) *Recurring {
	return &Recurring{UID: uuid.NewString(), Start: start, End: end, Rule: rule}
}

// Duration is the anchor span length applied to every occurrence.
func (r *Recurring) Duration() time.Duration {
	if r.End.Before(r.Start) {
		return 0
	}
	return r.End.Sub(r.Start)
}

// FromComponent extracts a recurring entity from an iCalendar component
// (typically a VEVENT). The component must carry DTSTART; DTEND/DURATION,
// RRULE, RDATE and EXDATE are optional.
func FromComponent(comp *ical.Component) (*Recurring, error) {
	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return nil, fmt.Errorf("component has no DTSTART")
	}
	start, err := startProp.DateTime(nil)
	if err != nil {
		return nil, fmt.Errorf("invalid DTSTART: %w", err)
	}
	end := start
	if endProp := comp.Props.Get(ical.PropDateTimeEnd); endProp != nil {
		dtend, err := endProp.DateTime(nil)
		if err != nil {
			return nil, fmt.Errorf("invalid DTEND: %w", err)
		}
		end = dtend
	} else if durProp := comp.Props.Get(ical.PropDuration); durProp != nil {
		if d, err := durProp.Duration(); err == nil {
			end = start.Add(d)
		}
	}

	rec := &Recurring{UID: uuid.NewString(), Start: start, End: end}
	if uidProp := comp.Props.Get(ical.PropUID); uidProp != nil && uidProp.Value != "" {
		rec.UID = uidProp.Value
	}
	if rruleProp := comp.Props.Get(ical.PropRecurrenceRule); rruleProp != nil && rruleProp.Value != "" {
		rule, err := ParseRule(rruleProp.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid RRULE: %w", err)
		}
		rec.Rule = rule
	}
	if rdateProp := comp.Props.Get(ical.PropRecurrenceDates); rdateProp != nil && rdateProp.Value != "" {
		if rec.RDates, err = parseDateList(rdateProp.Value, rdateProp.Params); err != nil {
			return nil, fmt.Errorf("invalid RDATE: %w", err)
		}
	}
	if exdateProp := comp.Props.Get(ical.PropExceptionDates); exdateProp != nil && exdateProp.Value != "" {
		if rec.ExDates, err = parseDateList(exdateProp.Value, exdateProp.Params); err != nil {
			return nil, fmt.Errorf("invalid EXDATE: %w", err)
		}
	}
	return rec, nil
}

// parseDateList parses a comma-separated RDATE/EXDATE value. Date-only
// entries (VALUE=DATE) are stored as midnight UTC; date-times without a
// zone designator are treated as UTC.
func parseDateList(value string, params map[string][]string) ([]time.Time, error) {
	dateOnly := false
	if params != nil {
		if vp := params["VALUE"]; len(vp) > 0 && strings.ToUpper(vp[0]) == "DATE" {
			dateOnly = true
		}
	}

	var out []time.Time
	for _, s := range strings.Split(value, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !dateOnly {
			if t, err := time.Parse(untilLayout, s); err == nil {
				out = append(out, t)
				continue
			}
			if t, err := time.Parse("20060102T150405", s); err == nil {
				out = append(out, t.UTC())
				continue
			}
		}
		t, err := time.Parse("20060102", s)
		if err != nil {
			return nil, fmt.Errorf("unparseable date %q", s)
		}
		out = append(out, time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	}
	return out, nil
}

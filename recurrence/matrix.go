package recurrence

// Directive says how one BYxxx rule part behaves at a given frequency:
// it either generates additional candidate date-times (Expand), filters
// the candidates generated so far (Limit), or is ignored (NotApplicable).
type Directive int

const (
	NotApplicable Directive = iota
	Limit
	Expand
)

func (d Directive) String() string {
	switch d {
	case Limit:
		return "Limit"
	case Expand:
		return "Expand"
	default:
		return "N/A"
	}
}

// RulePart indexes the nine slots of a directive row, in the fixed
// evaluation order of RFC 5545 section 3.3.10.
type RulePart int

const (
	PartMonth RulePart = iota
	PartWeekNo
	PartYearDay
	PartMonthDay
	PartDay
	PartHour
	PartMinute
	PartSecond
	PartSetPos
	numParts
)

// DirectiveRow holds one directive per rule part.
type DirectiveRow [numParts]Directive

// baseDirectives is the frequency/rule-part behavior table. Initialized
// once, never mutated; per-rule adjustments happen in Directives.
var baseDirectives = map[Frequency]DirectiveRow{
	Minutely: {Limit, NotApplicable, Limit, Limit, Limit, Limit, Limit, Expand, Limit},
	Hourly:   {Limit, NotApplicable, Limit, Limit, Limit, Expand, Expand, Limit, Limit},
	Daily:    {Limit, NotApplicable, NotApplicable, Limit, Limit, Expand, Expand, Expand, Limit},
	Weekly:   {Limit, NotApplicable, NotApplicable, NotApplicable, Expand, Expand, Expand, Expand, Limit},
	Monthly:  {Limit, NotApplicable, NotApplicable, Expand, Expand, Expand, Expand, Expand, Limit},
	Yearly:   {Expand, Expand, Expand, Expand, Expand, Expand, Expand, Expand, Limit},
}

// Directives returns the directive row for a rule. BYDAY cannot expand
// independently of BYMONTHDAY or BYYEARDAY, so its slot is downgraded to
// Limit when either of those parts is present at MONTHLY or YEARLY
// frequency.
func Directives(r *Rule) DirectiveRow {
	row := baseDirectives[r.Frequency]
	switch r.Frequency {
	case Monthly:
		if len(r.ByMonthDay) > 0 {
			row[PartDay] = Limit
		}
	case Yearly:
		if len(r.ByYearDay) > 0 || len(r.ByMonthDay) > 0 {
			row[PartDay] = Limit
		}
	}
	return row
}

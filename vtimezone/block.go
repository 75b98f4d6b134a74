package vtimezone

import (
	"time"

	"github.com/cyp0633/librecur/recurrence"
)

// Kind tags an info block as STANDARD or DAYLIGHT.
type Kind string

const (
	Standard Kind = "STANDARD"
	Daylight Kind = "DAYLIGHT"
)

// InfoBlock is one STANDARD or DAYLIGHT sub-definition of a timezone.
// Exactly one of Rules and Dates is populated: ongoing patterns carry a
// yearly recurrence rule, historical patterns carry explicit date lists.
type InfoBlock struct {
	Kind       Kind
	Start      time.Time // local date-time in the pre-transition frame
	OffsetFrom time.Duration
	OffsetTo   time.Duration
	Name       string
	Rules      []recurrence.Rule
	Dates      []recurrence.PeriodList
}

// Equal compares blocks by kind, offsets, name and rules-or-dates. Block
// start is deliberately excluded: it is derivable from the first rule
// occurrence or date entry.
func (b InfoBlock) Equal(o InfoBlock) bool {
	if b.Kind != o.Kind || b.OffsetFrom != o.OffsetFrom || b.OffsetTo != o.OffsetTo || b.Name != o.Name {
		return false
	}
	if len(b.Rules) != len(o.Rules) || len(b.Dates) != len(o.Dates) {
		return false
	}
	for i := range b.Rules {
		if b.Rules[i].String() != o.Rules[i].String() {
			return false
		}
	}
	for i := range b.Dates {
		if !b.Dates[i].Equal(o.Dates[i]) {
			return false
		}
	}
	return true
}

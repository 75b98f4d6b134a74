package vtimezone

import (
	"time"

	"github.com/cyp0633/librecur/recurrence"
	"github.com/samber/mo"
)

// oldestMember returns the chronologically oldest interval of a family.
func oldestMember(family []ZoneInterval) mo.Option[ZoneInterval] {
	var anchor mo.Option[ZoneInterval]
	for _, iv := range family {
		if iv.Start == nil {
			continue
		}
		if cur, ok := anchor.Get(); !ok || iv.Start.Before(*cur.Start) {
			anchor = mo.Some(iv)
		}
	}
	return anchor
}

// findPredecessor looks up the interval that ends exactly where the anchor
// starts.
func findPredecessor(all []ZoneInterval, anchor ZoneInterval) mo.Option[ZoneInterval] {
	if anchor.Start == nil {
		return mo.None[ZoneInterval]()
	}
	for _, iv := range all {
		if iv.End != nil && iv.End.Equal(*anchor.Start) {
			return mo.Some(iv)
		}
	}
	return mo.None[ZoneInterval]()
}

// transitionDelta is the offset change at the anchor's transition. With no
// known predecessor, +-1 hour is a guess kept for output compatibility,
// not a derived value.
func transitionDelta(all []ZoneInterval, anchor ZoneInterval) time.Duration {
	if pred, ok := findPredecessor(all, anchor).Get(); ok {
		return pred.WallOffset - anchor.WallOffset
	}
	if anchor.IsDaylight() {
		return -time.Hour
	}
	return time.Hour
}

func weekOfMonth(t time.Time) int {
	return (t.Day()-1)/7 + 1
}

// blockSkeleton derives the fields shared by rule and date synthesis. The
// block's local start is the anchor's civil start shifted into the
// pre-transition frame.
func blockSkeleton(family, all []ZoneInterval) (InfoBlock, ZoneInterval, time.Duration, error) {
	anchor, ok := oldestMember(family).Get()
	if !ok {
		return InfoBlock{}, ZoneInterval{}, 0, &Error{Type: ErrInternal, Message: "interval family has no usable member"}
	}
	delta := transitionDelta(all, anchor)
	// Same polarity predicate as the grouper, so a negative-savings
	// interval synthesizes the kind of block its family was grouped under.
	kind := Standard
	if anchor.IsDaylight() {
		kind = Daylight
	}
	block := InfoBlock{
		Kind:       kind,
		Start:      anchor.LocalStart().Add(delta),
		OffsetFrom: anchor.WallOffset + delta,
		OffsetTo:   anchor.WallOffset,
		Name:       anchor.Name,
	}
	return block, anchor, delta, nil
}

// synthesizeRule builds the block for a current, ongoing pattern: a yearly
// rule on the anchor's month and weekday. A week-of-month of 5 is always
// expressed as "last"; a week-of-month of 4 is bumped to "last" when any
// other family member falls in week 5, so the rule stays correct in years
// where the month has a fifth such weekday.
func synthesizeRule(family, all []ZoneInterval) (InfoBlock, error) {
	block, _, delta, err := blockSkeleton(family, all)
	if err != nil {
		return InfoBlock{}, err
	}
	local := block.Start
	ordinal := weekOfMonth(local)
	switch ordinal {
	case 5:
		ordinal = -1
	case 4:
		for _, m := range family {
			if m.Start == nil {
				continue
			}
			if weekOfMonth(m.LocalStart().Add(delta)) == 5 {
				ordinal = -1
				break
			}
		}
	}
	block.Rules = []recurrence.Rule{{
		Frequency: recurrence.Yearly,
		ByMonth:   []int{int(local.Month())},
		ByDay:     []recurrence.WeekdayNum{{Weekday: local.Weekday(), Ordinal: ordinal}},
	}}
	return block, nil
}

// synthesizeDates builds the block for a historical pattern: one explicit
// period per family member, all shifted by the anchor's delta.
func synthesizeDates(family, all []ZoneInterval) (InfoBlock, error) {
	block, _, delta, err := blockSkeleton(family, all)
	if err != nil {
		return InfoBlock{}, err
	}
	sorted := sortByStartDesc(family)
	list := recurrence.PeriodList{}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Start == nil {
			continue
		}
		list.Periods = append(list.Periods, recurrence.NewPeriod(sorted[i].LocalStart().Add(delta)))
	}
	block.Dates = []recurrence.PeriodList{list}
	return block, nil
}

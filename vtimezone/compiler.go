package vtimezone

import (
	"log/slog"
	"sort"
	"time"

	"github.com/cyp0633/librecur/recurrence"
)

// minSupportedYear floors how far back compilation reaches.
const minSupportedYear = 1900

// lookbackYears is queried on top of the earliest boundary so that enough
// history exists to detect a recurring pattern reliably.
const lookbackYears = 9

// Compiler turns a timezone's transition history into STANDARD/DAYLIGHT
// info blocks.
type Compiler struct {
	source Source
	logger *slog.Logger
	now    func() time.Time
}

// NewCompiler creates a compiler over a zone interval source. A nil logger
// falls back to slog.Default().
func NewCompiler(source Source, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{source: source, logger: logger, now: time.Now}
}

// earliestBoundary steps one year back from the earliest supported instant,
// floored at 1900. Feb 29 normalizes to Feb 28, since the target year (and
// 1900 itself) need not be a leap year.
func earliestBoundary(earliestSupported time.Time) time.Time {
	year := earliestSupported.Year() - 1
	if year < minSupportedYear {
		year = minSupportedYear
	}
	month, day := earliestSupported.Month(), earliestSupported.Day()
	if month == time.February && day == 29 {
		day = 28
	}
	return time.Date(year, month, day,
		earliestSupported.Hour(), earliestSupported.Minute(), earliestSupported.Second(), 0,
		earliestSupported.Location())
}

// Compile builds the ordered info blocks for a timezone identifier: the
// current standard block first, the currently-active daylight block second
// when the zone still alternates, then historical blocks when requested.
func (c *Compiler) Compile(tzID string, earliestSupported time.Time, includeHistorical bool) ([]InfoBlock, error) {
	boundary := earliestBoundary(earliestSupported)
	raw, err := c.source.Intervals(tzID, boundary.AddDate(-lookbackYears, 0, 0), c.now())
	if err != nil {
		return nil, &Error{Type: ErrInvalidTimezone, Message: "cannot resolve timezone " + tzID, Err: err}
	}

	// Intervals with an unbounded start are pattern noise, not usable
	// transitions.
	intervals := make([]ZoneInterval, 0, len(raw))
	for _, iv := range raw {
		if iv.Start != nil {
			intervals = append(intervals, iv)
		}
	}

	if len(intervals) == 0 {
		block, err := c.fixedOffsetBlock(tzID, boundary)
		if err != nil {
			return nil, err
		}
		return []InfoBlock{block}, nil
	}

	families := groupFamilies(intervals)
	var blocks []InfoBlock

	if std, ok := families[familyKey(standardFamily, 1)]; ok {
		block, err := synthesizeRule(std, intervals)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
		delete(families, familyKey(standardFamily, 1))

		// A finite end on the newest standard interval means the zone
		// still alternates; an unbounded end means daylight saving was
		// abolished, and any leftover daylight family is history only.
		newest := sortByStartDesc(std)[0]
		if newest.End != nil {
			if dl, ok := families[familyKey(daylightFamily, 1)]; ok {
				active := pruneToConsecutive(dl)
				block, err := synthesizeRule(active, intervals)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, block)
				delete(families, familyKey(daylightFamily, 1))
			}
		}
	}

	if !includeHistorical || len(families) == 0 {
		c.logger.Debug("compiled timezone", "tzid", tzID, "blocks", len(blocks))
		return blocks, nil
	}

	historical, err := c.historicalBlocks(tzID, families, intervals, boundary)
	if err != nil {
		return nil, err
	}
	blocks = append(blocks, historical...)
	c.logger.Debug("compiled timezone", "tzid", tzID, "blocks", len(blocks), "historical", len(historical))
	return blocks, nil
}

// fixedOffsetBlock covers a permanently fixed-offset zone: one standard
// block spanning a single hour from Jan 1 of the boundary year, at the
// zone's maximum offset with zero savings.
func (c *Compiler) fixedOffsetBlock(tzID string, boundary time.Time) (InfoBlock, error) {
	offset, err := c.source.MaxOffset(tzID)
	if err != nil {
		return InfoBlock{}, &Error{Type: ErrInvalidTimezone, Message: "cannot resolve timezone " + tzID, Err: err}
	}
	start := time.Date(boundary.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return InfoBlock{
		Kind:       Standard,
		Start:      start,
		OffsetFrom: offset,
		OffsetTo:   offset,
		Name:       tzID,
		Dates: []recurrence.PeriodList{{
			TZID:    tzID,
			Periods: []recurrence.Period{recurrence.NewPeriodWithDuration(start, time.Hour)},
		}},
	}, nil
}

// historicalBlocks consumes the remaining families: every interval still
// relevant at the boundary is matched against its signature peers and each
// matched set becomes one explicit-dates block. Oldest sets come out first
// so repeated compilations emit identical order.
func (c *Compiler) historicalBlocks(tzID string, families map[string][]ZoneInterval, all []ZoneInterval, boundary time.Time) ([]InfoBlock, error) {
	var remaining []ZoneInterval
	for _, members := range families {
		for _, iv := range members {
			if iv.Start == nil {
				continue
			}
			if iv.End != nil && iv.End.Before(boundary) {
				continue
			}
			remaining = append(remaining, iv)
		}
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		return remaining[i].Start.Before(*remaining[j].Start)
	})

	var blocks []InfoBlock
	for len(remaining) > 0 {
		seed := remaining[0]
		var matched, rest []ZoneInterval
		for _, iv := range remaining {
			if sameSignature(seed, iv) {
				matched = append(matched, iv)
			} else {
				rest = append(rest, iv)
			}
		}
		block, err := synthesizeDates(matched, all)
		if err != nil {
			return nil, err
		}
		for i := range block.Dates {
			block.Dates[i].TZID = tzID
		}
		blocks = append(blocks, block)
		remaining = rest
	}
	return blocks, nil
}

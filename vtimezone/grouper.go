package vtimezone

import (
	"fmt"
	"sort"
)

// familyKind is the polarity half of a family key.
type familyKind string

const (
	standardFamily familyKind = "standard"
	daylightFamily familyKind = "daylight"
)

func kindOf(zi ZoneInterval) familyKind {
	if zi.IsDaylight() {
		return daylightFamily
	}
	return standardFamily
}

func familyKey(kind familyKind, index int) string {
	return fmt.Sprintf("%s-%d", kind, index)
}

// sameSignature reports whether two intervals belong to the same recurring
// pattern: identical local-start month, hour, minute and weekday, identical
// wall offset and identical name. The year is deliberately excluded — a
// family is exactly a set of transitions that differ only in year.
// Intervals with an unbounded start never match anything.
func sameSignature(a, b ZoneInterval) bool {
	if a.Start == nil || b.Start == nil {
		return false
	}
	la, lb := a.LocalStart(), b.LocalStart()
	return la.Month() == lb.Month() &&
		la.Hour() == lb.Hour() &&
		la.Minute() == lb.Minute() &&
		la.Weekday() == lb.Weekday() &&
		a.WallOffset == b.WallOffset &&
		a.Name == b.Name
}

// sortByStartDesc orders intervals most recent first. Unbounded starts sink
// to the end.
func sortByStartDesc(intervals []ZoneInterval) []ZoneInterval {
	sorted := make([]ZoneInterval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Start, sorted[j].Start
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return sorted
}

// groupFamilies partitions intervals into recurrence-candidate families.
// Scanning from most recent to oldest, an interval either joins the
// currently open family of its polarity — when its signature matches that
// family's first (most recent) member — or opens a new family with the
// next index: "standard-1", "standard-2", "daylight-1", ...
func groupFamilies(intervals []ZoneInterval) map[string][]ZoneInterval {
	counts := make(map[familyKind]int)
	open := make(map[familyKind]string)
	families := make(map[string][]ZoneInterval)

	for _, iv := range sortByStartDesc(intervals) {
		kind := kindOf(iv)
		if key, ok := open[kind]; ok && sameSignature(families[key][0], iv) {
			families[key] = append(families[key], iv)
			continue
		}
		counts[kind]++
		key := familyKey(kind, counts[kind])
		open[kind] = key
		families[key] = []ZoneInterval{iv}
	}
	return families
}

// pruneToConsecutive restricts a family to its currently-active run: from
// the most recent member walking backward, each kept member's local-start
// year must be exactly one less than the previous member's. The scan stops
// at the first gap, so a discontinued rule generation that happens to share
// the signature is not reported as current.
func pruneToConsecutive(members []ZoneInterval) []ZoneInterval {
	sorted := sortByStartDesc(members)
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, iv := range sorted[1:] {
		if iv.Start == nil || iv.LocalStart().Year() != out[len(out)-1].LocalStart().Year()-1 {
			break
		}
		out = append(out, iv)
	}
	return out
}

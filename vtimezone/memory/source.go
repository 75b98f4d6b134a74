// Package memory provides an in-memory zone interval source, useful for
// tests and for embedding fixed transition tables.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/cyp0633/librecur/vtimezone"
)

// Source is a vtimezone.Source backed by per-zone interval slices.
type Source struct {
	mu    sync.RWMutex
	zones map[string][]vtimezone.ZoneInterval
}

// New creates an empty source.
func New() *Source {
	return &Source{zones: make(map[string][]vtimezone.ZoneInterval)}
}

// SetZone installs (or replaces) the interval table for a zone. Intervals
// must be non-overlapping and sorted by start.
func (s *Source) SetZone(tzID string, intervals []vtimezone.ZoneInterval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zones[tzID] = append([]vtimezone.ZoneInterval(nil), intervals...)
}

// Intervals returns the stored intervals overlapping [from, to].
func (s *Source) Intervals(tzID string, from, to time.Time) ([]vtimezone.ZoneInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	intervals, ok := s.zones[tzID]
	if !ok {
		return nil, fmt.Errorf("unknown timezone %q", tzID)
	}
	var out []vtimezone.ZoneInterval
	for _, iv := range intervals {
		if iv.Start != nil && iv.Start.After(to) {
			continue
		}
		if iv.End != nil && iv.End.Before(from) {
			continue
		}
		out = append(out, iv)
	}
	return out, nil
}

// MaxOffset returns the largest wall offset across the zone's intervals.
func (s *Source) MaxOffset(tzID string) (time.Duration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	intervals, ok := s.zones[tzID]
	if !ok {
		return 0, fmt.Errorf("unknown timezone %q", tzID)
	}
	var max time.Duration
	for i, iv := range intervals {
		if i == 0 || iv.WallOffset > max {
			max = iv.WallOffset
		}
	}
	return max, nil
}

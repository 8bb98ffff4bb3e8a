package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"provmap/internal/snapshot"
	"provmap/internal/tracker"
)

// CheckSnapshot runs the structural invariants of a snapshot of a range of
// length units:
// 1) every region is non-empty and regions add up to length exactly
// 2) every part has a source, a valid growth and a non-negative source index
// 3) gap regions never touch each other once simplified
func CheckSnapshot(s *snapshot.Snapshot, length int) error {
	if s == nil {
		return fmt.Errorf("nil snapshot")
	}
	total := 0
	for i, r := range s.Regions {
		if r.Length <= 0 {
			return fmt.Errorf("region %d is empty: %v", i, r)
		}
		total += r.Length
		if r.IsGap() {
			continue
		}
		if !r.Growth.Valid() {
			return fmt.Errorf("region %d has invalid growth %v", i, r.Growth)
		}
		if r.SourceIndex < 0 {
			return fmt.Errorf("region %d has negative source index: %v", i, r)
		}
		if r.Source.IsContentMutable() {
			// parts always point at terminal trackers
			return fmt.Errorf("region %d points at mutable tracker#%d", i, r.Source.ID())
		}
	}
	if total != length {
		return fmt.Errorf("regions cover %d units, want %d", total, length)
	}

	simple := s.Simplify()
	for i := 1; i < len(simple.Regions); i++ {
		if simple.Regions[i-1].IsGap() && simple.Regions[i].IsGap() {
			return fmt.Errorf("simplified snapshot has adjacent gaps at region %d", i)
		}
	}
	if !simple.Simplify().Equal(simple) {
		return fmt.Errorf("simplify is not idempotent: %v", simple)
	}
	return nil
}

// CheckMarkers checks a twin marker sequence:
// 1) consecutive markers switch sides
// 2) indices never go backwards for either side
// 3) indices fit the fixed-width form used in reports
func CheckMarkers(markers []tracker.Marker) error {
	lastTo := map[tracker.ID]int{}
	lastFrom := map[tracker.ID]int{}
	for i, m := range markers {
		if m.To == nil {
			return fmt.Errorf("marker %d has no target", i)
		}
		if i > 0 && markers[i-1].To == m.To {
			return fmt.Errorf("marker %d repeats side tracker#%d", i, m.To.ID())
		}
		if _, err := safecast.Conv[uint32](m.ToIndex); err != nil {
			return fmt.Errorf("marker %d to index: %w", i, err)
		}
		if _, err := safecast.Conv[uint32](m.FromIndex); err != nil {
			return fmt.Errorf("marker %d from index: %w", i, err)
		}
		id := m.To.ID()
		if m.ToIndex < lastTo[id] || m.FromIndex < lastFrom[id] {
			return fmt.Errorf("marker %d goes backwards: to=%d from=%d after to=%d from=%d", i, m.ToIndex, m.FromIndex, lastTo[id], lastFrom[id])
		}
		lastTo[id], lastFrom[id] = m.ToIndex, m.FromIndex
	}
	return nil
}

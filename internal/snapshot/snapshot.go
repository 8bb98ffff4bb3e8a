// Package snapshot materializes the provenance of a tracker range into an
// ordered list of regions, for display and for comparing against expected
// results.
package snapshot

import (
	"fmt"
	"slices"
	"strings"

	"provmap/internal/growth"
	"provmap/internal/tracker"
)

// Snapshot is the provenance of [Index, Index+Length()) of Tracker, as
// contiguous regions in index order.
type Snapshot struct {
	Tracker tracker.Tracker // nil for built snapshots
	Index   int
	Regions []Region
}

// Of snapshots the whole known content of t.
func Of(t tracker.Tracker) (*Snapshot, error) {
	return OfRange(t, 0, t.Length())
}

// OfRange snapshots [index, index+length) of t. Stretches that t reports no
// source for become gaps.
func OfRange(t tracker.Tracker, index, length int) (*Snapshot, error) {
	if t == nil {
		return nil, fmt.Errorf("snapshot: nil tracker")
	}
	var rec collector
	if err := t.PushSourceTo(index, &rec, 0, length, growth.None); err != nil {
		return nil, fmt.Errorf("snapshot of tracker#%d: %w", t.ID(), err)
	}
	regions, err := rec.regions(length)
	if err != nil {
		return nil, fmt.Errorf("snapshot of tracker#%d: %w", t.ID(), err)
	}
	return &Snapshot{Tracker: t, Index: index, Regions: regions}, nil
}

// Length returns the number of units covered.
func (s *Snapshot) Length() int {
	n := 0
	for _, r := range s.Regions {
		n += r.Length
	}
	return n
}

// Simplify returns a copy with adjacent gaps fused and adjacent parts fused
// where they continue each other in the same source. Simplify is idempotent.
func (s *Snapshot) Simplify() *Snapshot {
	out := &Snapshot{Tracker: s.Tracker, Index: s.Index, Regions: make([]Region, 0, len(s.Regions))}
	for _, r := range s.Regions {
		if r.Length <= 0 {
			continue
		}
		if n := len(out.Regions); n > 0 {
			if fused, ok := out.Regions[n-1].fuse(r); ok {
				out.Regions[n-1] = fused
				continue
			}
		}
		out.Regions = append(out.Regions, r)
	}
	return out
}

// Equal compares the region sequences.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	return slices.Equal(s.Regions, other.Regions)
}

func (s *Snapshot) String() string {
	parts := make([]string, len(s.Regions))
	for i, r := range s.Regions {
		parts[i] = r.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Offsets returns the start of every region relative to Index.
func (s *Snapshot) Offsets() []int {
	out := make([]int, len(s.Regions))
	at := 0
	for i, r := range s.Regions {
		out[i] = at
		at += r.Length
	}
	return out
}

// collector receives PushSourceTo output.
type collector struct {
	parts []placed
}

type placed struct {
	at int
	Region
}

func (c *collector) SetSource(index, length int, source tracker.Tracker, sourceIndex int, g growth.Growth) error {
	if length == 0 || source == nil {
		return nil
	}
	c.parts = append(c.parts, placed{at: index, Region: Part(length, source, sourceIndex, g)})
	return nil
}

// regions orders the collected parts and fills the holes with gaps.
func (c *collector) regions(length int) ([]Region, error) {
	slices.SortStableFunc(c.parts, func(a, b placed) int { return a.at - b.at })
	out := make([]Region, 0, 2*len(c.parts)+1)
	at := 0
	for _, p := range c.parts {
		if p.at < at {
			return nil, fmt.Errorf("region %v at %d overlaps previous region ending at %d", p.Region, p.at, at)
		}
		if p.at > at {
			out = append(out, Gap(p.at-at))
		}
		out = append(out, p.Region)
		at = p.at + p.Length
	}
	if at > length {
		return nil, fmt.Errorf("regions end at %d, past the requested length %d", at, length)
	}
	if at < length {
		out = append(out, Gap(length-at))
	}
	return out, nil
}

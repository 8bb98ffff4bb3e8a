package snapshot

import (
	"fmt"

	"provmap/internal/growth"
	"provmap/internal/tracker"
)

// Region is a stretch of a snapshot: either a gap (Source is nil) or a part
// pointing at Source starting at SourceIndex.
type Region struct {
	Length      int
	Source      tracker.Tracker
	SourceIndex int
	Growth      growth.Growth
}

// Gap returns a gap region of n units.
func Gap(n int) Region {
	return Region{Length: n, Growth: growth.None}
}

// Part returns a part region of n units.
func Part(n int, source tracker.Tracker, sourceIndex int, g growth.Growth) Region {
	return Region{Length: n, Source: source, SourceIndex: sourceIndex, Growth: g}
}

// IsGap reports whether the region has unknown provenance.
func (r Region) IsGap() bool { return r.Source == nil }

// SourceLength returns the source units the region covers; zero for gaps.
func (r Region) SourceLength() int {
	if r.IsGap() {
		return 0
	}
	return r.Growth.SourceExtent(r.Length)
}

// String renders the region as gap(n), part(n,#id@index) or
// part(n,#id@index,t:s).
func (r Region) String() string {
	if r.IsGap() {
		return fmt.Sprintf("gap(%d)", r.Length)
	}
	if r.Growth.IsNone() {
		return fmt.Sprintf("part(%d,#%d@%d)", r.Length, r.Source.ID(), r.SourceIndex)
	}
	return fmt.Sprintf("part(%d,#%d@%d,%v)", r.Length, r.Source.ID(), r.SourceIndex, r.Growth)
}

// fuse merges next into r when both describe one continuous stretch.
func (r Region) fuse(next Region) (Region, bool) {
	switch {
	case r.IsGap() && next.IsGap():
		r.Length += next.Length
		return r, true
	case r.IsGap() || next.IsGap():
		return r, false
	case r.Source != next.Source:
		return r, false
	case !r.Growth.Whole(r.Length):
		return r, false
	case r.SourceIndex+r.SourceLength() != next.SourceIndex:
		return r, false
	case r.Growth == next.Growth:
		r.Length += next.Length
		return r, true
	case next.Growth.Whole(next.Length):
		r.Growth = growth.Of(r.Length+next.Length, r.SourceLength()+next.SourceLength())
		r.Length += next.Length
		return r, true
	default:
		return r, false
	}
}

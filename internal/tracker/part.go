package tracker

import (
	"fmt"

	"provmap/internal/growth"
)

// TrackPart maps a target range of Length units onto Source starting at
// SourceIndex, at the rate given by Growth. A part always starts on a block
// boundary; only its last block may be truncated.
type TrackPart struct {
	Source      Tracker
	SourceIndex int
	Length      int
	Growth      growth.Growth
}

// SourceLength returns the number of source units the part covers.
func (p TrackPart) SourceLength() int {
	return p.Growth.SourceExtent(p.Length)
}

func (p TrackPart) String() string {
	id := ID(0)
	if p.Source != nil {
		id = p.Source.ID()
	}
	if p.Growth.IsNone() {
		return fmt.Sprintf("%d->#%d@%d", p.Length, id, p.SourceIndex)
	}
	return fmt.Sprintf("%d->#%d@%d(%v)", p.Length, id, p.SourceIndex, p.Growth)
}

// touches reports whether next continues p: same source and growth, and the
// source range of next starts where p's ends. p must end on a whole block,
// a truncated block has no well-defined source end.
func (p TrackPart) touches(next TrackPart) bool {
	return p.Source == next.Source &&
		p.Growth == next.Growth &&
		p.Growth.Whole(p.Length) &&
		p.SourceIndex+p.SourceLength() == next.SourceIndex
}

// Entry is a part stored in a DefaultTracker at target index Start.
type Entry struct {
	Start int
	TrackPart
}

func (e Entry) End() int { return e.Start + e.Length }

func (e Entry) Span() growth.Range { return growth.Span(e.Start, e.Length) }

func entryLess(a, b Entry) bool { return a.Start < b.Start }

// truncate keeps the first n units.
func (e Entry) truncate(n int) Entry {
	e.Length = n
	return e
}

// trimFront drops the first k units. When k is not a multiple of the target
// block, the remainder of the cut block becomes its own truncated entry
// pointing at that block, followed by the block-aligned rest.
func (e Entry) trimFront(k int) []Entry {
	g := e.Growth
	tb, sb := g.TargetBlock, g.SourceBlock
	rem := k % tb
	if rem == 0 {
		return []Entry{{
			Start:     e.Start + k,
			TrackPart: TrackPart{Source: e.Source, SourceIndex: e.SourceIndex + k/tb*sb, Length: e.Length - k, Growth: g},
		}}
	}

	firstLen := min(tb-rem, e.Length-k)
	out := []Entry{{
		Start:     e.Start + k,
		TrackPart: TrackPart{Source: e.Source, SourceIndex: e.SourceIndex + k/tb*sb, Length: firstLen, Growth: g},
	}}
	if rest := e.Length - k - firstLen; rest > 0 {
		out = append(out, Entry{
			Start:     e.Start + k + firstLen,
			TrackPart: TrackPart{Source: e.Source, SourceIndex: e.SourceIndex + (k/tb+1)*sb, Length: rest, Growth: g},
		})
	}
	return out
}

package growth

import "fmt"

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int // inclusive
	End   int // exclusive
}

// Span returns the range [start, start+length).
func Span(start, length int) Range {
	return Range{Start: start, End: start + length}
}

func (r Range) Empty() bool {
	return r.Start >= r.End
}

func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Intersect returns the overlap of r and other, or an empty range.
func (r Range) Intersect(other Range) Range {
	if other.Start > r.Start {
		r.Start = other.Start
	}
	if other.End < r.End {
		r.End = other.End
	}
	if r.End < r.Start {
		r.End = r.Start
	}
	return r
}

// Overlaps reports whether r and other share at least one index.
func (r Range) Overlaps(other Range) bool {
	return !r.Intersect(other).Empty()
}

// Cover returns the smallest range containing both r and other.
func (r Range) Cover(other Range) Range {
	if other.Start < r.Start {
		r.Start = other.Start
	}
	if other.End > r.End {
		r.End = other.End
	}
	return r
}

// Shift moves the range by n (which may be negative).
func (r Range) Shift(n int) Range {
	return Range{Start: r.Start + n, End: r.End + n}
}

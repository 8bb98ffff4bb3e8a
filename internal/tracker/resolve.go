package tracker

import "provmap/internal/growth"

// resolveEntries reports the parts of entries that fall into q (in the
// coordinates of the tracker owning the entries) to target. q.Start maps to
// targetIndex, and g converts target units to entry units.
//
// Each overlap is cut along the part's blocks: a query starting or ending
// mid-block produces separate writes for the partial blocks, so the target
// keeps exact block semantics. Every write carries g composed with the part's
// own growth.
func resolveEntries(entries []Entry, q growth.Range, target Writable, targetIndex, targetLength int, g growth.Growth) error {
	targetEnd := targetIndex + targetLength
	for _, e := range entries {
		clip := e.Span().Intersect(q)
		if clip.Empty() {
			continue
		}
		composed := g.Combine(e.Growth)
		for _, blk := range growth.SplitWithin(clip.Shift(-e.Start), e.Length, e.Growth) {
			at := blk.Shift(e.Start)
			start := targetIndex + g.SourceToTarget(at.Start-q.Start)
			end := targetEnd
			if at.End < q.End {
				end = min(end, targetIndex+g.SourceToTarget(at.End-q.Start))
			}
			if end <= start {
				continue
			}
			if err := target.SetSource(start, end-start, e.Source, e.SourceIndex+blk.SourceOffset, composed); err != nil {
				return err
			}
		}
	}
	return nil
}

package tracker

import (
	"fmt"
	"strconv"

	"github.com/google/btree"

	"provmap/internal/growth"
)

const btreeDegree = 16

// DefaultTracker is a mutable tracker: a sparse, ordered map from target
// ranges to parts of terminal trackers. Unmapped ranges below Length are gaps,
// meaning the provenance is unknown.
//
// Writes through another mutable tracker (a middleman) are resolved to the
// middleman's own sources, so stored parts always point at origin or tag
// trackers.
type DefaultTracker struct {
	base
	parts *btree.BTreeG[Entry] // guarded by mu
}

// NewDefault creates an empty default tracker.
func NewDefault(opts ...Option) *DefaultTracker {
	t := &DefaultTracker{parts: btree.NewG[Entry](btreeDegree, entryLess)}
	t.init(t, buildOptions(opts))
	return t
}

// IsContentMutable is always true: entries can be overwritten.
func (t *DefaultTracker) IsContentMutable() bool { return true }

// Append appends bytes, as a sink does when content is written to it. The
// provenance of the appended range is recorded separately with SetSource.
func (t *DefaultTracker) Append(p []byte) error {
	return t.appendBytes("Append", p)
}

// AppendChars appends runes.
func (t *DefaultTracker) AppendChars(p []rune) error {
	return t.appendChars("AppendChars", p)
}

// SetSource overwrites [index, index+length) to point at source starting at
// sourceIndex. The last write wins. A nil source turns the range into a gap.
// A mutable source is resolved first, against its state before this write,
// which makes overlapping copies within the same tracker safe.
func (t *DefaultTracker) SetSource(index, length int, source Tracker, sourceIndex int, g growth.Growth) error {
	if length == 0 {
		return nil
	}
	if err := t.checkSetArgs(index, length, sourceIndex, g); err != nil {
		return err
	}
	r := growth.Span(index, length)

	switch {
	case source == nil:
		t.mu.Lock()
		defer t.mu.Unlock()
		t.clearLocked(r)
		t.growLocked(r.End)
		t.emitWrite(r, nil, 0, g)
		return nil

	case !source.IsContentMutable():
		t.mu.Lock()
		defer t.mu.Unlock()
		t.writeLocked(Entry{Start: index, TrackPart: TrackPart{Source: source, SourceIndex: sourceIndex, Length: length, Growth: g}})
		t.growLocked(r.End)
		t.emitWrite(r, source, sourceIndex, g)
		return nil

	case source.core() == &t.base:
		t.mu.Lock()
		defer t.mu.Unlock()
		var rec recorder
		q := growth.Span(sourceIndex, g.TargetToSource(length))
		if err := resolveEntries(t.overlappingLocked(q), q, &rec, index, length, g); err != nil {
			return err
		}
		t.applyLocked(r, rec.writes)
		t.emitWrite(r, source, sourceIndex, g)
		return nil

	default:
		var rec recorder
		if err := source.PushSourceTo(sourceIndex, &rec, index, length, g); err != nil {
			return fmt.Errorf("resolve through tracker#%d: %w", source.ID(), err)
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		t.applyLocked(r, rec.writes)
		t.emitWrite(r, source, sourceIndex, g)
		return nil
	}
}

// PushSourceTo reports the sources of [index, index+n) to target, where n is
// targetLength converted through g. Gaps are reported as nothing.
func (t *DefaultTracker) PushSourceTo(index int, target Writable, targetIndex, targetLength int, g growth.Growth) error {
	if err := checkPushArgs(t.id, index, target, targetIndex, targetLength, g); err != nil {
		return err
	}
	if targetLength == 0 {
		return nil
	}
	q := growth.Span(index, g.TargetToSource(targetLength))

	// Entries are copied so no lock is held while the target writes.
	t.mu.RLock()
	entries := t.overlappingLocked(q)
	t.mu.RUnlock()

	return resolveEntries(entries, q, target, targetIndex, targetLength, g)
}

// Entries returns a copy of the stored entries in index order.
func (t *DefaultTracker) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, 0, t.parts.Len())
	t.parts.Ascend(func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// CheckInvariants verifies that entries are well-formed, sorted,
// non-overlapping and within Length.
func (t *DefaultTracker) CheckInvariants() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.checkLocked()
}

func (t *DefaultTracker) checkLocked() error {
	var err error
	prevEnd := 0
	t.parts.Ascend(func(e Entry) bool {
		switch {
		case e.Length <= 0:
			err = fmt.Errorf("tracker#%d: entry at %d has length %d", t.id, e.Start, e.Length)
		case e.Source == nil:
			err = fmt.Errorf("tracker#%d: entry at %d has no source", t.id, e.Start)
		case !e.Growth.Valid():
			err = fmt.Errorf("tracker#%d: entry at %d has invalid growth %v", t.id, e.Start, e.Growth)
		case e.SourceIndex < 0:
			err = fmt.Errorf("tracker#%d: entry at %d has source index %d", t.id, e.Start, e.SourceIndex)
		case e.Start < prevEnd:
			err = fmt.Errorf("tracker#%d: entry at %d overlaps previous entry ending at %d", t.id, e.Start, prevEnd)
		case e.End() > t.Length():
			err = fmt.Errorf("tracker#%d: entry %v ends past length %d", t.id, e.Span(), t.Length())
		}
		prevEnd = e.End()
		return err == nil
	})
	return err
}

func (t *DefaultTracker) checkSetArgs(index, length, sourceIndex int, g growth.Growth) error {
	if index < 0 || length < 0 || sourceIndex < 0 {
		return invalidArgument(t.id, "SetSource", "negative index or length (index=%d length=%d sourceIndex=%d)", index, length, sourceIndex)
	}
	if !g.Valid() {
		return invalidArgument(t.id, "SetSource", "invalid growth %v", g)
	}
	return nil
}

// applyLocked replaces r with previously resolved writes.
func (t *DefaultTracker) applyLocked(r growth.Range, writes []Entry) {
	t.clearLocked(r)
	for _, w := range writes {
		if r.Intersect(w.Span()).Len() != w.Length {
			panic(fmt.Sprintf("tracker#%d: resolved write %v escapes %v", t.id, w.Span(), r))
		}
		t.writeLocked(w)
	}
	t.growLocked(r.End)
}

// writeLocked stores e over whatever was there and merges it with touching
// neighbours.
func (t *DefaultTracker) writeLocked(e Entry) {
	t.clearLocked(e.Span())

	if prev, ok := t.entryBeforeLocked(e.Start); ok && prev.End() == e.Start && prev.touches(e.TrackPart) {
		t.parts.Delete(prev)
		prev.Length += e.Length
		e = prev
	}
	if next, ok := t.parts.Get(Entry{Start: e.End()}); ok && e.touches(next.TrackPart) {
		t.parts.Delete(next)
		e.Length += next.Length
	}
	t.parts.ReplaceOrInsert(e)
	t.mustBeValidLocked()
}

// clearLocked removes r from the map. Entries sticking out on either side
// are trimmed; an entry covering r on both sides is split in two. All
// remainders are computed from the entries as they were before any change.
func (t *DefaultTracker) clearLocked(r growth.Range) {
	hits := t.overlappingLocked(r)
	if len(hits) == 0 {
		return
	}
	keep := make([]Entry, 0, 3)
	for _, e := range hits {
		if e.Start < r.Start {
			keep = append(keep, e.truncate(r.Start-e.Start))
		}
		if e.End() > r.End {
			keep = append(keep, e.trimFront(r.End-e.Start)...)
		}
	}
	for _, e := range hits {
		t.parts.Delete(e)
	}
	for _, e := range keep {
		t.parts.ReplaceOrInsert(e)
	}
}

// overlappingLocked returns the entries intersecting r in index order.
func (t *DefaultTracker) overlappingLocked(r growth.Range) []Entry {
	if r.Empty() {
		return nil
	}
	var out []Entry
	if prev, ok := t.entryBeforeLocked(r.Start); ok && prev.End() > r.Start {
		out = append(out, prev)
	}
	t.parts.AscendRange(Entry{Start: r.Start}, Entry{Start: r.End}, func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// entryBeforeLocked returns the last entry starting before index.
func (t *DefaultTracker) entryBeforeLocked(index int) (Entry, bool) {
	var (
		found Entry
		ok    bool
	)
	t.parts.DescendLessOrEqual(Entry{Start: index - 1}, func(e Entry) bool {
		found, ok = e, true
		return false
	})
	return found, ok
}

// mustBeValidLocked panics on a broken map. Provenance silently pointing at
// the wrong place is worse than a crash.
func (t *DefaultTracker) mustBeValidLocked() {
	if !debugChecks {
		return
	}
	prevEnd := 0
	t.parts.Ascend(func(e Entry) bool {
		if e.Length <= 0 || e.Start < prevEnd {
			panic(fmt.Sprintf("tracker#%d: corrupt entry %v (previous end %d)", t.id, e.Span(), prevEnd))
		}
		prevEnd = e.End()
		return true
	})
}

func (t *DefaultTracker) emitWrite(r growth.Range, source Tracker, sourceIndex int, g growth.Growth) {
	if !t.tracing() {
		return
	}
	extra := map[string]string{"growth": g.String()}
	if source != nil {
		extra["source"] = strconv.FormatUint(uint64(source.ID()), 10)
		extra["source_index"] = strconv.Itoa(sourceIndex)
	}
	t.emit("set_source", r.String(), extra)
}

// recorder collects resolved writes so they can be applied after the source
// has been fully read.
type recorder struct {
	writes []Entry
}

func (r *recorder) SetSource(index, length int, source Tracker, sourceIndex int, g growth.Growth) error {
	if length == 0 || source == nil {
		return nil
	}
	r.writes = append(r.writes, Entry{
		Start:     index,
		TrackPart: TrackPart{Source: source, SourceIndex: sourceIndex, Length: length, Growth: g},
	})
	return nil
}

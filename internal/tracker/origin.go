package tracker

import "provmap/internal/growth"

// OriginTracker is a terminal tracker: its content has no source, it only
// grows through appends, and written ranges never change.
type OriginTracker struct {
	base
}

// NewOrigin creates an origin tracker.
func NewOrigin(opts ...Option) *OriginTracker {
	t := &OriginTracker{}
	t.init(t, buildOptions(opts))
	return t
}

// IsContentMutable is always false for origin trackers.
func (t *OriginTracker) IsContentMutable() bool { return false }

// Append appends bytes to the tracked content.
func (t *OriginTracker) Append(p []byte) error {
	return t.appendBytes("Append", p)
}

// AppendChars appends runes to the tracked content.
func (t *OriginTracker) AppendChars(p []rune) error {
	return t.appendChars("AppendChars", p)
}

// SetSource is rejected: origin trackers are written through Append only.
func (t *OriginTracker) SetSource(int, int, Tracker, int, growth.Growth) error {
	return unsupported(t.id, "SetSource", "origin trackers are append-only")
}

// PushSourceTo reports the origin itself as the source.
func (t *OriginTracker) PushSourceTo(index int, target Writable, targetIndex, targetLength int, g growth.Growth) error {
	return pushSelf(t, index, target, targetIndex, targetLength, g)
}

// TagTracker is a terminal tracker without content. It labels where content
// came from when there is nothing to point into, e.g. a constant or an
// unknown native call. Parts pointing at a tag use their source index as an
// opaque ordinal.
type TagTracker struct {
	base
	label string
}

// NewTag creates a tag tracker with the given label.
func NewTag(label string, opts ...Option) *TagTracker {
	t := &TagTracker{label: label}
	o := buildOptions(opts)
	o.noContent = true
	t.init(t, o)
	return t
}

// Label returns the tag label.
func (t *TagTracker) Label() string { return t.label }

// IsContentMutable is always false for tag trackers.
func (t *TagTracker) IsContentMutable() bool { return false }

// SetSource is rejected: tags are terminal.
func (t *TagTracker) SetSource(int, int, Tracker, int, growth.Growth) error {
	return unsupported(t.id, "SetSource", "tag trackers are terminal")
}

// PushSourceTo reports the tag itself as the source.
func (t *TagTracker) PushSourceTo(index int, target Writable, targetIndex, targetLength int, g growth.Growth) error {
	return pushSelf(t, index, target, targetIndex, targetLength, g)
}

func pushSelf(t Tracker, index int, target Writable, targetIndex, targetLength int, g growth.Growth) error {
	if err := checkPushArgs(t.ID(), index, target, targetIndex, targetLength, g); err != nil {
		return err
	}
	if targetLength == 0 {
		return nil
	}
	return target.SetSource(targetIndex, targetLength, t, index, g)
}

func checkPushArgs(id ID, index int, target Writable, targetIndex, targetLength int, g growth.Growth) error {
	switch {
	case target == nil:
		return invalidArgument(id, "PushSourceTo", "nil target")
	case index < 0 || targetIndex < 0 || targetLength < 0:
		return invalidArgument(id, "PushSourceTo", "negative index or length (index=%d targetIndex=%d targetLength=%d)", index, targetIndex, targetLength)
	case !g.Valid():
		return invalidArgument(id, "PushSourceTo", "invalid growth %v", g)
	}
	return nil
}

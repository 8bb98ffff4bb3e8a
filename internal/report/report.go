// Package report turns snapshots into the flat shape consumed by reporting
// front ends: an ordered list of {content, source, source offset} entries.
package report

import (
	"fmt"

	"fortio.org/safecast"

	"provmap/internal/snapshot"
	"provmap/internal/tracker"
)

// Entry describes one region of a snapshot.
type Entry struct {
	Offset        uint32 `json:"offset"`
	Length        uint32 `json:"length"`
	Content       string `json:"content"`
	Gap           bool   `json:"gap,omitempty"`
	SourceID      uint64 `json:"source_id,omitempty"`
	SourceName    string `json:"source_name,omitempty"`
	SourceKind    string `json:"source_kind,omitempty"`
	SourceOffset  uint32 `json:"source_offset"`
	SourceContent string `json:"source_content,omitempty"`
	Growth        string `json:"growth,omitempty"`
}

// Report is the provenance of one tracker range.
type Report struct {
	TrackerID  uint64  `json:"tracker_id"`
	Name       string  `json:"name,omitempty"`
	Index      uint32  `json:"index"`
	Length     uint32  `json:"length"`
	Simplified bool    `json:"simplified,omitempty"`
	Entries    []Entry `json:"entries"`
}

// Build converts s, a snapshot of t, into a report. names may be nil; tag
// trackers without a registered name are reported under their label.
func Build(t tracker.Tracker, s *snapshot.Snapshot, names *tracker.Registry) (*Report, error) {
	if t == nil || s == nil {
		return nil, fmt.Errorf("report: nil tracker or snapshot")
	}
	index, err := safecast.Conv[uint32](s.Index)
	if err != nil {
		return nil, fmt.Errorf("report: index %d: %w", s.Index, err)
	}
	length, err := safecast.Conv[uint32](s.Length())
	if err != nil {
		return nil, fmt.Errorf("report: length %d: %w", s.Length(), err)
	}

	rep := &Report{
		TrackerID: uint64(t.ID()),
		Name:      names.Name(t),
		Index:     index,
		Length:    length,
		Entries:   make([]Entry, 0, len(s.Regions)),
	}
	for i, at := range s.Offsets() {
		entry, err := buildEntry(t, s.Index, at, s.Regions[i], names)
		if err != nil {
			return nil, fmt.Errorf("report: region %d: %w", i, err)
		}
		rep.Entries = append(rep.Entries, entry)
	}
	return rep, nil
}

func buildEntry(t tracker.Tracker, base, at int, r snapshot.Region, names *tracker.Registry) (Entry, error) {
	offset, err := safecast.Conv[uint32](at)
	if err != nil {
		return Entry{}, fmt.Errorf("offset %d: %w", at, err)
	}
	length, err := safecast.Conv[uint32](r.Length)
	if err != nil {
		return Entry{}, fmt.Errorf("length %d: %w", r.Length, err)
	}
	e := Entry{
		Offset:  offset,
		Length:  length,
		Content: t.Content(base+at, r.Length),
	}
	if r.IsGap() {
		e.Gap = true
		return e, nil
	}

	e.SourceOffset, err = safecast.Conv[uint32](r.SourceIndex)
	if err != nil {
		return Entry{}, fmt.Errorf("source offset %d: %w", r.SourceIndex, err)
	}
	e.SourceID = uint64(r.Source.ID())
	e.SourceName = names.Name(r.Source)
	e.SourceKind = kindOf(r.Source)
	if tag, ok := r.Source.(*tracker.TagTracker); ok && e.SourceName == "" {
		e.SourceName = tag.Label()
	}
	e.SourceContent = r.Source.Content(r.SourceIndex, r.SourceLength())
	if !r.Growth.IsNone() {
		e.Growth = r.Growth.String()
	}
	return e, nil
}

func kindOf(t tracker.Tracker) string {
	switch t.(type) {
	case *tracker.OriginTracker:
		return "origin"
	case *tracker.TagTracker:
		return "tag"
	case *tracker.DefaultTracker:
		return "default"
	default:
		return "unknown"
	}
}

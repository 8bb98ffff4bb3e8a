package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"provmap/internal/growth"
	"provmap/internal/snapshot"
	"provmap/internal/tracker"
)

// RegionSpec is an expected region written as "gap N" or
// "part N source@index [t:s]".
type RegionSpec struct {
	Gap         bool
	Length      int
	Source      string
	SourceIndex int
	Growth      growth.Growth
}

// ParseRegion parses one region of the expectation language.
func ParseRegion(s string) (RegionSpec, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return RegionSpec{}, fmt.Errorf("region %q: expected \"gap N\" or \"part N source@index [t:s]\"", s)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		return RegionSpec{}, fmt.Errorf("region %q: invalid length %q", s, fields[1])
	}

	switch fields[0] {
	case "gap":
		if len(fields) != 2 {
			return RegionSpec{}, fmt.Errorf("region %q: gap takes only a length", s)
		}
		return RegionSpec{Gap: true, Length: n, Growth: growth.None}, nil
	case "part":
		if len(fields) != 3 && len(fields) != 4 {
			return RegionSpec{}, fmt.Errorf("region %q: expected \"part N source@index [t:s]\"", s)
		}
		name, idx, ok := strings.Cut(fields[2], "@")
		if !ok || name == "" {
			return RegionSpec{}, fmt.Errorf("region %q: expected source@index, got %q", s, fields[2])
		}
		sourceIndex, err := strconv.Atoi(idx)
		if err != nil || sourceIndex < 0 {
			return RegionSpec{}, fmt.Errorf("region %q: invalid source index %q", s, idx)
		}
		g := growth.None
		if len(fields) == 4 {
			if g, err = ParseGrowth(fields[3]); err != nil {
				return RegionSpec{}, fmt.Errorf("region %q: %w", s, err)
			}
		}
		return RegionSpec{Length: n, Source: name, SourceIndex: sourceIndex, Growth: g}, nil
	default:
		return RegionSpec{}, fmt.Errorf("region %q: unknown region kind %q", s, fields[0])
	}
}

func (r RegionSpec) String() string {
	if r.Gap {
		return fmt.Sprintf("gap %d", r.Length)
	}
	if r.Growth.IsNone() {
		return fmt.Sprintf("part %d %s@%d", r.Length, r.Source, r.SourceIndex)
	}
	return fmt.Sprintf("part %d %s@%d %v", r.Length, r.Source, r.SourceIndex, r.Growth)
}

// ParseGrowth parses "t:s". The empty string is growth.None. Non-positive
// blocks parse fine and are rejected by the tracker.
func ParseGrowth(s string) (growth.Growth, error) {
	if s == "" {
		return growth.None, nil
	}
	ts, ss, ok := strings.Cut(s, ":")
	if !ok {
		return growth.Growth{}, fmt.Errorf("invalid growth %q (expected target:source)", s)
	}
	tb, err := strconv.Atoi(ts)
	if err != nil {
		return growth.Growth{}, fmt.Errorf("invalid growth %q: %w", s, err)
	}
	sb, err := strconv.Atoi(ss)
	if err != nil {
		return growth.Growth{}, fmt.Errorf("invalid growth %q: %w", s, err)
	}
	return growth.Of(tb, sb), nil
}

// MarkerSpec is an expected twin marker written as "to toIndex fromIndex".
type MarkerSpec struct {
	To        string
	ToIndex   int
	FromIndex int
}

// ParseMarker parses one expected marker.
func ParseMarker(s string) (MarkerSpec, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return MarkerSpec{}, fmt.Errorf("marker %q: expected \"to toIndex fromIndex\"", s)
	}
	to, err := strconv.Atoi(fields[1])
	if err != nil {
		return MarkerSpec{}, fmt.Errorf("marker %q: %w", s, err)
	}
	from, err := strconv.Atoi(fields[2])
	if err != nil {
		return MarkerSpec{}, fmt.Errorf("marker %q: %w", s, err)
	}
	return MarkerSpec{To: fields[0], ToIndex: to, FromIndex: from}, nil
}

func (m MarkerSpec) String() string {
	return fmt.Sprintf("%s %d %d", m.To, m.ToIndex, m.FromIndex)
}

// FormatRegion renders r in the expectation language. Unregistered sources
// are written as #id.
func FormatRegion(r snapshot.Region, names *tracker.Registry) string {
	if r.IsGap() {
		return RegionSpec{Gap: true, Length: r.Length}.String()
	}
	name := names.Name(r.Source)
	if name == "" {
		name = "#" + strconv.FormatUint(uint64(r.Source.ID()), 10)
	}
	return RegionSpec{Length: r.Length, Source: name, SourceIndex: r.SourceIndex, Growth: r.Growth}.String()
}

// FormatSnapshot renders all regions of s.
func FormatSnapshot(s *snapshot.Snapshot, names *tracker.Registry) []string {
	out := make([]string, len(s.Regions))
	for i, r := range s.Regions {
		out[i] = FormatRegion(r, names)
	}
	return out
}

// FormatMarker renders m in the expectation language.
func FormatMarker(m tracker.Marker, names *tracker.Registry) string {
	name := names.Name(m.To)
	if name == "" && m.To != nil {
		name = "#" + strconv.FormatUint(uint64(m.To.ID()), 10)
	}
	return MarkerSpec{To: name, ToIndex: m.ToIndex, FromIndex: m.FromIndex}.String()
}

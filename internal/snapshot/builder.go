package snapshot

import (
	"provmap/internal/growth"
	"provmap/internal/tracker"
)

// Builder assembles an expected snapshot region by region.
//
//	want := snapshot.New().Gap(5).Part(3, src, 105).Build()
type Builder struct {
	regions []Region
}

// New starts an empty builder.
func New() *Builder {
	return &Builder{}
}

// Gap appends a gap of n units.
func (b *Builder) Gap(n int) *Builder {
	b.regions = append(b.regions, Gap(n))
	return b
}

// Part appends a part of n units with growth.None.
func (b *Builder) Part(n int, source tracker.Tracker, sourceIndex int) *Builder {
	return b.PartGrowth(n, source, sourceIndex, growth.None)
}

// PartGrowth appends a part of n units with the given growth.
func (b *Builder) PartGrowth(n int, source tracker.Tracker, sourceIndex int, g growth.Growth) *Builder {
	b.regions = append(b.regions, Part(n, source, sourceIndex, g))
	return b
}

// Region appends r as is.
func (b *Builder) Region(r Region) *Builder {
	b.regions = append(b.regions, r)
	return b
}

// Build returns the snapshot. The builder can keep being used.
func (b *Builder) Build() *Snapshot {
	return &Snapshot{Regions: append([]Region(nil), b.regions...)}
}

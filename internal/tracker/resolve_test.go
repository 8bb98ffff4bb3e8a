package tracker

import (
	"testing"

	"provmap/internal/growth"
)

func TestResolve_GrowthComposition(t *testing.T) {
	src := NewOrigin()
	middleman := NewDefault()
	target := NewDefault()
	mustSet(t, middleman, 100, 10000, src, 5, growth.Of(2, 1))
	mustSet(t, target, 1000, 30, middleman, 120, growth.Of(3, 1))

	assertEntries(t, target, part(1000, 30, src, 5+(120-100)/2, growth.Of(6, 1)))
	if got := target.Length(); got != 1030 {
		t.Errorf("Length() = %d, want 1030", got)
	}
}

func TestResolve_MisalignedBlocks(t *testing.T) {
	tenToOne := growth.Of(10, 1)
	tests := []struct {
		name   string
		length int
		want   func(src Tracker) []Entry
	}{
		{
			name:   "ends on block",
			length: 23,
			want: func(src Tracker) []Entry {
				return []Entry{
					part(50, 3, src, 1001, tenToOne),
					part(53, 20, src, 1002, tenToOne),
				}
			},
		},
		{
			// the trailing partial block continues the whole blocks and merges
			name:   "ends mid block",
			length: 25,
			want: func(src Tracker) []Entry {
				return []Entry{
					part(50, 3, src, 1001, tenToOne),
					part(53, 22, src, 1002, tenToOne),
				}
			},
		},
		{
			name:   "inside one block",
			length: 2,
			want: func(src Tracker) []Entry {
				return []Entry{part(50, 2, src, 1001, tenToOne)}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewOrigin()
			middleman := NewDefault()
			mustSet(t, middleman, 8, 100, src, 1000, tenToOne)

			target := NewDefault()
			mustSet(t, target, 50, tt.length, middleman, 25, growth.None)
			assertEntries(t, target, tt.want(src)...)
		})
	}
}

func TestResolve_MisalignedBlocksWrites(t *testing.T) {
	tenToOne := growth.Of(10, 1)
	src := NewOrigin()
	middleman := NewDefault()
	mustSet(t, middleman, 8, 100, src, 1000, tenToOne)

	var rec recorder
	if err := middleman.PushSourceTo(25, &rec, 50, 25, growth.None); err != nil {
		t.Fatal(err)
	}
	want := []Entry{
		part(50, 3, src, 1001, tenToOne),
		part(53, 20, src, 1002, tenToOne),
		part(73, 2, src, 1004, tenToOne),
	}
	if formatEntries(rec.writes) != formatEntries(want) {
		t.Errorf("writes = %s, want %s", formatEntries(rec.writes), formatEntries(want))
	}
}

func TestResolve_KeepsPartTruncation(t *testing.T) {
	src := NewOrigin()
	middleman := NewDefault()
	// a 2:1 part of 5 units: the last block is truncated to one unit
	mustSet(t, middleman, 0, 5, src, 0, growth.Double)
	target := NewDefault()
	mustSet(t, target, 10, 5, middleman, 0, growth.None)

	assertEntries(t, target, part(10, 5, src, 0, growth.Double))
}

func TestResolve_GapsStayGaps(t *testing.T) {
	a, b := NewOrigin(), NewOrigin()
	middleman := NewDefault()
	mustSet(t, middleman, 0, 3, a, 10, growth.None)
	mustSet(t, middleman, 6, 3, b, 20, growth.None)

	target := NewDefault()
	mustSet(t, target, 0, 12, NewOrigin(), 0, growth.None)
	mustSet(t, target, 1, 9, middleman, 0, growth.None)

	other := target.Entries()[0].Source
	assertEntries(t, target,
		part(0, 1, other, 0, growth.None),
		part(1, 3, a, 10, growth.None),
		part(7, 3, b, 20, growth.None),
		part(10, 2, other, 10, growth.None),
	)
}

func TestResolve_DeepChain(t *testing.T) {
	src := NewOrigin()
	hops := []*DefaultTracker{NewDefault(), NewDefault(), NewDefault(), NewDefault()}
	mustSet(t, hops[0], 0, 100, src, 1000, growth.None)
	for i := 1; i < len(hops); i++ {
		mustSet(t, hops[i], 0, 100-10*i, hops[i-1], 10, growth.None)
	}
	// hop i starts at src@1000+10*i
	last := hops[len(hops)-1]
	assertEntries(t, last, part(0, 70, src, 1030, growth.None))
}

func TestResolve_HalfThenDouble(t *testing.T) {
	src := NewOrigin()
	middleman := NewDefault()
	mustSet(t, middleman, 0, 10, src, 0, growth.Half)
	target := NewDefault()
	mustSet(t, target, 0, 20, middleman, 0, growth.Double)

	assertEntries(t, target, part(0, 20, src, 0, growth.None))
}

func TestPushSourceTo_Terminal(t *testing.T) {
	tag := NewTag("literal")
	var rec recorder
	if err := tag.PushSourceTo(7, &rec, 3, 4, growth.Double); err != nil {
		t.Fatal(err)
	}
	want := []Entry{part(3, 4, tag, 7, growth.Double)}
	if formatEntries(rec.writes) != formatEntries(want) {
		t.Errorf("writes = %s, want %s", formatEntries(rec.writes), formatEntries(want))
	}
	if tag.Label() != "literal" || tag.Content(0, 10) != "" {
		t.Errorf("tag label %q content %q", tag.Label(), tag.Content(0, 10))
	}
}

func TestPushSourceTo_OnlyGaps(t *testing.T) {
	d := NewDefault()
	mustSet(t, d, 0, 10, nil, 0, growth.None)
	var rec recorder
	if err := d.PushSourceTo(0, &rec, 0, 10, growth.None); err != nil {
		t.Fatal(err)
	}
	if len(rec.writes) != 0 {
		t.Errorf("writes = %s, want none", formatEntries(rec.writes))
	}
}

func TestPushSourceTo_ClipsBothEnds(t *testing.T) {
	src := NewOrigin()
	d := NewDefault()
	mustSet(t, d, 10, 10, src, 500, growth.None)
	var rec recorder
	if err := d.PushSourceTo(5, &rec, 0, 10, growth.None); err != nil {
		t.Fatal(err)
	}
	want := []Entry{part(5, 5, src, 500, growth.None)}
	if formatEntries(rec.writes) != formatEntries(want) {
		t.Errorf("writes = %s, want %s", formatEntries(rec.writes), formatEntries(want))
	}
}

package snapshot_test

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"provmap/internal/growth"
	"provmap/internal/snapshot"
	"provmap/internal/tracker"
)

func mustSnapshot(t *testing.T, tr tracker.Tracker) *snapshot.Snapshot {
	t.Helper()
	s, err := snapshot.Of(tr)
	if err != nil {
		t.Fatalf("snapshot.Of: %v", err)
	}
	return s
}

func mustSet(t *testing.T, tr *tracker.DefaultTracker, index, length int, src tracker.Tracker, sourceIndex int, g growth.Growth) {
	t.Helper()
	if err := tr.SetSource(index, length, src, sourceIndex, g); err != nil {
		t.Fatalf("SetSource: %v", err)
	}
}

func assertSnapshot(t *testing.T, got, want *snapshot.Snapshot) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("snapshot = %v, want %v", got, want)
	}
}

func TestSnapshot_Scenarios(t *testing.T) {
	src, src2 := tracker.NewOrigin(), tracker.NewOrigin()
	tests := []struct {
		name string
		run  func(t *testing.T, target *tracker.DefaultTracker)
		want *snapshot.Snapshot
	}{
		{
			name: "single",
			run: func(t *testing.T, target *tracker.DefaultTracker) {
				mustSet(t, target, 5, 3, src, 105, growth.None)
			},
			want: snapshot.New().Gap(5).Part(3, src, 105).Build(),
		},
		{
			name: "touch merge",
			run: func(t *testing.T, target *tracker.DefaultTracker) {
				mustSet(t, target, 5, 3, src, 105, growth.None)
				mustSet(t, target, 8, 2, src, 108, growth.None)
			},
			want: snapshot.New().Gap(5).Part(5, src, 105).Build(),
		},
		{
			name: "overlap other source",
			run: func(t *testing.T, target *tracker.DefaultTracker) {
				mustSet(t, target, 5, 3, src, 105, growth.None)
				mustSet(t, target, 6, 4, src2, 106, growth.None)
			},
			want: snapshot.New().Gap(5).Part(1, src, 105).Part(4, src2, 106).Build(),
		},
		{
			name: "self copy",
			run: func(t *testing.T, target *tracker.DefaultTracker) {
				mustSet(t, target, 5, 5, src, 105, growth.None)
				mustSet(t, target, 6, 2, target, 8, growth.None)
			},
			want: snapshot.New().Gap(5).Part(1, src, 105).Part(2, src, 108).Part(2, src, 108).Build(),
		},
		{
			name: "growth composition",
			run: func(t *testing.T, target *tracker.DefaultTracker) {
				middleman := tracker.NewDefault()
				mustSet(t, middleman, 100, 10000, src, 5, growth.Of(2, 1))
				mustSet(t, target, 1000, 30, middleman, 120, growth.Of(3, 1))
			},
			want: snapshot.New().Gap(1000).PartGrowth(30, src, 5+(120-100)/2, growth.Of(6, 1)).Build(),
		},
		{
			name: "misaligned blocks",
			run: func(t *testing.T, target *tracker.DefaultTracker) {
				middleman := tracker.NewDefault()
				mustSet(t, middleman, 8, 100, src, 1000, growth.Of(10, 1))
				mustSet(t, target, 50, 23, middleman, 25, growth.None)
			},
			want: snapshot.New().
				Gap(50).
				PartGrowth(3, src, 1001, growth.Of(10, 1)).
				PartGrowth(20, src, 1002, growth.Of(10, 1)).
				Build(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tracker.NewDefault()
			tt.run(t, target)
			s := mustSnapshot(t, target)
			assertSnapshot(t, s, tt.want)
			// none of the scenarios leave anything to fuse
			assertSnapshot(t, s.Simplify(), tt.want)
			if s.Length() != target.Length() {
				t.Errorf("snapshot covers %d units, tracker has %d", s.Length(), target.Length())
			}
		})
	}
}

func TestSimplify_FusesDifferentGrowths(t *testing.T) {
	src := tracker.NewOrigin()
	target := tracker.NewDefault()
	mustSet(t, target, 0, 2, src, 0, growth.Of(2, 1))
	mustSet(t, target, 2, 3, src, 1, growth.Of(3, 1))

	s := mustSnapshot(t, target)
	assertSnapshot(t, s, snapshot.New().
		PartGrowth(2, src, 0, growth.Of(2, 1)).
		PartGrowth(3, src, 1, growth.Of(3, 1)).
		Build())
	assertSnapshot(t, s.Simplify(), snapshot.New().PartGrowth(5, src, 0, growth.Of(5, 2)).Build())
}

func TestSimplify(t *testing.T) {
	src, other := tracker.NewOrigin(), tracker.NewOrigin()
	tests := []struct {
		name string
		in   *snapshot.Snapshot
		want *snapshot.Snapshot
	}{
		{
			name: "gaps fuse",
			in:   snapshot.New().Gap(2).Gap(3).Part(1, src, 0).Gap(1).Gap(0).Build(),
			want: snapshot.New().Gap(5).Part(1, src, 0).Gap(1).Build(),
		},
		{
			name: "gap never fuses with part",
			in:   snapshot.New().Part(2, src, 0).Gap(1).Part(2, src, 2).Build(),
			want: snapshot.New().Part(2, src, 0).Gap(1).Part(2, src, 2).Build(),
		},
		{
			name: "contiguous parts",
			in:   snapshot.New().Part(2, src, 0).Part(3, src, 2).Part(1, src, 5).Build(),
			want: snapshot.New().Part(6, src, 0).Build(),
		},
		{
			name: "different source",
			in:   snapshot.New().Part(2, src, 0).Part(3, other, 2).Build(),
			want: snapshot.New().Part(2, src, 0).Part(3, other, 2).Build(),
		},
		{
			name: "source jump",
			in:   snapshot.New().Part(2, src, 0).Part(3, src, 3).Build(),
			want: snapshot.New().Part(2, src, 0).Part(3, src, 3).Build(),
		},
		{
			name: "same growth keeps truncated tail",
			in:   snapshot.New().PartGrowth(4, src, 0, growth.Double).PartGrowth(3, src, 2, growth.Double).Build(),
			want: snapshot.New().PartGrowth(7, src, 0, growth.Double).Build(),
		},
		{
			name: "truncated head blocks fusion",
			in:   snapshot.New().PartGrowth(3, src, 0, growth.Double).PartGrowth(2, src, 2, growth.Double).Build(),
			want: snapshot.New().PartGrowth(3, src, 0, growth.Double).PartGrowth(2, src, 2, growth.Double).Build(),
		},
		{
			name: "different growth with truncated tail",
			in:   snapshot.New().PartGrowth(2, src, 0, growth.Double).PartGrowth(2, src, 1, growth.Of(3, 1)).Build(),
			want: snapshot.New().PartGrowth(2, src, 0, growth.Double).PartGrowth(2, src, 1, growth.Of(3, 1)).Build(),
		},
		{
			name: "fused growth keeps fusing",
			in: snapshot.New().
				PartGrowth(2, src, 0, growth.Of(2, 1)).
				PartGrowth(3, src, 1, growth.Of(3, 1)).
				PartGrowth(5, src, 2, growth.Of(5, 2)).
				Build(),
			want: snapshot.New().PartGrowth(10, src, 0, growth.Of(5, 2)).Build(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Simplify()
			assertSnapshot(t, got, tt.want)
			assertSnapshot(t, got.Simplify(), got)
		})
	}
}

func TestSimplify_IdempotentOnRandomTrackers(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	sources := []tracker.Tracker{tracker.NewOrigin(), tracker.NewOrigin(), tracker.NewTag("const")}
	growths := []growth.Growth{growth.None, growth.Double, growth.Half, growth.Of(3, 1), growth.Of(3, 2)}

	for round := range 200 {
		target := tracker.NewDefault()
		middleman := tracker.NewDefault()
		for range 20 {
			idx, n, srcIdx := rng.IntN(64), rng.IntN(16), rng.IntN(64)
			g := growths[rng.IntN(len(growths))]
			switch rng.IntN(4) {
			case 0:
				mustSet(t, middleman, idx, n, sources[rng.IntN(len(sources))], srcIdx, g)
			case 1:
				mustSet(t, target, idx, n, middleman, srcIdx, g)
			case 2:
				mustSet(t, target, idx, n, target, srcIdx, growth.None)
			default:
				mustSet(t, target, idx, n, sources[rng.IntN(len(sources))], srcIdx, g)
			}
		}
		if err := target.CheckInvariants(); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		s := mustSnapshot(t, target)
		if s.Length() != target.Length() {
			t.Fatalf("round %d: snapshot covers %d units, tracker has %d", round, s.Length(), target.Length())
		}
		once := s.Simplify()
		if twice := once.Simplify(); !twice.Equal(once) {
			t.Fatalf("round %d: simplify not idempotent:\n%v\n%v", round, once, twice)
		}
		if once.Length() != s.Length() {
			t.Fatalf("round %d: simplify changed length %d -> %d", round, s.Length(), once.Length())
		}
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	a, b := tracker.NewOrigin(), tracker.NewTag("lit")
	target := tracker.NewDefault()
	mustSet(t, target, 2, 3, a, 40, growth.None)
	mustSet(t, target, 5, 4, b, 0, growth.None)
	mustSet(t, target, 12, 2, a, 10, growth.Double)
	mustSet(t, target, 14, 1, a, 90, growth.None)

	want := snapshot.New().
		Gap(2).
		Part(3, a, 40).
		Part(4, b, 0).
		Gap(3).
		PartGrowth(2, a, 10, growth.Double).
		Part(1, a, 90).
		Build()
	assertSnapshot(t, mustSnapshot(t, target), want)
}

func TestOfRange(t *testing.T) {
	src := tracker.NewOrigin()
	target := tracker.NewDefault()
	mustSet(t, target, 0, 10, src, 100, growth.None)

	s, err := snapshot.OfRange(target, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	assertSnapshot(t, s, snapshot.New().Part(4, src, 103).Build())
	if s.Index != 3 || s.Tracker != target {
		t.Errorf("snapshot header = %d #%d", s.Index, s.Tracker.ID())
	}

	s, err = snapshot.OfRange(target, 8, 6)
	if err != nil {
		t.Fatal(err)
	}
	assertSnapshot(t, s, snapshot.New().Part(2, src, 108).Gap(4).Build())
	if got := s.Offsets(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("Offsets() = %v", got)
	}
}

func TestOf_Origin(t *testing.T) {
	o := tracker.NewOrigin()
	if err := o.Append([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	assertSnapshot(t, mustSnapshot(t, o), snapshot.New().Part(5, o, 0).Build())
}

func TestOfRange_Errors(t *testing.T) {
	if _, err := snapshot.OfRange(nil, 0, 1); err == nil {
		t.Error("nil tracker must fail")
	}
	if _, err := snapshot.OfRange(tracker.NewDefault(), 0, -1); err == nil {
		t.Error("negative length must fail")
	}
}

func TestRegion_String(t *testing.T) {
	src := tracker.NewOrigin()
	s := snapshot.New().Gap(5).Part(3, src, 105).PartGrowth(30, src, 15, growth.Of(6, 1)).Build()
	want := "[gap(5) part(3,#" + strconv.FormatUint(uint64(src.ID()), 10) + "@105) part(30,#" + strconv.FormatUint(uint64(src.ID()), 10) + "@15,6:1)]"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}


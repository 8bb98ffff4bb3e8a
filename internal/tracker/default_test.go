package tracker

import (
	"errors"
	"testing"

	"provmap/internal/growth"
)

func TestSetSource_Single(t *testing.T) {
	src := NewOrigin()
	target := NewDefault()
	mustSet(t, target, 5, 3, src, 105, growth.None)

	assertEntries(t, target, part(5, 3, src, 105, growth.None))
	if got := target.Length(); got != 8 {
		t.Errorf("Length() = %d, want 8", got)
	}
}

func TestSetSource_TouchMergesForward(t *testing.T) {
	src := NewOrigin()
	target := NewDefault()
	mustSet(t, target, 5, 3, src, 105, growth.None)
	mustSet(t, target, 8, 2, src, 108, growth.None)

	assertEntries(t, target, part(5, 5, src, 105, growth.None))
}

func TestSetSource_OverlapDifferentSource(t *testing.T) {
	src := NewOrigin()
	src2 := NewOrigin()
	target := NewDefault()
	mustSet(t, target, 5, 3, src, 105, growth.None)
	mustSet(t, target, 6, 4, src2, 106, growth.None)

	assertEntries(t, target,
		part(5, 1, src, 105, growth.None),
		part(6, 4, src2, 106, growth.None),
	)
}

func TestSetSource_SelfCopyReadsOldState(t *testing.T) {
	src := NewOrigin()
	target := NewDefault()
	mustSet(t, target, 5, 5, src, 105, growth.None)
	mustSet(t, target, 6, 2, target, 8, growth.None)

	assertEntries(t, target,
		part(5, 1, src, 105, growth.None),
		part(6, 2, src, 108, growth.None),
		part(8, 2, src, 108, growth.None),
	)
}

func TestSetSource_SelfCopyBackward(t *testing.T) {
	src := NewOrigin()
	target := NewDefault()
	mustSet(t, target, 0, 6, src, 0, growth.None)
	// target[2,6) <- target[0,4), overlapping towards higher indices
	mustSet(t, target, 2, 4, target, 0, growth.None)

	assertEntries(t, target,
		part(0, 2, src, 0, growth.None),
		part(2, 4, src, 0, growth.None),
	)
}

func TestSetSource_SelfCopyOntoGap(t *testing.T) {
	src := NewOrigin()
	target := NewDefault()
	mustSet(t, target, 4, 2, src, 50, growth.None)
	// [0,4) is a gap, so copying it over [4,8) erases the entry
	mustSet(t, target, 4, 4, target, 0, growth.None)

	assertEntries(t, target)
	if got := target.Length(); got != 8 {
		t.Errorf("Length() = %d, want 8", got)
	}
}

func TestSetSource_MergesBothNeighbours(t *testing.T) {
	src := NewOrigin()
	target := NewDefault()
	mustSet(t, target, 0, 3, src, 0, growth.None)
	mustSet(t, target, 6, 4, src, 6, growth.None)
	mustSet(t, target, 3, 3, src, 3, growth.None)

	assertEntries(t, target, part(0, 10, src, 0, growth.None))
}

func TestSetSource_NoMerge(t *testing.T) {
	tests := []struct {
		name        string
		second      func(src, other Tracker) (Tracker, int, growth.Growth)
		wantEntries int
	}{
		{
			name: "different source",
			second: func(_, other Tracker) (Tracker, int, growth.Growth) {
				return other, 3, growth.None
			},
			wantEntries: 2,
		},
		{
			name: "source gap",
			second: func(src, _ Tracker) (Tracker, int, growth.Growth) {
				return src, 4, growth.None
			},
			wantEntries: 2,
		},
		{
			name: "different growth",
			second: func(src, _ Tracker) (Tracker, int, growth.Growth) {
				return src, 3, growth.Double
			},
			wantEntries: 2,
		},
		{
			name: "contiguous",
			second: func(src, _ Tracker) (Tracker, int, growth.Growth) {
				return src, 3, growth.None
			},
			wantEntries: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, other := NewOrigin(), NewOrigin()
			target := NewDefault()
			mustSet(t, target, 0, 3, src, 0, growth.None)
			s, idx, g := tt.second(src, other)
			mustSet(t, target, 3, 3, s, idx, g)
			if got := len(target.Entries()); got != tt.wantEntries {
				t.Errorf("got %d entries %s, want %d", got, formatEntries(target.Entries()), tt.wantEntries)
			}
		})
	}
}

func TestSetSource_NoMergeAfterTruncatedBlock(t *testing.T) {
	src := NewOrigin()
	target := NewDefault()
	// 3 units of a 2:1 part end mid-block: the source end is ambiguous
	mustSet(t, target, 0, 3, src, 0, growth.Double)
	mustSet(t, target, 3, 2, src, 2, growth.Double)

	assertEntries(t, target,
		part(0, 3, src, 0, growth.Double),
		part(3, 2, src, 2, growth.Double),
	)
}

func TestSetSource_GrowthMerge(t *testing.T) {
	src := NewOrigin()
	target := NewDefault()
	mustSet(t, target, 0, 4, src, 10, growth.Double)
	mustSet(t, target, 4, 6, src, 12, growth.Double)

	assertEntries(t, target, part(0, 10, src, 10, growth.Double))
}

func TestSetSource_NullLeavesGap(t *testing.T) {
	src := NewOrigin()
	target := NewDefault()
	mustSet(t, target, 0, 10, src, 0, growth.None)
	mustSet(t, target, 3, 4, nil, 0, growth.None)

	assertEntries(t, target,
		part(0, 3, src, 0, growth.None),
		part(7, 3, src, 7, growth.None),
	)
	if got := target.Length(); got != 10 {
		t.Errorf("Length() = %d, want 10", got)
	}
}

func TestSetSource_NullOnGapGrowsLength(t *testing.T) {
	src := NewOrigin()
	target := NewDefault()
	mustSet(t, target, 0, 2, src, 0, growth.None)
	mustSet(t, target, 20, 5, nil, 0, growth.None)

	assertEntries(t, target, part(0, 2, src, 0, growth.None))
	if got := target.Length(); got != 25 {
		t.Errorf("Length() = %d, want 25", got)
	}
}

func TestSetSource_SameSourceIsObservationalNoop(t *testing.T) {
	src := NewOrigin()
	target := NewDefault()
	mustSet(t, target, 0, 10, src, 0, growth.None)
	mustSet(t, target, 2, 3, src, 2, growth.None)

	assertEntries(t, target, part(0, 10, src, 0, growth.None))
}

func TestSetSource_ClearSplitsGrowthBlocks(t *testing.T) {
	src := NewOrigin()
	target := NewDefault()
	mustSet(t, target, 0, 10, src, 0, growth.Double)
	mustSet(t, target, 3, 2, nil, 0, growth.None)

	// unit 5 is the second half of block 2, units 6.. start at block 3
	assertEntries(t, target,
		part(0, 3, src, 0, growth.Double),
		part(5, 1, src, 2, growth.Double),
		part(6, 4, src, 3, growth.Double),
	)
}

func TestSetSource_ZeroLengthIsNoop(t *testing.T) {
	target := NewDefault()
	if err := target.SetSource(-1, 0, nil, -5, growth.Growth{}); err != nil {
		t.Errorf("zero length write returned %v", err)
	}
	if got := target.Length(); got != 0 {
		t.Errorf("Length() = %d, want 0", got)
	}
}

func TestSetSource_Errors(t *testing.T) {
	src := NewOrigin()
	tests := []struct {
		name string
		call func() error
		kind ErrorKind
		is   error
	}{
		{
			name: "origin",
			call: func() error { return NewOrigin().SetSource(0, 1, src, 0, growth.None) },
			kind: KindUnsupported,
			is:   ErrUnsupported,
		},
		{
			name: "tag",
			call: func() error { return NewTag("const").SetSource(0, 1, src, 0, growth.None) },
			kind: KindUnsupported,
			is:   ErrUnsupported,
		},
		{
			name: "negative index",
			call: func() error { return NewDefault().SetSource(-1, 1, src, 0, growth.None) },
			kind: KindInvalidArgument,
			is:   ErrInvalidArgument,
		},
		{
			name: "negative length",
			call: func() error { return NewDefault().SetSource(0, -1, src, 0, growth.None) },
			kind: KindInvalidArgument,
			is:   ErrInvalidArgument,
		},
		{
			name: "negative source index",
			call: func() error { return NewDefault().SetSource(0, 1, src, -1, growth.None) },
			kind: KindInvalidArgument,
			is:   ErrInvalidArgument,
		},
		{
			name: "zero block",
			call: func() error { return NewDefault().SetSource(0, 1, src, 0, growth.Of(0, 1)) },
			kind: KindInvalidArgument,
			is:   ErrInvalidArgument,
		},
		{
			name: "push to nil",
			call: func() error { return src.PushSourceTo(0, nil, 0, 1, growth.None) },
			kind: KindInvalidArgument,
			is:   ErrInvalidArgument,
		},
		{
			name: "push negative",
			call: func() error { return NewDefault().PushSourceTo(-3, &recorder{}, 0, 1, growth.None) },
			kind: KindInvalidArgument,
			is:   ErrInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, tt.is) {
				t.Fatalf("error = %v, want %v", err, tt.is)
			}
			var terr *Error
			if !errors.As(err, &terr) {
				t.Fatalf("error %T is not *Error", err)
			}
			if terr.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", terr.Kind, tt.kind)
			}
		})
	}
}

func TestSetSource_ErrorDoesNotTouchMap(t *testing.T) {
	src := NewOrigin()
	target := NewDefault()
	mustSet(t, target, 0, 4, src, 0, growth.None)
	if err := target.SetSource(2, 4, src, -1, growth.None); err == nil {
		t.Fatal("expected error")
	}
	assertEntries(t, target, part(0, 4, src, 0, growth.None))
	if got := target.Length(); got != 4 {
		t.Errorf("Length() = %d, want 4", got)
	}
}

func TestAppend_Content(t *testing.T) {
	sink := NewDefault()
	if err := sink.Append([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	mustSet(t, sink, 5, 3, NewOrigin(), 0, growth.None)
	if err := sink.Append([]byte("!")); err != nil {
		t.Fatal(err)
	}
	if got := sink.Length(); got != 9 {
		t.Errorf("Length() = %d, want 9", got)
	}
	if got := sink.Content(0, 5); got != "hello" {
		t.Errorf("Content(0,5) = %q", got)
	}
	if got := sink.Content(8, 10); got != "!" {
		t.Errorf("Content(8,10) = %q, want clipped %q", got, "!")
	}
}

func TestAppend_CharsMismatch(t *testing.T) {
	chars := NewOrigin(WithChars())
	if err := chars.AppendChars([]rune("héllo")); err != nil {
		t.Fatal(err)
	}
	if got := chars.Length(); got != 5 {
		t.Errorf("Length() = %d, want 5", got)
	}
	if got := chars.Content(1, 1); got != "é" {
		t.Errorf("Content(1,1) = %q", got)
	}
	if err := chars.Append([]byte("x")); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("byte append to char tracker: %v", err)
	}
	if err := NewOrigin().AppendChars([]rune("x")); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("char append to byte tracker: %v", err)
	}
}

func TestAppend_WithoutContent(t *testing.T) {
	o := NewOrigin(WithoutContent())
	if err := o.Append([]byte("abc")); err != nil {
		t.Fatal(err)
	}
	if o.Length() != 3 || o.Content(0, 3) != "" {
		t.Errorf("Length() = %d, Content = %q", o.Length(), o.Content(0, 3))
	}
}

func TestTrimFront(t *testing.T) {
	src := NewOrigin()
	e := part(10, 9, src, 100, growth.Of(3, 1))
	tests := []struct {
		k    int
		want []Entry
	}{
		{k: 3, want: []Entry{part(13, 6, src, 101, growth.Of(3, 1))}},
		{k: 4, want: []Entry{part(14, 2, src, 101, growth.Of(3, 1)), part(16, 3, src, 102, growth.Of(3, 1))}},
		{k: 7, want: []Entry{part(17, 2, src, 102, growth.Of(3, 1))}},
		{k: 8, want: []Entry{part(18, 1, src, 102, growth.Of(3, 1))}},
	}
	for _, tt := range tests {
		got := e.trimFront(tt.k)
		if formatEntries(got) != formatEntries(tt.want) {
			t.Errorf("trimFront(%d) = %s, want %s", tt.k, formatEntries(got), formatEntries(tt.want))
		}
	}
}

package tracker

import (
	"errors"
	"testing"
)

func TestTwin_MarkersOnSwitchOnly(t *testing.T) {
	in, out := NewOrigin(), NewDefault()
	if err := in.InitTwin(out); err != nil {
		t.Fatal(err)
	}
	appendTo := func(tr interface{ Append([]byte) error }, s string) {
		t.Helper()
		if err := tr.Append([]byte(s)); err != nil {
			t.Fatal(err)
		}
	}

	appendTo(in, "GET ")
	appendTo(in, "/x\n")
	appendTo(out, "")
	appendTo(out, "200\n")
	appendTo(out, "ok")
	appendTo(in, "GET /y\n")

	syn := in.Synchronization()
	if syn == nil || syn != out.Synchronization() {
		t.Fatal("twins must share one synchronization")
	}
	got := syn.Markers()
	want := []Marker{
		{To: out, ToIndex: 0, FromIndex: 7},
		{To: in, ToIndex: 7, FromIndex: 6},
	}
	if len(got) != len(want) {
		t.Fatalf("markers = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("marker %d = {#%d %d %d}, want {#%d %d %d}", i,
				idOf(got[i].To), got[i].ToIndex, got[i].FromIndex,
				idOf(want[i].To), want[i].ToIndex, want[i].FromIndex)
		}
	}
	if syn.Other(in) != out || syn.Other(out) != in || syn.Other(NewOrigin()) != nil {
		t.Error("Other does not pair the twins")
	}
}

func TestTwin_InitIsSymmetricAndIdempotent(t *testing.T) {
	a, b := NewOrigin(), NewOrigin()
	if err := a.InitTwin(b); err != nil {
		t.Fatal(err)
	}
	s := a.Synchronization()
	if err := b.InitTwin(a); err != nil {
		t.Errorf("re-linking from the other side: %v", err)
	}
	if err := a.InitTwin(b); err != nil {
		t.Errorf("re-linking: %v", err)
	}
	if a.Twin() != b || b.Twin() != a {
		t.Error("twins are not linked both ways")
	}
	if a.Synchronization() != s {
		t.Error("re-linking replaced the synchronization")
	}
}

func TestTwin_Errors(t *testing.T) {
	a, b, c := NewOrigin(), NewOrigin(), NewDefault()
	if err := a.InitTwin(b); err != nil {
		t.Fatal(err)
	}
	for name, err := range map[string]error{
		"self":           c.InitTwin(c),
		"nil":            c.InitTwin(nil),
		"already twinned": c.InitTwin(a),
		"rebind":         a.InitTwin(c),
	} {
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: error = %v, want invalid argument", name, err)
		}
	}
	if c.Twin() != nil {
		t.Error("failed InitTwin must not link")
	}
}

func TestTwin_NoMarkersWithoutTwin(t *testing.T) {
	a := NewOrigin()
	if err := a.Append([]byte("abc")); err != nil {
		t.Fatal(err)
	}
	if a.Synchronization() != nil {
		t.Error("untwinned tracker has a synchronization")
	}
}

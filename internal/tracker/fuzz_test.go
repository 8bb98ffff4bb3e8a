package tracker

import (
	"testing"

	"provmap/internal/growth"
)

type cell struct {
	src Tracker
	idx int
}

// model is a per-index reference implementation of a default tracker with
// growth.None writes.
type model struct {
	cells  map[int]cell
	length int
}

func newModel() *model { return &model{cells: make(map[int]cell)} }

func (m *model) set(index, length int, src Tracker, sourceIndex int) {
	if length == 0 {
		return
	}
	for k := range length {
		if src == nil {
			delete(m.cells, index+k)
			continue
		}
		m.cells[index+k] = cell{src: src, idx: sourceIndex + k}
	}
	m.length = max(m.length, index+length)
}

// copyFrom reads all of from before writing, so it is safe when from == m.
func (m *model) copyFrom(index, length int, from *model, sourceIndex int) {
	if length == 0 {
		return
	}
	read := make([]*cell, length)
	for k := range length {
		if c, ok := from.cells[sourceIndex+k]; ok {
			read[k] = &c
		}
	}
	for k, c := range read {
		if c == nil {
			delete(m.cells, index+k)
			continue
		}
		m.cells[index+k] = *c
	}
	m.length = max(m.length, index+length)
}

func expand(t *testing.T, tr *DefaultTracker) map[int]cell {
	t.Helper()
	out := make(map[int]cell)
	for _, e := range tr.Entries() {
		if e.Growth != growth.None {
			t.Fatalf("entry %d has growth %v", e.Start, e.Growth)
		}
		for k := range e.Length {
			out[e.Start+k] = cell{src: e.Source, idx: e.SourceIndex + k}
		}
	}
	return out
}

func FuzzDefaultTrackerMatchesModel(f *testing.F) {
	f.Add([]byte{0, 5, 3, 105, 4, 6, 2, 8})
	f.Add([]byte{5, 0, 15, 0, 3, 2, 10, 1, 2, 4, 3, 0, 4, 0, 9, 3})
	f.Add([]byte{0, 0, 15, 0, 1, 4, 4, 40, 4, 2, 12, 0, 6, 1, 2, 0, 3, 20, 15, 0})
	f.Fuzz(func(t *testing.T, ops []byte) {
		o1, o2 := NewOrigin(), NewOrigin()
		target, middle := NewDefault(), NewDefault()
		tm, mm := newModel(), newModel()

		for len(ops) >= 4 {
			kind, index, length, sourceIndex := ops[0]%7, int(ops[1]%48), int(ops[2]%16), int(ops[3]%48)
			ops = ops[4:]

			var err error
			switch kind {
			case 0:
				err = target.SetSource(index, length, o1, sourceIndex, growth.None)
				tm.set(index, length, o1, sourceIndex)
			case 1:
				err = target.SetSource(index, length, o2, sourceIndex, growth.None)
				tm.set(index, length, o2, sourceIndex)
			case 2:
				err = target.SetSource(index, length, nil, 0, growth.None)
				tm.set(index, length, nil, 0)
			case 3:
				err = target.SetSource(index, length, middle, sourceIndex, growth.None)
				tm.copyFrom(index, length, mm, sourceIndex)
			case 4:
				err = target.SetSource(index, length, target, sourceIndex, growth.None)
				tm.copyFrom(index, length, tm, sourceIndex)
			case 5:
				err = middle.SetSource(index, length, o1, sourceIndex, growth.None)
				mm.set(index, length, o1, sourceIndex)
			case 6:
				err = middle.SetSource(index, length, nil, 0, growth.None)
				mm.set(index, length, nil, 0)
			}
			if err != nil {
				t.Fatalf("op %d: %v", kind, err)
			}
		}

		for _, c := range []struct {
			name string
			tr   *DefaultTracker
			m    *model
		}{{"target", target, tm}, {"middle", middle, mm}} {
			if err := c.tr.CheckInvariants(); err != nil {
				t.Fatalf("%s: %v", c.name, err)
			}
			if c.tr.Length() != c.m.length {
				t.Errorf("%s: Length() = %d, want %d", c.name, c.tr.Length(), c.m.length)
			}
			got := expand(t, c.tr)
			if len(got) != len(c.m.cells) {
				t.Fatalf("%s: %d mapped units, want %d", c.name, len(got), len(c.m.cells))
			}
			for i, want := range c.m.cells {
				if got[i] != want {
					t.Fatalf("%s[%d] = #%d@%d, want #%d@%d", c.name, i, idOf(got[i].src), got[i].idx, idOf(want.src), want.idx)
				}
			}
		}
	})
}

package tracker

import (
	"strconv"
	"sync"
)

// Marker records a switch of the appending side between two twins. ToIndex is
// To's length at the switch, FromIndex the other twin's length at the same
// moment.
type Marker struct {
	To        Tracker
	ToIndex   int
	FromIndex int
}

// TwinSynchronization correlates two twins, such as the input and output of
// one connection, by recording where appended content switched sides.
type TwinSynchronization struct {
	mu      sync.Mutex
	a, b    Tracker
	last    Tracker
	markers []Marker
}

func newTwinSynchronization(a, b Tracker) *TwinSynchronization {
	return &TwinSynchronization{a: a, b: b}
}

// Other returns the twin of t, or nil when t is not part of the pair.
func (s *TwinSynchronization) Other(t Tracker) Tracker {
	switch t {
	case s.a:
		return s.b
	case s.b:
		return s.a
	default:
		return nil
	}
}

// Markers returns a copy of the recorded switches in order.
func (s *TwinSynchronization) Markers() []Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Marker, len(s.markers))
	copy(out, s.markers)
	return out
}

// beforeAppend is called by a twin holding its own lock right before it
// appends. The synchronization stays locked until the returned function runs,
// so the other side cannot append in between.
func (s *TwinSynchronization) beforeAppend(t Tracker) func() {
	s.mu.Lock()
	if s.last != nil && s.last != t {
		other := s.Other(t)
		m := Marker{To: t, ToIndex: t.Length(), FromIndex: other.Length()}
		s.markers = append(s.markers, m)
		t.core().emit("switch", "", map[string]string{
			"to_index":   strconv.Itoa(m.ToIndex),
			"from_index": strconv.Itoa(m.FromIndex),
		})
	}
	s.last = t
	return s.mu.Unlock
}
